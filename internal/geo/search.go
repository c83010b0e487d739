package geo

import (
	"sort"
	"strings"
)

// Search scoring: a city whose name starts with the query outranks one
// that merely contains it.
const (
	prefixScore   = 1.0
	containsScore = 0.7
)

// CityMatch is one global search hit.
type CityMatch struct {
	City    string  `json:"city"`
	Country string  `json:"country"`
	Score   float64 `json:"score"`
}

// SearchCities performs a case-insensitive substring search across every
// country's city list. Results are sorted by score descending; ties keep
// directory iteration order (countries by code, cities in table order).
// The list is truncated to limit after sorting. An empty query or
// non-positive limit returns nil.
func (d *Directory) SearchCities(query string, limit int) []CityMatch {
	q := Normalize(query)
	if q == "" || limit <= 0 {
		return nil
	}

	var matches []CityMatch
	for _, c := range d.countries {
		for _, city := range c.Cities {
			name := Normalize(city)
			switch {
			case strings.HasPrefix(name, q):
				matches = append(matches, CityMatch{City: city, Country: c.Code, Score: prefixScore})
			case strings.Contains(name, q):
				matches = append(matches, CityMatch{City: city, Country: c.Code, Score: containsScore})
			}
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}
