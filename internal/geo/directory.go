// Package geo provides the country/city directory used to cross-check
// property locations, with edit-distance suggestions for misspelled city
// names and postal-code lookups.
//
// The directory is static data loaded once at startup and never mutated;
// it is passed explicitly into consumers rather than referenced as a
// global, so validators stay pure and independently testable.
package geo

import (
	"embed"
	"fmt"
	"io"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed data/countries.yaml
var dataFS embed.FS

// Options tunes suggestion and auto-correction behavior.
type Options struct {
	// MinSuggestionScore is the similarity floor for a city to appear in
	// suggestions. Candidates must score strictly greater than this.
	MinSuggestionScore float64

	// MaxSuggestions caps the suggestion list, best-first.
	MaxSuggestions int

	// MessageSuggestions is how many suggestions the human-readable
	// message mentions.
	MessageSuggestions int

	// AutoCorrectThreshold is the similarity a top suggestion must exceed
	// before AutoCorrect rewrites a city name.
	AutoCorrectThreshold float64
}

// DefaultOptions returns the thresholds used in production.
func DefaultOptions() Options {
	return Options{
		MinSuggestionScore:   0.3,
		MaxSuggestions:       5,
		MessageSuggestions:   3,
		AutoCorrectThreshold: 0.8,
	}
}

// Country is one entry in the directory.
type Country struct {
	Code        string            `yaml:"code"`
	Name        string            `yaml:"name"`
	Aliases     []string          `yaml:"aliases,omitempty"`
	Cities      []string          `yaml:"cities"`
	PostalCodes map[string]string `yaml:"postal_codes,omitempty"`
}

// CityValidationResult is the outcome of checking one (city, country) pair.
// It is computed on demand and never stored.
type CityValidationResult struct {
	Valid       bool     `json:"valid"`
	Suggestions []string `json:"suggestions,omitempty"`
	Message     string   `json:"message"`
}

// Directory is an immutable country -> cities lookup table. All lookup
// methods are safe for concurrent use since nothing mutates after Load.
type Directory struct {
	countries []Country
	byKey     map[string]*Country // normalized code, name, and aliases
	opts      Options
}

// Load builds a Directory from the embedded data file.
func Load(opts Options) (*Directory, error) {
	f, err := dataFS.Open("data/countries.yaml")
	if err != nil {
		return nil, fmt.Errorf("open embedded directory data: %w", err)
	}
	defer f.Close()
	return LoadFrom(f, opts)
}

// LoadFrom builds a Directory from YAML data. Country codes must be unique;
// city names are deduplicated within a country.
func LoadFrom(r io.Reader, opts Options) (*Directory, error) {
	var doc struct {
		Countries []Country `yaml:"countries"`
	}
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode directory data: %w", err)
	}

	// Sort before building the key map: byKey holds pointers into the
	// slice, so the order must not change afterwards.
	sort.Slice(doc.Countries, func(i, j int) bool {
		return doc.Countries[i].Code < doc.Countries[j].Code
	})

	d := &Directory{
		countries: doc.Countries,
		byKey:     make(map[string]*Country),
		opts:      opts,
	}

	for i := range d.countries {
		c := &d.countries[i]
		if c.Code == "" {
			return nil, fmt.Errorf("directory entry %d has no country code", i)
		}

		key := Normalize(c.Code)
		if _, dup := d.byKey[key]; dup {
			return nil, fmt.Errorf("duplicate country code %q", c.Code)
		}
		d.byKey[key] = c
		if c.Name != "" {
			d.byKey[Normalize(c.Name)] = c
		}
		for _, a := range c.Aliases {
			d.byKey[Normalize(a)] = c
		}

		c.Cities = dedupe(c.Cities)
	}

	return d, nil
}

// dedupe removes duplicate city names (compared in normalized form),
// keeping first occurrence order.
func dedupe(cities []string) []string {
	seen := make(map[string]bool, len(cities))
	out := cities[:0]
	for _, c := range cities {
		key := Normalize(c)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}

// Countries returns all directory entries sorted by code.
func (d *Directory) Countries() []Country {
	return d.countries
}

// lookup resolves a country by code, full name, or alias. Nil when unknown.
func (d *Directory) lookup(country string) *Country {
	return d.byKey[Normalize(country)]
}

// Cities returns the known city list for a country, resolved by code or
// full name. Unknown countries return an empty list, never an error.
func (d *Directory) Cities(country string) []string {
	c := d.lookup(country)
	if c == nil {
		return nil
	}
	return c.Cities
}

// CityForPostalCode resolves a postal code to its city for countries that
// carry postal data. The second return is false when the country or code
// is unknown.
func (d *Directory) CityForPostalCode(country, code string) (string, bool) {
	c := d.lookup(country)
	if c == nil || len(c.PostalCodes) == 0 {
		return "", false
	}
	city, ok := c.PostalCodes[strings.ToUpper(strings.TrimSpace(code))]
	return city, ok
}

// ValidateCity checks whether city is a recognized city for country.
//
// A country with no directory data is an automatic pass: absence of data is
// never treated as invalidity. Otherwise the match is exact (normalized);
// failing that, known cities scoring above the suggestion floor are ranked
// best-first and returned as suggestions.
func (d *Directory) ValidateCity(city, country string) CityValidationResult {
	known := d.Cities(country)
	if len(known) == 0 {
		return CityValidationResult{
			Valid:   true,
			Message: fmt.Sprintf("no city data available for country %q", country),
		}
	}

	want := Normalize(city)
	for _, k := range known {
		if Normalize(k) == want {
			return CityValidationResult{
				Valid:   true,
				Message: fmt.Sprintf("%q is a recognized city in %q", city, country),
			}
		}
	}

	type scored struct {
		city  string
		score float64
	}
	var candidates []scored
	for _, k := range known {
		if s := Similarity(city, k); s > d.opts.MinSuggestionScore {
			candidates = append(candidates, scored{city: k, score: s})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	if len(candidates) > d.opts.MaxSuggestions {
		candidates = candidates[:d.opts.MaxSuggestions]
	}

	suggestions := make([]string, 0, len(candidates))
	for _, c := range candidates {
		suggestions = append(suggestions, c.city)
	}

	msg := fmt.Sprintf("%q is not a valid city for country %q", city, country)
	if len(suggestions) > 0 {
		n := d.opts.MessageSuggestions
		if n > len(suggestions) {
			n = len(suggestions)
		}
		msg += fmt.Sprintf(", did you mean: %s", strings.Join(suggestions[:n], ", "))
	}

	return CityValidationResult{
		Valid:       false,
		Suggestions: suggestions,
		Message:     msg,
	}
}

// AutoCorrect proposes a replacement for a misspelled city. It returns the
// top suggestion and true only when the city is not recognized, at least
// one suggestion exists, and the top suggestion's similarity exceeds the
// auto-correct threshold. Valid cities are never rewritten.
func (d *Directory) AutoCorrect(city, country string) (string, bool) {
	res := d.ValidateCity(city, country)
	if res.Valid || len(res.Suggestions) == 0 {
		return city, false
	}
	top := res.Suggestions[0]
	if Similarity(city, top) > d.opts.AutoCorrectThreshold {
		return top, true
	}
	return city, false
}
