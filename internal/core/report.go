package core

// report.go aggregates per-row validation outcomes into the batch report
// operators review before committing an import.

import (
	"github.com/estatehub/listimport/internal/geo"
)

// BatchReport is the outcome of validating one uploaded batch. Row order
// matches the input file.
type BatchReport struct {
	Rows        []PropertyRow `json:"rows"`
	TotalRows   int           `json:"totalRows"`
	ValidRows   int           `json:"validRows"`
	InvalidRows int           `json:"invalidRows"`

	// AllErrors is the flattened concatenation of every row's errors, in
	// row order then per-row order.
	AllErrors []string `json:"allErrors"`
}

// Summary condenses a report for dashboards.
type Summary struct {
	Total            int            `json:"total"`
	Valid            int            `json:"valid"`
	Invalid          int            `json:"invalid"`
	ValidPercentage  float64        `json:"validPercentage"`
	InvalidByCountry map[string]int `json:"invalidByCountry"`
}

// ValidateAll validates every row independently and tallies counts. Rows
// share no state, so input order is preserved trivially.
func ValidateAll(rows []PropertyRow, v *RowValidator) BatchReport {
	report := BatchReport{
		Rows:      rows,
		TotalRows: len(rows),
	}

	for i := range report.Rows {
		v.Validate(&report.Rows[i])
		if report.Rows[i].IsValid {
			report.ValidRows++
		} else {
			report.InvalidRows++
			report.AllErrors = append(report.AllErrors, report.Rows[i].Errors...)
		}
	}

	return report
}

// Summarize computes dashboard counts over validated rows. Invalid rows
// are grouped by their declared country, not a suggested or corrected
// one. An empty batch yields a 0 percentage, never NaN.
func Summarize(rows []PropertyRow) Summary {
	s := Summary{
		Total:            len(rows),
		InvalidByCountry: make(map[string]int),
	}

	for i := range rows {
		if rows[i].IsValid {
			s.Valid++
			continue
		}
		s.Invalid++
		s.InvalidByCountry[rows[i].Country]++
	}

	if s.Total > 0 {
		s.ValidPercentage = float64(s.Valid) / float64(s.Total) * 100
	}

	return s
}

// AutoCorrectCities rewrites misspelled city names in place when the
// directory's top suggestion is similar enough. Only the city field and
// correction metadata change; error and warning lists are untouched, and
// already-valid cities are never rewritten.
func AutoCorrectCities(rows []PropertyRow, dir *geo.Directory) {
	if dir == nil {
		return
	}
	for i := range rows {
		row := &rows[i]
		if row.City == "" || row.Country == "" {
			continue
		}
		corrected, ok := dir.AutoCorrect(row.City, row.Country)
		if ok {
			row.OriginalCity = row.City
			row.City = corrected
			row.WasAutoCorrected = true
		} else {
			row.WasAutoCorrected = false
		}
	}
}
