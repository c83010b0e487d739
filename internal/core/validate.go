package core

// validate.go applies the declarative rule table to property rows.
//
// The validator never short-circuits: every violated rule produces its
// own error string, so a caller sees every problem with a row in one
// pass. City/country mismatches are warnings and never affect validity.

import (
	"fmt"
	"strings"

	"github.com/estatehub/listimport/internal/geo"
)

// CityDirectory is the location lookup the validator consults for the
// city/country cross-check. Cities must be total: unknown countries
// return an empty list, never an error.
type CityDirectory interface {
	Cities(country string) []string
}

// RowValidator validates PropertyRows against a rule table. A nil
// directory disables the city cross-check.
type RowValidator struct {
	rules []Rule
	dir   CityDirectory
}

// NewRowValidator creates a validator over the given rule table.
func NewRowValidator(rules []Rule, dir CityDirectory) *RowValidator {
	return &RowValidator{rules: rules, dir: dir}
}

// Validate applies every rule to the row in table order, populating
// Errors, Warnings, and IsValid. It never stops at the first violation
// and cannot fail for any well-formed row.
func (v *RowValidator) Validate(row *PropertyRow) {
	row.Errors = row.Errors[:0]
	row.Warnings = row.Warnings[:0]

	for _, rule := range v.rules {
		v.applyRule(row, rule)
	}

	if row.Country != "" && row.City != "" && v.dir != nil {
		known := v.dir.Cities(row.Country)
		if len(known) > 0 && !containsCity(known, row.City) {
			row.Warnings = append(row.Warnings,
				fmt.Sprintf("City %q may not be valid for country %q", row.City, row.Country))
		}
	}

	row.IsValid = len(row.Errors) == 0
}

func (v *RowValidator) applyRule(row *PropertyRow, rule Rule) {
	f := rule.Field

	if !v.hasValue(row, rule) {
		if rule.Required {
			row.Errors = append(row.Errors, fmt.Sprintf("%s is required", f))
		}
		// Optional fields impose no further constraints when empty.
		return
	}

	switch rule.Kind {
	case KindString:
		v.checkString(row, rule)
	case KindNumber:
		v.checkNumber(row, rule)
	case KindEnum:
		v.checkEnum(row, rule)
	}
}

// hasValue reports whether the rule's field carries a usable value.
func (v *RowValidator) hasValue(row *PropertyRow, rule Rule) bool {
	f := rule.Field
	if !row.isPresent(f) {
		return false
	}
	if _, bad := row.rawNumeric(f); bad {
		// A numeric cell that failed coercion is present but broken;
		// the kind check reports it.
		return true
	}
	if !fieldIsNumeric[f] {
		s, _ := row.stringValue(f)
		return strings.TrimSpace(s) != ""
	}
	return true
}

func (v *RowValidator) checkString(row *PropertyRow, rule Rule) {
	f := rule.Field
	s, isString := row.stringValue(f)
	if !isString {
		row.Errors = append(row.Errors, fmt.Sprintf("%s must be a string", f))
		return
	}

	length := float64(len([]rune(s)))
	// Min and max are independent checks; neither assumes the other.
	if rule.Min != nil && length < *rule.Min {
		row.Errors = append(row.Errors,
			fmt.Sprintf("%s must be at least %s characters", f, formatBound(*rule.Min)))
	}
	if rule.Max != nil && length > *rule.Max {
		row.Errors = append(row.Errors,
			fmt.Sprintf("%s must be no more than %s characters", f, formatBound(*rule.Max)))
	}
	if rule.Pattern != nil && !rule.Pattern.MatchString(s) {
		row.Errors = append(row.Errors, fmt.Sprintf("%s has invalid format", f))
	}
}

func (v *RowValidator) checkNumber(row *PropertyRow, rule Rule) {
	f := rule.Field
	if _, bad := row.rawNumeric(f); bad {
		row.Errors = append(row.Errors, fmt.Sprintf("%s must be a number", f))
		return
	}
	n, isNumber := row.numberValue(f)
	if !isNumber {
		row.Errors = append(row.Errors, fmt.Sprintf("%s must be a number", f))
		return
	}

	if rule.Min != nil && n < *rule.Min {
		row.Errors = append(row.Errors,
			fmt.Sprintf("%s must be at least %s", f, formatBound(*rule.Min)))
	}
	if rule.Max != nil && n > *rule.Max {
		row.Errors = append(row.Errors,
			fmt.Sprintf("%s must be no more than %s", f, formatBound(*rule.Max)))
	}
}

func (v *RowValidator) checkEnum(row *PropertyRow, rule Rule) {
	f := rule.Field
	s, isString := row.stringValue(f)
	if !isString {
		row.Errors = append(row.Errors, fmt.Sprintf("%s must be a string", f))
		return
	}
	for _, allowed := range rule.Enum {
		if strings.EqualFold(s, allowed) {
			return
		}
	}
	row.Errors = append(row.Errors,
		fmt.Sprintf("%s must be one of: %s", f, strings.Join(rule.Enum, ", ")))
}

// containsCity checks membership with normalized comparison (lowercased,
// trimmed, accents stripped) so "münchen" matches "München".
func containsCity(known []string, city string) bool {
	want := geo.Normalize(city)
	for _, k := range known {
		if geo.Normalize(k) == want {
			return true
		}
	}
	return false
}

// formatBound renders a numeric bound without a trailing ".0" for whole
// numbers, matching the message contract ("at least 5", not "5.0").
func formatBound(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%g", v)
}
