package core

import "regexp"

// telephonePattern accepts international phone formats: optional +, digits,
// spaces, dots, dashes, and parenthesized area codes.
var telephonePattern = regexp.MustCompile(`^\+?[0-9][0-9 ().-]{5,18}[0-9]$`)

func bound(v float64) *float64 { return &v }

// DefaultRules returns the rule table for property listing rows. This is
// the de-facto schema contract the upload clients depend on: fields,
// required flags, and bounds are served verbatim by the rules endpoint.
//
// The table is built fresh per call so callers can never mutate shared
// state; construct it once at startup and inject it where needed.
func DefaultRules() []Rule {
	return []Rule{
		{Field: FieldTitle, Required: true, Kind: KindString, Min: bound(5), Max: bound(200)},
		{Field: FieldCountry, Required: true, Kind: KindString, Min: bound(2), Max: bound(60)},
		{Field: FieldAddress, Required: true, Kind: KindString, Min: bound(5), Max: bound(300)},
		{Field: FieldCity, Required: true, Kind: KindString, Min: bound(1), Max: bound(100)},
		{Field: FieldZipCode, Required: true, Kind: KindString, Min: bound(2), Max: bound(12)},
		{Field: FieldTelephone, Required: true, Kind: KindString, Pattern: telephonePattern},
		{Field: FieldPrice, Required: true, Kind: KindNumber, Min: bound(1), Max: bound(1_000_000_000)},
		{Field: FieldPropertyType, Required: true, Kind: KindEnum, Enum: PropertyTypes},
		{Field: FieldListingType, Required: true, Kind: KindEnum, Enum: []string{string(ListingSale), string(ListingRent)}},
		{Field: FieldBedrooms, Required: true, Kind: KindNumber, Min: bound(0), Max: bound(50)},
		{Field: FieldToilets, Required: true, Kind: KindNumber, Min: bound(0), Max: bound(50)},
		{Field: FieldPropertySize, Required: true, Kind: KindNumber, Min: bound(1), Max: bound(1_000_000)},
		{Field: FieldYearBuilt, Required: false, Kind: KindNumber, Min: bound(1800), Max: bound(2100)},
		{Field: FieldParkingSpace, Required: false, Kind: KindString, Max: bound(100)},
		{Field: FieldDescription, Required: true, Kind: KindString, Min: bound(10), Max: bound(5000)},
	}
}

// RuleDoc is the JSON shape of one rule as served by the rules endpoint.
type RuleDoc struct {
	Field    string   `json:"field"`
	Required bool     `json:"required"`
	Kind     string   `json:"kind"`
	Min      *float64 `json:"min,omitempty"`
	Max      *float64 `json:"max,omitempty"`
	Enum     []string `json:"enum,omitempty"`
	Pattern  string   `json:"pattern,omitempty"`
}

// DocumentRules converts a rule table to its API representation.
func DocumentRules(rules []Rule) []RuleDoc {
	docs := make([]RuleDoc, 0, len(rules))
	for _, r := range rules {
		doc := RuleDoc{
			Field:    r.Field.String(),
			Required: r.Required,
			Kind:     r.Kind.String(),
			Min:      r.Min,
			Max:      r.Max,
			Enum:     r.Enum,
		}
		if r.Pattern != nil {
			doc.Pattern = r.Pattern.String()
		}
		docs = append(docs, doc)
	}
	return docs
}
