// Package core provides the business logic for bulk property imports.
// This package has no transport or database dependencies and can be used
// by HTTP handlers, CLI tools, or tests without modification.
package core

import "regexp"

// Field identifies one logical column of a property listing record.
// Rows are fixed-shape records keyed by Field, never stringly-typed bags.
type Field int

const (
	FieldTitle Field = iota
	FieldCountry
	FieldAddress
	FieldCity
	FieldZipCode
	FieldTelephone
	FieldPrice
	FieldPropertyType
	FieldListingType
	FieldBedrooms
	FieldToilets
	FieldPropertySize
	FieldYearBuilt
	FieldParkingSpace
	FieldDescription

	numFields int = iota
)

var fieldNames = [numFields]string{
	FieldTitle:        "title",
	FieldCountry:      "country",
	FieldAddress:      "address",
	FieldCity:         "city",
	FieldZipCode:      "zipCode",
	FieldTelephone:    "telephone",
	FieldPrice:        "price",
	FieldPropertyType: "propertyType",
	FieldListingType:  "listingType",
	FieldBedrooms:     "bedrooms",
	FieldToilets:      "toilets",
	FieldPropertySize: "propertySize",
	FieldYearBuilt:    "yearBuilt",
	FieldParkingSpace: "parkingSpace",
	FieldDescription:  "description",
}

// String returns the canonical field name as used in error messages and
// the rules API.
func (f Field) String() string {
	if f < 0 || int(f) >= numFields {
		return "unknown"
	}
	return fieldNames[f]
}

// Kind is the expected value kind for a rule.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindEnum
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindEnum:
		return "enum"
	default:
		return "value"
	}
}

// Rule is one declarative constraint on a single field. Rules are static
// configuration, defined once at process start and applied to every row
// independently; there is no cross-row or cross-field state.
type Rule struct {
	Field    Field
	Required bool
	Kind     Kind

	// Min/Max bound string length (in runes) for KindString rules and the
	// numeric value for KindNumber rules. Nil means unbounded.
	Min *float64
	Max *float64

	// Enum lists the allowed values for KindEnum rules. Membership is
	// checked case-insensitively.
	Enum []string

	// Pattern, when set, must match the whole value of a string field.
	Pattern *regexp.Regexp
}

// ListingType is the sale/rent disposition of a listing.
type ListingType string

const (
	ListingSale ListingType = "Sale"
	ListingRent ListingType = "Rent"
)

// PropertyTypes is the allowed set for the propertyType field.
var PropertyTypes = []string{"House", "Apartment", "Condo", "Villa", "Townhouse", "Commercial", "Land"}

// PropertyRow is one spreadsheet row mapped to a structured record.
//
// A row is created fresh per spreadsheet line, mutated once by the
// validator (Errors/Warnings populated, IsValid set), and treated as
// immutable by downstream consumers afterwards.
type PropertyRow struct {
	// ID is row-scoped (line reference), never persisted.
	ID string `json:"id"`

	Title        string      `json:"title"`
	Country      string      `json:"country"`
	Address      string      `json:"address"`
	City         string      `json:"city"`
	ZipCode      string      `json:"zipCode"`
	Telephone    string      `json:"telephone"`
	Price        float64     `json:"price"`
	PropertyType string      `json:"propertyType"`
	ListingType  ListingType `json:"listingType"`
	Bedrooms     int         `json:"bedrooms"`
	Toilets      int         `json:"toilets"`
	PropertySize float64     `json:"propertySize"`
	YearBuilt    *int        `json:"yearBuilt,omitempty"`
	ParkingSpace string      `json:"parkingSpace,omitempty"`
	Description  string      `json:"description"`

	IsValid  bool     `json:"isValid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`

	// Auto-correction metadata. Correction only ever touches the city
	// field, never the error or warning lists.
	WasAutoCorrected bool   `json:"wasAutoCorrected,omitempty"`
	OriginalCity     string `json:"originalCity,omitempty"`

	// present tracks which columns carried a value in the source file.
	// Nil for rows constructed directly (then string emptiness decides).
	present map[Field]bool

	// badNumeric holds raw cell text that failed numeric coercion. The
	// coerced value is 0, but the validator reports the field as not a
	// number instead of range-checking the placeholder.
	badNumeric map[Field]string
}

// fieldIsNumeric reports which record fields hold numbers.
var fieldIsNumeric = [numFields]bool{
	FieldPrice:        true,
	FieldBedrooms:     true,
	FieldToilets:      true,
	FieldPropertySize: true,
	FieldYearBuilt:    true,
}

// stringValue returns the string content of f. ok is false when f is a
// numeric field of the record.
func (r *PropertyRow) stringValue(f Field) (string, bool) {
	switch f {
	case FieldTitle:
		return r.Title, true
	case FieldCountry:
		return r.Country, true
	case FieldAddress:
		return r.Address, true
	case FieldCity:
		return r.City, true
	case FieldZipCode:
		return r.ZipCode, true
	case FieldTelephone:
		return r.Telephone, true
	case FieldPropertyType:
		return r.PropertyType, true
	case FieldListingType:
		return string(r.ListingType), true
	case FieldParkingSpace:
		return r.ParkingSpace, true
	case FieldDescription:
		return r.Description, true
	default:
		return "", false
	}
}

// numberValue returns the numeric content of f. ok is false when f is a
// string field of the record.
func (r *PropertyRow) numberValue(f Field) (float64, bool) {
	switch f {
	case FieldPrice:
		return r.Price, true
	case FieldBedrooms:
		return float64(r.Bedrooms), true
	case FieldToilets:
		return float64(r.Toilets), true
	case FieldPropertySize:
		return r.PropertySize, true
	case FieldYearBuilt:
		if r.YearBuilt == nil {
			return 0, true
		}
		return float64(*r.YearBuilt), true
	default:
		return 0, false
	}
}

// isPresent reports whether f carried a value. Rows built by BuildRow have
// exact presence tracking; for directly constructed rows, string fields
// count as present when non-empty, yearBuilt when non-nil, and the other
// numeric fields always (zero is a legitimate provided value).
func (r *PropertyRow) isPresent(f Field) bool {
	if r.present != nil {
		return r.present[f]
	}
	if f == FieldYearBuilt {
		return r.YearBuilt != nil
	}
	if fieldIsNumeric[f] {
		return true
	}
	s, _ := r.stringValue(f)
	return s != ""
}

// rawNumeric returns the original cell text for a numeric field whose
// coercion failed, if any.
func (r *PropertyRow) rawNumeric(f Field) (string, bool) {
	if r.badNumeric == nil {
		return "", false
	}
	raw, ok := r.badNumeric[f]
	return raw, ok
}
