package core

// coerce.go handles the messy reality of user-provided spreadsheet data:
// Excel formula prefixes, stray quotes, currency symbols and thousands
// separators in numbers, and free-form column headings. Coercion is
// deliberately lenient; the validator decides what is actually wrong.

import (
	"strconv"
	"strings"
)

// CleanCell removes common CSV artifacts from a cell value:
// whitespace, Excel formula prefix (="..."), and surrounding quotes.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	s = strings.Trim(s, `"'`)

	return strings.TrimSpace(s)
}

// headerAliases maps human-readable column names (lowercased, trimmed) to
// logical fields. Several spellings of the same column resolve to one
// field, so "zip code", "zipcode", and "postal code" all land on zipCode.
var headerAliases = map[string]Field{
	"title":         FieldTitle,
	"property name": FieldTitle,
	"listing title": FieldTitle,

	"country":      FieldCountry,
	"country code": FieldCountry,

	"address":        FieldAddress,
	"street":         FieldAddress,
	"street address": FieldAddress,

	"city": FieldCity,
	"town": FieldCity,

	"zipcode":     FieldZipCode,
	"zip code":    FieldZipCode,
	"zip":         FieldZipCode,
	"postal code": FieldZipCode,
	"postalcode":  FieldZipCode,
	"postcode":    FieldZipCode,

	"telephone":    FieldTelephone,
	"phone":        FieldTelephone,
	"phone number": FieldTelephone,
	"contact":      FieldTelephone,

	"price":        FieldPrice,
	"asking price": FieldPrice,
	"rent":         FieldPrice,

	"propertytype":  FieldPropertyType,
	"property type": FieldPropertyType,
	"type":          FieldPropertyType,

	"listingtype":  FieldListingType,
	"listing type": FieldListingType,
	"sale or rent": FieldListingType,

	"bedrooms": FieldBedrooms,
	"bedroom":  FieldBedrooms,
	"beds":     FieldBedrooms,

	"toilets":   FieldToilets,
	"toilet":    FieldToilets,
	"bathrooms": FieldToilets,
	"bathroom":  FieldToilets,

	"propertysize":  FieldPropertySize,
	"property size": FieldPropertySize,
	"size":          FieldPropertySize,
	"area":          FieldPropertySize,
	"size sqm":      FieldPropertySize,

	"yearbuilt":    FieldYearBuilt,
	"year built":   FieldYearBuilt,
	"construction": FieldYearBuilt,

	"parkingspace":  FieldParkingSpace,
	"parking space": FieldParkingSpace,
	"parking":       FieldParkingSpace,

	"description": FieldDescription,
	"details":     FieldDescription,
	"summary":     FieldDescription,
}

// ResolveHeader maps a raw column heading to its logical field.
func ResolveHeader(h string) (Field, bool) {
	f, ok := headerAliases[strings.ToLower(CleanCell(h))]
	return f, ok
}

// FieldIndex maps logical fields to their column position in the file.
type FieldIndex map[Field]int

// MakeFieldIndex resolves a header row into a FieldIndex. Unrecognized
// columns are collected (cleaned, in column order) so callers can report
// them; they are otherwise ignored.
func MakeFieldIndex(header []string) (FieldIndex, []string) {
	idx := make(FieldIndex, len(header))
	var unknown []string
	for i, h := range header {
		f, ok := ResolveHeader(h)
		if !ok {
			if c := CleanCell(h); c != "" {
				unknown = append(unknown, c)
			}
			continue
		}
		if _, dup := idx[f]; !dup {
			idx[f] = i
		}
	}
	return idx, unknown
}

// FindHeaderRow locates the header row within parsed records: the first
// row where at least two cells resolve to known fields. Returns -1 when
// no plausible header exists.
func FindHeaderRow(records [][]string) int {
	for i, row := range records {
		hits := 0
		for _, cell := range row {
			if _, ok := ResolveHeader(cell); ok {
				hits++
			}
		}
		if hits >= 2 {
			return i
		}
	}
	return -1
}

// CoerceNumber parses a numeric cell leniently: every character that is
// not a digit, dot, or minus sign is stripped first (currency symbols,
// thousands separators, unit suffixes). A value that still does not parse
// coerces to 0 with ok=false rather than failing.
func CoerceNumber(s string) (float64, bool) {
	var b strings.Builder
	for _, r := range CleanCell(s) {
		if r >= '0' && r <= '9' || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	stripped := b.String()
	if stripped == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(stripped, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// CoerceListingType maps a raw cell to Sale or Rent. Matching is
// case-insensitive on "rent"; everything else, including ambiguous or
// empty values, defaults to Sale.
func CoerceListingType(s string) ListingType {
	if strings.EqualFold(CleanCell(s), "rent") {
		return ListingRent
	}
	return ListingSale
}
