package core

// rowbuild.go turns raw CSV records into fixed-shape PropertyRow values.
// Each header is resolved once into a FieldIndex; rows are then populated
// field by field with exact presence tracking, so the validator can tell
// "column absent" from "value zero".

import (
	"fmt"
	"strings"
)

// BuildRow maps one raw record into a PropertyRow using the FieldIndex
// resolved from the file's header. Missing cells simply stay absent; a
// short row still builds and later validates with required-field errors.
// lineNum is the 1-indexed source line used for the row-scoped ID.
func BuildRow(record []string, idx FieldIndex, lineNum int) PropertyRow {
	row := PropertyRow{
		ID:         fmt.Sprintf("row-%d", lineNum),
		present:    make(map[Field]bool, len(idx)),
		badNumeric: make(map[Field]string),
	}

	cell := func(f Field) (string, bool) {
		pos, ok := idx[f]
		if !ok || pos >= len(record) {
			return "", false
		}
		v := CleanCell(record[pos])
		return v, v != ""
	}

	setString := func(f Field, dst *string) {
		if v, ok := cell(f); ok {
			*dst = v
			row.present[f] = true
		}
	}

	setNumber := func(f Field, assign func(float64)) {
		raw, ok := cell(f)
		if !ok {
			return
		}
		row.present[f] = true
		v, numOK := CoerceNumber(raw)
		if !numOK {
			row.badNumeric[f] = raw
			return
		}
		assign(v)
	}

	setString(FieldTitle, &row.Title)
	setString(FieldCountry, &row.Country)
	setString(FieldAddress, &row.Address)
	setString(FieldCity, &row.City)
	setString(FieldZipCode, &row.ZipCode)
	setString(FieldTelephone, &row.Telephone)
	setString(FieldPropertyType, &row.PropertyType)
	setString(FieldParkingSpace, &row.ParkingSpace)
	setString(FieldDescription, &row.Description)

	setNumber(FieldPrice, func(v float64) { row.Price = v })
	setNumber(FieldBedrooms, func(v float64) { row.Bedrooms = int(v) })
	setNumber(FieldToilets, func(v float64) { row.Toilets = int(v) })
	setNumber(FieldPropertySize, func(v float64) { row.PropertySize = v })
	setNumber(FieldYearBuilt, func(v float64) {
		y := int(v)
		row.YearBuilt = &y
	})

	if v, ok := cell(FieldListingType); ok {
		row.ListingType = CoerceListingType(v)
		row.present[FieldListingType] = true
	}

	return row
}

// BuildRows maps every data record after the header row, skipping rows
// whose cells are all empty. Input order is preserved.
func BuildRows(records [][]string, idx FieldIndex, headerLine int) []PropertyRow {
	rows := make([]PropertyRow, 0, len(records))
	for i, rec := range records {
		if isEmptyRecord(rec) {
			continue
		}
		// 1-indexed line number in the source file, after the header.
		rows = append(rows, BuildRow(rec, idx, headerLine+i+2))
	}
	return rows
}

func isEmptyRecord(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
