package core

import "testing"

func testIndex(t *testing.T) FieldIndex {
	t.Helper()
	header := []string{"title", "country", "city", "price", "bedrooms", "listing type", "year built"}
	idx, unknown := MakeFieldIndex(header)
	if len(unknown) != 0 {
		t.Fatalf("unexpected unknown columns: %v", unknown)
	}
	return idx
}

func TestBuildRow(t *testing.T) {
	idx := testIndex(t)

	row := BuildRow([]string{"Sea View Flat", "ES", "Madrid", "$350,000", "3", "rent", "1998"}, idx, 2)

	if row.ID != "row-2" {
		t.Errorf("ID = %q, want row-2", row.ID)
	}
	if row.Title != "Sea View Flat" || row.Country != "ES" || row.City != "Madrid" {
		t.Errorf("string fields = %q/%q/%q", row.Title, row.Country, row.City)
	}
	if row.Price != 350000 {
		t.Errorf("Price = %v, want 350000", row.Price)
	}
	if row.Bedrooms != 3 {
		t.Errorf("Bedrooms = %d, want 3", row.Bedrooms)
	}
	if row.ListingType != ListingRent {
		t.Errorf("ListingType = %v, want Rent", row.ListingType)
	}
	if row.YearBuilt == nil || *row.YearBuilt != 1998 {
		t.Errorf("YearBuilt = %v, want 1998", row.YearBuilt)
	}
}

func TestBuildRow_ShortRecord(t *testing.T) {
	idx := testIndex(t)

	// Only the first two columns are present; the rest must stay absent
	// without panicking.
	row := BuildRow([]string{"Sea View Flat", "ES"}, idx, 5)

	if row.Title != "Sea View Flat" || row.Country != "ES" {
		t.Errorf("populated fields wrong: %q %q", row.Title, row.Country)
	}
	if row.isPresent(FieldCity) || row.isPresent(FieldPrice) {
		t.Error("missing cells reported present")
	}
}

func TestBuildRow_BadNumericTracked(t *testing.T) {
	idx := testIndex(t)

	row := BuildRow([]string{"Sea View Flat", "ES", "Madrid", "call for price", "3", "sale", ""}, idx, 3)

	if row.Price != 0 {
		t.Errorf("Price = %v, want 0 placeholder", row.Price)
	}
	raw, bad := row.rawNumeric(FieldPrice)
	if !bad || raw != "call for price" {
		t.Errorf("rawNumeric = (%q, %v), want original cell", raw, bad)
	}
	if !row.isPresent(FieldPrice) {
		t.Error("bad numeric cell must still count as present")
	}
}

func TestBuildRows(t *testing.T) {
	idx := testIndex(t)

	records := [][]string{
		{"First Flat", "ES", "Madrid", "100000", "2", "sale", ""},
		{"", "  ", "", "", "", "", ""}, // all empty, skipped
		{"Second Flat", "ES", "Madrid", "200000", "3", "rent", ""},
	}

	rows := BuildRows(records, idx, 0)

	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2 (empty record skipped)", len(rows))
	}
	// Header on line 1, data starts on line 2; the skipped record still
	// consumes its line number.
	if rows[0].ID != "row-2" || rows[1].ID != "row-4" {
		t.Errorf("row IDs = %q, %q; want row-2, row-4", rows[0].ID, rows[1].ID)
	}
}
