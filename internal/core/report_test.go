package core

import (
	"strings"
	"testing"

	"github.com/estatehub/listimport/internal/geo"
)

func TestValidateAll(t *testing.T) {
	good := validRow()
	bad := validRow()
	bad.Title = ""
	bad.Price = 0

	v := NewRowValidator(DefaultRules(), testCities)
	report := ValidateAll([]PropertyRow{good, bad}, v)

	if report.TotalRows != 2 || report.ValidRows != 1 || report.InvalidRows != 1 {
		t.Errorf("counts = %d/%d/%d, want 2/1/1",
			report.TotalRows, report.ValidRows, report.InvalidRows)
	}
	if len(report.AllErrors) != 2 {
		t.Errorf("AllErrors = %v, want both errors of the bad row", report.AllErrors)
	}
	if report.Rows[0].ID != good.ID {
		t.Error("row order not preserved")
	}
}

func TestSummarize(t *testing.T) {
	good := validRow()
	badUS := validRow()
	badUS.Title = ""
	badES := validRow()
	badES.Country = "ES"
	badES.City = "Madrid"
	badES.Price = 0

	v := NewRowValidator(DefaultRules(), testCities)
	report := ValidateAll([]PropertyRow{good, badUS, badES}, v)

	s := Summarize(report.Rows)
	if s.Total != 3 || s.Valid != 1 || s.Invalid != 2 {
		t.Errorf("counts = %d/%d/%d, want 3/1/2", s.Total, s.Valid, s.Invalid)
	}
	if want := 100.0 / 3; s.ValidPercentage < want-0.01 || s.ValidPercentage > want+0.01 {
		t.Errorf("ValidPercentage = %v, want ~%v", s.ValidPercentage, want)
	}
	if s.InvalidByCountry["US"] != 1 || s.InvalidByCountry["ES"] != 1 {
		t.Errorf("InvalidByCountry = %v", s.InvalidByCountry)
	}
}

func TestSummarize_EmptyBatch(t *testing.T) {
	s := Summarize(nil)
	if s.Total != 0 || s.ValidPercentage != 0 {
		t.Errorf("empty batch summary = %+v, want zeros (never NaN)", s)
	}
}

func TestAutoCorrectCities(t *testing.T) {
	dir, err := geo.Load(geo.DefaultOptions())
	if err != nil {
		t.Fatalf("geo.Load() error = %v", err)
	}

	typo := validRow()
	typo.City = "New Yorkk"
	exact := validRow()
	hopeless := validRow()
	hopeless.City = "Zzzzzzzzzzzz"

	rows := []PropertyRow{typo, exact, hopeless}
	AutoCorrectCities(rows, dir)

	if !rows[0].WasAutoCorrected || rows[0].City != "New York" || rows[0].OriginalCity != "New Yorkk" {
		t.Errorf("typo row = %+v, want corrected to New York", rows[0])
	}
	if rows[1].WasAutoCorrected || rows[1].City != "New York" {
		t.Errorf("exact row must be untouched: %+v", rows[1])
	}
	if rows[2].WasAutoCorrected || rows[2].City != "Zzzzzzzzzzzz" {
		t.Errorf("hopeless row must be untouched: %+v", rows[2])
	}
}

func TestAutoCorrectCities_DoesNotTouchResults(t *testing.T) {
	dir, err := geo.Load(geo.DefaultOptions())
	if err != nil {
		t.Fatalf("geo.Load() error = %v", err)
	}

	row := validRow()
	row.City = "New Yorkk"
	row.Errors = []string{"pre-existing"}
	row.Warnings = []string{"pre-existing"}

	rows := []PropertyRow{row}
	AutoCorrectCities(rows, dir)

	if len(rows[0].Errors) != 1 || len(rows[0].Warnings) != 1 {
		t.Error("auto-correction must not modify errors or warnings")
	}
}

func TestFailedRecords(t *testing.T) {
	good := validRow()
	bad := validRow()
	bad.Title = ""

	v := NewRowValidator(DefaultRules(), testCities)
	report := ValidateAll([]PropertyRow{good, bad}, v)

	records := FailedRecords(report)
	if len(records) != 2 {
		t.Fatalf("got %d records, want header plus one failed row", len(records))
	}
	if records[0][0] != "errors" {
		t.Errorf("header = %v", records[0])
	}
	if !strings.Contains(records[1][0], "title is required") {
		t.Errorf("reason column = %q", records[1][0])
	}
}
