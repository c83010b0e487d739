package core

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/estatehub/listimport/internal/geo"
)

const testCSVHeader = "title,country,address,city,zip code,telephone,price,property type,listing type,bedrooms,toilets,property size,description\n"

const testCSVValidRow = `Sea View Apartment,US,123 Main Street,New York,10001,+1 212 555 0100,500000,Apartment,Sale,2,1,85,Bright two bedroom apartment.` + "\n"

const testCSVInvalidRow = `Bad,US,123 Main Street,New York,10001,+1 212 555 0100,0,Apartment,Sale,2,1,85,Bright two bedroom apartment.` + "\n"

// memStore is an in-memory ImportStore for service tests.
type memStore struct {
	properties map[uuid.UUID][]PropertyRow
	uploads    map[uuid.UUID]UploadRecord
	insertErr  error
}

func newMemStore() *memStore {
	return &memStore{
		properties: make(map[uuid.UUID][]PropertyRow),
		uploads:    make(map[uuid.UUID]UploadRecord),
	}
}

func (m *memStore) InsertProperties(_ context.Context, uploadID uuid.UUID, rows []PropertyRow) (int, error) {
	if m.insertErr != nil {
		return 0, m.insertErr
	}
	m.properties[uploadID] = append(m.properties[uploadID], rows...)
	return len(rows), nil
}

func (m *memStore) RecordUpload(_ context.Context, rec UploadRecord) error {
	m.uploads[rec.ID] = rec
	return nil
}

func (m *memStore) GetUpload(_ context.Context, id uuid.UUID) (*UploadRecord, error) {
	rec, ok := m.uploads[id]
	if !ok {
		return nil, ErrUploadNotFound
	}
	return &rec, nil
}

func (m *memStore) DeleteByUpload(_ context.Context, id uuid.UUID) (int64, error) {
	n := int64(len(m.properties[id]))
	delete(m.properties, id)
	return n, nil
}

func testService(t *testing.T, st ImportStore) *Service {
	t.Helper()
	dir, err := geo.Load(geo.DefaultOptions())
	if err != nil {
		t.Fatalf("geo.Load() error = %v", err)
	}
	return NewService(DefaultRules(), dir, st, NewImportLimiter(2, time.Second))
}

func TestService_ValidateCSV(t *testing.T) {
	svc := testService(t, nil)

	outcome, err := svc.ValidateCSV(context.Background(),
		strings.NewReader(testCSVHeader+testCSVValidRow+testCSVInvalidRow), false)
	if err != nil {
		t.Fatalf("ValidateCSV() error = %v", err)
	}

	if outcome.Report.TotalRows != 2 || outcome.Report.ValidRows != 1 || outcome.Report.InvalidRows != 1 {
		t.Errorf("counts = %d/%d/%d, want 2/1/1",
			outcome.Report.TotalRows, outcome.Report.ValidRows, outcome.Report.InvalidRows)
	}
	if outcome.Summary.Total != 2 {
		t.Errorf("Summary.Total = %d, want 2", outcome.Summary.Total)
	}

	bad := outcome.Report.Rows[1]
	if bad.IsValid {
		t.Fatal("row with short title and zero price reported valid")
	}
	if !hasError(bad.Errors, "title must be at least 5 characters") ||
		!hasError(bad.Errors, "price must be at least 1") {
		t.Errorf("bad row errors = %v", bad.Errors)
	}
}

func TestService_ValidateCSV_Preamble(t *testing.T) {
	svc := testService(t, nil)

	csv := "Export from listing tool\n\n" + testCSVHeader + testCSVValidRow
	outcome, err := svc.ValidateCSV(context.Background(), strings.NewReader(csv), false)
	if err != nil {
		t.Fatalf("ValidateCSV() error = %v", err)
	}
	if outcome.Report.TotalRows != 1 || outcome.Report.ValidRows != 1 {
		t.Errorf("counts = %d/%d, want 1/1",
			outcome.Report.TotalRows, outcome.Report.ValidRows)
	}
}

func TestService_ValidateCSV_UnknownColumns(t *testing.T) {
	svc := testService(t, nil)

	csv := "title,city,agent nickname,price,description,country,address,zip code,telephone,property type,listing type,bedrooms,toilets,property size\n" +
		"Sea View Apartment,New York,bob,500000,Bright two bedroom apartment.,US,123 Main Street,10001,+1 212 555 0100,Apartment,Sale,2,1,85\n"
	outcome, err := svc.ValidateCSV(context.Background(), strings.NewReader(csv), false)
	if err != nil {
		t.Fatalf("ValidateCSV() error = %v", err)
	}
	if len(outcome.UnknownColumns) != 1 || outcome.UnknownColumns[0] != "agent nickname" {
		t.Errorf("UnknownColumns = %v", outcome.UnknownColumns)
	}
	if outcome.Report.ValidRows != 1 {
		t.Errorf("ValidRows = %d, want 1 (unknown column ignored)", outcome.Report.ValidRows)
	}
}

func TestService_ValidateCSV_AutoCorrect(t *testing.T) {
	svc := testService(t, nil)

	row := strings.Replace(testCSVValidRow, "New York", "New Yorkk", 1)

	outcome, err := svc.ValidateCSV(context.Background(),
		strings.NewReader(testCSVHeader+row), true)
	if err != nil {
		t.Fatalf("ValidateCSV() error = %v", err)
	}

	got := outcome.Report.Rows[0]
	if !got.WasAutoCorrected || got.City != "New York" || got.OriginalCity != "New Yorkk" {
		t.Errorf("row = %+v, want city auto-corrected", got)
	}
	if len(got.Warnings) != 0 {
		t.Errorf("corrected city should not warn: %v", got.Warnings)
	}
}

func TestService_ValidateCSV_NoDirectory(t *testing.T) {
	// Without a directory, city checks and auto-correction are skipped
	// entirely. The nil *geo.Directory must not leak into the validator
	// as a non-nil interface.
	svc := NewService(DefaultRules(), nil, nil, nil)

	row := strings.Replace(testCSVValidRow, "New York", "Not A City", 1)
	outcome, err := svc.ValidateCSV(context.Background(),
		strings.NewReader(testCSVHeader+row), true)
	if err != nil {
		t.Fatalf("ValidateCSV() error = %v", err)
	}

	got := outcome.Report.Rows[0]
	if !got.IsValid {
		t.Errorf("row errors = %v, want valid without city checks", got.Errors)
	}
	if len(got.Warnings) != 0 {
		t.Errorf("warnings = %v, want none without a directory", got.Warnings)
	}
	if got.WasAutoCorrected {
		t.Error("auto-correction ran without a directory")
	}
}

func TestService_ValidateCSV_InputErrors(t *testing.T) {
	svc := testService(t, nil)

	tests := []struct {
		name     string
		input    string
		wantCode string
	}{
		{name: "empty input", input: "", wantCode: "FILE001"},
		{name: "whitespace only", input: "\n\n", wantCode: "FILE001"},
		{name: "no header", input: "a,b,c\n1,2,3\n", wantCode: "FILE003"},
		{name: "header but no data", input: testCSVHeader, wantCode: "FILE001"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ValidateCSV(context.Background(), strings.NewReader(tt.input), false)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := MapError(err).Code; got != tt.wantCode {
				t.Errorf("error %v mapped to %s, want %s", err, got, tt.wantCode)
			}
		})
	}
}

func TestService_ImportCSV(t *testing.T) {
	st := newMemStore()
	svc := testService(t, st)

	result, err := svc.ImportCSV(context.Background(),
		strings.NewReader(testCSVHeader+testCSVValidRow+testCSVInvalidRow), "listings.csv", false)
	if err != nil {
		t.Fatalf("ImportCSV() error = %v", err)
	}

	if result.Inserted != 1 || result.Skipped != 1 {
		t.Errorf("Inserted/Skipped = %d/%d, want 1/1", result.Inserted, result.Skipped)
	}
	if got := len(st.properties[result.UploadID]); got != 1 {
		t.Errorf("store holds %d rows, want only the valid one", got)
	}

	rec, err := svc.Upload(context.Background(), result.UploadID)
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if rec.FileName != "listings.csv" || rec.TotalRows != 2 || rec.Inserted != 1 {
		t.Errorf("upload record = %+v", rec)
	}
}

func TestService_ImportCSV_NoStore(t *testing.T) {
	svc := testService(t, nil)
	_, err := svc.ImportCSV(context.Background(),
		strings.NewReader(testCSVHeader+testCSVValidRow), "x.csv", false)
	if err == nil {
		t.Fatal("import without a store must fail")
	}
}

func TestService_ImportCSV_InsertFailure(t *testing.T) {
	st := newMemStore()
	st.insertErr = errors.New("connection refused")
	svc := testService(t, st)

	_, err := svc.ImportCSV(context.Background(),
		strings.NewReader(testCSVHeader+testCSVValidRow), "x.csv", false)
	if err == nil {
		t.Fatal("expected insert failure to surface")
	}
	if got := MapError(err).Code; got != "DB002" {
		t.Errorf("error mapped to %s, want DB002", got)
	}
	if len(st.uploads) != 0 {
		t.Error("failed import must not record an upload")
	}
}

func TestService_Rollback(t *testing.T) {
	st := newMemStore()
	svc := testService(t, st)

	result, err := svc.ImportCSV(context.Background(),
		strings.NewReader(testCSVHeader+testCSVValidRow), "x.csv", false)
	if err != nil {
		t.Fatalf("ImportCSV() error = %v", err)
	}

	deleted, err := svc.Rollback(context.Background(), result.UploadID)
	if err != nil {
		t.Fatalf("Rollback() error = %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}

	// Idempotent: a second rollback deletes nothing and does not fail.
	deleted, err = svc.Rollback(context.Background(), result.UploadID)
	if err != nil {
		t.Fatalf("second Rollback() error = %v", err)
	}
	if deleted != 0 {
		t.Errorf("second rollback deleted = %d, want 0", deleted)
	}
}

func TestService_Rollback_UnknownUpload(t *testing.T) {
	svc := testService(t, newMemStore())
	deleted, err := svc.Rollback(context.Background(), uuid.New())
	if err != nil || deleted != 0 {
		t.Errorf("Rollback(unknown) = (%d, %v), want zero-delete success", deleted, err)
	}
}
