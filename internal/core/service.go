package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/estatehub/listimport/internal/csvio"
	"github.com/estatehub/listimport/internal/geo"
)

// ErrUploadNotFound is returned for lookups and rollbacks of unknown
// upload IDs.
var ErrUploadNotFound = errors.New("upload not found")

// UploadRecord is the persisted history entry for one import.
type UploadRecord struct {
	ID          uuid.UUID     `json:"id"`
	FileName    string        `json:"fileName"`
	TotalRows   int           `json:"totalRows"`
	ValidRows   int           `json:"validRows"`
	InvalidRows int           `json:"invalidRows"`
	Inserted    int           `json:"inserted"`
	Duration    time.Duration `json:"duration"`
	CreatedAt   time.Time     `json:"createdAt"`
}

// ImportStore persists accepted rows and upload history. Implemented by
// the postgres store; the CLI runs without one.
type ImportStore interface {
	InsertProperties(ctx context.Context, uploadID uuid.UUID, rows []PropertyRow) (int, error)
	RecordUpload(ctx context.Context, rec UploadRecord) error
	GetUpload(ctx context.Context, id uuid.UUID) (*UploadRecord, error)
	DeleteByUpload(ctx context.Context, id uuid.UUID) (int64, error)
}

// ValidationOutcome is the full result of validating one uploaded file.
type ValidationOutcome struct {
	Report         BatchReport `json:"report"`
	Summary        Summary     `json:"summary"`
	UnknownColumns []string    `json:"unknownColumns,omitempty"`
}

// ImportResult is the outcome of a validate-and-persist run.
type ImportResult struct {
	UploadID uuid.UUID         `json:"uploadId"`
	Outcome  ValidationOutcome `json:"outcome"`
	Inserted int               `json:"inserted"`
	Skipped  int               `json:"skipped"`
	Duration time.Duration     `json:"duration"`
}

// Service wires the rule table, the location directory, and the store
// into the operations the HTTP handlers and the CLI call. All collaborators
// are injected; the service itself holds no mutable state.
type Service struct {
	rules     []Rule
	validator *RowValidator
	dir       *geo.Directory
	store     ImportStore
	limiter   *ImportLimiter
}

// NewService builds a service. store may be nil for validate-only use;
// limiter may be nil to run unbounded; dir may be nil to skip city
// checks and auto-correction entirely.
func NewService(rules []Rule, dir *geo.Directory, store ImportStore, limiter *ImportLimiter) *Service {
	// A nil *geo.Directory must stay a nil interface inside the
	// validator, or its nil check never fires.
	var cities CityDirectory
	if dir != nil {
		cities = dir
	}
	return &Service{
		rules:     rules,
		validator: NewRowValidator(rules, cities),
		dir:       dir,
		store:     store,
		limiter:   limiter,
	}
}

// Rules returns the API representation of the active rule table.
func (s *Service) Rules() []RuleDoc {
	return DocumentRules(s.rules)
}

// Directory exposes the location directory for the lookup endpoints.
func (s *Service) Directory() *geo.Directory {
	return s.dir
}

// ValidateCSV parses, maps, optionally auto-corrects, and validates one
// CSV stream. It performs no writes.
func (s *Service) ValidateCSV(ctx context.Context, r io.Reader, autoCorrect bool) (*ValidationOutcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records, err := csvio.Parse(r)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty file")
	}

	headerLine := FindHeaderRow(records)
	if headerLine < 0 {
		return nil, fmt.Errorf("header not found")
	}

	idx, unknown := MakeFieldIndex(records[headerLine])
	rows := BuildRows(records[headerLine+1:], idx, headerLine)
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty file: no data rows after header")
	}

	if autoCorrect && s.dir != nil {
		AutoCorrectCities(rows, s.dir)
	}

	report := ValidateAll(rows, s.validator)

	return &ValidationOutcome{
		Report:         report,
		Summary:        Summarize(report.Rows),
		UnknownColumns: unknown,
	}, nil
}

// ImportCSV validates the stream and persists every valid row under a
// fresh upload ID. Invalid rows are skipped, never inserted; warnings do
// not block insertion.
func (s *Service) ImportCSV(ctx context.Context, r io.Reader, fileName string, autoCorrect bool) (*ImportResult, error) {
	if s.store == nil {
		return nil, fmt.Errorf("import requires a database")
	}

	if s.limiter != nil {
		if err := s.limiter.Acquire(ctx); err != nil {
			return nil, err
		}
		defer s.limiter.Release()
	}

	start := time.Now()

	outcome, err := s.ValidateCSV(ctx, r, autoCorrect)
	if err != nil {
		return nil, err
	}

	valid := make([]PropertyRow, 0, outcome.Report.ValidRows)
	for _, row := range outcome.Report.Rows {
		if row.IsValid {
			valid = append(valid, row)
		}
	}

	uploadID := uuid.New()
	inserted := 0
	if len(valid) > 0 {
		inserted, err = s.store.InsertProperties(ctx, uploadID, valid)
		if err != nil {
			return nil, fmt.Errorf("insert properties: %w", err)
		}
	}

	rec := UploadRecord{
		ID:          uploadID,
		FileName:    fileName,
		TotalRows:   outcome.Report.TotalRows,
		ValidRows:   outcome.Report.ValidRows,
		InvalidRows: outcome.Report.InvalidRows,
		Inserted:    inserted,
		Duration:    time.Since(start),
		CreatedAt:   start,
	}
	if err := s.store.RecordUpload(ctx, rec); err != nil {
		return nil, fmt.Errorf("record upload: %w", err)
	}

	return &ImportResult{
		UploadID: uploadID,
		Outcome:  *outcome,
		Inserted: inserted,
		Skipped:  outcome.Report.InvalidRows,
		Duration: time.Since(start),
	}, nil
}

// Upload returns the history record for an import.
func (s *Service) Upload(ctx context.Context, id uuid.UUID) (*UploadRecord, error) {
	if s.store == nil {
		return nil, fmt.Errorf("upload lookup requires a database")
	}
	return s.store.GetUpload(ctx, id)
}

// Rollback deletes every property row inserted under the upload ID.
// Rolling back an unknown or already-rolled-back upload deletes zero
// rows and succeeds; the operation is idempotent.
func (s *Service) Rollback(ctx context.Context, id uuid.UUID) (int64, error) {
	if s.store == nil {
		return 0, fmt.Errorf("rollback requires a database")
	}
	return s.store.DeleteByUpload(ctx, id)
}

// FailedRecords renders the invalid rows of a report as CSV records with
// a leading reason column, for the failed-rows download.
func FailedRecords(report BatchReport) [][]string {
	header := []string{"errors", "title", "country", "address", "city", "zipCode",
		"telephone", "price", "propertyType", "listingType", "bedrooms", "toilets",
		"propertySize", "description"}
	out := [][]string{header}

	for _, row := range report.Rows {
		if row.IsValid {
			continue
		}
		out = append(out, []string{
			strings.Join(row.Errors, "; "),
			row.Title,
			row.Country,
			row.Address,
			row.City,
			row.ZipCode,
			row.Telephone,
			strconv.FormatFloat(row.Price, 'f', -1, 64),
			row.PropertyType,
			string(row.ListingType),
			strconv.Itoa(row.Bedrooms),
			strconv.Itoa(row.Toilets),
			strconv.FormatFloat(row.PropertySize, 'f', -1, 64),
			row.Description,
		})
	}
	return out
}
