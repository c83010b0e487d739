// Package store persists accepted listing rows and upload history in
// Postgres via pgx.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/estatehub/listimport/internal/core"
)

// DBTX is the subset of pgxpool.Pool the store needs. Satisfied by
// *pgxpool.Pool and by pgx transactions in tests.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// Store implements core.ImportStore on Postgres.
type Store struct {
	db DBTX
}

func New(db DBTX) *Store {
	return &Store{db: db}
}

const schema = `
CREATE TABLE IF NOT EXISTS uploads (
	id           UUID PRIMARY KEY,
	file_name    TEXT NOT NULL,
	total_rows   INTEGER NOT NULL,
	valid_rows   INTEGER NOT NULL,
	invalid_rows INTEGER NOT NULL,
	inserted     INTEGER NOT NULL,
	duration_ms  BIGINT NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS properties (
	id            BIGSERIAL PRIMARY KEY,
	upload_id     UUID NOT NULL,
	title         TEXT NOT NULL,
	country       TEXT NOT NULL,
	address       TEXT NOT NULL,
	city          TEXT NOT NULL,
	zip_code      TEXT NOT NULL,
	telephone     TEXT NOT NULL,
	price         DOUBLE PRECISION NOT NULL,
	property_type TEXT NOT NULL,
	listing_type  TEXT NOT NULL,
	bedrooms      INTEGER NOT NULL,
	toilets       INTEGER NOT NULL,
	property_size DOUBLE PRECISION NOT NULL,
	year_built    INTEGER,
	parking_space TEXT,
	description   TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS properties_upload_id_idx ON properties (upload_id);
`

// EnsureSchema creates the tables on startup when they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

var propertyColumns = []string{
	"upload_id", "title", "country", "address", "city", "zip_code",
	"telephone", "price", "property_type", "listing_type", "bedrooms",
	"toilets", "property_size", "year_built", "parking_space", "description",
}

// InsertProperties bulk-inserts rows under uploadID using COPY.
func (s *Store) InsertProperties(ctx context.Context, uploadID uuid.UUID, rows []core.PropertyRow) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	src := pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
		r := rows[i]

		yearBuilt := pgtype.Int4{}
		if r.YearBuilt != nil {
			yearBuilt = pgtype.Int4{Int32: int32(*r.YearBuilt), Valid: true}
		}
		parking := pgtype.Text{}
		if r.ParkingSpace != "" {
			parking = pgtype.Text{String: r.ParkingSpace, Valid: true}
		}

		return []any{
			uploadID, r.Title, r.Country, r.Address, r.City, r.ZipCode,
			r.Telephone, r.Price, r.PropertyType, string(r.ListingType),
			r.Bedrooms, r.Toilets, r.PropertySize, yearBuilt, parking,
			r.Description,
		}, nil
	})

	n, err := s.db.CopyFrom(ctx, pgx.Identifier{"properties"}, propertyColumns, src)
	if err != nil {
		return 0, fmt.Errorf("copy properties: %w", err)
	}
	return int(n), nil
}

// RecordUpload writes the history entry for an import.
func (s *Store) RecordUpload(ctx context.Context, rec core.UploadRecord) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO uploads (id, file_name, total_rows, valid_rows, invalid_rows, inserted, duration_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID, rec.FileName, rec.TotalRows, rec.ValidRows, rec.InvalidRows,
		rec.Inserted, rec.Duration.Milliseconds(), rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("record upload: %w", err)
	}
	return nil
}

// GetUpload returns the history entry for id, or core.ErrUploadNotFound.
func (s *Store) GetUpload(ctx context.Context, id uuid.UUID) (*core.UploadRecord, error) {
	var (
		rec        core.UploadRecord
		durationMS int64
	)
	err := s.db.QueryRow(ctx, `
		SELECT id, file_name, total_rows, valid_rows, invalid_rows, inserted, duration_ms, created_at
		FROM uploads WHERE id = $1`, id).
		Scan(&rec.ID, &rec.FileName, &rec.TotalRows, &rec.ValidRows,
			&rec.InvalidRows, &rec.Inserted, &durationMS, &rec.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, core.ErrUploadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get upload: %w", err)
	}
	rec.Duration = time.Duration(durationMS) * time.Millisecond
	return &rec, nil
}

// DeleteByUpload removes every property row inserted under id and
// reports how many were deleted. Deleting an already rolled back upload
// is a no-op.
func (s *Store) DeleteByUpload(ctx context.Context, id uuid.UUID) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM properties WHERE upload_id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("delete by upload: %w", err)
	}
	return tag.RowsAffected(), nil
}
