// Package postgres implements the dataset and analysis stores on
// PostgreSQL via sqlx. Profile payloads are stored as JSONB; the analysis
// cascade is enforced by a foreign key.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/jmoiron/sqlx"

	"dataprism/domain/analysis"
	"dataprism/domain/core"
	"dataprism/domain/profile"
	"dataprism/internal/errors"
)

const defaultListLimit = 100

// Store implements ports.DatasetStore and ports.AnalysisStore.
type Store struct {
	db *sqlx.DB
}

// NewStore wraps an open connection.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Migrate creates the schema when it does not exist yet.
func Migrate(db *sqlx.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS datasets (
		id           TEXT PRIMARY KEY,
		filename     TEXT NOT NULL,
		uploaded_at  TIMESTAMPTZ NOT NULL,
		row_count    INTEGER NOT NULL,
		column_count INTEGER NOT NULL,
		columns      JSONB NOT NULL,
		date_range   JSONB,
		data_quality JSONB NOT NULL,
		sample_rows  JSONB NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_datasets_uploaded_at ON datasets (uploaded_at DESC);

	CREATE TABLE IF NOT EXISTS analyses (
		id         TEXT PRIMARY KEY,
		dataset_id TEXT NOT NULL REFERENCES datasets(id) ON DELETE CASCADE,
		query      TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		result     JSONB NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_analyses_dataset ON analyses (dataset_id, created_at DESC);
	`
	if _, err := db.Exec(schema); err != nil {
		return errors.Wrap(err, "failed to create schema")
	}
	return nil
}

func (s *Store) PutDataset(ctx context.Context, p profile.DatasetProfile) error {
	columns, err := json.Marshal(p.Columns)
	if err != nil {
		return errors.Wrap(err, "marshal columns")
	}
	var dateRange []byte
	if p.DateRange != nil {
		if dateRange, err = json.Marshal(p.DateRange); err != nil {
			return errors.Wrap(err, "marshal date range")
		}
	}
	quality, err := json.Marshal(p.DataQuality)
	if err != nil {
		return errors.Wrap(err, "marshal data quality")
	}
	rows, err := json.Marshal(p.Rows)
	if err != nil {
		return errors.Wrap(err, "marshal sample rows")
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO datasets (id, filename, uploaded_at, row_count, column_count, columns, date_range, data_quality, sample_rows)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, p.ID, p.Filename, p.UploadedAt.Time(), p.RowCount, p.ColumnCount, columns, nullable(dateRange), quality, rows)
	if err != nil {
		return errors.StoreError(err)
	}
	return nil
}

func (s *Store) GetDataset(ctx context.Context, id core.ID) (*profile.DatasetProfile, error) {
	row := s.db.QueryRowxContext(ctx, `
		SELECT id, filename, uploaded_at, row_count, column_count, columns, date_range, data_quality, sample_rows
		FROM datasets WHERE id = $1
	`, id)

	p, err := scanDataset(row, true)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("dataset")
	}
	if err != nil {
		return nil, errors.StoreError(err)
	}
	return p, nil
}

func (s *Store) ListDatasets(ctx context.Context, limit int) ([]profile.DatasetProfile, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := s.db.QueryxContext(ctx, `
		SELECT id, filename, uploaded_at, row_count, column_count, columns, date_range, data_quality
		FROM datasets
		ORDER BY uploaded_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, errors.StoreError(err)
	}
	defer rows.Close()

	var out []profile.DatasetProfile
	for rows.Next() {
		p, err := scanDataset(rows, false)
		if err != nil {
			return nil, errors.StoreError(err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.StoreError(err)
	}
	return out, nil
}

func (s *Store) DeleteDataset(ctx context.Context, id core.ID) error {
	// The foreign key cascades to analyses.
	res, err := s.db.ExecContext(ctx, `DELETE FROM datasets WHERE id = $1`, id)
	if err != nil {
		return errors.StoreError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.StoreError(err)
	}
	if affected == 0 {
		return errors.NotFound("dataset")
	}
	return nil
}

func (s *Store) PutAnalysis(ctx context.Context, rec analysis.Record) error {
	result, err := json.Marshal(rec.Result)
	if err != nil {
		return errors.Wrap(err, "marshal result")
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO analyses (id, dataset_id, query, created_at, result)
		VALUES ($1, $2, $3, $4, $5)
	`, rec.ID, rec.DatasetID, rec.Query, rec.Timestamp.Time(), result)
	if err != nil {
		return errors.StoreError(err)
	}
	return nil
}

func (s *Store) GetAnalysis(ctx context.Context, id core.ID) (*analysis.Record, error) {
	row := s.db.QueryRowxContext(ctx, `
		SELECT id, dataset_id, query, created_at, result
		FROM analyses WHERE id = $1
	`, id)

	rec, err := scanAnalysis(row)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("analysis")
	}
	if err != nil {
		return nil, errors.StoreError(err)
	}
	return rec, nil
}

func (s *Store) ListAnalysesForDataset(ctx context.Context, datasetID core.ID, limit int) ([]analysis.Record, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := s.db.QueryxContext(ctx, `
		SELECT id, dataset_id, query, created_at, result
		FROM analyses
		WHERE dataset_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, datasetID, limit)
	if err != nil {
		return nil, errors.StoreError(err)
	}
	defer rows.Close()

	var out []analysis.Record
	for rows.Next() {
		rec, err := scanAnalysis(rows)
		if err != nil {
			return nil, errors.StoreError(err)
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.StoreError(err)
	}
	return out, nil
}

// scanner covers both *sqlx.Row and *sqlx.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanDataset(sc scanner, withRows bool) (*profile.DatasetProfile, error) {
	var (
		p          profile.DatasetProfile
		uploadedAt sql.NullTime
		columns    []byte
		dateRange  []byte
		quality    []byte
		sampleRows []byte
	)

	dest := []interface{}{&p.ID, &p.Filename, &uploadedAt, &p.RowCount, &p.ColumnCount, &columns, &dateRange, &quality}
	if withRows {
		dest = append(dest, &sampleRows)
	}
	if err := sc.Scan(dest...); err != nil {
		return nil, err
	}

	if uploadedAt.Valid {
		p.UploadedAt = core.NewTimestamp(uploadedAt.Time)
	}
	if err := json.Unmarshal(columns, &p.Columns); err != nil {
		return nil, err
	}
	if len(dateRange) > 0 {
		if err := json.Unmarshal(dateRange, &p.DateRange); err != nil {
			return nil, err
		}
	}
	if err := json.Unmarshal(quality, &p.DataQuality); err != nil {
		return nil, err
	}
	if withRows && len(sampleRows) > 0 {
		if err := json.Unmarshal(sampleRows, &p.Rows); err != nil {
			return nil, err
		}
	}
	return &p, nil
}

func scanAnalysis(sc scanner) (*analysis.Record, error) {
	var (
		rec       analysis.Record
		createdAt sql.NullTime
		result    []byte
	)
	if err := sc.Scan(&rec.ID, &rec.DatasetID, &rec.Query, &createdAt, &result); err != nil {
		return nil, err
	}
	if createdAt.Valid {
		rec.Timestamp = core.NewTimestamp(createdAt.Time)
	}
	if err := json.Unmarshal(result, &rec.Result); err != nil {
		return nil, err
	}
	return &rec, nil
}

func nullable(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return b
}
