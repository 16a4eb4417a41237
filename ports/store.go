// Package ports defines the interfaces the analysis pipeline requires from
// its collaborators. Adapters implement them; the core never constructs
// its own persistence or transport.
package ports

import (
	"context"

	"dataprism/domain/analysis"
	"dataprism/domain/core"
	"dataprism/domain/profile"
)

// DatasetStore persists dataset profiles. Identifiers are caller-generated
// opaque tokens; the store never mints its own.
type DatasetStore interface {
	// PutDataset stores a complete profile, including the retained row sample.
	PutDataset(ctx context.Context, p profile.DatasetProfile) error

	// GetDataset returns the full profile, rows included. Missing datasets
	// yield a NOT_FOUND error.
	GetDataset(ctx context.Context, id core.ID) (*profile.DatasetProfile, error)

	// ListDatasets returns profiles without row data, ordered by uploadedAt
	// descending. limit <= 0 means the store's default cap.
	ListDatasets(ctx context.Context, limit int) ([]profile.DatasetProfile, error)

	// DeleteDataset removes a profile and cascades to its analysis records.
	DeleteDataset(ctx context.Context, id core.ID) error
}

// AnalysisStore persists query results. Records are immutable once written.
type AnalysisStore interface {
	PutAnalysis(ctx context.Context, rec analysis.Record) error

	GetAnalysis(ctx context.Context, id core.ID) (*analysis.Record, error)

	// ListAnalysesForDataset returns records for one dataset, ordered by
	// timestamp descending. limit <= 0 means the store's default cap.
	ListAnalysesForDataset(ctx context.Context, datasetID core.ID, limit int) ([]analysis.Record, error)
}
