// Package app orchestrates the analysis pipeline: ingest and profile on
// upload, compose-generate-coerce on query. It holds no cross-request
// state; each operation is self-contained given its inputs and the stores.
package app

import (
	"context"
	"log"

	"dataprism/ai"
	"dataprism/domain/analysis"
	"dataprism/domain/core"
	"dataprism/domain/profile"
	"dataprism/internal/errors"
	"dataprism/internal/ingest"
	"dataprism/internal/profiling"
	"dataprism/ports"
)

// Service wires the pipeline to its collaborators.
type Service struct {
	datasets  ports.DatasetStore
	analyses  ports.AnalysisStore
	generator ports.Generator
}

// NewService builds a Service from its ports.
func NewService(datasets ports.DatasetStore, analyses ports.AnalysisStore, generator ports.Generator) *Service {
	return &Service{
		datasets:  datasets,
		analyses:  analyses,
		generator: generator,
	}
}

// Upload parses raw file bytes, profiles the resulting table, and stores
// the profile with its retained row sample. The returned profile includes
// the sample; handlers strip it with Summary before responding.
func (s *Service) Upload(ctx context.Context, filename string, raw []byte) (*profile.DatasetProfile, error) {
	table, removed, err := ingest.Ingest(raw, filename)
	if err != nil {
		return nil, err
	}

	columns, dateRange, quality := profiling.Profile(table)
	quality.DuplicatesRemoved = removed

	p := profile.DatasetProfile{
		ID:          core.NewID(),
		Filename:    filename,
		UploadedAt:  core.Now(),
		RowCount:    len(table.Rows),
		ColumnCount: len(table.Columns),
		Columns:     columns,
		DateRange:   dateRange,
		DataQuality: quality,
		Rows:        ingest.Records(table, ingest.MaxSampleRows),
	}

	if err := s.datasets.PutDataset(ctx, p); err != nil {
		return nil, errors.Wrap(err, "failed to store dataset profile")
	}

	log.Printf("[Service] dataset %s stored (%s, %d rows, %d columns)",
		p.ID, p.Filename, p.RowCount, p.ColumnCount)
	return &p, nil
}

// Query runs one analysis: load the dataset, compose the prompt, call the
// generator, coerce its output, and store the record. Upstream failures
// propagate as errors; only structurally-invalid-but-present responses
// fall back to the deterministic record.
func (s *Service) Query(ctx context.Context, datasetID core.ID, query string) (*analysis.Record, error) {
	if query == "" {
		return nil, errors.InvalidInput("query must not be empty")
	}

	dataset, err := s.datasets.GetDataset(ctx, datasetID)
	if err != nil {
		return nil, err
	}

	prompt := ai.ComposePrompt(*dataset, query)

	rawText, err := s.generator.Generate(ctx, ai.AnalysisSystemPrompt, prompt)
	if err != nil {
		return nil, errors.WithCode(errors.CodeUpstreamError, err)
	}

	rec := analysis.Record{
		ID:        core.NewID(),
		DatasetID: datasetID,
		Query:     query,
		Timestamp: core.Now(),
		Result:    ai.Coerce(rawText, query),
	}

	if err := s.analyses.PutAnalysis(ctx, rec); err != nil {
		return nil, errors.Wrap(err, "failed to store analysis record")
	}

	log.Printf("[Service] analysis %s stored for dataset %s (type=%s)",
		rec.ID, datasetID, rec.Result.AnalysisType)
	return &rec, nil
}

// ListDatasets returns dataset summaries, newest first.
func (s *Service) ListDatasets(ctx context.Context, limit int) ([]profile.DatasetProfile, error) {
	return s.datasets.ListDatasets(ctx, limit)
}

// GetDataset returns one dataset summary without its row sample.
func (s *Service) GetDataset(ctx context.Context, id core.ID) (*profile.DatasetProfile, error) {
	p, err := s.datasets.GetDataset(ctx, id)
	if err != nil {
		return nil, err
	}
	summary := p.Summary()
	return &summary, nil
}

// SampleRows returns up to limit stored sample rows for a dataset.
func (s *Service) SampleRows(ctx context.Context, id core.ID, limit int) ([]profile.Row, error) {
	p, err := s.datasets.GetDataset(ctx, id)
	if err != nil {
		return nil, err
	}
	rows := p.Rows
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

// ListAnalyses returns a dataset's analysis records, newest first.
func (s *Service) ListAnalyses(ctx context.Context, datasetID core.ID, limit int) ([]analysis.Record, error) {
	return s.analyses.ListAnalysesForDataset(ctx, datasetID, limit)
}

// GetAnalysis returns one stored analysis record.
func (s *Service) GetAnalysis(ctx context.Context, id core.ID) (*analysis.Record, error) {
	return s.analyses.GetAnalysis(ctx, id)
}

// DeleteDataset removes a dataset; its analysis records go with it.
func (s *Service) DeleteDataset(ctx context.Context, id core.ID) error {
	return s.datasets.DeleteDataset(ctx, id)
}
