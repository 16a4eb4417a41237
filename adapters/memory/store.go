// Package memory provides an in-process implementation of the dataset and
// analysis stores. It backs tests and key-less local runs; semantics match
// the Postgres adapter, including the delete cascade and list ordering.
package memory

import (
	"context"
	"sort"
	"sync"

	"dataprism/domain/analysis"
	"dataprism/domain/core"
	"dataprism/domain/profile"
	"dataprism/internal/errors"
)

const defaultListLimit = 100

// Store keeps datasets and analyses in guarded maps.
type Store struct {
	mu       sync.RWMutex
	datasets map[core.ID]profile.DatasetProfile
	analyses map[core.ID]analysis.Record
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		datasets: make(map[core.ID]profile.DatasetProfile),
		analyses: make(map[core.ID]analysis.Record),
	}
}

func (s *Store) PutDataset(_ context.Context, p profile.DatasetProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.datasets[p.ID] = p
	return nil
}

func (s *Store) GetDataset(_ context.Context, id core.ID) (*profile.DatasetProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.datasets[id]
	if !ok {
		return nil, errors.NotFound("dataset")
	}
	return &p, nil
}

func (s *Store) ListDatasets(_ context.Context, limit int) ([]profile.DatasetProfile, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]profile.DatasetProfile, 0, len(s.datasets))
	for _, p := range s.datasets {
		out = append(out, p.Summary())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[j].UploadedAt.Before(out[i].UploadedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) DeleteDataset(_ context.Context, id core.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.datasets[id]; !ok {
		return errors.NotFound("dataset")
	}
	delete(s.datasets, id)
	for aid, rec := range s.analyses {
		if rec.DatasetID == id {
			delete(s.analyses, aid)
		}
	}
	return nil
}

func (s *Store) PutAnalysis(_ context.Context, rec analysis.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.analyses[rec.ID] = rec
	return nil
}

func (s *Store) GetAnalysis(_ context.Context, id core.ID) (*analysis.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.analyses[id]
	if !ok {
		return nil, errors.NotFound("analysis")
	}
	return &rec, nil
}

func (s *Store) ListAnalysesForDataset(_ context.Context, datasetID core.ID, limit int) ([]analysis.Record, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]analysis.Record, 0)
	for _, rec := range s.analyses {
		if rec.DatasetID == datasetID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[j].Timestamp.Before(out[i].Timestamp)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
