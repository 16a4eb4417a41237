// Package profile defines the statistical summary records computed for an
// uploaded dataset.
package profile

import (
	"bytes"
	"encoding/json"

	"dataprism/domain/core"
)

// ColumnKind classifies a column for profiling purposes. Exactly one
// branch of statistics is populated per column, determined by its kind.
type ColumnKind string

const (
	KindNumeric     ColumnKind = "numeric"
	KindTemporal    ColumnKind = "temporal"
	KindCategorical ColumnKind = "categorical"
)

// ColumnProfile holds the descriptive statistics for a single column.
// Min and Max carry floats (or ints) for numeric columns and RFC3339
// strings for temporal ones; statistic fields erased by sanitization
// are omitted.
type ColumnProfile struct {
	Name        string     `json:"name"`
	Kind        ColumnKind `json:"type"`
	NullCount   int        `json:"null_count"`
	UniqueCount int        `json:"unique_count"`
	Min         any        `json:"min,omitempty"`
	Max         any        `json:"max,omitempty"`
	Mean        *float64   `json:"mean,omitempty"`
	Median      *float64   `json:"median,omitempty"`
	StdDev      *float64   `json:"std,omitempty"`
	TopValues   TopValues  `json:"top_values,omitempty"`
}

// ValueCount is one entry of a categorical frequency table.
type ValueCount struct {
	Value string
	Count int
}

// TopValues is a frequency table ordered by descending count, ties broken
// by first-encountered order. It marshals as a JSON object so the wire
// shape matches {"value": count, ...}.
type TopValues []ValueCount

func (tv TopValues) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, vc := range tv {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(vc.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		count, err := json.Marshal(vc.Count)
		if err != nil {
			return nil, err
		}
		buf.Write(count)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (tv *TopValues) UnmarshalJSON(data []byte) error {
	// Order inside a JSON object is not recoverable; re-sort by count so a
	// round-tripped profile keeps the descending-count invariant.
	var m map[string]int
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	out := make(TopValues, 0, len(m))
	for v, c := range m {
		out = append(out, ValueCount{Value: v, Count: c})
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && (out[j].Count > out[j-1].Count ||
			(out[j].Count == out[j-1].Count && out[j].Value < out[j-1].Value)); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	*tv = out
	return nil
}

// DateRange reports the span of the first temporal column, when one exists.
type DateRange struct {
	Column string `json:"column"`
	Start  string `json:"start"`
	End    string `json:"end"`
}

// DataQuality summarizes dataset-level hygiene counters.
type DataQuality struct {
	TotalNulls        int `json:"total_nulls"`
	DuplicatesFound   int `json:"duplicates_found"`
	DuplicatesRemoved int `json:"duplicates_removed"`
}

// Row is one sanitized sample row, keyed by column name.
type Row map[string]any

// DatasetProfile is the stored record for one uploaded file. Created
// atomically on ingest and immutable afterwards except for deletion.
type DatasetProfile struct {
	ID          core.ID         `json:"id"`
	Filename    string          `json:"filename"`
	UploadedAt  core.Timestamp  `json:"uploaded_at"`
	RowCount    int             `json:"row_count"`
	ColumnCount int             `json:"column_count"`
	Columns     []ColumnProfile `json:"columns"`
	DateRange   *DateRange      `json:"date_range"`
	DataQuality DataQuality     `json:"data_quality"`
	Rows        []Row           `json:"data,omitempty"`
}

// Summary returns a copy of the profile without the retained row sample,
// the shape used for listings and transport.
func (p DatasetProfile) Summary() DatasetProfile {
	out := p
	out.Rows = nil
	return out
}
