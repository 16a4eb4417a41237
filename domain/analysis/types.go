// Package analysis defines the structured output of a data-analysis query
// and the lenient decoding that turns loosely-typed LLM output into it.
package analysis

import (
	"dataprism/domain/core"
)

// Type classifies which kind of analysis the model performed.
type Type string

const (
	TypeDescriptive  Type = "descriptive"
	TypeDiagnostic   Type = "diagnostic"
	TypePredictive   Type = "predictive"
	TypePrescriptive Type = "prescriptive"
)

// ChartType enumerates the chart vocabulary the model may choose from.
type ChartType string

const (
	ChartLine    ChartType = "line"
	ChartBar     ChartType = "bar"
	ChartPie     ChartType = "pie"
	ChartScatter ChartType = "scatter"
	ChartArea    ChartType = "area"
)

// Impact classifies a forecast signal's direction.
type Impact string

const (
	ImpactPositive Impact = "positive"
	ImpactNegative Impact = "negative"
	ImpactNeutral  Impact = "neutral"
)

// Visualization is the chart specification for a result.
type Visualization struct {
	ChartType ChartType        `json:"chart_type"`
	Reason    string           `json:"reason"`
	Title     string           `json:"title"`
	XKey      string           `json:"x_key"`
	YKeys     []string         `json:"y_keys"`
	Data      []map[string]any `json:"data"`
}

// ForecastPoint is one projected period with its confidence interval.
type ForecastPoint struct {
	Period string  `json:"period"`
	Value  float64 `json:"value"`
	Lower  float64 `json:"lower"`
	Upper  float64 `json:"upper"`
}

// Signal is an external factor the model folded into a forecast.
type Signal struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Source string `json:"source"`
	Impact Impact `json:"impact"`
}

// Forecast carries projections when the query asked about the future.
type Forecast struct {
	Available   bool            `json:"available"`
	TimeHorizon string          `json:"time_horizon"`
	Data        []ForecastPoint `json:"data"`
	Confidence  string          `json:"confidence"`
	Signals     []Signal        `json:"signals"`
}

// Result is the coerced structured output of one query. Every field is
// always present with a well-typed (possibly empty) value.
type Result struct {
	QueryUnderstood string        `json:"query_understood"`
	AnalysisType    Type          `json:"analysis_type"`
	Visualization   Visualization `json:"visualization"`
	Summary         []string      `json:"analysis_summary"`
	Forecast        Forecast      `json:"forecast"`
	Insight         string        `json:"agent_insight"`
	Recommendations []string      `json:"recommendations"`
}

// Record is the stored outcome of one query against a dataset. Created on
// query completion (success or fallback) and never mutated.
type Record struct {
	ID        core.ID        `json:"id"`
	DatasetID core.ID        `json:"session_id"`
	Query     string         `json:"query"`
	Timestamp core.Timestamp `json:"timestamp"`
	Result    Result         `json:"response"`
}
