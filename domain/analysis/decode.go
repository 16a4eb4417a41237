package analysis

import (
	"fmt"
	"unicode/utf8"
)

const (
	fallbackSummaryLimit = 500
	fallbackInsightLimit = 300

	unparsedSummaryMessage = "Analysis could not be parsed"
	unparsedInsightMessage = "Unable to generate insight"
)

// FromUntyped builds a fully-typed Result from a parsed JSON object. It
// never fails: absent or wrong-typed keys are replaced by their typed
// defaults, unknown keys are ignored. A decoded Result is therefore safe
// to persist and serialize regardless of what the model produced.
func FromUntyped(obj map[string]any) Result {
	return Result{
		QueryUnderstood: asString(obj["query_understood"], ""),
		AnalysisType:    asAnalysisType(obj["analysis_type"]),
		Visualization:   visualizationFromUntyped(obj["visualization"]),
		Summary:         asStringSlice(obj["analysis_summary"]),
		Forecast:        forecastFromUntyped(obj["forecast"]),
		Insight:         asString(obj["agent_insight"], ""),
		Recommendations: asStringSlice(obj["recommendations"]),
	}
}

// Fallback is the deterministic Result produced when no structure could be
// extracted from raw model output. The raw text is preserved, truncated,
// so the response is never lost entirely.
func Fallback(query, rawText string) Result {
	summary := truncate(rawText, fallbackSummaryLimit)
	if summary == "" {
		summary = unparsedSummaryMessage
	}
	insight := truncate(rawText, fallbackInsightLimit)
	if insight == "" {
		insight = unparsedInsightMessage
	}

	return Result{
		QueryUnderstood: query,
		AnalysisType:    TypeDescriptive,
		Visualization: Visualization{
			ChartType: ChartBar,
			Reason:    "Default fallback",
			Title:     "Analysis",
			XKey:      "name",
			YKeys:     []string{"value"},
			Data:      []map[string]any{},
		},
		Summary: []string{summary},
		Forecast: Forecast{
			Available: false,
			Data:      []ForecastPoint{},
			Signals:   []Signal{},
		},
		Insight:         insight,
		Recommendations: []string{},
	}
}

func visualizationFromUntyped(v any) Visualization {
	obj, _ := v.(map[string]any)
	return Visualization{
		ChartType: asChartType(obj["chart_type"]),
		Reason:    asString(obj["reason"], ""),
		Title:     asString(obj["title"], ""),
		XKey:      asString(obj["x_key"], ""),
		YKeys:     asStringSlice(obj["y_keys"]),
		Data:      asObjectSlice(obj["data"]),
	}
}

func forecastFromUntyped(v any) Forecast {
	obj, _ := v.(map[string]any)
	available, _ := obj["available"].(bool)

	points := []ForecastPoint{}
	for _, e := range asObjectSlice(obj["data"]) {
		points = append(points, ForecastPoint{
			Period: asString(e["period"], ""),
			Value:  asFloat(e["value"]),
			Lower:  asFloat(e["lower"]),
			Upper:  asFloat(e["upper"]),
		})
	}

	signals := []Signal{}
	for _, e := range asObjectSlice(obj["signals"]) {
		signals = append(signals, Signal{
			Name:   asString(e["name"], ""),
			Value:  asString(e["value"], ""),
			Source: asString(e["source"], ""),
			Impact: asImpact(e["impact"]),
		})
	}

	return Forecast{
		Available:   available,
		TimeHorizon: asString(obj["time_horizon"], ""),
		Data:        points,
		Confidence:  asString(obj["confidence"], ""),
		Signals:     signals,
	}
}

func asString(v any, def string) string {
	switch x := v.(type) {
	case string:
		return x
	case float64, int, int64, bool:
		// Models occasionally emit bare scalars where strings are expected.
		return fmt.Sprintf("%v", x)
	default:
		return def
	}
}

func asFloat(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case int:
		return float64(x)
	case int64:
		return float64(x)
	default:
		return 0
	}
}

func asStringSlice(v any) []string {
	raw, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(raw))
	for _, e := range raw {
		if s := asString(e, ""); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func asObjectSlice(v any) []map[string]any {
	raw, ok := v.([]any)
	if !ok {
		return []map[string]any{}
	}
	out := make([]map[string]any, 0, len(raw))
	for _, e := range raw {
		if obj, ok := e.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}

func asAnalysisType(v any) Type {
	switch Type(asString(v, "")) {
	case TypeDiagnostic:
		return TypeDiagnostic
	case TypePredictive:
		return TypePredictive
	case TypePrescriptive:
		return TypePrescriptive
	default:
		return TypeDescriptive
	}
}

func asChartType(v any) ChartType {
	switch ChartType(asString(v, "")) {
	case ChartLine:
		return ChartLine
	case ChartPie:
		return ChartPie
	case ChartScatter:
		return ChartScatter
	case ChartArea:
		return ChartArea
	default:
		return ChartBar
	}
}

func asImpact(v any) Impact {
	switch Impact(asString(v, "")) {
	case ImpactPositive:
		return ImpactPositive
	case ImpactNegative:
		return ImpactNegative
	default:
		return ImpactNeutral
	}
}

// truncate limits s to max runes without splitting a multibyte character.
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}
