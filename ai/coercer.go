package ai

import (
	"encoding/json"
	"log"
	"strings"

	"dataprism/domain/analysis"
)

// Coerce turns raw model output into a fully-typed analysis result. It is
// total: fenced JSON is unwrapped, JSON embedded in surrounding prose is
// rescued by a brace scan, and anything else collapses into the
// deterministic fallback record built around fallbackQuery. Transport
// failures must be handled before calling Coerce; the fallback exists for
// malformed content, not for failed requests.
func Coerce(rawText, fallbackQuery string) analysis.Result {
	cleaned := stripFences(strings.TrimSpace(rawText))

	if obj, ok := parseObject(cleaned); ok {
		return analysis.FromUntyped(obj)
	}

	// Second tier: the model wrapped its JSON in commentary. Take the
	// greedy outermost-brace span and try again.
	if start, end := strings.Index(cleaned, "{"), strings.LastIndex(cleaned, "}"); start >= 0 && end > start {
		if obj, ok := parseObject(cleaned[start : end+1]); ok {
			log.Printf("[Coerce] strict parse failed, recovered JSON via brace scan")
			return analysis.FromUntyped(obj)
		}
	}

	log.Printf("[Coerce] response unparseable (%d bytes), producing fallback record", len(rawText))
	return analysis.Fallback(fallbackQuery, rawText)
}

func parseObject(text string) (map[string]any, bool) {
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, false
	}
	obj, ok := v.(map[string]any)
	return obj, ok
}

// stripFences removes a surrounding markdown code fence and the optional
// language tag after the opening fence.
func stripFences(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	parts := strings.Split(text, "```")
	if len(parts) < 2 {
		return text
	}
	inner := parts[1]
	inner = strings.TrimPrefix(inner, "json")
	return strings.TrimSpace(inner)
}
