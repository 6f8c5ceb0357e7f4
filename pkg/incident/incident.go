package incident

import "encoding/json"

const (
	// ErrorTypeTimeout is the only classified error type. Everything the
	// loader cannot classify becomes ErrorTypeUnknown.
	ErrorTypeTimeout = "TimeoutError"
	ErrorTypeUnknown = "UnknownError"
)

// Summary is the compact view of an error-tracking document. Raw keeps the
// full parsed document so the report prompt can include it verbatim.
type Summary struct {
	ErrorType string `json:"error_type"`
	Raw       any    `json:"raw"`
}

// TraceSummary is the compact view of a model-trace document.
// LatencySeconds is nil unless the first record carries a numeric
// metrics.latency_ms value.
type TraceSummary struct {
	LatencySeconds *float64 `json:"latency_seconds"`
	Raw            any      `json:"raw"`
}

// Bundle is one loaded sample incident. Immutable once produced; each load
// action replaces the whole bundle.
type Bundle struct {
	Incident Summary
	Trace    TraceSummary
	Code     string
	Warnings []string
}

// Derive builds both summaries from parsed JSON documents. It never fails:
// any shape it does not recognize yields the unknown/nil defaults.
func Derive(errorDoc, traceDoc any) (Summary, TraceSummary) {
	sum := Summary{ErrorType: ErrorTypeUnknown, Raw: errorDoc}
	if events, ok := errorDoc.([]any); ok && len(events) > 0 {
		if first, ok := events[0].(map[string]any); ok {
			if tags, ok := first["tags"].(map[string]any); ok {
				if tags["incident_type"] == "timeout" {
					sum.ErrorType = ErrorTypeTimeout
				}
			}
		}
	}

	trace := TraceSummary{Raw: traceDoc}
	if doc, ok := traceDoc.(map[string]any); ok {
		if records, ok := doc["records"].([]any); ok && len(records) > 0 {
			if first, ok := records[0].(map[string]any); ok {
				if metrics, ok := first["metrics"].(map[string]any); ok {
					if ms, ok := asFloat(metrics["latency_ms"]); ok {
						secs := ms / 1000.0
						trace.LatencySeconds = &secs
					}
				}
			}
		}
	}
	return sum, trace
}

// asFloat accepts the numeric shapes that show up in decoded JSON plus the
// int literals used when documents are built in code.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
