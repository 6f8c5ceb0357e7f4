// Package review implements the rule-based code critique that runs before
// the LLM is consulted. It is pure string matching: no I/O, no model calls.
package review

import (
	"fmt"
	"strings"

	"github.com/helmcode/llm911/pkg/incident"
)

// Default heuristic knobs. The values are inherited from the demo scenario
// and carry no deeper rationale, so they stay configurable instead of baked
// into the rules.
const (
	DefaultLatencyThreshold = 10.0
	DefaultTimeoutPattern   = "timeout="
)

const (
	obsTimeoutTooLow = "The incident is a TimeoutError and the code sets an explicit timeout; " +
		"that timeout is probably too low for real-world LLM latency."
	obsMissingRetry = "The code does not mention retries or backoff; consider adding retries " +
		"with backoff around the external LLM call."
	// Fallback is the observation emitted when no rule fires. Exported so
	// callers can distinguish "nothing found" from real findings.
	Fallback = "No obvious issues detected in this short snippet, but double-check " +
		"timeouts, retries, and latency handling."
)

// Config holds the heuristic thresholds.
type Config struct {
	// LatencyThreshold is the number of seconds above which observed
	// latency is called out as retriable.
	LatencyThreshold float64
	// TimeoutPattern is the literal substring that marks an explicit
	// timeout parameter in the reviewed code.
	TimeoutPattern string
}

// DefaultConfig returns the stock thresholds.
func DefaultConfig() Config {
	return Config{
		LatencyThreshold: DefaultLatencyThreshold,
		TimeoutPattern:   DefaultTimeoutPattern,
	}
}

// Review applies every rule independently and joins the fired observations
// with single spaces, in rule order. The result is never empty: when nothing
// fires the fixed Fallback sentence is returned.
func (c Config) Review(code, errorType string, latencySeconds *float64) string {
	var observations []string

	if errorType == incident.ErrorTypeTimeout && strings.Contains(code, c.TimeoutPattern) {
		observations = append(observations, obsTimeoutTooLow)
	}

	if latencySeconds != nil && *latencySeconds > c.LatencyThreshold {
		observations = append(observations, fmt.Sprintf(
			"The trace shows latency above %g seconds; calls are slow and should be treated as retriable.",
			c.LatencyThreshold))
	}

	lower := strings.ToLower(code)
	if !strings.Contains(lower, "retry") && !strings.Contains(lower, "backoff") {
		observations = append(observations, obsMissingRetry)
	}

	if len(observations) == 0 {
		observations = append(observations, Fallback)
	}
	return strings.Join(observations, " ")
}

// Review runs the rules with the default thresholds.
func Review(code, errorType string, latencySeconds *float64) string {
	return DefaultConfig().Review(code, errorType, latencySeconds)
}
