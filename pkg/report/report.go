// Package report turns a loaded incident bundle into the operator-facing
// incident report. Every failure mode at the LLM boundary is converted into
// a tagged Outcome; Generate is a total function and never panics or
// propagates an error.
package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/helmcode/llm911/pkg/config"
	"github.com/helmcode/llm911/pkg/incident"
	"github.com/helmcode/llm911/pkg/llm"
	"github.com/helmcode/llm911/pkg/prompts"
	"github.com/helmcode/llm911/pkg/review"
	"github.com/helmcode/llm911/pkg/status"
)

// ErrorTag prefixes every failure string so the UI (and tests) can tell a
// failed generation from a real report.
const ErrorTag = "[LLM 911 ERROR]"

// OutcomeKind tags the result of one generation attempt.
type OutcomeKind string

const (
	OutcomeOK         OutcomeKind = "ok"
	OutcomeClientInit OutcomeKind = "client_init"
	OutcomeAPIStatus  OutcomeKind = "api_status"
	OutcomeTransport  OutcomeKind = "transport"
	OutcomeEmpty      OutcomeKind = "empty_response"
)

// Outcome is the tagged result of Run. Text holds the report when Kind is
// OutcomeOK; Detail and StatusCode describe the failure otherwise.
type Outcome struct {
	Kind       OutcomeKind `json:"kind"`
	Text       string      `json:"text,omitempty"`
	Detail     string      `json:"detail,omitempty"`
	StatusCode int         `json:"status_code,omitempty"`
}

func (o Outcome) OK() bool {
	return o.Kind == OutcomeOK
}

// String renders the outcome as the single displayable report string.
func (o Outcome) String() string {
	switch o.Kind {
	case OutcomeOK:
		return o.Text
	case OutcomeClientInit:
		return fmt.Sprintf("%s Could not initialize LLM client. Details: %s", ErrorTag, o.Detail)
	case OutcomeAPIStatus:
		return fmt.Sprintf("%s LLM API error while generating the report. Status: %d, Details: %s",
			ErrorTag, o.StatusCode, o.Detail)
	case OutcomeEmpty:
		return fmt.Sprintf("%s LLM returned an empty response.", ErrorTag)
	default:
		return fmt.Sprintf("%s Unexpected error while calling the LLM. Details: %s", ErrorTag, o.Detail)
	}
}

// HealthChecker is the best-effort provider health probe. The concrete
// implementation lives in pkg/status; tests substitute a stub.
type HealthChecker interface {
	CheckWithFallback(ctx context.Context) string
}

type Generator struct {
	llm     llm.LLM
	initErr error
	health  HealthChecker
	review  review.Config
	log     *zap.Logger
}

// New wires a generator from configuration. A missing or invalid credential
// is not an immediate error: it is carried as a client-init outcome so the
// interactive session keeps running.
func New(cfg *config.Config, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	client, err := llm.CreateLLM(llm.Provider(cfg.LLM.Provider), cfg.LLM.APIKey(), cfg.LLM.Model)

	rc := review.Config{
		LatencyThreshold: cfg.Review.LatencyThreshold,
		TimeoutPattern:   cfg.Review.TimeoutPattern,
	}
	// An unset review section must not degenerate the rules (an empty
	// pattern matches every snippet).
	if rc.TimeoutPattern == "" {
		rc.TimeoutPattern = review.DefaultTimeoutPattern
	}
	if rc.LatencyThreshold == 0 {
		rc.LatencyThreshold = review.DefaultLatencyThreshold
	}

	return &Generator{
		llm:     client,
		initErr: err,
		health:  status.NewClient(cfg.Status, logger),
		review:  rc,
		log:     logger.Named("report"),
	}
}

// NewWithLLM injects the LLM and health checker directly. Used by tests.
func NewWithLLM(l llm.LLM, health HealthChecker, rc review.Config) *Generator {
	return &Generator{llm: l, health: health, review: rc, log: zap.NewNop()}
}

// Review runs only the heuristic reviewer for the given bundle.
func (g *Generator) Review(b *incident.Bundle) string {
	if b == nil {
		b = &incident.Bundle{}
	}
	return g.review.Review(b.Code, b.Incident.ErrorType, b.Trace.LatencySeconds)
}

// Run generates the incident report and returns the tagged outcome.
func (g *Generator) Run(ctx context.Context, b *incident.Bundle) Outcome {
	if b == nil {
		b = &incident.Bundle{}
	}

	// The review always runs first: it is prompt context even when the LLM
	// call later fails, and the UI shows it independently.
	reviewText := g.Review(b)

	if g.initErr != nil {
		return Outcome{Kind: OutcomeClientInit, Detail: g.initErr.Error()}
	}

	healthSummary := status.FallbackSummary
	if g.health != nil {
		healthSummary = g.health.CheckWithFallback(ctx)
	}

	user := prompts.BuildIncidentPrompt(
		healthSummary,
		reviewText,
		canonicalJSON(b.Incident),
		canonicalJSON(b.Trace),
	)

	text, err := g.llm.Chat(ctx, prompts.SystemPrompt, user)
	if err != nil {
		var apiErr *llm.APIError
		switch {
		case errors.As(err, &apiErr):
			g.log.Warn("LLM API error", zap.Int("status", apiErr.StatusCode))
			return Outcome{Kind: OutcomeAPIStatus, StatusCode: apiErr.StatusCode, Detail: err.Error()}
		case errors.Is(err, llm.ErrEmptyResponse):
			return Outcome{Kind: OutcomeEmpty}
		default:
			g.log.Warn("LLM call failed", zap.Error(err))
			return Outcome{Kind: OutcomeTransport, Detail: err.Error()}
		}
	}

	if strings.TrimSpace(text) == "" {
		return Outcome{Kind: OutcomeEmpty}
	}
	return Outcome{Kind: OutcomeOK, Text: strings.TrimSpace(text)}
}

// Generate renders Run's outcome as the single displayable string.
func (g *Generator) Generate(ctx context.Context, b *incident.Bundle) string {
	return g.Run(ctx, b).String()
}

// canonicalJSON pretty-prints with stable key order (Go sorts map keys when
// marshaling), so reruns of the same incident produce the same prompt.
func canonicalJSON(v any) string {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "null"
	}
	return string(out)
}
