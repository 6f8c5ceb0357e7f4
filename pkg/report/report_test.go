package report

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helmcode/llm911/pkg/config"
	"github.com/helmcode/llm911/pkg/incident"
	"github.com/helmcode/llm911/pkg/llm"
	"github.com/helmcode/llm911/pkg/review"
)

type fakeLLM struct {
	text      string
	err       error
	gotSystem string
	gotUser   string
}

func (f *fakeLLM) Chat(ctx context.Context, system, user string) (string, error) {
	f.gotSystem = system
	f.gotUser = user
	return f.text, f.err
}

type fakeHealth struct{ summary string }

func (f fakeHealth) CheckWithFallback(ctx context.Context) string { return f.summary }

func sampleBundle() *incident.Bundle {
	errorDoc := []any{map[string]any{"tags": map[string]any{"incident_type": "timeout"}}}
	traceDoc := map[string]any{"records": []any{
		map[string]any{"metrics": map[string]any{"latency_ms": 15000.0}},
	}}
	b := &incident.Bundle{Code: `requests.post(url, timeout=2.0)`}
	b.Incident, b.Trace = incident.Derive(errorDoc, traceDoc)
	return b
}

func TestRun_Success(t *testing.T) {
	fake := &fakeLLM{text: "1) Root Cause\n2) Fix Plan\n3) Observations"}
	gen := NewWithLLM(fake, fakeHealth{summary: "Provider status: fine."}, review.DefaultConfig())

	outcome := gen.Run(context.Background(), sampleBundle())
	require.True(t, outcome.OK())
	assert.Equal(t, "1) Root Cause\n2) Fix Plan\n3) Observations", outcome.Text)
	assert.Equal(t, outcome.Text, outcome.String())

	// Prompt carries role + required sections, health, review and both docs.
	assert.Contains(t, fake.gotSystem, "Root Cause")
	assert.Contains(t, fake.gotSystem, "Fix Plan")
	assert.Contains(t, fake.gotUser, "Provider status: fine.")
	assert.Contains(t, fake.gotUser, "timeout is probably too low")
	assert.Contains(t, fake.gotUser, `"incident_type": "timeout"`)
	assert.Contains(t, fake.gotUser, `"latency_ms": 15000`)
	assert.Contains(t, fake.gotUser, `"error_type": "TimeoutError"`)
}

func TestRun_ClientInitFailure(t *testing.T) {
	// No credentials configured anywhere.
	cfg := &config.Config{}
	cfg.LLM.Provider = "claude"
	gen := New(cfg, nil)

	out := gen.Generate(context.Background(), sampleBundle())
	assert.True(t, strings.HasPrefix(out, ErrorTag), out)
	assert.Contains(t, out, "Could not initialize LLM client")
}

func TestRun_APIStatusError(t *testing.T) {
	fake := &fakeLLM{err: &llm.APIError{StatusCode: 429, Message: "rate limited"}}
	gen := NewWithLLM(fake, fakeHealth{}, review.DefaultConfig())

	outcome := gen.Run(context.Background(), sampleBundle())
	assert.Equal(t, OutcomeAPIStatus, outcome.Kind)
	assert.Equal(t, 429, outcome.StatusCode)
	assert.Contains(t, outcome.String(), "Status: 429")
	assert.True(t, strings.HasPrefix(outcome.String(), ErrorTag))
}

func TestRun_TransportError(t *testing.T) {
	fake := &fakeLLM{err: fmt.Errorf("dial tcp: connection refused")}
	gen := NewWithLLM(fake, fakeHealth{}, review.DefaultConfig())

	outcome := gen.Run(context.Background(), sampleBundle())
	assert.Equal(t, OutcomeTransport, outcome.Kind)
	assert.Contains(t, outcome.String(), "connection refused")
	assert.True(t, strings.HasPrefix(outcome.String(), ErrorTag))
}

func TestRun_EmptyResponse(t *testing.T) {
	for _, fake := range []*fakeLLM{
		{err: llm.ErrEmptyResponse},
		{text: "   \n  "},
	} {
		gen := NewWithLLM(fake, fakeHealth{}, review.DefaultConfig())
		outcome := gen.Run(context.Background(), sampleBundle())
		assert.Equal(t, OutcomeEmpty, outcome.Kind)
		assert.Contains(t, outcome.String(), "empty response")
	}
}

func TestRun_WrappedAPIErrorStillClassified(t *testing.T) {
	wrapped := fmt.Errorf("chat: %w", &llm.APIError{StatusCode: 503})
	gen := NewWithLLM(&fakeLLM{err: wrapped}, fakeHealth{}, review.DefaultConfig())

	outcome := gen.Run(context.Background(), sampleBundle())
	assert.Equal(t, OutcomeAPIStatus, outcome.Kind)
	assert.Equal(t, 503, outcome.StatusCode)
}

func TestRun_NeverPanicsOnDegenerateInput(t *testing.T) {
	gen := NewWithLLM(&fakeLLM{text: "ok"}, fakeHealth{}, review.DefaultConfig())

	bundles := []*incident.Bundle{
		nil,
		{},
	}
	empty := &incident.Bundle{}
	empty.Incident, empty.Trace = incident.Derive(map[string]any{}, []any{})
	bundles = append(bundles, empty)

	for _, b := range bundles {
		assert.NotPanics(t, func() {
			out := gen.Generate(context.Background(), b)
			assert.NotEmpty(t, out)
		})
	}
}

func TestRun_HealthFallbackWhenCheckerMissing(t *testing.T) {
	fake := &fakeLLM{text: "report"}
	gen := NewWithLLM(fake, nil, review.DefaultConfig())

	outcome := gen.Run(context.Background(), sampleBundle())
	require.True(t, outcome.OK())
	assert.Contains(t, fake.gotUser, "skipping provider check")
}

func TestReview_MatchesReviewerOutput(t *testing.T) {
	gen := NewWithLLM(&fakeLLM{}, fakeHealth{}, review.DefaultConfig())
	b := sampleBundle()
	want := review.Review(b.Code, b.Incident.ErrorType, b.Trace.LatencySeconds)
	assert.Equal(t, want, gen.Review(b))
	assert.NotEmpty(t, gen.Review(nil))
}

func TestRun_ErrorsAreErrorTaggedOnly(t *testing.T) {
	// Any non-OK outcome must render with the fixed tag prefix so the UI
	// can recognize failures.
	outcomes := []Outcome{
		{Kind: OutcomeClientInit, Detail: "no key"},
		{Kind: OutcomeAPIStatus, StatusCode: 500, Detail: "boom"},
		{Kind: OutcomeTransport, Detail: "timeout"},
		{Kind: OutcomeEmpty},
	}
	for _, o := range outcomes {
		assert.True(t, strings.HasPrefix(o.String(), ErrorTag))
		assert.False(t, o.OK())
	}
}
