package llm

import (
	"context"
	"errors"
	"fmt"
)

// LLM is the minimal chat surface the report generator needs. Both the
// Claude and OpenAI clients implement it.
type LLM interface {
	// Chat sends one system instruction plus one user message and returns
	// the model's plain-text answer.
	Chat(ctx context.Context, system, user string) (string, error)
}

// ErrEmptyResponse is returned when the provider answered but the response
// carried no text content.
var ErrEmptyResponse = errors.New("LLM returned an empty response")

// APIError is a provider-reported HTTP/API failure, as opposed to a
// transport failure. Callers branch on it to include the status code in
// user-facing error strings.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error (status %d)", e.StatusCode)
}
