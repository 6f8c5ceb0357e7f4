package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClaude(url string) *Claude {
	c := NewClaude("test-key")
	c.baseURL = url
	return c
}

func TestClaude_Chat(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"content":[
			{"type":"text","text":"Root Cause\n"},
			{"type":"tool_use","id":"x"},
			{"type":"text","text":"Fix Plan"}
		]}`))
	}))
	defer server.Close()

	text, err := newTestClaude(server.URL).Chat(context.Background(), "be brief", "what happened?")
	require.NoError(t, err)
	// Text blocks concatenated in order, non-text blocks skipped, trimmed.
	assert.Equal(t, "Root Cause\n\nFix Plan", text)

	assert.Equal(t, "be brief", gotBody["system"])
	assert.Equal(t, float64(800), gotBody["max_tokens"])
	assert.Equal(t, 0.2, gotBody["temperature"])
}

func TestClaude_Chat_APIStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer server.Close()

	_, err := newTestClaude(server.URL).Chat(context.Background(), "", "hi")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Contains(t, apiErr.Error(), "rate limited")
}

func TestClaude_Chat_EmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"content":[]}`))
	}))
	defer server.Close()

	_, err := newTestClaude(server.URL).Chat(context.Background(), "", "hi")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestClaude_Chat_WhitespaceOnlyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"content":[{"type":"text","text":"  \n "}]}`))
	}))
	defer server.Close()

	_, err := newTestClaude(server.URL).Chat(context.Background(), "", "hi")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestCreateLLM(t *testing.T) {
	l, err := CreateLLM(ProviderClaude, "k", "")
	require.NoError(t, err)
	assert.Equal(t, "claude-sonnet-4-5", l.(*Claude).GetModel())

	l, err = CreateLLM(ProviderOpenAI, "k", "gpt-4o-mini")
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", l.(*OpenAI).GetModel())

	_, err = CreateLLM(ProviderClaude, "", "")
	assert.Error(t, err)

	_, err = CreateLLM("gemini", "k", "")
	assert.Error(t, err)
}
