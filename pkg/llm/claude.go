package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const anthropicMessagesURL = "https://api.anthropic.com/v1/messages"

type Claude struct {
	apiKey      string
	client      *http.Client
	baseURL     string
	model       string
	maxTokens   int
	temperature float64
}

func NewClaude(apiKey string) *Claude {
	return NewClaudeWithModel(apiKey, "claude-sonnet-4-5")
}

func NewClaudeWithModel(apiKey, model string) *Claude {
	return &Claude{
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 60 * time.Second},
		baseURL: anthropicMessagesURL,
		model:   model,
		// Bounded output, low randomness: the report should be short and
		// stable across reruns of the same incident.
		maxTokens:   800,
		temperature: 0.2,
	}
}

func (c *Claude) Chat(ctx context.Context, system, user string) (string, error) {
	body := map[string]interface{}{
		"model":  c.model,
		"system": system,
		"messages": []map[string]interface{}{{
			"role": "user",
			"content": []map[string]string{{
				"type": "text",
				"text": user,
			}},
		}},
		"max_tokens":  c.maxTokens,
		"temperature": c.temperature,
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", &APIError{StatusCode: resp.StatusCode, Message: errorMessage(respBytes)}
	}

	// Minimal struct to pull out the content text.
	var claudeResp struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(respBytes, &claudeResp); err != nil {
		return "", err
	}
	if claudeResp.Error.Message != "" {
		return "", fmt.Errorf("Claude API error: %s", claudeResp.Error.Message)
	}

	// The answer may be split across several content blocks; keep every
	// text-typed block, in order.
	var parts []string
	for _, block := range claudeResp.Content {
		if block.Type == "text" {
			parts = append(parts, block.Text)
		}
	}
	text := strings.TrimSpace(strings.Join(parts, "\n"))
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// GetModel returns the model used by this client.
func (c *Claude) GetModel() string {
	return c.model
}

func errorMessage(body []byte) string {
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error.Message != "" {
		return payload.Error.Message
	}
	return strings.TrimSpace(string(body))
}
