// Package status checks the LLM provider's public status page through the
// Browser Use Cloud API. The check is best-effort: callers that cannot act
// on a failure use CheckWithFallback, which degrades to a fixed sentence.
package status

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/helmcode/llm911/pkg/config"
)

// FallbackSummary replaces the health summary whenever the check cannot be
// completed (missing key, API failure, timeout).
const FallbackSummary = "Browser Use failed, skipping provider check."

const (
	summaryOK = "Provider status: No issues reported on the Anthropic status page."

	summaryWarning = "Provider status warning: the Anthropic status page mentions " +
		"possible issues (degraded performance/latency/incident)."
)

// incidentKeywords flag a status page worth warning about.
var incidentKeywords = []string{"degraded performance", "latency", "incident"}

type Client struct {
	apiKey       string
	baseURL      string
	pageURL      string
	client       *http.Client
	log          *zap.Logger
	pollInterval time.Duration
}

func NewClient(cfg config.StatusConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		apiKey:       cfg.APIKey,
		baseURL:      strings.TrimSuffix(cfg.BaseURL, "/"),
		pageURL:      cfg.PageURL,
		client:       &http.Client{Timeout: 30 * time.Second},
		log:          logger.Named("status"),
		pollInterval: 2 * time.Second,
	}
}

// Check runs a browser task that fetches the status page text and returns a
// one-sentence health summary.
func (c *Client) Check(ctx context.Context) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("BROWSER_USE_API_KEY is not set")
	}

	taskID, err := c.createTask(ctx)
	if err != nil {
		return "", err
	}
	c.log.Debug("status task created", zap.String("task_id", taskID))

	output, err := c.waitForTask(ctx, taskID)
	if err != nil {
		return "", err
	}
	return Summarize(output), nil
}

// CheckWithFallback is Check with a defined default: any failure yields
// FallbackSummary instead of an error.
func (c *Client) CheckWithFallback(ctx context.Context) string {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	summary, err := c.Check(ctx)
	if err != nil {
		c.log.Warn("provider status check failed", zap.Error(err))
		return FallbackSummary
	}
	return summary
}

// Summarize scans the status page text for incident keywords.
func Summarize(pageText string) string {
	lower := strings.ToLower(pageText)
	for _, kw := range incidentKeywords {
		if strings.Contains(lower, kw) {
			return summaryWarning
		}
	}
	return summaryOK
}

func (c *Client) createTask(ctx context.Context) (string, error) {
	task := fmt.Sprintf(
		"Visit %s and return the plain text of the page. Do not summarize; just output the visible text content.",
		c.pageURL)
	body, err := json.Marshal(map[string]string{"task": task})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/run-task", bytes.NewBuffer(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

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
		return "", fmt.Errorf("Browser Use API error (status %d): %s", resp.StatusCode, string(respBytes))
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(respBytes, &created); err != nil {
		return "", err
	}
	if created.ID == "" {
		return "", fmt.Errorf("Browser Use returned no task id")
	}
	return created.ID, nil
}

func (c *Client) waitForTask(ctx context.Context, taskID string) (string, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		state, output, err := c.taskState(ctx, taskID)
		if err != nil {
			return "", err
		}
		switch state {
		case "finished":
			return output, nil
		case "failed", "stopped":
			return "", fmt.Errorf("Browser Use task %s: %s", taskID, state)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *Client) taskState(ctx context.Context, taskID string) (string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/task/"+taskID, nil)
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("Browser Use API error (status %d): %s", resp.StatusCode, string(respBytes))
	}

	var task struct {
		Status string `json:"status"`
		Output string `json:"output"`
	}
	if err := json.Unmarshal(respBytes, &task); err != nil {
		return "", "", err
	}
	return task.Status, task.Output, nil
}
