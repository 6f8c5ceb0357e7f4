// Package sandbox provisions a disposable remote dev environment through the
// Daytona API and clones the incident repository into it so fixes can be
// applied hands-on.
package sandbox

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

// DashboardURL lists all sandboxes; used when the API response carries no
// per-sandbox URL.
const DashboardURL = "https://app.daytona.io/dashboard/sandboxes"

// Sandbox is a provisioned remote environment.
type Sandbox struct {
	ID           string `json:"id"`
	DashboardURL string `json:"dashboard_url"`
}

// Status is the UI-facing outcome of a provision action. Exactly one of
// ID/URL or Err is meaningful.
type Status struct {
	ID  string `json:"id,omitempty"`
	URL string `json:"url,omitempty"`
	Err string `json:"error,omitempty"`
}

type Client struct {
	apiKey   string
	baseURL  string
	repo     string
	repoPath string
	client   *http.Client
	log      *zap.Logger
}

// NewClient builds a Daytona client. The API key must already be resolved
// (argument > dotenv > environment happens in the config layer); an empty
// key fails fast at Provision time.
func NewClient(cfg config.SandboxConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		apiKey:   cfg.APIKey,
		baseURL:  strings.TrimSuffix(cfg.BaseURL, "/"),
		repo:     cfg.Repo,
		repoPath: cfg.RepoPath,
		client:   &http.Client{Timeout: 120 * time.Second},
		log:      logger.Named("sandbox"),
	}
}

// Provision creates a sandbox and clones the configured repository into it.
// A clone that fails because the target path already exists is treated as
// success, so re-triggering the action is safe.
func (c *Client) Provision(ctx context.Context) (*Sandbox, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("DAYTONA_API_KEY is not set. Add it to data/.env or your environment")
	}

	sb, err := c.create(ctx)
	if err != nil {
		return nil, err
	}
	c.log.Info("sandbox created", zap.String("id", sb.ID))

	if c.repo != "" {
		if err := c.cloneRepo(ctx, sb.ID); err != nil {
			return nil, fmt.Errorf("clone %s into sandbox %s: %w", c.repo, sb.ID, err)
		}
	}
	return sb, nil
}

func (c *Client) create(ctx context.Context) (*Sandbox, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/sandbox", bytes.NewBufferString("{}"))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("Daytona API error (status %d): %s", resp.StatusCode, string(respBytes))
	}

	var created struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	}
	if err := json.Unmarshal(respBytes, &created); err != nil {
		return nil, err
	}
	if created.ID == "" {
		return nil, fmt.Errorf("Daytona returned no sandbox id")
	}

	url := created.URL
	if url == "" {
		url = DashboardURL
	}
	return &Sandbox{ID: created.ID, DashboardURL: url}, nil
}

func (c *Client) cloneRepo(ctx context.Context, sandboxID string) error {
	body, err := json.Marshal(map[string]string{
		"url":  c.repo,
		"path": c.repoPath,
	})
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/toolbox/%s/git/clone", c.baseURL, sandboxID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated {
		return nil
	}

	// A repeat provision against a reused sandbox hits this path; the repo
	// is already there, which is exactly what the caller wants.
	if strings.Contains(strings.ToLower(string(respBytes)), "already exists") {
		c.log.Debug("repository already present in sandbox",
			zap.String("id", sandboxID), zap.String("repo", c.repo))
		return nil
	}
	return fmt.Errorf("Daytona API error (status %d): %s", resp.StatusCode, string(respBytes))
}
