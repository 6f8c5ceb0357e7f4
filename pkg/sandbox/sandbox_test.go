package sandbox

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helmcode/llm911/pkg/config"
)

func newTestClient(url string) *Client {
	return NewClient(config.SandboxConfig{
		APIKey:   "dt-key",
		BaseURL:  url,
		Repo:     "https://github.com/acme/broken-service.git",
		RepoPath: "broken-service",
	}, nil)
}

func TestProvision(t *testing.T) {
	var cloneReq map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer dt-key", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/sandbox":
			w.WriteHeader(http.StatusCreated)
			fmt.Fprint(w, `{"id":"sbx-42"}`)
		case "/toolbox/sbx-42/git/clone":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&cloneReq))
			fmt.Fprint(w, `{}`)
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	}))
	defer server.Close()

	sb, err := newTestClient(server.URL).Provision(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "sbx-42", sb.ID)
	assert.Equal(t, DashboardURL, sb.DashboardURL)
	assert.Equal(t, "https://github.com/acme/broken-service.git", cloneReq["url"])
	assert.Equal(t, "broken-service", cloneReq["path"])
}

func TestProvision_URLFromResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/sandbox" {
			fmt.Fprint(w, `{"id":"sbx-3","url":"https://app.daytona.io/workspaces/daytonaio/sbx-3"}`)
			return
		}
		fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	sb, err := newTestClient(server.URL).Provision(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://app.daytona.io/workspaces/daytonaio/sbx-3", sb.DashboardURL)
}

func TestProvision_MissingKey(t *testing.T) {
	c := NewClient(config.SandboxConfig{BaseURL: "http://unused"}, nil)
	_, err := c.Provision(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DAYTONA_API_KEY")
}

func TestProvision_CloneAlreadyExistsSwallowed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/sandbox" {
			fmt.Fprint(w, `{"id":"sbx-7","url":"https://app.daytona.io/workspaces/daytonaio/sbx-7"}`)
			return
		}
		w.WriteHeader(http.StatusConflict)
		fmt.Fprint(w, `{"message":"destination path 'broken-service' already exists"}`)
	}))
	defer server.Close()

	sb, err := newTestClient(server.URL).Provision(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "sbx-7", sb.ID)
}

func TestProvision_CloneFailureSurfaced(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/sandbox" {
			fmt.Fprint(w, `{"id":"sbx-9"}`)
			return
		}
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, `{"message":"upstream unavailable"}`)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Provision(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "clone")
	assert.Contains(t, err.Error(), "sbx-9")
}

func TestProvision_CreateFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"message":"invalid api key"}`)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Provision(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}
