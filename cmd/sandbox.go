package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/helmcode/llm911/pkg/config"
	"github.com/helmcode/llm911/pkg/formatter"
	"github.com/helmcode/llm911/pkg/logging"
	"github.com/helmcode/llm911/pkg/sandbox"
)

var (
	sandboxConfigFile string
	sandboxEnvFile    string
	sandboxAPIKey     string
	sandboxRepo       string
	sandboxRepoPath   string
	sandboxOutput     string
	sandboxVerbose    bool
)

func NewSandboxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sandbox",
		Short: "Provision a disposable dev sandbox for hands-on fixing",
		Long: `Provision a remote Daytona sandbox and clone the incident repository into
it, so the fixes suggested by the report can be applied in a clean,
reproducible environment.

Examples:
  # Provision with the key from data/.env or DAYTONA_API_KEY
  llm911 sandbox

  # Clone a different repository
  llm911 sandbox --repo https://github.com/acme/broken-service.git`,
		Args: cobra.NoArgs,
		RunE: runSandbox,
	}

	cmd.Flags().StringVar(&sandboxConfigFile, "config", "", "Path to YAML config file")
	cmd.Flags().StringVar(&sandboxEnvFile, "env-file", "", "Path to dotenv file with API keys (default data/.env)")
	cmd.Flags().StringVar(&sandboxAPIKey, "api-key", "", "Daytona API key (overrides dotenv/environment)")
	cmd.Flags().StringVar(&sandboxRepo, "repo", "", "Repository to clone into the sandbox")
	cmd.Flags().StringVar(&sandboxRepoPath, "repo-path", "", "In-sandbox path for the clone")
	cmd.Flags().StringVarP(&sandboxOutput, "output", "o", "human", "Output format (human, json, yaml)")
	cmd.Flags().BoolVarP(&sandboxVerbose, "verbose", "v", false, "Verbose output")

	return cmd
}

func runSandbox(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(sandboxConfigFile, sandboxEnvFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if sandboxAPIKey != "" {
		cfg.Sandbox.APIKey = sandboxAPIKey
	}
	if sandboxRepo != "" {
		cfg.Sandbox.Repo = sandboxRepo
	}
	if sandboxRepoPath != "" {
		cfg.Sandbox.RepoPath = sandboxRepoPath
	}

	logger := logging.NewNop()
	if sandboxVerbose {
		logger, err = logging.New(cfg.Log.Level, cfg.Log.Format)
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck
	}

	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond)
	s.Suffix = " Provisioning sandbox..."
	s.Start()

	client := sandbox.NewClient(cfg.Sandbox, logger)
	ctx, cancel := context.WithTimeout(cmd.Context(), 3*time.Minute)
	defer cancel()

	sb, err := client.Provision(ctx)
	if err != nil {
		s.Stop()
		return fmt.Errorf("failed to provision sandbox: %w", err)
	}
	s.Stop()

	return formatter.DisplaySandbox(&sandbox.Status{ID: sb.ID, URL: sb.DashboardURL}, sandboxOutput)
}
