package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/helmcode/llm911/pkg/config"
	"github.com/helmcode/llm911/pkg/logging"
	"github.com/helmcode/llm911/pkg/report"
	"github.com/helmcode/llm911/pkg/sandbox"
	"github.com/helmcode/llm911/pkg/tui"
)

var (
	tuiConfigFile string
	tuiEnvFile    string
	tuiDataDir    string
)

func NewTUICmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Interactive incident responder",
		Long: `Open the interactive responder: load the sample incident, run the analysis
and provision a sandbox from one screen.

Keys: [l] load sample, [a] run analysis, [s] provision sandbox,
[c] toggle code viewer, [q] quit.`,
		Args: cobra.NoArgs,
		RunE: runTUI,
	}

	cmd.Flags().StringVar(&tuiConfigFile, "config", "", "Path to YAML config file")
	cmd.Flags().StringVar(&tuiEnvFile, "env-file", "", "Path to dotenv file with API keys (default data/.env)")
	cmd.Flags().StringVar(&tuiDataDir, "data-dir", "", "Directory with the sample incident files")

	return cmd
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(tuiConfigFile, tuiEnvFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if tuiDataDir != "" {
		cfg.DataDir = tuiDataDir
	}

	// Terminal is owned by bubbletea; keep the logger silent here.
	logger := logging.NewNop()

	model := tui.NewModel(
		cfg,
		report.New(cfg, logger),
		sandbox.NewClient(cfg.Sandbox, logger),
		logger,
	)

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
