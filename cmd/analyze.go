package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/helmcode/llm911/pkg/config"
	"github.com/helmcode/llm911/pkg/formatter"
	"github.com/helmcode/llm911/pkg/incident"
	"github.com/helmcode/llm911/pkg/logging"
	"github.com/helmcode/llm911/pkg/report"
)

var (
	configFile   string
	envFile      string
	dataDir      string
	llmProvider  string
	llmModel     string
	outputFormat string
	verbose      bool
)

func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run the LLM 911 analysis on the sample incident",
		Long: `Load the sample incident (error-tracking events, model trace, buggy code
snippet), run the rule-based code review, and ask the LLM for a structured
incident report.

Examples:
  # Analyze with defaults (data/ directory, Claude)
  llm911 analyze

  # Use OpenAI and machine-readable output
  llm911 analyze --provider openai -o json

  # Point at different sample data
  llm911 analyze --data-dir ./fixtures`,
		Args: cobra.NoArgs,
		RunE: runAnalyze,
	}

	cmd.Flags().StringVar(&configFile, "config", "", "Path to YAML config file")
	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to dotenv file with API keys (default data/.env)")
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "Directory with the sample incident files")
	cmd.Flags().StringVar(&llmProvider, "provider", "", "LLM provider (claude, openai). Defaults to config/env")
	cmd.Flags().StringVar(&llmModel, "model", "", "LLM model to use (overrides default)")
	cmd.Flags().StringVarP(&outputFormat, "output", "o", "human", "Output format (human, json, yaml)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, envFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if llmProvider != "" {
		cfg.LLM.Provider = llmProvider
	}
	if llmModel != "" {
		cfg.LLM.Model = llmModel
	}

	logger := logging.NewNop()
	if verbose {
		logger, err = logging.New(cfg.Log.Level, cfg.Log.Format)
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck
	}

	printAnalyzeHeader(cfg)

	// Create spinner for visual feedback
	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond)
	s.Suffix = " Loading sample incident..."
	s.Start()

	bundle, err := incident.LoadSample(cfg.DataDir)
	if err != nil {
		s.Stop()
		return fmt.Errorf("failed to load sample incident: %w", err)
	}
	s.Stop()
	printSuccess("Loaded sample incident data")

	s.Suffix = " Analyzing with AI..."
	s.Start()

	gen := report.New(cfg, logger)
	ctx, cancel := context.WithTimeout(cmd.Context(), 3*time.Minute)
	defer cancel()
	outcome := gen.Run(ctx, bundle)

	s.Stop()
	if outcome.OK() {
		printSuccess("Analysis complete")
	} else {
		printError("Analysis failed (details in report)")
	}

	return formatter.DisplayResult(&formatter.Result{
		ErrorType:      bundle.Incident.ErrorType,
		LatencySeconds: bundle.Trace.LatencySeconds,
		Review:         gen.Review(bundle),
		Outcome:        outcome,
		Warnings:       bundle.Warnings,
	}, outputFormat)
}

func printAnalyzeHeader(cfg *config.Config) {
	cyan := color.New(color.FgCyan, color.Bold)
	fmt.Println()
	cyan.Println("🚨 LLM 911 — Incident Responder")
	fmt.Printf("📁 Data dir: %s\n", cfg.DataDir)
	fmt.Printf("🤖 Provider: %s\n", cfg.LLM.Provider)
	fmt.Println()
}

func printSuccess(msg string) {
	green := color.New(color.FgGreen)
	green.Printf("✓ %s\n", msg)
}

func printError(msg string) {
	red := color.New(color.FgRed)
	red.Printf("✗ %s\n", msg)
}
