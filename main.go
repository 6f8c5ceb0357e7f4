package main

import (
	"fmt"
	"os"

	"github.com/helmcode/llm911/cmd"
	"github.com/spf13/cobra"
)

var (
	version = "v0.1.0" // Overwritten at build time
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "llm911",
		Short: "AI-powered incident responder",
		Long: `llm911 loads a sample application-monitoring incident, reviews the related
code with simple heuristics, and asks an LLM for a structured root cause /
fix plan report. It can also provision a disposable dev sandbox for
hands-on fixing.`,
		SilenceUsage: true,
	}

	// Disable automatic 'completion' command added by cobra
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	// Add subcommands
	rootCmd.AddCommand(
		cmd.NewTUICmd(),
		cmd.NewAnalyzeCmd(),
		cmd.NewSandboxCmd(),
		newVersionCmd(),
	)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("llm911 version %s\n", version)
		},
	}
}
