package formatter

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/helmcode/llm911/pkg/report"
	"github.com/helmcode/llm911/pkg/sandbox"
)

// Result collects everything one analysis run produced for display.
type Result struct {
	ErrorType      string         `json:"error_type" yaml:"error_type"`
	LatencySeconds *float64       `json:"latency_seconds" yaml:"latency_seconds"`
	Review         string         `json:"review" yaml:"review"`
	Outcome        report.Outcome `json:"outcome" yaml:"outcome"`
	Warnings       []string       `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// DisplayResult formats and displays an analysis result
func DisplayResult(res *Result, format string) error {
	switch format {
	case "json":
		return displayJSON(res)
	case "yaml":
		return displayYAML(res)
	case "human":
		fallthrough
	default:
		displayHuman(res)
	}
	return nil
}

func displayJSON(res *Result) error {
	output, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(output))
	return nil
}

func displayYAML(res *Result) error {
	output, err := yaml.Marshal(res)
	if err != nil {
		return err
	}
	fmt.Println(string(output))
	return nil
}

func displayHuman(res *Result) {
	// Colors
	red := color.New(color.FgRed, color.Bold)
	yellow := color.New(color.FgYellow, color.Bold)
	cyan := color.New(color.FgCyan, color.Bold)
	white := color.New(color.FgWhite, color.Bold)

	fmt.Println()

	// Incident summary
	cyan.Println("🚨 INCIDENT:")
	fmt.Printf("   Error type: %s\n", res.ErrorType)
	if res.LatencySeconds != nil {
		fmt.Printf("   Observed latency: %.2fs\n", *res.LatencySeconds)
	} else {
		fmt.Printf("   Observed latency: n/a\n")
	}
	fmt.Println()

	for _, w := range res.Warnings {
		yellow.Printf("⚠️  %s\n", w)
	}
	if len(res.Warnings) > 0 {
		fmt.Println()
	}

	// Heuristic review
	white.Println("🧪 CODE REVIEW:")
	fmt.Println(wrapText(res.Review, 80, "   "))
	fmt.Println()

	// Report (or tagged error string)
	if res.Outcome.OK() {
		cyan.Println("📋 INCIDENT REPORT:")
		fmt.Println(wrapText(res.Outcome.Text, 80, "   "))
	} else {
		red.Println("📋 INCIDENT REPORT:")
		fmt.Println(wrapText(res.Outcome.String(), 80, "   "))
	}
	fmt.Println()

	// Footer
	fmt.Println(strings.Repeat("─", 80))
	fmt.Printf("💡 %s\n", color.HiBlackString("Run with -o json or -o yaml for machine-readable output"))
}

// DisplaySandbox formats and displays a sandbox provisioning outcome.
func DisplaySandbox(st *sandbox.Status, format string) error {
	switch format {
	case "json":
		output, err := json.MarshalIndent(st, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(output))
	case "yaml":
		output, err := yaml.Marshal(st)
		if err != nil {
			return err
		}
		fmt.Println(string(output))
	case "human":
		fallthrough
	default:
		fmt.Println(renderSandbox(st))
	}
	return nil
}

func renderSandbox(st *sandbox.Status) string {
	if st.Err != "" {
		return color.RedString("✗ %s", st.Err)
	}
	var b strings.Builder
	b.WriteString(color.GreenString("✓ Sandbox created: %s", st.ID))
	b.WriteString("\nView your sandboxes in the dashboard:\n")
	b.WriteString(color.CyanString(st.URL))
	return b.String()
}

func wrapText(text string, width int, indent string) string {
	var result strings.Builder
	lines := strings.Split(text, "\n")

	for _, line := range lines {
		words := strings.Fields(line)
		if len(words) == 0 {
			result.WriteString("\n")
			continue
		}

		currentLine := indent
		for _, word := range words {
			if len(currentLine)+len(word)+1 > width {
				result.WriteString(currentLine + "\n")
				currentLine = indent + word
			} else if currentLine == indent {
				currentLine += word
			} else {
				currentLine += " " + word
			}
		}

		if currentLine != indent {
			result.WriteString(currentLine + "\n")
		}
	}

	return strings.TrimSuffix(result.String(), "\n")
}
