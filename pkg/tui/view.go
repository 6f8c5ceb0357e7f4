package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/helmcode/llm911/pkg/incident"
)

const panelWidth = 100

// Lipgloss styles (same palette as our status badges elsewhere)
var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("51")).
			Bold(true).
			Padding(0, 1)

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("51")).
			Bold(true).
			MarginTop(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("45"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("231")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	healthyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("46")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("226")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	containerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(1, 2)

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			MarginTop(1)

	footerKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("51")).
			Bold(true)

	spinnerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("51"))

	codeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250")).
			Background(lipgloss.Color("235")).
			Padding(0, 1)
)

// View renders the responder screen.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string

	content += headerStyle.Render(" LLM 911 — LLM Incident Responder ") + "\n"

	if m.busy {
		content += m.spinner.View() + dimStyle.Render(" "+m.busyWhat) + "\n"
	} else {
		content += dimStyle.Render(m.session.StatusLine) + "\n"
	}

	content += m.renderIncident()
	content += m.renderReview()
	content += m.renderReport()
	content += m.renderCode()
	content += m.renderSandbox()

	footer := footerKeyStyle.Render("[l]") + footerStyle.Render(" load sample  ") +
		footerKeyStyle.Render("[a]") + footerStyle.Render(" run analysis  ") +
		footerKeyStyle.Render("[s]") + footerStyle.Render(" sandbox  ") +
		footerKeyStyle.Render("[c]") + footerStyle.Render(" code  ") +
		footerKeyStyle.Render("[q]") + footerStyle.Render(" quit")
	content += "\n" + footer

	return containerStyle.Render(content)
}

func (m Model) renderIncident() string {
	out := "\n" + sectionStyle.Render("┃ Incident") + "\n"
	if m.session.Bundle == nil {
		out += dimStyle.Render("  No sample loaded.") + "\n"
		return out
	}

	badge := healthyStyle.Render("[✓]")
	if m.session.Bundle.Incident.ErrorType == incident.ErrorTypeTimeout {
		badge = errorStyle.Render("[✗]")
	}
	out += labelStyle.Render("  Error type: ") +
		valueStyle.Render(m.session.Bundle.Incident.ErrorType) + " " + badge + "\n"

	latency := "n/a"
	if s := m.session.Bundle.Trace.LatencySeconds; s != nil {
		latency = fmt.Sprintf("%.2fs", *s)
	}
	out += labelStyle.Render("  Latency: ") + valueStyle.Render(latency) + "\n"

	for _, w := range m.session.Bundle.Warnings {
		out += warningStyle.Render("  ⚠ ") + dimStyle.Render(w) + "\n"
	}
	return out
}

func (m Model) renderReview() string {
	out := "\n" + sectionStyle.Render("┃ Code Review") + "\n"
	if m.session.Review == "" {
		out += dimStyle.Render("  Run the analysis to generate a rule-based review of the code.") + "\n"
		return out
	}
	out += indentWrap(m.session.Review, panelWidth-6, "  ") + "\n"
	return out
}

func (m Model) renderReport() string {
	out := "\n" + sectionStyle.Render("┃ Incident Report") + "\n"
	if m.session.Outcome == nil {
		out += dimStyle.Render("  No report yet.") + "\n"
		return out
	}
	text := m.session.Outcome.String()
	if !m.session.Outcome.OK() {
		out += errorStyle.Render("  ✗ generation failed") + "\n"
	}
	out += indentWrap(text, panelWidth-6, "  ") + "\n"
	return out
}

func (m Model) renderCode() string {
	out := "\n" + sectionStyle.Render("┃ Related Code") + " "
	if !m.showCode {
		out += dimStyle.Render("(collapsed, press [c])") + "\n"
		return out
	}
	out += "\n"
	code := ""
	if m.session.Bundle != nil {
		code = m.session.Bundle.Code
	}
	if code == "" {
		code = "# code snippet not loaded yet. Press [l] to load the sample incident."
	}
	out += codeStyle.Render(strings.TrimRight(code, "\n")) + "\n"
	return out
}

func (m Model) renderSandbox() string {
	out := "\n" + sectionStyle.Render("┃ Sandbox") + "\n"
	switch {
	case m.session.Sandbox == nil:
		out += dimStyle.Render("  No sandbox provisioned yet.") + "\n"
	case m.session.Sandbox.Err != "":
		out += errorStyle.Render("  ✗ ") + dimStyle.Render(m.session.Sandbox.Err) + "\n"
	default:
		out += healthyStyle.Render("  ✓ Sandbox ready: ") + valueStyle.Render(m.session.Sandbox.ID) + "\n"
		out += labelStyle.Render("  Dashboard: ") + valueStyle.Render(m.session.Sandbox.URL) + "\n"
	}
	return out
}

// indentWrap word-wraps text and indents every line.
func indentWrap(text string, width int, indent string) string {
	var b strings.Builder
	for _, line := range strings.Split(text, "\n") {
		words := strings.Fields(line)
		if len(words) == 0 {
			b.WriteString("\n")
			continue
		}
		current := indent
		for _, word := range words {
			if len(current)+len(word)+1 > width {
				b.WriteString(current + "\n")
				current = indent + word
			} else if current == indent {
				current += word
			} else {
				current += " " + word
			}
		}
		if current != indent {
			b.WriteString(current + "\n")
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}
