// Package tui is the interactive surface: three user-triggered actions
// (load sample, run analysis, provision sandbox) over one explicit session
// state struct. Each action runs to completion as a bubbletea command; its
// result message replaces the relevant part of the session.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/helmcode/llm911/pkg/config"
	"github.com/helmcode/llm911/pkg/incident"
	"github.com/helmcode/llm911/pkg/report"
	"github.com/helmcode/llm911/pkg/sandbox"
)

// Session is the per-process UI state. It is owned by the Model and only
// replaced through Update; nothing else mutates it.
type Session struct {
	Bundle     *incident.Bundle
	Review     string
	Outcome    *report.Outcome
	Sandbox    *sandbox.Status
	StatusLine string
}

// Model is the bubbletea model for the responder.
type Model struct {
	cfg     *config.Config
	gen     *report.Generator
	sbox    *sandbox.Client
	log     *zap.Logger
	session Session

	spinner  spinner.Model
	busy     bool
	busyWhat string
	showCode bool
	quitting bool
}

// Message types
type loadedMsg struct {
	bundle *incident.Bundle
	err    error
}

type analysisMsg struct {
	review  string
	outcome report.Outcome
}

type sandboxMsg sandbox.Status

// NewModel builds the interactive model.
func NewModel(cfg *config.Config, gen *report.Generator, sbox *sandbox.Client, logger *zap.Logger) Model {
	if logger == nil {
		logger = zap.NewNop()
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle
	return Model{
		cfg:     cfg,
		gen:     gen,
		sbox:    sbox,
		log:     logger.Named("tui"),
		spinner: sp,
		session: Session{StatusLine: "Press [l] to load the sample incident."},
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func loadSample(dataDir string) tea.Cmd {
	return func() tea.Msg {
		bundle, err := incident.LoadSample(dataDir)
		return loadedMsg{bundle: bundle, err: err}
	}
}

func runAnalysis(gen *report.Generator, bundle *incident.Bundle) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
		defer cancel()
		return analysisMsg{
			review:  gen.Review(bundle),
			outcome: gen.Run(ctx, bundle),
		}
	}
}

func provisionSandbox(client *sandbox.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
		defer cancel()
		sb, err := client.Provision(ctx)
		if err != nil {
			return sandboxMsg(sandbox.Status{Err: err.Error()})
		}
		return sandboxMsg(sandbox.Status{ID: sb.ID, URL: sb.DashboardURL})
	}
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "c":
			m.showCode = !m.showCode
			return m, nil

		case "l":
			if m.busy {
				return m, nil
			}
			m.busy = true
			m.busyWhat = "Loading sample incident..."
			return m, loadSample(m.cfg.DataDir)

		case "a":
			if m.busy {
				return m, nil
			}
			if m.session.Bundle == nil {
				m.session.StatusLine = "Sample incident not loaded yet. Press [l] first."
				return m, nil
			}
			m.busy = true
			m.busyWhat = "Running LLM 911 analysis..."
			return m, runAnalysis(m.gen, m.session.Bundle)

		case "s":
			if m.busy {
				return m, nil
			}
			m.busy = true
			m.busyWhat = "Provisioning sandbox..."
			return m, provisionSandbox(m.sbox)
		}

	case loadedMsg:
		m.busy = false
		if msg.err != nil {
			m.session.StatusLine = msg.err.Error()
			return m, nil
		}
		m.session.Bundle = msg.bundle
		m.session.StatusLine = "Loaded sample incident data."
		return m, nil

	case analysisMsg:
		m.busy = false
		m.session.Review = msg.review
		outcome := msg.outcome
		m.session.Outcome = &outcome
		if outcome.OK() {
			m.session.StatusLine = "Analysis complete."
		} else {
			m.session.StatusLine = "Analysis failed; see report panel."
		}
		return m, nil

	case sandboxMsg:
		m.busy = false
		st := sandbox.Status(msg)
		m.session.Sandbox = &st
		if st.Err != "" {
			m.session.StatusLine = "Sandbox provisioning failed."
		} else {
			m.session.StatusLine = "Sandbox ready."
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}
