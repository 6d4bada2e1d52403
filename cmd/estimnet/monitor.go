package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/estimnet/pkg/changestats"
	"github.com/vanderheijden86/estimnet/pkg/config"
	"github.com/vanderheijden86/estimnet/pkg/estimation"
	"github.com/vanderheijden86/estimnet/pkg/graph"
)

var (
	monitorTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	monitorHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("8"))
	monitorDoneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	monitorFailStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

type progressMsg estimation.Progress

type runDoneMsg struct {
	results []estimation.TaskResult
	err     error
}

// taskRow is the monitor's latest view of one chain.
type taskRow struct {
	phase   string
	iter    int
	total   int
	accRate float64
	done    bool
	failed  bool
}

type monitorModel struct {
	rows    []taskRow
	results []estimation.TaskResult
	err     error
	done    bool
}

func (m monitorModel) Init() tea.Cmd { return nil }

func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
	case progressMsg:
		r := &m.rows[msg.Task]
		r.phase = msg.Phase
		r.iter = msg.Iter
		r.total = msg.Total
		r.accRate = msg.AccRate
		return m, nil
	case runDoneMsg:
		m.done = true
		m.results = msg.results
		m.err = msg.err
		for _, res := range msg.results {
			m.rows[res.Task].done = true
			m.rows[res.Task].failed = res.Err != nil
		}
		return m, tea.Quit
	}
	return m, nil
}

func (m monitorModel) View() string {
	var b strings.Builder
	b.WriteString(monitorTitleStyle.Render("estimnet chains"))
	b.WriteString("\n\n")
	b.WriteString(monitorHeaderStyle.Render(fmt.Sprintf("%-6s %-6s %-12s %-12s %s", "task", "phase", "progress", "acceptance", "status")))
	b.WriteByte('\n')
	for task, r := range m.rows {
		status := "running"
		switch {
		case r.failed:
			status = monitorFailStyle.Render("failed")
		case r.done:
			status = monitorDoneStyle.Render("done")
		}
		b.WriteString(fmt.Sprintf("%-6d %-6s %-12s %-12.3f %s\n",
			task, r.phase, fmt.Sprintf("%d/%d", r.iter, r.total), r.accRate, status))
	}
	if !m.done {
		b.WriteString("\npress q to quit (stops the chains; flushed trajectory rows are kept)\n")
	}
	return b.String()
}

// runWithMonitor drives the estimation under a bubbletea program that shows
// per-chain progress.
func runWithMonitor(cfg *config.Config, observed *graph.Graph, model *changestats.Model) ([]estimation.TaskResult, error) {
	m := monitorModel{
		rows: make([]taskRow, cfg.NumTasks),
	}
	p := tea.NewProgram(m)

	go func() {
		results, err := estimation.Run(cfg, observed, model, func(pr estimation.Progress) {
			p.Send(progressMsg(pr))
		})
		p.Send(runDoneMsg{results: results, err: err})
	}()

	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("monitor: %w", err)
	}
	fm := final.(monitorModel)
	if !fm.done {
		// User quit early; the caller exits on this error, so the chains
		// stop and only trajectory rows already flushed stay in the files.
		return nil, fmt.Errorf("monitor closed before estimation finished")
	}
	return fm.results, fm.err
}
