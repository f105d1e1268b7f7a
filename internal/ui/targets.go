package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/user/opsboard/internal/logger"
	"github.com/user/opsboard/internal/views"
	"github.com/user/opsboard/pkg/opsapi"
)

func (m *Model) loadTargets() tea.Cmd {
	m.targetsLoading = true
	backend := m.opts.Backend
	return func() tea.Msg {
		targets, err := backend.Targets(context.Background())
		return targetsLoadedMsg{targets: targets, err: err}
	}
}

func (m *Model) handleTargets(msg targetsLoadedMsg) tea.Cmd {
	m.targetsLoading = false
	if m.screen != ScreenTargets {
		return nil
	}
	if opsapi.IsUnauthorized(msg.err) {
		return m.expireSession()
	}
	if msg.err != nil {
		logger.Warn().Err(msg.err).Msg("Failed to load targets")
	}
	m.targets = msg.targets
	m.targetsErr = msg.err
	if m.targetCursor >= len(m.targets) {
		m.targetCursor = 0
	}
	return nil
}

func (m *Model) updateTargets(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.targetCursor > 0 {
			m.targetCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.targetCursor < len(m.targets)-1 {
			m.targetCursor++
		}
	case key.Matches(msg, m.keys.Refresh):
		if !m.targetsLoading {
			return m.loadTargets()
		}
	case key.Matches(msg, m.keys.Logout):
		return m.logout()
	case key.Matches(msg, m.keys.Select):
		if len(m.targets) == 0 {
			return nil
		}
		return m.selectTarget(m.targets[m.targetCursor])
	}
	return nil
}

// selectTarget opens the dashboard for t with fresh filters. Starting the
// synchronizer discards anything fetched for a previous target.
func (m *Model) selectTarget(t opsapi.Target) tea.Cmd {
	m.rowCursor = 0
	m.resetSearch()
	m.closeDetail()

	switch t.Type {
	case opsapi.TargetArgoCD:
		m.screen = ScreenApps
		m.appFilter = views.NewFilter()
		m.runs.Stop()
		return m.apps.Start(t)
	case opsapi.TargetTekton:
		m.screen = ScreenRuns
		m.runFilter = views.NewFilter()
		m.apps.Stop()
		return m.runs.Start(t)
	}
	return m.toasts.Error(fmt.Sprintf("Unsupported target type %q", t.Type))
}

func (m *Model) viewTargets() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("opsboard"))
	if user := m.opts.Session.Username(); user != "" {
		b.WriteString(mutedStyle.Render("  " + user))
	}
	b.WriteString("\n\n" + headerStyle.Render("Select a target") + "\n\n")

	switch {
	case m.targetsLoading && len(m.targets) == 0:
		b.WriteString(m.spinner.View() + mutedStyle.Render(" Loading targets...") + "\n")
	case m.targetsErr != nil:
		b.WriteString(errorStyle.Render(m.targetsErr.Error()) + "\n")
	case len(m.targets) == 0:
		b.WriteString(mutedStyle.Render("No targets available") + "\n")
	}

	for i, t := range m.targets {
		line := fmt.Sprintf("%-8s %s", t.Type, t.Name)
		if i == m.targetCursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}

	b.WriteString(m.viewFooter(m.keys.targetsHelp()))
	return b.String()
}
