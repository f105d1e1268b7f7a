package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/user/opsboard/internal/tekton"
	"github.com/user/opsboard/internal/views"
)

func (m *Model) viewRuns() string {
	if m.detail != nil {
		return m.viewDetail()
	}

	v := m.runsView()
	var b strings.Builder

	b.WriteString(m.viewHeader(m.runs.Target()))
	b.WriteString(m.viewSyncStatus(m.runs.Busy(), m.runs.LastUpdated(), m.runs.Err()))
	b.WriteString(runCards(v.Counts) + "\n")
	b.WriteString(m.viewFilterLine(v.Filter, v.TotalPages, false))
	b.WriteString("\n")

	b.WriteString(headerStyle.Render(fmt.Sprintf("%-40s %-10s %-16s %-10s", "PIPELINERUN", "STATUS", "STARTED", "DURATION")) + "\n")
	if len(v.Rows) == 0 {
		b.WriteString(mutedStyle.Render("No pipeline runs") + "\n")
	}
	for i, row := range v.Rows {
		line := fmt.Sprintf("%-40s ", truncate(row.Run.Name(), 40))
		if i == m.rowCursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line + runColumns(row) + "\n")
	}

	b.WriteString(m.viewFooter(m.keys.runsHelp()))
	return b.String()
}

func (m *Model) viewDetail() string {
	d := m.detail
	var b strings.Builder

	b.WriteString(m.viewHeader(m.runs.Target()))
	status := tekton.EvaluateRun(d.run)
	b.WriteString(headerStyle.Render(d.run.Name()) + "  " + statusStyle(status).Render(string(status)) + "\n\n")

	switch {
	case d.loading:
		b.WriteString(m.spinner.View() + mutedStyle.Render(" Loading task runs...") + "\n")
	case d.err != nil:
		b.WriteString(errorStyle.Render(d.err.Error()) + "\n")
	case len(d.items) == 0:
		b.WriteString(mutedStyle.Render("No task runs") + "\n")
	default:
		b.WriteString(headerStyle.Render(fmt.Sprintf("%-40s %-10s %-16s %-10s", "TASKRUN", "STATUS", "STARTED", "DURATION")) + "\n")
		for _, row := range m.engine.TaskRows(d.items, time.Now()) {
			b.WriteString(fmt.Sprintf("%-40s ", truncate(row.Run.Name(), 40)) + runColumns(row) + "\n")
		}
	}

	b.WriteString(m.viewFooter(nil))
	b.WriteString(mutedStyle.Render("esc: back"))
	return b.String()
}

func runColumns(row views.RunRow) string {
	started := "-"
	if row.Run.Status.StartTime != nil {
		started = humanize.Time(*row.Run.Status.StartTime)
	}
	return statusStyle(row.Status).Render(fmt.Sprintf("%-10s", row.Status)) +
		fmt.Sprintf(" %-16s %s", started, row.DurationText())
}

func runCards(c views.RunCounts) string {
	return lipgloss.JoinHorizontal(lipgloss.Top,
		card("Total", c.Total, mutedStyle),
		card("Succeeded", c.Succeeded, statusStyle(tekton.StatusSucceeded)),
		card("Failed", c.Failed, statusStyle(tekton.StatusFailed)),
		card("Running", c.Running, statusStyle(tekton.StatusRunning)),
	)
}
