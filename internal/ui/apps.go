package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/user/opsboard/internal/views"
	"github.com/user/opsboard/pkg/opsapi"
)

func (m *Model) viewApps() string {
	v := m.appsView()
	var b strings.Builder

	b.WriteString(m.viewHeader(m.apps.Target()))
	b.WriteString(m.viewSyncStatus(m.apps.Busy(), m.apps.LastUpdated(), m.apps.Err()))
	b.WriteString(appCards(v.Counts) + "\n")
	b.WriteString(m.viewFilterLine(v.Filter, v.TotalPages, true))
	b.WriteString("\n")

	b.WriteString(headerStyle.Render(fmt.Sprintf("%-32s %-20s %-24s %-12s", "NAME", "PROJECT", "NAMESPACE", "HEALTH")) + "\n")
	if len(v.Rows) == 0 {
		b.WriteString(mutedStyle.Render("No applications") + "\n")
	}
	for i, app := range v.Rows {
		line := fmt.Sprintf("%-32s %-20s %-24s ", truncate(app.Name, 32), truncate(app.Project, 20), truncate(app.DeploymentNamespace, 24))
		if i == m.rowCursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line + healthStyle(app.Health).Render(string(app.Health)) + "\n")
	}

	b.WriteString(m.viewFooter(m.keys.appsHelp()))
	return b.String()
}

func appCards(c views.AppCounts) string {
	return lipgloss.JoinHorizontal(lipgloss.Top,
		card("Total", c.Total, mutedStyle),
		card("Healthy", c.Healthy, healthStyle(opsapi.HealthHealthy)),
		card("Degraded", c.Degraded, healthStyle(opsapi.HealthDegraded)),
		card("Progressing", c.Progressing, healthStyle(opsapi.HealthProgressing)),
		card("Missing", c.Missing, healthStyle(opsapi.HealthMissing)),
		card("Unknown", c.Unknown, healthStyle(opsapi.HealthUnknown)),
	)
}

func card(label string, n int, style lipgloss.Style) string {
	return cardStyle.Render(style.Render(fmt.Sprintf("%d", n)) + "\n" + label)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
