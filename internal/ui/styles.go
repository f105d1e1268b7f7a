package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/user/opsboard/internal/notify"
	"github.com/user/opsboard/internal/tekton"
	"github.com/user/opsboard/pkg/opsapi"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	headerStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
	cardStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	promptStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))

	toastSuccessStyle = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("10"))
	toastErrorStyle   = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("9"))

	green  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	red    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	yellow = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	grey   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	blue   = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
)

func healthStyle(h opsapi.Health) lipgloss.Style {
	switch h {
	case opsapi.HealthHealthy:
		return green
	case opsapi.HealthDegraded:
		return red
	case opsapi.HealthProgressing:
		return blue
	case opsapi.HealthMissing:
		return yellow
	default:
		return grey
	}
}

func statusStyle(s tekton.Status) lipgloss.Style {
	switch s {
	case tekton.StatusSucceeded:
		return green
	case tekton.StatusFailed:
		return red
	default:
		return blue
	}
}

func toastStyle(k notify.Kind) lipgloss.Style {
	if k == notify.KindSuccess {
		return toastSuccessStyle
	}
	return toastErrorStyle
}

func RenderHealth(h opsapi.Health) string {
	return healthStyle(h).Render(string(h))
}

func RenderStatus(s tekton.Status) string {
	return statusStyle(s).Render(string(s))
}
