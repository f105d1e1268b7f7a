package dashboard

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/user/opsboard/internal/app"
	"github.com/user/opsboard/internal/logger"
	"github.com/user/opsboard/internal/ui"
)

var globals *app.Options

func NewCommand(opts *app.Options) *cobra.Command {
	globals = opts
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Open the interactive dashboard",
		RunE:  runDashboard,
	}
}

func runDashboard(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	opts := *globals
	opts.LogToFile = true
	a, err := app.Open(ctx, opts)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	model := ui.New(ui.Options{
		Backend:         a.Client,
		Session:         a.Session,
		Recorder:        a.Actions,
		Engine:          a.Engine,
		PollInterval:    a.Config.PollInterval,
		TektonNamespace: a.Config.TektonNamespace,
	})

	logger.Info().Str("api_url", a.Config.APIURL).Msg("Starting dashboard")
	if _, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("running dashboard: %w", err)
	}
	return nil
}
