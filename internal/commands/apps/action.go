package apps

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/user/opsboard/internal/actions"
	"github.com/user/opsboard/internal/app"
	"github.com/user/opsboard/internal/notify"
	"github.com/user/opsboard/pkg/opsapi"
)

var (
	actionTarget string
	assumeYes    bool
)

func NewRestartCommand(opts *app.Options) *cobra.Command {
	globals = opts
	cmd := &cobra.Command{
		Use:   "restart <app>",
		Short: "Restart the deployment behind an ArgoCD application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction(cmd, actions.KindRestart, args[0])
		},
	}
	addActionFlags(cmd)
	return cmd
}

func NewSyncCommand(opts *app.Options) *cobra.Command {
	globals = opts
	cmd := &cobra.Command{
		Use:   "sync <app>",
		Short: "Sync an ArgoCD application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction(cmd, actions.KindSync, args[0])
		},
	}
	addActionFlags(cmd)
	return cmd
}

func addActionFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&actionTarget, "target", "t", "", "Target key (required when several ArgoCD targets exist)")
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation")
}

// runAction drives the same confirm, execute and report cycle as the
// dashboard, with a y/N prompt standing in for the key press.
func runAction(cmd *cobra.Command, kind actions.Kind, appName string) error {
	ctx := cmd.Context()

	a, err := app.Open(ctx, *globals)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if err := a.RequireSession(); err != nil {
		return err
	}

	target, err := a.FindTarget(ctx, actionTarget, opsapi.TargetArgoCD)
	if err != nil {
		return a.Explain(err)
	}

	apps, err := a.Client.Apps(ctx, target.Key)
	if err != nil {
		return fmt.Errorf("fetching applications: %w", a.Explain(err))
	}

	selected, ok := findApp(apps, appName)
	if !ok {
		return fmt.Errorf("application %q not found on %s", appName, target.Name)
	}

	toasts := notify.NewChannel()
	coord := actions.NewCoordinator(a.Client, a.Actions, toasts)
	if err := coord.RequestAction(kind, selected, target); err != nil {
		return err
	}

	req, _ := coord.Pending()
	if !assumeYes {
		confirmed, err := confirm(cmd, req.Describe())
		if err != nil {
			coord.Cancel()
			return err
		}
		if !confirmed {
			coord.Cancel()
			cmd.Println("Cancelled")
			return nil
		}
	}

	execute, err := coord.Confirm()
	if err != nil {
		return err
	}
	done, ok := execute().(actions.CompletedMsg)
	if !ok {
		return errors.New("action did not complete")
	}
	coord.Update(done)

	toast, _ := toasts.Current()
	if !done.Outcome.Succeeded() {
		return fmt.Errorf("%s %s: %s", kind, selected.Name, toast.Text)
	}
	cmd.Println(toast.Text)
	return nil
}

func findApp(apps []opsapi.App, name string) (opsapi.App, bool) {
	for _, candidate := range apps {
		if candidate.Name == name {
			return candidate, true
		}
	}
	return opsapi.App{}, false
}

func confirm(cmd *cobra.Command, question string) (bool, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, errors.New("refusing to act without confirmation (use --yes)")
	}

	cmd.Printf("%s [y/N] ", question)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("reading answer: %w", err)
	}

	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}
