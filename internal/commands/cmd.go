package commands

import (
	"github.com/spf13/cobra"

	"github.com/user/opsboard/internal/app"
	"github.com/user/opsboard/internal/commands/apps"
	"github.com/user/opsboard/internal/commands/dashboard"
	"github.com/user/opsboard/internal/commands/history"
	"github.com/user/opsboard/internal/commands/login"
	"github.com/user/opsboard/internal/commands/overview"
	"github.com/user/opsboard/internal/commands/pipelines"
)

var (
	opts app.Options

	rootCmd = &cobra.Command{
		Use:          "opsboard",
		Short:        "Terminal dashboard for ArgoCD applications and Tekton pipelines",
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&opts.ConfigFile, "config", "c", "config.yaml", "Path to config file")
	rootCmd.PersistentFlags().BoolVar(&opts.Debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(dashboard.NewCommand(&opts))
	rootCmd.AddCommand(login.NewLoginCommand(&opts))
	rootCmd.AddCommand(login.NewLogoutCommand(&opts))
	rootCmd.AddCommand(overview.NewTargetsCommand(&opts))
	rootCmd.AddCommand(overview.NewCommand(&opts))
	rootCmd.AddCommand(apps.NewCommand(&opts))
	rootCmd.AddCommand(apps.NewRestartCommand(&opts))
	rootCmd.AddCommand(apps.NewSyncCommand(&opts))
	rootCmd.AddCommand(pipelines.NewRunsCommand(&opts))
	rootCmd.AddCommand(pipelines.NewTaskRunsCommand(&opts))
	rootCmd.AddCommand(history.NewCommand(&opts))
}

func Execute() error {
	return rootCmd.Execute()
}
