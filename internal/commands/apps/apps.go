package apps

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/user/opsboard/internal/app"
	"github.com/user/opsboard/internal/ui"
	"github.com/user/opsboard/internal/views"
	"github.com/user/opsboard/pkg/opsapi"
)

var (
	globals   *app.Options
	targetKey string
	project   string
	namespace string
	health    string
	search    string
	page      int
)

func NewCommand(opts *app.Options) *cobra.Command {
	globals = opts
	cmd := &cobra.Command{
		Use:   "apps",
		Short: "List ArgoCD applications of a target",
		RunE:  runApps,
	}

	cmd.Flags().StringVarP(&targetKey, "target", "t", "", "Target key (required when several ArgoCD targets exist)")
	cmd.Flags().StringVar(&project, "project", views.All, "Project filter")
	cmd.Flags().StringVar(&namespace, "namespace", views.All, "Deployment namespace filter")
	cmd.Flags().StringVar(&health, "health", views.All, "Health filter (Healthy, Degraded, Progressing, Missing, Unknown)")
	cmd.Flags().StringVarP(&search, "search", "s", "", "Case-insensitive name filter")
	cmd.Flags().IntVarP(&page, "page", "p", 1, "Page to show")

	return cmd
}

func runApps(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := app.Open(ctx, *globals)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if err := a.RequireSession(); err != nil {
		return err
	}

	target, err := a.FindTarget(ctx, targetKey, opsapi.TargetArgoCD)
	if err != nil {
		return a.Explain(err)
	}

	snapshot, err := a.Client.Apps(ctx, target.Key)
	if err != nil {
		return fmt.Errorf("fetching applications: %w", a.Explain(err))
	}

	filter := views.NewFilter().
		WithProject(project).
		WithNamespace(namespace).
		WithStatus(health).
		WithSearch(search).
		WithPage(page)
	view := a.Engine.Apps(snapshot, filter)

	out := cmd.OutOrStdout()
	c := view.Counts
	fmt.Fprintf(out, "%s: %d total, %d healthy, %d degraded, %d progressing, %d missing, %d unknown\n\n",
		target.Name, c.Total, c.Healthy, c.Degraded, c.Progressing, c.Missing, c.Unknown)

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tPROJECT\tNAMESPACE\tDEPLOYMENT\tHEALTH")
	for _, row := range view.Rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", row.Name, row.Project, row.DeploymentNamespace, row.DeploymentName, ui.RenderHealth(row.Health))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "\npage %d/%d (%d matching)\n", view.Filter.Page, max(1, view.TotalPages), view.Filtered)
	return nil
}
