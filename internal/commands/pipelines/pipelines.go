package pipelines

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/user/opsboard/internal/app"
	"github.com/user/opsboard/internal/tekton"
	"github.com/user/opsboard/internal/ui"
	"github.com/user/opsboard/internal/views"
	"github.com/user/opsboard/pkg/opsapi"
)

var (
	globals   *app.Options
	targetKey string
	namespace string
	status    string
	search    string
	page      int
	detail    string
)

func NewRunsCommand(opts *app.Options) *cobra.Command {
	globals = opts
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List Tekton pipeline runs of a target",
		RunE:  runRuns,
	}

	addTargetFlags(cmd)
	cmd.Flags().StringVar(&status, "status", views.All, "Status filter (Succeeded, Failed, Running)")
	cmd.Flags().StringVarP(&search, "search", "s", "", "Case-insensitive name filter")
	cmd.Flags().IntVarP(&page, "page", "p", 1, "Page to show")
	cmd.Flags().StringVar(&detail, "detail", "", "Show one pipeline run with its task runs")

	return cmd
}

func NewTaskRunsCommand(opts *app.Options) *cobra.Command {
	globals = opts
	cmd := &cobra.Command{
		Use:   "taskruns <pipelinerun>",
		Short: "List the task runs of a pipeline run",
		Args:  cobra.ExactArgs(1),
		RunE:  runTaskRuns,
	}

	addTargetFlags(cmd)
	return cmd
}

func addTargetFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&targetKey, "target", "t", "", "Target key (required when several Tekton targets exist)")
	cmd.Flags().StringVarP(&namespace, "namespace", "n", "", "Pipeline namespace (defaults to tekton_namespace from config)")
}

func open(ctx context.Context) (*app.App, opsapi.Target, string, error) {
	a, err := app.Open(ctx, *globals)
	if err != nil {
		return nil, opsapi.Target{}, "", err
	}
	if err := a.RequireSession(); err != nil {
		_ = a.Close()
		return nil, opsapi.Target{}, "", err
	}

	target, err := a.FindTarget(ctx, targetKey, opsapi.TargetTekton)
	if err != nil {
		_ = a.Close()
		return nil, opsapi.Target{}, "", a.Explain(err)
	}

	ns := namespace
	if ns == "" {
		ns = a.Config.TektonNamespace
	}
	return a, target, ns, nil
}

func runRuns(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, target, ns, err := open(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if detail != "" {
		return showDetail(ctx, cmd.OutOrStdout(), a, target, ns, detail)
	}

	snapshot, err := a.Client.PipelineRuns(ctx, ns, target.Key)
	if err != nil {
		return fmt.Errorf("fetching pipeline runs: %w", a.Explain(err))
	}

	filter := views.NewFilter().WithStatus(status).WithSearch(search).WithPage(page)
	view := a.Engine.Runs(snapshot, filter, time.Now())

	out := cmd.OutOrStdout()
	c := view.Counts
	fmt.Fprintf(out, "%s/%s: %d total, %d succeeded, %d failed, %d running\n\n",
		target.Name, ns, c.Total, c.Succeeded, c.Failed, c.Running)

	if err := writeRuns(out, "PIPELINERUN", view.Rows); err != nil {
		return err
	}

	fmt.Fprintf(out, "\npage %d/%d (%d matching)\n", view.Filter.Page, max(1, view.TotalPages), view.Filtered)
	return nil
}

func runTaskRuns(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, target, ns, err := open(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	taskRuns, err := a.Client.TaskRuns(ctx, ns, args[0], target.Key)
	if err != nil {
		return fmt.Errorf("fetching task runs: %w", a.Explain(err))
	}

	return writeRuns(cmd.OutOrStdout(), "TASKRUN", a.Engine.TaskRows(taskRuns, time.Now()))
}

func showDetail(ctx context.Context, out io.Writer, a *app.App, target opsapi.Target, ns, name string) error {
	run, err := a.Client.PipelineRun(ctx, ns, name, target.Key)
	if err != nil {
		return fmt.Errorf("fetching pipeline run: %w", a.Explain(err))
	}

	now := time.Now()
	d, ok := tekton.RunDuration(run.Status, now)

	fmt.Fprintf(out, "Name:      %s\n", run.Name())
	fmt.Fprintf(out, "Namespace: %s\n", ns)
	fmt.Fprintf(out, "Status:    %s\n", ui.RenderStatus(tekton.EvaluateRun(*run)))
	fmt.Fprintf(out, "Started:   %s\n", formatTime(run.Status.StartTime))
	fmt.Fprintf(out, "Completed: %s\n", formatTime(run.Status.CompletionTime))
	fmt.Fprintf(out, "Duration:  %s\n", tekton.FormatDuration(d, ok))
	for _, c := range run.Status.Conditions {
		if c.Message != "" {
			fmt.Fprintf(out, "Condition: %s=%s %s: %s\n", c.Type, c.Status, c.Reason, c.Message)
		}
	}
	fmt.Fprintln(out)

	taskRuns, err := a.Client.TaskRuns(ctx, ns, name, target.Key)
	if err != nil {
		return fmt.Errorf("fetching task runs: %w", a.Explain(err))
	}
	return writeRuns(out, "TASKRUN", a.Engine.TaskRows(taskRuns, now))
}

func writeRuns(out io.Writer, heading string, rows []views.RunRow) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tSTATUS\tSTARTED\tDURATION\n", heading)
	for _, row := range rows {
		started := "-"
		if row.Run.Status.StartTime != nil {
			started = humanize.Time(*row.Run.Status.StartTime)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", row.Run.Name(), ui.RenderStatus(row.Status), started, row.DurationText())
	}
	return w.Flush()
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return fmt.Sprintf("%s (%s)", t.Local().Format(time.DateTime), humanize.Time(*t))
}
