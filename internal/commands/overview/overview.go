package overview

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/user/opsboard/internal/app"
	"github.com/user/opsboard/internal/logger"
	"github.com/user/opsboard/internal/views"
	"github.com/user/opsboard/pkg/opsapi"
)

var globals *app.Options

func NewTargetsCommand(opts *app.Options) *cobra.Command {
	globals = opts
	return &cobra.Command{
		Use:   "targets",
		Short: "List the selectable targets",
		RunE:  runTargets,
	}
}

func NewCommand(opts *app.Options) *cobra.Command {
	globals = opts
	return &cobra.Command{
		Use:   "overview",
		Short: "Show status counts for every target",
		RunE:  runOverview,
	}
}

func runTargets(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := app.Open(ctx, *globals)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if err := a.RequireSession(); err != nil {
		return err
	}

	targets, err := a.Client.Targets(ctx)
	if err != nil {
		return fmt.Errorf("listing targets: %w", a.Explain(err))
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TYPE\tKEY\tNAME")
	for _, t := range targets {
		fmt.Fprintf(w, "%s\t%s\t%s\n", t.Type, t.Key, t.Name)
	}
	return w.Flush()
}

// snapshot is what one target returned. Exactly one of apps and runs is
// meaningful, depending on the target type.
type snapshot struct {
	target opsapi.Target
	apps   []opsapi.App
	runs   []opsapi.Run
	err    error
}

func runOverview(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := app.Open(ctx, *globals)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if err := a.RequireSession(); err != nil {
		return err
	}

	targets, err := a.Client.Targets(ctx)
	if err != nil {
		return fmt.Errorf("listing targets: %w", a.Explain(err))
	}

	snapshots, err := fetchAll(ctx, a.Client, targets, a.Config.TektonNamespace)
	if err != nil {
		return a.Explain(err)
	}

	return writeOverview(cmd.OutOrStdout(), a.Engine, snapshots, time.Now())
}

// Fetcher is the part of the client the overview needs.
type Fetcher interface {
	Apps(ctx context.Context, target string) ([]opsapi.App, error)
	PipelineRuns(ctx context.Context, namespace, target string) ([]opsapi.Run, error)
}

// fetchAll loads every target concurrently. A failing target is reported
// in its row; only a rejected session aborts the whole overview.
func fetchAll(ctx context.Context, client Fetcher, targets []opsapi.Target, namespace string) ([]snapshot, error) {
	snapshots := make([]snapshot, len(targets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for i, t := range targets {
		i, t := i, t
		snapshots[i].target = t
		g.Go(func() error {
			var err error
			switch t.Type {
			case opsapi.TargetArgoCD:
				snapshots[i].apps, err = client.Apps(gctx, t.Key)
			case opsapi.TargetTekton:
				snapshots[i].runs, err = client.PipelineRuns(gctx, namespace, t.Key)
			default:
				err = fmt.Errorf("unsupported target type %q", t.Type)
			}
			if opsapi.IsUnauthorized(err) {
				return err
			}
			if err != nil {
				logger.Warn().Err(err).Str("target", t.ID()).Msg("Overview fetch failed")
			}
			snapshots[i].err = err
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snapshots, nil
}

func writeOverview(out io.Writer, engine *views.Engine, snapshots []snapshot, now time.Time) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TARGET\tTYPE\tTOTAL\tSUMMARY")

	for _, s := range snapshots {
		if s.err != nil {
			fmt.Fprintf(w, "%s\t%s\t-\terror: %v\n", s.target.Name, s.target.Type, s.err)
			continue
		}

		switch s.target.Type {
		case opsapi.TargetArgoCD:
			c := engine.Apps(s.apps, views.NewFilter()).Counts
			fmt.Fprintf(w, "%s\t%s\t%d\t%d healthy, %d degraded, %d progressing, %d missing, %d unknown\n",
				s.target.Name, s.target.Type, c.Total, c.Healthy, c.Degraded, c.Progressing, c.Missing, c.Unknown)
		case opsapi.TargetTekton:
			c := engine.Runs(s.runs, views.NewFilter(), now).Counts
			fmt.Fprintf(w, "%s\t%s\t%d\t%d succeeded, %d failed, %d running\n",
				s.target.Name, s.target.Type, c.Total, c.Succeeded, c.Failed, c.Running)
		}
	}
	return w.Flush()
}
