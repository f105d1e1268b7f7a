package history

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/user/opsboard/internal/app"
	"github.com/user/opsboard/internal/database"
)

var (
	globals   *app.Options
	targetKey string
	limit     int
)

func NewCommand(opts *app.Options) *cobra.Command {
	globals = opts
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently executed restart and sync actions",
		RunE:  runHistory,
	}

	cmd.Flags().StringVarP(&targetKey, "target", "t", "", "Only show actions against this target key")
	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "Number of records to show (0 for all)")

	return cmd
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := app.Open(ctx, *globals)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	records, err := a.Actions.Recent(ctx, targetKey, limit)
	if err != nil {
		return fmt.Errorf("reading action history: %w", err)
	}

	if len(records) == 0 {
		cmd.Println("No actions recorded")
		return nil
	}
	return writeHistory(cmd.OutOrStdout(), records)
}

func writeHistory(out io.Writer, records []database.ActionRecord) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tKIND\tAPP\tTARGET\tOUTCOME\tMESSAGE\tID")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			humanize.Time(time.Unix(r.RequestedAt, 0)), r.Kind, r.AppName, r.TargetKey, r.Outcome, r.Message, r.ID)
	}
	return w.Flush()
}
