package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/listat/internal/aggregate"
	"github.com/nao1215/listat/internal/config"
	"github.com/nao1215/listat/internal/database"
	"github.com/nao1215/listat/internal/model"
	"github.com/spf13/cobra"
)

// defaultHistoryLimit is the number of batches listed when --limit is unset.
const defaultHistoryLimit = 20

// errHistorySelection is returned when --id and --latest are combined.
var errHistorySelection = errors.New("--id and --latest cannot be used together")

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List or re-export stored batches",
		Long: `History lists the batches stored by previous report runs, newest first.

With --id or --latest a stored batch is exported again without contacting
LiveInternet, using the same output flags as the report command.

Examples:
  # List the last 20 batches of any period
  listat history

  # Re-export the latest monthly batch as Markdown
  listat history --latest --period month --format markdown

  # Show the dates of batch 12
  listat history --id 12 --list-dates`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().StringP("period", "p", "", "Only batches of this period: week or month")
	cmd.Flags().IntP("limit", "n", defaultHistoryLimit, "Maximum number of batches to list (0 lists all)")
	cmd.Flags().Int64("id", 0, "Export the batch with this ID")
	cmd.Flags().Bool("latest", false, "Export the latest batch of --period (default week)")
	addOutputFlags(cmd)
	addHistoryFlags(cmd)

	return cmd
}

// addHistoryFlags registers the history database location flag.
func addHistoryFlags(cmd *cobra.Command) {
	cmd.Flags().String("db-dir", "", "History database directory (default: XDG data directory)")
}

// dbDirFlag returns --db-dir, or the XDG data directory when it is unset.
func dbDirFlag(cmd *cobra.Command) (string, error) {
	dir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return "", err
	}
	if dir == "" {
		return config.XDGDataDir(), nil
	}
	return dir, nil
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	logger := setupLogger(cmd)
	flags := cmd.Flags()

	periodName, err := flags.GetString("period")
	if err != nil {
		return err
	}
	var period model.Period
	if periodName != "" {
		if period, err = model.ParsePeriod(periodName); err != nil {
			return err
		}
	}
	limit, err := flags.GetInt("limit")
	if err != nil {
		return err
	}
	id, err := flags.GetInt64("id")
	if err != nil {
		return err
	}
	latest, err := flags.GetBool("latest")
	if err != nil {
		return err
	}
	if id != 0 && latest {
		return errHistorySelection
	}
	opts, err := readOutputOptions(cmd)
	if err != nil {
		return err
	}
	dir, err := dbDirFlag(cmd)
	if err != nil {
		return err
	}

	opener := database.DefaultOptions()
	opener.CreateIfNotExists = false
	store, err := database.Open(dir, opener)
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer store.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if id == 0 && !latest {
		batches, err := store.ListBatches(ctx, period, limit)
		if err != nil {
			return err
		}
		return printBatches(cmd.OutOrStdout(), batches)
	}

	var batch *database.Batch
	if latest {
		if period == "" {
			period = model.PeriodWeek
		}
		batch, err = store.LatestBatch(ctx, period)
	} else {
		batch, err = store.LoadBatch(ctx, id)
	}
	if err != nil {
		return err
	}
	logger.Debug("batch loaded", "id", batch.ID, "period", batch.Period, "sources", len(batch.Sources))

	table := aggregate.Build(batch.Period, batch.Series())
	state, err := selectDate(aggregate.Loading(batch.Period).Ready(table), opts.date)
	if err != nil {
		return err
	}

	path, err := emitReport(cmd.OutOrStdout(), state, opts, logger)
	if err != nil {
		return err
	}
	if path != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Report written to %s\n", path)
	}
	return nil
}

// printBatches writes one line per batch summary.
func printBatches(w io.Writer, batches []database.BatchSummary) error {
	if len(batches) == 0 {
		_, err := fmt.Fprintln(w, "No stored batches.")
		return err
	}
	if _, err := fmt.Fprintf(w, "%-6s %-6s %-20s %-8s %-7s %s\n",
		"ID", "PERIOD", "CREATED", "SOURCES", "FAILED", "DATES"); err != nil {
		return err
	}
	for _, b := range batches {
		if _, err := fmt.Fprintf(w, "%-6d %-6s %-20s %-8d %-7d %s\n",
			b.ID, b.Period, b.CreatedAt.Local().Format(time.DateTime),
			b.SourceCount, b.FailedCount, dateRange(b.Dates)); err != nil {
			return err
		}
	}
	return nil
}

// dateRange renders the first and last date of a batch.
func dateRange(dates []string) string {
	switch len(dates) {
	case 0:
		return "-"
	case 1:
		return dates[0]
	default:
		return strings.Join([]string{dates[0], dates[len(dates)-1]}, " .. ")
	}
}
