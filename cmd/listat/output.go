package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/nao1215/listat/internal/aggregate"
	"github.com/nao1215/listat/internal/config"
	"github.com/nao1215/listat/internal/log"
	"github.com/nao1215/listat/internal/report"
	"github.com/spf13/cobra"
)

// outputOptions selects how a table is rendered and where it goes.
type outputOptions struct {
	date       string
	format     report.Format
	outputFile string
	outputDir  string
	listDates  bool
	now        func() time.Time
}

// addOutputFlags registers the flags shared by report and history.
func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("date", "d", "",
		`Date to export, exactly as listed by --list-dates (default: latest)`)
	cmd.Flags().Bool("list-dates", false, "Print the available dates and exit")
	cmd.Flags().StringP("format", "f", string(report.FormatCSV),
		"Report format: csv, markdown, xlsx, json or text")
	cmd.Flags().StringP("output", "o", "",
		"Write the report to this file (creates directories if needed)")
	cmd.Flags().String("output-dir", "",
		"Write the report to this directory under a generated file name")
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

func getLogJSONFlag(cmd *cobra.Command) bool {
	jsonLog, err := cmd.Flags().GetBool("log-json")
	if err != nil {
		return false
	}
	return jsonLog
}

// setupLogger creates the logger for a command and makes it the default.
func setupLogger(cmd *cobra.Command) *slog.Logger {
	logger := log.NewLogger(cmd.ErrOrStderr(), getVerboseFlag(cmd), getLogJSONFlag(cmd))
	slog.SetDefault(logger)
	return logger
}

// selectDate applies the requested date to state.
func selectDate(state aggregate.State, date string) (aggregate.State, error) {
	if date == "" {
		return state, nil
	}
	selected, err := state.Select(date)
	if err != nil {
		return state, fmt.Errorf("%w (use --list-dates to see the available dates)", err)
	}
	return selected, nil
}

// printDates writes one date per line, the selected one marked with "*".
func printDates(w io.Writer, table aggregate.Table) error {
	selected, _ := table.Selected()
	for _, d := range table.Dates() {
		mark := " "
		if d == selected {
			mark = "*"
		}
		if _, err := fmt.Fprintf(w, "%s %s\n", mark, d); err != nil {
			return err
		}
	}
	return nil
}

// emitReport renders the selected date of a ready state. It returns the
// path written to, or "" for stdout.
func emitReport(stdout io.Writer, state aggregate.State, opts outputOptions, logger *slog.Logger) (string, error) {
	table, err := state.Table()
	if err != nil {
		return "", err
	}

	if opts.listDates {
		return "", printDates(stdout, table)
	}

	now := time.Now
	if opts.now != nil {
		now = opts.now
	}
	snapshot, err := report.NewSnapshot(table, now())
	if errors.Is(err, report.ErrNoSelection) {
		logger.Warn("no records found in any source; nothing to export", "period", table.Period())
		return "", nil
	}
	if err != nil {
		return "", err
	}

	path := opts.outputFile
	if opts.outputDir != "" {
		path = filepath.Join(opts.outputDir, report.FileName(snapshot.Period, snapshot.Date, opts.format))
	}

	output := stdout
	if path != "" {
		if dir := filepath.Dir(path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return "", fmt.Errorf("failed to create output directory: %w", err)
			}
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return "", fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	w, err := report.NewWriter(opts.format, output)
	if err != nil {
		return "", err
	}
	if _, err := w.Write(snapshot); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}

// readOutputOptions reads the shared output flags.
func readOutputOptions(cmd *cobra.Command) (outputOptions, error) {
	var (
		opts outputOptions
		err  error
	)
	flags := cmd.Flags()

	if opts.date, err = flags.GetString("date"); err != nil {
		return opts, err
	}
	if opts.listDates, err = flags.GetBool("list-dates"); err != nil {
		return opts, err
	}
	formatName, err := flags.GetString("format")
	if err != nil {
		return opts, err
	}
	if opts.format, err = report.ParseFormat(formatName); err != nil {
		return opts, err
	}
	if opts.outputFile, err = flags.GetString("output"); err != nil {
		return opts, err
	}
	if opts.outputDir, err = flags.GetString("output-dir"); err != nil {
		return opts, err
	}
	if opts.outputFile != "" && opts.outputDir != "" {
		return opts, config.ErrConflictingOutputs
	}
	return opts, nil
}
