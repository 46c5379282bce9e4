package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nao1215/listat/internal/aggregate"
	"github.com/nao1215/listat/internal/config"
	"github.com/nao1215/listat/internal/database"
	"github.com/nao1215/listat/internal/fetch"
	"github.com/nao1215/listat/internal/model"
	"github.com/nao1215/listat/internal/pipeline"
	"github.com/spf13/cobra"
)

// NewReportCmd creates the report command.
func NewReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Fetch all sources and export one date",
		Long: `Report fetches the statistics table of every configured LiveInternet
counter, merges them by date and exports views and visitors of each counter
for one date (the latest by default).

A counter that cannot be loaded is reported without data; the command only
fails when every counter failed.

Examples:
  # Weekly report of the latest day as CSV on stdout
  listat report

  # Monthly report for March 2023 into a generated file name
  listat report --period month --date "Мар 23" --output-dir reports

  # Show the dates that can be exported
  listat report --period month --list-dates

  # Re-run on pages saved earlier (<dir>/<source id with / as _>.html)
  listat report --input saved-pages --format text`,
		Args: cobra.NoArgs,
		RunE: runReportCmd,
	}

	cmd.Flags().StringP("period", "p", string(model.PeriodWeek), "Statistics period: week or month")
	addOutputFlags(cmd)

	cmd.Flags().StringP("input", "i", "", "Read saved pages from this directory instead of fetching")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize, "Number of sources fetched concurrently")
	cmd.Flags().Float64("rate", config.DefaultRateLimit, "Maximum requests per second (0 disables the limit)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout, "Timeout for each request")
	cmd.Flags().String("proxy", "", "SOCKS5 proxy address (host:port)")
	cmd.Flags().String("user-agent", config.DefaultUserAgent, "User-Agent header")
	cmd.Flags().Int64("max-body", config.DefaultMaxBodySize, "Maximum page size in bytes")
	cmd.Flags().StringP("config", "c", "",
		"Sources file path (default: .listat in current or home directory)")
	addHistoryFlags(cmd)
	cmd.Flags().Bool("no-save", false, "Do not store the batch in the history database")

	return cmd
}

func runReportCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	opts, err := readOutputOptions(cmd)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	state, err := runBatch(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if state, err = selectDate(state, opts.date); err != nil {
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

// buildConfig creates a Config from command flags and the sources file.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	periodName, err := flags.GetString("period")
	if err != nil {
		return nil, err
	}
	if cfg.Period, err = model.ParsePeriod(periodName); err != nil {
		return nil, err
	}
	if cfg.InputDir, err = flags.GetString("input"); err != nil {
		return nil, err
	}
	if cfg.BatchSize, err = flags.GetInt("batch"); err != nil {
		return nil, err
	}
	if cfg.RateLimit, err = flags.GetFloat64("rate"); err != nil {
		return nil, err
	}
	if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
		return nil, err
	}
	if cfg.ProxyAddress, err = flags.GetString("proxy"); err != nil {
		return nil, err
	}
	if cfg.UserAgent, err = flags.GetString("user-agent"); err != nil {
		return nil, err
	}
	if cfg.MaxBodySize, err = flags.GetInt64("max-body"); err != nil {
		return nil, err
	}
	if cfg.DBDir, err = dbDirFlag(cmd); err != nil {
		return nil, err
	}
	noSave, err := flags.GetBool("no-save")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noSave

	if cfg.ConfigFilePath, err = flags.GetString("config"); err != nil {
		return nil, err
	}
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		if cfg.Sources, err = config.LoadConfigFile(configPath); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	case explicitConfigPath:
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	return cfg, nil
}

// newFetcher returns the offline reader for --input, or the HTTP client.
func newFetcher(cfg *config.Config, logger *slog.Logger) (fetch.Fetcher, error) {
	if cfg.InputDir != "" {
		return fetch.NewDirFetcher(cfg.InputDir), nil
	}
	opts := []fetch.Option{
		fetch.WithTimeout(cfg.Timeout),
		fetch.WithUserAgent(cfg.UserAgent),
		fetch.WithMaxBodySize(cfg.MaxBodySize),
		fetch.WithRateLimit(cfg.RateLimit),
		fetch.WithProxy(cfg.ProxyAddress),
		fetch.WithLogger(logger),
	}
	if cfg.Sources != nil {
		opts = append(opts,
			fetch.WithCookie(cfg.Sources.Defaults.Cookie),
			fetch.WithHeaders(cfg.Sources.Defaults.Headers))
	}
	client, err := fetch.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}
	return client, nil
}

// runBatch loads every source, aggregates them and saves the batch. The
// caller applies the requested date afterwards so an unknown date does not
// lose a fetched batch.
func runBatch(ctx context.Context, cfg *config.Config, logger *slog.Logger) (aggregate.State, error) {
	state := aggregate.Loading(cfg.Period)

	requests, err := cfg.Requests()
	if err != nil {
		return state.Failed(err), fmt.Errorf("configuration error: %w", err)
	}
	fetcher, err := newFetcher(cfg, logger)
	if err != nil {
		return state.Failed(err), err
	}

	bp := pipeline.NewBatchProcessor(
		func(req fetch.Request) *pipeline.Pipeline {
			steps := pipeline.DefaultSteps(fetcher, req, database.PayloadHash, logger)
			return pipeline.New(steps, pipeline.WithLogger(logger))
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	reports, err := bp.ProcessBatch(ctx, cfg.Period, requests)
	if err != nil {
		return state.Failed(err), fmt.Errorf("batch failed: %w", err)
	}

	table := aggregate.Build(cfg.Period, pipeline.Series(reports))
	state = state.Ready(table)

	if cfg.SaveToDB {
		saveBatch(ctx, cfg, table, reports, logger)
	}

	return state, nil
}

// saveBatch stores a ready batch. Failures are logged; the report is still
// produced.
func saveBatch(ctx context.Context, cfg *config.Config, table aggregate.Table, reports []*model.SourceReport, logger *slog.Logger) {
	store, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		logger.Warn("failed to open history database", "dir", cfg.DBDir, "error", err)
		return
	}
	defer store.Close()

	id, err := store.SaveBatch(ctx, cfg.Period, table.Dates(), reports)
	if err != nil {
		logger.Warn("failed to save batch", "error", err)
		return
	}
	logger.Info("batch saved", "id", id, "db", store.Path())
}
