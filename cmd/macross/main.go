package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"MACross/internal/analysis"
	"MACross/internal/config"
	"MACross/internal/logger"
	"MACross/internal/report"
	"MACross/internal/scheduler"
)

type options struct {
	configPath string
	symbol     string
	start      string
	end        string
	short      int
	long       int
	lot        float64
	capital    float64
	chart      string
	cachePath  string
	noCache    bool
	logLevel   string
}

func main() {
	_ = godotenv.Load()
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &options{}
	var cfg *config.Config

	root := &cobra.Command{
		Use:          "macross",
		Short:        "Moving-average crossover backtest on daily bars",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			cfg = loaded
			return nil
		},
	}
	root.SetOut(out)

	defaultConfig := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultConfig = v
	}
	pf := root.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", defaultConfig, "path to YAML config")
	pf.StringVar(&opts.symbol, "symbol", "", "instrument symbol")
	pf.StringVar(&opts.start, "start", "", "first date (YYYY-MM-DD)")
	pf.StringVar(&opts.end, "end", "", "last date (YYYY-MM-DD, default today)")
	pf.IntVar(&opts.short, "short", 0, "short moving-average window")
	pf.IntVar(&opts.long, "long", 0, "long moving-average window")
	pf.Float64Var(&opts.lot, "lot", 0, "shares held while long")
	pf.Float64Var(&opts.capital, "capital", 0, "initial capital")
	pf.StringVar(&opts.chart, "chart", "", "chart output path (PNG)")
	pf.StringVar(&opts.cachePath, "cache", "", "SQLite HTTP cache path")
	pf.BoolVar(&opts.noCache, "no-cache", false, "disable the HTTP cache")
	pf.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error")

	root.AddCommand(
		newRunCmd(func() *config.Config { return cfg }),
		newExploreCmd(func() *config.Config { return cfg }),
		newWatchCmd(func() *config.Config { return cfg }),
	)
	return root
}

func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("symbol") {
		cfg.DataSource.Symbol = opts.symbol
	}
	if flags.Changed("start") {
		cfg.DataSource.Start = opts.start
	}
	if flags.Changed("end") {
		cfg.DataSource.End = opts.end
	}
	if flags.Changed("short") {
		cfg.Strategy.ShortWindow = opts.short
	}
	if flags.Changed("long") {
		cfg.Strategy.LongWindow = opts.long
	}
	if flags.Changed("lot") {
		cfg.Portfolio.LotSize = opts.lot
	}
	if flags.Changed("capital") {
		cfg.Portfolio.InitialCapital = opts.capital
	}
	if flags.Changed("chart") {
		cfg.Chart.Output = opts.chart
	}
	if flags.Changed("cache") {
		cfg.Cache.SQLitePath = opts.cachePath
	}
	if opts.noCache {
		cfg.Cache.SQLitePath = ""
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = opts.logLevel
	}

	logger.Setup(cfg.Log.Level, cfg.Log.Format)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func newRunCmd(cfg func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run one backtest, print the summary and write the chart",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cfg())
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.runner.Run(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, report.SummaryTable(res))
			if len(res.Markers) > 0 {
				fmt.Fprintln(out, report.TradesTable(res))
			}
			if path := a.cfg.Chart.Output; path != "" {
				if err := report.RenderChart(res, path); err != nil {
					return err
				}
				log.Info().Str("path", path).Msg("chart written")
			}
			fmt.Fprintf(out, "final $ = %.2f\n", res.FinalEquity)
			return nil
		},
	}
}

func newExploreCmd(cfg func() *config.Config) *cobra.Command {
	var rows, lookback int
	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Print the raw bars with day-over-day close and volume changes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cfg())
			if err != nil {
				return err
			}
			defer a.Close()

			series, err := a.collector.Collect(cmd.Context())
			if err != nil {
				return err
			}
			ex, err := analysis.Explore(series, lookback)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, report.ExploreTable(ex, rows))
			span := "all bars"
			if ex.Lookback > 0 {
				span = fmt.Sprintf("last %d bars", ex.Lookback)
			}
			fmt.Fprintf(out, "[%d rows] range %.2f - %.2f (%s)\n", len(ex.Bars), ex.Low, ex.High, span)
			fmt.Fprintf(out, "missing values: %v\n", ex.HasMissing())
			return nil
		},
	}
	cmd.Flags().IntVar(&rows, "rows", 5, "rows shown at each end of the table (0 for all)")
	cmd.Flags().IntVar(&lookback, "lookback", 20, "bars in the high/low range (0 for all)")
	return cmd
}

func newWatchCmd(cfg func() *config.Config) *cobra.Command {
	var runNow bool
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-run the backtest on a cron schedule until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cfg())
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			sched := scheduler.NewScheduler(ctx, a.runner, a.purger, a.notifier, a.cfg.Chart.Output)
			if err := sched.RegisterAll(a.cfg.Schedule.RunCron, a.cfg.Schedule.PurgeCron); err != nil {
				return err
			}
			sched.Start()
			defer sched.Stop()

			if runNow || os.Getenv("RUN_ON_START") == "true" {
				go sched.RunNow()
			}

			log.Info().Str("cron", a.cfg.Schedule.RunCron).Msg("watching. Press Ctrl+C to stop.")
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			select {
			case <-sigCh:
				log.Info().Msg("shutdown signal received, stopping...")
			case <-ctx.Done():
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&runNow, "run-now", false, "run once immediately after starting")
	return cmd
}
