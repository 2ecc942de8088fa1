package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rathe12/SystemMonitor/internal/collector"
	"github.com/rathe12/SystemMonitor/internal/config"
	"github.com/rathe12/SystemMonitor/internal/logging"
	"github.com/rathe12/SystemMonitor/internal/logstore"
	"github.com/rathe12/SystemMonitor/internal/monitor"
	"github.com/rathe12/SystemMonitor/internal/reporter"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCmd(collector.NewSystemProbe()).ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd(probe collector.Probe) *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:          "sysmon",
		Short:        "Terminal system monitor",
		Long:         `Samples CPU, memory, disk and network usage at a fixed interval, optionally alerting on a usage threshold and saving every sample to a daily JSON log.`,
		Args:         cobra.NoArgs,
		Version:      config.Version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath, cmd.Flags())
			if err != nil {
				return err
			}
			return runMonitor(cmd.Context(), cfg, probe, cmd.OutOrStdout())
		},
	}

	rootCmd.SetVersionTemplate("sysmon v{{.Version}}\n")
	rootCmd.Flags().StringVar(&configPath, "config", "", "Path to config file")
	config.RegisterFlags(rootCmd.Flags())

	return rootCmd
}

func runMonitor(ctx context.Context, cfg *config.Config, probe collector.Probe, out io.Writer) error {
	logger := logging.New(cfg.LoggingConfig())

	logger.Info("starting sysmon",
		slog.String("version", config.Version),
		slog.Int("interval_seconds", cfg.Interval),
		slog.Bool("network", !cfg.NoNetwork),
		slog.Bool("history", cfg.History.Enabled),
		slog.Bool("once", cfg.Once),
	)

	col := collector.New(probe,
		collector.WithDiskPath(cfg.DiskPath),
		collector.WithLogger(logger.With(slog.String("component", "collector"))),
	)

	reporterOpts := []reporter.Option{reporter.WithNetwork(!cfg.NoNetwork)}
	if cfg.NoColor {
		reporterOpts = append(reporterOpts, reporter.WithColor(false))
	}

	if host, err := col.Host(ctx); err != nil {
		logger.Debug("host info unavailable", slog.Any("error", err))
	} else {
		logger.Info("host",
			slog.String("hostname", host.Hostname),
			slog.String("platform", host.Platform),
			slog.String("kernel", host.Kernel),
			slog.Float64("load1", host.Load1),
			slog.Float64("load5", host.Load5),
			slog.Float64("load15", host.Load15),
		)
		reporterOpts = append(reporterOpts, reporter.WithHostname(host.Hostname))
	}

	var store monitor.Appender
	if cfg.History.Enabled {
		store = logstore.New(cfg.History.Dir, logstore.WithLogger(logger.With(slog.String("component", "logstore"))))
	}

	runner := monitor.NewRunner(col, store, reporter.New(out, reporterOpts...),
		monitor.WithLogger(logger.With(slog.String("component", "monitor"))),
	)

	res, err := runner.Run(ctx, monitor.Options{
		Interval:       cfg.IntervalDuration(),
		IncludeNetwork: !cfg.NoNetwork,
		LogEnabled:     cfg.History.Enabled,
		Once:           cfg.Once,
		Policy:         cfg.Policy(),
	})
	if err != nil {
		logger.Error("monitor failed", slog.Any("error", err))
		return err
	}

	logger.Info("monitor finished", slog.Int("cycles", res.Cycles), slog.Bool("threshold_stop", res.Stopped))
	return nil
}
