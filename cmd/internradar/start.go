package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"internradar/internal/metrics"
	"internradar/internal/schedule"
	"internradar/internal/store"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the crawl daemon",
	Long:  "Start the crawl cycle daemon; blocks until SIGINT/SIGTERM.",
	RunE:  runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("config loaded",
		"poll_interval", cfg.PollInterval.String(),
		"owner_timeout", cfg.OwnerTimeout.String(),
		"companies", len(cfg.Companies),
		"sources", len(cfg.Sources),
		"database", cfg.DatabasePath,
	)

	s, err := store.NewSQLiteStore(cfg.DatabasePath)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer s.Close()

	if _, err := syncOwners(cmd, cfg, s, logger); err != nil {
		logger.Error("failed to sync owners", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpClient := newHTTPClient()
	notifier := setupNotifier(cfg, httpClient, logger)

	var rec metrics.Recorder = metrics.Nop{}
	if cfg.Metrics.Addr != "" {
		prom := metrics.NewPrometheus()
		rec = prom
		srv := &http.Server{Addr: cfg.Metrics.Addr, Handler: prom.Handler()}
		go func() {
			logger.Info("metrics endpoint listening", "addr", cfg.Metrics.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics endpoint failed", "error", err)
			}
		}()
		defer srv.Close()
	}

	crawler := buildCrawler(cfg, s, s, notifier, rec, httpClient, logger)
	runner := schedule.NewRunner(crawler, cfg.PollInterval, logger)
	if err := runner.Run(ctx); err != nil {
		logger.Error("runner error", "error", err)
		os.Exit(1)
	}

	logger.Info("goodbye")
	return nil
}
