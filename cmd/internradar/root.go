package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"internradar/internal/classify"
	"internradar/internal/config"
	"internradar/internal/extract"
	"internradar/internal/ingest"
	"internradar/internal/metrics"
	"internradar/internal/model"
	"internradar/internal/notify"
	"internradar/internal/runlog"
	"internradar/internal/schedule"
	"internradar/internal/source"
	"internradar/internal/store"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "internradar",
	Short: "Internship radar — crawl career pages and boards for intern postings",
	Long:  "InternRadar crawls company career pages and job boards on a cadence, classifies and summarizes each posting, and stores everything for browsing.",
	// Default to `start` so the bare binary runs the daemon.
	RunE: runStart,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: INTERNRADAR_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > INTERNRADAR_CONFIG env var > "./config.yaml"
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if env := os.Getenv("INTERNRADAR_CONFIG"); env != "" {
			path = env
		} else {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

func setupNotifier(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) model.Notifier {
	switch cfg.Notification.Type {
	case "slack":
		logger.Info("using slack notifier")
		return notify.NewSlackNotifier(cfg.Notification.WebhookURL, httpClient, logger)
	case "none":
		return notify.Nop{}
	default:
		return notify.NewLogNotifier(logger)
	}
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}

// syncOwners pushes the configured companies and sources into the store and
// returns the stored owner rows.
func syncOwners(cmd *cobra.Command, cfg *config.Config, s *store.SQLiteStore, logger *slog.Logger) ([]model.Owner, error) {
	var owners []model.Owner
	for _, o := range cfg.ToOwners() {
		stored, err := s.GetOrCreateOwner(cmd.Context(), o)
		if err != nil {
			return nil, err
		}
		owners = append(owners, stored)
		logger.Debug("owner registered", "name", stored.Name, "kind", stored.Kind, "cadence", stored.Cadence.String())
	}
	return owners, nil
}

// buildCrawler wires the full pipeline around the given posting store. The
// posting store is a parameter so dry-run can swap in a no-op one.
func buildCrawler(cfg *config.Config, s *store.SQLiteStore, postings model.PostingStore,
	notifier model.Notifier, rec metrics.Recorder, httpClient *http.Client, logger *slog.Logger) *schedule.Crawler {
	engine := ingest.NewEngine(postings, classify.New(), extract.New(), notifier, logger)
	recorder := runlog.NewRecorder(s, logger)
	return schedule.NewCrawler(s, recorder, engine, source.DefaultRegistry(),
		httpClient, cfg.Politeness, cfg.OwnerTimeout, rec, logger)
}
