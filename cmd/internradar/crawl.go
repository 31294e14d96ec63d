package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"internradar/internal/metrics"
	"internradar/internal/model"
	"internradar/internal/store"
)

var (
	crawlOwner  string
	crawlDryRun bool
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Run one crawl cycle and exit",
	Long:  "Crawls every due owner once (or one owner with --owner) and exits.",
	RunE:  runCrawl,
}

func init() {
	crawlCmd.Flags().StringVar(&crawlOwner, "owner", "", "crawl only this owner, ignoring due-ness")
	crawlCmd.Flags().BoolVar(&crawlDryRun, "dry-run", false, "fetch and classify but do not persist postings")
	rootCmd.AddCommand(crawlCmd)
}

func runCrawl(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	s, err := store.NewSQLiteStore(cfg.DatabasePath)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer s.Close()

	owners, err := syncOwners(cmd, cfg, s, logger)
	if err != nil {
		logger.Error("failed to sync owners", "error", err)
		os.Exit(1)
	}

	httpClient := newHTTPClient()
	notifier := setupNotifier(cfg, httpClient, logger)

	var postings model.PostingStore = s
	if crawlDryRun {
		logger.Info("dry-run mode enabled, postings will not be persisted")
		postings = store.NewNopPostingStore()
	}
	crawler := buildCrawler(cfg, s, postings, notifier, metrics.Nop{}, httpClient, logger)

	if crawlOwner != "" {
		for _, o := range owners {
			if o.Name == crawlOwner {
				crawler.CrawlOwner(cmd.Context(), o)
				return nil
			}
		}
		return fmt.Errorf("unknown owner %q", crawlOwner)
	}

	return crawler.CrawlDue(cmd.Context())
}
