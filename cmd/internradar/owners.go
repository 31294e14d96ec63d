package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"internradar/internal/store"
)

var ownersCmd = &cobra.Command{
	Use:   "owners",
	Short: "List all crawl targets",
	Long:  "Syncs the config into the store and prints a table of all owners with their crawl state.",
	RunE:  runOwners,
}

func init() {
	rootCmd.AddCommand(ownersCmd)
}

func runOwners(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	s, err := store.NewSQLiteStore(cfg.DatabasePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open store: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	if _, err := syncOwners(cmd, cfg, s, logger); err != nil {
		fmt.Fprintf(os.Stderr, "failed to sync owners: %v\n", err)
		os.Exit(1)
	}

	owners, err := s.ListOwners(cmd.Context())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to list owners: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%-22s %-8s %-12s %-10s %-17s %s\n", "Owner", "Kind", "Source", "Cadence", "Last Crawl", "Status")
	fmt.Println(strings.Repeat("─", 82))

	active, inactive := 0, 0
	for _, o := range owners {
		status := "active"
		if !o.Active {
			status = "inactive"
			inactive++
		} else {
			active++
		}
		last := "never"
		if o.LastCrawled != nil {
			last = o.LastCrawled.Format("2006-01-02 15:04")
		}
		fmt.Printf("%-22s %-8s %-12s %-10s %-17s %s\n",
			o.Name, o.Kind, o.SourceType, o.Cadence.String(), last, status)
	}

	fmt.Printf("\nTotal: %d owners (%d active, %d inactive)\n", len(owners), active, inactive)
	return nil
}
