package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"internradar/internal/store"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Show recent crawl runs",
	Long:  "Prints the most recent crawl run records, newest first.",
	RunE:  runRuns,
}

func init() {
	runsCmd.Flags().IntVarP(&runsLimit, "limit", "n", 20, "number of runs to show")
	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, args []string) error {
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

	runs, err := s.ListRecentRuns(cmd.Context(), runsLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to list runs: %v\n", err)
		os.Exit(1)
	}

	owners, err := s.ListOwners(cmd.Context())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to list owners: %v\n", err)
		os.Exit(1)
	}
	names := make(map[int64]string, len(owners))
	for _, o := range owners {
		names[o.ID] = o.Name
	}

	fmt.Printf("%-6s %-22s %-17s %-10s %-6s %-5s %s\n", "Run", "Owner", "Started", "Status", "Found", "New", "Error")
	fmt.Println(strings.Repeat("─", 84))

	for _, r := range runs {
		name := names[r.OwnerID]
		if name == "" {
			name = fmt.Sprintf("owner#%d", r.OwnerID)
		}
		errMsg := r.ErrorMessage
		if len(errMsg) > 40 {
			errMsg = errMsg[:37] + "..."
		}
		fmt.Printf("%-6d %-22s %-17s %-10s %-6d %-5d %s\n",
			r.ID, name, r.StartedAt.Format("2006-01-02 15:04"), r.Status, r.JobsFound, r.JobsNew, errMsg)
	}

	if len(runs) == 0 {
		fmt.Println("(no runs recorded)")
	}
	return nil
}
