package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"internradar/internal/browse"
	"internradar/internal/store"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse stored postings interactively",
	Long:  "Opens a terminal UI: pick an owner, scroll its postings, and read each posting's requirements summary.",
	RunE:  runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
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

	owners, err := s.ListOwners(cmd.Context())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to list owners: %v\n", err)
		os.Exit(1)
	}
	if len(owners) == 0 {
		fmt.Println("no owners in the store yet; run `internradar crawl` first")
		return nil
	}

	// Picker and browser loop: esc in the browser returns to the picker.
	for {
		idx, err := browse.RunOwnerPicker(owners)
		if err != nil {
			return err
		}
		if idx < 0 {
			return nil
		}
		owner := owners[idx]

		postings, err := s.ListPostingsByOwner(cmd.Context(), owner.ID)
		if err != nil {
			return fmt.Errorf("loading postings for %s: %w", owner.Name, err)
		}

		quit, err := browse.RunBrowser(owner, postings)
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
	}
}
