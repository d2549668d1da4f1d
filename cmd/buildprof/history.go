package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"buildprof/internal/config"
	"buildprof/internal/diag"
	"buildprof/internal/history"
)

var (
	historyDirFlag   string
	pruneKeep        int
	pruneMaxAgeDays  int
	historyConfigArg string
)

func init() {
	historyCmd.PersistentFlags().StringVar(&historyDirFlag, "dir", "", "history directory (default: from buildprof.toml)")
	historyCmd.PersistentFlags().StringVar(&historyConfigArg, "config", "", "path to buildprof.toml")
	historyPruneCmd.Flags().IntVar(&pruneKeep, "keep", 0, "records to retain (0 = unlimited)")
	historyPruneCmd.Flags().IntVar(&pruneMaxAgeDays, "max-age-days", 0, "drop records older than this (0 = unlimited)")
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyPruneCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect and maintain stored run records",
}

func openHistoryStore() (*history.Store, error) {
	dir := historyDirFlag
	if dir == "" {
		var cfg config.Config
		var err error
		if historyConfigArg != "" {
			cfg, err = config.Load(historyConfigArg)
		} else {
			cfg, _, err = config.Resolve(".")
		}
		if err != nil {
			return nil, err
		}
		dir = cfg.History.Dir
	}
	if dir == "" {
		return nil, fmt.Errorf("no history directory configured; pass --dir or set history.dir in %s", config.ManifestName)
	}
	return history.Open(dir)
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored runs, oldest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistoryStore()
		if err != nil {
			return err
		}
		bag := diag.NewBag(256)
		records, err := store.List(bag)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(records) == 0 {
			fmt.Fprintln(out, "no runs recorded")
		}
		for _, rec := range records {
			line := fmt.Sprintf("%s  %s", rec.Timestamp.UTC().Format(time.RFC3339), rec.RunID)
			if rec.Tag != "" {
				line += "  [" + rec.Tag + "]"
			}
			line += fmt.Sprintf("  (%d tools)", len(rec.Summaries))
			fmt.Fprintln(out, line)
		}
		printDiagnostics(cmd.ErrOrStderr(), bag)
		return nil
	},
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete run records past the retention policy",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistoryStore()
		if err != nil {
			return err
		}
		policy := history.RetentionPolicy{
			MaxRecords: pruneKeep,
			MaxAge:     time.Duration(pruneMaxAgeDays) * 24 * time.Hour,
		}
		removed, err := store.Prune(policy, time.Now())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %d run record(s)\n", removed)
		return nil
	},
}
