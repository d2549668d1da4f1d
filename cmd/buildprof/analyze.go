package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"buildprof/internal/config"
	"buildprof/internal/diag"
	"buildprof/internal/driver"
	"buildprof/internal/ingest"
	"buildprof/internal/pathshort"
	"buildprof/internal/project"
	"buildprof/internal/report"
)

var (
	analyzeConfigPath string
	analyzeJobs       int
	analyzeTopN       int
	analyzeHistoryDir string
	analyzeRunID      string
	analyzeTag        string
	analyzeCompareTo  string
	analyzeCompareTag string
	analyzeEnable     []string
	analyzeDisable    []string
	analyzeTargets    []string
	analyzeTargetFile string
	analyzeTraceOut   string
	analyzeUI         string
)

func init() {
	analyzeCmd.Flags().StringVar(&analyzeConfigPath, "config", "", "path to buildprof.toml (default: nearest above cwd)")
	analyzeCmd.Flags().IntVar(&analyzeJobs, "jobs", 0, "trace files parsed concurrently (0 = one per CPU)")
	analyzeCmd.Flags().IntVar(&analyzeTopN, "top-n", 0, "ranked entries per tool (0 = default)")
	analyzeCmd.Flags().StringVar(&analyzeHistoryDir, "history", "", "history directory ('' = from config, 'none' disables)")
	analyzeCmd.Flags().StringVar(&analyzeRunID, "run-id", "", "identifier for this run (default: timestamp)")
	analyzeCmd.Flags().StringVar(&analyzeTag, "tag", "", "tag stored on this run's record")
	analyzeCmd.Flags().StringVar(&analyzeCompareTo, "compare-to", "", "baseline run id (default: latest prior run)")
	analyzeCmd.Flags().StringVar(&analyzeCompareTag, "compare-tag", "", "baseline: latest prior run with this tag")
	analyzeCmd.Flags().StringSliceVar(&analyzeEnable, "enable", nil, "tool ids to enable beyond the defaults")
	analyzeCmd.Flags().StringSliceVar(&analyzeDisable, "disable", nil, "tool ids to disable")
	analyzeCmd.Flags().StringSliceVar(&analyzeTargets, "target", nil, "only analyze traces for these targets")
	analyzeCmd.Flags().StringVar(&analyzeTargetFile, "targets-file", "", "TOML file mapping sources to targets")
	analyzeCmd.Flags().StringVar(&analyzeTraceOut, "trace-out", "", "write the merged project trace here (needs project-trace enabled)")
	analyzeCmd.Flags().StringVar(&analyzeUI, "ui", "auto", "interactive progress (auto|on|off)")
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <build-dir-or-trace.json>...",
	Short: "Analyze -ftime-trace output and diff it against history",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		quiet, _ := cmd.Flags().GetBool("quiet")
		timings, _ := cmd.Flags().GetBool("timings")
		mode, err := readUIMode(analyzeUI)
		if err != nil {
			return err
		}

		cfg, err := resolveAnalyzeConfig()
		if err != nil {
			return err
		}

		paths, err := gatherTraceFiles(args, analyzeTargets)
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			return fmt.Errorf("no trace files found under %v", args)
		}

		membership, err := loadMembership(cfg, paths)
		if err != nil {
			return err
		}

		items := make([]ingest.Item, 0, len(paths))
		for _, path := range paths {
			items = append(items, ingest.Item{
				SourcePath: path,
				Load:       func() ([]byte, error) { return os.ReadFile(path) },
			})
		}

		shortener := pathshort.New(cfg.Shorten)
		req := driver.Request{
			Items:      items,
			Membership: membership,
			Config:     cfg,
			RunID:      analyzeRunID,
			Progress:   nil,
			TraceOut:   analyzeTraceOut,
			Shortener:  shortener,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		bag := diag.NewBag(1024)
		var result driver.Result
		if !quiet && shouldUseTUI(mode) {
			result, err = runAnalyzeWithUI(ctx, paths, req, bag)
		} else {
			result, err = driver.Run(ctx, req, bag)
		}
		if err != nil {
			printDiagnostics(cmd.ErrOrStderr(), bag)
			return err
		}

		out := cmd.OutOrStdout()
		w := report.NewWriter(out, shortener)
		if !quiet {
			w.WriteSummaries(result.Summaries)
		}
		if result.BaselineRunID != "" {
			fmt.Fprintf(out, "compared to run %s\n\n", result.BaselineRunID)
			w.WriteComparisons(result.Comparisons)
		} else if result.Saved && !quiet {
			fmt.Fprintln(out, "no prior run to compare against")
		}
		printDiagnostics(cmd.ErrOrStderr(), bag)
		if timings {
			fmt.Fprint(out, timingSummary(result))
		}
		if bag.HasErrors() {
			return fmt.Errorf("analysis finished with errors")
		}
		return nil
	},
}

// resolveAnalyzeConfig layers the flags over the manifest.
func resolveAnalyzeConfig() (config.Config, error) {
	var cfg config.Config
	var err error
	if analyzeConfigPath != "" {
		cfg, err = config.Load(analyzeConfigPath)
	} else {
		cfg, _, err = config.Resolve(".")
	}
	if err != nil {
		return config.Config{}, err
	}
	if analyzeJobs > 0 {
		cfg.Jobs = analyzeJobs
	}
	if analyzeTopN > 0 {
		cfg.TopN = analyzeTopN
	}
	switch analyzeHistoryDir {
	case "":
	case "none":
		cfg.History.Dir = ""
	default:
		cfg.History.Dir = analyzeHistoryDir
	}
	if analyzeTag != "" {
		cfg.History.Tag = analyzeTag
	}
	if analyzeCompareTo != "" {
		cfg.History.CompareTo = analyzeCompareTo
	}
	if analyzeCompareTag != "" {
		cfg.History.CompareTag = analyzeCompareTag
	}
	cfg.Tools.Enable = append(cfg.Tools.Enable, analyzeEnable...)
	cfg.Tools.Disable = append(cfg.Tools.Disable, analyzeDisable...)
	if analyzeTargetFile != "" {
		cfg.TargetsFile = analyzeTargetFile
	}
	return cfg, nil
}

func loadMembership(cfg config.Config, paths []string) (*project.Membership, error) {
	if cfg.TargetsFile != "" {
		return project.LoadMembership(cfg.TargetsFile)
	}
	return deriveMembership(paths), nil
}

func runAnalyzeWithUI(ctx context.Context, paths []string, req driver.Request, bag *diag.Bag) (driver.Result, error) {
	return runDriverWithUI(ctx, "analyzing traces", paths, req, bag)
}
