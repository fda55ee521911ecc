package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/fenilsonani/duster/internal/config"
	"github.com/fenilsonani/duster/internal/progress"
	"github.com/fenilsonani/duster/internal/reporter"
	"github.com/fenilsonani/duster/internal/scancache"
	"github.com/fenilsonani/duster/internal/scanner"
	"github.com/fenilsonani/duster/internal/ui"
)

// scanFlags are the selection flags shared by scan, analyze, clean and watch
type scanFlags struct {
	opts        config.ScanOptions
	minAge      int
	projectAge  int
	downloadAge int
	jsonOut     bool
	format      string
	noCache     bool
}

func (f *scanFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.BoolVarP(&f.opts.All, "all", "a", false, "scan all categories")
	fs.BoolVar(&f.opts.Cache, "cache", false, "include system and app caches")
	fs.BoolVar(&f.opts.Trash, "trash", false, "include the trash bin")
	fs.BoolVar(&f.opts.Temp, "temp", false, "include temp files")
	fs.BoolVar(&f.opts.Downloads, "downloads", false, "include old downloads")
	fs.BoolVar(&f.opts.Build, "build", false, "include build artifacts (node_modules, target, etc.)")
	fs.BoolVar(&f.opts.Large, "large", false, "include large files")
	fs.BoolVar(&f.opts.Duplicates, "duplicates", false, "include duplicate files")
	fs.BoolVar(&f.opts.Old, "old", false, "include old unused files")

	fs.IntVar(&f.minAge, "min-age", config.DefaultMinAgeDays, "minimum age in days for old files")
	fs.StringVar(&f.opts.MinSize, "min-size", "", `minimum size for large files (e.g. "100MB", "1GB")`)
	fs.IntVar(&f.projectAge, "project-age", config.DefaultProjectRecentDays, "a project is recent if touched within this many days")
	fs.IntVar(&f.downloadAge, "download-age", config.DefaultDownloadAgeDays, "minimum age in days for old downloads")
	fs.StringVar(&f.opts.Path, "path", "", "root to scan (default: home directory)")
	fs.StringArrayVar(&f.opts.Exclude, "exclude", nil, "exclude paths matching pattern (repeatable)")
}

func (f *scanFlags) registerOutput(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.jsonOut, "json", false, "output JSON (same as --format json)")
	cmd.Flags().StringVar(&f.format, "format", "summary", "output format (summary, table, json, yaml)")
}

// options returns the request, taking thresholds only from flags the user set
func (f *scanFlags) options(cmd *cobra.Command) config.ScanOptions {
	opts := f.opts
	opts.Exclude = append([]string(nil), f.opts.Exclude...)

	if cmd.Flags().Changed("min-age") {
		opts.MinAgeDays = &f.minAge
	}
	if cmd.Flags().Changed("project-age") {
		opts.ProjectAgeDays = &f.projectAge
	}
	if cmd.Flags().Changed("download-age") {
		opts.DownloadAgeDays = &f.downloadAge
	}
	return opts
}

func (f *scanFlags) outputFormat() (reporter.OutputFormat, error) {
	if f.jsonOut {
		return reporter.FormatJSON, nil
	}
	return reporter.ParseFormat(f.format)
}

// scanRun is one scan as the CLI performs it
type scanRun struct {
	opts     config.ScanOptions
	useCache bool
	maxAge   time.Duration
	live     bool
	progress *progress.ProgressReporter
}

// scanOutcome is a finished scan plus the state a cleanup needs afterwards
type scanOutcome struct {
	result *scanner.ScanResult
	cfg    *config.Config
	key    string
	store  *scancache.Store
	cached bool
}

func (a *app) cacheStore() (*scancache.Store, error) {
	path, err := scancache.DefaultPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve scan cache path: %w", err)
	}
	return scancache.New(path, scancache.WithLogger(a.logger)), nil
}

// scan loads a fresh cached result for the request or runs the orchestrator
// and caches what it finds. A cancelled scan is neither cached nor returned.
func (a *app) scan(ctx context.Context, run scanRun) (*scanOutcome, error) {
	cfg, err := a.cfg.ApplyOptions(run.opts)
	if err != nil {
		return nil, err
	}
	req, err := scanner.RequestFromOptions(run.opts)
	if err != nil {
		return nil, err
	}

	store, err := a.cacheStore()
	if err != nil {
		return nil, err
	}

	out := &scanOutcome{
		cfg:   cfg,
		key:   scancache.Fingerprint(run.opts, cfg),
		store: store,
	}

	if run.useCache {
		if cached, ok := store.LoadIfRecent(out.key, run.maxAge); ok {
			a.logger.Info("using cached scan", "items", cached.TotalCount(), "cache", store.Path())
			out.result = cached
			out.cached = true
			return out, nil
		}
	}

	pr := run.progress
	if pr == nil {
		pr = progress.NewProgressReporter()
	}

	if run.live {
		stop := ui.NewLiveProgress(os.Stderr).Follow(pr)
		defer stop()
	}

	env := scanner.NewEnv(cfg, a.info)
	out.result = scanner.NewOrchestrator(env,
		scanner.WithLogger(a.logger),
		scanner.WithProgress(pr),
	).Run(ctx, req)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := store.Save(out.result, out.key); err != nil {
		a.logger.Warn("failed to cache scan", "error", err)
	}
	return out, nil
}

var (
	scanOpts    scanFlags
	analyzeOpts scanFlags
	analyzeTop  int
	reportFile  string
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Find cleanable files and report them without deleting anything",
	Long: `Scans the selected categories (all of them when none is given) and prints a
report. The result is cached for a few minutes so a following clean with the
same flags does not walk the filesystem again.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}

		format, err := scanOpts.outputFormat()
		if err != nil {
			return err
		}

		outcome, err := a.scan(cmd.Context(), scanRun{
			opts:     scanOpts.options(cmd),
			useCache: !scanOpts.noCache,
			maxAge:   scancache.DefaultMaxAge,
			live:     true,
		})
		if err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}

		if reportFile != "" {
			if err := reporter.SaveToFile(outcome.result, reportFile, format, reporter.WithHomeDir(a.info.HomeDir)); err != nil {
				return fmt.Errorf("failed to save report: %w", err)
			}
			fmt.Fprintf(a.out, "Report saved to: %s\n", reportFile)
			return nil
		}

		if outcome.result.TotalCount() == 0 && format == reporter.FormatSummary {
			fmt.Fprintln(a.out, "No cleanable files found.")
			return nil
		}

		return reporter.New(a.out, format, reporter.WithHomeDir(a.info.HomeDir)).Report(outcome.result)
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Show a detailed breakdown with the largest items per category",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}

		format, err := analyzeOpts.outputFormat()
		if err != nil {
			return err
		}

		outcome, err := a.scan(cmd.Context(), scanRun{
			opts:     analyzeOpts.options(cmd),
			useCache: !analyzeOpts.noCache,
			maxAge:   scancache.DefaultMaxAge,
			live:     true,
		})
		if err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}

		if outcome.result.TotalCount() == 0 && format == reporter.FormatSummary {
			fmt.Fprintln(a.out, "No cleanable files found.")
			return nil
		}

		return reporter.New(a.out, format, reporter.WithHomeDir(a.info.HomeDir)).Analyze(outcome.result, analyzeTop)
	},
}

func init() {
	scanOpts.register(scanCmd)
	scanOpts.registerOutput(scanCmd)
	scanCmd.Flags().BoolVar(&scanOpts.noCache, "no-cache", false, "ignore a cached scan")
	scanCmd.Flags().StringVar(&reportFile, "file", "", "save the report to a file")

	analyzeOpts.register(analyzeCmd)
	analyzeOpts.registerOutput(analyzeCmd)
	analyzeCmd.Flags().BoolVar(&analyzeOpts.noCache, "no-cache", false, "ignore a cached scan")
	analyzeCmd.Flags().IntVar(&analyzeTop, "top", reporter.DefaultTopN, "largest items to list per category")
}
