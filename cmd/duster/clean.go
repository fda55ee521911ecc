package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/fenilsonani/duster/internal/cleaner"
	"github.com/fenilsonani/duster/internal/history"
	"github.com/fenilsonani/duster/internal/platform"
	"github.com/fenilsonani/duster/internal/progress"
	"github.com/fenilsonani/duster/internal/reporter"
	"github.com/fenilsonani/duster/internal/scancache"
	"github.com/fenilsonani/duster/internal/scanner"
	"github.com/fenilsonani/duster/internal/security"
	"github.com/fenilsonani/duster/internal/ui"
	"github.com/fenilsonani/duster/internal/ui/models"
)

var (
	cleanOpts     scanFlags
	dryRun        bool
	force         bool
	interactive   bool
	maxAgeSeconds int
	manifestPath  string
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Delete cleanable files after confirmation",
	Long: `Scans (or reuses a scan cached within --max-age seconds with the same flags),
shows what would be deleted and asks for confirmation before removing anything.
Deletion is limited to your home directory and the system temp directories.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}

		format, err := cleanOpts.outputFormat()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		run := scanRun{
			opts:     cleanOpts.options(cmd),
			useCache: !cleanOpts.noCache && maxAgeSeconds > 0,
			maxAge:   time.Duration(maxAgeSeconds) * time.Second,
			live:     true,
		}

		var (
			outcome *scanOutcome
			files   []scanner.CleanableFile
		)

		if interactive {
			outcome, files, err = a.pickInteractively(ctx, run)
			if err != nil {
				return err
			}
			if outcome == nil {
				fmt.Fprintln(a.out, "Cleanup cancelled.")
				return nil
			}
		} else {
			outcome, err = a.scan(ctx, run)
			if err != nil {
				return fmt.Errorf("scan failed: %w", err)
			}
			files = outcome.result.Files
		}

		if len(files) == 0 {
			fmt.Fprintln(a.out, "No cleanable files found.")
			return nil
		}

		if !interactive {
			preview := &scanner.ScanResult{Files: files, Errors: outcome.result.Errors}
			if err := reporter.New(a.out, reporter.FormatSummary, reporter.WithHomeDir(a.info.HomeDir)).Report(preview); err != nil {
				return err
			}

			if !force && !dryRun {
				fmt.Fprintln(a.out, "\nThis action is permanent and cannot be undone.")
				if !confirm(cmd.InOrStdin(), a.out, "Proceed with deletion?") {
					fmt.Fprintln(a.out, "Cleanup cancelled.")
					return nil
				}
			}
		}

		report, err := a.clean(ctx, outcome, files)
		if err != nil {
			return err
		}

		if err := reporter.New(a.out, format).ReportCleanup(report.Result); err != nil {
			return err
		}
		if summary := cleaner.FormatErrorSummary(report.Failures); summary != "" {
			fmt.Fprint(a.errOut, summary)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return nil
	},
}

// pickInteractively runs the scan inside the picker and returns the
// confirmed items, or a nil outcome when the user backed out
func (a *app) pickInteractively(ctx context.Context, run scanRun) (*scanOutcome, []scanner.CleanableFile, error) {
	run.live = false
	run.progress = progress.NewProgressReporter()

	var (
		outcome *scanOutcome
		scanErr error
	)
	scan := func(ctx context.Context) *scanner.ScanResult {
		outcome, scanErr = a.scan(ctx, run)
		if scanErr != nil {
			return &scanner.ScanResult{}
		}
		return outcome.result
	}

	sel, err := ui.RunInteractive(ctx, scan,
		models.WithProgress(run.progress),
		models.WithHomeDir(a.info.HomeDir),
		models.WithDryRun(dryRun),
	)
	if err != nil {
		return nil, nil, err
	}
	if scanErr != nil {
		return nil, nil, fmt.Errorf("scan failed: %w", scanErr)
	}
	if !sel.Confirmed || outcome == nil {
		return nil, nil, nil
	}
	return outcome, sel.Files, nil
}

// clean deletes files and, unless this is a dry run, drops the stale scan
// cache and records the run in the history database
func (a *app) clean(ctx context.Context, outcome *scanOutcome, files []scanner.CleanableFile) (*cleaner.Report, error) {
	containment := newContainment(a.info)

	pr := progress.NewProgressReporter()
	stop := ui.NewLiveProgress(os.Stderr).Follow(pr)

	startedAt := time.Now()
	report := cleaner.New(containment,
		cleaner.WithLogger(a.logger),
		cleaner.WithProgress(pr),
		cleaner.WithDryRun(dryRun),
	).Run(ctx, files)
	stop()

	if manifestPath != "" {
		if err := report.Manifest.Save(manifestPath); err != nil {
			a.logger.Warn("failed to write manifest", "path", manifestPath, "error", err)
		} else {
			fmt.Fprintf(a.errOut, "Manifest written to %s\n", manifestPath)
		}
	}

	if dryRun {
		return report, nil
	}

	if err := outcome.store.Clear(); err != nil {
		a.logger.Warn("failed to clear scan cache", "error", err)
	}

	// Recording must survive an interrupted cleanup
	recordCtx := context.WithoutCancel(ctx)
	if err := a.recordHistory(recordCtx, history.RunFromResult(startedAt, report.Result, files)); err != nil {
		a.logger.Warn("failed to record cleanup history", "error", err)
	}
	return report, nil
}

// newContainment allows home and the fixed system temp roots only. Scan
// roots taken from the environment never widen what may be deleted.
func newContainment(info *platform.Info) *security.Containment {
	return security.NewContainment(info.HomeDir)
}

func (a *app) recordHistory(ctx context.Context, run history.Run) error {
	db, err := history.Open(a.info.AppDataDir)
	if err != nil {
		return err
	}
	defer db.Close()

	id, err := db.Record(ctx, run)
	if err != nil {
		return err
	}
	a.logger.Debug("cleanup recorded", "run", id, "db", db.Path())
	return nil
}

// confirm asks a yes/no question; anything but y or yes is a no
func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s (y/N): ", question)

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(out)
		return false
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func init() {
	cleanOpts.register(cleanCmd)
	cleanOpts.registerOutput(cleanCmd)
	cleanCmd.Flags().BoolVar(&cleanOpts.noCache, "no-cache", false, "always scan again")
	cleanCmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "show what would be deleted without deleting")
	cleanCmd.Flags().BoolVarP(&force, "force", "y", false, "skip the confirmation prompt")
	cleanCmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "pick categories in a terminal UI")
	cleanCmd.Flags().IntVar(&maxAgeSeconds, "max-age", int(scancache.DefaultMaxAge/time.Second), "reuse a cached scan at most this many seconds old")
	cleanCmd.Flags().StringVar(&manifestPath, "manifest", "", "write a manifest of deleted items to this file")
	cleanCmd.MarkFlagsMutuallyExclusive("interactive", "force")
}
