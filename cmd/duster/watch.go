package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fenilsonani/duster/internal/config"
	"github.com/fenilsonani/duster/internal/daemon"
	"github.com/fenilsonani/duster/internal/reporter"
	"github.com/fenilsonani/duster/internal/scanner"
)

var (
	watchOpts     scanFlags
	watchSchedule string
	watchOnce     bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rescan on a schedule to keep the scan cache warm",
	Long: `Runs in the foreground and scans on a cron schedule (default from the
config, "@every 30m"). Results go to the scan cache so a later clean is
instant. Nothing is ever deleted by the watcher.

Without category flags the watcher scans the categories listed under
watch.categories in the config file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}

		opts, err := watchOptions(cmd, a.cfg)
		if err != nil {
			return err
		}

		cfg, err := a.cfg.ApplyOptions(opts)
		if err != nil {
			return err
		}

		store, err := a.cacheStore()
		if err != nil {
			return err
		}

		schedule := watchSchedule
		if schedule == "" {
			schedule = cfg.Watch.Schedule
		}

		d, err := daemon.New(scanner.NewEnv(cfg, a.info), opts, store,
			daemon.WithLogger(a.logger),
			daemon.WithSchedule(schedule),
		)
		if err != nil {
			return err
		}

		if watchOnce {
			result, err := d.ScanOnce(cmd.Context())
			if err != nil {
				return fmt.Errorf("scan failed: %w", err)
			}
			return reporter.New(a.out, reporter.FormatSummary, reporter.WithHomeDir(a.info.HomeDir)).Report(result)
		}

		fmt.Fprintf(a.errOut, "Watching (%s), press Ctrl+C to stop\n", d.Schedule())
		if err := d.Run(cmd.Context()); err != nil {
			if errors.Is(err, daemon.ErrAlreadyRunning) {
				return fmt.Errorf("%w (lock held by another process)", err)
			}
			return err
		}
		return nil
	},
}

// watchOptions takes categories from flags, falling back to the config's
// watch.categories when none was given
func watchOptions(cmd *cobra.Command, cfg *config.Config) (config.ScanOptions, error) {
	opts := watchOpts.options(cmd)
	if opts.All || !opts.NoCategoriesSelected() {
		return opts, nil
	}
	for _, key := range cfg.Watch.Categories {
		if err := opts.SetCategory(key); err != nil {
			return opts, fmt.Errorf("invalid watch category: %w", err)
		}
	}
	return opts, nil
}

func init() {
	watchOpts.register(watchCmd)
	watchCmd.Flags().StringVar(&watchSchedule, "schedule", "", `cron expression or descriptor (e.g. "@every 1h", "0 */2 * * *")`)
	watchCmd.Flags().BoolVar(&watchOnce, "once", false, "scan once, print a summary and exit")
}
