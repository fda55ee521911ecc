package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/fenilsonani/duster/internal/history"
	"github.com/fenilsonani/duster/pkg/utils"
)

var (
	historyLimit int
	historyRun   int64
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past cleanups and what they removed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}

		db, err := history.Open(a.info.AppDataDir)
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := cmd.Context()

		if historyRun > 0 {
			items, err := db.Items(ctx, historyRun)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Fprintf(a.out, "No items recorded for run %d.\n", historyRun)
				return nil
			}

			w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "Size\tCategory\tPath")
			for _, item := range items {
				fmt.Fprintf(w, "%s\t%s\t%s\n", utils.FormatBytes(item.Size), item.Category.DisplayName(), item.Path)
			}
			return w.Flush()
		}

		runs, err := db.Recent(ctx, historyLimit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Fprintln(a.out, "No cleanups recorded yet.")
			return nil
		}

		w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tWhen\tDeleted\tFreed\tErrors")
		for _, r := range runs {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\n",
				r.ID,
				humanize.RelTime(r.StartedAt, time.Now(), "ago", "from now"),
				utils.FormatCount(r.DeletedCount),
				utils.FormatBytes(r.FreedBytes),
				r.ErrorCount)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		count, deleted, freed, err := db.Totals(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "\n%s runs, %s items, %s freed in total\n",
			utils.FormatCount(count), utils.FormatCount(deleted), utils.FormatBytes(freed))
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "number of runs to list")
	historyCmd.Flags().Int64Var(&historyRun, "run", 0, "list the items removed by this run")
}
