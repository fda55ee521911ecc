package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fenilsonani/duster/internal/diskspace"
	"github.com/fenilsonani/duster/pkg/utils"
)

var spaceJSON bool

// spaceReport is the JSON shape of the space command
type spaceReport struct {
	diskspace.Space
	TotalBytes     uint64 `json:"total_bytes"`
	FreeBytes      uint64 `json:"free_bytes"`
	TotalFormatted string `json:"total_formatted"`
	FreeFormatted  string `json:"free_formatted"`
	MountPoint     string `json:"mount_point"`
}

var spaceCmd = &cobra.Command{
	Use:   "space [path]",
	Short: "Show total and free space of the disk holding a path",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}

		path := a.info.HomeDir
		if len(args) == 1 {
			path = args[0]
		}

		space, err := diskspace.Usage(cmd.Context(), path)
		if err != nil {
			return err
		}

		if spaceJSON {
			enc := json.NewEncoder(a.out)
			enc.SetIndent("", "  ")
			return enc.Encode(spaceReport{
				Space:          space,
				TotalBytes:     space.Total,
				FreeBytes:      space.Free,
				TotalFormatted: utils.FormatBytes(int64(space.Total)),
				FreeFormatted:  utils.FormatBytes(int64(space.Free)),
				MountPoint:     space.Mountpoint,
			})
		}

		fmt.Fprintf(a.out, "Mount:  %s (%s)\n", space.Mountpoint, space.Fstype)
		fmt.Fprintf(a.out, "Total:  %s\n", utils.FormatBytes(int64(space.Total)))
		fmt.Fprintf(a.out, "Used:   %s (%.1f%%)\n", utils.FormatBytes(int64(space.Used)), space.UsedPercent)
		fmt.Fprintf(a.out, "Free:   %s\n", utils.FormatBytes(int64(space.Free)))
		return nil
	},
}

func init() {
	spaceCmd.Flags().BoolVar(&spaceJSON, "json", false, "output JSON")
}
