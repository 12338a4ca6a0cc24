package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent image scans",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "Number of scans to show (0 = all)")
	imagesCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.GetScanHistory(historyLimit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No scans recorded.")
		return nil
	}

	for _, run := range runs {
		fmt.Fprintf(out, "%s  %-14s  %d images, %d groups, %d duplicates\n",
			run.RunID, humanize.Time(run.ScannedAt), run.TotalImages, run.TotalGroups, run.TotalDuplicates)
		fmt.Fprintf(out, "    %s\n", run.Folder)
	}
	return nil
}
