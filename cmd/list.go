package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"jbmap/internal/models"
)

var (
	listJSON    bool
	listVerbose bool
	listSummary bool
	listLimit   int
	listOffset  int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all duplicate groups",
	Long: `Display all detected duplicate groups with their images.

Each group shows:
- Group ID
- Images in the group with their quality scores
- Which image will be kept (highest score) marked with ✓
- Which images will be removed marked with ✗

Example:
  jbmap images list              # Show first 10 groups (default)
  jbmap images list -n 0         # Show all groups
  jbmap images list -s           # Summary view (compact)
  jbmap images list --offset 10  # Groups 11-20`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	listCmd.Flags().BoolVarP(&listVerbose, "verbose", "v", false, "Show detailed image info")
	listCmd.Flags().BoolVarP(&listSummary, "summary", "s", false, "Show summary only (group counts and sizes)")
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 10, "Limit number of groups to display (0 = all)")
	listCmd.Flags().IntVar(&listOffset, "offset", 0, "Skip first N groups (for pagination)")
	imagesCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	groups, err := store.GetDuplicateGroups()
	if err != nil {
		return fmt.Errorf("failed to get groups: %w", err)
	}

	out := cmd.OutOrStdout()
	totalGroups := len(groups)
	startIdx := min(max(listOffset, 0), totalGroups)
	page := groups[startIdx:]
	if listLimit > 0 && listLimit < len(page) {
		page = page[:listLimit]
	}

	if listJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if page == nil {
			page = []*models.DuplicateGroup{}
		}
		return enc.Encode(page)
	}

	if totalGroups == 0 {
		fmt.Fprintln(out, "No duplicate groups found.")
		fmt.Fprintln(out, "Run 'jbmap images scan <folder>' to scan for duplicates.")
		return nil
	}

	totalDuplicates := 0
	var totalSavings int64
	for _, group := range groups {
		totalDuplicates += len(group.Remove)
		totalSavings += group.Reclaimable()
	}

	fmt.Fprintf(out, "Found %d duplicate groups (%d duplicates, %s reclaimable)\n\n",
		totalGroups, totalDuplicates, humanize.IBytes(uint64(totalSavings)))

	switch {
	case len(page) == 0:
		fmt.Fprintf(out, "No groups in range (offset %d exceeds total %d)\n", listOffset, totalGroups)
	case listSummary:
		printSummaryTable(out, page)
	default:
		for _, group := range page {
			printGroup(out, group, listVerbose)
		}
	}

	endIdx := startIdx + len(page)
	if len(page) > 0 {
		fmt.Fprintf(out, "Showing groups %d-%d of %d\n", startIdx+1, endIdx, totalGroups)
		if endIdx < totalGroups {
			limitArg := ""
			if listLimit > 0 {
				limitArg = fmt.Sprintf(" -n %d", listLimit)
			}
			fmt.Fprintf(out, "Next page: jbmap images list%s --offset %d\n", limitArg, endIdx)
		}
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Run 'jbmap images clean --dry-run' to preview deletions")
	fmt.Fprintln(out, "Run 'jbmap images clean' to remove duplicates")

	return nil
}

func printSummaryTable(out io.Writer, groups []*models.DuplicateGroup) {
	fmt.Fprintf(out, "%-8s  %-8s  %-12s  %s\n", "Group", "Images", "Reclaimable", "Keep (best quality)")
	fmt.Fprintln(out, strings.Repeat("-", 70))

	for _, group := range groups {
		keepName := filepath.Base(group.Keep.Path)
		if len(keepName) > 35 {
			keepName = keepName[:32] + "..."
		}

		fmt.Fprintf(out, "#%-7d  %-8d  %-12s  %s\n",
			group.ID, len(group.Images), humanize.IBytes(uint64(group.Reclaimable())), keepName)
	}
	fmt.Fprintln(out)
}

func printGroup(out io.Writer, group *models.DuplicateGroup, verbose bool) {
	fmt.Fprintf(out, "Group #%d (%d images)\n", group.ID, len(group.Images))
	fmt.Fprintln(out, strings.Repeat("-", 60))

	for _, img := range group.Images {
		marker := "✗"
		if img.Path == group.Keep.Path {
			marker = "✓"
		}
		size := humanize.IBytes(uint64(img.FileSize))

		if verbose {
			fmt.Fprintf(out, "  %s %s\n", marker, img.Path)
			fmt.Fprintf(out, "      Resolution: %dx%d  Format: %s  Size: %s\n",
				img.Width, img.Height, strings.ToUpper(img.Format), size)
			fmt.Fprintf(out, "      Score: %.0f  pHash: %016x\n", img.Score, img.Hash)
		} else {
			fmt.Fprintf(out, "  %s %-40s  %dx%d  %-4s  %9s  Score: %.0f\n",
				marker, shortenPath(img.Path, 40), img.Width, img.Height,
				strings.ToUpper(img.Format), size, img.Score)
		}
	}
	fmt.Fprintln(out)
}

// shortenPath keeps the file name and as much of its directory as fits in
// maxLen, prefixing "..." when something was cut.
func shortenPath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}

	dir, file := filepath.Split(path)
	if len(file) >= maxLen-3 {
		return "..." + file[len(file)-(maxLen-3):]
	}

	remaining := maxLen - len(file) - 3
	if remaining > 0 && len(dir) > remaining {
		dir = dir[len(dir)-remaining:]
	}
	return "..." + dir + file
}
