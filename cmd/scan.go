package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"jbmap/internal/match"
	"jbmap/internal/scan"
)

var (
	scanExact bool
	scanQuiet bool
)

var scanCmd = &cobra.Command{
	Use:   "scan <folder>...",
	Short: "Scan folders for duplicate images",
	Long: `Scan folders recursively for images and detect duplicates.

The scan will:
1. Find all supported images (jpg, png, gif, webp, bmp, tiff)
2. Compute perceptual hashes for each image
3. Group similar images based on hash distance
4. Store results in the database for later use

With --exact only byte-identical files are grouped.

Example:
  jbmap images scan ./photos
  jbmap images scan ./a ./b --threshold 5
  jbmap images scan ./photos --exact`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().BoolVar(&scanExact, "exact", false, "Group only byte-identical files (SHA-256)")
	scanCmd.Flags().BoolVarP(&scanQuiet, "quiet", "q", false, "Do not print progress")
	imagesCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	folders := make([]string, 0, len(args))
	for _, folder := range args {
		absFolder, err := filepath.Abs(folder)
		if err != nil {
			return fmt.Errorf("failed to resolve path: %w", err)
		}
		info, err := os.Stat(absFolder)
		if err != nil {
			return fmt.Errorf("folder not found: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("not a directory: %s", absFolder)
		}
		folders = append(folders, absFolder)
	}

	var matcher match.Matcher
	if scanExact {
		matcher = match.NewExactMatcher()
		fmt.Fprintln(out, "Mode: exact (SHA-256)")
	} else {
		matcher = match.NewPerceptualMatcher(cfg.Threshold)
		fmt.Fprintf(out, "Threshold: %d (Hamming distance)\n", cfg.Threshold)
	}
	fmt.Fprintf(out, "Workers: %d\n\n", cfg.Workers)

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	opts := []scan.Option{
		scan.WithWorkers(cfg.Workers),
		scan.WithTimeout(cfg.Timeout),
		scan.WithFileHash(scanExact),
		scan.WithLogger(logger),
	}
	progress := &progressLine{w: cmd.ErrOrStderr()}
	if !scanQuiet {
		opts = append(opts, scan.WithProgress(progress.update))
	}
	s := scan.NewScanner(opts...)

	for _, folder := range folders {
		fmt.Fprintf(out, "Scanning: %s\n", folder)
	}
	images, err := s.ScanFolders(cmd.Context(), folders)
	progress.clear()
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	fmt.Fprintf(out, "Scanned: %s images\n", humanize.Comma(int64(len(images))))
	if len(images) == 0 {
		fmt.Fprintln(out, "No images found.")
		return nil
	}

	if err := store.SaveImages(images); err != nil {
		return fmt.Errorf("failed to save images: %w", err)
	}

	fmt.Fprintln(out, "Finding duplicates...")
	groups, err := matcher.FindGroups(images)
	if err != nil {
		return fmt.Errorf("failed to group images: %w", err)
	}

	if err := store.UpdateGroups(groups); err != nil {
		return fmt.Errorf("failed to update groups: %w", err)
	}

	totalDuplicates := 0
	var reclaimable int64
	for _, group := range groups {
		totalDuplicates += len(group.Remove)
		reclaimable += group.Reclaimable()
	}
	runID, err := store.RecordScan(strings.Join(folders, string(os.PathListSeparator)), len(images), len(groups), totalDuplicates)
	if err != nil {
		logger.Warn("failed to record scan", "error", err)
	}
	logger.Info("scan complete", "run_id", runID, "images", len(images), "groups", len(groups))

	fmt.Fprintln(out)
	fmt.Fprintln(out, "=== Scan Complete ===")
	fmt.Fprintf(out, "Total images:     %d\n", len(images))
	fmt.Fprintf(out, "Duplicate groups: %d\n", len(groups))
	fmt.Fprintf(out, "Duplicates found: %d\n", totalDuplicates)
	fmt.Fprintf(out, "Reclaimable:      %s\n", humanize.IBytes(uint64(reclaimable)))

	if len(groups) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Run 'jbmap images list' to see duplicate groups")
		fmt.Fprintln(out, "Run 'jbmap images clean --dry-run' to preview deletions")
	}

	return nil
}

// progressLine redraws a single status line. Calls are serialised by the
// scanner.
type progressLine struct {
	w    io.Writer
	last string
}

func (p *progressLine) update(scanned, total int, current string) {
	p.clear()
	p.last = fmt.Sprintf("Progress: %d/%d  %s", scanned, total, shortenPath(current, 50))
	fmt.Fprint(p.w, p.last)
}

func (p *progressLine) clear() {
	if p.last != "" {
		fmt.Fprint(p.w, "\r"+strings.Repeat(" ", len(p.last))+"\r")
		p.last = ""
	}
}
