package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"jbmap/internal/fileutil"
	"jbmap/internal/models"
)

var (
	dryRun    bool
	moveTo    string
	permanent bool
	noConfirm bool
	groupIDs  []int
)

var errCleanFailed = errors.New("some files could not be removed")

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove or move duplicate images",
	Long: `Remove duplicate images, keeping the highest quality version of each.

The clean command will:
1. Keep the image with the highest quality score in each group
2. Move lower quality duplicates to trash (default) or delete permanently

Example:
  jbmap images clean                     # Move to trash (default)
  jbmap images clean --permanent         # Delete permanently
  jbmap images clean --move-to=./backup  # Move to specific folder
  jbmap images clean --dry-run           # Preview only
  jbmap images clean --group=1 --group=3 # Clean only groups 1 and 3`,
	Args: cobra.NoArgs,
	RunE: runClean,
}

func init() {
	cleanCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview without removing")
	cleanCmd.Flags().BoolVar(&permanent, "permanent", false, "Delete permanently instead of moving to trash")
	cleanCmd.Flags().StringVar(&moveTo, "move-to", "", "Move duplicates to this folder")
	cleanCmd.Flags().BoolVarP(&noConfirm, "yes", "y", false, "Skip confirmation prompt")
	cleanCmd.Flags().IntSliceVarP(&groupIDs, "group", "g", nil, "Group IDs to clean (can be specified multiple times)")
	cleanCmd.MarkFlagsMutuallyExclusive("permanent", "move-to")
	imagesCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	groups, err := store.GetDuplicateGroups()
	if err != nil {
		return fmt.Errorf("failed to get groups: %w", err)
	}

	if len(groups) == 0 {
		fmt.Fprintln(out, "No duplicate groups found.")
		return nil
	}

	if len(groupIDs) > 0 {
		groups = slices.DeleteFunc(groups, func(g *models.DuplicateGroup) bool {
			return !slices.Contains(groupIDs, g.ID)
		})
		if len(groups) == 0 {
			fmt.Fprintf(out, "No matching groups found for IDs: %v\n", groupIDs)
			fmt.Fprintln(out, "Run 'jbmap images list' to see available group IDs.")
			return nil
		}
		fmt.Fprintf(out, "Processing %d selected group(s): %v\n\n", len(groups), groupIDs)
	}

	var toRemove []*models.ImageInfo
	var totalSize int64
	for _, group := range groups {
		for _, img := range group.Remove {
			if _, err := os.Stat(img.Path); err == nil {
				toRemove = append(toRemove, img)
				totalSize += img.FileSize
			} else {
				logger.Debug("skipping missing file", "path", img.Path)
			}
		}
	}

	if len(toRemove) == 0 {
		fmt.Fprintln(out, "No files to remove (files may have been already deleted).")
		return nil
	}

	var action string
	switch {
	case moveTo != "":
		action = fmt.Sprintf("move to %s", moveTo)
	case permanent:
		action = "permanently delete"
	default:
		action = "move to trash"
	}

	fmt.Fprintf(out, "Will %s %d files (%s)\n\n", action, len(toRemove), humanize.IBytes(uint64(totalSize)))

	if dryRun {
		fmt.Fprintln(out, "Files to be removed:")
		for _, img := range toRemove {
			fmt.Fprintf(out, "  %s\n", img.Path)
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, "(Dry run - no files were modified)")
		fmt.Fprintln(out, "Run without --dry-run to actually remove files.")
		return nil
	}

	if !noConfirm {
		fmt.Fprintf(out, "Are you sure you want to %s %d files? [y/N]: ", action, len(toRemove))
		response, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		response = strings.TrimSpace(strings.ToLower(response))
		if response != "y" && response != "yes" {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	var (
		processed, failed int
		reclaimed         int64
	)
	for _, img := range toRemove {
		var err error
		switch {
		case moveTo != "":
			_, err = fileutil.MoveFile(img.Path, moveTo)
		case permanent:
			err = os.Remove(img.Path)
		default:
			_, err = fileutil.MoveToTrash(img.Path)
		}

		if err != nil {
			logger.Error("failed to remove duplicate", "path", img.Path, "error", err)
			fmt.Fprintf(cmd.ErrOrStderr(), "Failed to process %s: %v\n", img.Path, err)
			failed++
			continue
		}
		processed++
		reclaimed += img.FileSize
		if err := store.DeleteImage(img.Path); err != nil {
			logger.Warn("failed to forget removed image", "path", img.Path, "error", err)
		}
	}

	fmt.Fprintln(out)
	switch {
	case moveTo != "":
		fmt.Fprintf(out, "Moved %d files to %s\n", processed, moveTo)
	case permanent:
		fmt.Fprintf(out, "Permanently deleted %d files\n", processed)
	default:
		fmt.Fprintf(out, "Moved %d files to trash\n", processed)
	}
	if failed > 0 {
		fmt.Fprintf(out, "Failed: %d files\n", failed)
	}
	fmt.Fprintf(out, "Space reclaimed: %s\n", humanize.IBytes(uint64(reclaimed)))

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", errCleanFailed, failed, len(toRemove))
	}
	return nil
}
