package cmd

import (
	"github.com/spf13/cobra"
)

var imagesCmd = &cobra.Command{
	Use:   "images",
	Short: "Find and manage duplicate images",
	Long: `Find duplicate or similar images.

Perceptual hashes (pHash) are compared by Hamming distance through a BK-tree,
so images that were resized or recompressed still group together. The best
quality image in each group is kept, based on resolution and format.

Example usage:
  jbmap images scan ./photos          # Scan a folder for duplicates
  jbmap images list                   # List all duplicate groups
  jbmap images clean --dry-run        # Preview what would be removed
  jbmap images clean                  # Move lower quality duplicates to trash
  jbmap images history                # Show past scans`,
}

func init() {
	rootCmd.AddCommand(imagesCmd)
}
