// Package models defines the records shared by the scan, match and storage
// layers.
package models

import "time"

// ImageInfo holds the fingerprint and quality metadata of one image file.
type ImageInfo struct {
	ID       int64     `json:"id"`
	Path     string    `json:"path"`
	Hash     uint64    `json:"hash"`                // 64-bit perceptual hash
	FileHash string    `json:"file_hash,omitempty"` // SHA-256 of the file bytes
	Width    int       `json:"width"`
	Height   int       `json:"height"`
	Format   string    `json:"format"`
	FileSize int64     `json:"file_size"`
	ModTime  time.Time `json:"mod_time"`
	HasExif  bool      `json:"has_exif"`
	Score    float64   `json:"score"`
	GroupID  int       `json:"group_id,omitempty"`
}

// DuplicateGroup is a set of images considered copies of each other.
type DuplicateGroup struct {
	ID     int          `json:"id"`
	Images []*ImageInfo `json:"images"`
	Keep   *ImageInfo   `json:"keep"`   // highest score
	Remove []*ImageInfo `json:"remove"` // everything else
}

// Reclaimable returns the bytes freed by removing the group's duplicates.
func (g *DuplicateGroup) Reclaimable() int64 {
	var total int64
	for _, img := range g.Remove {
		total += img.FileSize
	}
	return total
}

// ScanRun summarises one recorded scan.
type ScanRun struct {
	RunID           string    `json:"run_id"`
	Folder          string    `json:"folder"`
	ScannedAt       time.Time `json:"scanned_at"`
	TotalImages     int       `json:"total_images"`
	TotalGroups     int       `json:"total_groups"`
	TotalDuplicates int       `json:"total_duplicates"`
}

// FormatQualityMultiplier weights an image format when ranking duplicates.
func FormatQualityMultiplier(format string) float64 {
	switch format {
	case "png", "tiff", "bmp":
		return 1.2
	case "webp":
		return 1.1
	case "jpeg", "jpg":
		return 1.0
	case "gif":
		return 0.9
	default:
		return 1.0
	}
}

// MetadataMultiplier prefers images that still carry EXIF data.
func MetadataMultiplier(hasExif bool) float64 {
	if hasExif {
		return 1.1
	}
	return 1.0
}
