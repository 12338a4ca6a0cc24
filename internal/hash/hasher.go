// Package hash fingerprints image files for the duplicate matcher.
package hash

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/corona10/goimagehash"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"jbmap/internal/models"
)

// Hasher computes perceptual hashes and quality metadata for images.
type Hasher struct {
	fileHash bool
}

// NewHasher creates a Hasher. When fileHash is set, HashImage also records
// the SHA-256 of the file contents for exact matching.
func NewHasher(fileHash bool) *Hasher {
	return &Hasher{fileHash: fileHash}
}

// HashImage decodes the image at path and fingerprints it.
func (h *Hasher) HashImage(path string) (*models.ImageInfo, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	hasExif := checkExif(file)
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind file: %w", err)
	}

	img, format, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	phash, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return nil, fmt.Errorf("failed to compute hash: %w", err)
	}

	bounds := img.Bounds()
	info := &models.ImageInfo{
		Path:     path,
		Hash:     phash.GetHash(),
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		Format:   strings.ToLower(format),
		FileSize: stat.Size(),
		ModTime:  stat.ModTime(),
		HasExif:  hasExif,
	}
	info.Score = CalculateScore(info)

	if h.fileHash {
		sum, err := ComputeFileHash(path)
		if err != nil {
			return nil, err
		}
		info.FileHash = sum
	}

	return info, nil
}

// HashImageContext is HashImage bounded by ctx and, when positive, timeout.
// Decoding continues in the background after a timeout; its result is
// discarded.
func (h *Hasher) HashImageContext(ctx context.Context, path string, timeout time.Duration) (*models.ImageInfo, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	type result struct {
		info *models.ImageInfo
		err  error
	}
	done := make(chan result, 1)
	go func() {
		info, err := h.HashImage(path)
		done <- result{info, err}
	}()

	select {
	case r := <-done:
		return r.info, r.err
	case <-ctx.Done():
		return nil, fmt.Errorf("hashing %s: %w", path, ctx.Err())
	}
}

func checkExif(r io.Reader) bool {
	_, err := exif.Decode(r)
	return err == nil
}

// CalculateScore ranks an image by resolution, weighted by format and
// metadata presence.
func CalculateScore(info *models.ImageInfo) float64 {
	resolution := float64(info.Width * info.Height)
	return resolution *
		models.FormatQualityMultiplier(info.Format) *
		models.MetadataMultiplier(info.HasExif)
}

// ComputeFileHash returns the hex SHA-256 of the file at path.
func ComputeFileHash(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	h := sha256.New()
	if _, err := io.Copy(h, file); err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// IsSupportedImage reports whether path has an image extension the hasher
// can decode.
func IsSupportedImage(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp", ".tiff", ".tif":
		return true
	default:
		return false
	}
}
