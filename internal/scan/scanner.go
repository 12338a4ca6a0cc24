// Package scan walks folders and fingerprints the images it finds.
package scan

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"jbmap/internal/hash"
	"jbmap/internal/logging"
	"jbmap/internal/models"
)

// Scanner scans folders for images and computes hashes
type Scanner struct {
	workers    int
	timeout    time.Duration
	fileHash   bool
	progressFn func(scanned, total int, current string)
	logger     *slog.Logger
}

// Option configures a Scanner
type Option func(*Scanner)

// WithWorkers sets the number of parallel workers
func WithWorkers(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithTimeout sets the timeout for hashing each image
func WithTimeout(d time.Duration) Option {
	return func(s *Scanner) {
		s.timeout = d
	}
}

// WithProgress sets a progress callback. It may be called from several
// goroutines, never concurrently.
func WithProgress(fn func(scanned, total int, current string)) Option {
	return func(s *Scanner) {
		s.progressFn = fn
	}
}

// WithFileHash also records the SHA-256 of every image.
func WithFileHash(enabled bool) Option {
	return func(s *Scanner) {
		s.fileHash = enabled
	}
}

// WithLogger sets the logger used for skipped files.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scanner) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewScanner creates a new Scanner
func NewScanner(opts ...Option) *Scanner {
	s := &Scanner{
		workers: 8,
		timeout: 30 * time.Second,
		logger:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScanFolder hashes every supported image under folder. Files that cannot
// be decoded are skipped. It returns nil when no image was found.
func (s *Scanner) ScanFolder(ctx context.Context, folder string) ([]*models.ImageInfo, error) {
	var paths []string
	err := filepath.WalkDir(folder, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			s.logger.Debug("skipping unreadable path", "path", path, "error", err)
			return nil
		}
		if !d.IsDir() && hash.IsSupportedImage(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk folder: %w", err)
	}

	if len(paths) == 0 {
		return nil, nil
	}

	var (
		hasher    = hash.NewHasher(s.fileHash)
		results   []*models.ImageInfo
		resultsMu sync.Mutex
		scanned   atomic.Int64
		total     = len(paths)
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for _, path := range paths {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			info, err := hasher.HashImageContext(gctx, path, s.timeout)
			n := scanned.Add(1)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				s.logger.Debug("skipping image", "path", path, "error", err)
				return nil
			}

			resultsMu.Lock()
			results = append(results, info)
			if s.progressFn != nil {
				s.progressFn(int(n), total, path)
			}
			resultsMu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("scan interrupted: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("scan interrupted: %w", err)
	}

	s.logger.Info("folder scanned", "folder", folder, "files", total, "images", len(results))
	return results, nil
}

// ScanFolders scans multiple folders
func (s *Scanner) ScanFolders(ctx context.Context, folders []string) ([]*models.ImageInfo, error) {
	var allResults []*models.ImageInfo
	for _, folder := range folders {
		results, err := s.ScanFolder(ctx, folder)
		if err != nil {
			return nil, err
		}
		allResults = append(allResults, results...)
	}
	return allResults, nil
}
