// Package storage persists scanned images, duplicate groups, scan history and
// dictionary words in SQLite. Indexes are rebuilt in memory from these rows;
// the BK-tree itself is never stored.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"jbmap/internal/models"
)

// Storage handles persistence of image hashes, groups and words
type Storage struct {
	db     *sql.DB
	dbPath string
}

// NewStorage opens (creating if needed) the database at dbPath and brings
// its schema up to date.
func NewStorage(dbPath string) (*Storage, error) {
	dir := filepath.Dir(dbPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Storage{db: db, dbPath: dbPath}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Path returns the database file path.
func (s *Storage) Path() string {
	return s.dbPath
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

const imageColumns = `id, path, hash, file_hash, width, height, format, file_size, mod_time, has_exif, score, group_id`

// SaveImages inserts or replaces images by path in one transaction.
func (s *Storage) SaveImages(images []*models.ImageInfo) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO images (path, hash, file_hash, width, height, format, file_size, mod_time, has_exif, score, group_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, img := range images {
		// SQLite integers are signed; the hash round-trips through int64.
		_, err := stmt.Exec(
			img.Path,
			int64(img.Hash),
			img.FileHash,
			img.Width,
			img.Height,
			img.Format,
			img.FileSize,
			img.ModTime.UnixNano(),
			img.HasExif,
			img.Score,
			img.GroupID,
		)
		if err != nil {
			return fmt.Errorf("failed to insert image %s: %w", img.Path, err)
		}
	}

	return tx.Commit()
}

// GetAllImages returns all stored images ordered by path.
func (s *Storage) GetAllImages() ([]*models.ImageInfo, error) {
	return s.queryImages(`SELECT ` + imageColumns + ` FROM images ORDER BY path`)
}

// GetImagesByGroupID returns the images of one group, best score first.
func (s *Storage) GetImagesByGroupID(groupID int) ([]*models.ImageInfo, error) {
	return s.queryImages(`SELECT `+imageColumns+` FROM images WHERE group_id = ? ORDER BY score DESC, file_size DESC, path`, groupID)
}

func (s *Storage) queryImages(query string, args ...any) ([]*models.ImageInfo, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query images: %w", err)
	}
	defer rows.Close()

	var images []*models.ImageInfo
	for rows.Next() {
		img := &models.ImageInfo{}
		var (
			hashInt  int64
			modTime  int64
			fileHash sql.NullString
		)
		err := rows.Scan(
			&img.ID,
			&img.Path,
			&hashInt,
			&fileHash,
			&img.Width,
			&img.Height,
			&img.Format,
			&img.FileSize,
			&modTime,
			&img.HasExif,
			&img.Score,
			&img.GroupID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		img.Hash = uint64(hashInt)
		img.FileHash = fileHash.String
		img.ModTime = time.Unix(0, modTime)
		images = append(images, img)
	}

	return images, rows.Err()
}

// UpdateGroups replaces all group assignments with groups.
func (s *Storage) UpdateGroups(groups []*models.DuplicateGroup) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("UPDATE images SET group_id = 0"); err != nil {
		return fmt.Errorf("failed to reset groups: %w", err)
	}

	stmt, err := tx.Prepare("UPDATE images SET group_id = ? WHERE path = ?")
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, group := range groups {
		for _, img := range group.Images {
			if _, err := stmt.Exec(group.ID, img.Path); err != nil {
				return fmt.Errorf("failed to update group for %s: %w", img.Path, err)
			}
		}
	}

	return tx.Commit()
}

// DeleteImage removes an image from the database
func (s *Storage) DeleteImage(path string) error {
	_, err := s.db.Exec("DELETE FROM images WHERE path = ?", path)
	return err
}

// GetGroupCount returns the number of duplicate groups
func (s *Storage) GetGroupCount() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(DISTINCT group_id) FROM images WHERE group_id > 0").Scan(&count)
	return count, err
}

// GetDuplicateGroups returns every group with at least two images. The
// first image of each group is the one to keep.
func (s *Storage) GetDuplicateGroups() ([]*models.DuplicateGroup, error) {
	rows, err := s.db.Query("SELECT DISTINCT group_id FROM images WHERE group_id > 0 ORDER BY group_id")
	if err != nil {
		return nil, fmt.Errorf("failed to query groups: %w", err)
	}

	var groupIDs []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan group id: %w", err)
		}
		groupIDs = append(groupIDs, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var groups []*models.DuplicateGroup
	for _, id := range groupIDs {
		images, err := s.GetImagesByGroupID(id)
		if err != nil {
			return nil, err
		}
		if len(images) < 2 {
			continue
		}
		groups = append(groups, &models.DuplicateGroup{
			ID:     id,
			Images: images,
			Keep:   images[0],
			Remove: images[1:],
		})
	}

	return groups, nil
}

// RecordScan appends a scan to the history and returns its run id.
func (s *Storage) RecordScan(folder string, totalImages, totalGroups, totalDuplicates int) (string, error) {
	runID := uuid.NewString()
	_, err := s.db.Exec(`
		INSERT INTO scan_history (run_id, folder, scanned_at, total_images, total_groups, total_duplicates)
		VALUES (?, ?, ?, ?, ?, ?)
	`, runID, folder, time.Now().Unix(), totalImages, totalGroups, totalDuplicates)
	if err != nil {
		return "", fmt.Errorf("failed to record scan: %w", err)
	}
	return runID, nil
}

// GetScanHistory returns the most recent scans, newest first. A limit of 0
// returns all of them.
func (s *Storage) GetScanHistory(limit int) ([]*models.ScanRun, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(`
		SELECT COALESCE(run_id, ''), folder, scanned_at, total_images, total_groups, total_duplicates
		FROM scan_history
		ORDER BY scanned_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query scan history: %w", err)
	}
	defer rows.Close()

	var runs []*models.ScanRun
	for rows.Next() {
		run := &models.ScanRun{}
		var scannedAt int64
		if err := rows.Scan(&run.RunID, &run.Folder, &scannedAt, &run.TotalImages, &run.TotalGroups, &run.TotalDuplicates); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		run.ScannedAt = time.Unix(scannedAt, 0)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
