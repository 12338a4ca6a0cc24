// Package fileutil moves files aside without losing them: into a folder with
// collision-free names, or into the user's trash.
package fileutil

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"
)

// MoveFile moves src into destDir and returns the new path. A name already
// taken in destDir gets a counter suffix (file_1.jpg, file_2.jpg, ...).
func MoveFile(src, destDir string) (string, error) {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", destDir, err)
	}

	destName := uniqueName(filepath.Base(src), func(name string) bool {
		return !exists(filepath.Join(destDir, name))
	})
	dest := filepath.Join(destDir, destName)

	if err := rename(src, dest); err != nil {
		return "", err
	}
	return dest, nil
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return !errors.Is(err, os.ErrNotExist)
}

// uniqueName returns filename, or the first name_N.ext for which available
// reports true.
func uniqueName(filename string, available func(string) bool) string {
	if available(filename) {
		return filename
	}

	ext := filepath.Ext(filename)
	stem := strings.TrimSuffix(filename, ext)
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, n, ext)
		if available(candidate) {
			return candidate
		}
	}
}

// rename moves src to dest, copying and deleting when they live on
// different filesystems.
func rename(src, dest string) error {
	err := os.Rename(src, dest)
	if err == nil {
		return nil
	}

	var linkErr *os.LinkError
	if !errors.As(err, &linkErr) || !errors.Is(linkErr.Err, syscall.EXDEV) {
		return err
	}

	if err := copyFile(src, dest); err != nil {
		return err
	}
	return os.Remove(src)
}

func copyFile(src, dest string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	stat, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_EXCL, stat.Mode())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(dest)
		}
	}()

	_, err = io.Copy(out, in)
	return err
}

// Trash is a per-user trash location rooted at a home directory.
//   - darwin: ~/.Trash
//   - linux: ~/.local/share/Trash, with a .trashinfo record per file
//   - windows: the Recycle Bin
//   - anything else: ~/jbmap_trash
type Trash struct {
	home string
	goos string
}

// NewTrash returns the trash of the current user.
func NewTrash() (*Trash, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	return &Trash{home: home, goos: runtime.GOOS}, nil
}

// MoveToTrash moves path to the current user's trash and returns where it
// ended up.
func MoveToTrash(path string) (string, error) {
	t, err := NewTrash()
	if err != nil {
		return "", err
	}
	return t.Move(path)
}

// Move moves src into the trash and returns its new path. The path is empty
// for the Windows Recycle Bin.
func (t *Trash) Move(src string) (string, error) {
	switch t.goos {
	case "windows":
		return moveToRecycleBin(src)
	case "linux":
		return t.moveFreedesktop(src)
	case "darwin":
		return MoveFile(src, filepath.Join(t.home, ".Trash"))
	default:
		return MoveFile(src, filepath.Join(t.home, "jbmap_trash"))
	}
}

// moveFreedesktop follows the freedesktop.org trash layout: the file goes
// to files/ and a matching .trashinfo to info/.
func (t *Trash) moveFreedesktop(src string) (string, error) {
	base := filepath.Join(t.home, ".local", "share", "Trash")
	filesDir := filepath.Join(base, "files")
	infoDir := filepath.Join(base, "info")
	for _, dir := range []string{filesDir, infoDir} {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return "", fmt.Errorf("failed to create trash directory: %w", err)
		}
	}

	absPath, err := filepath.Abs(src)
	if err != nil {
		return "", err
	}

	name := uniqueName(filepath.Base(src), func(name string) bool {
		return !exists(filepath.Join(filesDir, name)) && !exists(filepath.Join(infoDir, name+".trashinfo"))
	})
	dest := filepath.Join(filesDir, name)
	infoPath := filepath.Join(infoDir, name+".trashinfo")

	info := trashInfo(absPath, time.Now())
	if err := os.WriteFile(infoPath, []byte(info), 0600); err != nil {
		return "", err
	}

	if err := rename(src, dest); err != nil {
		os.Remove(infoPath)
		return "", err
	}
	return dest, nil
}

// trashInfo renders a .trashinfo record; Path is percent-encoded.
func trashInfo(absPath string, deleted time.Time) string {
	escaped := (&url.URL{Path: absPath}).EscapedPath()
	return fmt.Sprintf("[Trash Info]\nPath=%s\nDeletionDate=%s\n", escaped, deleted.Format("2006-01-02T15:04:05"))
}
