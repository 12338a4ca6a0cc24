//go:build !windows

package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestTrash_RecycleBinUnavailable(t *testing.T) {
	trash := &Trash{home: t.TempDir(), goos: "windows"}

	src := filepath.Join(t.TempDir(), "a.png")
	writeFile(t, src, "x")

	dest, err := trash.Move(src)
	if err == nil {
		t.Fatal("expected an error outside windows")
	}
	if dest != "" {
		t.Errorf("dest = %q", dest)
	}
	if _, err := os.Stat(src); err != nil {
		t.Errorf("source was touched: %v", err)
	}
}
