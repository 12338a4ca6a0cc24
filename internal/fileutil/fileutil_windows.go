//go:build windows

package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"unsafe"
)

var procSHFileOperationW = syscall.NewLazyDLL("shell32.dll").NewProc("SHFileOperationW")

// Shell file operation codes and flags, see shellapi.h.
const (
	foDelete = 0x3

	recycleFlags = 0x40 | // FOF_ALLOWUNDO
		0x10 | // FOF_NOCONFIRMATION
		0x4 | // FOF_SILENT
		0x400 // FOF_NOERRORUI
)

// shFileOp mirrors SHFILEOPSTRUCTW.
type shFileOp struct {
	hwnd      uintptr
	fn        uint32
	from      *uint16
	to        *uint16
	flags     uint16
	aborted   int32
	mappings  uintptr
	progTitle *uint16
}

// pathList encodes paths as the shell's list form: each path NUL-terminated,
// with one more NUL closing the list.
func pathList(paths ...string) ([]uint16, error) {
	var list []uint16
	for _, p := range paths {
		w, err := syscall.UTF16FromString(p)
		if err != nil {
			return nil, err
		}
		list = append(list, w...)
	}
	return append(list, 0), nil
}

// moveToRecycleBin sends path to the Recycle Bin. Recycled files have no
// addressable path, so the returned location is always empty.
func moveToRecycleBin(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	// The shell reports a missing file with an opaque DE_* code.
	if _, err := os.Lstat(abs); err != nil {
		return "", err
	}

	from, err := pathList(abs)
	if err != nil {
		return "", err
	}
	op := shFileOp{fn: foDelete, from: &from[0], flags: recycleFlags}

	ret, _, _ := procSHFileOperationW.Call(uintptr(unsafe.Pointer(&op)))
	if ret != 0 || op.aborted != 0 {
		return "", fmt.Errorf("recycle %s: SHFileOperationW returned %#x", path, ret)
	}
	return "", nil
}
