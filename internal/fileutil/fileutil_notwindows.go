//go:build !windows

package fileutil

import "errors"

func moveToRecycleBin(string) (string, error) {
	return "", errors.New("recycle bin is only available on windows")
}
