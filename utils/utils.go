package utils

import (
	"errors"
	"io/fs"
	"os"
)

// FileExist reports whether filePath exists. It panics on any error other
// than the file missing, e.g. a permission error on a parent dir.
func FileExist(filePath string) bool {
	_, err := os.Stat(filePath)
	if errors.Is(err, fs.ErrNotExist) {
		return false
	}

	if err != nil {
		panic(err)
	}

	return true
}

// CreateDirIfNotExist creates dir along with any missing parents.
func CreateDirIfNotExist(dir string) error {
	if FileExist(dir) {
		return nil
	}

	return os.MkdirAll(dir, 0755)
}
