package utils

import (
	"os"
)

// EnsureFolder creates a folder, and any missing parents, unless it exists
// already
func EnsureFolder(path string) error {
	_, err := os.Stat(path)
	if os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModePerm)
	}
	return err
}
