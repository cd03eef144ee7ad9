package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEnsureFolder(t *testing.T) {
	target := filepath.Join(t.TempDir(), "nested", "data")

	err := EnsureFolder(target)
	if err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}
	info, err := os.Stat(target)
	if err != nil {
		t.Fatalf("Expected the folder to exist, but got %s", err)
	}
	if !info.IsDir() {
		t.Fatal("Expected a directory")
	}

	// A second call on the existing folder is a no-op
	err = EnsureFolder(target)
	if err != nil {
		t.Fatalf("Unexpected error on existing folder: %s", err)
	}
}
