package testutil

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"

	"github.com/Kush-Singh-26/koshpack/builder/cache"
)

// CreateTestCache creates a temporary history store for testing
// Returns the cache manager and a cleanup function
func CreateTestCache(t *testing.T) (*cache.Manager, func()) {
	t.Helper()
	m, err := cache.Open(t.TempDir(), false)
	if err != nil {
		t.Fatalf("Failed to open cache: %v", err)
	}
	return m, func() {
		_ = m.Close()
	}
}

// CreateTestFilesystemWithContent creates a MemMapFs holding files
func CreateTestFilesystemWithContent(files map[string]string) afero.Fs {
	fs := afero.NewMemMapFs()
	for path, content := range files {
		if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
			panic(err)
		}
		if err := afero.WriteFile(fs, path, []byte(content), 0644); err != nil {
			panic(err)
		}
	}
	return fs
}

// AssertFileExists checks if a file exists in the filesystem
func AssertFileExists(t *testing.T, fs afero.Fs, path string) {
	t.Helper()
	exists, err := afero.Exists(fs, path)
	if err != nil {
		t.Fatalf("Error checking file existence: %v", err)
	}
	if !exists {
		t.Errorf("Expected file to exist: %s", path)
	}
}

// AssertFileNotExists checks if a file does not exist
func AssertFileNotExists(t *testing.T, fs afero.Fs, path string) {
	t.Helper()
	exists, err := afero.Exists(fs, path)
	if err != nil {
		t.Fatalf("Error checking file existence: %v", err)
	}
	if exists {
		t.Errorf("Expected file to not exist: %s", path)
	}
}
