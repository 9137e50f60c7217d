package emit

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

// Write stores data at path through a temp file and rename so readers never
// see a partial descriptor.
func Write(fs afero.Fs, path string, data []byte) error {
	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create descriptor directory: %w", err)
	}

	tmpPath := path + ".tmp"
	f, err := fs.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = fs.Remove(tmpPath)
		return fmt.Errorf("failed to write descriptor: %w", err)
	}

	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = fs.Remove(tmpPath)
		return fmt.Errorf("failed to sync file: %w", err)
	}

	if err := f.Close(); err != nil {
		_ = fs.Remove(tmpPath)
		return fmt.Errorf("failed to close file: %w", err)
	}

	if err := fs.Rename(tmpPath, path); err != nil {
		_ = fs.Remove(tmpPath)
		return fmt.Errorf("failed to rename file: %w", err)
	}
	return nil
}
