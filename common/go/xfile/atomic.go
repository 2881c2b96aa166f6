package xfile

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteAtomic writes data to a temporary file next to path and renames it
// over path once the content is fully flushed.
//
// Readers either observe the previous content or the new one, never a
// partially written file. The temporary file is removed on failure.
func WriteAtomic(path string, data []byte, perm os.FileMode) (err error) {
	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	f, err := os.CreateTemp(dir, "."+name+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpPath := f.Name()

	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err = f.Write(data); err != nil {
		return fmt.Errorf("failed to write %q: %w", tmpPath, err)
	}
	if err = f.Sync(); err != nil {
		return fmt.Errorf("failed to sync %q: %w", tmpPath, err)
	}
	if err = f.Chmod(perm); err != nil {
		return fmt.Errorf("failed to chmod %q: %w", tmpPath, err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("failed to close %q: %w", tmpPath, err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename %q to %q: %w", tmpPath, path, err)
	}

	return nil
}
