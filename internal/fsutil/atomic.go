// Package fsutil holds small file helpers shared by the config loader and
// the holiday cache.
package fsutil

import (
	"errors"
	"os"
	"path/filepath"
)

// WriteFileAtomic replaces path with data.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Writes to a temp file in the same directory, then renames it over path,
//     so readers never observe a partially written file.
//   - Applies perm to the temp file before the rename.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	if path == "" {
		return errors.New("fsutil: path is empty")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// No-op once the rename succeeded.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, perm); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}
