package utils

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// ResetDir removes dir and everything below it, then recreates it empty.
func ResetDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return errors.Wrapf(err, "failed to remove %q", dir)
	}
	return EnsureDir(dir)
}

// EnsureDir creates dir and any missing parents.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return errors.Wrapf(err, "failed to create %q", dir)
	}
	return nil
}

// ParentDir returns the directory holding path, or "." for a bare filename.
func ParentDir(path string) string {
	return filepath.Dir(path)
}
