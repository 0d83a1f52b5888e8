// Package fileutil provides file and path utility functions.
package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Permissions used for everything the exporter writes.
const (
	DirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	FilePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

var (
	// ErrEmptyPath is returned when a write is attempted without a destination.
	ErrEmptyPath = errors.New("path cannot be empty")
	// ErrMkdir wraps directory creation failures.
	ErrMkdir = errors.New("cannot create directory")
)

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// DirExists returns true if the path exists and is a directory.
func DirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// EnsureDir creates path and any missing parents.
func EnsureDir(path string) error {
	if path == "" {
		return ErrEmptyPath
	}
	if err := os.MkdirAll(path, DirPermissions); err != nil {
		return fmt.Errorf("%w %s: %w", ErrMkdir, path, err)
	}
	return nil
}

// WriteFile writes data to path, creating the parent directory if needed.
// The write is not atomic: a failure midway can leave a truncated file.
func WriteFile(path string, data []byte) error {
	if path == "" {
		return ErrEmptyPath
	}
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	// #nosec G306 -- exported PDFs and index pages are meant to be readable
	if err := os.WriteFile(path, data, FilePermissions); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
