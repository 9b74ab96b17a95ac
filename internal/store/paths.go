package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// DatabaseFile is the SQLite file name inside the data directory.
const DatabaseFile = "carbonpath.db"

// DefaultDir returns the default data directory.
// On Unix: ~/.carbonpath
// On Windows: %USERPROFILE%\.carbonpath
func DefaultDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".carbonpath"), nil
}

// ResolveDir returns dir, or the default data directory when dir is empty.
func ResolveDir(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	return DefaultDir()
}

// EnsureDir creates the data directory if it doesn't exist.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return nil
}
