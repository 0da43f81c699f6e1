// Package store persists the built catalog and precomputed neighbor
// lists so queries do not pay the O(M²·V) build cost.
package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// DataDirName is the per-project data directory.
const DataDirName = ".reel"

// DataPath returns the path to the data directory for the given
// project root.
func DataPath(root string) string {
	return filepath.Join(root, DataDirName)
}

// EnsureDataDir creates the data directory if it doesn't exist.
func EnsureDataDir(root string) (string, error) {
	dir := DataPath(root)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating data directory: %w", err)
	}
	return dir, nil
}

// reelGitignore keeps build artifacts out of version control.
const reelGitignore = `# Built model database (rebuild with 'reel build')
reel.db
reel.db-shm
reel.db-wal

# ANN index snapshots
hnsw.bin
`

// EnsureGitignore creates a .gitignore in the data directory if one
// does not already exist, so database files never land in version
// control. An existing file is left untouched.
func EnsureGitignore(dir string) error {
	path := filepath.Join(dir, ".gitignore")
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.WriteFile(path, []byte(reelGitignore), 0o644); err != nil {
		return fmt.Errorf("creating .gitignore: %w", err)
	}
	return nil
}
