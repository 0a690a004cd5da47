package jsonfile

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Backup copies the live document file into dir with a sortable
// local-time stamp, e.g. db-20251225-190533.json. Meant to run once per
// process launch before the live file is touched. Returns the backup
// path, or "" when there is nothing to back up yet.
func (s *Store) Backup(dir string) (string, error) {
	src, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("open document: %w", err)
	}
	defer src.Close()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}

	stamp := time.Now().Format("20060102-150405")
	dstPath := filepath.Join(dir, fmt.Sprintf("db-%s.json", stamp))
	dst, err := os.Create(dstPath)
	if err != nil {
		return "", fmt.Errorf("create backup file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("copy backup: %w", err)
	}
	return dstPath, nil
}
