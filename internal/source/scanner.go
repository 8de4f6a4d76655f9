package source

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/theirongolddev/stipend/internal/model"
)

const (
	backupPrefix = "stipend-"
	backupExt    = ".jsonl"
)

// BackupName returns the file name used for a backup taken at t.
func BackupName(t time.Time) string {
	return backupPrefix + t.UTC().Format("20060102-150405") + backupExt
}

// ScanDir lists the backups in dir, newest first. A missing directory
// yields no files and no error.
func ScanDir(dir string) ([]DiscoveredFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var files []DiscoveredFile
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, backupPrefix) || filepath.Ext(name) != backupExt {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, DiscoveredFile{
			Path:    filepath.Join(dir, name),
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	// Names embed a sortable UTC timestamp, so name order is creation order.
	slices.SortFunc(files, func(a, b DiscoveredFile) int {
		return strings.Compare(b.Name, a.Name)
	})
	return files, nil
}

// Latest returns the newest backup in dir.
func Latest(dir string) (DiscoveredFile, error) {
	files, err := ScanDir(dir)
	if err != nil {
		return DiscoveredFile{}, err
	}
	if len(files) == 0 {
		return DiscoveredFile{}, fmt.Errorf("no backups in %s", dir)
	}
	return files[0], nil
}

// WriteFile writes snap into dir under BackupName(now) and returns its path.
func WriteFile(dir string, snap model.Snapshot, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("create backup directory: %w", err)
	}
	path := filepath.Join(dir, BackupName(now))
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600) //nolint:gosec // fixed name under the data dir
	if err != nil {
		return "", err
	}
	if err := Write(f, snap, now); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", err
	}
	return path, f.Close()
}
