package pipeline

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/theirongolddev/stipend/internal/ledger"
	"github.com/theirongolddev/stipend/internal/store"
)

// MemoryPath selects an in-process store that is discarded on exit.
const MemoryPath = ":memory:"

// Backend is a key-value store that can also report its write revision.
type Backend interface {
	ledger.KV
	Revision() (int64, error)
	Keys() ([]string, error)
}

// LoadResult holds an opened ledger and the store behind it.
type LoadResult struct {
	Ledger  *ledger.Ledger
	Backend Backend
	Path    string

	close func() error
}

// Close releases the underlying store.
func (r *LoadResult) Close() error {
	if r.close == nil {
		return nil
	}
	return r.close()
}

// Load opens the store at path (or an in-memory one for MemoryPath) and loads the ledger from it.
func Load(path string, log *slog.Logger, opts ...ledger.Option) (*LoadResult, error) {
	if log == nil {
		log = slog.Default()
	}
	result := &LoadResult{Path: path}

	if path == MemoryPath {
		result.Backend = store.NewMemory()
	} else {
		s, err := store.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening store %s: %w", path, err)
		}
		result.Backend = s
		result.close = s.Close
	}

	opts = append([]ledger.Option{ledger.WithLogger(log)}, opts...)
	l, err := ledger.Open(result.Backend, opts...)
	if err != nil {
		_ = result.Close()
		return nil, err
	}
	result.Ledger = l
	log.Debug("store opened", "path", path)
	return result, nil
}

// DataDir returns the XDG-compliant data directory.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "stipend")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "stipend")
}

// DataPath returns the default ledger database path.
func DataPath() string {
	return filepath.Join(DataDir(), "ledger.db")
}
