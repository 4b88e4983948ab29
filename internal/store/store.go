package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/mirrorfeed/mirrorfeed/internal/feed"
)

// Store reads and writes the snapshot JSON document. A run owns the file
// exclusively, so no locking is needed; writes still go through a temp
// file and rename so readers never observe a half-written snapshot.
type Store struct {
	path   string
	logger *zap.Logger
}

// New creates a Store over the given snapshot path.
func New(path string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{path: path, logger: logger}
}

// Path returns the snapshot file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the previous snapshot. A missing or unreadable file starts
// the run from an empty snapshot rather than failing it.
func (s *Store) Load() feed.Snapshot {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("Failed to read previous snapshot, starting empty",
				zap.String("path", s.path), zap.Error(err))
		}
		return feed.Snapshot{}
	}

	var snap feed.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		s.logger.Warn("Previous snapshot is not valid JSON, starting empty",
			zap.String("path", s.path), zap.Error(err))
		return feed.Snapshot{}
	}
	return snap
}

// Save writes the snapshot atomically.
func (s *Store) Save(snap feed.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp snapshot: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}
