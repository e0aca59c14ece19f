package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/satark-labs/scamintel/internal/model"
)

// FileStore persists the snapshot as a single JSON document. This is the
// default driver and matches the on-disk format of the original cache file.
type FileStore struct {
	path string
}

// NewFile creates a FileStore writing to the given path.
func NewFile(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load(ctx context.Context) (*model.Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "file: read %s", s.path)
	}

	var snap model.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, eris.Wrapf(err, "file: decode %s", s.path)
	}
	if err := snap.Validate(); err != nil {
		return nil, eris.Wrapf(err, "file: validate %s", s.path)
	}

	return &snap, nil
}

// Save writes the snapshot atomically via a temp file and rename, so a
// crash mid-write never leaves a truncated document behind.
func (s *FileStore) Save(ctx context.Context, snap *model.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return eris.Wrap(err, "file: encode snapshot")
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".scamintel-*.json")
	if err != nil {
		return eris.Wrap(err, "file: create temp")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return eris.Wrap(err, "file: write temp")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return eris.Wrap(err, "file: close temp")
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return eris.Wrapf(err, "file: rename to %s", s.path)
	}

	return nil
}

func (s *FileStore) Migrate(ctx context.Context) error { return nil }

func (s *FileStore) Close() error { return nil }
