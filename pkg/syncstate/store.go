package syncstate

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/rogpeppe/go-internal/lockedfile"
)

// FileName is the sync metadata file kept in every canonical skill directory.
const FileName = ".sync.json"

// Store reads and writes the sync metadata of one canonical skill
// directory. Access goes through lockedfile so concurrent imports into the
// same directory cannot interleave writes.
type Store struct {
	dir string
}

// NewStore returns a store for the given canonical skill directory.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Path returns the location of the metadata file.
func (s *Store) Path() string {
	return filepath.Join(s.dir, FileName)
}

// Read returns the stored metadata, or nil when none has been written yet.
func (s *Store) Read() (*Metadata, error) {
	data, err := lockedfile.Read(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to read sync metadata")
	}

	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s", s.Path())
	}
	return &m, nil
}

// Write replaces the stored metadata.
func (s *Store) Write(m *Metadata) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return errors.Wrap(err, "failed to create skill directory")
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal sync metadata")
	}

	if err := lockedfile.Write(s.Path(), bytes.NewReader(append(data, '\n')), 0o644); err != nil {
		return errors.Wrap(err, "failed to write sync metadata")
	}
	return nil
}
