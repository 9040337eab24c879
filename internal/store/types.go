package store

import (
	"errors"
	"time"
)

// SchemaVersion is written into every snapshot. Snapshots with another
// version are rejected on read.
const SchemaVersion = 1

var (
	// ErrNoSnapshot is returned when the database holds no unit row.
	ErrNoSnapshot = errors.New("no snapshot")
	// ErrVersion is returned for snapshots written by another schema version.
	ErrVersion = errors.New("unsupported snapshot version")
	// ErrCorrupt is returned when stored content does not match its hash.
	ErrCorrupt = errors.New("source content does not match hash")
)

// Snapshot is everything needed to rebuild a translation unit: the main
// file, the arguments it was parsed with and every source it read.
type Snapshot struct {
	MainFile   string
	WorkingDir string
	Args       []string
	Sources    []Source
	SavedAt    time.Time
}

// Source is one file read while parsing.
type Source struct {
	Path    string
	Hash    string
	Content []byte
}

// Lookup returns the content stored for path.
func (s *Snapshot) Lookup(path string) ([]byte, bool) {
	for _, src := range s.Sources {
		if src.Path == path {
			return src.Content, true
		}
	}
	return nil, false
}
