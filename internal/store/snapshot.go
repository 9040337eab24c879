package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
)

// ReadSnapshot reads the stored snapshot, verifying its version and every
// source hash.
func (s *Store) ReadSnapshot() (*Snapshot, error) {
	var (
		version    int
		snap       Snapshot
		workingDir sql.NullString
		savedAt    sql.NullTime
	)
	err := s.db.QueryRow(
		"SELECT version, main_file, working_dir, saved_at FROM unit WHERE id = 1",
	).Scan(&version, &snap.MainFile, &workingDir, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: unit: %w", err)
	}
	if version != SchemaVersion {
		return nil, fmt.Errorf("read snapshot: %w: %d", ErrVersion, version)
	}
	snap.WorkingDir = workingDir.String
	if savedAt.Valid {
		snap.SavedAt = savedAt.Time
	}

	rows, err := s.db.Query("SELECT value FROM args ORDER BY ordinal")
	if err != nil {
		return nil, fmt.Errorf("read snapshot: args: %w", err)
	}
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			rows.Close()
			return nil, fmt.Errorf("read snapshot: scan arg: %w", err)
		}
		snap.Args = append(snap.Args, a)
	}
	rows.Close()

	rows, err = s.db.Query("SELECT path, hash, content FROM sources ORDER BY ordinal")
	if err != nil {
		return nil, fmt.Errorf("read snapshot: sources: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var src Source
		if err := rows.Scan(&src.Path, &src.Hash, &src.Content); err != nil {
			return nil, fmt.Errorf("read snapshot: scan source: %w", err)
		}
		if ContentHash(src.Content) != src.Hash {
			return nil, fmt.Errorf("read snapshot: %s: %w", src.Path, ErrCorrupt)
		}
		snap.Sources = append(snap.Sources, src)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return &snap, nil
}

// Save writes snap as a fresh database at path, replacing any existing file.
func Save(path string, snap *Snapshot) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("save %s: %w", path, err)
	}
	s, err := NewStore(path)
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	defer s.Close()
	if err := s.Migrate(); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	if err := s.WriteSnapshot(snap); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// Load reads the snapshot stored at path.
func Load(path string) (*Snapshot, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	s, err := NewStore(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	defer s.Close()
	snap, err := s.ReadSnapshot()
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return snap, nil
}
