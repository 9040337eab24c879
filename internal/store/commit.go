package store

import (
	"fmt"
	"time"
)

// WriteSnapshot replaces the stored snapshot within a single transaction.
// Missing source hashes are computed.
func (s *Store) WriteSnapshot(snap *Snapshot) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("write snapshot: begin: %w", err)
	}
	defer tx.Rollback()

	for _, q := range []string{"DELETE FROM sources", "DELETE FROM args", "DELETE FROM unit"} {
		if _, err := tx.Exec(q); err != nil {
			return fmt.Errorf("write snapshot: clear: %w", err)
		}
	}

	savedAt := snap.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now()
	}
	if _, err := tx.Exec(
		"INSERT INTO unit (id, version, main_file, working_dir, saved_at) VALUES (1, ?, ?, ?, ?)",
		SchemaVersion, snap.MainFile, snap.WorkingDir, savedAt.UTC(),
	); err != nil {
		return fmt.Errorf("write snapshot: unit: %w", err)
	}

	for i, a := range snap.Args {
		if _, err := tx.Exec("INSERT INTO args (ordinal, value) VALUES (?, ?)", i, a); err != nil {
			return fmt.Errorf("write snapshot: arg %d: %w", i, err)
		}
	}

	for i, src := range snap.Sources {
		hash := src.Hash
		if hash == "" {
			hash = ContentHash(src.Content)
		}
		if _, err := tx.Exec(
			"INSERT INTO sources (ordinal, path, hash, content) VALUES (?, ?, ?, ?)",
			i, src.Path, hash, src.Content,
		); err != nil {
			return fmt.Errorf("write snapshot: source %q: %w", src.Path, err)
		}
	}

	return tx.Commit()
}
