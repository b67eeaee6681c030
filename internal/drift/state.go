package drift

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// State is the persisted dismiss state for drift warnings: which HEAD the
// warnings were computed against and how many sessions they have been shown.
type State struct {
	HeadSHA    string
	TimesShown int
}

// StateStore persists drift dismiss state in a small SQLite database under
// the configured state directory.
type StateStore struct {
	db *sql.DB
}

// OpenStateStore opens (creating if needed) the drift state database.
func OpenStateStore(stateDir string) (*StateStore, error) {
	if err := os.MkdirAll(stateDir, 0o700); err != nil {
		return nil, fmt.Errorf("drift: create state dir: %w", err)
	}

	dbPath := filepath.Join(stateDir, "drift.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("drift: open state database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return nil, fmt.Errorf("drift: pragma %q: %w", p, err)
		}
	}

	s := &StateStore{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("drift: migration: %w", err)
	}
	return s, nil
}

func (s *StateStore) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS drift_state (
			id          INTEGER PRIMARY KEY CHECK (id = 1),
			head_sha    TEXT    NOT NULL,
			times_shown INTEGER NOT NULL DEFAULT 0,
			updated_at  TEXT    NOT NULL DEFAULT (datetime('now'))
		);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the underlying database connection.
func (s *StateStore) Close() error {
	return s.db.Close()
}

// Load returns the current state, or a zero State if none is stored.
func (s *StateStore) Load() (State, error) {
	var st State
	err := s.db.QueryRow(
		"SELECT head_sha, times_shown FROM drift_state WHERE id = 1",
	).Scan(&st.HeadSHA, &st.TimesShown)
	if err == sql.ErrNoRows {
		return State{}, nil
	}
	if err != nil {
		return State{}, fmt.Errorf("drift: load state: %w", err)
	}
	return st, nil
}

// Save upserts the single state row.
func (s *StateStore) Save(st State) error {
	_, err := s.db.Exec(`
		INSERT INTO drift_state (id, head_sha, times_shown, updated_at)
		VALUES (1, ?, ?, datetime('now'))
		ON CONFLICT(id) DO UPDATE SET
			head_sha    = excluded.head_sha,
			times_shown = excluded.times_shown,
			updated_at  = excluded.updated_at
	`, st.HeadSHA, st.TimesShown)
	if err != nil {
		return fmt.Errorf("drift: save state: %w", err)
	}
	return nil
}

// Clear removes the stored state. Called when drift disappears (the docs
// were updated), so fresh warnings start a new counter.
func (s *StateStore) Clear() error {
	if _, err := s.db.Exec("DELETE FROM drift_state WHERE id = 1"); err != nil {
		return fmt.Errorf("drift: clear state: %w", err)
	}
	return nil
}
