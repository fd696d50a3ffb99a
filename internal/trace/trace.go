// Package trace persists a diagnostic log of constraint solves to
// SQLite: which constraint was resolved, how many equations it carried,
// how many had to be dropped, and which shape was pinned.
//
// The trace is strictly write-behind diagnostics for debugging
// misbehaving constraint sets. Constraint state itself lives only in
// the engine's in-memory list and is never persisted here.
package trace

import (
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/easel/internal/engine"
)

//go:embed schema.sql
var schemaSQL string

// Store is a SQLite-backed solve log. It implements engine.Recorder.
type Store struct {
	db *sql.DB
}

// Row is one recorded solve, as read back from the log.
type Row struct {
	Seq          int64
	ConstraintID string
	Label        string
	Equations    int
	Dropped      int
	Satisfied    bool
	FixedShape   string
}

// Open creates or opens a trace database at the given path.
//
// The database is configured with WAL mode for concurrent reads, a
// busy timeout for lock contention, and a single writer connection —
// SQLite supports only one writer at a time anyway.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open trace db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect trace db: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply trace schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record appends one solve record. Implements engine.Recorder.
func (s *Store) Record(rec engine.SolveRecord) error {
	_, err := s.db.Exec(`
		INSERT INTO solves (constraint_id, label, equations, dropped, satisfied, fixed_shape)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		rec.ConstraintID,
		rec.Label,
		rec.Equations,
		rec.Dropped,
		boolToInt(rec.Satisfied),
		rec.FixedShape,
	)
	if err != nil {
		return fmt.Errorf("record solve: %w", err)
	}
	return nil
}

// List returns every recorded solve in sequence order.
func (s *Store) List() ([]Row, error) {
	rows, err := s.db.Query(`
		SELECT seq, constraint_id, label, equations, dropped, satisfied, fixed_shape
		FROM solves ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("list solves: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		var satisfied int
		if err := rows.Scan(&r.Seq, &r.ConstraintID, &r.Label, &r.Equations, &r.Dropped, &satisfied, &r.FixedShape); err != nil {
			return nil, fmt.Errorf("scan solve row: %w", err)
		}
		r.Satisfied = satisfied != 0
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate solves: %w", err)
	}
	return out, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
