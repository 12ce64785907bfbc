// Package store persists scoring runs in SQLite. The schema is managed by
// golang-migrate from migrations embedded in the binary.
package store

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	_ "modernc.org/sqlite"

	"github.com/banshee-data/rater-agreement/internal/timeutil"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrRunNotFound is returned when a run ID has no stored row.
var ErrRunNotFound = errors.New("run not found")

// Store wraps the run database.
type Store struct {
	db    *sql.DB
	clock timeutil.Clock
}

// OpenStore connects to the database at path without touching the schema.
// The migrate subcommand uses it so migrations can be applied explicitly.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect %s: %w", path, err)
	}
	return &Store{db: db, clock: timeutil.RealClock{}}, nil
}

// NewStore opens the database and applies all pending migrations.
func NewStore(path string) (*Store, error) {
	s, err := OpenStore(path)
	if err != nil {
		return nil, err
	}
	if err := s.MigrateUp(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// SetClock replaces the clock used to stamp new runs.
func (s *Store) SetClock(c timeutil.Clock) {
	s.clock = c
}

// DB exposes the underlying handle for callers that need raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

func migrations() (fs.FS, error) {
	return fs.Sub(migrationsFS, "migrations")
}
