// Package store persists flattened player data to a local SQLite database
// and immutable JSON snapshot files, and flattens it back out to CSV.
//
// All operations are single-writer and synchronous. Relational writes for
// one batch share a single transaction: any failure rolls the whole batch
// back and surfaces to the caller.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// DBFileName is the SQLite database file created under the data directory.
const DBFileName = "fantasy_football.db"

// ErrNotFound is returned when a requested player row does not exist.
var ErrNotFound = fmt.Errorf("player not found")

// ValidationError reports a stat value that could not be converted to a
// number at the write boundary. The offending batch is rolled back.
type ValidationError struct {
	PlayerID string
	StatID   string
	Value    any
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("player %s stat %s: non-numeric value %v", e.PlayerID, e.StatID, e.Value)
}

// Store owns the SQLite database and the flat-file archive directories.
type Store struct {
	db        *sql.DB
	dataDir   string
	jsonDir   string
	exportDir string
	logger    *slog.Logger

	// now is swappable so tests can pin timestamps.
	now func() time.Time
}

// Open creates (or reopens) the store rooted at dataDir, initializing the
// directory layout and the database schema.
func Open(dataDir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	jsonDir := filepath.Join(dataDir, "json")
	exportDir := filepath.Join(dataDir, "exports")
	for _, dir := range []string{dataDir, jsonDir, exportDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
	}

	// foreign_keys is a per-connection pragma; the DSN form applies it to
	// every pooled connection.
	dbPath := filepath.Join(dataDir, DBFileName)
	dsn := "file:" + dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Single writer; avoids SQLITE_BUSY between the CLI and the API.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return &Store{
		db:        db,
		dataDir:   dataDir,
		jsonDir:   jsonDir,
		exportDir: exportDir,
		logger:    logger,
		now:       time.Now,
	}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database file is reachable.
func (s *Store) Ping(ctx context.Context) error {
	var n int
	return s.db.QueryRowContext(ctx, "SELECT 1").Scan(&n)
}

// DataDir returns the store's root directory.
func (s *Store) DataDir() string {
	return s.dataDir
}
