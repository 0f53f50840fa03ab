package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// maxJSONColumnSize bounds JSON document columns to protect against memory
// exhaustion when decoding untrusted persisted rows.
const maxJSONColumnSize = 1 << 20 // 1MB

// SQLite holds the SQLite database connection for local persistence.
// WAL mode allows concurrent readers alongside the single writer, which is
// all a local console needs: analyses are insert-once with fresh IDs, so no
// cross-record locking is required beyond per-statement atomicity.
type SQLite struct {
	DB     *sql.DB
	Path   string
	logger *zap.SugaredLogger
}

// NewSQLite opens (creating if necessary) the local database and applies
// connection pragmas. Collections are created by the migration runner, not
// here, so schema versioning stays in one place.
func NewSQLite(dbPath string, logger *zap.SugaredLogger) (*SQLite, error) {
	if err := validateDatabasePath(dbPath); err != nil {
		return nil, fmt.Errorf("invalid database path: %w", err)
	}

	dir := filepath.Dir(dbPath)
	if dir != "." && dir != "" && dbPath != ":memory:" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Single writer; WAL readers don't block on it.
	db.SetMaxOpenConns(1)

	if err := configureConnection(db, dbPath); err != nil {
		db.Close()
		return nil, err
	}

	logger.Infow("SQLite database opened", "path", dbPath)

	return &SQLite{
		DB:     db,
		Path:   dbPath,
		logger: logger,
	}, nil
}

// configureConnection applies the standard pragmas and verifies them
func configureConnection(db *sql.DB, dbPath string) error {
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	// In-memory databases report "memory" journal mode, not "wal"
	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		return fmt.Errorf("failed to query journal mode: %w", err)
	}
	if dbPath != ":memory:" && journalMode != "wal" {
		return fmt.Errorf("WAL mode not enabled (got: %s)", journalMode)
	}

	return nil
}

// validateDatabasePath rejects paths containing traversal sequences
func validateDatabasePath(dbPath string) error {
	if dbPath == "" {
		return fmt.Errorf("database path cannot be empty")
	}
	if dbPath == ":memory:" {
		return nil
	}
	if strings.Contains(dbPath, "..") {
		return fmt.Errorf("database path must not contain '..'")
	}
	return nil
}

// Close closes the database connection
func (s *SQLite) Close() error {
	if s.DB == nil {
		return nil
	}
	if err := s.DB.Close(); err != nil {
		return fmt.Errorf("failed to close SQLite database: %w", err)
	}
	s.logger.Infow("SQLite database closed", "path", s.Path)
	return nil
}

// marshalColumn encodes a value into a JSON TEXT column
func marshalColumn(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal column: %w", err)
	}
	return string(data), nil
}

// unmarshalColumn decodes a JSON TEXT column with a size limit. Empty and
// NULL columns decode to the zero value.
func unmarshalColumn(data string, v interface{}) error {
	if data == "" {
		return nil
	}
	if len(data) > maxJSONColumnSize {
		return fmt.Errorf("JSON column exceeds %d bytes", maxJSONColumnSize)
	}
	if err := json.Unmarshal([]byte(data), v); err != nil {
		return fmt.Errorf("failed to unmarshal column: %w", err)
	}
	return nil
}
