package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// Compile-time interface check.
var _ SymbolStore = (*SQLiteStore)(nil)

// SQLiteStore implements SymbolStore backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

const schemaVersion = 1

// NewSQLiteStore opens (or creates) a SQLite database at dbPath, runs the
// schema migration, and returns a ready-to-use SQLiteStore.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)`); err != nil {
		return err
	}
	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS manual_symbols (
			symbol   TEXT PRIMARY KEY,
			added_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`); err != nil {
		return err
	}

	var version int
	err := s.db.QueryRow(`SELECT version FROM schema_version LIMIT 1`).Scan(&version)
	switch {
	case err == sql.ErrNoRows:
		_, err = s.db.Exec(`INSERT INTO schema_version (version) VALUES (?)`, schemaVersion)
		return err
	case err != nil:
		return err
	case version > schemaVersion:
		return fmt.Errorf("database schema version %d is newer than supported version %d", version, schemaVersion)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// AddSymbol records a manual symbol. The insert is idempotent: re-adding an
// existing symbol keeps its original position.
func (s *SQLiteStore) AddSymbol(ctx context.Context, symbol string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO manual_symbols (symbol) VALUES (?)`, symbol)
	if err != nil {
		return fmt.Errorf("inserting symbol %s: %w", symbol, err)
	}
	return nil
}

// ListSymbols returns all manual symbols in insertion order.
func (s *SQLiteStore) ListSymbols(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT symbol FROM manual_symbols ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("listing symbols: %w", err)
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var sym string
		if err := rows.Scan(&sym); err != nil {
			return nil, fmt.Errorf("scanning symbol row: %w", err)
		}
		symbols = append(symbols, sym)
	}
	return symbols, rows.Err()
}
