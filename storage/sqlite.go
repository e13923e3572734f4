// SQLite history store.
//
// Information Hiding:
// - SQLite connection management hidden behind interface
// - Schema details encapsulated
// - Thread-safe via sql.DB's built-in connection pooling

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// SqliteHistory implements HistoryStore backed by a SQLite database file.
type SqliteHistory struct {
	db *sql.DB
}

// OpenSqliteHistory opens or creates a SQLite database at the given path.
// Creates parent directories if they don't exist.
func OpenSqliteHistory(path string) (*SqliteHistory, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	store := &SqliteHistory{db: db}
	if err := store.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

// NewSqliteHistoryInMemory creates an in-memory database (useful for testing).
func NewSqliteHistoryInMemory() (*SqliteHistory, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory SQLite: %w", err)
	}

	store := &SqliteHistory{db: db}
	if err := store.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *SqliteHistory) Close() error {
	return s.db.Close()
}

func (s *SqliteHistory) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS exchanges (
			id TEXT PRIMARY KEY,
			query TEXT NOT NULL,
			answer TEXT NOT NULL,
			created_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_exchanges_created
		ON exchanges(created_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append records a completed exchange.
func (s *SqliteHistory) Append(ctx context.Context, query, answer string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO exchanges (id, query, answer, created_at) VALUES (?, ?, ?, ?)`,
		uuid.New().String(), query, answer, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to record exchange: %w", err)
	}
	return nil
}

// Recent returns up to limit exchanges, newest first.
func (s *SqliteHistory) Recent(ctx context.Context, limit int) ([]Exchange, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, query, answer, created_at FROM exchanges ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query exchanges: %w", err)
	}
	defer rows.Close()

	var exchanges []Exchange
	for rows.Next() {
		var ex Exchange
		var created string
		if err := rows.Scan(&ex.ID, &ex.Query, &ex.Answer, &created); err != nil {
			return nil, fmt.Errorf("failed to scan exchange: %w", err)
		}
		ex.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		exchanges = append(exchanges, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate exchanges: %w", err)
	}
	return exchanges, nil
}

// Verify SqliteHistory implements HistoryStore
var _ HistoryStore = (*SqliteHistory)(nil)
