// Package storage provides question/answer history storage.
//
// Information Hiding:
// - Storage backend implementation details hidden behind interface
// - Allows swapping between memory and SQLite without API changes
// - Each implementation encapsulates its own data structures

package storage

import (
	"context"
	"time"
)

// Exchange is one completed question/answer pair.
type Exchange struct {
	ID        string    `json:"id"`
	Query     string    `json:"query"`
	Answer    string    `json:"answer"`
	CreatedAt time.Time `json:"createdAt"`
}

// HistoryStore records completed exchanges and lists recent ones.
type HistoryStore interface {
	// Append records a completed exchange. The store assigns the ID
	// and timestamp.
	Append(ctx context.Context, query, answer string) error

	// Recent returns up to limit exchanges, newest first.
	Recent(ctx context.Context, limit int) ([]Exchange, error)
}
