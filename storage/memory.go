// In-memory history store. Data is lost when the process terminates.

package storage

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryHistory implements HistoryStore using a guarded slice.
type InMemoryHistory struct {
	mu        sync.RWMutex
	exchanges []Exchange
}

// NewInMemoryHistory creates a new in-memory history store.
func NewInMemoryHistory() *InMemoryHistory {
	return &InMemoryHistory{}
}

// Append records a completed exchange.
func (s *InMemoryHistory) Append(ctx context.Context, query, answer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.exchanges = append(s.exchanges, Exchange{
		ID:        uuid.New().String(),
		Query:     query,
		Answer:    answer,
		CreatedAt: time.Now().UTC(),
	})
	return nil
}

// Recent returns up to limit exchanges, newest first.
func (s *InMemoryHistory) Recent(ctx context.Context, limit int) ([]Exchange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.exchanges)
	if limit > 0 && limit < n {
		n = limit
	}

	recent := make([]Exchange, 0, n)
	for i := len(s.exchanges) - 1; i >= 0 && len(recent) < n; i-- {
		recent = append(recent, s.exchanges[i])
	}
	return recent, nil
}

// Verify InMemoryHistory implements HistoryStore
var _ HistoryStore = (*InMemoryHistory)(nil)
