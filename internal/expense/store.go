package expense

import (
	"context"
	"errors"
	"sync"
)

// Store keeps expenses head-first: the most recent append is always first.
type Store interface {
	Append(ctx context.Context, e *Expense) error
	List(ctx context.Context) ([]*Expense, error)
	Latest(ctx context.Context, n int) ([]*Expense, error)
}

// Pinger is implemented by stores backed by a connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

var ErrNilExpense = errors.New("expense is nil")

// MemoryStore is the process-local Store. It is unbounded and lives as long
// as the process.
type MemoryStore struct {
	mu    sync.RWMutex
	items []*Expense
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(_ context.Context, e *Expense) error {
	if e == nil {
		return ErrNilExpense
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]*Expense, 0, len(s.items)+1)
	items = append(items, e)
	s.items = append(items, s.items...)
	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]*Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*Expense{}, s.items...), nil
}

func (s *MemoryStore) Latest(_ context.Context, n int) ([]*Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n < 0 {
		n = 0
	}
	if n > len(s.items) {
		n = len(s.items)
	}
	return append([]*Expense{}, s.items[:n]...), nil
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
