// Package memory implements the ledger Store in process memory. It backs
// tests and the dev backend; semantics match the SQL stores, including the
// amount-exclusivity constraint and atomic id assignment.
package memory

import (
	"context"
	"sync"

	"budgeting/internal/core"
)

type Store struct {
	mu     sync.Mutex
	nextID int64
	items  []core.ExpenseRecord
}

func New() *Store {
	return &Store{nextID: 1}
}

// CreateExpense implements storage.Store. The counter increments under the
// lock, so concurrent creates always get distinct ids.
func (s *Store) CreateExpense(_ context.Context, rec core.ExpenseRecord) (core.ExpenseRecord, error) {
	if err := rec.Validate(); err != nil {
		return core.ExpenseRecord{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec.ID = s.nextID
	s.nextID++
	s.items = append(s.items, rec)
	return rec, nil
}

// ListByProject implements storage.Store.
func (s *Store) ListByProject(_ context.Context, project string) ([]core.ExpenseRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.ExpenseRecord
	for _, rec := range s.items {
		if rec.Project == project {
			out = append(out, rec)
		}
	}
	return out, nil
}

// GetOwned implements storage.Store.
func (s *Store) GetOwned(_ context.Context, id int64, project string) (core.ExpenseRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.items {
		if rec.ID == id && rec.Project == project {
			return rec, nil
		}
	}
	return core.ExpenseRecord{}, core.ErrNotFound
}

// DeleteOwned implements storage.Store. Both predicates are checked under
// the same lock as the removal.
func (s *Store) DeleteOwned(_ context.Context, id int64, project string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, rec := range s.items {
		if rec.ID == id && rec.Project == project {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return core.ErrNotFound
}

func (s *Store) Close() error {
	return nil
}
