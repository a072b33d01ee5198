// Package storage defines the ledger store contract and the SQLite
// implementation. Postgres and in-memory implementations live in
// sub-packages; all three satisfy Store.
package storage

import (
	"context"

	"budgeting/internal/core"
)

// Store is the persistence contract for the expense ledger.
//
// Ids are assigned atomically by the store itself: unique always, and
// contiguous in the absence of concurrent writers. Read and delete are
// always scoped to the owning project; a cross-project id never matches.
type Store interface {
	// CreateExpense persists the record and returns it with its assigned id.
	CreateExpense(ctx context.Context, rec core.ExpenseRecord) (core.ExpenseRecord, error)

	// ListByProject returns every record owned by the project, in storage order.
	ListByProject(ctx context.Context, project string) ([]core.ExpenseRecord, error)

	// GetOwned fetches one record matching both id and project.
	// Returns core.ErrNotFound when no such pair exists.
	GetOwned(ctx context.Context, id int64, project string) (core.ExpenseRecord, error)

	// DeleteOwned removes the record matching both id and project in a
	// single statement, so ownership is enforced atomically with the
	// delete. Returns core.ErrNotFound when nothing matched.
	DeleteOwned(ctx context.Context, id int64, project string) error

	Close() error
}
