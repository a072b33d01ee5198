// Package postgres implements the ledger Store on PostgreSQL, the store
// the budgeting tool was originally deployed against.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"budgeting/internal/core"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	pool *pgxpool.Pool
}

// New connects a pool and runs migrations.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(databaseURL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{pool: pool}, nil
}

func (s *Store) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

const expenseColumns = `id, project, title, description, expense_date,
	exact_amount_cents, estimated_cents, conservative_cents, worst_case_cents,
	priority, status`

// CreateExpense implements storage.Store. The id comes from the BIGSERIAL
// primary key, so concurrent creates can never collide.
func (s *Store) CreateExpense(ctx context.Context, rec core.ExpenseRecord) (core.ExpenseRecord, error) {
	exact, estimated, conservative, worstCase := amountColumns(rec.Amount)
	err := s.pool.QueryRow(ctx, `
		INSERT INTO expenses (project, title, description, expense_date,
			exact_amount_cents, estimated_cents, conservative_cents, worst_case_cents,
			priority, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`,
		rec.Project, rec.Title, rec.Description,
		core.EncodeExpenseDate(rec.DateMode, rec.ExpenseDate),
		exact, estimated, conservative, worstCase,
		rec.Priority, rec.Status,
	).Scan(&rec.ID)
	if err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("insert expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved",
		"id", rec.ID,
		"project", rec.Project,
		"title", rec.Title,
		"priority", rec.Priority)

	return rec, nil
}

// ListByProject implements storage.Store.
func (s *Store) ListByProject(ctx context.Context, project string) ([]core.ExpenseRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+expenseColumns+`
		FROM expenses
		WHERE project = $1
		ORDER BY id`, project)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var out []core.ExpenseRecord
	for rows.Next() {
		rec, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return out, nil
}

// GetOwned implements storage.Store.
func (s *Store) GetOwned(ctx context.Context, id int64, project string) (core.ExpenseRecord, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+expenseColumns+`
		FROM expenses
		WHERE id = $1 AND project = $2`, id, project)
	rec, err := scanExpense(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.ExpenseRecord{}, core.ErrNotFound
	}
	if err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("get expense: %w", err)
	}
	return rec, nil
}

// DeleteOwned implements storage.Store. Ownership is part of the delete
// predicate, never a separate check.
func (s *Store) DeleteOwned(ctx context.Context, id int64, project string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM expenses WHERE id = $1 AND project = $2`, id, project)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}

	slog.InfoContext(ctx, "Expense deleted", "id", id, "project", project)
	return nil
}

func scanExpense(row pgx.Row) (core.ExpenseRecord, error) {
	var (
		rec          core.ExpenseRecord
		expenseDate  *string
		exact        *int64
		estimated    *int64
		conservative *int64
		worstCase    *int64
	)
	err := row.Scan(&rec.ID, &rec.Project, &rec.Title, &rec.Description,
		&expenseDate, &exact, &estimated, &conservative, &worstCase,
		&rec.Priority, &rec.Status)
	if err != nil {
		return core.ExpenseRecord{}, err
	}

	rec.DateMode, rec.ExpenseDate = core.DecodeExpenseDate(expenseDate)

	if exact != nil {
		rec.Amount = core.ExactAmount(*exact)
	} else {
		rec.Amount = core.Amount{}
		if estimated != nil && conservative != nil && worstCase != nil {
			rec.Amount = core.EstimatedAmount(*estimated, *conservative, *worstCase)
		}
	}
	return rec, nil
}

func amountColumns(a core.Amount) (exact, estimated, conservative, worstCase *int64) {
	if a.Exact != nil {
		exact = &a.Exact.Cents
		return
	}
	if a.Estimated != nil {
		estimated = &a.Estimated.Cents
	}
	if a.Conservative != nil {
		conservative = &a.Conservative.Cents
	}
	if a.WorstCase != nil {
		worstCase = &a.WorstCase.Cents
	}
	return
}
