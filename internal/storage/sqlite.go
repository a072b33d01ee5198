package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"budgeting/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

const expenseColumns = `id, project, title, description, expense_date,
	exact_amount_cents, estimated_cents, conservative_cents, worst_case_cents,
	priority, status`

// CreateExpense implements Store. The id comes from the AUTOINCREMENT
// primary key, so concurrent creates can never collide.
func (s *SQLiteStore) CreateExpense(ctx context.Context, rec core.ExpenseRecord) (core.ExpenseRecord, error) {
	exact, estimated, conservative, worstCase := amountColumns(rec.Amount)
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO expenses (project, title, description, expense_date,
			exact_amount_cents, estimated_cents, conservative_cents, worst_case_cents,
			priority, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Project, rec.Title, rec.Description,
		core.EncodeExpenseDate(rec.DateMode, rec.ExpenseDate),
		exact, estimated, conservative, worstCase,
		rec.Priority, rec.Status,
	)
	if err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("insert expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("read inserted id: %w", err)
	}
	rec.ID = id

	slog.InfoContext(ctx, "Expense saved",
		"id", rec.ID,
		"project", rec.Project,
		"title", rec.Title,
		"priority", rec.Priority)

	return rec, nil
}

// ListByProject implements Store.
func (s *SQLiteStore) ListByProject(ctx context.Context, project string) ([]core.ExpenseRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+expenseColumns+`
		FROM expenses
		WHERE project = ?
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

// GetOwned implements Store.
func (s *SQLiteStore) GetOwned(ctx context.Context, id int64, project string) (core.ExpenseRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+expenseColumns+`
		FROM expenses
		WHERE id = ? AND project = ?`, id, project)
	rec, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.ExpenseRecord{}, core.ErrNotFound
	}
	if err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("get expense: %w", err)
	}
	return rec, nil
}

// DeleteOwned implements Store. Ownership is part of the delete predicate.
func (s *SQLiteStore) DeleteOwned(ctx context.Context, id int64, project string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM expenses WHERE id = ? AND project = ?`, id, project)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}

	slog.InfoContext(ctx, "Expense deleted", "id", id, "project", project)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (core.ExpenseRecord, error) {
	var (
		rec          core.ExpenseRecord
		expenseDate  sql.NullString
		exact        sql.NullInt64
		estimated    sql.NullInt64
		conservative sql.NullInt64
		worstCase    sql.NullInt64
	)
	err := row.Scan(&rec.ID, &rec.Project, &rec.Title, &rec.Description,
		&expenseDate, &exact, &estimated, &conservative, &worstCase,
		&rec.Priority, &rec.Status)
	if err != nil {
		return core.ExpenseRecord{}, err
	}

	var datePtr *string
	if expenseDate.Valid {
		datePtr = &expenseDate.String
	}
	rec.DateMode, rec.ExpenseDate = core.DecodeExpenseDate(datePtr)

	if exact.Valid {
		rec.Amount = core.ExactAmount(exact.Int64)
	} else {
		rec.Amount = core.EstimatedAmount(estimated.Int64, conservative.Int64, worstCase.Int64)
	}
	return rec, nil
}

// amountColumns splits an Amount into its four nullable columns.
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
