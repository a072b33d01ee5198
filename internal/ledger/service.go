// Package ledger implements the expense ledger operations: deadline-gated
// create and delete, project-scoped listing, and the two-step
// check/confirm delete flow.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"budgeting/internal/core"
	"budgeting/internal/events"
	"budgeting/internal/storage"
)

// ErrNotChecked is returned when a delete is confirmed without a matching
// prior check in the same session.
var ErrNotChecked = errors.New("no checked expense staged for deletion")

// Clock abstracts time.Now so tests can cross the deadline.
type Clock func() time.Time

type Service struct {
	store    storage.Store
	events   *events.Client
	deadline time.Time
	now      Clock
	flows    *DeleteFlows
}

// CreateInput is a project's expense submission before stamping.
type CreateInput struct {
	Title       string
	Description string
	DateMode    core.DateMode
	ExpenseDate time.Time
	Amount      core.Amount
	Priority    int
}

// NewService wires the service. events may be nil (local-only operation);
// clock may be nil to use wall time.
func NewService(store storage.Store, ev *events.Client, deadline time.Time, clock Clock) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		store:    store,
		events:   ev,
		deadline: deadline,
		now:      clock,
		flows:    NewDeleteFlows(),
	}
}

// Flows exposes the delete-flow state for janitor wiring.
func (s *Service) Flows() *DeleteFlows {
	return s.flows
}

// Deadline returns the configured submission cutoff date.
func (s *Service) Deadline() time.Time {
	return s.deadline
}

// SubmissionOpen reports whether the current date is on or before the
// deadline. The comparison is by calendar date, not instant: the whole
// deadline day is still open.
func (s *Service) SubmissionOpen() bool {
	ny, nm, nd := s.now().Date()
	dy, dm, dd := s.deadline.Date()
	nowDate := time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)
	deadlineDate := time.Date(dy, dm, dd, 0, 0, 0, 0, time.UTC)
	return !nowDate.After(deadlineDate)
}

// Create validates and persists a new expense for the project. The record
// is stamped with the project and the initial review status; the id comes
// from the store.
func (s *Service) Create(ctx context.Context, project string, in CreateInput) (core.ExpenseRecord, error) {
	if !s.SubmissionOpen() {
		return core.ExpenseRecord{}, core.ErrDeadlinePassed
	}

	rec := core.ExpenseRecord{
		Project:     project,
		Title:       in.Title,
		Description: in.Description,
		DateMode:    in.DateMode,
		ExpenseDate: in.ExpenseDate,
		Amount:      in.Amount,
		Priority:    in.Priority,
		Status:      core.StatusNotAssigned,
	}
	if err := rec.Validate(); err != nil {
		return core.ExpenseRecord{}, err
	}

	created, err := s.store.CreateExpense(ctx, rec)
	if err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("save expense: %w", err)
	}

	// A failed event must not fail the request; the record is already saved.
	if err := s.events.PublishSubmitted(ctx, created.ID, created.Project); err != nil {
		slog.ErrorContext(ctx, "Failed to publish submitted event",
			"id", created.ID, "project", created.Project, "error", err)
	}

	return created, nil
}

// List returns the project's own expenses. Always permitted, regardless of
// the deadline.
func (s *Service) List(ctx context.Context, project string) ([]core.ExpenseRecord, error) {
	recs, err := s.store.ListByProject(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return recs, nil
}

// Check fetches the record matching id within the project and stages it
// for deletion in the session's flow. Returns core.ErrNotFound when the id
// does not exist or belongs to another project.
func (s *Service) Check(ctx context.Context, sessionKey string, project string, id int64) (core.ExpenseRecord, error) {
	if !s.SubmissionOpen() {
		return core.ExpenseRecord{}, core.ErrDeadlinePassed
	}

	rec, err := s.store.GetOwned(ctx, id, project)
	if err != nil {
		return core.ExpenseRecord{}, err
	}

	s.flows.Stage(sessionKey, id, project)
	return rec, nil
}

// ConfirmDelete deletes the expense previously staged by Check. Ownership
// is enforced again inside the store's delete statement, so a foreign id
// can never be removed even if staged state were forged.
func (s *Service) ConfirmDelete(ctx context.Context, sessionKey string, project string, id int64) error {
	if !s.SubmissionOpen() {
		return core.ErrDeadlinePassed
	}

	if !s.flows.Matches(sessionKey, id, project) {
		return ErrNotChecked
	}

	if err := s.store.DeleteOwned(ctx, id, project); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			// Row vanished between check and confirm; clear the stale stage.
			s.flows.Clear(sessionKey)
			return core.ErrNotFound
		}
		return fmt.Errorf("delete expense: %w", err)
	}
	s.flows.Clear(sessionKey)

	if err := s.events.PublishWithdrawn(ctx, id, project); err != nil {
		slog.ErrorContext(ctx, "Failed to publish withdrawn event",
			"id", id, "project", project, "error", err)
	}

	return nil
}
