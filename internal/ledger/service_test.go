package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"budgeting/internal/core"
	"budgeting/internal/storage/memory"

	"golang.org/x/sync/errgroup"
)

var deadline = time.Date(2024, 10, 27, 0, 0, 0, 0, time.UTC)

func beforeDeadline() time.Time { return time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC) }
func afterDeadline() time.Time  { return time.Date(2024, 10, 28, 0, 0, 1, 0, time.UTC) }

func newService(clock Clock) (*Service, *memory.Store) {
	store := memory.New()
	return NewService(store, nil, deadline, clock), store
}

func exactInput(title string) CreateInput {
	return CreateInput{
		Title:       title,
		Description: "Main hall",
		DateMode:    core.DateNone,
		Amount:      core.ExactAmount(120000),
		Priority:    2,
	}
}

func TestCreateStampsProjectAndStatus(t *testing.T) {
	svc, _ := newService(beforeDeadline)

	rec, err := svc.Create(context.Background(), "oikos Solar", exactInput("Venue rental"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.Status != core.StatusNotAssigned {
		t.Fatalf("status must be %q, got %q", core.StatusNotAssigned, rec.Status)
	}
	if rec.Project != "oikos Solar" {
		t.Fatalf("project must be stamped, got %q", rec.Project)
	}
	if rec.ID != 1 {
		t.Fatalf("first id on empty store must be 1, got %d", rec.ID)
	}

	second, err := svc.Create(context.Background(), "oikos Solar", exactInput("Catering"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if second.ID != rec.ID+1 {
		t.Fatalf("id must be previous max + 1, got %d after %d", second.ID, rec.ID)
	}
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newService(beforeDeadline)
	ctx := context.Background()

	in := exactInput("")
	if _, err := svc.Create(ctx, "oikos Solar", in); !errors.Is(err, core.ErrEmptyTitle) {
		t.Fatalf("expected ErrEmptyTitle, got %v", err)
	}

	in = exactInput("ok")
	in.Description = ""
	if _, err := svc.Create(ctx, "oikos Solar", in); !errors.Is(err, core.ErrEmptyDescription) {
		t.Fatalf("expected ErrEmptyDescription, got %v", err)
	}

	in = exactInput("ok")
	in.Priority = 9
	if _, err := svc.Create(ctx, "oikos Solar", in); !errors.Is(err, core.ErrInvalidPriority) {
		t.Fatalf("expected ErrInvalidPriority, got %v", err)
	}
}

func TestEstimateTripleListedWithoutExact(t *testing.T) {
	svc, _ := newService(beforeDeadline)
	ctx := context.Background()

	in := CreateInput{
		Title:       "Speaker travel",
		Description: "Train tickets",
		DateMode:    core.DateUnknown,
		Amount:      core.EstimatedAmount(30000, 40000, 60000),
		Priority:    3,
	}
	if _, err := svc.Create(ctx, "oikos Catalyst", in); err != nil {
		t.Fatalf("create: %v", err)
	}

	recs, err := svc.List(ctx, "oikos Catalyst")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	a := recs[0].Amount
	if a.Exact != nil {
		t.Fatalf("exact amount must be absent on estimate rows")
	}
	if a.Estimated == nil || a.Conservative == nil || a.WorstCase == nil {
		t.Fatalf("all three estimate fields must be present: %+v", a)
	}
}

func TestDeadlineClosesWritesButNotReads(t *testing.T) {
	clock := beforeDeadline
	svc := NewService(memory.New(), nil, deadline, func() time.Time { return clock() })
	ctx := context.Background()

	rec, err := svc.Create(ctx, "oikos Solar", exactInput("Venue rental"))
	if err != nil {
		t.Fatalf("create before deadline: %v", err)
	}

	clock = afterDeadline
	if svc.SubmissionOpen() {
		t.Fatalf("submission window must be closed after deadline")
	}

	if _, err := svc.Create(ctx, "oikos Solar", exactInput("Late")); !errors.Is(err, core.ErrDeadlinePassed) {
		t.Fatalf("create after deadline must refuse, got %v", err)
	}
	if _, err := svc.Check(ctx, "sess", "oikos Solar", rec.ID); !errors.Is(err, core.ErrDeadlinePassed) {
		t.Fatalf("check after deadline must refuse, got %v", err)
	}
	if err := svc.ConfirmDelete(ctx, "sess", "oikos Solar", rec.ID); !errors.Is(err, core.ErrDeadlinePassed) {
		t.Fatalf("delete after deadline must refuse, got %v", err)
	}

	recs, err := svc.List(ctx, "oikos Solar")
	if err != nil || len(recs) != 1 {
		t.Fatalf("reads must still work after deadline: recs=%d err=%v", len(recs), err)
	}
}

func TestDeadlineDayItselfIsOpen(t *testing.T) {
	svc, _ := newService(func() time.Time {
		return time.Date(2024, 10, 27, 23, 59, 0, 0, time.UTC)
	})
	if _, err := svc.Create(context.Background(), "oikos Solar", exactInput("Last minute")); err != nil {
		t.Fatalf("the deadline day itself must accept submissions: %v", err)
	}
}

func TestDeleteFlow(t *testing.T) {
	svc, _ := newService(beforeDeadline)
	ctx := context.Background()

	rec, _ := svc.Create(ctx, "oikos Solar", exactInput("Venue rental"))

	// Confirm without check is refused.
	if err := svc.ConfirmDelete(ctx, "sess", "oikos Solar", rec.ID); !errors.Is(err, ErrNotChecked) {
		t.Fatalf("confirm without check must fail, got %v", err)
	}

	checked, err := svc.Check(ctx, "sess", "oikos Solar", rec.ID)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if checked.ID != rec.ID {
		t.Fatalf("check returned wrong record: %d", checked.ID)
	}

	if err := svc.ConfirmDelete(ctx, "sess", "oikos Solar", rec.ID); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	recs, _ := svc.List(ctx, "oikos Solar")
	if len(recs) != 0 {
		t.Fatalf("record must be gone, got %d rows", len(recs))
	}

	// Stage is cleared after a successful delete.
	if err := svc.ConfirmDelete(ctx, "sess", "oikos Solar", rec.ID); !errors.Is(err, ErrNotChecked) {
		t.Fatalf("stage must be cleared after delete, got %v", err)
	}
}

func TestCheckForeignExpenseNotFound(t *testing.T) {
	svc, _ := newService(beforeDeadline)
	ctx := context.Background()

	rec, _ := svc.Create(ctx, "oikos Solar", exactInput("Venue rental"))

	if _, err := svc.Check(ctx, "sess", "oikos Consulting", rec.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("foreign check must be ErrNotFound, got %v", err)
	}
	// Nothing staged, so even a forged confirm cannot touch the row.
	if err := svc.ConfirmDelete(ctx, "sess", "oikos Consulting", rec.ID); !errors.Is(err, ErrNotChecked) {
		t.Fatalf("confirm after failed check must be ErrNotChecked, got %v", err)
	}
	if _, err := svc.List(ctx, "oikos Solar"); err != nil {
		t.Fatalf("list: %v", err)
	}
	got, err := svc.Check(ctx, "sess2", "oikos Solar", rec.ID)
	if err != nil || got.ID != rec.ID {
		t.Fatalf("record must be untouched: %v", err)
	}
}

func TestConcurrentCreatesDistinctContiguousIDs(t *testing.T) {
	svc, _ := newService(beforeDeadline)

	var g errgroup.Group
	ids := make(chan int64, 2)
	for _, project := range []string{"oikos Solar", "oikos Catalyst"} {
		project := project
		g.Go(func() error {
			rec, err := svc.Create(context.Background(), project, exactInput("simultaneous"))
			if err != nil {
				return err
			}
			ids <- rec.ID
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent create: %v", err)
	}
	close(ids)
	seen := map[int64]bool{}
	for id := range ids {
		seen[id] = true
	}
	if len(seen) != 2 || !seen[1] || !seen[2] {
		t.Fatalf("expected exactly ids {1,2}, got %v", seen)
	}
}
