package core

import (
	"errors"
	"testing"
	"time"
)

func validRecord() ExpenseRecord {
	return ExpenseRecord{
		Project:     "oikos Solar",
		Title:       "Venue rental",
		Description: "Main hall",
		DateMode:    DateNone,
		Amount:      ExactAmount(120000),
		Priority:    2,
		Status:      StatusNotAssigned,
	}
}

func TestExpenseRecordValidate(t *testing.T) {
	if err := validRecord().Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*ExpenseRecord)
		want   error
	}{
		{"empty project", func(r *ExpenseRecord) { r.Project = "  " }, ErrEmptyProject},
		{"empty title", func(r *ExpenseRecord) { r.Title = "" }, ErrEmptyTitle},
		{"empty description", func(r *ExpenseRecord) { r.Description = " " }, ErrEmptyDescription},
		{"bad priority low", func(r *ExpenseRecord) { r.Priority = 0 }, ErrInvalidPriority},
		{"bad priority high", func(r *ExpenseRecord) { r.Priority = 6 }, ErrInvalidPriority},
		{"bad date mode", func(r *ExpenseRecord) { r.DateMode = "sometime" }, ErrInvalidDate},
		{"known date missing", func(r *ExpenseRecord) { r.DateMode = DateKnown }, ErrInvalidDate},
		{"date without mode", func(r *ExpenseRecord) { r.ExpenseDate = time.Now() }, ErrInvalidDate},
		{"no amount", func(r *ExpenseRecord) { r.Amount = Amount{} }, ErrAmountConflict},
		{"both amounts", func(r *ExpenseRecord) {
			r.Amount.Estimated = &Money{Cents: 100}
			r.Amount.Conservative = &Money{Cents: 100}
			r.Amount.WorstCase = &Money{Cents: 100}
		}, ErrAmountConflict},
		{"partial triple", func(r *ExpenseRecord) {
			r.Amount = Amount{Estimated: &Money{Cents: 100}}
		}, ErrAmountConflict},
		{"zero exact", func(r *ExpenseRecord) { r.Amount = ExactAmount(0) }, ErrInvalidAmount},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := validRecord()
			tc.mutate(&r)
			if err := r.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestAmountValidateTriple(t *testing.T) {
	a := EstimatedAmount(30000, 40000, 60000)
	if err := a.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if a.IsExact() {
		t.Fatalf("estimate triple must not report exact")
	}
	a.Conservative = &Money{Cents: 0}
	if err := a.Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestEncodeDecodeExpenseDate(t *testing.T) {
	if got := EncodeExpenseDate(DateNone, time.Time{}); got != nil {
		t.Fatalf("no date should encode to nil, got %q", *got)
	}
	if got := EncodeExpenseDate(DateUnknown, time.Time{}); got == nil || *got != UnknownDateToken {
		t.Fatalf("unknown date should encode to literal token")
	}
	d := time.Date(2024, 10, 5, 0, 0, 0, 0, time.UTC)
	got := EncodeExpenseDate(DateKnown, d)
	if got == nil || *got != "2024-10-05" {
		t.Fatalf("known date should encode as ISO, got %v", got)
	}

	mode, back := DecodeExpenseDate(got)
	if mode != DateKnown || !back.Equal(d) {
		t.Fatalf("round trip failed: mode=%s date=%v", mode, back)
	}
	mode, _ = DecodeExpenseDate(nil)
	if mode != DateNone {
		t.Fatalf("nil column should decode to DateNone, got %s", mode)
	}
	garbage := "next semester"
	mode, _ = DecodeExpenseDate(&garbage)
	if mode != DateUnknown {
		t.Fatalf("free text should decode to DateUnknown, got %s", mode)
	}
}
