package core

import (
	"errors"
	"strings"
	"time"
)

// StatusNotAssigned is the initial review status of every submitted expense.
// Only the board side ever changes it; the submitting project cannot.
const StatusNotAssigned = "not assigned"

// UnknownDateToken is the literal stored for expenses whose date exists but
// is not yet known.
const UnknownDateToken = "unknown"

const (
	DateNone    DateMode = "none"
	DateUnknown DateMode = "unknown"
	DateKnown   DateMode = "known"
)

const (
	PriorityHighest = 1
	PriorityLowest  = 5
)

type (
	// DateMode says whether an expense is tied to a calendar date.
	DateMode string

	Money struct {
		Cents int64
	}

	// Amount is either a confirmed exact value or a three-point estimate.
	// Exactly one of the two representations is populated.
	Amount struct {
		Exact        *Money
		Estimated    *Money
		Conservative *Money
		WorstCase    *Money
	}

	// ExpenseRecord is one planned expense submitted by a project.
	ExpenseRecord struct {
		ID          int64
		Project     string
		Title       string
		Description string
		DateMode    DateMode
		ExpenseDate time.Time // set only when DateMode is DateKnown
		Amount      Amount
		Priority    int
		Status      string
	}
)

var (
	ErrEmptyTitle       = errors.New("empty title")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyProject     = errors.New("empty project")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrAmountConflict   = errors.New("exactly one of exact amount or estimate triple must be set")
	ErrInvalidPriority  = errors.New("priority must be between 1 and 5")
	ErrInvalidDate      = errors.New("invalid expense date")

	ErrNotFound       = errors.New("expense not found")
	ErrDeadlinePassed = errors.New("submission deadline has passed")
)

// ExactAmount builds an exact Amount from cents.
func ExactAmount(cents int64) Amount {
	return Amount{Exact: &Money{Cents: cents}}
}

// EstimatedAmount builds an estimate-triple Amount from cents.
func EstimatedAmount(estimated, conservative, worstCase int64) Amount {
	return Amount{
		Estimated:    &Money{Cents: estimated},
		Conservative: &Money{Cents: conservative},
		WorstCase:    &Money{Cents: worstCase},
	}
}

// IsExact reports whether the amount is a confirmed exact value.
func (a Amount) IsExact() bool {
	return a.Exact != nil
}

func (a Amount) Validate() error {
	hasExact := a.Exact != nil
	hasTriple := a.Estimated != nil && a.Conservative != nil && a.WorstCase != nil
	anyTriple := a.Estimated != nil || a.Conservative != nil || a.WorstCase != nil

	if hasExact == anyTriple {
		return ErrAmountConflict
	}
	if anyTriple && !hasTriple {
		return ErrAmountConflict
	}
	if hasExact {
		return a.Exact.Validate()
	}
	for _, m := range []*Money{a.Estimated, a.Conservative, a.WorstCase} {
		if err := m.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (dm DateMode) IsValid() bool {
	switch dm {
	case DateNone, DateUnknown, DateKnown:
		return true
	default:
		return false
	}
}

func (r ExpenseRecord) Validate() error {
	if strings.TrimSpace(r.Project) == "" {
		return ErrEmptyProject
	}
	if strings.TrimSpace(r.Title) == "" {
		return ErrEmptyTitle
	}
	if len(r.Title) > 120 {
		return errors.New("title too long (max 120 characters)")
	}
	if strings.TrimSpace(r.Description) == "" {
		return ErrEmptyDescription
	}
	if len(r.Description) > 500 {
		return errors.New("description too long (max 500 characters)")
	}
	if !r.DateMode.IsValid() {
		return ErrInvalidDate
	}
	if r.DateMode == DateKnown && r.ExpenseDate.IsZero() {
		return ErrInvalidDate
	}
	if r.DateMode != DateKnown && !r.ExpenseDate.IsZero() {
		return ErrInvalidDate
	}
	if err := r.Amount.Validate(); err != nil {
		return err
	}
	if r.Priority < PriorityHighest || r.Priority > PriorityLowest {
		return ErrInvalidPriority
	}
	return nil
}

// EncodeExpenseDate maps the date selection to the stored column value:
// nil for no date, the literal "unknown", or an ISO calendar date.
func EncodeExpenseDate(mode DateMode, t time.Time) *string {
	switch mode {
	case DateUnknown:
		s := UnknownDateToken
		return &s
	case DateKnown:
		s := t.Format("2006-01-02")
		return &s
	default:
		return nil
	}
}

// DecodeExpenseDate is the inverse of EncodeExpenseDate. Unparseable
// non-empty values are treated as unknown rather than rejected, since the
// column is free text in the original schema.
func DecodeExpenseDate(s *string) (DateMode, time.Time) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return DateNone, time.Time{}
	}
	if *s == UnknownDateToken {
		return DateUnknown, time.Time{}
	}
	t, err := time.Parse("2006-01-02", *s)
	if err != nil {
		return DateUnknown, time.Time{}
	}
	return DateKnown, t
}
