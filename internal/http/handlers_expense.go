package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"budgeting/internal/core"
	"budgeting/internal/ledger"
)

// expenseCard is the template-facing view of a stored expense.
type expenseCard struct {
	ID          int64
	Title       string
	Description string
	AmountLabel string
	DateLabel   string
	Priority    int
	Status      string
}

type dashboardData struct {
	ProjectName  string
	ProjectColor string
	Open         bool
	Deadline     string
	Rows         [][]expenseCard
	Checked      *expenseCard
	Notice       string
	Error        string
	Form         createForm
}

// createForm holds raw form values so a failed submission can be re-rendered
// with what the user typed.
type createForm struct {
	Title        string
	Description  string
	DateMode     string
	ExpenseDate  string
	AmountMode   string
	Amount       string
	Estimated    string
	Conservative string
	WorstCase    string
	Priority     string
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sc := sessionFrom(r)
	data := s.dashboardFor(r, sc)
	data.Notice = r.URL.Query().Get("notice")
	data.Error = r.URL.Query().Get("error")
	s.renderDashboard(w, http.StatusOK, data)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	sc := sessionFrom(r)
	form := createForm{
		Title:        strings.TrimSpace(r.FormValue("title")),
		Description:  strings.TrimSpace(r.FormValue("description")),
		DateMode:     r.FormValue("date_mode"),
		ExpenseDate:  r.FormValue("expense_date"),
		AmountMode:   r.FormValue("amount_mode"),
		Amount:       strings.TrimSpace(r.FormValue("amount")),
		Estimated:    strings.TrimSpace(r.FormValue("estimated")),
		Conservative: strings.TrimSpace(r.FormValue("conservative")),
		WorstCase:    strings.TrimSpace(r.FormValue("worst_case")),
		Priority:     r.FormValue("priority"),
	}

	input, err := form.toInput()
	if err == nil {
		_, err = s.svc.Create(r.Context(), sc.Project.Name, input)
	}
	if err != nil {
		if errors.Is(err, core.ErrDeadlinePassed) {
			redirectWithError(w, r, "The submission deadline has passed.")
			return
		}
		data := s.dashboardFor(r, sc)
		data.Error = submitErrorMessage(err)
		data.Form = form
		s.renderDashboard(w, http.StatusUnprocessableEntity, data)
		return
	}

	s.listCache.Delete(sc.Project.Name)
	redirectWithNotice(w, r, "Expense submitted.")
}

func (s *Server) handleCheckExpense(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	sc := sessionFrom(r)
	id, err := strconv.ParseInt(r.FormValue("id"), 10, 64)
	if err != nil {
		redirectWithError(w, r, "Invalid expense id.")
		return
	}

	rec, err := s.svc.Check(r.Context(), sc.SessionKey, sc.Project.Name, id)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrDeadlinePassed):
			redirectWithError(w, r, "The submission deadline has passed.")
		case errors.Is(err, core.ErrNotFound):
			redirectWithError(w, r, "Expense not found.")
		default:
			slog.Error("Check failed", "id", id, "project", sc.Project.Name, "error", err)
			redirectWithError(w, r, "Something went wrong. Please try again.")
		}
		return
	}

	card := toCard(rec)
	data := s.dashboardFor(r, sc)
	data.Checked = &card
	s.renderDashboard(w, http.StatusOK, data)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	sc := sessionFrom(r)
	id, err := strconv.ParseInt(r.FormValue("id"), 10, 64)
	if err != nil {
		redirectWithError(w, r, "Invalid expense id.")
		return
	}

	if err := s.svc.ConfirmDelete(r.Context(), sc.SessionKey, sc.Project.Name, id); err != nil {
		switch {
		case errors.Is(err, core.ErrDeadlinePassed):
			redirectWithError(w, r, "The submission deadline has passed.")
		case errors.Is(err, ledger.ErrNotChecked):
			redirectWithError(w, r, "Check the expense before deleting it.")
		case errors.Is(err, core.ErrNotFound):
			redirectWithError(w, r, "Expense not found.")
		default:
			slog.Error("Delete failed", "id", id, "project", sc.Project.Name, "error", err)
			redirectWithError(w, r, "Something went wrong. Please try again.")
		}
		return
	}

	s.listCache.Delete(sc.Project.Name)
	redirectWithNotice(w, r, "Expense deleted.")
}

func (s *Server) dashboardFor(r *http.Request, sc *sessionContext) dashboardData {
	records, ok := s.listCache.Get(sc.Project.Name)
	if !ok {
		var err error
		records, err = s.svc.List(r.Context(), sc.Project.Name)
		if err != nil {
			slog.Error("Failed to list expenses", "project", sc.Project.Name, "error", err)
			records = nil
		} else {
			s.listCache.Set(sc.Project.Name, records)
		}
	}

	return dashboardData{
		ProjectName:  sc.Project.Name,
		ProjectColor: sc.Project.Color,
		Open:         s.svc.SubmissionOpen(),
		Deadline:     s.svc.Deadline().Format("02.01.2006"),
		Rows:         cardRows(records),
	}
}

func (s *Server) renderDashboard(w http.ResponseWriter, status int, data dashboardData) {
	if s.templates == nil {
		http.Error(w, "Templates unavailable", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(status)
	if err := s.templates.ExecuteTemplate(w, "dashboard.html", data); err != nil {
		slog.Error("Failed to render dashboard", "error", err)
	}
}

func redirectWithNotice(w http.ResponseWriter, r *http.Request, msg string) {
	http.Redirect(w, r, "/?notice="+url.QueryEscape(msg), http.StatusSeeOther)
}

func redirectWithError(w http.ResponseWriter, r *http.Request, msg string) {
	http.Redirect(w, r, "/?error="+url.QueryEscape(msg), http.StatusSeeOther)
}

// cardRows groups cards into rows of three for the gallery layout.
func cardRows(records []core.ExpenseRecord) [][]expenseCard {
	var rows [][]expenseCard
	for i := 0; i < len(records); i += 3 {
		end := i + 3
		if end > len(records) {
			end = len(records)
		}
		row := make([]expenseCard, 0, 3)
		for _, rec := range records[i:end] {
			row = append(row, toCard(rec))
		}
		rows = append(rows, row)
	}
	return rows
}

func toCard(rec core.ExpenseRecord) expenseCard {
	return expenseCard{
		ID:          rec.ID,
		Title:       rec.Title,
		Description: rec.Description,
		AmountLabel: amountLabel(rec.Amount),
		DateLabel:   dateLabel(rec),
		Priority:    rec.Priority,
		Status:      rec.Status,
	}
}

func amountLabel(a core.Amount) string {
	if a.IsExact() {
		return core.FormatCHF(a.Exact.Cents)
	}
	return fmt.Sprintf("%s / %s / %s",
		core.FormatCHF(a.Estimated.Cents),
		core.FormatCHF(a.Conservative.Cents),
		core.FormatCHF(a.WorstCase.Cents))
}

func dateLabel(rec core.ExpenseRecord) string {
	switch rec.DateMode {
	case core.DateKnown:
		return rec.ExpenseDate.Format("02.01.2006")
	case core.DateUnknown:
		return "date unknown"
	default:
		return "no date"
	}
}

func (f createForm) toInput() (ledger.CreateInput, error) {
	input := ledger.CreateInput{
		Title:       f.Title,
		Description: f.Description,
	}

	switch f.DateMode {
	case "", "none":
		input.DateMode = core.DateNone
	case "unknown":
		input.DateMode = core.DateUnknown
	case "known":
		t, err := time.Parse("2006-01-02", f.ExpenseDate)
		if err != nil {
			return input, core.ErrInvalidDate
		}
		input.DateMode = core.DateKnown
		input.ExpenseDate = t
	default:
		return input, core.ErrInvalidDate
	}

	switch f.AmountMode {
	case "exact":
		cents, err := core.ParseDecimalToCents(f.Amount)
		if err != nil {
			return input, core.ErrInvalidAmount
		}
		input.Amount = core.Amount{Exact: &core.Money{Cents: cents}}
	case "estimate":
		est, err := core.ParseDecimalToCents(f.Estimated)
		if err != nil {
			return input, core.ErrInvalidAmount
		}
		cons, err := core.ParseDecimalToCents(f.Conservative)
		if err != nil {
			return input, core.ErrInvalidAmount
		}
		worst, err := core.ParseDecimalToCents(f.WorstCase)
		if err != nil {
			return input, core.ErrInvalidAmount
		}
		input.Amount = core.Amount{
			Estimated:    &core.Money{Cents: est},
			Conservative: &core.Money{Cents: cons},
			WorstCase:    &core.Money{Cents: worst},
		}
	default:
		return input, core.ErrInvalidAmount
	}

	priority, err := strconv.Atoi(f.Priority)
	if err != nil {
		return input, core.ErrInvalidPriority
	}
	input.Priority = priority

	return input, nil
}

func submitErrorMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrEmptyTitle):
		return "A title is required."
	case errors.Is(err, core.ErrEmptyDescription):
		return "A description is required."
	case errors.Is(err, core.ErrInvalidDate):
		return "The expense date must be a valid date."
	case errors.Is(err, core.ErrInvalidAmount):
		return "Amounts must be positive numbers like 12.50."
	case errors.Is(err, core.ErrAmountConflict):
		return "Provide either an exact amount or a full estimate, not both."
	case errors.Is(err, core.ErrInvalidPriority):
		return "Priority must be between 1 and 5."
	default:
		return "Could not save the expense. Please check your input."
	}
}
