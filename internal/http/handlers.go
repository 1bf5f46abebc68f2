package http

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"fintrack/internal/contextstore"
	"fintrack/internal/core"
)

// maxReceiptBytes caps receipt uploads at 10 MiB.
const maxReceiptBytes = 10 << 20

type flash struct {
	Error   string
	Success string
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "url", r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution failed", "error", err, "template", name)
	}
}

type ledgerRow struct {
	Amount string
	Label  string
	Extra  string
}

type goalRow struct {
	Name    string
	Target  string
	Percent string
	Status  string
	Width   int
}

type homeView struct {
	flash
	Status   string
	Advice   string
	Income   string
	Expense  string
	Balance  string
	Incomes  []ledgerRow
	Expenses []ledgerRow
	Goals    []goalRow
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	ov, err := s.ledger.Overview(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Overview error", "error", err)
		http.Error(w, "failed to load ledger", http.StatusInternalServerError)
		return
	}

	view := homeView{
		Status:  string(ov.Budget.Status),
		Advice:  ov.Budget.Advice,
		Income:  formatDollars(ov.Budget.TotalIncome),
		Expense: formatDollars(ov.Budget.TotalExpense),
		Balance: formatDollars(ov.Budget.Balance),
	}
	for _, in := range ov.Incomes {
		view.Incomes = append(view.Incomes, ledgerRow{Amount: formatDollars(in.Amount), Label: in.Source})
	}
	for _, e := range ov.Expenses {
		row := ledgerRow{Amount: formatDollars(e.Amount), Label: e.Category, Extra: strconv.Itoa(e.Satisfaction)}
		view.Expenses = append(view.Expenses, row)
	}
	view.Goals = goalRows(ov.Progress)

	s.render(w, r, http.StatusOK, "home.html", view)
}

func goalRows(progress []core.GoalProgress) []goalRow {
	rows := make([]goalRow, 0, len(progress))
	for _, p := range progress {
		rows = append(rows, goalRow{
			Name:    p.Name,
			Target:  formatDollars(p.Target),
			Percent: strconv.FormatFloat(p.Percent, 'f', 2, 64),
			Status:  string(p.Status),
			Width:   int(p.Percent),
		})
	}
	return rows
}

type formView struct {
	flash
}

func (s *Server) handleAddIncome(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.render(w, r, http.StatusOK, "income.html", formView{})
	case http.MethodPost:
		s.createIncome(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) createIncome(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "Parse form error", "error", err, "url", r.URL.Path)
		s.render(w, r, http.StatusBadRequest, "income.html", formView{flash{Error: "Invalid request format."}})
		return
	}

	amount, err := core.ParseAmount(r.Form.Get("amount"))
	if err != nil {
		s.render(w, r, http.StatusUnprocessableEntity, "income.html", formView{flash{Error: "Amount must be a positive number."}})
		return
	}
	source := sanitizeInput(r.Form.Get("source"))

	in := core.Income{Amount: amount, Source: source}
	if _, err := s.ledger.AddIncome(r.Context(), in); err != nil {
		if errors.Is(err, core.ErrEmptySource) {
			s.render(w, r, http.StatusUnprocessableEntity, "income.html", formView{flash{Error: "Source is required."}})
			return
		}
		slog.ErrorContext(r.Context(), "Income append error", "error", err, "source", source)
		s.render(w, r, http.StatusInternalServerError, "income.html", formView{flash{Error: "Failed to save income."}})
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.render(w, r, http.StatusOK, "expense.html", formView{})
	case http.MethodPost:
		s.createExpense(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) createExpense(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxReceiptBytes); err != nil {
		slog.ErrorContext(r.Context(), "Parse multipart form error", "error", err, "url", r.URL.Path)
		s.render(w, r, http.StatusBadRequest, "expense.html", formView{flash{Error: "Invalid request format."}})
		return
	}

	amount, err := core.ParseAmount(r.Form.Get("amount"))
	if err != nil {
		s.render(w, r, http.StatusUnprocessableEntity, "expense.html", formView{flash{Error: "Amount must be a positive number."}})
		return
	}
	category := sanitizeInput(r.Form.Get("category"))
	satisfaction, err := strconv.Atoi(strings.TrimSpace(r.Form.Get("satisfaction")))
	if err != nil {
		s.render(w, r, http.StatusUnprocessableEntity, "expense.html", formView{flash{Error: "Satisfaction must be a number from 1 to 5."}})
		return
	}

	receipt, err := s.saveReceipt(r)
	if err != nil {
		slog.ErrorContext(r.Context(), "Receipt upload error", "error", err)
		s.render(w, r, http.StatusInternalServerError, "expense.html", formView{flash{Error: "Failed to store the receipt."}})
		return
	}

	e := core.Expense{Amount: amount, Category: category, Satisfaction: satisfaction, Receipt: receipt}
	if _, err := s.ledger.AddExpense(r.Context(), e); err != nil {
		switch {
		case errors.Is(err, core.ErrEmptyCategory):
			s.render(w, r, http.StatusUnprocessableEntity, "expense.html", formView{flash{Error: "Category is required."}})
		case errors.Is(err, core.ErrInvalidSatisfaction):
			s.render(w, r, http.StatusUnprocessableEntity, "expense.html", formView{flash{Error: "Satisfaction must be a number from 1 to 5."}})
		default:
			slog.ErrorContext(r.Context(), "Expense append error", "error", err, "category", category)
			s.render(w, r, http.StatusInternalServerError, "expense.html", formView{flash{Error: "Failed to save expense."}})
		}
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// saveReceipt stores the optional receipt file under the upload dir and
// returns the stored file name, or "" when no file was attached.
func (s *Server) saveReceipt(r *http.Request) (string, error) {
	file, header, err := r.FormFile("receipt")
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read receipt: %w", err)
	}
	defer file.Close()

	// A fresh random name per upload keeps uploads from clobbering
	// each other and strips any path the client sent.
	name := generateRequestID() + filepath.Ext(filepath.Base(header.Filename))
	dst, err := os.Create(filepath.Join(s.uploadDir, name))
	if err != nil {
		return "", fmt.Errorf("create receipt file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return "", fmt.Errorf("write receipt file: %w", err)
	}
	return name, nil
}

type goalsView struct {
	flash
	Goals []goalRow
}

func (s *Server) handleGoals(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.renderGoals(w, r, http.StatusOK, flash{})
	case http.MethodPost:
		s.createGoal(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) renderGoals(w http.ResponseWriter, r *http.Request, status int, f flash) {
	ov, err := s.ledger.Overview(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Overview error", "error", err)
		http.Error(w, "failed to load ledger", http.StatusInternalServerError)
		return
	}
	s.render(w, r, status, "goals.html", goalsView{flash: f, Goals: goalRows(ov.Progress)})
}

func (s *Server) createGoal(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "Parse form error", "error", err, "url", r.URL.Path)
		s.renderGoals(w, r, http.StatusBadRequest, flash{Error: "Invalid request format."})
		return
	}

	target, err := core.ParseTarget(r.Form.Get("target"))
	if err != nil {
		s.renderGoals(w, r, http.StatusUnprocessableEntity, flash{Error: "Target must be zero or a positive number."})
		return
	}
	name := sanitizeInput(r.Form.Get("name"))

	g := core.Goal{Name: name, Target: target}
	if _, err := s.ledger.AddGoal(r.Context(), g); err != nil {
		if errors.Is(err, core.ErrEmptyGoalName) {
			s.renderGoals(w, r, http.StatusUnprocessableEntity, flash{Error: "Goal name is required."})
			return
		}
		slog.ErrorContext(r.Context(), "Goal append error", "error", err, "name", name)
		s.renderGoals(w, r, http.StatusInternalServerError, flash{Error: "Failed to save goal."})
		return
	}

	http.Redirect(w, r, "/goals", http.StatusSeeOther)
}

type chatTurnView struct {
	Sender  string
	Message string
	IsUser  bool
}

type chatView struct {
	flash
	Turns []chatTurnView
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.renderChat(w, r, http.StatusOK, flash{})
	case http.MethodPost:
		s.createChatTurn(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) renderChat(w http.ResponseWriter, r *http.Request, status int, f flash) {
	history, err := s.chatter.History()
	if err != nil {
		slog.ErrorContext(r.Context(), "Chat history error", "error", err)
		http.Error(w, "failed to load chat history", http.StatusInternalServerError)
		return
	}

	view := chatView{flash: f}
	for _, turn := range history {
		view.Turns = append(view.Turns, chatTurnView{
			Sender:  turn.Sender,
			Message: turn.Message,
			IsUser:  turn.Sender == contextstore.SenderUser,
		})
	}
	s.render(w, r, status, "chat.html", view)
}

func (s *Server) createChatTurn(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "Parse form error", "error", err, "url", r.URL.Path)
		s.renderChat(w, r, http.StatusBadRequest, flash{Error: "Invalid request format."})
		return
	}

	message := sanitizeInput(r.Form.Get("message"))
	if message == "" {
		s.renderChat(w, r, http.StatusUnprocessableEntity, flash{Error: "Message cannot be empty."})
		return
	}

	if _, err := s.chatter.Chat(r.Context(), message); err != nil {
		slog.ErrorContext(r.Context(), "Chat turn error", "error", err)
		s.renderChat(w, r, http.StatusInternalServerError, flash{Error: "Failed to process the message."})
		return
	}

	http.Redirect(w, r, "/chat", http.StatusSeeOther)
}
