// Package services orchestrates ledger mutations: every append
// recomputes the derived snapshot from the full record set, persists it
// to the context store, and announces the mutation on AMQP.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/amqp"
	"fintrack/internal/contextstore"
	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// Overview is everything the home page renders in one read.
type Overview struct {
	Incomes  []core.Income
	Expenses []core.Expense
	Goals    []core.Goal
	Budget   core.BudgetSummary
	Progress []core.GoalProgress
}

type LedgerService struct {
	storage    *storage.SQLiteRepository
	store      *contextstore.Store
	amqpClient *amqp.Client
}

// NewLedgerService wires the ledger to the context store. The AMQP
// client may be nil; event publishing is then skipped.
func NewLedgerService(storage *storage.SQLiteRepository, store *contextstore.Store, amqpClient *amqp.Client) *LedgerService {
	return &LedgerService{
		storage:    storage,
		store:      store,
		amqpClient: amqpClient,
	}
}

// AddIncome appends an income record, refreshes the persisted snapshot
// and publishes a ledger event.
func (s *LedgerService) AddIncome(ctx context.Context, in core.Income) (int64, error) {
	if err := in.Validate(); err != nil {
		return 0, err
	}
	id, err := s.storage.AppendIncome(ctx, in)
	if err != nil {
		return 0, fmt.Errorf("save income: %w", err)
	}
	if err := s.refreshSnapshot(ctx); err != nil {
		return 0, err
	}
	s.publishEvent(ctx, amqp.KindIncome, id)
	return id, nil
}

// AddExpense appends an expense record, refreshes the persisted
// snapshot and publishes a ledger event.
func (s *LedgerService) AddExpense(ctx context.Context, e core.Expense) (int64, error) {
	if err := e.Validate(); err != nil {
		return 0, err
	}
	id, err := s.storage.AppendExpense(ctx, e)
	if err != nil {
		return 0, fmt.Errorf("save expense: %w", err)
	}
	if err := s.refreshSnapshot(ctx); err != nil {
		return 0, err
	}
	s.publishEvent(ctx, amqp.KindExpense, id)
	return id, nil
}

// AddGoal appends a savings goal, refreshes the persisted snapshot and
// publishes a ledger event.
func (s *LedgerService) AddGoal(ctx context.Context, g core.Goal) (int64, error) {
	if err := g.Validate(); err != nil {
		return 0, err
	}
	id, err := s.storage.AppendGoal(ctx, g)
	if err != nil {
		return 0, fmt.Errorf("save goal: %w", err)
	}
	if err := s.refreshSnapshot(ctx); err != nil {
		return 0, err
	}
	s.publishEvent(ctx, amqp.KindGoal, id)
	return id, nil
}

// Overview recomputes the derived state from the full record set. No
// totals are cached anywhere, so the numbers can never drift.
func (s *LedgerService) Overview(ctx context.Context) (Overview, error) {
	incomes, err := s.storage.ListIncomes(ctx)
	if err != nil {
		return Overview{}, fmt.Errorf("list incomes: %w", err)
	}
	expenses, err := s.storage.ListExpenses(ctx)
	if err != nil {
		return Overview{}, fmt.Errorf("list expenses: %w", err)
	}
	goals, err := s.storage.ListGoals(ctx)
	if err != nil {
		return Overview{}, fmt.Errorf("list goals: %w", err)
	}

	budget := core.EvaluateBudget(core.TotalIncome(incomes), core.TotalExpenses(expenses))
	return Overview{
		Incomes:  incomes,
		Expenses: expenses,
		Goals:    goals,
		Budget:   budget,
		Progress: core.EvaluateGoals(budget.Balance, goals),
	}, nil
}

// refreshSnapshot folds the current derived state into the context
// store. A persistence failure is fatal to the mutation.
func (s *LedgerService) refreshSnapshot(ctx context.Context) error {
	ov, err := s.Overview(ctx)
	if err != nil {
		return err
	}

	goals := make([]contextstore.GoalEntry, 0, len(ov.Goals))
	for _, g := range ov.Goals {
		goals = append(goals, contextstore.GoalEntry{Name: g.Name, Target: g.Target.Dollars()})
	}

	snap := contextstore.Snapshot{
		Budget: contextstore.BudgetSection{
			Status: string(ov.Budget.Status),
			Advice: ov.Budget.Advice,
		},
		TotalIncome:  ov.Budget.TotalIncome.Dollars(),
		TotalExpense: ov.Budget.TotalExpense.Dollars(),
		Balance:      ov.Budget.Balance.Dollars(),
		Goals:        goals,
	}
	if err := s.store.WriteSnapshot(snap); err != nil {
		return fmt.Errorf("write context snapshot: %w", err)
	}
	return nil
}

// publishEvent announces a mutation to the export worker. Failures are
// logged and swallowed: the record is already saved locally.
func (s *LedgerService) publishEvent(ctx context.Context, kind string, id int64) {
	if s.amqpClient == nil {
		return
	}
	if err := s.amqpClient.PublishLedgerEvent(ctx, kind, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"kind", kind,
			"id", id,
			"error", err)
	}
}

// Close closes storage and AMQP connections.
func (s *LedgerService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %v", errs)
	}
	return nil
}
