package core

import (
	"errors"
	"testing"
)

func TestIncomeValidate(t *testing.T) {
	good := Income{Amount: Money{Cents: 100}, Source: "job"}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Income{Amount: Money{Cents: 0}, Source: "job"}).Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if err := (Income{Amount: Money{Cents: 100}, Source: "  "}).Validate(); !errors.Is(err, ErrEmptySource) {
		t.Fatalf("expected ErrEmptySource, got %v", err)
	}
}

func TestExpenseValidate(t *testing.T) {
	good := Expense{Amount: Money{Cents: 100}, Category: "food", Satisfaction: 3}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	bads := []Expense{
		{Amount: Money{Cents: 0}, Category: "food", Satisfaction: 3},
		{Amount: Money{Cents: 100}, Category: "", Satisfaction: 3},
		{Amount: Money{Cents: 100}, Category: "food", Satisfaction: 0},
		{Amount: Money{Cents: 100}, Category: "food", Satisfaction: 6},
	}
	for i, bad := range bads {
		if err := bad.Validate(); err == nil {
			t.Fatalf("case %d: expected error", i)
		}
	}
}

func TestGoalValidate(t *testing.T) {
	if err := (Goal{Name: "bike", Target: Money{Cents: 0}}).Validate(); err != nil {
		t.Fatalf("zero target should be valid, got %v", err)
	}
	if err := (Goal{Name: "", Target: Money{Cents: 100}}).Validate(); !errors.Is(err, ErrEmptyGoalName) {
		t.Fatalf("expected ErrEmptyGoalName, got %v", err)
	}
	if err := (Goal{Name: "bike", Target: Money{Cents: -1}}).Validate(); !errors.Is(err, ErrNegativeTarget) {
		t.Fatalf("expected ErrNegativeTarget, got %v", err)
	}
}

func TestTotals(t *testing.T) {
	incomes := []Income{
		{Amount: Money{Cents: 100_00}, Source: "job"},
		{Amount: Money{Cents: 25_50}, Source: "side"},
	}
	if got := TotalIncome(incomes); got.Cents != 125_50 {
		t.Fatalf("expected 12550, got %d", got.Cents)
	}
	expenses := []Expense{
		{Amount: Money{Cents: 10_00}, Category: "food", Satisfaction: 4},
		{Amount: Money{Cents: 5_25}, Category: "fun", Satisfaction: 5},
	}
	if got := TotalExpenses(expenses); got.Cents != 15_25 {
		t.Fatalf("expected 1525, got %d", got.Cents)
	}
	if got := TotalIncome(nil); got.Cents != 0 {
		t.Fatalf("expected 0 for empty ledger, got %d", got.Cents)
	}
}
