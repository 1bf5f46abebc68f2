package core

import (
	"errors"
	"strings"
)

type (
	Money struct {
		Cents int64
	}

	Income struct {
		ID     int64 // Database ID for operations
		Amount Money
		Source string
	}

	Expense struct {
		ID           int64
		Amount       Money
		Category     string
		Satisfaction int    // 1-5 rating
		Receipt      string // stored receipt filename, empty when none was uploaded
	}

	Goal struct {
		ID     int64
		Name   string
		Target Money
	}
)

var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrEmptySource         = errors.New("empty income source")
	ErrEmptyCategory       = errors.New("empty expense category")
	ErrEmptyGoalName       = errors.New("empty goal name")
	ErrInvalidSatisfaction = errors.New("satisfaction must be between 1 and 5")
	ErrNegativeTarget      = errors.New("negative goal target")
)

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Add returns the sum of two amounts.
func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

// Sub returns m minus o. The result may be negative.
func (m Money) Sub(o Money) Money {
	return Money{Cents: m.Cents - o.Cents}
}

func (in Income) Validate() error {
	if err := in.Amount.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(in.Source)) == 0 {
		return ErrEmptySource
	}
	if len(in.Source) > 100 {
		return errors.New("source too long (max 100 characters)")
	}
	return nil
}

func (e Expense) Validate() error {
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(e.Category)) == 0 {
		return ErrEmptyCategory
	}
	if len(e.Category) > 100 {
		return errors.New("category too long (max 100 characters)")
	}
	if e.Satisfaction < 1 || e.Satisfaction > 5 {
		return ErrInvalidSatisfaction
	}
	return nil
}

func (g Goal) Validate() error {
	if len(strings.TrimSpace(g.Name)) == 0 {
		return ErrEmptyGoalName
	}
	if len(g.Name) > 100 {
		return errors.New("goal name too long (max 100 characters)")
	}
	// A zero target is allowed and counts as already met.
	if g.Target.Cents < 0 {
		return ErrNegativeTarget
	}
	return nil
}

// TotalIncome sums all income amounts.
func TotalIncome(incomes []Income) Money {
	var total Money
	for _, in := range incomes {
		total = total.Add(in.Amount)
	}
	return total
}

// TotalExpenses sums all expense amounts.
func TotalExpenses(expenses []Expense) Money {
	var total Money
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total
}
