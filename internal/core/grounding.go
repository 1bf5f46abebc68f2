package core

import (
	"fmt"
	"strings"
)

// recentWindow bounds how many ledger entries the grounding string
// carries per record type.
const recentWindow = 3

// AssembleContext renders the ledger state into a natural-language
// grounding string for the conversational model. The string carries the
// balance and totals, the last three incomes and expenses, and every
// goal's progress. It is consumed by text generation only and never
// parsed back, so readability wins over strictness.
func AssembleContext(incomes []Income, expenses []Expense, budget BudgetSummary, progress []GoalProgress) string {
	incomeParts := make([]string, 0, recentWindow)
	for _, in := range lastN(incomes, recentWindow) {
		incomeParts = append(incomeParts, fmt.Sprintf("$%s from %s", in.Amount, in.Source))
	}

	expenseParts := make([]string, 0, recentWindow)
	for _, e := range lastN(expenses, recentWindow) {
		expenseParts = append(expenseParts, fmt.Sprintf("$%s on %s", e.Amount, e.Category))
	}

	goalParts := make([]string, 0, len(progress))
	for _, p := range progress {
		goalParts = append(goalParts, fmt.Sprintf("%s: %.2f%% complete (%s)", p.Name, p.Percent, p.Status))
	}

	return fmt.Sprintf(
		"Current balance: $%s. Total income: $%s. Total expenses: $%s. "+
			"Recent incomes: %s. Recent expenses: %s. Goals: %s.",
		budget.Balance,
		budget.TotalIncome,
		budget.TotalExpense,
		strings.Join(incomeParts, ", "),
		strings.Join(expenseParts, ", "),
		strings.Join(goalParts, "; "),
	)
}

func lastN[T any](records []T, n int) []T {
	if len(records) <= n {
		return records
	}
	return records[len(records)-n:]
}
