package core

type BudgetStatus string

const (
	StatusUnknown  BudgetStatus = "Unknown"
	StatusNoIncome BudgetStatus = "No Income"
	StatusDeficit  BudgetStatus = "Deficit"
	StatusWarning  BudgetStatus = "Warning"
	StatusHealthy  BudgetStatus = "Healthy"
)

// BudgetSummary is the health verdict derived from ledger totals.
// It is recomputed from the full record set on every read and never
// cached in memory.
type BudgetSummary struct {
	TotalIncome  Money
	TotalExpense Money
	Balance      Money
	Status       BudgetStatus
	Advice       string
}

// EvaluateBudget classifies the totals with ordered rules, first match
// wins: no income at all, expenses exceeding income, expenses over 70%
// of income, otherwise healthy.
func EvaluateBudget(totalIncome, totalExpense Money) BudgetSummary {
	summary := BudgetSummary{
		TotalIncome:  totalIncome,
		TotalExpense: totalExpense,
		Balance:      totalIncome.Sub(totalExpense),
	}

	switch {
	case totalIncome.Cents == 0:
		summary.Status = StatusNoIncome
		summary.Advice = "add income sources to get started."
	case totalExpense.Cents > totalIncome.Cents:
		summary.Status = StatusDeficit
		summary.Advice = "reduce spending."
	case totalExpense.Cents*10 > totalIncome.Cents*7:
		summary.Status = StatusWarning
		summary.Advice = "spending over 70% of income."
	default:
		summary.Status = StatusHealthy
		summary.Advice = "budget looks good."
	}

	return summary
}
