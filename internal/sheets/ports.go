package sheets

import (
	"context"

	"fintrack/internal/core"
)

// LedgerExporter is the outbound port for pushing ledger records to an
// external spreadsheet.
type LedgerExporter interface {
	ExportIncome(ctx context.Context, in core.Income) error
	ExportExpense(ctx context.Context, e core.Expense) error
	ExportGoal(ctx context.Context, g core.Goal) error
}
