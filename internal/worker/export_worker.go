// Package worker moves appended ledger records to the configured
// spreadsheet, driven by AMQP ledger events.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/amqp"
	"fintrack/internal/sheets"
	"fintrack/internal/storage"
)

type ExportWorker struct {
	storage  *storage.SQLiteRepository
	exporter sheets.LedgerExporter
}

func NewExportWorker(storage *storage.SQLiteRepository, exporter sheets.LedgerExporter) *ExportWorker {
	return &ExportWorker{
		storage:  storage,
		exporter: exporter,
	}
}

// HandleLedgerEvent loads the record named by the event and exports it.
// Errors propagate to the consumer, which nacks and requeues.
func (w *ExportWorker) HandleLedgerEvent(ctx context.Context, msg *amqp.LedgerEventMessage) error {
	slog.InfoContext(ctx, "Processing ledger event", "kind", msg.Kind, "id", msg.ID)

	switch msg.Kind {
	case amqp.KindIncome:
		in, err := w.storage.GetIncome(ctx, msg.ID)
		if err != nil {
			return fmt.Errorf("load income: %w", err)
		}
		if err := w.exporter.ExportIncome(ctx, in); err != nil {
			return fmt.Errorf("export income: %w", err)
		}
	case amqp.KindExpense:
		e, err := w.storage.GetExpense(ctx, msg.ID)
		if err != nil {
			return fmt.Errorf("load expense: %w", err)
		}
		if err := w.exporter.ExportExpense(ctx, e); err != nil {
			return fmt.Errorf("export expense: %w", err)
		}
	case amqp.KindGoal:
		g, err := w.storage.GetGoal(ctx, msg.ID)
		if err != nil {
			return fmt.Errorf("load goal: %w", err)
		}
		if err := w.exporter.ExportGoal(ctx, g); err != nil {
			return fmt.Errorf("export goal: %w", err)
		}
	default:
		// Unknown kinds are dropped rather than requeued forever.
		slog.WarnContext(ctx, "Ignoring ledger event with unknown kind", "kind", msg.Kind, "id", msg.ID)
	}

	return nil
}
