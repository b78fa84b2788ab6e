package worker

import (
	"context"
	"fmt"
	"log/slog"

	"facturi/internal/amqp"
	"facturi/internal/sheets"
	"facturi/internal/storage"
)

// SyncWorker exports transactions from SQLite to the ledger spreadsheet.
type SyncWorker struct {
	storage   *storage.SQLiteRepository
	ledger    sheets.LedgerAppender
	batchSize int
}

func NewSyncWorker(storage *storage.SQLiteRepository, ledger sheets.LedgerAppender, batchSize int) *SyncWorker {
	return &SyncWorker{
		storage:   storage,
		ledger:    ledger,
		batchSize: batchSize,
	}
}

// HandleSyncMessage exports the single transaction named by an AMQP message.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.TransactionSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"id", msg.ID,
		"version", msg.Version)

	return w.exportTransaction(ctx, msg.ID)
}

// ProcessPendingTransactions exports transactions still marked pending.
// This is a backup path for lost AMQP messages.
func (w *SyncWorker) ProcessPendingTransactions(ctx context.Context) error {
	pending, err := w.storage.GetPendingSyncTransactions(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending transactions: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending transactions", "count", len(pending))

	for _, p := range pending {
		if err := w.exportTransaction(ctx, p.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to sync transaction", "id", p.ID, "error", err)
			continue
		}
	}

	return nil
}

// StartupSyncCheck drains a larger pending backlog once, at worker start,
// to recover from downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	pending, err := w.storage.GetPendingSyncTransactions(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending transactions for startup check: %w", err)
	}

	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending transactions found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending transactions on startup, processing...",
		"count", len(pending))

	successCount := 0
	errorCount := 0

	for _, p := range pending {
		if err := w.exportTransaction(ctx, p.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to sync transaction during startup",
				"id", p.ID, "error", err)
			errorCount++
			continue
		}
		successCount++
	}

	slog.InfoContext(ctx, "Startup sync completed",
		"total", len(pending),
		"synced", successCount,
		"errors", errorCount)

	return nil
}

func (w *SyncWorker) exportTransaction(ctx context.Context, id int64) error {
	export, err := w.storage.GetTransactionExport(ctx, id)
	if err != nil {
		if markErr := w.storage.MarkTransactionSyncError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", id, "error", markErr)
		}
		return fmt.Errorf("get transaction export: %w", err)
	}

	row := sheets.LedgerRow{
		Date:         export.Date.Format("2006-01-02"),
		Description:  export.Description,
		Amount:       export.Amount,
		Type:         string(export.Type),
		UtilityName:  export.UtilityName,
		CategoryName: export.CategoryName,
	}

	ref, err := w.ledger.Append(ctx, row)
	if err != nil {
		if markErr := w.storage.MarkTransactionSyncError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", id, "error", markErr)
		}
		return fmt.Errorf("append to ledger: %w", err)
	}

	if err := w.storage.MarkTransactionSynced(ctx, id); err != nil {
		// The append succeeded, keep going.
		slog.ErrorContext(ctx, "Failed to mark as synced", "id", id, "error", err)
	}

	slog.InfoContext(ctx, "Successfully synced transaction",
		"id", id,
		"ledger_ref", ref,
		"description", export.Description,
		"amount", export.Amount)

	return nil
}
