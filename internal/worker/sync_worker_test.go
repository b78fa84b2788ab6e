package worker

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"facturi/internal/amqp"
	"facturi/internal/core"
	"facturi/internal/sheets/memory"
	"facturi/internal/storage"
)

func setupWorker(t *testing.T) (*SyncWorker, *storage.SQLiteRepository, *memory.Store) {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	ledger := memory.New()
	return NewSyncWorker(repo, ledger, 10), repo, ledger
}

func seedTransaction(t *testing.T, repo *storage.SQLiteRepository) core.Transaction {
	t.Helper()
	ctx := context.Background()

	cat, err := repo.CreateCategory(ctx, core.Category{Name: "Utilități", Color: "blue", Icon: "Zap"})
	require.NoError(t, err)
	util, err := repo.CreateUtility(ctx, core.Utility{
		CategoryID: cat.ID, Name: "Enel", Type: core.UtilitySimple,
	})
	require.NoError(t, err)

	tx, err := repo.CreateTransaction(ctx, core.Transaction{
		UtilityID: util.ID, Type: core.TransactionExpense,
		Amount: 120.5, Description: "Factura curent",
		Date: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return tx
}

func TestHandleSyncMessage(t *testing.T) {
	w, repo, ledger := setupWorker(t)
	ctx := context.Background()
	tx := seedTransaction(t, repo)

	err := w.HandleSyncMessage(ctx, amqp.NewTransactionSyncMessage(tx.ID, 1))
	require.NoError(t, err)

	rows := ledger.Rows()
	require.Len(t, rows, 1)
	require.Equal(t, "2024-03-10", rows[0].Date)
	require.Equal(t, "Factura curent", rows[0].Description)
	require.Equal(t, 120.5, rows[0].Amount)
	require.Equal(t, "expense", rows[0].Type)
	require.Equal(t, "Enel", rows[0].UtilityName)
	require.Equal(t, "Utilități", rows[0].CategoryName)

	pending, err := repo.GetPendingSyncTransactions(ctx, 10)
	require.NoError(t, err)
	require.Empty(t, pending)
}

func TestHandleSyncMessageMissingTransaction(t *testing.T) {
	w, _, ledger := setupWorker(t)

	err := w.HandleSyncMessage(context.Background(), amqp.NewTransactionSyncMessage(999, 1))
	require.Error(t, err)
	require.Empty(t, ledger.Rows())
}

func TestProcessPendingTransactions(t *testing.T) {
	w, repo, ledger := setupWorker(t)
	ctx := context.Background()
	seedTransaction(t, repo)

	require.NoError(t, w.ProcessPendingTransactions(ctx))
	require.Len(t, ledger.Rows(), 1)

	// A second pass finds nothing left to export.
	require.NoError(t, w.ProcessPendingTransactions(ctx))
	require.Len(t, ledger.Rows(), 1)
}

func TestAppendFailureMarksSyncError(t *testing.T) {
	w, repo, ledger := setupWorker(t)
	ctx := context.Background()
	tx := seedTransaction(t, repo)
	ledger.FailAppends(true)

	err := w.HandleSyncMessage(ctx, amqp.NewTransactionSyncMessage(tx.ID, 1))
	require.Error(t, err)

	// Marked error, no longer pending.
	pending, err := repo.GetPendingSyncTransactions(ctx, 10)
	require.NoError(t, err)
	require.Empty(t, pending)
}

func TestStartupSyncCheck(t *testing.T) {
	w, repo, ledger := setupWorker(t)
	ctx := context.Background()
	seedTransaction(t, repo)

	require.NoError(t, w.StartupSyncCheck(ctx))
	require.Len(t, ledger.Rows(), 1)
}
