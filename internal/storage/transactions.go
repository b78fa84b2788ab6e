package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"facturi/internal/core"
)

// Sync lifecycle of a transaction row, mirrored by the export worker.
const (
	SyncPending = "pending"
	SyncSynced  = "synced"
	SyncError   = "error"
)

// PendingSyncTransaction is the minimal payload queued for ledger export.
type PendingSyncTransaction struct {
	ID        int64
	Version   int64
	CreatedAt time.Time
}

// TransactionExport carries everything the ledger row needs, joined with
// the owning utility and category names.
type TransactionExport struct {
	ID           int64
	Type         core.TransactionType
	Amount       float64
	Description  string
	Date         time.Time
	UtilityName  string
	CategoryName string
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if _, err := r.GetUtility(ctx, t.UtilityID); err != nil {
		return core.Transaction{}, err
	}
	row := r.db.QueryRowContext(ctx, insertTransactionSQL,
		t.UtilityID, string(t.Type), t.Amount, t.Description, fmtDate(t.Date))
	return scanTransaction(row)
}

const insertTransactionSQL = `
	INSERT INTO transactions (utility_id, type, amount, description, date)
	VALUES (?, ?, ?, ?, ?)
	RETURNING id, utility_id, type, amount, description, date, created_at`

func (r *SQLiteRepository) ListTransactionsByUtility(ctx context.Context, utilityID int64) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, utility_id, type, amount, description, date, created_at
		FROM transactions WHERE utility_id = ? ORDER BY date DESC`, utilityID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) SumTransactionsByUtility(ctx context.Context, utilityID int64) (float64, error) {
	var total float64
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount), 0.0) FROM transactions WHERE utility_id = ?`, utilityID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum transactions: %w", err)
	}
	return total, nil
}

// GetTransactionExport loads one transaction joined with utility and
// category names for the worker's ledger append.
func (r *SQLiteRepository) GetTransactionExport(ctx context.Context, id int64) (TransactionExport, error) {
	var (
		e       TransactionExport
		ttype   string
		rawDate string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT t.id, t.type, t.amount, t.description, t.date, u.name, c.name
		FROM transactions t
		JOIN utilities u ON t.utility_id = u.id
		JOIN categories c ON u.category_id = c.id
		WHERE t.id = ?`, id).
		Scan(&e.ID, &ttype, &e.Amount, &e.Description, &rawDate, &e.UtilityName, &e.CategoryName)
	if errors.Is(err, sql.ErrNoRows) {
		return TransactionExport{}, fmt.Errorf("%w: transaction %d", core.ErrNotFound, id)
	}
	if err != nil {
		return TransactionExport{}, fmt.Errorf("get transaction export: %w", err)
	}
	e.Type = core.TransactionType(ttype)
	e.Date = parseDate(rawDate)
	return e, nil
}

// GetPendingSyncTransactions returns transactions waiting for ledger export.
func (r *SQLiteRepository) GetPendingSyncTransactions(ctx context.Context, limit int) ([]PendingSyncTransaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, version, created_at FROM transactions
		WHERE sync_status = ? ORDER BY created_at LIMIT ?`, SyncPending, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending sync transactions: %w", err)
	}
	defer rows.Close()

	var out []PendingSyncTransaction
	for rows.Next() {
		var p PendingSyncTransaction
		if err := rows.Scan(&p.ID, &p.Version, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan pending sync transaction: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) MarkTransactionSynced(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET sync_status = ? WHERE id = ?`, SyncSynced, id); err != nil {
		return fmt.Errorf("mark transaction synced: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) MarkTransactionSyncError(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET sync_status = ? WHERE id = ?`, SyncError, id); err != nil {
		return fmt.Errorf("mark transaction sync error: %w", err)
	}
	return nil
}

func scanTransaction(s scanner) (core.Transaction, error) {
	var (
		t       core.Transaction
		ttype   string
		rawDate string
	)
	if err := s.Scan(&t.ID, &t.UtilityID, &ttype, &t.Amount, &t.Description, &rawDate, &t.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Transaction{}, err
		}
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	t.Type = core.TransactionType(ttype)
	t.Date = parseDate(rawDate)
	return t, nil
}
