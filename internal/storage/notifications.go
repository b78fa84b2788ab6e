package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"facturi/internal/core"
)

func (r *SQLiteRepository) CreateNotification(ctx context.Context, n core.PaymentNotification) (core.PaymentNotification, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO payment_notifications (utility_id, notification_type, due_date, message)
		VALUES (?, ?, ?, ?)
		RETURNING id, utility_id, notification_type, due_date, message, is_read, created_at`,
		n.UtilityID, string(n.Type), fmtDate(n.DueDate), n.Message)
	return scanNotification(row)
}

// ListUnreadNotifications returns unread notifications whose due date has
// not passed yet, soonest first.
func (r *SQLiteRepository) ListUnreadNotifications(ctx context.Context, today string) ([]core.PaymentNotification, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, utility_id, notification_type, due_date, message, is_read, created_at
		FROM payment_notifications
		WHERE is_read = 0 AND due_date >= ?
		ORDER BY due_date`, today)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var out []core.PaymentNotification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) MarkNotificationRead(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE payment_notifications SET is_read = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: notification %d", core.ErrNotFound, id)
	}
	return nil
}

// AnnualPaymentParams describes a yearly payment to record together with
// its renewal reminder.
type AnnualPaymentParams struct {
	UtilityID   int64
	Amount      float64
	Description string
	PaymentDate string // "2006-01-02"
	DueDate     string // next renewal, "2006-01-02"
	Message     string
	Notify      bool
}

// CreateAnnualPayment inserts the expense transaction and, when the
// renewal window calls for it, the reminder notification in a single
// transaction.
func (r *SQLiteRepository) CreateAnnualPayment(ctx context.Context, p AnnualPaymentParams) (core.Transaction, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("begin annual payment: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, insertTransactionSQL,
		p.UtilityID, string(core.TransactionExpense), p.Amount, p.Description, p.PaymentDate)
	created, err := scanTransaction(row)
	if err != nil {
		return core.Transaction{}, err
	}

	if p.Notify {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO payment_notifications (utility_id, notification_type, due_date, message)
			VALUES (?, ?, ?, ?)`,
			p.UtilityID, string(core.NotificationAnnualPaymentDue), p.DueDate, p.Message); err != nil {
			return core.Transaction{}, fmt.Errorf("create renewal notification: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return core.Transaction{}, fmt.Errorf("commit annual payment: %w", err)
	}
	return created, nil
}

func scanNotification(s scanner) (core.PaymentNotification, error) {
	var (
		n       core.PaymentNotification
		ntype   string
		rawDate string
		isRead  int
	)
	if err := s.Scan(&n.ID, &n.UtilityID, &ntype, &rawDate, &n.Message, &isRead, &n.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.PaymentNotification{}, err
		}
		return core.PaymentNotification{}, fmt.Errorf("scan notification: %w", err)
	}
	n.Type = core.NotificationType(ntype)
	n.DueDate = parseDate(rawDate)
	n.IsRead = isRead != 0
	return n, nil
}
