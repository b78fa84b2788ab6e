package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"facturi/internal/core"
)

// CreateInstallmentPlan persists a whole schedule in one transaction so a
// failure partway through never leaves a partial plan behind.
func (r *SQLiteRepository) CreateInstallmentPlan(ctx context.Context, plan []core.Installment) ([]core.Installment, error) {
	if len(plan) == 0 {
		return nil, fmt.Errorf("%w: empty installment plan", core.ErrInvalidArgument)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin installment plan: %w", err)
	}
	defer tx.Rollback()

	out := make([]core.Installment, 0, len(plan))
	for _, inst := range plan {
		row := tx.QueryRowContext(ctx, `
			INSERT INTO installments (utility_id, installment_number, total_installments, amount, due_date, status)
			VALUES (?, ?, ?, ?, ?, ?)
			RETURNING id, utility_id, installment_number, total_installments, amount, due_date, paid_date, paid_amount, status, created_at`,
			inst.UtilityID, inst.InstallmentNumber, inst.TotalInstallments,
			inst.Amount, fmtDate(inst.DueDate), string(inst.Status))
		saved, err := scanInstallment(row)
		if err != nil {
			return nil, err
		}
		out = append(out, saved)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit installment plan: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) GetInstallment(ctx context.Context, id int64) (core.Installment, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, utility_id, installment_number, total_installments, amount, due_date, paid_date, paid_amount, status, created_at
		FROM installments WHERE id = ?`, id)
	inst, err := scanInstallment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Installment{}, fmt.Errorf("%w: installment %d", core.ErrNotFound, id)
	}
	return inst, err
}

func (r *SQLiteRepository) ListInstallmentsByUtility(ctx context.Context, utilityID int64) ([]core.Installment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, utility_id, installment_number, total_installments, amount, due_date, paid_date, paid_amount, status, created_at
		FROM installments WHERE utility_id = ? ORDER BY installment_number`, utilityID)
	if err != nil {
		return nil, fmt.Errorf("list installments: %w", err)
	}
	defer rows.Close()

	var out []core.Installment
	for rows.Next() {
		inst, err := scanInstallment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
	return out, rows.Err()
}

// PayInstallmentParams records one installment payment and its matching
// expense transaction.
type PayInstallmentParams struct {
	InstallmentID int64
	PaidDate      string // "2006-01-02"
	PaidAmount    float64
	Description   string
}

// PayInstallment marks an installment paid and inserts the expense
// transaction atomically. The guarded UPDATE makes a concurrent double
// payment impossible: whichever caller loses the race sees zero affected
// rows and gets ErrInvalidArgument.
func (r *SQLiteRepository) PayInstallment(ctx context.Context, p PayInstallmentParams) (core.Installment, error) {
	inst, err := r.GetInstallment(ctx, p.InstallmentID)
	if err != nil {
		return core.Installment{}, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Installment{}, fmt.Errorf("begin pay installment: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE installments SET status = ?, paid_date = ?, paid_amount = ?
		WHERE id = ? AND status != ?`,
		string(core.InstallmentPaid), p.PaidDate, p.PaidAmount,
		p.InstallmentID, string(core.InstallmentPaid))
	if err != nil {
		return core.Installment{}, fmt.Errorf("pay installment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return core.Installment{}, fmt.Errorf("pay installment: %w", err)
	}
	if affected == 0 {
		return core.Installment{}, fmt.Errorf("%w: installment %d already paid", core.ErrInvalidArgument, p.InstallmentID)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO transactions (utility_id, type, amount, description, date)
		VALUES (?, ?, ?, ?, ?)`,
		inst.UtilityID, string(core.TransactionExpense), p.PaidAmount, p.Description, p.PaidDate); err != nil {
		return core.Installment{}, fmt.Errorf("record installment payment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return core.Installment{}, fmt.Errorf("commit pay installment: %w", err)
	}
	return r.GetInstallment(ctx, p.InstallmentID)
}

func scanInstallment(s scanner) (core.Installment, error) {
	var (
		inst     core.Installment
		status   string
		rawDue   string
		rawPaid  sql.NullString
		paidAmnt sql.NullFloat64
	)
	if err := s.Scan(&inst.ID, &inst.UtilityID, &inst.InstallmentNumber, &inst.TotalInstallments,
		&inst.Amount, &rawDue, &rawPaid, &paidAmnt, &status, &inst.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Installment{}, err
		}
		return core.Installment{}, fmt.Errorf("scan installment: %w", err)
	}
	inst.Status = core.InstallmentStatus(status)
	inst.DueDate = parseDate(rawDue)
	if rawPaid.Valid {
		d := parseDate(rawPaid.String)
		inst.PaidDate = &d
	}
	if paidAmnt.Valid {
		v := paidAmnt.Float64
		inst.PaidAmount = &v
	}
	return inst, nil
}
