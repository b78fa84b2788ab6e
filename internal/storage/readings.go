package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"facturi/internal/core"
)

func (r *SQLiteRepository) CreateConsumptionReading(ctx context.Context, cr core.ConsumptionReading) (core.ConsumptionReading, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO consumption_readings (utility_id, reading_date, previous_reading, current_reading, consumption, unit, total_amount)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id, utility_id, reading_date, previous_reading, current_reading, consumption, unit, total_amount, created_at`,
		cr.UtilityID, fmtDate(cr.ReadingDate), cr.PreviousReading, cr.CurrentReading,
		cr.Consumption, cr.Unit, cr.TotalAmount)
	return scanReading(row)
}

func (r *SQLiteRepository) ListConsumptionReadingsByUtility(ctx context.Context, utilityID int64) ([]core.ConsumptionReading, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, utility_id, reading_date, previous_reading, current_reading, consumption, unit, total_amount, created_at
		FROM consumption_readings WHERE utility_id = ? ORDER BY reading_date DESC`, utilityID)
	if err != nil {
		return nil, fmt.Errorf("list consumption readings: %w", err)
	}
	defer rows.Close()

	var out []core.ConsumptionReading
	for rows.Next() {
		cr, err := scanReading(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, cr)
	}
	return out, rows.Err()
}

func scanReading(s scanner) (core.ConsumptionReading, error) {
	var (
		cr      core.ConsumptionReading
		rawDate string
	)
	if err := s.Scan(&cr.ID, &cr.UtilityID, &rawDate, &cr.PreviousReading, &cr.CurrentReading,
		&cr.Consumption, &cr.Unit, &cr.TotalAmount, &cr.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.ConsumptionReading{}, err
		}
		return core.ConsumptionReading{}, fmt.Errorf("scan consumption reading: %w", err)
	}
	cr.ReadingDate = parseDate(rawDate)
	return cr, nil
}
