package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"facturi/internal/core"
)

// Totals are aggregated income and expense figures over some period.
type Totals struct {
	Income  float64
	Expense float64
	Count   int
}

const totalsSQL = `
	SELECT
		COALESCE(SUM(CASE WHEN type = 'income' THEN amount ELSE 0 END), 0.0),
		COALESCE(SUM(CASE WHEN type = 'expense' THEN amount ELSE 0 END), 0.0),
		COUNT(*)
	FROM transactions`

func (r *SQLiteRepository) DashboardTotals(ctx context.Context) (Totals, error) {
	var t Totals
	if err := r.db.QueryRowContext(ctx, totalsSQL).Scan(&t.Income, &t.Expense, &t.Count); err != nil {
		return Totals{}, fmt.Errorf("dashboard totals: %w", err)
	}
	return t, nil
}

func (r *SQLiteRepository) MonthTotals(ctx context.Context, year, month int) (Totals, error) {
	var t Totals
	err := r.db.QueryRowContext(ctx,
		totalsSQL+` WHERE strftime('%Y-%m', date) = ?`, yearMonth(year, month)).
		Scan(&t.Income, &t.Expense, &t.Count)
	if err != nil {
		return Totals{}, fmt.Errorf("month totals: %w", err)
	}
	return t, nil
}

func (r *SQLiteRepository) YearTotals(ctx context.Context, year int) (Totals, error) {
	var t Totals
	err := r.db.QueryRowContext(ctx,
		totalsSQL+` WHERE strftime('%Y', date) = ?`, strconv.Itoa(year)).
		Scan(&t.Income, &t.Expense, &t.Count)
	if err != nil {
		return Totals{}, fmt.Errorf("year totals: %w", err)
	}
	return t, nil
}

// MonthCategoryBreakdown sums a month's expenses per category. Categories
// without expenses in the month are left out entirely.
func (r *SQLiteRepository) MonthCategoryBreakdown(ctx context.Context, year, month int) ([]core.CategoryBreakdown, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id, c.name, COALESCE(SUM(t.amount), 0.0) AS total
		FROM categories c
		JOIN utilities u ON u.category_id = c.id
		JOIN transactions t ON t.utility_id = u.id
		WHERE t.type = 'expense' AND strftime('%Y-%m', t.date) = ?
		GROUP BY c.id, c.name
		HAVING total > 0
		ORDER BY total DESC`, yearMonth(year, month))
	if err != nil {
		return nil, fmt.Errorf("month category breakdown: %w", err)
	}
	defer rows.Close()

	var out []core.CategoryBreakdown
	for rows.Next() {
		var b core.CategoryBreakdown
		if err := rows.Scan(&b.CategoryID, &b.CategoryName, &b.TotalAmount); err != nil {
			return nil, fmt.Errorf("scan category breakdown: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// YearTopCategory finds the category with the highest expense total in a
// year. Ties go to the alphabetically first name. Years with no expenses
// return nil.
func (r *SQLiteRepository) YearTopCategory(ctx context.Context, year int) (*core.TopCategory, error) {
	var top core.TopCategory
	err := r.db.QueryRowContext(ctx, `
		SELECT c.name, SUM(t.amount) AS total
		FROM categories c
		JOIN utilities u ON u.category_id = c.id
		JOIN transactions t ON t.utility_id = u.id
		WHERE t.type = 'expense' AND strftime('%Y', t.date) = ?
		GROUP BY c.id, c.name
		ORDER BY total DESC, c.name ASC
		LIMIT 1`, strconv.Itoa(year)).Scan(&top.Name, &top.Amount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("year top category: %w", err)
	}
	return &top, nil
}

// MonthlyExpensePoint is one month of a category's expense history.
type MonthlyExpensePoint struct {
	Year   int
	Month  int
	Amount float64
	Count  int
}

// CategoryMonthlySeries returns a category's expense totals per calendar
// month inside [from, to], months without spending omitted, oldest first.
// Bounds are "2006-01-02" strings compared lexically against stored dates.
func (r *SQLiteRepository) CategoryMonthlySeries(ctx context.Context, categoryID int64, from, to string) ([]MonthlyExpensePoint, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT CAST(strftime('%Y', t.date) AS INTEGER),
		       CAST(strftime('%m', t.date) AS INTEGER),
		       SUM(t.amount), COUNT(*)
		FROM transactions t
		JOIN utilities u ON t.utility_id = u.id
		WHERE u.category_id = ? AND t.type = 'expense' AND t.date >= ? AND t.date <= ?
		GROUP BY strftime('%Y-%m', t.date)
		ORDER BY strftime('%Y-%m', t.date)`, categoryID, from, to)
	if err != nil {
		return nil, fmt.Errorf("category monthly series: %w", err)
	}
	defer rows.Close()

	var out []MonthlyExpensePoint
	for rows.Next() {
		var p MonthlyExpensePoint
		if err := rows.Scan(&p.Year, &p.Month, &p.Amount, &p.Count); err != nil {
			return nil, fmt.Errorf("scan monthly point: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func yearMonth(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}
