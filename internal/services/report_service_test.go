package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"facturi/internal/core"
	"facturi/internal/storage"
)

func newReportFixture(t *testing.T) (*ReportService, *storage.SQLiteRepository) {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	svc := NewReportService(repo).
		WithClock(fixedClock(time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)))
	return svc, repo
}

func seedExpenses(t *testing.T, repo *storage.SQLiteRepository) (utilA, utilB core.Utility) {
	t.Helper()
	ctx := context.Background()

	catA, err := repo.CreateCategory(ctx, core.Category{Name: "Utilități", Color: "blue", Icon: "Zap"})
	require.NoError(t, err)
	catB, err := repo.CreateCategory(ctx, core.Category{Name: "Abonamente", Color: "purple", Icon: "Play"})
	require.NoError(t, err)

	utilA, err = repo.CreateUtility(ctx, core.Utility{CategoryID: catA.ID, Name: "Enel", Type: core.UtilitySimple})
	require.NoError(t, err)
	utilB, err = repo.CreateUtility(ctx, core.Utility{CategoryID: catB.ID, Name: "Netflix", Type: core.UtilitySimple})
	require.NoError(t, err)

	add := func(u core.Utility, ttype core.TransactionType, amount float64, date string) {
		d, err := time.Parse("2006-01-02", date)
		require.NoError(t, err)
		_, err = repo.CreateTransaction(ctx, core.Transaction{
			UtilityID: u.ID, Type: ttype, Amount: amount, Date: d,
		})
		require.NoError(t, err)
	}

	add(utilA, core.TransactionExpense, 300, "2024-03-10")
	add(utilB, core.TransactionExpense, 100, "2024-03-20")
	add(utilA, core.TransactionIncome, 500, "2024-03-01")
	add(utilA, core.TransactionExpense, 200, "2023-06-15")
	add(utilA, core.TransactionIncome, 250, "2023-06-01")
	return utilA, utilB
}

func TestMonthlyStatsWithBreakdown(t *testing.T) {
	svc, repo := newReportFixture(t)
	seedExpenses(t, repo)

	stats, err := svc.MonthlyStats(context.Background(), 2024, 3)
	require.NoError(t, err)
	require.Equal(t, 500.0, stats.TotalIncome)
	require.Equal(t, 400.0, stats.TotalExpenses)
	require.Equal(t, 100.0, stats.Balance)
	require.Equal(t, 3, stats.TransactionCount)

	require.Len(t, stats.CategoryBreakdown, 2)
	require.Equal(t, "Utilități", stats.CategoryBreakdown[0].CategoryName)
	require.Equal(t, 75.0, stats.CategoryBreakdown[0].Percentage)
	require.Equal(t, 25.0, stats.CategoryBreakdown[1].Percentage)
}

func TestMonthlyStatsEmptyMonth(t *testing.T) {
	svc, repo := newReportFixture(t)
	seedExpenses(t, repo)

	stats, err := svc.MonthlyStats(context.Background(), 2024, 1)
	require.NoError(t, err)
	require.Zero(t, stats.TotalExpenses)
	require.Empty(t, stats.CategoryBreakdown)
}

func TestMonthlyStatsRejectsBadMonth(t *testing.T) {
	svc, _ := newReportFixture(t)

	_, err := svc.MonthlyStats(context.Background(), 2024, 13)
	require.ErrorIs(t, err, core.ErrInvalidArgument)
}

func TestYearlyStats(t *testing.T) {
	svc, repo := newReportFixture(t)
	seedExpenses(t, repo)

	stats, err := svc.YearlyStats(context.Background(), 2024)
	require.NoError(t, err)
	require.Equal(t, 400.0, stats.TotalExpenses)
	require.Equal(t, 500.0, stats.TotalIncome)
	require.InDelta(t, 400.0/12, stats.AverageMonthlyExpense, 1e-9)
	require.NotNil(t, stats.TopCategory)
	require.Equal(t, "Utilități", stats.TopCategory.Name)
	require.Equal(t, 300.0, stats.TopCategory.Amount)
}

func TestYearlyStatsNoData(t *testing.T) {
	svc, repo := newReportFixture(t)
	seedExpenses(t, repo)

	stats, err := svc.YearlyStats(context.Background(), 2020)
	require.NoError(t, err)
	require.Zero(t, stats.TotalExpenses)
	require.Nil(t, stats.TopCategory)
}

func TestYearlyComparison(t *testing.T) {
	svc, repo := newReportFixture(t)
	seedExpenses(t, repo)

	cmp, err := svc.YearlyComparison(context.Background(), 2023, 2024)
	require.NoError(t, err)
	require.Len(t, cmp.Years, 2)

	// 2023: income 250, expenses 200. 2024: income 500, expenses 400.
	require.Equal(t, 100.0, cmp.Trends.IncomeGrowth)
	require.Equal(t, 100.0, cmp.Trends.ExpenseGrowth)
	require.Equal(t, 50.0, cmp.Trends.BalanceImprovement)
}

func TestYearlyComparisonRejectsReversedRange(t *testing.T) {
	svc, _ := newReportFixture(t)

	_, err := svc.YearlyComparison(context.Background(), 2024, 2023)
	require.ErrorIs(t, err, core.ErrInvalidArgument)
}

func TestDashboardStats(t *testing.T) {
	svc, repo := newReportFixture(t)
	seedExpenses(t, repo)

	stats, err := svc.DashboardStats(context.Background())
	require.NoError(t, err)
	require.Equal(t, 750.0, stats.TotalIncome)
	require.Equal(t, 600.0, stats.TotalExpenses)
	require.Equal(t, 150.0, stats.Balance)
	require.Equal(t, 5, stats.TransactionCount)
}

func TestDashboardCacheInvalidation(t *testing.T) {
	svc, repo := newReportFixture(t)
	utilA, _ := seedExpenses(t, repo)
	ctx := context.Background()

	before, err := svc.DashboardStats(ctx)
	require.NoError(t, err)

	_, err = repo.CreateTransaction(ctx, core.Transaction{
		UtilityID: utilA.ID, Type: core.TransactionExpense,
		Amount: 1000, Date: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	// Cached until invalidated.
	cached, err := svc.DashboardStats(ctx)
	require.NoError(t, err)
	require.Equal(t, before, cached)

	svc.Invalidate()

	fresh, err := svc.DashboardStats(ctx)
	require.NoError(t, err)
	require.Equal(t, before.TotalExpenses+1000, fresh.TotalExpenses)
}

func TestCategoryTrends(t *testing.T) {
	svc, repo := newReportFixture(t)
	ctx := context.Background()

	cat, err := repo.CreateCategory(ctx, core.Category{Name: "Utilități", Color: "blue", Icon: "Zap"})
	require.NoError(t, err)
	util, err := repo.CreateUtility(ctx, core.Utility{CategoryID: cat.ID, Name: "Enel", Type: core.UtilitySimple})
	require.NoError(t, err)

	// First half of the window averages 100, second half 200.
	for _, m := range []struct {
		date   string
		amount float64
	}{
		{"2024-07-10", 100},
		{"2024-08-10", 100},
		{"2024-09-10", 200},
		{"2024-10-10", 200},
	} {
		d, err := time.Parse("2006-01-02", m.date)
		require.NoError(t, err)
		_, err = repo.CreateTransaction(ctx, core.Transaction{
			UtilityID: util.ID, Type: core.TransactionExpense, Amount: m.amount, Date: d,
		})
		require.NoError(t, err)
	}

	trends, err := svc.CategoryTrends(ctx, 6, 0)
	require.NoError(t, err)
	require.Len(t, trends, 1)
	require.Equal(t, "Utilități", trends[0].CategoryName)
	require.Equal(t, 600.0, trends[0].TotalAmount)
	require.Equal(t, 150.0, trends[0].AverageMonthly)
	require.Equal(t, core.TrendIncreasing, trends[0].Trend)
	require.Len(t, trends[0].MonthlyData, 4)
}

func TestCategoryTrendsSingleCategoryFilter(t *testing.T) {
	svc, repo := newReportFixture(t)
	utilA, utilB := seedExpenses(t, repo)
	ctx := context.Background()

	// Both categories have 2024 expenses, the filter keeps only Netflix's.
	trends, err := svc.CategoryTrends(ctx, 12, utilB.CategoryID)
	require.NoError(t, err)
	require.Len(t, trends, 1)
	require.Equal(t, "Abonamente", trends[0].CategoryName)
	require.Equal(t, 100.0, trends[0].TotalAmount)

	trends, err = svc.CategoryTrends(ctx, 12, utilA.CategoryID)
	require.NoError(t, err)
	require.Len(t, trends, 1)
	require.Equal(t, "Utilități", trends[0].CategoryName)
	require.Equal(t, 300.0, trends[0].TotalAmount)
}

func TestCategoryTrendsUnknownCategory(t *testing.T) {
	svc, _ := newReportFixture(t)

	_, err := svc.CategoryTrends(context.Background(), 6, 9999)
	require.ErrorIs(t, err, core.ErrNotFound)
}

func TestCategoryTrendsSkipsQuietCategories(t *testing.T) {
	svc, repo := newReportFixture(t)
	ctx := context.Background()

	_, err := repo.CreateCategory(ctx, core.Category{Name: "Gol", Color: "gray", Icon: "Settings"})
	require.NoError(t, err)

	trends, err := svc.CategoryTrends(ctx, 6, 0)
	require.NoError(t, err)
	require.Empty(t, trends)
}

func TestYearMonthlyStats(t *testing.T) {
	svc, repo := newReportFixture(t)
	seedExpenses(t, repo)

	stats, err := svc.YearMonthlyStats(context.Background(), 2024)
	require.NoError(t, err)
	require.Len(t, stats, 12)
	require.Equal(t, 1, stats[0].Month)
	require.Equal(t, 12, stats[11].Month)

	march := stats[2]
	require.Equal(t, 3, march.Month)
	require.Equal(t, 500.0, march.TotalIncome)
	require.Equal(t, 400.0, march.TotalExpenses)

	// Quiet months still get an entry.
	require.Zero(t, stats[0].TotalExpenses)
	require.Empty(t, stats[0].CategoryBreakdown)
}
