package services

import (
	"context"
	"fmt"
	"time"

	"facturi/internal/cache"
	"facturi/internal/core"
	"facturi/internal/storage"
)

const (
	reportCacheSize = 64
	reportCacheTTL  = 5 * time.Minute
)

// ReportService computes aggregated statistics, fronted by small TTL
// caches that writes purge.
type ReportService struct {
	storage   *storage.SQLiteRepository
	now       func() time.Time
	monthly   *cache.LRUCache[core.MonthlyStats]
	yearly    *cache.LRUCache[core.YearlyStats]
	dashboard *cache.LRUCache[core.DashboardStats]
}

func NewReportService(storage *storage.SQLiteRepository) *ReportService {
	return &ReportService{
		storage:   storage,
		now:       time.Now,
		monthly:   cache.NewLRUCache[core.MonthlyStats](reportCacheSize, reportCacheTTL),
		yearly:    cache.NewLRUCache[core.YearlyStats](reportCacheSize, reportCacheTTL),
		dashboard: cache.NewLRUCache[core.DashboardStats](1, reportCacheTTL),
	}
}

// WithClock overrides the service clock.
func (s *ReportService) WithClock(now func() time.Time) *ReportService {
	s.now = now
	return s
}

// RegisterCaches adds the report caches to a cleanup manager.
func (s *ReportService) RegisterCaches(m *cache.Manager) {
	m.Register(s.monthly)
	m.Register(s.yearly)
	m.Register(s.dashboard)
}

// Invalidate purges every cached report. Called after any write that
// changes transaction data.
func (s *ReportService) Invalidate() {
	s.monthly.Purge()
	s.yearly.Purge()
	s.dashboard.Purge()
}

func (s *ReportService) DashboardStats(ctx context.Context) (core.DashboardStats, error) {
	if stats, ok := s.dashboard.Get("dashboard"); ok {
		return stats, nil
	}

	totals, err := s.storage.DashboardTotals(ctx)
	if err != nil {
		return core.DashboardStats{}, err
	}

	stats := core.DashboardStats{
		TotalIncome:      totals.Income,
		TotalExpenses:    totals.Expense,
		Balance:          totals.Income - totals.Expense,
		TransactionCount: totals.Count,
	}
	s.dashboard.Set("dashboard", stats)
	return stats, nil
}

func (s *ReportService) MonthlyStats(ctx context.Context, year, month int) (core.MonthlyStats, error) {
	if month < 1 || month > 12 {
		return core.MonthlyStats{}, fmt.Errorf("%w: month %d out of range", core.ErrInvalidArgument, month)
	}

	key := fmt.Sprintf("%04d-%02d", year, month)
	if stats, ok := s.monthly.Get(key); ok {
		return stats, nil
	}

	totals, err := s.storage.MonthTotals(ctx, year, month)
	if err != nil {
		return core.MonthlyStats{}, err
	}

	breakdown, err := s.storage.MonthCategoryBreakdown(ctx, year, month)
	if err != nil {
		return core.MonthlyStats{}, err
	}
	core.ApplyBreakdownPercentages(breakdown)
	if breakdown == nil {
		breakdown = []core.CategoryBreakdown{}
	}

	stats := core.MonthlyStats{
		Month:             month,
		Year:              year,
		TotalIncome:       totals.Income,
		TotalExpenses:     totals.Expense,
		Balance:           totals.Income - totals.Expense,
		TransactionCount:  totals.Count,
		CategoryBreakdown: breakdown,
	}
	s.monthly.Set(key, stats)
	return stats, nil
}

// YearMonthlyStats computes stats for every month of the year, January
// first. Months without transactions still get a zeroed entry.
func (s *ReportService) YearMonthlyStats(ctx context.Context, year int) ([]core.MonthlyStats, error) {
	stats := make([]core.MonthlyStats, 0, 12)
	for month := 1; month <= 12; month++ {
		monthStats, err := s.MonthlyStats(ctx, year, month)
		if err != nil {
			return nil, err
		}
		stats = append(stats, monthStats)
	}
	return stats, nil
}

func (s *ReportService) YearlyStats(ctx context.Context, year int) (core.YearlyStats, error) {
	key := fmt.Sprintf("%04d", year)
	if stats, ok := s.yearly.Get(key); ok {
		return stats, nil
	}

	totals, err := s.storage.YearTotals(ctx, year)
	if err != nil {
		return core.YearlyStats{}, err
	}

	top, err := s.storage.YearTopCategory(ctx, year)
	if err != nil {
		return core.YearlyStats{}, err
	}

	stats := core.YearlyStats{
		Year:             year,
		TotalIncome:      totals.Income,
		TotalExpenses:    totals.Expense,
		Balance:          totals.Income - totals.Expense,
		TransactionCount: totals.Count,
		// Always a twelfth of the yearly total, even for partial years.
		AverageMonthlyExpense: totals.Expense / 12,
		TopCategory:           top,
	}
	s.yearly.Set(key, stats)
	return stats, nil
}

// YearlyComparison holds per-year stats plus the growth figures between
// the first and last requested year.
type YearlyComparison struct {
	Years  []core.YearlyStats `json:"years"`
	Trends core.YearlyTrends  `json:"trends"`
}

func (s *ReportService) YearlyComparison(ctx context.Context, startYear, endYear int) (YearlyComparison, error) {
	if startYear > endYear {
		return YearlyComparison{}, fmt.Errorf("%w: start year %d after end year %d", core.ErrInvalidArgument, startYear, endYear)
	}

	years := make([]core.YearlyStats, 0, endYear-startYear+1)
	for year := startYear; year <= endYear; year++ {
		stats, err := s.YearlyStats(ctx, year)
		if err != nil {
			return YearlyComparison{}, err
		}
		years = append(years, stats)
	}

	return YearlyComparison{
		Years:  years,
		Trends: core.TrendsBetween(years),
	}, nil
}

// CategoryTrends classifies each category's expense direction over the
// last N months. A non-zero categoryID narrows the report to that single
// category; otherwise every category is covered. Categories with no
// expenses in the window are skipped.
func (s *ReportService) CategoryTrends(ctx context.Context, months int, categoryID int64) ([]core.CategoryTrend, error) {
	if months <= 0 {
		return nil, fmt.Errorf("%w: months must be positive", core.ErrInvalidArgument)
	}

	var categories []core.Category
	if categoryID > 0 {
		category, err := s.storage.GetCategory(ctx, categoryID)
		if err != nil {
			return nil, err
		}
		categories = []core.Category{category}
	} else {
		var err error
		categories, err = s.storage.ListCategories(ctx)
		if err != nil {
			return nil, err
		}
	}

	now := s.now()
	from := now.AddDate(0, -months, 0).Format("2006-01-02")
	to := now.Format("2006-01-02")

	trends := make([]core.CategoryTrend, 0, len(categories))
	for _, category := range categories {
		series, err := s.storage.CategoryMonthlySeries(ctx, category.ID, from, to)
		if err != nil {
			return nil, err
		}
		if len(series) == 0 {
			continue
		}

		points := make([]core.MonthlyPoint, 0, len(series))
		amounts := make([]float64, 0, len(series))
		var total float64
		for _, p := range series {
			points = append(points, core.MonthlyPoint{
				Month:            p.Month,
				Year:             p.Year,
				Amount:           p.Amount,
				TransactionCount: p.Count,
			})
			amounts = append(amounts, p.Amount)
			total += p.Amount
		}

		trends = append(trends, core.CategoryTrend{
			CategoryID:     category.ID,
			CategoryName:   category.Name,
			MonthlyData:    points,
			TotalAmount:    total,
			AverageMonthly: core.AverageMonthly(total, len(series)),
			Trend:          core.ClassifyTrend(amounts),
		})
	}
	return trends, nil
}
