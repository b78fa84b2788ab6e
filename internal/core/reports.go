package core

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
)

type (
	Trend string

	// DashboardStats are the all-time totals shown on the dashboard.
	DashboardStats struct {
		TotalIncome      float64 `json:"totalIncome"`
		TotalExpenses    float64 `json:"totalExpenses"`
		Balance          float64 `json:"balance"`
		TransactionCount int     `json:"transactionCount"`
	}

	CategoryBreakdown struct {
		CategoryID   int64   `json:"categoryId"`
		CategoryName string  `json:"categoryName"`
		TotalAmount  float64 `json:"totalAmount"`
		Percentage   float64 `json:"percentage"`
	}

	MonthlyStats struct {
		Month             int                 `json:"month"`
		Year              int                 `json:"year"`
		TotalIncome       float64             `json:"totalIncome"`
		TotalExpenses     float64             `json:"totalExpenses"`
		Balance           float64             `json:"balance"`
		TransactionCount  int                 `json:"transactionCount"`
		CategoryBreakdown []CategoryBreakdown `json:"categoryBreakdown"`
	}

	TopCategory struct {
		Name   string  `json:"name"`
		Amount float64 `json:"amount"`
	}

	YearlyStats struct {
		Year                  int          `json:"year"`
		TotalIncome           float64      `json:"totalIncome"`
		TotalExpenses         float64      `json:"totalExpenses"`
		Balance               float64      `json:"balance"`
		TransactionCount      int          `json:"transactionCount"`
		AverageMonthlyExpense float64      `json:"averageMonthlyExpense"`
		TopCategory           *TopCategory `json:"topCategory"`
	}

	YearlyTrends struct {
		IncomeGrowth       float64 `json:"incomeGrowth"`
		ExpenseGrowth      float64 `json:"expenseGrowth"`
		BalanceImprovement float64 `json:"balanceImprovement"`
	}

	MonthlyPoint struct {
		Month            int     `json:"month"`
		Year             int     `json:"year"`
		Amount           float64 `json:"amount"`
		TransactionCount int     `json:"transactionCount"`
	}

	CategoryTrend struct {
		CategoryID     int64          `json:"categoryId"`
		CategoryName   string         `json:"categoryName"`
		MonthlyData    []MonthlyPoint `json:"monthlyData"`
		TotalAmount    float64        `json:"totalAmount"`
		AverageMonthly float64        `json:"averageMonthly"`
		Trend          Trend          `json:"trend"`
	}
)

// ApplyBreakdownPercentages fills each category's share of the breakdown
// total. Categories with zero in-period expense are expected to be excluded
// before this is called.
func ApplyBreakdownPercentages(breakdown []CategoryBreakdown) {
	var total float64
	for _, b := range breakdown {
		total += b.TotalAmount
	}
	if total <= 0 {
		return
	}
	for i := range breakdown {
		breakdown[i].Percentage = breakdown[i].TotalAmount / total * 100
	}
}

// TrendsBetween compares only the first and last year of a requested range.
// Growth percentages fall back to 0 when the first year's total is 0.
func TrendsBetween(years []YearlyStats) YearlyTrends {
	var t YearlyTrends
	if len(years) < 2 {
		return t
	}
	first, last := years[0], years[len(years)-1]
	if first.TotalIncome > 0 {
		t.IncomeGrowth = (last.TotalIncome - first.TotalIncome) / first.TotalIncome * 100
	}
	if first.TotalExpenses > 0 {
		t.ExpenseGrowth = (last.TotalExpenses - first.TotalExpenses) / first.TotalExpenses * 100
	}
	t.BalanceImprovement = last.Balance - first.Balance
	return t
}

// ClassifyTrend splits a monthly expense series in half by count
// (floor-divided) and compares the half averages: a change above +10% is
// increasing, below -10% decreasing, anything else stable. Series with
// fewer than 2 points are stable by definition.
func ClassifyTrend(amounts []float64) Trend {
	if len(amounts) < 2 {
		return TrendStable
	}
	mid := len(amounts) / 2
	firstAvg := average(amounts[:mid])
	secondAvg := average(amounts[mid:])
	if firstAvg <= 0 {
		return TrendStable
	}
	change := (secondAvg - firstAvg) / firstAvg * 100
	switch {
	case change > 10:
		return TrendIncreasing
	case change < -10:
		return TrendDecreasing
	default:
		return TrendStable
	}
}

// AverageMonthly divides by the number of months that actually have data,
// not by the requested window length.
func AverageMonthly(total float64, monthsWithData int) float64 {
	if monthsWithData == 0 {
		return 0
	}
	return total / float64(monthsWithData)
}

func average(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
