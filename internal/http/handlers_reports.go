package http

import (
	"net/http"
	"time"

	"facturi/internal/core"
)

func (s *Server) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.reports.DashboardStats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleMonthlyReport serves one month when asked for, or the whole
// year month by month when the month parameter is omitted.
func (s *Server) handleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	year, err := queryInt(r, "year", time.Now().Year())
	if err != nil {
		writeError(w, r, err)
		return
	}
	month, err := queryInt(r, "month", 0)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var stats []core.MonthlyStats
	if month == 0 {
		stats, err = s.reports.YearMonthlyStats(r.Context(), year)
	} else {
		var monthStats core.MonthlyStats
		monthStats, err = s.reports.MonthlyStats(r.Context(), year, month)
		stats = []core.MonthlyStats{monthStats}
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"stats": stats})
}

func (s *Server) handleYearlyReport(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	endYear, err := queryInt(r, "endYear", now.Year())
	if err != nil {
		writeError(w, r, err)
		return
	}
	startYear, err := queryInt(r, "startYear", endYear-2)
	if err != nil {
		writeError(w, r, err)
		return
	}

	comparison, err := s.reports.YearlyComparison(r.Context(), startYear, endYear)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, comparison)
}

func (s *Server) handleCategoryTrends(w http.ResponseWriter, r *http.Request) {
	months, err := queryInt(r, "months", 6)
	if err != nil {
		writeError(w, r, err)
		return
	}
	categoryID, err := queryInt(r, "categoryId", 0)
	if err != nil {
		writeError(w, r, err)
		return
	}

	trends, err := s.reports.CategoryTrends(r.Context(), months, int64(categoryID))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if trends == nil {
		trends = []core.CategoryTrend{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": trends})
}
