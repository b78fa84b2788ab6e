package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"facturi/internal/auth"
	"facturi/internal/cache"
	"facturi/internal/logos"
	"facturi/internal/middleware/ratelimit"
	"facturi/internal/middleware/security"
	"facturi/internal/middleware/trace"
	"facturi/internal/services"
	"facturi/internal/storage"
)

// Paths reachable without credentials.
var authExempt = []string{"/healthz", "/readyz", "/logos/", "/auth/login"}

const reportCleanupInterval = 10 * time.Minute

type Server struct {
	http.Server

	repo      *storage.SQLiteRepository
	payments  *services.PaymentService
	reports   *services.ReportService
	logoStore logos.Store
	verifier  auth.Verifier

	limiter      *ratelimit.Limiter
	cacheManager *cache.Manager
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(
	addr string,
	repo *storage.SQLiteRepository,
	payments *services.PaymentService,
	reports *services.ReportService,
	logoStore logos.Store,
	verifier auth.Verifier,
) *Server {
	mux := http.NewServeMux()

	s := &Server{
		repo:         repo,
		payments:     payments,
		reports:      reports,
		logoStore:    logoStore,
		verifier:     verifier,
		limiter:      ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		cacheManager: cache.NewManager(),
	}
	reports.RegisterCaches(s.cacheManager)
	s.cacheManager.StartCleanup(reportCleanupInterval)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("POST /auth/login", s.handleLogin)

	mux.HandleFunc("POST /categories", s.handleCreateCategory)
	mux.HandleFunc("GET /categories", s.handleListCategories)
	mux.HandleFunc("PUT /categories/{id}", s.handleUpdateCategory)
	mux.HandleFunc("DELETE /categories/{id}", s.handleDeleteCategory)
	mux.HandleFunc("GET /categories/{id}/utilities", s.handleListUtilities)

	mux.HandleFunc("POST /utilities", s.handleCreateUtility)
	mux.HandleFunc("PUT /utilities/{id}", s.handleUpdateUtility)
	mux.HandleFunc("DELETE /utilities/{id}", s.handleDeleteUtility)
	mux.HandleFunc("POST /utilities/{id}/logo", s.handleUploadLogo)
	mux.HandleFunc("DELETE /utilities/{id}/logo", s.handleDeleteLogo)

	mux.HandleFunc("POST /transactions", s.handleCreateTransaction)
	mux.HandleFunc("POST /installments", s.handleCreateInstallmentPlan)
	mux.HandleFunc("POST /installments/{id}/pay", s.handlePayInstallment)
	mux.HandleFunc("GET /utilities/{id}/installments", s.handleListInstallments)
	mux.HandleFunc("POST /annual-payments", s.handleCreateAnnualPayment)
	mux.HandleFunc("POST /consumption-readings", s.handleCreateReading)
	mux.HandleFunc("GET /utilities/{id}/consumption", s.handleListReadings)

	mux.HandleFunc("GET /dashboard/stats", s.handleDashboardStats)
	mux.HandleFunc("GET /reports/monthly", s.handleMonthlyReport)
	mux.HandleFunc("GET /reports/yearly", s.handleYearlyReport)
	mux.HandleFunc("GET /reports/category-trends", s.handleCategoryTrends)

	mux.HandleFunc("GET /notifications", s.handleListNotifications)
	mux.HandleFunc("POST /notifications/{id}/read", s.handleMarkNotificationRead)

	if disk, ok := logoStore.(*logos.DiskStore); ok {
		files := http.StripPrefix("/logos/", http.FileServer(http.Dir(disk.Dir())))
		mux.Handle("GET /logos/", security.StaticAssetMiddleware(3600)(files))
	}

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	tracer := trace.NewMiddleware(extractClientIP)

	var handler http.Handler = mux
	handler = s.requireAuth(handler)
	handler = s.limitMutations(handler)
	handler = headers.Middleware(handler)
	handler = tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:    addr,
		Handler: handler,
	}
	return s
}

// Shutdown stops background goroutines then drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	s.cacheManager.Stop()
	return s.Server.Shutdown(ctx)
}

// requireAuth enforces HTTP Basic credentials on everything outside the
// exempt list.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, prefix := range authExempt {
			if r.URL.Path == prefix || (strings.HasSuffix(prefix, "/") && strings.HasPrefix(r.URL.Path, prefix)) {
				next.ServeHTTP(w, r)
				return
			}
		}

		username, password, err := auth.ParseBasicHeader(r.Header.Get("Authorization"))
		if err == nil {
			err = s.verifier.Verify(username, password)
		}
		if err != nil {
			w.Header().Set("WWW-Authenticate", `Basic realm="facturi"`)
			writeError(w, r, err)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// limitMutations rate limits write requests per client IP. Reads pass
// through untouched.
func (s *Server) limitMutations(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && !s.limiter.Allow(extractClientIP(r)) {
			slog.WarnContext(r.Context(), "Rate limit exceeded",
				"client_ip", extractClientIP(r),
				"method", r.Method,
				"path", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func extractClientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, err := s.repo.ListCategories(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
