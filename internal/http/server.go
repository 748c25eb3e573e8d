// Package http serves the budget as a JSON API: categories and expenses CRUD
// plus the four report shapes, as JSON or as an xlsx workbook.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"regexp"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"homebudget/internal/amqp"
	"homebudget/internal/cache"
	"homebudget/internal/core"
	"homebudget/internal/log"
	"homebudget/internal/presenter"
	"homebudget/internal/services"
)

const (
	defaultReportCacheSize = 100
	defaultReportCacheTTL  = 5 * time.Minute
	cacheCleanupInterval   = 10 * time.Minute
	readyTimeout           = 5 * time.Second
)

// Service is what the API drives; *services.BudgetService implements it.
type Service interface {
	presenter.Service
	Expenses(ctx context.Context) ([]core.Expense, error)
	OnChange(fn services.ChangeListener)
}

// Options tune the server. Zero values pick defaults.
type Options struct {
	ReportCacheSize    int
	ReportCacheTTL     time.Duration
	MutationsPerMinute int
	Logger             *log.Logger
}

type Server struct {
	http.Server
	svc         Service
	logger      *log.Logger
	rateLimiter *rateLimiter
	startedAt   time.Time

	reports      *cache.LRUCache[[]byte]
	cacheManager *cache.Manager
	reportGen    atomic.Uint64
	flight       singleflight.Group

	suspicious   atomic.Int64
	shutdownOnce sync.Once
}

// NewServer configures routes and returns a ready-to-run server. Every
// committed change to the budget purges the report cache.
func NewServer(addr string, svc Service, opts Options) *Server {
	if opts.ReportCacheSize <= 0 {
		opts.ReportCacheSize = defaultReportCacheSize
	}
	if opts.ReportCacheTTL <= 0 {
		opts.ReportCacheTTL = defaultReportCacheTTL
	}
	if opts.Logger == nil {
		opts.Logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentHTTP)
	}

	s := &Server{
		svc:          svc,
		logger:       opts.Logger,
		rateLimiter:  newRateLimiter(opts.MutationsPerMinute),
		startedAt:    time.Now(),
		reports:      cache.NewLRUCache[[]byte](opts.ReportCacheSize, opts.ReportCacheTTL),
		cacheManager: cache.NewManager(),
	}
	s.cacheManager.Register(s.reports)
	s.cacheManager.StartCleanup(cacheCleanupInterval)

	svc.OnChange(func(context.Context, *amqp.BudgetChangedMessage) {
		s.InvalidateReports()
	})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/categories", s.handleListCategories)
	mux.HandleFunc("POST /api/categories", s.handleCreateCategory)
	mux.HandleFunc("POST /api/categories/reset", s.handleResetCategories)
	mux.HandleFunc("PUT /api/categories/{id}", s.handleUpdateCategory)
	mux.HandleFunc("DELETE /api/categories/{id}", s.handleDeleteCategory)

	mux.HandleFunc("GET /api/expenses", s.handleListExpenses)
	mux.HandleFunc("POST /api/expenses", s.handleCreateExpense)
	mux.HandleFunc("GET /api/expenses/{id}", s.handleGetExpense)
	mux.HandleFunc("PUT /api/expenses/{id}", s.handleUpdateExpense)
	mux.HandleFunc("DELETE /api/expenses/{id}", s.handleDeleteExpense)

	mux.HandleFunc("GET /api/report", s.handleReport)
	mux.HandleFunc("GET /api/report.xlsx", s.handleReportXLSX)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.withMiddleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// InvalidateReports drops every cached report. Reports being built when this
// is called are returned to their callers but not cached.
func (s *Server) InvalidateReports() {
	s.reportGen.Add(1)
	s.reports.Purge()
}

// Shutdown stops background cleanup and gracefully shuts the listener down.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

type contextKey string

const requestIDKey contextKey = "request_id"

// RequestID returns the id assigned to the request carrying ctx.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

var requestIDPattern = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

func generateRequestID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(b)
}

// withMiddleware applies, outermost first: request id and logging, security
// headers, then the per-IP limit on mutations.
func (s *Server) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)

		requestID := r.Header.Get("X-Request-ID")
		if !requestIDPattern.MatchString(requestID) {
			requestID = generateRequestID()
		}
		w.Header().Set("X-Request-ID", requestID)

		logger := s.logger.With(log.FieldRequestID, requestID)
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		ctx = log.NewContext(ctx, logger)
		r = r.WithContext(ctx)

		if isSuspicious(r) {
			s.suspicious.Add(1)
			logger.WarnContext(ctx, "Suspicious request",
				log.FieldClientIP, clientIP,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
		}

		applySecurityHeaders(w, r)
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		if isMutation(r.Method) && !s.rateLimiter.allow(clientIP) {
			logger.WithComponent(log.ComponentRateLimit).WarnContext(ctx, "Rate limit exceeded",
				log.FieldClientIP, clientIP,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
			rw.Header().Set("Retry-After", "60")
			writeError(rw, http.StatusTooManyRequests, "rate limit exceeded, try again later")
		} else {
			next.ServeHTTP(rw, r)
		}

		log.LogHTTPEnd(ctx, r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":              "ok",
		"uptime":              time.Since(s.startedAt).Round(time.Second).String(),
		"report_cache_size":   s.reports.Size(),
		"rate_limit_hits":     s.rateLimiter.hits.Load(),
		"suspicious_requests": s.suspicious.Load(),
	})
}

// handleReady checks that the budget file can still be read.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if _, err := s.svc.Categories(ctx); err != nil {
		log.FromContext(ctx).ErrorContext(ctx, "Readiness check failed", log.FieldError, err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not_ready",
			"budget": err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready", "budget": "ok"})
}
