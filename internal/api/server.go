// Package api serves inspection lookups, comparisons, and charts over HTTP
// for a dashboard front end.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/inspect-cli/internal/compare"
	"github.com/sells-group/inspect-cli/internal/config"
	"github.com/sells-group/inspect-cli/internal/dataset"
	"github.com/sells-group/inspect-cli/internal/report"
	"github.com/sells-group/inspect-cli/internal/store"
)

// Server holds the loaded dataset and the services the handlers use. The
// dataset is read-only, so handlers share it without locking.
type Server struct {
	ds        *dataset.Dataset
	inspector *report.Inspector
	engine    *compare.Engine
	store     store.Store
	cfg       config.ServerConfig
}

// NewServer creates a Server. st may be nil, which disables history routes
// and saving.
func NewServer(ds *dataset.Dataset, inspector *report.Inspector, engine *compare.Engine, st store.Store, cfg config.ServerConfig) *Server {
	if engine == nil {
		engine = compare.NewEngine(compare.DefaultConcurrency)
	}
	return &Server{ds: ds, inspector: inspector, engine: engine, store: st, cfg: cfg}
}

// Router builds the HTTP handler with middleware and all routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		if s.cfg.RateLimit > 0 {
			r.Use(rateLimit(rate.NewLimiter(rate.Limit(s.cfg.RateLimit), burstOf(s.cfg))))
		}
		r.Get("/rows", s.handleRows)
		r.Get("/inspect", s.handleInspect)
		r.Post("/compare", s.handleCompare)
		r.Get("/ranges", s.handleRanges)
		r.Get("/chart", s.handleChart)
		if s.store != nil {
			r.Get("/inspections", s.handleListInspections)
			r.Get("/inspections/{id}", s.handleGetInspection)
		}
	})
	return r
}

func burstOf(cfg config.ServerConfig) int {
	if cfg.Burst > 0 {
		return cfg.Burst
	}
	return max(1, int(cfg.RateLimit))
}

// rateLimit rejects requests beyond the limiter's budget with 429.
func rateLimit(l *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow() {
				w.Header().Set("Retry-After", "1")
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Debug("api: request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", chimw.GetReqID(r.Context())),
		)
	})
}

// writeJSON encodes v before touching the response, so an unencodable value
// becomes a 500 instead of a truncated success.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		zap.L().Error("api: encode response", zap.Error(err))
		status = http.StatusInternalServerError
		body = []byte(`{"error":"failed to encode response"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
