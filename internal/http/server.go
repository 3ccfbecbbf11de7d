// Package http exposes the transaction API over a chi router.
package http

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/store"
)

// EventPublisher fans write events out to the audit stream. A nil
// publisher disables eventing.
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, action string, id int64) error
}

// Server wires the transaction store and middleware into an HTTP server.
type Server struct {
	httpServer *http.Server
	store      store.Store
	events     EventPublisher
	limiter    *ratelimit.Limiter
}

// New builds the server with tracing on every route and rate limiting
// on writes.
func New(port string, st store.Store, events EventPublisher) *Server {
	s := &Server{
		store:   st,
		events:  events,
		limiter: ratelimit.NewLimiter(ratelimit.DefaultConfig()),
	}

	s.httpServer = &http.Server{
		Addr:         ":" + port,
		Handler:      s.routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	tracer := trace.NewMiddleware(extractClientIP)
	r.Use(tracer.Middleware)

	limited := s.limiter.Middleware(extractClientIP, func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Retry-After", "60")
		respondFail(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.", nil)
	})

	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)

	r.Route("/api/v1/transactions", func(r chi.Router) {
		r.Get("/", s.handleListTransactions)
		r.Get("/dashboard_data", s.handleDashboardData)

		r.Group(func(r chi.Router) {
			r.Use(limited)
			r.Post("/", s.handleCreateTransaction)
			r.Put("/{id}", s.handleUpdateTransaction)
			r.Delete("/{id}", s.handleDeleteTransaction)
		})
	})

	return r
}

// Handler exposes the routed handler, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe blocks serving requests until Shutdown.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests and stops the rate limiter.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	return s.httpServer.Shutdown(ctx)
}

// extractClientIP prefers proxy headers, falling back to RemoteAddr.
func extractClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if idx := strings.Index(forwarded, ","); idx != -1 {
			return strings.TrimSpace(forwarded[:idx])
		}
		return strings.TrimSpace(forwarded)
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
