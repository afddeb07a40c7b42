// Package http exposes the ledger as a JSON API.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/vctrubio/summer-expense-tracker/internal/auth"
	"github.com/vctrubio/summer-expense-tracker/internal/log"
	"github.com/vctrubio/summer-expense-tracker/internal/middleware/ratelimit"
	"github.com/vctrubio/summer-expense-tracker/internal/middleware/security"
	"github.com/vctrubio/summer-expense-tracker/internal/middleware/session"
	"github.com/vctrubio/summer-expense-tracker/internal/services"
	"github.com/vctrubio/summer-expense-tracker/internal/storage"
)

type Server struct {
	httpServer *http.Server
	limiter    *ratelimit.Limiter
	store      storage.Store
}

// NewServer wires the router, middleware chain, and handlers.
func NewServer(addr string, ledger *services.LedgerService, authSvc *services.AuthService, tokens *auth.JWTManager, store storage.Store, logger *log.Logger) *Server {
	limiter := ratelimit.NewLimiter(ratelimit.DefaultConfig())

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(log.Middleware(logger))
	r.Use(security.Headers(security.DefaultHeadersConfig()))
	r.Use(limiter.Middleware(func(req *http.Request) string { return req.RemoteAddr }))

	h := &handlers{ledger: ledger, auth: authSvc}

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", readyHandler(store))

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.register)
			r.Post("/login", h.login)
		})

		r.Group(func(r chi.Router) {
			r.Use(session.RequireAuth(tokens))

			r.Route("/transactions", func(r chi.Router) {
				r.Get("/", h.listTransactions)
				r.Get("/range", h.transactionRange)
				r.Delete("/", h.deleteAllTransactions)
			})

			r.Route("/expenses", func(r chi.Router) {
				r.Post("/", h.createExpense)
				r.Put("/{id}", h.updateExpense)
				r.Delete("/{id}", h.deleteExpense)
			})

			r.Route("/deposits", func(r chi.Router) {
				r.Post("/", h.createDeposit)
				r.Put("/{id}", h.updateDeposit)
				r.Delete("/{id}", h.deleteDeposit)
			})

			r.Route("/owners", func(r chi.Router) {
				r.Get("/", h.listOwners)
				r.Post("/", h.createOwner)
				r.Delete("/{id}", h.deleteOwner)
			})

			r.Get("/balance", h.balance)

			r.Route("/import", func(r chi.Router) {
				r.Post("/preview", h.importPreview)
				r.Post("/commit", h.importCommit)
			})

			r.Get("/export/csv", h.exportCSV)
		})
	})

	return &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      r,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		limiter: limiter,
		store:   store,
	}
}

func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	return s.httpServer.Shutdown(ctx)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func readyHandler(store storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.Ping(r.Context()); err != nil {
			respondError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
