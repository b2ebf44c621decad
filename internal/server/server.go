package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/cashtrackr/cashtrackr/internal/auth"
	"github.com/cashtrackr/cashtrackr/internal/email"
	"github.com/cashtrackr/cashtrackr/internal/handler"
	"github.com/cashtrackr/cashtrackr/internal/middleware"
	"github.com/cashtrackr/cashtrackr/internal/store"
)

// Auth routes are capped per client IP.
const (
	authRateLimit  = 5
	authRateWindow = time.Minute
)

type Config struct {
	JWTSecret   []byte
	TokenTTL    time.Duration
	EmailClient *email.Client
}

type Server struct {
	db           *sql.DB
	userStore    *store.UserStore
	budgetStore  *store.BudgetStore
	expenseStore *store.ExpenseStore
	authH        *handler.AuthHandler
	budgetH      *handler.BudgetHandler
	expenseH     *handler.ExpenseHandler
	tokens       *auth.TokenManager
	rateLimiter  *middleware.RateLimiter
	logger       *slog.Logger
}

func New(db *sql.DB, cfg Config, logger *slog.Logger) *Server {
	userStore := store.NewUserStore(db)
	budgetStore := store.NewBudgetStore(db)
	expenseStore := store.NewExpenseStore(db)

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)

	return &Server{
		db:           db,
		userStore:    userStore,
		budgetStore:  budgetStore,
		expenseStore: expenseStore,
		authH:        handler.NewAuthHandler(userStore, tokens, cfg.EmailClient, logger.With("component", "auth")),
		budgetH:      handler.NewBudgetHandler(budgetStore, expenseStore, logger.With("component", "budget")),
		expenseH:     handler.NewExpenseHandler(expenseStore, logger.With("component", "expense")),
		tokens:       tokens,
		rateLimiter:  middleware.NewRateLimiter(),
		logger:       logger,
	}
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)

	// Public auth routes (rate limited)
	mux.HandleFunc("POST /auth/create-account", s.rateLimitedHandler(s.authH.CreateAccount))
	mux.HandleFunc("POST /auth/confirm-account", s.rateLimitedHandler(s.authH.ConfirmAccount))
	mux.HandleFunc("POST /auth/login", s.rateLimitedHandler(s.authH.Login))
	mux.HandleFunc("POST /auth/forgot-password", s.rateLimitedHandler(s.authH.ForgotPassword))
	mux.HandleFunc("POST /auth/validate-token", s.rateLimitedHandler(s.authH.ValidateToken))
	mux.HandleFunc("POST /auth/reset-password/{token}", s.rateLimitedHandler(s.authH.ResetPassword))

	// Protected routes (explicitly registered with auth middleware)
	authMw := middleware.RequireAuth(s.userStore, s.tokens)
	mux.Handle("GET /auth/user", authMw(http.HandlerFunc(s.authH.GetUser)))
	mux.Handle("PUT /auth/user", authMw(http.HandlerFunc(s.authH.UpdateProfile)))
	mux.Handle("POST /auth/update-password", authMw(http.HandlerFunc(s.authH.UpdatePassword)))
	mux.Handle("POST /auth/check-password", authMw(http.HandlerFunc(s.authH.CheckPassword)))

	mux.Handle("GET /budgets", authMw(http.HandlerFunc(s.budgetH.List)))
	mux.Handle("POST /budgets", authMw(http.HandlerFunc(s.budgetH.Create)))

	// Budget sub-resources: resolve + ownership check before the handler runs
	budgetMw := middleware.BudgetOwnership(s.budgetStore)
	owned := func(h http.HandlerFunc) http.Handler {
		return authMw(budgetMw(h))
	}
	mux.Handle("GET /budgets/{budgetId}", owned(s.budgetH.Get))
	mux.Handle("PUT /budgets/{budgetId}", owned(s.budgetH.Update))
	mux.Handle("DELETE /budgets/{budgetId}", owned(s.budgetH.Delete))

	expenseMw := middleware.ExpenseOwnership(s.expenseStore)
	ownedExpense := func(h http.HandlerFunc) http.Handler {
		return authMw(budgetMw(expenseMw(h)))
	}
	mux.Handle("POST /budgets/{budgetId}/expenses", owned(s.expenseH.Create))
	mux.Handle("GET /budgets/{budgetId}/expenses/{expenseId}", ownedExpense(s.expenseH.Get))
	mux.Handle("PUT /budgets/{budgetId}/expenses/{expenseId}", ownedExpense(s.expenseH.Update))
	mux.Handle("DELETE /budgets/{budgetId}/expenses/{expenseId}", ownedExpense(s.expenseH.Delete))

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, authRateLimit, authRateWindow)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}
