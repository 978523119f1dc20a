package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"finnacle/pkg/finnacle"
)

// NewRouter builds the HTTP API router.
func NewRouter(core *finnacle.Core, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLoggingMiddleware(logger))
	r.Use(recoveryLoggingMiddleware(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	h := &handler{core: core, logger: logger}

	r.Get("/api/health", h.health)

	r.Route("/api/v1", func(r chi.Router) {
		// Auth
		r.Post("/auth/register", h.register)
		r.Post("/auth/login", h.login)

		r.Group(func(r chi.Router) {
			r.Use(h.requireAuth)

			r.Get("/auth/getuser", h.getUser)

			// Income
			r.Get("/income/get", h.getIncome)
			r.Post("/income/add", h.addIncome)
			r.Delete("/income/delete/{id}", h.deleteIncome)
			r.Get("/income/download", h.exportIncome)

			// Expenses
			r.Get("/expense/get", h.getExpenses)
			r.Post("/expense/add", h.addExpense)
			r.Delete("/expense/delete/{id}", h.deleteExpense)
			r.Get("/expense/download", h.exportExpenses)

			// Dashboard
			r.Get("/dashboard", h.getDashboard)
			r.Get("/dashboard/summary", h.getFinanceSummary)

			// Portfolio
			r.Get("/portfolio", h.getPortfolio)
			r.Post("/portfolio/add", h.addHolding)
			r.Delete("/portfolio/delete/{id}", h.deleteHolding)
			r.Get("/portfolio/history", h.getPortfolioHistory)
			r.Post("/portfolio/history", h.recordPortfolioValue)

			// Assistant
			r.Post("/insights", h.generateInsight)
			r.Post("/mrfin/chat", h.chat)
		})
	})

	return r
}

type handler struct {
	core   *finnacle.Core
	logger *slog.Logger
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
