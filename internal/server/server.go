// Package server exposes the services over a JSON HTTP API.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/service"
)

// Server holds the services behind the HTTP routes.
type Server struct {
	groups      *service.GroupService
	expenses    *service.ExpenseService
	settlements *service.SettlementService
	balances    *service.BalanceService
	analytics   *service.AnalyticsService
	metrics     *metrics.Metrics
}

// Services bundles the dependencies of a Server.
type Services struct {
	Groups      *service.GroupService
	Expenses    *service.ExpenseService
	Settlements *service.SettlementService
	Balances    *service.BalanceService
	Analytics   *service.AnalyticsService
	// Metrics is optional; without it /metrics is not mounted.
	Metrics *metrics.Metrics
}

// New creates a Server.
func New(svc Services) *Server {
	return &Server{
		groups:      svc.Groups,
		expenses:    svc.Expenses,
		settlements: svc.Settlements,
		balances:    svc.Balances,
		analytics:   svc.Analytics,
		metrics:     svc.Metrics,
	}
}

// Routes builds the router with all middleware applied.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Route("/groups", func(r chi.Router) {
		r.Post("/", s.createGroup)
		r.Get("/", s.listGroups)

		r.Route("/{groupID}", func(r chi.Router) {
			r.Get("/", s.getGroup)

			r.Post("/members", s.addMember)
			r.Get("/members", s.listMembers)

			r.Post("/expenses", s.createExpense)
			r.Get("/expenses", s.listExpenses)

			r.Get("/balances", s.groupBalances)
			r.Get("/balances/{memberID}", s.memberBalance)
			r.Get("/debts", s.debts)
			r.Get("/summary", s.summary)
			r.Get("/distribution", s.distribution)
			r.Get("/settled-balances", s.settledBalances)
			r.Get("/alerts", s.alerts)

			r.Route("/analytics", func(r chi.Router) {
				r.Get("/categories", s.categoryBreakdown)
				r.Get("/trends", s.spendingTrends)
				r.Get("/members", s.memberSpending)
				r.Get("/periods", s.periodSpending)
				r.Get("/patterns", s.expensePatterns)
			})

			r.Post("/settlements", s.recordSettlement)
			r.Get("/settlements", s.listSettlements)
		})
	})

	r.Route("/expenses/{expenseID}", func(r chi.Router) {
		r.Get("/", s.getExpense)
		r.Put("/", s.updateExpense)
		r.Delete("/", s.deleteExpense)
	})

	r.Delete("/settlements/{settlementID}", s.deleteSettlement)

	r.Get("/analytics/groups", s.compareGroups)

	return r
}
