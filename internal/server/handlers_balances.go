package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// groupBalances handles GET /groups/{groupID}/balances
func (s *Server) groupBalances(w http.ResponseWriter, r *http.Request) {
	gb, err := s.balances.GetCachedGroupBalances(r.Context(), chi.URLParam(r, "groupID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, GroupBalancesResponse{
		GroupID:      gb.GroupID,
		Balances:     toBalanceResponses(gb.Summary),
		Debts:        toDebtResponses(gb.Debts),
		CalculatedAt: gb.CalculatedAt,
	})
}

// memberBalance handles GET /groups/{groupID}/balances/{memberID}
func (s *Server) memberBalance(w http.ResponseWriter, r *http.Request) {
	b, err := s.balances.CalculateMemberBalance(r.Context(), chi.URLParam(r, "memberID"), chi.URLParam(r, "groupID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	paid := make([]string, len(b.Expenses))
	for i, e := range b.Expenses {
		paid[i] = e.ID
	}
	writeJSON(w, http.StatusOK, MemberBalanceResponse{
		MemberID:     b.MemberID,
		GroupID:      b.GroupID,
		TotalOwed:    b.TotalOwed,
		PaidExpenses: paid,
	})
}

// debts handles GET /groups/{groupID}/debts
func (s *Server) debts(w http.ResponseWriter, r *http.Request) {
	debts, err := s.balances.CalculateSimplifiedDebts(r.Context(), chi.URLParam(r, "groupID"), nil)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toDebtResponses(debts))
}

// summary handles GET /groups/{groupID}/summary
func (s *Server) summary(w http.ResponseWriter, r *http.Request) {
	a, err := s.balances.GetAnalyticsSummary(r.Context(), chi.URLParam(r, "groupID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AnalyticsResponse(a))
}

// distribution handles GET /groups/{groupID}/distribution
func (s *Server) distribution(w http.ResponseWriter, r *http.Request) {
	buckets, err := s.balances.GetBalanceDistribution(r.Context(), chi.URLParam(r, "groupID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]DistributionResponse, len(buckets))
	for i, b := range buckets {
		out[i] = DistributionResponse(b)
	}
	writeJSON(w, http.StatusOK, out)
}

// settledBalances handles GET /groups/{groupID}/settled-balances
func (s *Server) settledBalances(w http.ResponseWriter, r *http.Request) {
	settled, err := s.balances.GetSettledBalances(r.Context(), chi.URLParam(r, "groupID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, SettledBalancesResponse{
		GroupID:  settled.GroupID,
		Balances: toBalanceResponses(settled.Balances),
		Trend:    TrendResponse(settled.Trend),
	})
}

// alerts handles GET /groups/{groupID}/alerts?member=
func (s *Server) alerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := s.balances.CheckAlerts(r.Context(), chi.URLParam(r, "groupID"), r.URL.Query().Get("member"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]AlertResponse, len(alerts))
	for i, a := range alerts {
		out[i] = AlertResponse{
			ID:         a.ID,
			MemberID:   a.MemberID,
			MemberName: a.MemberName,
			Type:       string(a.Type),
			Severity:   string(a.Severity),
			Amount:     a.Amount,
			Threshold:  a.Threshold,
			Message:    a.Message,
			CreatedAt:  a.CreatedAt,
		}
	}
	writeJSON(w, http.StatusOK, out)
}
