package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

// categoryBreakdown handles GET /groups/{groupID}/analytics/categories
func (s *Server) categoryBreakdown(w http.ResponseWriter, r *http.Request) {
	cats, err := s.analytics.GetCategoryBreakdown(r.Context(), chi.URLParam(r, "groupID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategorySpendingResponses(cats))
}

// spendingTrends handles GET /groups/{groupID}/analytics/trends?days=
func (s *Server) spendingTrends(w http.ResponseWriter, r *http.Request) {
	var days int
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(w, "days must be a whole number")
			return
		}
		days = n
	}

	trend, err := s.analytics.GetSpendingTrends(r.Context(), chi.URLParam(r, "groupID"), days)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]DailySpendingResponse, len(trend))
	for i, d := range trend {
		out[i] = DailySpendingResponse(d)
	}
	writeJSON(w, http.StatusOK, out)
}

// memberSpending handles GET /groups/{groupID}/analytics/members
func (s *Server) memberSpending(w http.ResponseWriter, r *http.Request) {
	spending, err := s.analytics.GetMemberSpending(r.Context(), chi.URLParam(r, "groupID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMemberSpendingResponses(spending))
}

// periodSpending handles GET /groups/{groupID}/analytics/periods?period=
func (s *Server) periodSpending(w http.ResponseWriter, r *http.Request) {
	periods, err := s.analytics.GetPeriodSpending(r.Context(), chi.URLParam(r, "groupID"), r.URL.Query().Get("period"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]PeriodSpendingResponse, len(periods))
	for i, p := range periods {
		out[i] = PeriodSpendingResponse(p)
	}
	writeJSON(w, http.StatusOK, out)
}

// expensePatterns handles GET /groups/{groupID}/analytics/patterns
func (s *Server) expensePatterns(w http.ResponseWriter, r *http.Request) {
	patterns, err := s.analytics.GetExpensePatterns(r.Context(), chi.URLParam(r, "groupID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpensePatternsResponse(patterns))
}

// compareGroups handles GET /analytics/groups?ids=a,b,c
func (s *Server) compareGroups(w http.ResponseWriter, r *http.Request) {
	var ids []string
	for _, id := range strings.Split(r.URL.Query().Get("ids"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}

	cmp, err := s.analytics.CompareGroups(r.Context(), ids)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toGroupComparisonResponse(cmp))
}
