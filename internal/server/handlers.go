package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mmynk/splitledger/internal/service"
)

// createGroup handles POST /groups
func (s *Server) createGroup(w http.ResponseWriter, r *http.Request) {
	var req CreateGroupRequest
	if err := decode(w, r, &req); err != nil {
		badRequest(w, "Invalid request body")
		return
	}

	group, err := s.groups.CreateGroup(r.Context(), req.Name, req.Description)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toGroupResponse(group))
}

// listGroups handles GET /groups
func (s *Server) listGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.groups.ListGroups(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]GroupResponse, len(groups))
	for i := range groups {
		out[i] = toGroupResponse(&groups[i])
	}
	writeJSON(w, http.StatusOK, out)
}

// getGroup handles GET /groups/{groupID}
func (s *Server) getGroup(w http.ResponseWriter, r *http.Request) {
	group, err := s.groups.GetGroup(r.Context(), chi.URLParam(r, "groupID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toGroupResponse(group))
}

// addMember handles POST /groups/{groupID}/members
func (s *Server) addMember(w http.ResponseWriter, r *http.Request) {
	var req AddMemberRequest
	if err := decode(w, r, &req); err != nil {
		badRequest(w, "Invalid request body")
		return
	}

	member, err := s.groups.AddMember(r.Context(), chi.URLParam(r, "groupID"), req.Name, req.Email)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMemberResponse(member))
}

// listMembers handles GET /groups/{groupID}/members
func (s *Server) listMembers(w http.ResponseWriter, r *http.Request) {
	members, err := s.groups.ListMembers(r.Context(), chi.URLParam(r, "groupID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]MemberResponse, len(members))
	for i := range members {
		out[i] = toMemberResponse(&members[i])
	}
	writeJSON(w, http.StatusOK, out)
}

// createExpense handles POST /groups/{groupID}/expenses
func (s *Server) createExpense(w http.ResponseWriter, r *http.Request) {
	var req ExpenseRequest
	if err := decode(w, r, &req); err != nil {
		badRequest(w, "Invalid request body")
		return
	}

	in, err := req.toInput(chi.URLParam(r, "groupID"))
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	detail, err := s.expenses.CreateExpense(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toExpenseResponse(&detail.Expense, detail.Splits))
}

// listExpenses handles GET /groups/{groupID}/expenses
func (s *Server) listExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.expenses.ListExpenses(r.Context(), chi.URLParam(r, "groupID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]ExpenseResponse, len(expenses))
	for i := range expenses {
		out[i] = toExpenseResponse(&expenses[i], nil)
	}
	writeJSON(w, http.StatusOK, out)
}

// getExpense handles GET /expenses/{expenseID}
func (s *Server) getExpense(w http.ResponseWriter, r *http.Request) {
	detail, err := s.expenses.GetExpense(r.Context(), chi.URLParam(r, "expenseID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseResponse(&detail.Expense, detail.Splits))
}

// updateExpense handles PUT /expenses/{expenseID}
func (s *Server) updateExpense(w http.ResponseWriter, r *http.Request) {
	var req ExpenseRequest
	if err := decode(w, r, &req); err != nil {
		badRequest(w, "Invalid request body")
		return
	}

	in, err := req.toInput("")
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	detail, err := s.expenses.UpdateExpense(r.Context(), chi.URLParam(r, "expenseID"), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseResponse(&detail.Expense, detail.Splits))
}

// deleteExpense handles DELETE /expenses/{expenseID}
func (s *Server) deleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.expenses.DeleteExpense(r.Context(), chi.URLParam(r, "expenseID")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// recordSettlement handles POST /groups/{groupID}/settlements
func (s *Server) recordSettlement(w http.ResponseWriter, r *http.Request) {
	var req SettlementRequest
	if err := decode(w, r, &req); err != nil {
		badRequest(w, "Invalid request body")
		return
	}

	settlement, err := s.settlements.RecordSettlement(r.Context(), service.SettlementInput{
		GroupID:      chi.URLParam(r, "groupID"),
		FromMemberID: req.FromMemberID,
		ToMemberID:   req.ToMemberID,
		Amount:       req.Amount,
		Description:  req.Description,
		SettledAt:    req.SettledAt,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSettlementResponse(settlement))
}

// listSettlements handles GET /groups/{groupID}/settlements
func (s *Server) listSettlements(w http.ResponseWriter, r *http.Request) {
	settlements, err := s.settlements.ListSettlements(r.Context(), chi.URLParam(r, "groupID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]SettlementResponse, len(settlements))
	for i := range settlements {
		out[i] = toSettlementResponse(&settlements[i])
	}
	writeJSON(w, http.StatusOK, out)
}

// deleteSettlement handles DELETE /settlements/{settlementID}
func (s *Server) deleteSettlement(w http.ResponseWriter, r *http.Request) {
	if err := s.settlements.DeleteSettlement(r.Context(), chi.URLParam(r, "settlementID")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
