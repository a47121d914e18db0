package server

import (
	"fmt"
	"strings"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/service"
)

// CreateGroupRequest represents the request to create a group
type CreateGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// AddMemberRequest represents the request to add a member to a group
type AddMemberRequest struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// SplitShare is one member's amount or percentage in a split request.
type SplitShare struct {
	MemberID string  `json:"member_id"`
	Value    float64 `json:"value"`
}

// SplitRequest selects a split strategy. Equal splits use MemberIDs;
// custom and percentage splits use Shares, in order.
type SplitRequest struct {
	Type      string       `json:"type"`
	MemberIDs []string     `json:"member_ids,omitempty"`
	Shares    []SplitShare `json:"shares,omitempty"`
}

// Strategy converts the request into a calculator strategy.
func (r SplitRequest) Strategy() (calculator.Strategy, error) {
	values := make([]calculator.MemberValue, len(r.Shares))
	for i, s := range r.Shares {
		values[i] = calculator.MemberValue{MemberID: s.MemberID, Value: s.Value}
	}

	switch calculator.SplitType(strings.ToLower(r.Type)) {
	case calculator.SplitTypeEqual:
		return calculator.Equal{MemberIDs: r.MemberIDs}, nil
	case calculator.SplitTypeCustom:
		return calculator.Custom{Amounts: values}, nil
	case calculator.SplitTypePercentage:
		return calculator.Percentage{Percentages: values}, nil
	default:
		return nil, fmt.Errorf("invalid split type %q: must be equal, custom or percentage", r.Type)
	}
}

// ExpenseRequest represents the request to create or update an expense
type ExpenseRequest struct {
	PaidBy      string       `json:"paid_by"`
	Amount      float64      `json:"amount"`
	Description string       `json:"description,omitempty"`
	Category    string       `json:"category"`
	Date        int64        `json:"date,omitempty"`
	Notes       string       `json:"notes,omitempty"`
	Split       SplitRequest `json:"split"`
}

// toInput builds the service input for groupID.
func (r ExpenseRequest) toInput(groupID string) (service.ExpenseInput, error) {
	strategy, err := r.Split.Strategy()
	if err != nil {
		return service.ExpenseInput{}, err
	}
	return service.ExpenseInput{
		GroupID:     groupID,
		PaidBy:      r.PaidBy,
		Amount:      r.Amount,
		Description: r.Description,
		Category:    r.Category,
		Date:        r.Date,
		Notes:       r.Notes,
		Strategy:    strategy,
	}, nil
}

// SettlementRequest represents the request to record a settlement
type SettlementRequest struct {
	FromMemberID string  `json:"from_member_id"`
	ToMemberID   string  `json:"to_member_id"`
	Amount       float64 `json:"amount"`
	Description  string  `json:"description,omitempty"`
	SettledAt    int64   `json:"settled_at,omitempty"`
}

// GroupResponse represents the response for a group
type GroupResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CreatedAt   int64  `json:"created_at"`
	UpdatedAt   int64  `json:"updated_at"`
}

func toGroupResponse(g *models.Group) GroupResponse {
	return GroupResponse{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}
}

// MemberResponse represents the response for a member
type MemberResponse struct {
	ID       string `json:"id"`
	GroupID  string `json:"group_id"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	JoinedAt int64  `json:"joined_at"`
}

func toMemberResponse(m *models.Member) MemberResponse {
	return MemberResponse{
		ID:       m.ID,
		GroupID:  m.GroupID,
		Name:     m.Name,
		Email:    m.Email,
		JoinedAt: m.JoinedAt,
	}
}

// ExpenseResponse represents the response for an expense
type ExpenseResponse struct {
	ID          string          `json:"id"`
	GroupID     string          `json:"group_id"`
	PaidBy      string          `json:"paid_by"`
	Amount      float64         `json:"amount"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category"`
	Date        int64           `json:"date"`
	Settled     bool            `json:"settled"`
	Notes       string          `json:"notes,omitempty"`
	CreatedAt   int64           `json:"created_at"`
	Splits      []SplitResponse `json:"splits,omitempty"`
}

// SplitResponse represents the response for a split
type SplitResponse struct {
	ID         string   `json:"id"`
	MemberID   string   `json:"member_id"`
	Amount     float64  `json:"amount"`
	Percentage *float64 `json:"percentage,omitempty"`
	Settled    bool     `json:"settled"`
}

func toExpenseResponse(e *models.Expense, splits []models.ExpenseSplit) ExpenseResponse {
	resp := ExpenseResponse{
		ID:          e.ID,
		GroupID:     e.GroupID,
		PaidBy:      e.PaidBy,
		Amount:      e.Amount,
		Description: e.Description,
		Category:    e.Category,
		Date:        e.Date,
		Settled:     e.Settled,
		Notes:       e.Notes,
		CreatedAt:   e.CreatedAt,
	}
	for _, s := range splits {
		resp.Splits = append(resp.Splits, SplitResponse{
			ID:         s.ID,
			MemberID:   s.MemberID,
			Amount:     s.Amount,
			Percentage: s.Percentage,
			Settled:    s.Settled,
		})
	}
	return resp
}

// SettlementResponse represents the response for a settlement
type SettlementResponse struct {
	ID           string  `json:"id"`
	GroupID      string  `json:"group_id"`
	FromMemberID string  `json:"from_member_id"`
	ToMemberID   string  `json:"to_member_id"`
	Amount       float64 `json:"amount"`
	Description  string  `json:"description,omitempty"`
	SettledAt    int64   `json:"settled_at"`
	CreatedAt    int64   `json:"created_at"`
}

func toSettlementResponse(s *models.Settlement) SettlementResponse {
	return SettlementResponse{
		ID:           s.ID,
		GroupID:      s.GroupID,
		FromMemberID: s.FromMemberID,
		ToMemberID:   s.ToMemberID,
		Amount:       s.Amount,
		Description:  s.Description,
		SettledAt:    s.SettledAt,
		CreatedAt:    s.CreatedAt,
	}
}

// BalanceResponse represents one member's balance
type BalanceResponse struct {
	MemberID   string  `json:"member_id"`
	MemberName string  `json:"member_name,omitempty"`
	TotalOwed  float64 `json:"total_owed"`
}

func toBalanceResponses(summary []calculator.BalanceSummary) []BalanceResponse {
	out := make([]BalanceResponse, len(summary))
	for i, s := range summary {
		out[i] = BalanceResponse{MemberID: s.MemberID, MemberName: s.MemberName, TotalOwed: s.TotalOwed}
	}
	return out
}

// MemberBalanceResponse represents one member's balance with the expenses
// they paid
type MemberBalanceResponse struct {
	MemberID     string   `json:"member_id"`
	GroupID      string   `json:"group_id"`
	TotalOwed    float64  `json:"total_owed"`
	PaidExpenses []string `json:"paid_expense_ids"`
}

// DebtResponse represents a simplified payment between two members
type DebtResponse struct {
	FromMemberID   string  `json:"from_member_id"`
	FromMemberName string  `json:"from_member_name"`
	ToMemberID     string  `json:"to_member_id"`
	ToMemberName   string  `json:"to_member_name"`
	Amount         float64 `json:"amount"`
}

func toDebtResponses(debts []calculator.Debt) []DebtResponse {
	out := make([]DebtResponse, len(debts))
	for i, d := range debts {
		out[i] = DebtResponse(d)
	}
	return out
}

// GroupBalancesResponse represents a group's cached balance projection
type GroupBalancesResponse struct {
	GroupID      string            `json:"group_id"`
	Balances     []BalanceResponse `json:"balances"`
	Debts        []DebtResponse    `json:"debts"`
	CalculatedAt int64             `json:"calculated_at"`
}

// AnalyticsResponse represents aggregate figures for a group
type AnalyticsResponse struct {
	TotalOwed     float64 `json:"total_owed"`
	TotalOwedTo   float64 `json:"total_owed_to"`
	NetBalance    float64 `json:"net_balance"`
	MemberCount   int     `json:"member_count"`
	MembersOwing  int     `json:"members_owing"`
	MembersOwed   int     `json:"members_owed"`
	AverageOwed   float64 `json:"average_owed"`
	AverageOwedTo float64 `json:"average_owed_to"`
}

// DistributionResponse represents one balance range
type DistributionResponse struct {
	Range       string  `json:"range"`
	MemberCount int     `json:"member_count"`
	TotalAmount float64 `json:"total_amount"`
}

// SettledBalancesResponse represents balances after settlements
type SettledBalancesResponse struct {
	GroupID  string            `json:"group_id"`
	Balances []BalanceResponse `json:"balances"`
	Trend    TrendResponse     `json:"trend"`
}

// TrendResponse represents a single point of a balance trend
type TrendResponse struct {
	Date        string  `json:"date"`
	TotalOwed   float64 `json:"total_owed"`
	TotalOwedTo float64 `json:"total_owed_to"`
	NetBalance  float64 `json:"net_balance"`
	MemberCount int     `json:"member_count"`
}

// AlertResponse represents a balance alert
type AlertResponse struct {
	ID         string  `json:"id"`
	MemberID   string  `json:"member_id"`
	MemberName string  `json:"member_name"`
	Type       string  `json:"type"`
	Severity   string  `json:"severity"`
	Amount     float64 `json:"amount"`
	Threshold  float64 `json:"threshold"`
	Message    string  `json:"message"`
	CreatedAt  int64   `json:"created_at"`
}

// CategorySpendingResponse represents one category of a spending breakdown
type CategorySpendingResponse struct {
	Category     string  `json:"category"`
	TotalAmount  float64 `json:"total_amount"`
	ExpenseCount int     `json:"expense_count"`
	Percentage   float64 `json:"percentage"`
}

func toCategorySpendingResponses(cats []calculator.CategorySpending) []CategorySpendingResponse {
	out := make([]CategorySpendingResponse, len(cats))
	for i, c := range cats {
		out[i] = CategorySpendingResponse(c)
	}
	return out
}

// DailySpendingResponse represents the spending of one day
type DailySpendingResponse struct {
	Date         string  `json:"date"`
	TotalAmount  float64 `json:"total_amount"`
	ExpenseCount int     `json:"expense_count"`
}

// MemberSpendingResponse represents what one member paid and consumed
type MemberSpendingResponse struct {
	MemberID     string  `json:"member_id"`
	MemberName   string  `json:"member_name"`
	TotalPaid    float64 `json:"total_paid"`
	TotalOwed    float64 `json:"total_owed"`
	NetAmount    float64 `json:"net_amount"`
	ExpenseCount int     `json:"expense_count"`
}

func toMemberSpendingResponses(members []calculator.MemberSpending) []MemberSpendingResponse {
	out := make([]MemberSpendingResponse, len(members))
	for i, m := range members {
		out[i] = MemberSpendingResponse(m)
	}
	return out
}

// PeriodSpendingResponse represents the spending of one month or week
type PeriodSpendingResponse struct {
	Period        string  `json:"period"`
	TotalAmount   float64 `json:"total_amount"`
	ExpenseCount  int     `json:"expense_count"`
	AverageAmount float64 `json:"average_amount"`
}

// ExpensePatternsResponse represents the pattern reports of a group
type ExpensePatternsResponse struct {
	GroupID      string                       `json:"group_id"`
	Weekdays     []WeekdayPatternResponse     `json:"weekdays"`
	Categories   []CategoryPatternResponse    `json:"categories"`
	AmountRanges []AmountRangePatternResponse `json:"amount_ranges"`
}

// WeekdayPatternResponse represents the spending on one day of the week
type WeekdayPatternResponse struct {
	Weekday       string  `json:"weekday"`
	Count         int     `json:"count"`
	TotalAmount   float64 `json:"total_amount"`
	AverageAmount float64 `json:"average_amount"`
}

// CategoryPatternResponse represents how often a category is used
type CategoryPatternResponse struct {
	Category      string  `json:"category"`
	Frequency     int     `json:"frequency"`
	AverageAmount float64 `json:"average_amount"`
	TotalAmount   float64 `json:"total_amount"`
}

// AmountRangePatternResponse represents the expenses within one amount range
type AmountRangePatternResponse struct {
	Range       string  `json:"range"`
	Count       int     `json:"count"`
	TotalAmount float64 `json:"total_amount"`
}

func toExpensePatternsResponse(p *service.ExpensePatterns) ExpensePatternsResponse {
	out := ExpensePatternsResponse{
		GroupID:      p.GroupID,
		Weekdays:     make([]WeekdayPatternResponse, len(p.Weekdays)),
		Categories:   make([]CategoryPatternResponse, len(p.Categories)),
		AmountRanges: make([]AmountRangePatternResponse, len(p.AmountRanges)),
	}
	for i, w := range p.Weekdays {
		out.Weekdays[i] = WeekdayPatternResponse(w)
	}
	for i, c := range p.Categories {
		out.Categories[i] = CategoryPatternResponse(c)
	}
	for i, r := range p.AmountRanges {
		out.AmountRanges[i] = AmountRangePatternResponse(r)
	}
	return out
}

// GroupSpendingResponse represents one group in a comparison
type GroupSpendingResponse struct {
	GroupID           string                     `json:"group_id"`
	GroupName         string                     `json:"group_name"`
	TotalAmount       float64                    `json:"total_amount"`
	ExpenseCount      int                        `json:"expense_count"`
	MemberCount       int                        `json:"member_count"`
	AveragePerMember  float64                    `json:"average_per_member"`
	AveragePerExpense float64                    `json:"average_per_expense"`
	Categories        []CategorySpendingResponse `json:"categories"`
	TopSpenders       []MemberSpendingResponse   `json:"top_spenders"`
}

// GroupTotalResponse names a group and its total spending
type GroupTotalResponse struct {
	GroupID string  `json:"group_id"`
	Name    string  `json:"name"`
	Amount  float64 `json:"amount"`
}

// ComparisonSummaryResponse represents the totals of a group comparison
type ComparisonSummaryResponse struct {
	TotalGroups       int                `json:"total_groups"`
	TotalAmount       float64            `json:"total_amount"`
	TotalExpenses     int                `json:"total_expenses"`
	TotalMembers      int                `json:"total_members"`
	AveragePerGroup   float64            `json:"average_per_group"`
	AveragePerMember  float64            `json:"average_per_member"`
	AveragePerExpense float64            `json:"average_per_expense"`
	Highest           GroupTotalResponse `json:"highest"`
	Lowest            GroupTotalResponse `json:"lowest"`
}

// GroupComparisonResponse represents a side-by-side view of several groups
type GroupComparisonResponse struct {
	Groups  []GroupSpendingResponse   `json:"groups"`
	Summary ComparisonSummaryResponse `json:"summary"`
}

func toGroupComparisonResponse(c *service.GroupComparison) GroupComparisonResponse {
	groups := make([]GroupSpendingResponse, len(c.Groups))
	for i, g := range c.Groups {
		groups[i] = GroupSpendingResponse{
			GroupID:           g.GroupID,
			GroupName:         g.GroupName,
			TotalAmount:       g.TotalAmount,
			ExpenseCount:      g.ExpenseCount,
			MemberCount:       g.MemberCount,
			AveragePerMember:  g.AveragePerMember,
			AveragePerExpense: g.AveragePerExpense,
			Categories:        toCategorySpendingResponses(g.Categories),
			TopSpenders:       toMemberSpendingResponses(g.TopSpenders),
		}
	}

	s := c.Summary
	return GroupComparisonResponse{
		Groups: groups,
		Summary: ComparisonSummaryResponse{
			TotalGroups:       s.TotalGroups,
			TotalAmount:       s.TotalAmount,
			TotalExpenses:     s.TotalExpenses,
			TotalMembers:      s.TotalMembers,
			AveragePerGroup:   s.AveragePerGroup,
			AveragePerMember:  s.AveragePerMember,
			AveragePerExpense: s.AveragePerExpense,
			Highest:           GroupTotalResponse(s.Highest),
			Lowest:            GroupTotalResponse(s.Lowest),
		},
	}
}
