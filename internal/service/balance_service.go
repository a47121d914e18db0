package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmynk/splitledger/internal/cache"
	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// GroupBalances is the cached projection of one group.
type GroupBalances struct {
	GroupID      string
	Balances     []calculator.Balance
	Summary      []calculator.BalanceSummary
	Debts        []calculator.Debt
	CalculatedAt int64
}

// SettledBalances are balances after recorded settlements are applied.
type SettledBalances struct {
	GroupID  string
	Balances []calculator.BalanceSummary
	Trend    calculator.TrendPoint
}

// BalanceService computes balances, debts and analytics for groups.
type BalanceService struct {
	store   storage.Store
	cache   *cache.TTLCache[*GroupBalances]
	metrics *metrics.Metrics
	prefs   calculator.AlertPreferences
	now     func() time.Time
}

// BalanceOption configures a BalanceService.
type BalanceOption func(*BalanceService)

// WithMetrics records cache and timing metrics on m.
func WithMetrics(m *metrics.Metrics) BalanceOption {
	return func(s *BalanceService) { s.metrics = m }
}

// WithAlertPreferences overrides the default alert thresholds.
func WithAlertPreferences(prefs calculator.AlertPreferences) BalanceOption {
	return func(s *BalanceService) { s.prefs = prefs }
}

// WithNow overrides the clock used for timestamps.
func WithNow(now func() time.Time) BalanceOption {
	return func(s *BalanceService) { s.now = now }
}

// NewBalanceService creates a BalanceService. A nil cache disables caching.
func NewBalanceService(store storage.Store, c *cache.TTLCache[*GroupBalances], opts ...BalanceOption) *BalanceService {
	s := &BalanceService{
		store: store,
		cache: c,
		prefs: calculator.DefaultAlertPreferences(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Invalidate drops the cached projection of a group.
func (s *BalanceService) Invalidate(groupID string) {
	if s.cache == nil {
		return
	}
	s.cache.Invalidate(groupID)
	s.metrics.CacheInvalidated()
	slog.Debug("Balance cache invalidated", "group_id", groupID)
}

// CalculateMemberBalance computes one member's balance within a group.
// Only the member's own splits and the splits of expenses they paid are
// loaded.
func (s *BalanceService) CalculateMemberBalance(ctx context.Context, memberID, groupID string) (calculator.Balance, error) {
	defer s.metrics.ObserveBalance("member_balance", time.Now())

	_, members, expenses, err := loadGroup(ctx, s.store, groupID)
	if err != nil {
		return calculator.Balance{}, err
	}
	if !memberSet(members)[memberID] {
		return calculator.Balance{}, fmt.Errorf("member %w: %s", storage.ErrNotFound, memberID)
	}

	own, err := s.store.ListSplitsByMember(ctx, memberID)
	if err != nil {
		return calculator.Balance{}, err
	}

	var paid []models.Expense
	for _, e := range expenses {
		if e.PaidBy == memberID {
			paid = append(paid, e)
		}
	}
	paidSplits, err := loadSplits(ctx, s.store, paid)
	if err != nil {
		return calculator.Balance{}, err
	}

	seen := make(map[string]bool, len(own)+len(paidSplits))
	splits := make([]models.ExpenseSplit, 0, len(own)+len(paidSplits))
	for _, sp := range append(own, paidSplits...) {
		if seen[sp.ID] {
			continue
		}
		seen[sp.ID] = true
		splits = append(splits, sp)
	}

	balance := calculator.NewLedger(groupID, members, expenses, splits).MemberBalance(memberID)
	slog.Debug("Member balance calculated", "group_id", groupID, "member_id", memberID, "total_owed", balance.TotalOwed)
	return balance, nil
}

// CalculateGroupBalances computes every member's balance, in join order.
func (s *BalanceService) CalculateGroupBalances(ctx context.Context, groupID string) ([]calculator.Balance, error) {
	defer s.metrics.ObserveBalance("group_balances", time.Now())

	ledger, err := s.loadLedger(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return ledger.Balances(), nil
}

// CalculateSimplifiedDebts reduces the group's balances to a minimal list of
// payments. members supplies display names; pass nil to use the group's
// current members.
func (s *BalanceService) CalculateSimplifiedDebts(ctx context.Context, groupID string, members []models.Member) ([]calculator.Debt, error) {
	defer s.metrics.ObserveBalance("simplified_debts", time.Now())

	ledger, err := s.loadLedger(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if members == nil {
		members = ledger.Members()
	}
	return calculator.SimplifyDebts(ledger.Balances(), calculator.MemberNames(members)), nil
}

// GetCachedGroupBalances returns the group's projection from the cache,
// computing and storing it on a miss.
func (s *BalanceService) GetCachedGroupBalances(ctx context.Context, groupID string) (*GroupBalances, error) {
	var gen uint64
	if s.cache != nil {
		if gb, ok := s.cache.Get(groupID); ok {
			s.metrics.CacheLookup(true)
			return gb, nil
		}
		s.metrics.CacheLookup(false)
		gen = s.cache.Generation(groupID)
	}

	start := time.Now()
	ledger, err := s.loadLedger(ctx, groupID)
	if err != nil {
		return nil, err
	}

	balances := ledger.Balances()
	names := calculator.MemberNames(ledger.Members())
	gb := &GroupBalances{
		GroupID:      groupID,
		Balances:     balances,
		Summary:      calculator.Summaries(balances, names),
		Debts:        calculator.SimplifyDebts(balances, names),
		CalculatedAt: s.now().Unix(),
	}
	s.metrics.ObserveBalance("cached_group_balances", start)

	if s.cache != nil && !s.cache.PutIfCurrent(groupID, gb, gen) {
		slog.Debug("Balance cache write skipped after invalidation", "group_id", groupID)
	}
	slog.Info("Group balances calculated", "group_id", groupID, "members", len(balances), "debts", len(gb.Debts))
	return gb, nil
}

// GetBalanceSummary returns each member's balance with their name.
func (s *BalanceService) GetBalanceSummary(ctx context.Context, groupID string) ([]calculator.BalanceSummary, error) {
	gb, err := s.GetCachedGroupBalances(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return gb.Summary, nil
}

// GetAnalyticsSummary aggregates the group's balances.
func (s *BalanceService) GetAnalyticsSummary(ctx context.Context, groupID string) (calculator.AnalyticsSummary, error) {
	gb, err := s.GetCachedGroupBalances(ctx, groupID)
	if err != nil {
		return calculator.AnalyticsSummary{}, err
	}
	return calculator.Summarize(gb.Balances), nil
}

// GetBalanceDistribution buckets the group's balances by range.
func (s *BalanceService) GetBalanceDistribution(ctx context.Context, groupID string) ([]calculator.DistributionBucket, error) {
	gb, err := s.GetCachedGroupBalances(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return calculator.Distribute(gb.Balances), nil
}

// GetSettledBalances applies recorded settlements to the group's balances.
func (s *BalanceService) GetSettledBalances(ctx context.Context, groupID string) (*SettledBalances, error) {
	gb, err := s.GetCachedGroupBalances(ctx, groupID)
	if err != nil {
		return nil, err
	}

	settlements, err := s.store.ListSettlementsByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	adjusted := calculator.ApplySettlements(gb.Balances, settlements)
	names := make(map[string]string, len(gb.Summary))
	for _, sum := range gb.Summary {
		names[sum.MemberID] = sum.MemberName
	}

	return &SettledBalances{
		GroupID:  groupID,
		Balances: calculator.Summaries(adjusted, names),
		Trend:    calculator.Trend(adjusted, s.now()),
	}, nil
}

// CheckAlerts evaluates settlement-adjusted balances against the configured
// thresholds from currentMemberID's point of view. currentMemberID may be
// empty, in which case only high-balance alerts are produced.
func (s *BalanceService) CheckAlerts(ctx context.Context, groupID, currentMemberID string) ([]calculator.Alert, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	settled, err := s.GetSettledBalances(ctx, groupID)
	if err != nil {
		return nil, err
	}

	balances := make([]calculator.Balance, len(settled.Balances))
	names := make(map[string]string, len(settled.Balances))
	for i, b := range settled.Balances {
		balances[i] = calculator.Balance{MemberID: b.MemberID, GroupID: groupID, TotalOwed: b.TotalOwed}
		names[b.MemberID] = b.MemberName
	}

	alerts := calculator.CheckAlerts(balances, s.prefs, calculator.AlertContext{
		GroupID:         groupID,
		GroupName:       group.Name,
		CurrentMemberID: currentMemberID,
		Names:           names,
		Now:             s.now(),
	})
	if len(alerts) > 0 {
		slog.Info("Balance alerts raised", "group_id", groupID, "count", len(alerts))
	}
	return alerts, nil
}

// loadLedger snapshots a group with all splits of all its expenses.
func (s *BalanceService) loadLedger(ctx context.Context, groupID string) (*calculator.Ledger, error) {
	_, members, expenses, err := loadGroup(ctx, s.store, groupID)
	if err != nil {
		return nil, err
	}

	splits, err := loadSplits(ctx, s.store, expenses)
	if err != nil {
		return nil, err
	}
	return calculator.NewLedger(groupID, members, expenses, splits), nil
}
