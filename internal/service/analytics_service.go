package service

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/storage"
)

// maxTrendDays bounds the window accepted by GetSpendingTrends.
const maxTrendDays = 366

// maxComparedGroups bounds how many groups CompareGroups loads at once.
const maxComparedGroups = 20

// ExpensePatterns groups the three pattern reports of a group.
type ExpensePatterns struct {
	GroupID      string
	Weekdays     []calculator.WeekdaySpending
	Categories   []calculator.CategoryFrequency
	AmountRanges []calculator.AmountRangeSpending
}

// GroupComparison is a side-by-side view of several groups.
type GroupComparison struct {
	Groups  []calculator.GroupSpending
	Summary calculator.ComparisonSummary
}

// AnalyticsService reports how groups spend money.
type AnalyticsService struct {
	store   storage.Store
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewAnalyticsService creates an AnalyticsService. m and now may be nil.
func NewAnalyticsService(store storage.Store, m *metrics.Metrics, now func() time.Time) *AnalyticsService {
	if now == nil {
		now = time.Now
	}
	return &AnalyticsService{store: store, metrics: m, now: now}
}

// GetCategoryBreakdown totals a group's unsettled expenses per category.
func (s *AnalyticsService) GetCategoryBreakdown(ctx context.Context, groupID string) ([]calculator.CategorySpending, error) {
	_, _, expenses, err := loadGroup(ctx, s.store, groupID)
	if err != nil {
		return nil, err
	}
	return calculator.CategoryBreakdown(expenses), nil
}

// GetSpendingTrends returns daily spending over the last days days.
// Zero means calculator.DefaultTrendDays.
func (s *AnalyticsService) GetSpendingTrends(ctx context.Context, groupID string, days int) ([]calculator.DailySpending, error) {
	if days < 0 || days > maxTrendDays {
		return nil, invalid("days cannot be negative or exceed 366")
	}
	_, _, expenses, err := loadGroup(ctx, s.store, groupID)
	if err != nil {
		return nil, err
	}
	return calculator.SpendingTrends(expenses, days, s.now()), nil
}

// GetMemberSpending reports what each member paid and consumed.
func (s *AnalyticsService) GetMemberSpending(ctx context.Context, groupID string) ([]calculator.MemberSpending, error) {
	start := time.Now()
	_, members, expenses, err := loadGroup(ctx, s.store, groupID)
	if err != nil {
		return nil, err
	}
	splits, err := loadSplits(ctx, s.store, expenses)
	if err != nil {
		return nil, err
	}
	out := calculator.SpendingByMember(members, expenses, splits)
	s.metrics.ObserveBalance("member_spending", start)
	return out, nil
}

// GetPeriodSpending buckets spending by "monthly" or "weekly" period.
func (s *AnalyticsService) GetPeriodSpending(ctx context.Context, groupID, period string) ([]calculator.PeriodSpending, error) {
	p, err := calculator.ParsePeriod(period)
	if err != nil {
		return nil, invalid("period must be monthly or weekly")
	}
	_, _, expenses, err := loadGroup(ctx, s.store, groupID)
	if err != nil {
		return nil, err
	}
	return calculator.SpendingByPeriod(expenses, p), nil
}

// GetExpensePatterns reports weekday, category and amount-range patterns.
func (s *AnalyticsService) GetExpensePatterns(ctx context.Context, groupID string) (*ExpensePatterns, error) {
	_, _, expenses, err := loadGroup(ctx, s.store, groupID)
	if err != nil {
		return nil, err
	}
	return &ExpensePatterns{
		GroupID:      groupID,
		Weekdays:     calculator.WeekdayPatterns(expenses),
		Categories:   calculator.CategoryPatterns(expenses),
		AmountRanges: calculator.AmountRangePatterns(expenses),
	}, nil
}

// CompareGroups loads every group concurrently and compares them in the
// order given. Any missing group fails the whole comparison.
func (s *AnalyticsService) CompareGroups(ctx context.Context, groupIDs []string) (*GroupComparison, error) {
	slog.Info("CompareGroups request received", "groups", len(groupIDs))

	if len(groupIDs) == 0 {
		return nil, invalid("at least one group must be selected")
	}
	if len(groupIDs) > maxComparedGroups {
		return nil, invalid("at most 20 groups can be compared")
	}

	start := time.Now()
	groups := make([]calculator.GroupSpending, len(groupIDs))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range groupIDs {
		g.Go(func() error {
			group, members, expenses, err := loadGroup(gctx, s.store, id)
			if err != nil {
				return err
			}
			splits, err := loadSplits(gctx, s.store, expenses)
			if err != nil {
				return err
			}
			groups[i] = calculator.CompareGroup(*group, members, expenses, splits)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	s.metrics.ObserveBalance("group_comparison", start)

	return &GroupComparison{
		Groups:  groups,
		Summary: calculator.SummarizeComparison(groups),
	}, nil
}
