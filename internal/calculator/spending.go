package calculator

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/mmynk/splitledger/internal/models"
)

// Spending reports only look at unsettled expenses. Expense dates are read
// in UTC.

// UncategorizedLabel replaces an empty expense category in reports.
const UncategorizedLabel = "Uncategorized"

// DefaultTrendDays is the window of SpendingTrends when none is given.
const DefaultTrendDays = 30

// TopSpenderLimit caps GroupSpending.TopSpenders.
const TopSpenderLimit = 5

// ErrUnknownPeriod is returned for a period other than monthly or weekly.
var ErrUnknownPeriod = errors.New("unknown period")

// CategorySpending is the share of a group's spending in one category.
type CategorySpending struct {
	Category     string
	TotalAmount  float64
	ExpenseCount int
	// Percentage of the overall total, 0 when nothing was spent.
	Percentage float64
}

// CategoryBreakdown totals expenses per category, largest first.
func CategoryBreakdown(expenses []models.Expense) []CategorySpending {
	byCategory := make(map[string]*CategorySpending)
	var grandTotal float64
	for _, e := range unsettled(expenses) {
		name := categoryOf(e)
		c, ok := byCategory[name]
		if !ok {
			c = &CategorySpending{Category: name}
			byCategory[name] = c
		}
		c.TotalAmount += e.Amount
		c.ExpenseCount++
		grandTotal += e.Amount
	}

	out := make([]CategorySpending, 0, len(byCategory))
	for _, c := range byCategory {
		if grandTotal > 0 {
			c.Percentage = c.TotalAmount / grandTotal * 100
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalAmount != out[j].TotalAmount {
			return out[i].TotalAmount > out[j].TotalAmount
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// DailySpending is the spending of one calendar day.
type DailySpending struct {
	Date         string // yyyy-mm-dd
	TotalAmount  float64
	ExpenseCount int
}

// SpendingTrends buckets expenses dated within the last days days of now
// by day, oldest first. A non-positive days uses DefaultTrendDays.
func SpendingTrends(expenses []models.Expense, days int, now time.Time) []DailySpending {
	if days <= 0 {
		days = DefaultTrendDays
	}
	cutoff := now.AddDate(0, 0, -days).Unix()

	byDay := make(map[string]*DailySpending)
	for _, e := range unsettled(expenses) {
		if e.Date < cutoff {
			continue
		}
		day := dateOf(e).Format(time.DateOnly)
		d, ok := byDay[day]
		if !ok {
			d = &DailySpending{Date: day}
			byDay[day] = d
		}
		d.TotalAmount += e.Amount
		d.ExpenseCount++
	}

	out := make([]DailySpending, 0, len(byDay))
	for _, d := range byDay {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// MemberSpending is what one member paid and consumed.
type MemberSpending struct {
	MemberID   string
	MemberName string
	TotalPaid  float64
	TotalOwed  float64
	// NetAmount is TotalPaid - TotalOwed.
	NetAmount float64
	// ExpenseCount is the number of expenses the member paid.
	ExpenseCount int
}

// SpendingByMember reports every member, biggest payer first. Payers and
// split members outside members are ignored.
func SpendingByMember(members []models.Member, expenses []models.Expense, splits []models.ExpenseSplit) []MemberSpending {
	byMember := make(map[string]*MemberSpending, len(members))
	out := make([]MemberSpending, len(members))
	for i, m := range members {
		out[i] = MemberSpending{MemberID: m.ID, MemberName: m.Name}
		if out[i].MemberName == "" {
			out[i].MemberName = UnknownMemberName
		}
		byMember[m.ID] = &out[i]
	}

	open := make(map[string]bool)
	for _, e := range unsettled(expenses) {
		open[e.ID] = true
		if m, ok := byMember[e.PaidBy]; ok {
			m.TotalPaid += e.Amount
			m.ExpenseCount++
		}
	}
	for _, s := range splits {
		if !open[s.ExpenseID] {
			continue
		}
		if m, ok := byMember[s.MemberID]; ok {
			m.TotalOwed += s.Amount
		}
	}

	for i := range out {
		out[i].NetAmount = out[i].TotalPaid - out[i].TotalOwed
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TotalPaid > out[j].TotalPaid })
	return out
}

// Period selects the bucket size of SpendingByPeriod.
type Period string

const (
	PeriodMonthly Period = "monthly"
	PeriodWeekly  Period = "weekly"
)

// ParsePeriod maps "monthly" or "weekly" to a Period. An empty string
// means monthly.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case "", PeriodMonthly:
		return PeriodMonthly, nil
	case PeriodWeekly:
		return PeriodWeekly, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPeriod, s)
	}
}

// PeriodSpending is the spending of one month ("2026-03") or ISO week
// ("2026-W09").
type PeriodSpending struct {
	Period        string
	TotalAmount   float64
	ExpenseCount  int
	AverageAmount float64
}

// SpendingByPeriod buckets expenses by month or ISO week, oldest first.
func SpendingByPeriod(expenses []models.Expense, period Period) []PeriodSpending {
	byPeriod := make(map[string]*PeriodSpending)
	for _, e := range unsettled(expenses) {
		key := periodKey(dateOf(e), period)
		p, ok := byPeriod[key]
		if !ok {
			p = &PeriodSpending{Period: key}
			byPeriod[key] = p
		}
		p.TotalAmount += e.Amount
		p.ExpenseCount++
	}

	out := make([]PeriodSpending, 0, len(byPeriod))
	for _, p := range byPeriod {
		p.AverageAmount = p.TotalAmount / float64(p.ExpenseCount)
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period < out[j].Period })
	return out
}

func periodKey(t time.Time, period Period) string {
	if period == PeriodWeekly {
		year, week := t.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	}
	return t.Format("2006-01")
}

// WeekdaySpending is the spending on one day of the week.
type WeekdaySpending struct {
	Weekday       string
	Count         int
	TotalAmount   float64
	AverageAmount float64
}

// WeekdayPatterns totals expenses per weekday, Sunday first. Days without
// expenses are left out.
func WeekdayPatterns(expenses []models.Expense) []WeekdaySpending {
	var days [7]WeekdaySpending
	for _, e := range unsettled(expenses) {
		d := &days[dateOf(e).Weekday()]
		d.Count++
		d.TotalAmount += e.Amount
	}

	out := []WeekdaySpending{}
	for i, d := range days {
		if d.Count == 0 {
			continue
		}
		d.Weekday = time.Weekday(i).String()
		d.AverageAmount = d.TotalAmount / float64(d.Count)
		out = append(out, d)
	}
	return out
}

// CategoryFrequency is how often a category is used.
type CategoryFrequency struct {
	Category      string
	Frequency     int
	AverageAmount float64
	TotalAmount   float64
}

// CategoryPatterns ranks categories by number of expenses, most used first.
func CategoryPatterns(expenses []models.Expense) []CategoryFrequency {
	byCategory := make(map[string]*CategoryFrequency)
	for _, e := range unsettled(expenses) {
		name := categoryOf(e)
		c, ok := byCategory[name]
		if !ok {
			c = &CategoryFrequency{Category: name}
			byCategory[name] = c
		}
		c.Frequency++
		c.TotalAmount += e.Amount
	}

	out := make([]CategoryFrequency, 0, len(byCategory))
	for _, c := range byCategory {
		c.AverageAmount = c.TotalAmount / float64(c.Frequency)
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Frequency != out[j].Frequency {
			return out[i].Frequency > out[j].Frequency
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// AmountRangeSpending counts expenses whose amount falls in a range.
type AmountRangeSpending struct {
	Range       string
	Count       int
	TotalAmount float64
}

var amountRanges = []struct {
	label    string
	min, max float64
}{
	{"$0 - $10", 0, 10},
	{"$10 - $50", 10, 50},
	{"$50 - $100", 50, 100},
	{"$100 - $500", 100, 500},
	{"$500+", 500, math.Inf(1)},
}

// AmountRangePatterns buckets expenses by amount, smallest range first.
// Ranges include their lower bound. Empty ranges are left out.
func AmountRangePatterns(expenses []models.Expense) []AmountRangeSpending {
	buckets := make([]AmountRangeSpending, len(amountRanges))
	for i, r := range amountRanges {
		buckets[i].Range = r.label
	}

	for _, e := range unsettled(expenses) {
		for i, r := range amountRanges {
			if e.Amount >= r.min && e.Amount < r.max {
				buckets[i].Count++
				buckets[i].TotalAmount += e.Amount
				break
			}
		}
	}

	out := []AmountRangeSpending{}
	for _, b := range buckets {
		if b.Count > 0 {
			out = append(out, b)
		}
	}
	return out
}

// GroupSpending summarizes one group for side-by-side comparison.
type GroupSpending struct {
	GroupID           string
	GroupName         string
	TotalAmount       float64
	ExpenseCount      int
	MemberCount       int
	AveragePerMember  float64
	AveragePerExpense float64
	Categories        []CategorySpending
	TopSpenders       []MemberSpending
}

// CompareGroup builds the comparison entry of one group from its snapshot.
func CompareGroup(group models.Group, members []models.Member, expenses []models.Expense, splits []models.ExpenseSplit) GroupSpending {
	categories := CategoryBreakdown(expenses)
	spenders := SpendingByMember(members, expenses, splits)

	g := GroupSpending{
		GroupID:     group.ID,
		GroupName:   group.Name,
		MemberCount: len(members),
		Categories:  categories,
		TopSpenders: spenders[:min(len(spenders), TopSpenderLimit)],
	}
	for _, c := range categories {
		g.TotalAmount += c.TotalAmount
		g.ExpenseCount += c.ExpenseCount
	}
	if g.MemberCount > 0 {
		g.AveragePerMember = g.TotalAmount / float64(g.MemberCount)
	}
	if g.ExpenseCount > 0 {
		g.AveragePerExpense = g.TotalAmount / float64(g.ExpenseCount)
	}
	return g
}

// GroupTotal names a group and its total spending.
type GroupTotal struct {
	GroupID string
	Name    string
	Amount  float64
}

// ComparisonSummary aggregates a set of compared groups.
type ComparisonSummary struct {
	TotalGroups       int
	TotalAmount       float64
	TotalExpenses     int
	TotalMembers      int
	AveragePerGroup   float64
	AveragePerMember  float64
	AveragePerExpense float64
	Highest           GroupTotal
	Lowest            GroupTotal
}

// SummarizeComparison totals the groups and picks the highest and lowest
// spender. Ties keep the earlier group.
func SummarizeComparison(groups []GroupSpending) ComparisonSummary {
	s := ComparisonSummary{TotalGroups: len(groups)}
	if len(groups) == 0 {
		return s
	}

	hi, lo := groups[0], groups[0]
	for _, g := range groups {
		s.TotalAmount += g.TotalAmount
		s.TotalExpenses += g.ExpenseCount
		s.TotalMembers += g.MemberCount
		if g.TotalAmount > hi.TotalAmount {
			hi = g
		}
		if g.TotalAmount < lo.TotalAmount {
			lo = g
		}
	}
	s.AveragePerGroup = s.TotalAmount / float64(len(groups))
	if s.TotalMembers > 0 {
		s.AveragePerMember = s.TotalAmount / float64(s.TotalMembers)
	}
	if s.TotalExpenses > 0 {
		s.AveragePerExpense = s.TotalAmount / float64(s.TotalExpenses)
	}
	s.Highest = GroupTotal{GroupID: hi.GroupID, Name: hi.GroupName, Amount: hi.TotalAmount}
	s.Lowest = GroupTotal{GroupID: lo.GroupID, Name: lo.GroupName, Amount: lo.TotalAmount}
	return s
}

func unsettled(expenses []models.Expense) []models.Expense {
	out := make([]models.Expense, 0, len(expenses))
	for _, e := range expenses {
		if !e.Settled {
			out = append(out, e)
		}
	}
	return out
}

func categoryOf(e models.Expense) string {
	if e.Category == "" {
		return UncategorizedLabel
	}
	return e.Category
}

func dateOf(e models.Expense) time.Time {
	return time.Unix(e.Date, 0).UTC()
}
