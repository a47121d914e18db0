package calculator

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// BalanceSummary is a balance with the member's display name attached.
type BalanceSummary struct {
	MemberID   string
	MemberName string
	TotalOwed  float64
}

// Summaries attaches names to balances, preserving order.
func Summaries(balances []Balance, names map[string]string) []BalanceSummary {
	out := make([]BalanceSummary, len(balances))
	for i, b := range balances {
		out[i] = BalanceSummary{
			MemberID:   b.MemberID,
			MemberName: nameOf(names, b.MemberID),
			TotalOwed:  b.TotalOwed,
		}
	}
	return out
}

// AnalyticsSummary aggregates a group's balances.
type AnalyticsSummary struct {
	TotalOwed     float64 // Sum of positive balances
	TotalOwedTo   float64 // Magnitude of the sum of negative balances
	NetBalance    float64
	MemberCount   int
	MembersOwing  int
	MembersOwed   int
	AverageOwed   float64
	AverageOwedTo float64
}

// Summarize computes totals and averages across balances. Members count as
// owing or owed only beyond Tolerance.
func Summarize(balances []Balance) AnalyticsSummary {
	s := AnalyticsSummary{MemberCount: len(balances)}
	for _, b := range balances {
		if b.TotalOwed > 0 {
			s.TotalOwed += b.TotalOwed
		} else if b.TotalOwed < 0 {
			s.TotalOwedTo -= b.TotalOwed
		}
		if b.TotalOwed > Tolerance {
			s.MembersOwing++
		} else if b.TotalOwed < -Tolerance {
			s.MembersOwed++
		}
	}
	s.NetBalance = s.TotalOwed - s.TotalOwedTo
	if s.MembersOwing > 0 {
		s.AverageOwed = s.TotalOwed / float64(s.MembersOwing)
	}
	if s.MembersOwed > 0 {
		s.AverageOwedTo = s.TotalOwedTo / float64(s.MembersOwed)
	}
	return s
}

// TrendPoint is the state of a group's balances on one day.
type TrendPoint struct {
	Date        string // yyyy-mm-dd
	TotalOwed   float64
	TotalOwedTo float64
	NetBalance  float64
	// MemberCount is the number of members with a balance beyond Tolerance.
	MemberCount int
}

// Trend summarizes balances as a single data point for the day of now.
// Pass settlement-adjusted balances to reflect recorded payments.
func Trend(balances []Balance, now time.Time) TrendPoint {
	s := Summarize(balances)
	p := TrendPoint{
		Date:        now.Format(time.DateOnly),
		TotalOwed:   s.TotalOwed,
		TotalOwedTo: s.TotalOwedTo,
		NetBalance:  s.NetBalance,
	}
	for _, b := range balances {
		if math.Abs(b.TotalOwed) > Tolerance {
			p.MemberCount++
		}
	}
	return p
}

// DistributionBucket counts members whose balance falls in one range.
type DistributionBucket struct {
	Range       string
	MemberCount int
	TotalAmount float64 // Sum of absolute balances in the range
}

var distributionRanges = []struct {
	min, max float64
	label    string
}{
	{math.Inf(-1), -100, "< -$100"},
	{-100, -50, "-$100 to -$50"},
	{-50, -10, "-$50 to -$10"},
	{-10, 0, "-$10 to $0"},
	{0, 10, "$0 to $10"},
	{10, 50, "$10 to $50"},
	{50, 100, "$50 to $100"},
	{100, math.Inf(1), "> $100"},
}

// Distribute buckets balances into fixed ranges, [min, max) each.
// Empty buckets are omitted.
func Distribute(balances []Balance) []DistributionBucket {
	buckets := make([]DistributionBucket, len(distributionRanges))
	for i, r := range distributionRanges {
		buckets[i].Range = r.label
	}

	for _, b := range balances {
		for i, r := range distributionRanges {
			if b.TotalOwed >= r.min && b.TotalOwed < r.max {
				buckets[i].MemberCount++
				buckets[i].TotalAmount += math.Abs(b.TotalOwed)
				break
			}
		}
	}

	out := []DistributionBucket{}
	for _, bucket := range buckets {
		if bucket.MemberCount > 0 {
			out = append(out, bucket)
		}
	}
	return out
}

// AlertType classifies a balance alert.
type AlertType string

const (
	AlertHighBalance AlertType = "high_balance"
	AlertOwedToYou   AlertType = "owed_to_you"
	AlertYouOwe      AlertType = "you_owe"
)

// Severity orders alerts by importance.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

var severityRank = map[Severity]int{
	SeverityInfo:    1,
	SeverityWarning: 2,
	SeverityError:   3,
}

// AlertPreferences holds the thresholds that trigger alerts.
type AlertPreferences struct {
	Enabled              bool
	HighBalanceThreshold float64
	OwedToYouThreshold   float64
	YouOweThreshold      float64
	ShowHighBalance      bool
	ShowOwedToYou        bool
	ShowYouOwe           bool
}

// DefaultAlertPreferences returns the stock thresholds.
func DefaultAlertPreferences() AlertPreferences {
	return AlertPreferences{
		Enabled:              true,
		HighBalanceThreshold: 100,
		OwedToYouThreshold:   50,
		YouOweThreshold:      50,
		ShowHighBalance:      true,
		ShowOwedToYou:        true,
		ShowYouOwe:           true,
	}
}

// Alert is a notice about a balance crossing a threshold.
type Alert struct {
	ID         string
	GroupID    string
	GroupName  string
	MemberID   string
	MemberName string
	Type       AlertType
	Amount     float64
	Threshold  float64
	Message    string
	Severity   Severity
	CreatedAt  int64
}

// AlertContext describes whose view alerts are generated for.
type AlertContext struct {
	GroupID   string
	GroupName string
	// CurrentMemberID enables the owed-to-you and you-owe alerts.
	CurrentMemberID string
	Names           map[string]string
	Now             time.Time
}

// CheckAlerts evaluates balances against prefs and returns alerts sorted by
// severity, then amount, most important first.
func CheckAlerts(balances []Balance, prefs AlertPreferences, ac AlertContext) []Alert {
	alerts := []Alert{}
	if !prefs.Enabled {
		return alerts
	}

	stamp := ac.Now.Unix()
	for _, b := range balances {
		name := nameOf(ac.Names, b.MemberID)
		amount := math.Abs(b.TotalOwed)
		add := func(kind AlertType, suffix string, amount, threshold float64, severity Severity, msg string) {
			alerts = append(alerts, Alert{
				ID:         fmt.Sprintf("alert-%s-%s-%s-%d", ac.GroupID, b.MemberID, suffix, stamp),
				GroupID:    ac.GroupID,
				GroupName:  ac.GroupName,
				MemberID:   b.MemberID,
				MemberName: name,
				Type:       kind,
				Amount:     amount,
				Threshold:  threshold,
				Message:    msg,
				Severity:   severity,
				CreatedAt:  stamp,
			})
		}

		if prefs.ShowHighBalance && amount >= prefs.HighBalanceThreshold {
			severity := SeverityWarning
			if amount >= prefs.HighBalanceThreshold*2 {
				severity = SeverityError
			}
			add(AlertHighBalance, "high", amount, prefs.HighBalanceThreshold, severity,
				fmt.Sprintf("%s has a balance of $%.2f in %s", name, amount, ac.GroupName))
		}

		if ac.CurrentMemberID == "" {
			continue
		}

		if prefs.ShowOwedToYou && b.MemberID != ac.CurrentMemberID &&
			b.TotalOwed < 0 && amount >= prefs.OwedToYouThreshold {
			add(AlertOwedToYou, "owed", amount, prefs.OwedToYouThreshold, SeverityInfo,
				fmt.Sprintf("%s is owed $%.2f in %s", name, amount, ac.GroupName))
		}

		if prefs.ShowYouOwe && b.MemberID == ac.CurrentMemberID &&
			b.TotalOwed > 0 && b.TotalOwed >= prefs.YouOweThreshold {
			add(AlertYouOwe, "owe", b.TotalOwed, prefs.YouOweThreshold, SeverityWarning,
				fmt.Sprintf("You owe $%.2f in %s", b.TotalOwed, ac.GroupName))
		}
	}

	sort.SliceStable(alerts, func(a, b int) bool {
		ra, rb := severityRank[alerts[a].Severity], severityRank[alerts[b].Severity]
		if ra != rb {
			return ra > rb
		}
		return alerts[a].Amount > alerts[b].Amount
	})

	return alerts
}
