package calculator

import (
	"math"
	"testing"
	"time"
)

func TestSummarize(t *testing.T) {
	s := Summarize([]Balance{
		{MemberID: "a", TotalOwed: -60},
		{MemberID: "b", TotalOwed: 30},
		{MemberID: "c", TotalOwed: 30},
		{MemberID: "d", TotalOwed: 0.005},
	})

	if math.Abs(s.TotalOwed-60.005) > 1e-9 {
		t.Errorf("TotalOwed = %v, want 60.005", s.TotalOwed)
	}
	if s.TotalOwedTo != 60 {
		t.Errorf("TotalOwedTo = %v, want 60", s.TotalOwedTo)
	}
	if s.MemberCount != 4 || s.MembersOwing != 2 || s.MembersOwed != 1 {
		t.Errorf("counts = %d/%d/%d, want 4/2/1", s.MemberCount, s.MembersOwing, s.MembersOwed)
	}
	if s.AverageOwedTo != 60 {
		t.Errorf("AverageOwedTo = %v, want 60", s.AverageOwedTo)
	}
}

func TestTrend(t *testing.T) {
	now := time.Date(2026, 3, 14, 18, 30, 0, 0, time.UTC)
	p := Trend([]Balance{{MemberID: "a", TotalOwed: -30}, {MemberID: "b"}, {MemberID: "c", TotalOwed: 30}}, now)
	if p.Date != "2026-03-14" {
		t.Errorf("Date = %q", p.Date)
	}
	if p.MemberCount != 2 {
		t.Errorf("MemberCount = %d, want 2", p.MemberCount)
	}
	if p.NetBalance != 0 {
		t.Errorf("NetBalance = %v, want 0", p.NetBalance)
	}
}

func TestDistribute(t *testing.T) {
	buckets := Distribute([]Balance{
		{TotalOwed: -150},
		{TotalOwed: -60},
		{TotalOwed: 0},
		{TotalOwed: 5},
		{TotalOwed: 100},
	})

	want := map[string]int{
		"< -$100":       1,
		"-$100 to -$50": 1,
		"$0 to $10":     2,
		"> $100":        1,
	}
	if len(buckets) != len(want) {
		t.Fatalf("got %d buckets, want %d: %+v", len(buckets), len(want), buckets)
	}
	for _, b := range buckets {
		if want[b.Range] != b.MemberCount {
			t.Errorf("bucket %q count = %d, want %d", b.Range, b.MemberCount, want[b.Range])
		}
	}
}

func TestCheckAlerts(t *testing.T) {
	balances := []Balance{
		{MemberID: "a", TotalOwed: -250},
		{MemberID: "b", TotalOwed: 120},
		{MemberID: "c", TotalOwed: 130},
	}
	ac := AlertContext{
		GroupID:         "g1",
		GroupName:       "Trip",
		CurrentMemberID: "b",
		Names:           map[string]string{"a": "Alice", "b": "Bob", "c": "Carol"},
		Now:             time.Unix(1700000000, 0),
	}

	alerts := CheckAlerts(balances, DefaultAlertPreferences(), ac)

	counts := map[AlertType]int{}
	for _, a := range alerts {
		counts[a.Type]++
		if a.GroupID != "g1" || a.CreatedAt != 1700000000 {
			t.Errorf("alert missing context: %+v", a)
		}
	}
	if counts[AlertHighBalance] != 3 || counts[AlertOwedToYou] != 1 || counts[AlertYouOwe] != 1 {
		t.Errorf("unexpected alert counts %v", counts)
	}
	if alerts[0].Severity != SeverityError || alerts[0].MemberID != "a" {
		t.Errorf("first alert should be Alice's error, got %+v", alerts[0])
	}
	if last := alerts[len(alerts)-1]; last.Severity != SeverityInfo {
		t.Errorf("last alert should be info, got %+v", last)
	}

	prefs := DefaultAlertPreferences()
	prefs.Enabled = false
	if got := CheckAlerts(balances, prefs, ac); len(got) != 0 {
		t.Errorf("disabled preferences should produce no alerts, got %d", len(got))
	}
}
