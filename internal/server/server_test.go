package server

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mmynk/splitledger/internal/cache"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/service"
	"github.com/mmynk/splitledger/internal/storage/sqlite"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
}

func setupTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	m := metrics.New()
	balances := service.NewBalanceService(store, cache.New[*service.GroupBalances](time.Minute), service.WithMetrics(m))
	srv := New(Services{
		Groups:      service.NewGroupService(store),
		Expenses:    service.NewExpenseService(store, balances, m),
		Settlements: service.NewSettlementService(store, balances),
		Balances:    balances,
		Analytics:   service.NewAnalyticsService(store, m, nil),
		Metrics:     m,
	})

	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(func() {
		ts.Close()
		store.Close()
	})
	return ts
}

func do(t *testing.T, ts *httptest.Server, method, path string, body any) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, ts.URL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
			t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
	return resp.StatusCode, env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(env.Data, &v); err != nil {
		t.Fatalf("decode data: %v (%s)", err, env.Data)
	}
	return v
}

func TestHealthz(t *testing.T) {
	ts := setupTestServer(t)

	status, env := do(t, ts, http.MethodGet, "/healthz", nil)
	if status != http.StatusOK || !env.Success {
		t.Errorf("healthz: status %d, success %v", status, env.Success)
	}
}

func TestExpenseFlow(t *testing.T) {
	ts := setupTestServer(t)

	status, env := do(t, ts, http.MethodPost, "/groups", CreateGroupRequest{Name: "Roommates"})
	if status != http.StatusCreated {
		t.Fatalf("create group: status %d, error %+v", status, env.Error)
	}
	group := decodeData[GroupResponse](t, env)

	ids := map[string]string{}
	for _, name := range []string{"A", "B", "C"} {
		status, env := do(t, ts, http.MethodPost, "/groups/"+group.ID+"/members", AddMemberRequest{Name: name})
		if status != http.StatusCreated {
			t.Fatalf("add member %s: status %d", name, status)
		}
		ids[name] = decodeData[MemberResponse](t, env).ID
	}

	status, env = do(t, ts, http.MethodPost, "/groups/"+group.ID+"/expenses", ExpenseRequest{
		PaidBy:   ids["A"],
		Amount:   90,
		Category: "food",
		Split:    SplitRequest{Type: "equal", MemberIDs: []string{ids["A"], ids["B"], ids["C"]}},
	})
	if status != http.StatusCreated {
		t.Fatalf("create expense: status %d, error %+v", status, env.Error)
	}
	expense := decodeData[ExpenseResponse](t, env)
	if len(expense.Splits) != 3 {
		t.Fatalf("expected 3 splits, got %d", len(expense.Splits))
	}

	t.Run("balances", func(t *testing.T) {
		status, env := do(t, ts, http.MethodGet, "/groups/"+group.ID+"/balances", nil)
		if status != http.StatusOK {
			t.Fatalf("status %d", status)
		}
		gb := decodeData[GroupBalancesResponse](t, env)
		want := map[string]float64{ids["A"]: -60, ids["B"]: 30, ids["C"]: 30}
		for _, b := range gb.Balances {
			if math.Abs(b.TotalOwed-want[b.MemberID]) > 0.01 {
				t.Errorf("%s: got %.2f, want %.2f", b.MemberName, b.TotalOwed, want[b.MemberID])
			}
		}
		if len(gb.Debts) != 2 {
			t.Errorf("expected 2 debts, got %+v", gb.Debts)
		}
	})

	t.Run("member balance", func(t *testing.T) {
		status, env := do(t, ts, http.MethodGet, "/groups/"+group.ID+"/balances/"+ids["A"], nil)
		if status != http.StatusOK {
			t.Fatalf("status %d", status)
		}
		mb := decodeData[MemberBalanceResponse](t, env)
		if math.Abs(mb.TotalOwed+60) > 0.01 || len(mb.PaidExpenses) != 1 {
			t.Errorf("unexpected member balance %+v", mb)
		}
	})

	t.Run("update with percentage split", func(t *testing.T) {
		status, env := do(t, ts, http.MethodPut, "/expenses/"+expense.ID, ExpenseRequest{
			PaidBy:   ids["B"],
			Amount:   50,
			Category: "food",
			Split: SplitRequest{Type: "percentage", Shares: []SplitShare{
				{MemberID: ids["A"], Value: 60},
				{MemberID: ids["B"], Value: 40},
			}},
		})
		if status != http.StatusOK {
			t.Fatalf("status %d, error %+v", status, env.Error)
		}

		_, env = do(t, ts, http.MethodGet, "/groups/"+group.ID+"/debts", nil)
		debts := decodeData[[]DebtResponse](t, env)
		if len(debts) != 1 || debts[0].FromMemberID != ids["A"] || math.Abs(debts[0].Amount-30) > 0.01 {
			t.Errorf("unexpected debts after update: %+v", debts)
		}
	})

	t.Run("settlement offsets settled balances", func(t *testing.T) {
		status, env := do(t, ts, http.MethodPost, "/groups/"+group.ID+"/settlements", SettlementRequest{
			FromMemberID: ids["A"], ToMemberID: ids["B"], Amount: 30,
		})
		if status != http.StatusCreated {
			t.Fatalf("status %d, error %+v", status, env.Error)
		}
		settlement := decodeData[SettlementResponse](t, env)

		_, env = do(t, ts, http.MethodGet, "/groups/"+group.ID+"/settled-balances", nil)
		settled := decodeData[SettledBalancesResponse](t, env)
		for _, b := range settled.Balances {
			if math.Abs(b.TotalOwed) > 0.01 {
				t.Errorf("%s should be square, got %.2f", b.MemberName, b.TotalOwed)
			}
		}

		status, _ = do(t, ts, http.MethodDelete, "/settlements/"+settlement.ID, nil)
		if status != http.StatusNoContent {
			t.Errorf("delete settlement: status %d", status)
		}
	})

	t.Run("delete expense", func(t *testing.T) {
		status, _ := do(t, ts, http.MethodDelete, "/expenses/"+expense.ID, nil)
		if status != http.StatusNoContent {
			t.Fatalf("status %d", status)
		}
		status, env := do(t, ts, http.MethodGet, "/expenses/"+expense.ID, nil)
		if status != http.StatusNotFound || env.Error == nil || env.Error.Code != "NOT_FOUND" {
			t.Errorf("expected NOT_FOUND, got %d %+v", status, env.Error)
		}
	})
}

func TestErrorMapping(t *testing.T) {
	ts := setupTestServer(t)

	_, env := do(t, ts, http.MethodPost, "/groups", CreateGroupRequest{Name: "Trip"})
	group := decodeData[GroupResponse](t, env)
	var members []string
	for _, name := range []string{"A", "B"} {
		_, env := do(t, ts, http.MethodPost, "/groups/"+group.ID+"/members", AddMemberRequest{Name: name})
		members = append(members, decodeData[MemberResponse](t, env).ID)
	}
	a, b := members[0], members[1]

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{"unknown group", http.MethodGet, "/groups/missing", nil, http.StatusNotFound, "NOT_FOUND"},
		{"invalid group", http.MethodPost, "/groups", CreateGroupRequest{Name: ""}, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad split type", http.MethodPost, "/groups/" + group.ID + "/expenses",
			ExpenseRequest{PaidBy: "x", Amount: 10, Category: "food", Split: SplitRequest{Type: "itemized"}},
			http.StatusBadRequest, "BAD_REQUEST"},
		{"unknown field", http.MethodPost, "/groups", map[string]string{"title": "x"}, http.StatusBadRequest, "BAD_REQUEST"},
		{"self settlement", http.MethodPost, "/groups/" + group.ID + "/settlements",
			SettlementRequest{FromMemberID: "a", ToMemberID: "a", Amount: 5},
			http.StatusBadRequest, "INVALID_INPUT"},
		{"settlement rounding to zero", http.MethodPost, "/groups/" + group.ID + "/settlements",
			SettlementRequest{FromMemberID: b, ToMemberID: a, Amount: 0.004},
			http.StatusBadRequest, "INVALID_INPUT"},
		{"repeated split member", http.MethodPost, "/groups/" + group.ID + "/expenses",
			ExpenseRequest{PaidBy: a, Amount: 90, Category: "food", Split: SplitRequest{Type: "equal", MemberIDs: []string{a, a, b}}},
			http.StatusBadRequest, "INVALID_INPUT"},
		{"repeated custom member", http.MethodPost, "/groups/" + group.ID + "/expenses",
			ExpenseRequest{PaidBy: a, Amount: 90, Category: "food", Split: SplitRequest{Type: "custom", Shares: []SplitShare{
				{MemberID: a, Value: 45}, {MemberID: a, Value: 45},
			}}},
			http.StatusBadRequest, "INVALID_INPUT"},
		{"non-numeric trend days", http.MethodGet, "/groups/" + group.ID + "/analytics/trends?days=week", nil,
			http.StatusBadRequest, "BAD_REQUEST"},
		{"unknown period", http.MethodGet, "/groups/" + group.ID + "/analytics/periods?period=daily", nil,
			http.StatusBadRequest, "INVALID_INPUT"},
		{"comparison without groups", http.MethodGet, "/analytics/groups", nil,
			http.StatusBadRequest, "INVALID_INPUT"},
		{"comparison with unknown group", http.MethodGet, "/analytics/groups?ids=" + group.ID + ",missing", nil,
			http.StatusNotFound, "NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := do(t, ts, tt.method, tt.path, tt.body)
			if status != tt.status {
				t.Errorf("status = %d, want %d", status, tt.status)
			}
			if env.Success || env.Error == nil || env.Error.Code != tt.code {
				t.Errorf("unexpected envelope %+v", env)
			}
		})
	}
}

func TestSpendingAnalytics(t *testing.T) {
	ts := setupTestServer(t)

	_, env := do(t, ts, http.MethodPost, "/groups", CreateGroupRequest{Name: "Trip"})
	group := decodeData[GroupResponse](t, env)
	_, env = do(t, ts, http.MethodPost, "/groups/"+group.ID+"/members", AddMemberRequest{Name: "A"})
	a := decodeData[MemberResponse](t, env).ID
	_, env = do(t, ts, http.MethodPost, "/groups/"+group.ID+"/members", AddMemberRequest{Name: "B"})
	b := decodeData[MemberResponse](t, env).ID

	for _, e := range []struct {
		payer    string
		amount   float64
		category string
	}{{a, 60, "food"}, {b, 40, "travel"}, {a, 20, "food"}} {
		status, env := do(t, ts, http.MethodPost, "/groups/"+group.ID+"/expenses", ExpenseRequest{
			PaidBy:   e.payer,
			Amount:   e.amount,
			Category: e.category,
			Split:    SplitRequest{Type: "equal", MemberIDs: []string{a, b}},
		})
		if status != http.StatusCreated {
			t.Fatalf("create expense: status %d, error %+v", status, env.Error)
		}
	}
	base := "/groups/" + group.ID + "/analytics"

	t.Run("categories", func(t *testing.T) {
		status, env := do(t, ts, http.MethodGet, base+"/categories", nil)
		if status != http.StatusOK {
			t.Fatalf("status %d", status)
		}
		cats := decodeData[[]CategorySpendingResponse](t, env)
		if len(cats) != 2 || cats[0].Category != "food" || cats[0].ExpenseCount != 2 || cats[0].TotalAmount != 80 {
			t.Errorf("unexpected categories %+v", cats)
		}
	})

	t.Run("trends", func(t *testing.T) {
		status, env := do(t, ts, http.MethodGet, base+"/trends?days=7", nil)
		if status != http.StatusOK {
			t.Fatalf("status %d", status)
		}
		days := decodeData[[]DailySpendingResponse](t, env)
		if len(days) != 1 || days[0].TotalAmount != 120 || days[0].ExpenseCount != 3 {
			t.Errorf("unexpected trend %+v", days)
		}
	})

	t.Run("members", func(t *testing.T) {
		_, env := do(t, ts, http.MethodGet, base+"/members", nil)
		members := decodeData[[]MemberSpendingResponse](t, env)
		if len(members) != 2 || members[0].MemberID != a || members[0].TotalPaid != 80 || members[0].NetAmount != 20 {
			t.Errorf("unexpected member spending %+v", members)
		}
	})

	t.Run("periods", func(t *testing.T) {
		status, env := do(t, ts, http.MethodGet, base+"/periods?period=weekly", nil)
		if status != http.StatusOK {
			t.Fatalf("status %d", status)
		}
		periods := decodeData[[]PeriodSpendingResponse](t, env)
		if len(periods) != 1 || !strings.Contains(periods[0].Period, "-W") || periods[0].AverageAmount != 40 {
			t.Errorf("unexpected periods %+v", periods)
		}
	})

	t.Run("patterns", func(t *testing.T) {
		_, env := do(t, ts, http.MethodGet, base+"/patterns", nil)
		p := decodeData[ExpensePatternsResponse](t, env)
		if p.GroupID != group.ID || len(p.Weekdays) != 1 || p.Weekdays[0].Count != 3 {
			t.Errorf("unexpected weekdays %+v", p.Weekdays)
		}
		if len(p.AmountRanges) != 2 || p.AmountRanges[0].Range != "$10 - $50" || p.AmountRanges[1].Range != "$50 - $100" {
			t.Errorf("unexpected ranges %+v", p.AmountRanges)
		}
	})

	t.Run("comparison", func(t *testing.T) {
		_, env := do(t, ts, http.MethodPost, "/groups", CreateGroupRequest{Name: "Empty"})
		empty := decodeData[GroupResponse](t, env)

		status, env := do(t, ts, http.MethodGet, "/analytics/groups?ids="+group.ID+","+empty.ID, nil)
		if status != http.StatusOK {
			t.Fatalf("status %d, error %+v", status, env.Error)
		}
		cmp := decodeData[GroupComparisonResponse](t, env)
		if len(cmp.Groups) != 2 || cmp.Groups[0].TotalAmount != 120 || len(cmp.Groups[0].TopSpenders) != 2 {
			t.Errorf("unexpected groups %+v", cmp.Groups)
		}
		if cmp.Summary.Highest.Name != "Trip" || cmp.Summary.Lowest.Name != "Empty" {
			t.Errorf("unexpected summary %+v", cmp.Summary)
		}
	})
}

func TestMetricsEndpoint(t *testing.T) {
	ts := setupTestServer(t)

	_, env := do(t, ts, http.MethodPost, "/groups", CreateGroupRequest{Name: "Trip"})
	group := decodeData[GroupResponse](t, env)
	var members []string
	for _, name := range []string{"A", "B"} {
		_, env := do(t, ts, http.MethodPost, "/groups/"+group.ID+"/members", AddMemberRequest{Name: name})
		members = append(members, decodeData[MemberResponse](t, env).ID)
	}
	_, _ = members[0], members[1]
	do(t, ts, http.MethodGet, "/groups/"+group.ID+"/balances", nil)

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if !strings.Contains(string(body), `splitledger_balance_cache_lookups_total{result="miss"} 1`) {
		t.Errorf("expected a cache miss to be recorded, got:\n%s", body)
	}
}
