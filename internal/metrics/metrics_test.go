package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	return string(body)
}

func TestMetricsCounters(t *testing.T) {
	m := New()

	m.SplitComputed("equal", true)
	m.SplitComputed("equal", true)
	m.SplitComputed("custom", false)
	m.CacheLookup(true)
	m.CacheLookup(false)
	m.CacheLookup(false)
	m.CacheInvalidated()

	out := scrape(t, m)
	for _, want := range []string{
		`splitledger_split_computations_total{strategy="equal",valid="true"} 2`,
		`splitledger_split_computations_total{strategy="custom",valid="false"} 1`,
		`splitledger_balance_cache_lookups_total{result="miss"} 2`,
		`splitledger_balance_cache_invalidations_total 1`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestMetricsHandler(t *testing.T) {
	m := New()
	m.ObserveBalance("group_balances", time.Now())
	m.CacheLookup(true)

	body := scrape(t, m)
	for _, want := range []string{
		"splitledger_balance_cache_lookups_total{result=\"hit\"} 1",
		"splitledger_balance_computation_seconds_count{operation=\"group_balances\"} 1",
		"go_goroutines",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.SplitComputed("equal", true)
	m.CacheLookup(true)
	m.CacheInvalidated()
	m.ObserveBalance("x", time.Now())
}
