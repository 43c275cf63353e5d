package observability

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveHTTP_RecordsCounterAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	Init(reg, true)
	t.Cleanup(func() { enabled.Store(false) })

	ObserveHTTP("GET", "/linked-data/comid/{comid}", 200, 0.01)

	if got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/linked-data/comid/{comid}", "200")); got != 1 {
		t.Fatalf("counter = %v, want 1", got)
	}
}

func TestObserveNavigation_DisabledIsNoop(t *testing.T) {
	enabled.Store(false)
	// must not panic when collectors are nil
	ObserveNavigation("UM", 3, 0.02, nil)
}

func TestOutcomeOf(t *testing.T) {
	if outcomeOf(nil) != "ok" {
		t.Fatal("nil error should classify as ok")
	}
	if outcomeOf(errors.New("boom")) != "error" {
		t.Fatal("generic error should classify as error")
	}
}
