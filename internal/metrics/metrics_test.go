package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCountersIncrement(t *testing.T) {
	before := testutil.ToFloat64(IdempotentNoops.WithLabelValues(OpSettle))
	IdempotentNoops.WithLabelValues(OpSettle).Inc()
	after := testutil.ToFloat64(IdempotentNoops.WithLabelValues(OpSettle))
	if after-before != 1 {
		t.Errorf("expected counter to grow by 1, got %v", after-before)
	}
}

func TestLedgerSourcesAreDistinct(t *testing.T) {
	LedgerEntriesCreated.WithLabelValues(SourceSavings).Inc()
	if got := testutil.ToFloat64(LedgerEntriesCreated.WithLabelValues(SourceRecurring)); got != 0 {
		t.Errorf("expected recurring count untouched, got %v", got)
	}
}
