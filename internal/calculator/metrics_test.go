package calculator

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInitMetrics(t *testing.T) {
	if err := InitMetrics(); err != nil {
		t.Fatalf("initializing calculator metrics: %v", err)
	}
	if keysCounter == nil || keyHistogram == nil || sessionsActive == nil {
		t.Fatal("expected instruments to be created")
	}
}

func TestRegisterSessionGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	store := NewStore()
	store.Create()
	store.Create()

	if err := RegisterSessionGauge(reg, store); err != nil {
		t.Fatalf("registering gauge: %v", err)
	}
	if err := RegisterSessionGauge(reg, store); err != nil {
		t.Fatalf("registering twice should be tolerated: %v", err)
	}

	want := `
# HELP calculator_sessions Number of calculator sessions currently held in memory.
# TYPE calculator_sessions gauge
calculator_sessions 2
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(want), "calculator_sessions"); err != nil {
		t.Fatalf("unexpected metric output: %v", err)
	}
}
