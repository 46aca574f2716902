package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name, strategy string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		for _, m := range fam.GetMetric() {
			if strategy == "" || hasLabel(m, "strategy", strategy) {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func hasLabel(m *dto.Metric, key, value string) bool {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == key && lp.GetValue() == value {
			return true
		}
	}
	return false
}

func TestPDFMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPDFMetrics(reg)

	m.IncSuccess("chromium")
	m.IncFailure("chromium")
	m.IncFailure("chromium")
	m.IncChainExhausted()
	m.ObserveDuration("chromium", 120*time.Millisecond)

	if got := counterValue(t, reg, "pdf_render_success", "chromium"); got != 1 {
		t.Fatalf("expected 1 success, got %v", got)
	}
	if got := counterValue(t, reg, "pdf_render_failure", "chromium"); got != 2 {
		t.Fatalf("expected 2 failures, got %v", got)
	}
	if got := counterValue(t, reg, "pdf_render_chain_exhausted", ""); got != 1 {
		t.Fatalf("expected 1 chain exhaustion, got %v", got)
	}
}

func TestNilRegistererIsNoop(t *testing.T) {
	m := NewPDFMetrics(nil)
	m.IncSuccess("x")
	m.IncFailure("x")
	m.IncChainExhausted()
	m.ObserveDuration("x", time.Second)
}
