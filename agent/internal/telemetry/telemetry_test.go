package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Record(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveRefresh("p", OutcomeOK)
	m.ObserveRefresh("p", OutcomeOK)
	m.ObserveRefresh("p", OutcomeError)
	m.SetLevel("p", "web1", 3)
	m.SetFontSize("p", 78)
	m.SetValue("n", 5.5)

	if got := testutil.ToFloat64(m.refreshes.WithLabelValues("p", OutcomeOK)); got != 2 {
		t.Errorf("refreshes{ok} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.level.WithLabelValues("p", "web1")); got != 3 {
		t.Errorf("level = %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.fontSize.WithLabelValues("p")); got != 78 {
		t.Errorf("font size = %v, want 78", got)
	}
	if got := testutil.ToFloat64(m.value.WithLabelValues("n")); got != 5.5 {
		t.Errorf("value = %v, want 5.5", got)
	}
}

func TestMetrics_Forget(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.SetLevel("p", "a", 1)
	m.SetLevel("p", "b", 2)
	m.SetLevel("q", "a", 1)

	m.Forget("p")

	if got := testutil.CollectAndCount(m.level); got != 1 {
		t.Errorf("level series after Forget = %d, want 1", got)
	}
}

func TestMetrics_ForgetSeries(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.SetLevel("p", "a", 1)
	m.SetLevel("p", "b", 2)

	m.ForgetSeries("p", "a")

	if got := testutil.CollectAndCount(m.level); got != 1 {
		t.Errorf("level series after ForgetSeries = %d, want 1", got)
	}
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveRefresh("p", OutcomeOK)
	m.SetLevel("p", "s", 1)
	m.ForgetSeries("p", "s")
	m.SetFontSize("p", 1)
	m.SetValue("p", 1)
	m.Forget("p")
}
