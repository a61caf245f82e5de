// Package telemetry exposes the agent's own Prometheus metrics: refresh
// outcomes per panel, the current status level of every health series, the
// fitted icon size and the latest numeric value.
//
// A nil *Metrics is valid and records nothing, so panels built in tests need
// no registry.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "statuspanels"

// Refresh outcomes.
const (
	OutcomeOK      = "ok"
	OutcomeError   = "error"
	OutcomeSkipped = "skipped"
	OutcomeStale   = "stale"
	OutcomeEmpty   = "empty"
)

// Metrics is the set of collectors registered by New.
type Metrics struct {
	refreshes *prometheus.CounterVec
	level     *prometheus.GaugeVec
	fontSize  *prometheus.GaugeVec
	value     *prometheus.GaugeVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "panel_refreshes_total",
			Help:      "Panel refresh attempts by outcome.",
		}, []string{"panel", "outcome"}),
		level: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "series_status_level",
			Help:      "Status level of a health series: 1 healthy, 2 warning, 3 error.",
		}, []string{"panel", "series"}),
		fontSize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "panel_icon_font_size_pixels",
			Help:      "Icon font size fitted for a health panel.",
		}, []string{"panel"}),
		value: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "panel_value",
			Help:      "Latest value shown by a numeric panel.",
		}, []string{"panel"}),
	}
	reg.MustRegister(m.refreshes, m.level, m.fontSize, m.value)
	return m
}

// ObserveRefresh counts one refresh of panel with the given outcome.
func (m *Metrics) ObserveRefresh(panel, outcome string) {
	if m == nil {
		return
	}
	m.refreshes.WithLabelValues(panel, outcome).Inc()
}

// SetLevel records the severity of one health series.
func (m *Metrics) SetLevel(panel, series string, severity int) {
	if m == nil {
		return
	}
	m.level.WithLabelValues(panel, series).Set(float64(severity))
}

// ForgetSeries drops the level of one health series that is no longer
// returned by its panel's expression.
func (m *Metrics) ForgetSeries(panel, series string) {
	if m == nil {
		return
	}
	m.level.DeleteLabelValues(panel, series)
}

// SetFontSize records the fitted icon size of a health panel.
func (m *Metrics) SetFontSize(panel string, px float64) {
	if m == nil {
		return
	}
	m.fontSize.WithLabelValues(panel).Set(px)
}

// SetValue records the value of a numeric panel.
func (m *Metrics) SetValue(panel string, v float64) {
	if m == nil {
		return
	}
	m.value.WithLabelValues(panel).Set(v)
}

// Forget drops every series of panel, after it was removed or re-created.
func (m *Metrics) Forget(panel string) {
	if m == nil {
		return
	}
	l := prometheus.Labels{"panel": panel}
	m.refreshes.DeletePartialMatch(l)
	m.level.DeletePartialMatch(l)
	m.fontSize.DeletePartialMatch(l)
	m.value.DeletePartialMatch(l)
}
