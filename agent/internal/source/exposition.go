package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"github.com/prometheus/common/model"

	"github.com/obsidianstack/statuspanels/agent/internal/config"
)

// expositionSource scrapes a Prometheus text exposition endpoint. It has no
// history: each query returns the current value of every metric in the
// family named by the expression, as a single-point series.
type expositionSource struct {
	ds     config.Datasource
	client *http.Client
	now    func() time.Time // injectable for deterministic tests
}

// Query scrapes the endpoint and returns one series per metric of the
// family q.Expression. The time range is ignored.
func (s *expositionSource) Query(ctx context.Context, q Query) ([]Series, error) {
	mfs, err := fetchMetrics(ctx, s.client, s.ds.Endpoint)
	if err != nil {
		return nil, fetchErr(s.ds, "exposition scrape: %w", err)
	}

	mf, ok := mfs[q.Expression]
	if !ok {
		return nil, nil
	}

	scrapedAt := s.now().UTC()
	out := make([]Series, 0, len(mf.GetMetric()))
	for _, m := range mf.GetMetric() {
		ts := scrapedAt
		if m.TimestampMs != nil {
			ts = time.UnixMilli(m.GetTimestampMs()).UTC()
		}
		var value *float64
		if v, ok := metricValue(m); ok {
			value = finite(&v)
		}
		out = append(out, Series{
			Target: seriesLabel(mf.GetName(), m),
			Points: []Point{{Timestamp: ts, Value: value}},
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Target < out[j].Target })
	return out, nil
}

// fetchMetrics performs an HTTP GET to url and returns parsed metric families.
func fetchMetrics(ctx context.Context, client *http.Client, url string) (map[string]*dto.MetricFamily, error) {
	resp, err := get(ctx, client, url, string(expfmt.NewFormat(expfmt.TypeTextPlain)))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return parseMetrics(resp.Body)
}

// parseMetrics decodes a Prometheus text exposition from r into metric families.
// A partial result with a non-fatal parse warning is still returned successfully.
func parseMetrics(r io.Reader) (map[string]*dto.MetricFamily, error) {
	var parser expfmt.TextParser
	mfs, err := parser.TextToMetricFamilies(r)
	if err != nil && len(mfs) == 0 {
		return nil, fmt.Errorf("parse prometheus text: %w", err)
	}
	return mfs, nil
}

// metricValue extracts the scalar of a counter, gauge or untyped metric.
// Summaries and histograms report their sample sum.
func metricValue(m *dto.Metric) (float64, bool) {
	switch {
	case m.Counter != nil:
		return m.Counter.GetValue(), true
	case m.Gauge != nil:
		return m.Gauge.GetValue(), true
	case m.Untyped != nil:
		return m.Untyped.GetValue(), true
	case m.Summary != nil:
		return m.Summary.GetSampleSum(), true
	case m.Histogram != nil:
		return m.Histogram.GetSampleSum(), true
	default:
		return 0, false
	}
}

// seriesLabel renders name{label="value",...} for a metric.
func seriesLabel(name string, m *dto.Metric) string {
	metric := model.Metric{model.MetricNameLabel: model.LabelValue(name)}
	for _, lp := range m.GetLabel() {
		metric[model.LabelName(lp.GetName())] = model.LabelValue(lp.GetValue())
	}
	return metric.String()
}
