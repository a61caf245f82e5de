package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/prometheus/common/model"

	"github.com/obsidianstack/statuspanels/agent/internal/config"
)

const (
	// minStep is the finest query_range resolution requested.
	minStep = time.Second

	// defaultStep is used when the query carries no MaxDataPoints.
	defaultStep = time.Minute
)

type promSource struct {
	ds     config.Datasource
	client *http.Client
}

// promResponse is the envelope of every Prometheus HTTP API response.
type promResponse struct {
	Status    string `json:"status"`
	ErrorType string `json:"errorType"`
	Error     string `json:"error"`
	Data      struct {
		ResultType model.ValueType `json:"resultType"`
		Result     json.RawMessage `json:"result"`
	} `json:"data"`
}

// Query evaluates the expression with /api/v1/query_range. The step is chosen
// so the response holds at most MaxDataPoints points per series.
func (s *promSource) Query(ctx context.Context, q Query) ([]Series, error) {
	until := q.Until
	if until.IsZero() {
		until = time.Now()
	}
	from := q.From
	if from.IsZero() || !from.Before(until) {
		from = until.Add(-defaultStep)
	}

	params := url.Values{}
	params.Set("query", q.Expression)
	params.Set("start", formatTime(from))
	params.Set("end", formatTime(until))
	params.Set("step", strconv.FormatFloat(stepFor(until.Sub(from), q.MaxDataPoints).Seconds(), 'f', -1, 64))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		joinURL(s.ds.Endpoint, "/api/v1/query_range")+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fetchErr(s.ds, "prometheus query_range: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fetchErr(s.ds, "prometheus query_range: http get: %w", err)
	}
	defer resp.Body.Close()

	// Prometheus reports query errors as JSON with a 4xx/5xx status, so the
	// body is decoded before the status is checked.
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fetchErr(s.ds, "prometheus query_range: read body: %w", err)
	}
	var pr promResponse
	if err := json.Unmarshal(body, &pr); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fetchErr(s.ds, "prometheus query_range: unexpected status %d", resp.StatusCode)
		}
		return nil, fetchErr(s.ds, "prometheus query_range: decode: %w", err)
	}
	if pr.Status != "success" {
		return nil, fetchErr(s.ds, "prometheus query_range: %s: %s", pr.ErrorType, pr.Error)
	}

	series, err := decodeResult(pr.Data.ResultType, pr.Data.Result)
	if err != nil {
		return nil, fetchErr(s.ds, "prometheus query_range: %w", err)
	}
	return series, nil
}

// decodeResult converts a matrix or vector result into Series.
func decodeResult(typ model.ValueType, raw json.RawMessage) ([]Series, error) {
	switch typ {
	case model.ValMatrix:
		var m model.Matrix
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("decode matrix: %w", err)
		}
		out := make([]Series, 0, len(m))
		for _, ss := range m {
			series := Series{Target: ss.Metric.String(), Points: make([]Point, 0, len(ss.Values))}
			for _, sp := range ss.Values {
				series.Points = append(series.Points, Point{
					Timestamp: sp.Timestamp.Time().UTC(),
					Value:     sampleValue(sp.Value),
				})
			}
			out = append(out, series)
		}
		return out, nil

	case model.ValVector:
		var v model.Vector
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("decode vector: %w", err)
		}
		out := make([]Series, 0, len(v))
		for _, s := range v {
			out = append(out, Series{
				Target: s.Metric.String(),
				Points: []Point{{Timestamp: s.Timestamp.Time().UTC(), Value: sampleValue(s.Value)}},
			})
		}
		return out, nil

	default:
		return nil, fmt.Errorf("unsupported result type %q", typ)
	}
}

func sampleValue(v model.SampleValue) *float64 {
	f := float64(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// stepFor picks the query resolution for a range and a point budget.
func stepFor(rng time.Duration, maxPoints int) time.Duration {
	if maxPoints <= 0 {
		return defaultStep
	}
	step := (rng / time.Duration(maxPoints)).Truncate(time.Second)
	if step < minStep {
		return minStep
	}
	return step
}

func formatTime(t time.Time) string {
	return strconv.FormatFloat(float64(t.UnixNano())/1e9, 'f', -1, 64)
}
