package source

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/obsidianstack/statuspanels/agent/internal/config"
)

type graphiteSource struct {
	ds     config.Datasource
	client *http.Client
}

// graphiteSeries is one element of the render API's JSON array.
// Each datapoint is [value|null, unix seconds].
type graphiteSeries struct {
	Target     string        `json:"target"`
	Datapoints [][2]*float64 `json:"datapoints"`
}

// Query calls the Graphite render API with format=json.
func (s *graphiteSource) Query(ctx context.Context, q Query) ([]Series, error) {
	params := url.Values{}
	params.Set("target", q.Expression)
	params.Set("format", "json")
	if !q.From.IsZero() {
		params.Set("from", strconv.FormatInt(q.From.Unix(), 10))
	}
	if !q.Until.IsZero() {
		params.Set("until", strconv.FormatInt(q.Until.Unix(), 10))
	}
	if q.MaxDataPoints > 0 {
		params.Set("maxDataPoints", strconv.Itoa(q.MaxDataPoints))
	}

	resp, err := get(ctx, s.client, joinURL(s.ds.Endpoint, "/render")+"?"+params.Encode(), "application/json")
	if err != nil {
		return nil, fetchErr(s.ds, "graphite render: %w", err)
	}
	defer resp.Body.Close()

	var raw []graphiteSeries
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fetchErr(s.ds, "graphite render: decode: %w", err)
	}

	out := make([]Series, 0, len(raw))
	for _, gs := range raw {
		series := Series{Target: gs.Target, Points: make([]Point, 0, len(gs.Datapoints))}
		for _, dp := range gs.Datapoints {
			var ts time.Time
			if dp[1] != nil {
				ts = time.Unix(int64(*dp[1]), 0).UTC()
			}
			series.Points = append(series.Points, Point{Timestamp: ts, Value: finite(dp[0])})
		}
		out = append(out, series)
	}
	return out, nil
}

// finite drops NaN and ±Inf so panels only ever see real numbers or nil.
func finite(v *float64) *float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	return v
}
