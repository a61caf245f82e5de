package source

import (
	"context"
	"fmt"
	"time"

	"github.com/obsidianstack/statuspanels/agent/internal/config"
)

// Point is one sample of a series. A nil Value is a missing point.
type Point struct {
	Timestamp time.Time
	Value     *float64
}

// Series is the time-ordered points of one matched metric.
type Series struct {
	// Target is the display label of the series.
	Target string
	Points []Point
}

// Sample returns the value a panel should display for s, and false when the
// series has no points. With more than one point the last one is skipped: the
// backend may still be aggregating it.
func (s Series) Sample() (*float64, bool) {
	switch n := len(s.Points); n {
	case 0:
		return nil, false
	case 1:
		return s.Points[0].Value, true
	default:
		return s.Points[n-2].Value, true
	}
}

// Query is one request for data.
type Query struct {
	Expression string
	From       time.Time
	Until      time.Time

	// MaxDataPoints caps the resolution of the response. Zero lets the
	// backend decide.
	MaxDataPoints int
}

// Source is the common interface implemented by every datasource.
type Source interface {
	Query(ctx context.Context, q Query) ([]Series, error)
}

// FetchError is a failed query. Its message is what a panel shows to users.
type FetchError struct {
	Datasource string
	Err        error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("datasource %q: %v", e.Datasource, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// New returns the appropriate Source for the given datasource configuration.
// It builds the HTTP client once and reuses it across queries.
func New(ds config.Datasource) (Source, error) {
	client, err := buildHTTPClient(ds)
	if err != nil {
		return nil, fmt.Errorf("source %q: build http client: %w", ds.ID, err)
	}
	switch ds.Type {
	case "graphite":
		return &graphiteSource{ds: ds, client: client}, nil
	case "prometheus":
		return &promSource{ds: ds, client: client}, nil
	case "exposition":
		return &expositionSource{ds: ds, client: client, now: time.Now}, nil
	default:
		return nil, fmt.Errorf("source: unsupported type %q", ds.Type)
	}
}

func fetchErr(ds config.Datasource, format string, args ...any) error {
	return &FetchError{Datasource: ds.ID, Err: fmt.Errorf(format, args...)}
}
