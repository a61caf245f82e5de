package panel

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/obsidianstack/statuspanels/agent/internal/config"
	"github.com/obsidianstack/statuspanels/agent/internal/source"
	"github.com/obsidianstack/statuspanels/agent/internal/telemetry"
	"github.com/obsidianstack/statuspanels/pkg/types"
)

var (
	// ErrBusy is returned by Refresh while an earlier refresh is in flight.
	ErrBusy = errors.New("panel: refresh already in flight")

	// ErrStale is returned by Refresh when the panel was closed while the
	// fetch was running. The result was dropped.
	ErrStale = errors.New("panel: result discarded, panel was closed")

	// ErrNotFound is returned by Board for an unknown panel ID.
	ErrNotFound = errors.New("panel: not found")
)

// Panel is one dashboard panel.
type Panel interface {
	ID() string

	// Refresh queries the datasource and applies the result.
	Refresh(ctx context.Context) error

	// Apply feeds series to the panel as if a refresh had returned them.
	Apply(series []source.Series)

	// Resize recomputes the layout for new container dimensions, using the
	// last applied data.
	Resize(width, height float64) error

	// SetMaxDataPoints sets the resolution requested by later refreshes.
	SetMaxDataPoints(n int)

	// View returns the current rendered state.
	View() types.PanelView

	// Close makes the panel drop the result of any in-flight refresh.
	Close()
}

// base holds what every panel kind shares: identity, the datasource, the
// loading flag and the last error. Panel kinds guard their own state with mu.
type base struct {
	id       string
	position int
	cfg      config.Panel
	src      source.Source
	metrics  *telemetry.Metrics
	now      func() time.Time
	publish  func(types.PanelView)

	mu        sync.Mutex
	loading   bool
	closed    bool
	gen       uint64
	errMsg    string
	width     float64
	height    float64
	maxPoints int
	updatedAt time.Time
}

func newBase(pos int, cfg config.Panel, src source.Source, m *telemetry.Metrics) *base {
	return &base{
		id:       cfg.ID,
		position: pos,
		cfg:      cfg,
		src:      src,
		metrics:  m,
		now:      time.Now,
		publish:  func(types.PanelView) {},
		height:   float64(cfg.Height),
	}
}

func (b *base) ID() string { return b.id }

func (b *base) SetMaxDataPoints(n int) {
	b.mu.Lock()
	b.maxPoints = n
	b.mu.Unlock()
}

func (b *base) Close() {
	b.mu.Lock()
	b.closed = true
	b.gen++
	b.loading = false
	b.mu.Unlock()
}

// begin marks the panel loading and returns the query to run and the
// generation it was started under.
func (b *base) begin() (source.Query, uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.loading {
		return source.Query{}, 0, ErrBusy
	}
	if b.closed {
		return source.Query{}, 0, ErrStale
	}
	b.loading = true
	b.errMsg = ""

	until := b.now()
	return source.Query{
		Expression:    b.cfg.Expression,
		From:          until.Add(-b.cfg.Range),
		Until:         until,
		MaxDataPoints: b.maxPoints,
	}, b.gen, nil
}

// refresh runs one refresh cycle. apply is called with b.mu held and
// returns the telemetry outcome; view is called without the lock to build the
// view that gets published.
func (b *base) refresh(ctx context.Context, apply func([]source.Series) string, view func() types.PanelView) error {
	q, gen, err := b.begin()
	if err != nil {
		if errors.Is(err, ErrBusy) {
			b.metrics.ObserveRefresh(b.id, telemetry.OutcomeSkipped)
		}
		return err
	}
	b.emit(view)

	series, err := b.src.Query(ctx, q)

	b.mu.Lock()
	if gen != b.gen {
		b.mu.Unlock()
		b.metrics.ObserveRefresh(b.id, telemetry.OutcomeStale)
		slog.Debug("panel: dropping result of closed panel", "panel", b.id)
		return ErrStale
	}
	b.loading = false
	b.updatedAt = b.now()
	if err != nil {
		// The last status, value and layout stay on screen.
		b.errMsg = err.Error()
		b.mu.Unlock()
		b.metrics.ObserveRefresh(b.id, telemetry.OutcomeError)
		slog.Warn("panel: fetch failed", "panel", b.id, "err", err)
		b.emit(view)
		return err
	}
	outcome := apply(series)
	b.mu.Unlock()

	b.metrics.ObserveRefresh(b.id, outcome)
	b.emit(view)
	return nil
}

// emit publishes the current view unless the panel was closed.
func (b *base) emit(view func() types.PanelView) {
	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if !closed {
		b.publish(view())
	}
}

// viewLocked fills the fields of a view shared by every panel kind.
func (b *base) viewLocked(kind string) types.PanelView {
	return types.PanelView{
		ID:        b.id,
		Kind:      kind,
		Position:  b.position,
		Loading:   b.loading,
		Error:     b.errMsg,
		Width:     b.width,
		Height:    b.height,
		UpdatedAt: b.updatedAt,
	}
}
