package panel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/obsidianstack/statuspanels/agent/internal/config"
	"github.com/obsidianstack/statuspanels/agent/internal/layout"
	"github.com/obsidianstack/statuspanels/agent/internal/source"
	"github.com/obsidianstack/statuspanels/agent/internal/store"
	"github.com/obsidianstack/statuspanels/agent/internal/telemetry"
	"github.com/obsidianstack/statuspanels/pkg/types"
)

// SourceFactory builds the Source for a datasource config.
type SourceFactory func(config.Datasource) (source.Source, error)

// Observer is told about every published view and about panels dropped by a
// reload.
type Observer interface {
	Evaluate(types.PanelView)
	Forget(panelID string)
}

// Board owns the panels built from one configuration, the viewport width and
// the fullscreen flag. Every view change is published to the store.
type Board struct {
	store     *store.Store
	metrics   *telemetry.Metrics
	newSource SourceFactory
	now       func() time.Time
	observers []Observer

	mu         sync.RWMutex
	panels     []Panel
	byID       map[string]Panel
	spans      map[string]int
	viewport   float64
	fullscreen bool
}

// NewBoard returns an empty Board. Call Load to build its panels.
func NewBoard(st *store.Store, m *telemetry.Metrics) *Board {
	return &Board{
		store:     st,
		metrics:   m,
		newSource: source.New,
		now:       time.Now,
		byID:      make(map[string]Panel),
		spans:     make(map[string]int),
	}
}

// Observe registers o. Call it before Load.
func (b *Board) Observe(o Observer) {
	b.observers = append(b.observers, o)
}

// publish stores v and hands it to every observer.
func (b *Board) publish(v types.PanelView) {
	b.store.Put(v)
	for _, o := range b.observers {
		o.Evaluate(v)
	}
}

// Load builds the panels of cfg and replaces the current ones. On error the
// current panels are kept.
func (b *Board) Load(cfg *config.Config) error {
	sources := make(map[string]source.Source, len(cfg.Agent.Datasources))
	for _, ds := range cfg.Agent.Datasources {
		src, err := b.newSource(ds)
		if err != nil {
			return fmt.Errorf("panel: datasource %q: %w", ds.ID, err)
		}
		sources[ds.ID] = src
	}

	panels := make([]Panel, 0, len(cfg.Agent.Panels))
	byID := make(map[string]Panel, len(cfg.Agent.Panels))
	spans := make(map[string]int, len(cfg.Agent.Panels))
	for i, pc := range cfg.Agent.Panels {
		src, ok := sources[pc.Datasource]
		if !ok {
			return fmt.Errorf("panel: %q: unknown datasource %q", pc.ID, pc.Datasource)
		}
		p, err := b.build(i, pc, src)
		if err != nil {
			return fmt.Errorf("panel: %q: %w", pc.ID, err)
		}
		panels = append(panels, p)
		byID[pc.ID] = p
		spans[pc.ID] = pc.Span
	}

	b.mu.Lock()
	old := b.panels
	b.panels, b.byID, b.spans = panels, byID, spans
	b.viewport = float64(cfg.Agent.ViewportWidth)
	viewport := b.viewport
	b.mu.Unlock()

	keep := make(map[string]bool, len(byID))
	for id := range byID {
		keep[id] = true
	}
	for _, p := range old {
		p.Close()
		b.metrics.Forget(p.ID())
		if keep[p.ID()] {
			continue
		}
		for _, o := range b.observers {
			o.Forget(p.ID())
		}
	}
	if n := b.store.Retain(keep); n > 0 {
		slog.Info("panel: removed views of dropped panels", "count", n)
	}

	// Publishes an initial view of every new panel.
	if err := b.SetViewport(viewport); err != nil {
		return err
	}
	slog.Info("panel: board loaded", "panels", len(panels), "datasources", len(sources))
	return nil
}

// Reload replaces the board with a new configuration. Panels are rebuilt, so
// in-flight refreshes of the old panels are discarded and delta state starts
// over.
func (b *Board) Reload(cfg *config.Config) error {
	return b.Load(cfg)
}

func (b *Board) build(pos int, pc config.Panel, src source.Source) (Panel, error) {
	var (
		p    Panel
		core *base
	)
	switch pc.Type {
	case types.KindHealth:
		h, err := NewHealth(pos, pc, src, b.metrics)
		if err != nil {
			return nil, err
		}
		p, core = h, h.base
	case types.KindNumeric:
		n, err := NewNumeric(pos, pc, src, b.metrics)
		if err != nil {
			return nil, err
		}
		p, core = n, n.base
	default:
		return nil, fmt.Errorf("unknown panel type %q", pc.Type)
	}
	core.now = b.now
	core.publish = b.publish
	return p, nil
}

// RefreshAll refreshes every panel concurrently and waits for all of them.
// It does nothing while the board is fullscreen.
func (b *Board) RefreshAll(ctx context.Context) {
	b.mu.RLock()
	if b.fullscreen {
		b.mu.RUnlock()
		slog.Debug("panel: fullscreen, skipping refresh")
		return
	}
	panels := append([]Panel(nil), b.panels...)
	b.mu.RUnlock()

	// A failing panel must not cancel the others, so the group gets no
	// context and every goroutine returns nil.
	var g errgroup.Group
	for _, p := range panels {
		p := p
		g.Go(func() error {
			// Fetch errors are logged by the panel itself.
			if err := p.Refresh(ctx); errors.Is(err, ErrBusy) || errors.Is(err, ErrStale) {
				slog.Debug("panel: refresh skipped", "panel", p.ID(), "err", err)
			}
			return nil
		})
	}
	g.Wait() //nolint:errcheck
}

// Refresh refreshes one panel. An explicit refresh runs even in fullscreen.
func (b *Board) Refresh(ctx context.Context, id string) (types.PanelView, error) {
	p, ok := b.Panel(id)
	if !ok {
		return types.PanelView{}, ErrNotFound
	}
	err := p.Refresh(ctx)
	return p.View(), err
}

// Resize sets the dimensions of one panel. On invalid dimensions the last
// good view is returned together with the error.
func (b *Board) Resize(id string, width, height float64) (types.PanelView, error) {
	p, ok := b.Panel(id)
	if !ok {
		return types.PanelView{}, ErrNotFound
	}
	err := p.Resize(width, height)
	return p.View(), err
}

// SetViewport sets the viewport width and re-lays out every panel: each gets
// the width of its column and requests one data point per pixel.
func (b *Board) SetViewport(width float64) error {
	if err := layout.Validate(width, 0); err != nil {
		return err
	}
	b.mu.Lock()
	b.viewport = width
	panels := append([]Panel(nil), b.panels...)
	spans := b.spans
	b.mu.Unlock()

	for _, p := range panels {
		span := spans[p.ID()]
		p.SetMaxDataPoints(layout.MaxDataPoints(width, span))
		pw := max(layout.PanelWidth(width, span), 0)
		if err := p.Resize(pw, p.View().Height); err != nil {
			slog.Warn("panel: resize on viewport change failed", "panel", p.ID(), "err", err)
		}
	}
	return nil
}

// Viewport returns the current viewport width.
func (b *Board) Viewport() float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.viewport
}

// SetFullscreen turns periodic refreshes off (true) or back on (false).
func (b *Board) SetFullscreen(on bool) {
	b.mu.Lock()
	b.fullscreen = on
	b.mu.Unlock()
	slog.Info("panel: fullscreen changed", "fullscreen", on)
}

// Fullscreen reports whether the board is fullscreen.
func (b *Board) Fullscreen() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.fullscreen
}

// Panel returns the panel with the given ID.
func (b *Board) Panel(id string) (Panel, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	p, ok := b.byID[id]
	return p, ok
}

// Views returns the view of every panel in board order.
func (b *Board) Views() []types.PanelView {
	b.mu.RLock()
	panels := append([]Panel(nil), b.panels...)
	b.mu.RUnlock()

	out := make([]types.PanelView, 0, len(panels))
	for _, p := range panels {
		out = append(out, p.View())
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

// Run refreshes every panel once, then on every tick of interval, until ctx
// is cancelled.
func (b *Board) Run(ctx context.Context, interval time.Duration) {
	b.RefreshAll(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.RefreshAll(ctx)
		}
	}
}
