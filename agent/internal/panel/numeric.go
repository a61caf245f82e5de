package panel

import (
	"context"
	"log/slog"

	"github.com/obsidianstack/statuspanels/agent/internal/config"
	"github.com/obsidianstack/statuspanels/agent/internal/delta"
	"github.com/obsidianstack/statuspanels/agent/internal/layout"
	"github.com/obsidianstack/statuspanels/agent/internal/source"
	"github.com/obsidianstack/statuspanels/agent/internal/telemetry"
	"github.com/obsidianstack/statuspanels/pkg/types"
)

var _ Panel = (*Numeric)(nil)

// Numeric shows the value of a single metric and its change since the last
// distinct value.
type Numeric struct {
	*base

	// Guarded by base.mu.
	tracker *delta.Tracker
	reading delta.Reading
}

// NewNumeric builds a numeric panel at board position pos.
func NewNumeric(pos int, cfg config.Panel, src source.Source, m *telemetry.Metrics) (*Numeric, error) {
	mode, err := delta.ParseNullPointMode(cfg.NullPointMode)
	if err != nil {
		return nil, err
	}
	t := delta.New(mode, cfg.DecimalPoints)
	return &Numeric{
		base:    newBase(pos, cfg, src, m),
		tracker: t,
		reading: t.Last(),
	}, nil
}

// Refresh queries the datasource and feeds the first series to the tracker.
func (n *Numeric) Refresh(ctx context.Context) error {
	return n.refresh(ctx, n.applyLocked, n.View)
}

// Apply feeds series as if a refresh had returned them.
func (n *Numeric) Apply(series []source.Series) {
	n.mu.Lock()
	n.updatedAt = n.now()
	n.applyLocked(series)
	n.mu.Unlock()
	n.emit(n.View)
}

// applyLocked uses only the first series; extra series are ignored.
func (n *Numeric) applyLocked(series []source.Series) string {
	if len(series) == 0 {
		return telemetry.OutcomeEmpty
	}
	raw, ok := series[0].Sample()
	if !ok {
		slog.Debug("panel: series has no points", "panel", n.id, "series", series[0].Target)
		return telemetry.OutcomeEmpty
	}
	if r, changed := n.tracker.Update(raw); changed {
		n.reading = r
		n.metrics.SetValue(n.id, n.tracker.Current())
	}
	return telemetry.OutcomeOK
}

// Resize records new dimensions. Only the height matters to a numeric panel.
func (n *Numeric) Resize(width, height float64) error {
	if err := layout.Validate(width, height); err != nil {
		slog.Warn("panel: rejected resize", "panel", n.id, "width", width, "height", height, "err", err)
		return err
	}
	n.mu.Lock()
	n.width, n.height = width, height
	n.mu.Unlock()
	n.emit(n.View)
	return nil
}

// View returns the current rendered state.
func (n *Numeric) View() types.PanelView {
	n.mu.Lock()
	defer n.mu.Unlock()
	v := n.viewLocked(types.KindNumeric)
	v.Numeric = &types.NumericView{
		Value:      n.reading.Display,
		Delta:      n.reading.Delta,
		ShowDelta:  n.cfg.ShowDelta,
		DeltaColor: n.cfg.DeltaColor,
		BodyHeight: layout.BodyHeight(n.height),
	}
	return v
}
