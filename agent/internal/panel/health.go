package panel

import (
	"context"
	"log/slog"

	"github.com/obsidianstack/statuspanels/agent/internal/config"
	"github.com/obsidianstack/statuspanels/agent/internal/delta"
	"github.com/obsidianstack/statuspanels/agent/internal/layout"
	"github.com/obsidianstack/statuspanels/agent/internal/source"
	"github.com/obsidianstack/statuspanels/agent/internal/status"
	"github.com/obsidianstack/statuspanels/agent/internal/telemetry"
	"github.com/obsidianstack/statuspanels/pkg/types"
)

var _ Panel = (*Health)(nil)

// Health shows one status icon per series returned by its expression.
type Health struct {
	*base

	thresholds status.Config
	nullMode   delta.NullPointMode

	// Guarded by base.mu.
	updates  []types.MetricUpdate
	lastSeen map[string]float64 // last resolved value per series, for connected mode
	fitter   layout.Fitter
	fit      layout.Result
}

// NewHealth builds a health panel at board position pos.
func NewHealth(pos int, cfg config.Panel, src source.Source, m *telemetry.Metrics) (*Health, error) {
	dir, err := status.ParseDirection(cfg.Direction)
	if err != nil {
		return nil, err
	}
	mode, err := delta.ParseNullPointMode(cfg.NullPointMode)
	if err != nil {
		return nil, err
	}
	h := &Health{
		base: newBase(pos, cfg, src, m),
		thresholds: status.Config{
			Direction:        dir,
			ErrorThreshold:   cfg.ErrorThreshold(),
			WarningThreshold: cfg.WarnThreshold(),
			IncludeWarning:   cfg.IncludeWarningThreshold,
			Styles: status.Styles{
				Healthy: status.Style{Icon: status.IconHealthy, Color: cfg.HealthyColor},
				Warning: status.Style{Icon: status.IconWarning, Color: cfg.WarningColor},
				Error:   status.Style{Icon: status.IconError, Color: cfg.ErrorColor},
			},
		},
		nullMode: mode,
		lastSeen: make(map[string]float64),
	}
	h.fit = h.fitter.Last()
	return h, nil
}

// Refresh queries the datasource, classifies every series and refits the
// icons.
func (h *Health) Refresh(ctx context.Context) error {
	return h.refresh(ctx, h.applyLocked, h.View)
}

// Apply classifies series as if a refresh had returned them.
func (h *Health) Apply(series []source.Series) {
	h.mu.Lock()
	h.updatedAt = h.now()
	h.applyLocked(series)
	h.mu.Unlock()
	h.emit(h.View)
}

// applyLocked turns one query result into the update list. Series without
// points are skipped; a result with no usable series keeps the previous
// updates. Series missing from a usable result are forgotten.
func (h *Health) applyLocked(series []source.Series) string {
	updates := make([]types.MetricUpdate, 0, len(series))
	seen := make(map[string]float64, len(series))
	for _, s := range series {
		raw, ok := s.Sample()
		if !ok {
			continue
		}
		v := h.resolve(s.Target, raw)
		seen[s.Target] = v

		res := status.Classify(v, h.thresholds)
		updates = append(updates, types.MetricUpdate{
			Label: s.Target,
			Level: string(res.Level),
			Icon:  res.Icon,
			Color: res.Color,
		})
		h.metrics.SetLevel(h.id, s.Target, status.Severity(res.Level))
	}
	if len(updates) == 0 {
		slog.Debug("panel: no usable series, keeping previous updates", "panel", h.id)
		return telemetry.OutcomeEmpty
	}

	for target := range h.lastSeen {
		if _, ok := seen[target]; !ok {
			h.metrics.ForgetSeries(h.id, target)
		}
	}
	h.lastSeen = seen

	h.updates = updates
	if err := h.refitLocked(h.width, h.height); err != nil {
		// The updates stand with the last good fit until a valid Resize.
		slog.Debug("panel: refit skipped", "panel", h.id, "width", h.width, "height", h.height, "err", err)
	}
	return telemetry.OutcomeOK
}

// resolve applies the null-point policy to one series.
func (h *Health) resolve(target string, raw *float64) float64 {
	if raw != nil {
		return *raw
	}
	if h.nullMode == delta.Connected {
		return h.lastSeen[target]
	}
	return 0
}

// Resize refits the icons for new dimensions. Invalid dimensions keep the
// last good layout and return layout.ErrInvalidDimensions.
func (h *Health) Resize(width, height float64) error {
	h.mu.Lock()
	err := h.refitLocked(width, height)
	h.mu.Unlock()
	if err != nil {
		slog.Warn("panel: rejected resize", "panel", h.id, "width", width, "height", height, "err", err)
		return err
	}
	h.emit(h.View)
	return nil
}

func (h *Health) refitLocked(width, height float64) error {
	fit, err := h.fitter.Fit(width, height, len(h.updates))
	if err != nil {
		return err
	}
	h.width, h.height = width, height
	h.fit = fit
	h.metrics.SetFontSize(h.id, fit.FontSize)
	return nil
}

// View returns the current rendered state.
func (h *Health) View() types.PanelView {
	h.mu.Lock()
	defer h.mu.Unlock()
	v := h.viewLocked(types.KindHealth)
	updates := make([]types.MetricUpdate, len(h.updates))
	copy(updates, h.updates)
	v.Health = &types.HealthView{
		Updates:    updates,
		BodyHeight: h.fit.ContainerHeight,
		FontSize:   h.fit.FontSize,
		Overflow:   h.fit.Overflow,
	}
	return v
}
