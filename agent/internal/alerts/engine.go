package alerts

import (
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/obsidianstack/statuspanels/agent/internal/config"
	"github.com/obsidianstack/statuspanels/agent/internal/status"
	"github.com/obsidianstack/statuspanels/pkg/types"
)

const (
	maxHistoryLen = 200
	recentWindow  = time.Hour
)

// Alert states.
const (
	StateFiring   = "firing"
	StateResolved = "resolved"
)

// Alert is one fire/resolve cycle of a health series.
type Alert struct {
	ID         string     `json:"id"`
	PanelID    string     `json:"panel_id"`
	Series     string     `json:"series"`
	Level      string     `json:"level"`
	Message    string     `json:"message"`
	FiredAt    time.Time  `json:"fired_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	State      string     `json:"state"`
}

// Engine tracks firing alerts across panel views and delivers webhook
// notifications when they fire or resolve.
//
// Engine is safe for concurrent use.
type Engine struct {
	minSeverity int
	cooldown    time.Duration
	webhooks    []config.WebhookConfig
	client      *http.Client
	now         func() time.Time

	// deliverFn runs delivery; tests replace it to run synchronously.
	deliverFn func(Alert)

	mu       sync.Mutex
	active   map[string]*Alert    // key: "panelID\x00series"
	lastFire map[string]time.Time // for cooldown
	history  []*Alert             // recently resolved
}

// New creates an Engine from the alerts configuration.
func New(cfg config.AlertsConfig) *Engine {
	floor := status.LevelError
	if cfg.MinLevel == string(status.LevelWarning) {
		floor = status.LevelWarning
	}
	e := &Engine{
		minSeverity: status.Severity(floor),
		cooldown:    cfg.Cooldown,
		webhooks:    cfg.Webhooks,
		client:      &http.Client{Timeout: 10 * time.Second},
		now:         time.Now,
		active:      make(map[string]*Alert),
		lastFire:    make(map[string]time.Time),
	}
	e.deliverFn = func(a Alert) { go e.deliver(a) }
	return e
}

// Evaluate compares the series of a health panel view against the firing
// set. Views of other panel kinds are ignored, as are views of a panel that
// has not completed a refresh yet, is loading, or failed its last refresh:
// a fetch problem neither fires nor resolves anything.
func (e *Engine) Evaluate(v types.PanelView) {
	if v.Health == nil || v.UpdatedAt.IsZero() || v.Loading || v.Error != "" {
		return
	}

	now := e.now()
	seen := make(map[string]bool, len(v.Health.Updates))
	var out []Alert

	e.mu.Lock()
	for _, u := range v.Health.Updates {
		k := key(v.ID, u.Label)
		seen[k] = true
		firing := status.Severity(status.Level(u.Level)) >= e.minSeverity

		a, active := e.active[k]
		switch {
		case firing && active:
			a.Level = u.Level
		case firing:
			if last, ok := e.lastFire[k]; ok && now.Sub(last) < e.cooldown {
				continue
			}
			a = &Alert{
				ID:      uuid.NewString(),
				PanelID: v.ID,
				Series:  u.Label,
				Level:   u.Level,
				Message: fmt.Sprintf("%s on panel %s is %s", u.Label, v.ID, u.Level),
				FiredAt: now,
				State:   StateFiring,
			}
			e.active[k] = a
			e.lastFire[k] = now
			out = append(out, *a)
			slog.Warn("alerts: fired", "panel", v.ID, "series", u.Label, "level", u.Level)
		case active:
			out = append(out, *e.resolveLocked(k, now))
		}
	}

	// Series that left the panel resolve too.
	for k, a := range e.active {
		if a.PanelID == v.ID && !seen[k] {
			out = append(out, *e.resolveLocked(k, now))
		}
	}
	e.mu.Unlock()

	for _, a := range out {
		e.deliverFn(a)
	}
}

// Forget resolves every alert of a panel, after it was removed from the
// board.
func (e *Engine) Forget(panelID string) {
	now := e.now()
	var out []Alert
	e.mu.Lock()
	for k, a := range e.active {
		if a.PanelID == panelID {
			out = append(out, *e.resolveLocked(k, now))
		}
	}
	e.mu.Unlock()
	for _, a := range out {
		e.deliverFn(a)
	}
}

func (e *Engine) resolveLocked(k string, now time.Time) *Alert {
	a := e.active[k]
	delete(e.active, k)
	a.State = StateResolved
	a.ResolvedAt = &now
	a.Message = fmt.Sprintf("%s on panel %s recovered", a.Series, a.PanelID)

	e.history = append(e.history, a)
	if len(e.history) > maxHistoryLen {
		e.history = e.history[len(e.history)-maxHistoryLen:]
	}
	slog.Info("alerts: resolved", "panel", a.PanelID, "series", a.Series)
	return a
}

// Active returns all firing alerts plus those resolved within the past hour,
// newest first.
func (e *Engine) Active() []Alert {
	e.mu.Lock()
	defer e.mu.Unlock()

	cutoff := e.now().Add(-recentWindow)
	out := make([]Alert, 0, len(e.active))
	for _, a := range e.active {
		out = append(out, *a)
	}
	for _, a := range e.history {
		if a.ResolvedAt != nil && a.ResolvedAt.After(cutoff) {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FiredAt.After(out[j].FiredAt) })
	return out
}

func key(panelID, series string) string { return panelID + "\x00" + series }
