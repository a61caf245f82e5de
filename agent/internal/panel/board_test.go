package panel

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/obsidianstack/statuspanels/agent/internal/config"
	"github.com/obsidianstack/statuspanels/agent/internal/layout"
	"github.com/obsidianstack/statuspanels/agent/internal/source"
	"github.com/obsidianstack/statuspanels/agent/internal/store"
	"github.com/obsidianstack/statuspanels/pkg/types"
)

func boardCfg(panels ...config.Panel) *config.Config {
	return &config.Config{Agent: config.AgentConfig{
		ViewportWidth: 1280,
		Datasources: []config.Datasource{
			{ID: "graphite", Type: "graphite", Endpoint: "http://graphite"},
		},
		Panels: panels,
	}}
}

func newTestBoard(t *testing.T, src *fakeSource, cfg *config.Config) (*Board, *store.Store) {
	t.Helper()
	st := store.New()
	b := NewBoard(st, nil)
	b.now = func() time.Time { return testNow }
	b.newSource = func(config.Datasource) (source.Source, error) { return src, nil }
	if err := b.Load(cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return b, st
}

func TestBoard_LoadPublishesViews(t *testing.T) {
	b, st := newTestBoard(t, &fakeSource{}, boardCfg(healthCfg(), numericCfg()))

	if st.Count() != 2 {
		t.Fatalf("store count = %d, want 2", st.Count())
	}
	views := st.List()
	if views[0].ID != "api-health" || views[1].ID != "queue-depth" {
		t.Errorf("order = %s, %s", views[0].ID, views[1].ID)
	}
	if views[0].Width != 407 {
		t.Errorf("health width = %v, want 407", views[0].Width)
	}
	if views[0].Height != 250 {
		t.Errorf("health height = %v, want 250", views[0].Height)
	}
	if b.Viewport() != 1280 {
		t.Errorf("Viewport() = %v, want 1280", b.Viewport())
	}
}

func TestBoard_RefreshAll(t *testing.T) {
	src := &fakeSource{series: []source.Series{one("a", fp(7))}}
	b, st := newTestBoard(t, src, boardCfg(healthCfg(), numericCfg()))

	b.RefreshAll(context.Background())

	h, _ := st.Get("api-health")
	if len(h.Health.Updates) != 1 || h.Health.Updates[0].Level != "error" {
		t.Errorf("health updates = %+v", h.Health.Updates)
	}
	n, _ := st.Get("queue-depth")
	if n.Numeric.Value != "7" {
		t.Errorf("numeric value = %q, want 7", n.Numeric.Value)
	}

	src.mu.Lock()
	got := len(src.queries)
	points := map[int]bool{}
	for _, q := range src.queries {
		points[q.MaxDataPoints] = true
	}
	src.mu.Unlock()
	if got != 2 {
		t.Errorf("queries = %d, want 2", got)
	}
	// span 4 and span 2 of a 1280px viewport.
	if !points[427] || !points[214] {
		t.Errorf("MaxDataPoints = %v, want 427 and 214", points)
	}
}

func TestBoard_FullscreenSuppressesRefreshAll(t *testing.T) {
	src := &fakeSource{series: []source.Series{one("a", fp(0))}}
	b, _ := newTestBoard(t, src, boardCfg(healthCfg()))

	b.SetFullscreen(true)
	if !b.Fullscreen() {
		t.Fatal("Fullscreen() = false after SetFullscreen(true)")
	}
	b.RefreshAll(context.Background())
	if n := len(src.queries); n != 0 {
		t.Errorf("queries in fullscreen = %d, want 0", n)
	}

	if _, err := b.Refresh(context.Background(), "api-health"); err != nil {
		t.Errorf("explicit Refresh() in fullscreen error = %v", err)
	}

	b.SetFullscreen(false)
	b.RefreshAll(context.Background())
	if n := len(src.queries); n != 2 {
		t.Errorf("queries = %d, want 2", n)
	}
}

func TestBoard_UnknownPanel(t *testing.T) {
	b, _ := newTestBoard(t, &fakeSource{}, boardCfg(healthCfg()))
	if _, err := b.Refresh(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Refresh() error = %v, want ErrNotFound", err)
	}
	if _, err := b.Resize("nope", 10, 10); !errors.Is(err, ErrNotFound) {
		t.Errorf("Resize() error = %v, want ErrNotFound", err)
	}
}

func TestBoard_ResizeAndViewport(t *testing.T) {
	b, st := newTestBoard(t, &fakeSource{}, boardCfg(healthCfg()))

	v, err := b.Resize("api-health", 600, 300)
	if err != nil {
		t.Fatalf("Resize() error = %v", err)
	}
	if v.Width != 600 || v.Height != 300 {
		t.Errorf("view = %vx%v, want 600x300", v.Width, v.Height)
	}

	v, err = b.Resize("api-health", 600, -1)
	if !errors.Is(err, layout.ErrInvalidDimensions) {
		t.Fatalf("Resize() error = %v, want ErrInvalidDimensions", err)
	}
	if v.Height != 300 {
		t.Errorf("invalid resize returned height %v, want last good 300", v.Height)
	}

	if err := b.SetViewport(1920); err != nil {
		t.Fatalf("SetViewport() error = %v", err)
	}
	got, _ := st.Get("api-health")
	if got.Width != 620 || got.Height != 300 {
		t.Errorf("after viewport change = %vx%v, want 620x300", got.Width, got.Height)
	}

	if err := b.SetViewport(-5); !errors.Is(err, layout.ErrInvalidDimensions) {
		t.Errorf("SetViewport(-5) error = %v, want ErrInvalidDimensions", err)
	}
}

func TestBoard_ReloadReplacesPanels(t *testing.T) {
	src := &fakeSource{}
	b, st := newTestBoard(t, src, boardCfg(healthCfg(), numericCfg()))
	old, _ := b.Panel("queue-depth")

	if err := b.Reload(boardCfg(healthCfg())); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if st.Count() != 1 {
		t.Errorf("store count = %d, want 1", st.Count())
	}
	if _, ok := b.Panel("queue-depth"); ok {
		t.Error("dropped panel still on the board")
	}
	if err := old.Refresh(context.Background()); !errors.Is(err, ErrStale) {
		t.Errorf("old panel Refresh() error = %v, want ErrStale", err)
	}
	if n := len(b.Views()); n != 1 {
		t.Errorf("Views() = %d, want 1", n)
	}
}

func TestBoard_LoadFailureKeepsPanels(t *testing.T) {
	b, _ := newTestBoard(t, &fakeSource{}, boardCfg(healthCfg()))
	b.newSource = func(config.Datasource) (source.Source, error) {
		return nil, errors.New("bad tls config")
	}
	if err := b.Reload(boardCfg(numericCfg())); err == nil {
		t.Fatal("Reload() should fail when a datasource cannot be built")
	}
	if _, ok := b.Panel("api-health"); !ok {
		t.Error("failed reload should keep the previous panels")
	}
}

func TestBoard_Run(t *testing.T) {
	src := &fakeSource{series: []source.Series{one("a", fp(0))}}
	b, _ := newTestBoard(t, src, boardCfg(healthCfg()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		b.Run(ctx, 10*time.Millisecond)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for {
		src.mu.Lock()
		n := len(src.queries)
		src.mu.Unlock()
		if n >= 2 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("only %d refreshes before deadline", n)
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	<-done
}

type recordingObserver struct {
	mu        sync.Mutex
	evaluated []types.PanelView
	forgotten []string
}

func (o *recordingObserver) Evaluate(v types.PanelView) {
	o.mu.Lock()
	o.evaluated = append(o.evaluated, v)
	o.mu.Unlock()
}

func (o *recordingObserver) Forget(id string) {
	o.mu.Lock()
	o.forgotten = append(o.forgotten, id)
	o.mu.Unlock()
}

func TestBoard_Observers(t *testing.T) {
	src := &fakeSource{series: []source.Series{one("a", fp(2))}}
	st := store.New()
	b := NewBoard(st, nil)
	b.newSource = func(config.Datasource) (source.Source, error) { return src, nil }
	obs := &recordingObserver{}
	b.Observe(obs)

	if err := b.Load(boardCfg(healthCfg(), numericCfg())); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	b.RefreshAll(context.Background())

	obs.mu.Lock()
	var sawError bool
	for _, v := range obs.evaluated {
		if v.Health != nil && len(v.Health.Updates) == 1 && v.Health.Updates[0].Level == "error" {
			sawError = true
		}
	}
	obs.mu.Unlock()
	if !sawError {
		t.Error("observer never saw the refreshed health view")
	}

	if err := b.Reload(boardCfg(healthCfg())); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if len(obs.forgotten) != 1 || obs.forgotten[0] != "queue-depth" {
		t.Errorf("forgotten = %v, want [queue-depth]", obs.forgotten)
	}
}
