package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/obsidianstack/statuspanels/agent/internal/alerts"
	"github.com/obsidianstack/statuspanels/agent/internal/config"
	"github.com/obsidianstack/statuspanels/agent/internal/layout"
	"github.com/obsidianstack/statuspanels/agent/internal/panel"
	"github.com/obsidianstack/statuspanels/agent/internal/status"
	"github.com/obsidianstack/statuspanels/agent/internal/store"
	"github.com/obsidianstack/statuspanels/pkg/types"
)

// Board is the control surface the API drives. *panel.Board implements it.
type Board interface {
	Refresh(ctx context.Context, id string) (types.PanelView, error)
	Resize(id string, width, height float64) (types.PanelView, error)
	SetViewport(width float64) error
	Viewport() float64
	SetFullscreen(on bool)
	Fullscreen() bool
}

// Alerts lists recent alerts. *alerts.Engine implements it.
type Alerts interface {
	Active() []alerts.Alert
}

// Handler is the HTTP handler for all /api/v1/* endpoints.
type Handler struct {
	board  Board
	store  *store.Store
	alerts Alerts
	mux    chi.Router
}

// New creates a Handler wired to the board, view store and alert engine and
// registers all routes. al may be nil when alerting is off.
func New(b Board, st *store.Store, al Alerts, auth config.APIAuthConfig) http.Handler {
	h := &Handler{board: b, store: st, alerts: al, mux: chi.NewRouter()}

	h.mux.Use(chiMiddleware.StripSlashes)
	h.mux.Use(APIKey(auth.Mode, auth.EffectiveHeader(), auth.Key()))

	h.mux.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", h.health)
		r.Get("/panels", h.listPanels)
		r.Get("/panels/{id}", h.getPanel)
		r.Post("/panels/{id}/refresh", h.refreshPanel)
		r.Put("/panels/{id}/size", h.resizePanel)
		r.Put("/viewport", h.setViewport)
		r.Get("/alerts", h.listAlerts)
	})

	h.mux.NotFound(func(w http.ResponseWriter, r *http.Request) {
		jsonErr(w, http.StatusNotFound, "not found")
	})
	h.mux.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// --- route handlers ---------------------------------------------------------

// health returns GET /api/v1/health: level counts across all health panels.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	views := h.store.List()
	resp := HealthResponse{
		State:      "unknown",
		PanelCount: len(views),
		Fullscreen: h.board.Fullscreen(),
	}

	worst := -1
	for _, v := range views {
		if v.Error != "" {
			resp.FailingPanels++
		}
		if v.Health == nil {
			continue
		}
		for _, u := range v.Health.Updates {
			lvl := status.Level(u.Level)
			switch lvl {
			case status.LevelHealthy:
				resp.HealthyCount++
			case status.LevelWarning:
				resp.WarningCount++
			case status.LevelError:
				resp.ErrorCount++
			}
			if s := status.Severity(lvl); s > worst {
				worst = s
				resp.State = u.Level
			}
		}
	}
	if h.alerts != nil {
		for _, a := range h.alerts.Active() {
			if a.State == alerts.StateFiring {
				resp.AlertCount++
			}
		}
	}
	jsonResp(w, http.StatusOK, resp)
}

// listAlerts returns GET /api/v1/alerts: firing alerts and those resolved
// within the past hour.
func (h *Handler) listAlerts(w http.ResponseWriter, r *http.Request) {
	out := []alerts.Alert{}
	if h.alerts != nil {
		out = h.alerts.Active()
	}
	jsonResp(w, http.StatusOK, out)
}

// listPanels returns GET /api/v1/panels: every panel view in board order.
func (h *Handler) listPanels(w http.ResponseWriter, r *http.Request) {
	jsonResp(w, http.StatusOK, h.store.List())
}

// getPanel returns GET /api/v1/panels/{id}.
func (h *Handler) getPanel(w http.ResponseWriter, r *http.Request) {
	v, ok := h.store.Get(chi.URLParam(r, "id"))
	if !ok {
		jsonErr(w, http.StatusNotFound, "panel not found")
		return
	}
	jsonResp(w, http.StatusOK, v)
}

// refreshPanel handles POST /api/v1/panels/{id}/refresh.
func (h *Handler) refreshPanel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	v, err := h.board.Refresh(r.Context(), id)
	switch {
	case err == nil:
		jsonResp(w, http.StatusOK, v)
	case errors.Is(err, panel.ErrNotFound):
		jsonErr(w, http.StatusNotFound, "panel not found")
	case errors.Is(err, panel.ErrBusy), errors.Is(err, panel.ErrStale):
		jsonResp(w, http.StatusConflict, panelErrorResponse{Error: err.Error(), Panel: v})
	default:
		slog.Warn("api: refresh failed", "panel", id, "err", err)
		jsonResp(w, http.StatusBadGateway, panelErrorResponse{Error: err.Error(), Panel: v})
	}
}

// resizePanel handles PUT /api/v1/panels/{id}/size.
func (h *Handler) resizePanel(w http.ResponseWriter, r *http.Request) {
	var req SizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonErr(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	v, err := h.board.Resize(chi.URLParam(r, "id"), req.Width, req.Height)
	switch {
	case err == nil:
		jsonResp(w, http.StatusOK, v)
	case errors.Is(err, panel.ErrNotFound):
		jsonErr(w, http.StatusNotFound, "panel not found")
	case errors.Is(err, layout.ErrInvalidDimensions):
		jsonResp(w, http.StatusBadRequest, panelErrorResponse{Error: err.Error(), Panel: v})
	default:
		jsonErr(w, http.StatusInternalServerError, err.Error())
	}
}

// setViewport handles PUT /api/v1/viewport.
func (h *Handler) setViewport(w http.ResponseWriter, r *http.Request) {
	var req ViewportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonErr(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.Width != nil {
		if err := h.board.SetViewport(*req.Width); err != nil {
			jsonErr(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if req.Fullscreen != nil {
		h.board.SetFullscreen(*req.Fullscreen)
	}
	jsonResp(w, http.StatusOK, ViewportResponse{
		Width:      h.board.Viewport(),
		Fullscreen: h.board.Fullscreen(),
	})
}

// --- helpers ----------------------------------------------------------------

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}
