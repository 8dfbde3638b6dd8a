package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/portstack/surgeops/internal/dashboard"
	"github.com/portstack/surgeops/internal/generator"
	"github.com/portstack/surgeops/internal/models"
	"github.com/portstack/surgeops/internal/patterns"
	"github.com/portstack/surgeops/internal/repo"
)

// Dashboard is the controller surface exposed over HTTP and gRPC.
type Dashboard interface {
	Snapshot() (models.Snapshot, bool)
	State() models.SurgeState
	History() repo.HistoryRepo
	Simulate(ctx context.Context, sim models.Simulation) (models.Snapshot, error)
	Reset(ctx context.Context) (models.Snapshot, error)
	MoveContainers(ctx context.Context, from, to string, teu int) (models.Snapshot, error)
	OpenActionPlan(ctx context.Context) (models.SurgeState, error)
	ResolveActionPlan(ctx context.Context, accept bool, notes string) (models.SurgeState, error)
	Subscribe() <-chan models.Snapshot
	Unsubscribe(ch <-chan models.Snapshot)
}

// HTTPOptions tunes the JSON API.
type HTTPOptions struct {
	RequestTimeout time.Duration
	// PatternWindow bounds how many transitions are mined per request.
	PatternWindow int
}

// HTTPHandler serves the JSON API and the snapshot stream.
type HTTPHandler struct {
	dash   Dashboard
	miner  *patterns.Miner
	logger *slog.Logger
	opts   HTTPOptions
}

// NewHTTPHandler builds the chi router for dash.
func NewHTTPHandler(dash Dashboard, miner *patterns.Miner, logger *slog.Logger, opts HTTPOptions) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 15 * time.Second
	}
	if opts.PatternWindow <= 0 {
		opts.PatternWindow = repo.MaxListLimit
	}
	if miner == nil {
		miner = patterns.NewMiner(logger, nil)
	}
	h := &HTTPHandler{dash: dash, miner: miner, logger: logger, opts: opts}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "service": "surgeops"})
	})
	// The stream is long-lived so it sits outside the request timeout.
	router.Get("/api/v1/stream", h.stream)

	router.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(opts.RequestTimeout))
		r.Route("/api/v1", func(r chi.Router) {
			r.Get("/snapshot", h.getSnapshot)
			r.Get("/surge", h.getSurge)
			r.Post("/surge/plan", h.openPlan)
			r.Post("/surge/plan/resolve", h.resolvePlan)
			r.Get("/surge/history", h.listHistory)
			r.Get("/surge/patterns", h.listPatterns)
			r.Post("/simulate", h.simulate)
			r.Post("/reset", h.reset)
			r.Post("/yard/moves", h.moveContainers)
		})
	})
	return router
}

func (h *HTTPHandler) getSnapshot(w http.ResponseWriter, _ *http.Request) {
	snap, ok := h.dash.Snapshot()
	if !ok {
		writeError(w, http.StatusNotFound, dashboard.ErrNoSnapshot.Error())
		return
	}
	WriteJSON(w, http.StatusOK, snap)
}

func (h *HTTPHandler) getSurge(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, h.dash.State())
}

func (h *HTTPHandler) openPlan(w http.ResponseWriter, r *http.Request) {
	state, err := h.dash.OpenActionPlan(r.Context())
	if err != nil {
		h.writeDashboardError(w, "open action plan", err)
		return
	}
	WriteJSON(w, http.StatusOK, state)
}

func (h *HTTPHandler) resolvePlan(w http.ResponseWriter, r *http.Request) {
	var req ResolveRequest
	if err := DecodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	accept, notes, err := req.Decision()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	state, err := h.dash.ResolveActionPlan(r.Context(), accept, notes)
	if err != nil {
		h.writeDashboardError(w, "resolve action plan", err)
		return
	}
	WriteJSON(w, http.StatusOK, state)
}

func (h *HTTPHandler) simulate(w http.ResponseWriter, r *http.Request) {
	var req SimulateRequest
	if err := DecodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sim, err := req.ToSimulation()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	snap, err := h.dash.Simulate(r.Context(), sim)
	if err != nil {
		h.writeDashboardError(w, "simulate", err)
		return
	}
	WriteJSON(w, http.StatusOK, snap)
}

func (h *HTTPHandler) reset(w http.ResponseWriter, r *http.Request) {
	snap, err := h.dash.Reset(r.Context())
	if err != nil {
		h.writeDashboardError(w, "reset", err)
		return
	}
	WriteJSON(w, http.StatusOK, snap)
}

func (h *HTTPHandler) moveContainers(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	if err := DecodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	from, to, teu, err := req.Move()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	snap, err := h.dash.MoveContainers(r.Context(), from, to, teu)
	if err != nil {
		h.writeDashboardError(w, "move containers", err)
		return
	}
	WriteJSON(w, http.StatusOK, snap)
}

func (h *HTTPHandler) listHistory(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := HistoryRequest{Since: query.Get("since")}
	if raw := query.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		req.Limit = n
	}
	since, limit, err := req.Window()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, err := h.dash.History().ListTransitions(r.Context(), since, limit)
	if err != nil {
		h.logger.Error("list transitions failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to list surge history")
		return
	}
	WriteJSON(w, http.StatusOK, TransitionList{Items: items})
}

func (h *HTTPHandler) listPatterns(w http.ResponseWriter, r *http.Request) {
	transitions, err := h.dash.History().ListTransitions(r.Context(), time.Time{}, h.opts.PatternWindow)
	if err != nil {
		h.logger.Error("list transitions failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to list surge history")
		return
	}
	found, err := h.miner.Mine(r.Context(), transitions)
	if err != nil {
		h.logger.Error("mine patterns failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to mine surge patterns")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"items": found})
}

func (h *HTTPHandler) writeDashboardError(w http.ResponseWriter, op string, err error) {
	code := StatusForError(err)
	if code == http.StatusInternalServerError {
		h.logger.Error(op+" failed", slog.Any("error", err))
		writeError(w, code, op+" failed")
		return
	}
	writeError(w, code, err.Error())
}

// StatusForError maps controller errors onto HTTP status codes.
func StatusForError(err error) int {
	switch {
	case errors.Is(err, dashboard.ErrInvalidSimulation), errors.Is(err, generator.ErrInvalidMagnitude),
		errors.Is(err, generator.ErrInvalidMove):
		return http.StatusBadRequest
	case errors.Is(err, dashboard.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, dashboard.ErrNoSnapshot):
		return http.StatusNotFound
	case errors.Is(err, dashboard.ErrStopped), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// WriteJSON encodes payload with the given status.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]any{"error": msg})
}

// DecodeJSON strictly decodes the request body into dst.
func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return errors.New("request body is required")
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return errors.New("invalid JSON body: " + err.Error())
	}
	return nil
}
