package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/portstack/surgeops/internal/dashboard"
	"github.com/portstack/surgeops/internal/generator"
	"github.com/portstack/surgeops/internal/models"
)

func newTestDashboard(t *testing.T) *dashboard.Controller {
	t.Helper()
	clock := func() time.Time { return time.Date(2024, 3, 18, 9, 0, 0, 0, time.UTC) }
	gen, err := generator.New(generator.WithSeed(11), generator.WithClock(clock))
	if err != nil {
		t.Fatalf("generator: %v", err)
	}
	dash, err := dashboard.New(gen,
		dashboard.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		dashboard.WithClock(clock),
	)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	return dash
}

func newTestRouter(t *testing.T) (*dashboard.Controller, http.Handler) {
	t.Helper()
	dash := newTestDashboard(t)
	return dash, NewHTTPHandler(dash, nil, slog.New(slog.NewTextHandler(io.Discard, nil)), HTTPOptions{})
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.NewDecoder(bytes.NewReader(rec.Body.Bytes())).Decode(dst); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
}

func TestHealthz(t *testing.T) {
	_, router := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestSnapshotEndpoint(t *testing.T) {
	dash, router := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/api/v1/snapshot", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before first refresh, got %d", rec.Code)
	}

	if _, err := dash.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	rec = do(t, router, http.MethodGet, "/api/v1/snapshot", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var snap models.Snapshot
	decodeBody(t, rec, &snap)
	if len(snap.YardBlocks) == 0 || len(snap.ChartData) != 24 {
		t.Fatalf("unexpected snapshot: %d blocks, %d chart points", len(snap.YardBlocks), len(snap.ChartData))
	}
}

func TestSimulateEndpoint(t *testing.T) {
	_, router := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/v1/simulate", `{"kind":"surge","magnitude":0.5}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var snap models.Snapshot
	decodeBody(t, rec, &snap)
	if !snap.SurgeActive {
		t.Fatalf("expected surge to be active")
	}

	cases := map[string]string{
		"unknown kind":  `{"kind":"tsunami"}`,
		"bad magnitude": `{"kind":"surge","magnitude":3}`,
		"unknown field": `{"kind":"surge","force":true}`,
		"not json":      `kind=surge`,
	}
	for name, body := range cases {
		rec := do(t, router, http.MethodPost, "/api/v1/simulate", body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", name, rec.Code)
		}
		var payload map[string]string
		decodeBody(t, rec, &payload)
		if payload["error"] == "" {
			t.Fatalf("%s: expected error message", name)
		}
	}

	rec = do(t, router, http.MethodPost, "/api/v1/simulate", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty body: expected 400, got %d", rec.Code)
	}
}

func TestResetEndpoint(t *testing.T) {
	_, router := newTestRouter(t)

	do(t, router, http.MethodPost, "/api/v1/simulate", `{"kind":"surge"}`)
	rec := do(t, router, http.MethodPost, "/api/v1/reset", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var snap models.Snapshot
	decodeBody(t, rec, &snap)
	if snap.SurgeActive {
		t.Fatalf("expected surge to be cleared by reset")
	}
}

func TestMoveContainersEndpoint(t *testing.T) {
	_, router := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/v1/yard/moves", `{"from":"b1","to":"B5","teu":100}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var snap models.Snapshot
	decodeBody(t, rec, &snap)
	if len(snap.Moves) != 1 || snap.Moves[0].From != "B1" || snap.Moves[0].TEU != 100 {
		t.Fatalf("unexpected moves: %+v", snap.Moves)
	}

	cases := map[string]string{
		"missing target": `{"from":"B1","teu":10}`,
		"zero teu":       `{"from":"B1","to":"B2","teu":0}`,
		"same block":     `{"from":"B2","to":"B2","teu":10}`,
		"unknown block":  `{"from":"B9","to":"B2","teu":10}`,
	}
	for name, body := range cases {
		rec := do(t, router, http.MethodPost, "/api/v1/yard/moves", body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", name, rec.Code)
		}
	}
}

func TestPlanEndpointsRejectInvalidTransitions(t *testing.T) {
	dash, router := newTestRouter(t)
	if _, err := dash.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	if dash.State().Phase == models.PhaseQuiet {
		rec := do(t, router, http.MethodPost, "/api/v1/surge/plan", "")
		if rec.Code != http.StatusConflict {
			t.Fatalf("open from quiet: expected 409, got %d", rec.Code)
		}
		rec = do(t, router, http.MethodPost, "/api/v1/surge/plan/resolve", `{"accept":true}`)
		if rec.Code != http.StatusConflict {
			t.Fatalf("resolve from quiet: expected 409, got %d", rec.Code)
		}
	}

	rec := do(t, router, http.MethodPost, "/api/v1/surge/plan/resolve", `{"notes":"x"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing accept: expected 400, got %d", rec.Code)
	}

	rec = do(t, router, http.MethodGet, "/api/v1/surge", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var state models.SurgeState
	decodeBody(t, rec, &state)
	if state.Phase == "" {
		t.Fatalf("expected a banner phase")
	}
}

func TestHistoryAndPatternEndpoints(t *testing.T) {
	dash, router := newTestRouter(t)
	ctx := context.Background()
	history := dash.History()
	at := time.Date(2024, 3, 18, 9, 0, 0, 0, time.UTC)
	for i, reason := range []string{"waiting vessels above 8", "waiting vessels above 8", "critical yard blocks above 2"} {
		err := history.RecordTransition(ctx, models.SurgeTransition{
			ID:        string(rune('a' + i)),
			From:      models.PhaseQuiet,
			To:        models.PhaseSurgeDetected,
			Reason:    reason,
			At:        at.Add(time.Duration(i) * time.Hour),
			HotBlocks: []string{"A1"},
		})
		if err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	rec := do(t, router, http.MethodGet, "/api/v1/surge/history?limit=2", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var list TransitionList
	decodeBody(t, rec, &list)
	if len(list.Items) != 2 || list.Items[0].ID != "c" {
		t.Fatalf("unexpected history: %+v", list.Items)
	}

	rec = do(t, router, http.MethodGet, "/api/v1/surge/history?since=2024-03-18T10:00:00Z", "")
	decodeBody(t, rec, &list)
	if len(list.Items) != 2 {
		t.Fatalf("expected 2 transitions since 10:00, got %d", len(list.Items))
	}

	for _, query := range []string{"limit=many", "since=noon", "limit=-3"} {
		rec = do(t, router, http.MethodGet, "/api/v1/surge/history?"+query, "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", query, rec.Code)
		}
	}

	rec = do(t, router, http.MethodGet, "/api/v1/surge/patterns", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var patterns struct {
		Items []models.SurgePattern `json:"items"`
	}
	decodeBody(t, rec, &patterns)
	if len(patterns.Items) != 2 || patterns.Items[0].Occurrences != 2 {
		t.Fatalf("unexpected patterns: %+v", patterns.Items)
	}
}

func TestStreamPushesSnapshots(t *testing.T) {
	dash, router := newTestRouter(t)
	if _, err := dash.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	srv := httptest.NewServer(router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var first models.Snapshot
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("read initial snapshot: %v", err)
	}
	if len(first.YardBlocks) == 0 {
		t.Fatalf("expected initial snapshot to carry yard blocks")
	}

	if _, err := dash.Simulate(context.Background(), models.Simulation{Kind: models.SimulateSurge}); err != nil {
		t.Fatalf("simulate: %v", err)
	}
	var next models.Snapshot
	if err := conn.ReadJSON(&next); err != nil {
		t.Fatalf("read pushed snapshot: %v", err)
	}
	if !next.SurgeActive {
		t.Fatalf("expected pushed snapshot to reflect the surge")
	}
}

func TestStatusForError(t *testing.T) {
	cases := map[error]int{
		dashboard.ErrInvalidTransition: http.StatusConflict,
		dashboard.ErrInvalidSimulation: http.StatusBadRequest,
		generator.ErrInvalidMagnitude:  http.StatusBadRequest,
		generator.ErrInvalidMove:       http.StatusBadRequest,
		dashboard.ErrStopped:           http.StatusServiceUnavailable,
		dashboard.ErrNoSnapshot:        http.StatusNotFound,
		io.EOF:                         http.StatusInternalServerError,
	}
	for err, want := range cases {
		if got := StatusForError(err); got != want {
			t.Fatalf("%v: expected %d, got %d", err, want, got)
		}
	}
}
