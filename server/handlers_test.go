package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pthm-cable/goldhelper/history"
	"github.com/pthm-cable/goldhelper/plugin"
	"github.com/pthm-cable/goldhelper/ranking"
	"github.com/pthm-cable/goldhelper/tracking"
)

type fakeController struct {
	view       plugin.View
	resets     []string
	resetErr   error
	blockReset bool
}

func (f *fakeController) View() plugin.View { return f.view }

func (f *fakeController) ResetAll(ctx context.Context) error {
	return f.reset(ctx, "all")
}

func (f *fakeController) ResetProfitabilityData(ctx context.Context) error {
	return f.reset(ctx, "profitability")
}

func (f *fakeController) reset(ctx context.Context, name string) error {
	if f.blockReset {
		<-ctx.Done()
		return ctx.Err()
	}
	if f.resetErr != nil {
		return f.resetErr
	}
	f.resets = append(f.resets, name)
	f.view.State = tracking.State{}
	return nil
}

var completed = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testView() plugin.View {
	return plugin.View{
		Tick:  42,
		Phase: tracking.PhaseTracking,
		State: tracking.State{
			SessionElapsed: 30 * time.Minute,
			SessionGold:    1500,
			Active:         &tracking.ActiveRun{Zone: "z9", Name: "Crypt", Elapsed: 2 * time.Minute, Gold: 100},
			CompletedRuns:  2,
			TotalRunGold:   1400,
			Ranking: []ranking.Entry{
				{Name: "Dunes", AverageRatePerHour: 24000, Runs: 1},
				{Name: "Crypt", AverageRatePerHour: 6000, Runs: 1},
			},
			Recent: []history.Record{
				{Name: "Crypt", GoldGained: 400, Elapsed: 4 * time.Minute, CompletedAt: completed},
				{Name: "Dunes", GoldGained: 1000, Elapsed: 150 * time.Second, CompletedAt: completed.Add(5 * time.Minute)},
			},
		},
	}
}

func serve(t *testing.T, h *Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	e := New(h)
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func TestHealth(t *testing.T) {
	e := echo.New()
	h := NewHandler(&fakeController{view: testView()}, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Health(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestGetState(t *testing.T) {
	h := NewHandler(&fakeController{view: testView()}, nil)
	rec := serve(t, h, http.MethodGet, "/v1/state")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp StateResponse
	decode(t, rec, &resp)
	if resp.Tick != 42 || resp.Phase != "tracking" {
		t.Errorf("tick/phase = %d/%s", resp.Tick, resp.Phase)
	}
	if resp.Session.Gold != 1500 || resp.Session.GoldPerHour != 3000 {
		t.Errorf("session = %+v", resp.Session)
	}
	if resp.Session.AvgRunGold != 700 {
		t.Errorf("avg run gold = %v, want 700", resp.Session.AvgRunGold)
	}
	if resp.Active == nil || resp.Active.Name != "Crypt" || resp.Active.Elapsed != "00:02:00" {
		t.Errorf("active = %+v", resp.Active)
	}
	if len(resp.Ranking) != 2 || resp.Ranking[0].Rank != 1 || resp.Ranking[0].Name != "Dunes" {
		t.Errorf("ranking = %+v", resp.Ranking)
	}
	if resp.History != 2 {
		t.Errorf("history = %d, want 2", resp.History)
	}
}

func TestGetStateIdle(t *testing.T) {
	h := NewHandler(&fakeController{}, nil)
	rec := serve(t, h, http.MethodGet, "/v1/state")

	var resp StateResponse
	decode(t, rec, &resp)
	if resp.Active != nil {
		t.Errorf("expected no active run, got %+v", resp.Active)
	}
	if resp.Phase != "idle" {
		t.Errorf("phase = %s", resp.Phase)
	}
}

func TestListRuns(t *testing.T) {
	h := NewHandler(&fakeController{view: testView()}, nil)

	var all struct{ Runs []history.Record }
	decode(t, serve(t, h, http.MethodGet, "/v1/runs"), &all)
	if len(all.Runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(all.Runs))
	}
	if !all.Runs[0].Equal(testView().State.Recent[0]) {
		t.Errorf("run 0 = %+v", all.Runs[0])
	}

	var last struct{ Runs []history.Record }
	decode(t, serve(t, h, http.MethodGet, "/v1/runs?limit=1"), &last)
	if len(last.Runs) != 1 || last.Runs[0].Name != "Dunes" {
		t.Errorf("limit=1 runs = %+v", last.Runs)
	}

	rec := serve(t, h, http.MethodGet, "/v1/runs?limit=zero")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestListRunsEmpty(t *testing.T) {
	h := NewHandler(&fakeController{}, nil)
	rec := serve(t, h, http.MethodGet, "/v1/runs")
	if got := rec.Body.String(); got != "{\"runs\":[]}\n" {
		t.Errorf("body = %q", got)
	}
}

func TestGetRanking(t *testing.T) {
	h := NewHandler(&fakeController{view: testView()}, nil)

	var resp struct{ Ranking []RankResponse }
	decode(t, serve(t, h, http.MethodGet, "/v1/ranking"), &resp)
	if len(resp.Ranking) != 2 || resp.Ranking[1].Name != "Crypt" || resp.Ranking[1].Rank != 2 {
		t.Errorf("ranking = %+v", resp.Ranking)
	}
}

func TestReset(t *testing.T) {
	ctrl := &fakeController{view: testView()}
	h := NewHandler(ctrl, nil)

	if rec := serve(t, h, http.MethodPost, "/v1/reset/profitability"); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec := serve(t, h, http.MethodPost, "/v1/reset"); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(ctrl.resets) != 2 || ctrl.resets[0] != "profitability" || ctrl.resets[1] != "all" {
		t.Errorf("resets = %v", ctrl.resets)
	}

	if rec := serve(t, h, http.MethodGet, "/v1/reset"); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /v1/reset: expected 405, got %d", rec.Code)
	}
}

func TestResetTimeout(t *testing.T) {
	h := NewHandler(&fakeController{blockReset: true}, nil)
	h.resetTimeout = 10 * time.Millisecond

	rec := serve(t, h, http.MethodPost, "/v1/reset")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}
