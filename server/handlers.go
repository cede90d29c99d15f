package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pthm-cable/goldhelper/history"
	"github.com/pthm-cable/goldhelper/tracking"
)

// SessionResponse is the session panel in numbers.
type SessionResponse struct {
	Elapsed       string  `json:"elapsed"`
	ElapsedSec    float64 `json:"elapsed_sec"`
	Gold          int64   `json:"gold"`
	GoldPerHour   float64 `json:"gold_per_hour"`
	CompletedRuns int     `json:"completed_runs"`
	TotalRunGold  int64   `json:"total_run_gold"`
	AvgRunGold    float64 `json:"avg_run_gold"`
}

// ActiveRunResponse describes the open run.
type ActiveRunResponse struct {
	Zone        string  `json:"zone"`
	Name        string  `json:"name"`
	Elapsed     string  `json:"elapsed"`
	Gold        int64   `json:"gold"`
	GoldPerHour float64 `json:"gold_per_hour"`
}

// RankResponse is one ranked run name.
type RankResponse struct {
	Rank        int     `json:"rank"`
	Name        string  `json:"name"`
	GoldPerHour float64 `json:"gold_per_hour"`
	Runs        int     `json:"runs"`
}

// StateResponse is the full published view.
type StateResponse struct {
	Tick      int64              `json:"tick"`
	UpdatedAt time.Time          `json:"updated_at"`
	Phase     string             `json:"phase"`
	Session   SessionResponse    `json:"session"`
	Active    *ActiveRunResponse `json:"active"`
	Ranking   []RankResponse     `json:"ranking"`
	History   int                `json:"history"`
}

func sessionResponse(st tracking.State) SessionResponse {
	return SessionResponse{
		Elapsed:       history.FormatDuration(st.SessionElapsed),
		ElapsedSec:    st.SessionElapsed.Seconds(),
		Gold:          st.SessionGold,
		GoldPerHour:   st.SessionGoldPerHour(),
		CompletedRuns: st.CompletedRuns,
		TotalRunGold:  st.TotalRunGold,
		AvgRunGold:    st.AverageRunGold(),
	}
}

func rankingResponse(st tracking.State) []RankResponse {
	out := make([]RankResponse, len(st.Ranking))
	for i, e := range st.Ranking {
		out[i] = RankResponse{Rank: i + 1, Name: e.Name, GoldPerHour: e.AverageRatePerHour, Runs: e.Runs}
	}
	return out
}

// Health reports liveness.
// GET /healthz
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"ok": true, "tick": h.ctrl.View().Tick})
}

// GetState returns everything the overlay shows.
// GET /v1/state
func (h *Handler) GetState(c echo.Context) error {
	v := h.ctrl.View()
	resp := StateResponse{
		Tick:      v.Tick,
		UpdatedAt: v.UpdatedAt,
		Phase:     v.Phase.String(),
		Session:   sessionResponse(v.State),
		Ranking:   rankingResponse(v.State),
		History:   len(v.State.Recent),
	}
	if a := v.State.Active; a != nil {
		resp.Active = &ActiveRunResponse{
			Zone:        string(a.Zone),
			Name:        a.Name,
			Elapsed:     history.FormatDuration(a.Elapsed),
			Gold:        a.Gold,
			GoldPerHour: a.GoldPerHour(),
		}
	}
	return c.JSON(http.StatusOK, resp)
}

// GetSession returns session totals.
// GET /v1/session
func (h *Handler) GetSession(c echo.Context) error {
	return c.JSON(http.StatusOK, sessionResponse(h.ctrl.View().State))
}

// ListRuns returns the most recent completed runs, oldest first, in the
// history file format.
// GET /v1/runs?limit=N
func (h *Handler) ListRuns(c echo.Context) error {
	st := h.ctrl.View().State
	runs := st.Recent
	if s := c.QueryParam("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
		}
		runs = st.LastRuns(n)
	}
	if runs == nil {
		runs = []history.Record{}
	}
	return c.JSON(http.StatusOK, map[string]any{"runs": runs})
}

// GetRanking returns the ranked run names.
// GET /v1/ranking
func (h *Handler) GetRanking(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"ranking": rankingResponse(h.ctrl.View().State)})
}

// ResetAll clears the session, the map stats and the run history.
// POST /v1/reset
func (h *Handler) ResetAll(c echo.Context) error {
	return h.reset(c, "reset_all", h.ctrl.ResetAll)
}

// ResetProfitability clears the run history only.
// POST /v1/reset/profitability
func (h *Handler) ResetProfitability(c echo.Context) error {
	return h.reset(c, "reset_profitability", h.ctrl.ResetProfitabilityData)
}

func (h *Handler) reset(c echo.Context, name string, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.resetTimeout)
	defer cancel()

	if err := fn(ctx); err != nil {
		h.logger.Error("reset failed", "command", name, "error", err)
		status := http.StatusInternalServerError
		if errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusServiceUnavailable
		}
		return c.JSON(status, map[string]string{"error": name + " did not complete"})
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true, "tick": h.ctrl.View().Tick})
}
