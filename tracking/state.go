package tracking

import (
	"log/slog"
	"time"

	"github.com/pthm-cable/goldhelper/history"
	"github.com/pthm-cable/goldhelper/ranking"
)

// State is a point-in-time copy of the tracker for presentation. It shares
// no memory with the tracker.
type State struct {
	SessionElapsed time.Duration
	SessionGold    int64

	Active *ActiveRun // nil when no run is open

	CompletedRuns int
	TotalRunGold  int64

	Ranking []ranking.Entry
	Recent  []history.Record // oldest first, bounded by the store
}

// SessionGoldPerHour returns the session rate.
func (s State) SessionGoldPerHour() float64 {
	return ratePerHour(s.SessionGold, s.SessionElapsed)
}

// AverageRunGold returns the mean gain per completed run.
func (s State) AverageRunGold() float64 {
	if s.CompletedRuns == 0 {
		return 0
	}
	return float64(s.TotalRunGold) / float64(s.CompletedRuns)
}

// LastRuns returns up to n of the most recent runs, oldest first.
func (s State) LastRuns(n int) []history.Record {
	if n <= 0 {
		return nil
	}
	if len(s.Recent) <= n {
		return s.Recent
	}
	return s.Recent[len(s.Recent)-n:]
}

// LogValue implements slog.LogValuer for structured logging.
func (s State) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Duration("session_elapsed", s.SessionElapsed),
		slog.Int64("session_gold", s.SessionGold),
		slog.Float64("session_gold_per_hour", s.SessionGoldPerHour()),
		slog.Int("completed_runs", s.CompletedRuns),
		slog.Float64("avg_run_gold", s.AverageRunGold()),
		slog.Int("history", len(s.Recent)),
	}
	if s.Active != nil {
		attrs = append(attrs,
			slog.String("active_zone", s.Active.Name),
			slog.Int64("active_gold", s.Active.Gold),
			slog.Duration("active_elapsed", s.Active.Elapsed),
		)
	}
	if len(s.Ranking) > 0 {
		attrs = append(attrs, slog.String("top_zone", s.Ranking[0].Name))
	}
	return slog.GroupValue(attrs...)
}
