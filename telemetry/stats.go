package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for one window of active time.
type WindowStats struct {
	WindowStartSec float64 `csv:"-"`
	WindowEndSec   float64 `csv:"window_end"` // session seconds at window end
	Tick           int64   `csv:"tick"`

	// Gold movement during the window
	GoldGained  int64   `csv:"gold_gained"`
	GoldSpent   int64   `csv:"gold_spent"`
	Pickups     int     `csv:"pickups"`
	GoldPerHour float64 `csv:"gold_per_hour"`

	// Runs during the window
	RunsStarted   int `csv:"runs_started"`
	RunsCompleted int `csv:"runs_completed"`
	RunsDiscarded int `csv:"runs_discarded"`

	// Distribution of completed runs' gold per hour
	RunRateMean float64 `csv:"run_rate_mean"`
	RunRateP10  float64 `csv:"run_rate_p10"`
	RunRateP50  float64 `csv:"run_rate_p50"`
	RunRateP90  float64 `csv:"run_rate_p90"`

	// Session totals at window end
	SessionGold        int64   `csv:"session_gold"`
	SessionGoldPerHour float64 `csv:"session_gold_per_hour"`
	HistorySize        int     `csv:"history_size"`
	ActiveRun          string  `csv:"active_run"`
	TopRun             string  `csv:"top_run"`
}

// Percentile returns the p-th quantile of a sorted slice, linearly
// interpolated between samples. p is clamped to [0, 1]. Returns 0 if the
// slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	p = math.Max(0, math.Min(1, p))
	return stat.Quantile(p, stat.LinInterp, sorted, nil)
}

// ComputeRateStats calculates mean and percentiles of run rates.
func ComputeRateStats(values []float64) (mean, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}

	mean = stat.Mean(values, nil)

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("window_start", s.WindowStartSec),
		slog.Float64("window_end", s.WindowEndSec),
		slog.Int64("tick", s.Tick),
		slog.Int64("gold_gained", s.GoldGained),
		slog.Int64("gold_spent", s.GoldSpent),
		slog.Int("pickups", s.Pickups),
		slog.Float64("gold_per_hour", s.GoldPerHour),
		slog.Int("runs_started", s.RunsStarted),
		slog.Int("runs_completed", s.RunsCompleted),
		slog.Int("runs_discarded", s.RunsDiscarded),
		slog.Float64("run_rate_mean", s.RunRateMean),
		slog.Float64("run_rate_p50", s.RunRateP50),
		slog.Int64("session_gold", s.SessionGold),
		slog.Float64("session_gold_per_hour", s.SessionGoldPerHour),
		slog.Int("history_size", s.HistorySize),
		slog.String("active_run", s.ActiveRun),
		slog.String("top_run", s.TopRun),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndSec,
		"gold_gained", s.GoldGained,
		"gold_spent", s.GoldSpent,
		"pickups", s.Pickups,
		"gold_per_hour", s.GoldPerHour,
		"runs_started", s.RunsStarted,
		"runs_completed", s.RunsCompleted,
		"runs_discarded", s.RunsDiscarded,
		"run_rate_mean", s.RunRateMean,
		"run_rate_p10", s.RunRateP10,
		"run_rate_p50", s.RunRateP50,
		"run_rate_p90", s.RunRateP90,
		"session_gold", s.SessionGold,
		"session_gold_per_hour", s.SessionGoldPerHour,
		"history_size", s.HistorySize,
		"active_run", s.ActiveRun,
		"top_run", s.TopRun,
	)
}
