// Package telemetry provides windowed session statistics, milestone
// detection, tick timing, CSV output, and OpenTelemetry metrics.
package telemetry

import (
	"time"

	"github.com/pthm-cable/goldhelper/history"
	"github.com/pthm-cable/goldhelper/tracking"
)

// Collector accumulates events within windows of active time and produces
// WindowStats. Time spent outside an active context does not advance the
// window.
type Collector struct {
	window time.Duration

	// Current window tracking
	sessionTime time.Duration
	windowStart time.Duration

	// Event counters for current window
	goldGained    int64
	goldSpent     int64
	pickups       int
	runsStarted   int
	runsCompleted int
	runsDiscarded int
	runRates      []float64
}

// NewCollector creates a new stats collector.
// window: how much active time each stats window covers.
func NewCollector(window time.Duration) *Collector {
	if window <= 0 {
		window = time.Minute
	}
	return &Collector{window: window}
}

// Advance adds active time to the current window.
func (c *Collector) Advance(d time.Duration) {
	if d > 0 {
		c.sessionTime += d
	}
}

// RecordGain records a pickup of n gold.
func (c *Collector) RecordGain(n int64) {
	if n <= 0 {
		return
	}
	c.goldGained += n
	c.pickups++
}

// RecordSpend records n gold leaving the counter.
func (c *Collector) RecordSpend(n int64) {
	if n > 0 {
		c.goldSpent += n
	}
}

// RecordRunStarted records a run opening.
func (c *Collector) RecordRunStarted() {
	c.runsStarted++
}

// RecordRunCompleted records a finalized run.
func (c *Collector) RecordRunCompleted(rec history.Record) {
	c.runsCompleted++
	c.runRates = append(c.runRates, rec.GoldPerHour())
}

// RecordRunDiscarded records a run that closed without gain.
func (c *Collector) RecordRunDiscarded() {
	c.runsDiscarded++
}

// Observe records everything one tracker step reported.
func (c *Collector) Observe(s tracking.Sample, res tracking.Result) {
	if s.InActiveContext {
		c.Advance(s.Elapsed)
	}
	c.RecordGain(res.SessionGain)
	c.RecordSpend(res.Spent)
	if res.Discarded {
		c.RecordRunDiscarded()
	}
	if res.Finalized != nil {
		c.RecordRunCompleted(*res.Finalized)
	}
	if res.Started {
		c.RecordRunStarted()
	}
}

// ShouldFlush returns true once the window has covered enough active time.
func (c *Collector) ShouldFlush() bool {
	return c.sessionTime-c.windowStart >= c.window
}

// Flush produces a WindowStats and resets counters for the next window.
// st supplies the session totals at the window boundary.
func (c *Collector) Flush(tick int64, st tracking.State) WindowStats {
	span := c.sessionTime - c.windowStart
	var rate float64
	if span > 0 {
		rate = float64(c.goldGained) / span.Hours()
	}

	rateMean, rateP10, rateP50, rateP90 := ComputeRateStats(c.runRates)

	stats := WindowStats{
		WindowStartSec: c.windowStart.Seconds(),
		WindowEndSec:   c.sessionTime.Seconds(),
		Tick:           tick,

		GoldGained:  c.goldGained,
		GoldSpent:   c.goldSpent,
		Pickups:     c.pickups,
		GoldPerHour: rate,

		RunsStarted:   c.runsStarted,
		RunsCompleted: c.runsCompleted,
		RunsDiscarded: c.runsDiscarded,

		RunRateMean: rateMean,
		RunRateP10:  rateP10,
		RunRateP50:  rateP50,
		RunRateP90:  rateP90,

		SessionGold:        st.SessionGold,
		SessionGoldPerHour: st.SessionGoldPerHour(),
		HistorySize:        len(st.Recent),
	}
	if st.Active != nil {
		stats.ActiveRun = st.Active.Name
	}
	if len(st.Ranking) > 0 {
		stats.TopRun = st.Ranking[0].Name
	}

	// Reset for next window
	c.windowStart = c.sessionTime
	c.goldGained = 0
	c.goldSpent = 0
	c.pickups = 0
	c.runsStarted = 0
	c.runsCompleted = 0
	c.runsDiscarded = 0
	c.runRates = c.runRates[:0]

	return stats
}

// Reset discards the current window, e.g. after the session is reset.
func (c *Collector) Reset() {
	*c = Collector{window: c.window, runRates: c.runRates[:0]}
}

// Window returns the active time covered by each window.
func (c *Collector) Window() time.Duration {
	return c.window
}
