// Package display turns tracker state into the strings and graph bars the
// overlay draws. Formatting is throttled so text does not flicker at the
// tick rate.
package display

import (
	"fmt"
	"strings"
	"time"

	"github.com/pthm-cable/goldhelper/tracking"
)

const (
	// DefaultRefreshInterval is how often cached text is recomputed.
	DefaultRefreshInterval = time.Second
	// DefaultGraphBars is the number of recent runs in the session graph.
	DefaultGraphBars = 3

	noActiveMap = "Area: No active map"
)

// Texts holds the formatted panel contents. Multi-line values use "\n".
type Texts struct {
	Session   string
	Map       string
	AreaTitle string
	Area      string
	Ranking   string
}

// Bar is one slot of the recent-run graph.
type Bar struct {
	Label  string  // slot number, "1" is the oldest
	Name   string  // run name for the tooltip; empty when the slot is unused
	Gold   int64
	Height float32 // fraction of the graph height, 0..1
}

// Filled reports whether a run occupies the slot.
func (b Bar) Filled() bool { return b.Name != "" }

// Build formats st. It is pure; Cache decides when to call it.
func Build(st tracking.State) Texts {
	t := Texts{
		Session: lines(
			"Time: "+FormatClock(st.SessionElapsed),
			"Gained: "+FormatCount(float64(st.SessionGold)),
			"Rate: "+FormatCount(st.SessionGoldPerHour())+"/hr",
		),
		Map: lines(
			"Completed: "+FormatCount(float64(st.CompletedRuns)),
			"Avg. Gain: "+FormatCount(st.AverageRunGold()),
		),
		AreaTitle: noActiveMap,
	}

	var active tracking.ActiveRun
	if st.Active != nil {
		active = *st.Active
		t.AreaTitle = "Area: " + active.Name
	}
	t.Area = lines(
		"Time: "+FormatClock(active.Elapsed),
		"Gained: "+FormatCount(float64(active.Gold)),
		"Rate: "+FormatCount(active.GoldPerHour())+"/hr",
	)

	if len(st.Ranking) == 0 {
		t.Ranking = "No completed runs"
	} else {
		rows := make([]string, len(st.Ranking))
		for i, e := range st.Ranking {
			rows[i] = fmt.Sprintf("%d. %s  %s/hr", i+1, e.Name, FormatMagnitude(e.AverageRatePerHour))
		}
		t.Ranking = lines(rows...)
	}
	return t
}

// Bars lays out the last n runs, oldest first, scaled to the largest gain.
// Slots without a run are returned empty so labels stay fixed.
func Bars(st tracking.State, n int) []Bar {
	if n <= 0 {
		n = DefaultGraphBars
	}
	recent := st.LastRuns(n)

	var maxGold int64 = 1
	for _, r := range recent {
		if r.GoldGained > maxGold {
			maxGold = r.GoldGained
		}
	}

	bars := make([]Bar, n)
	for i := range bars {
		bars[i].Label = fmt.Sprint(i + 1)
		if i >= len(recent) {
			continue
		}
		r := recent[i]
		bars[i].Name = r.Name
		bars[i].Gold = r.GoldGained
		if r.GoldGained > 0 {
			bars[i].Height = float32(r.GoldGained) / float32(maxGold)
		}
	}
	return bars
}

func lines(s ...string) string {
	return strings.Join(s, "\n")
}

// Cache holds the last formatted output and refreshes it at most once per
// interval. Not safe for concurrent use.
type Cache struct {
	interval  time.Duration
	graphBars int

	last   time.Time
	primed bool
	texts  Texts
	bars   []Bar
}

// NewCache creates a cache. Non-positive arguments use the defaults.
func NewCache(interval time.Duration, graphBars int) *Cache {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	if graphBars <= 0 {
		graphBars = DefaultGraphBars
	}
	return &Cache{interval: interval, graphBars: graphBars}
}

// Update reformats st if the interval has passed since the last refresh, or
// if nothing has been formatted yet. It reports whether it refreshed.
func (c *Cache) Update(now time.Time, st tracking.State) bool {
	if c.primed && now.Sub(c.last) < c.interval {
		return false
	}
	c.Refresh(now, st)
	return true
}

// Refresh reformats st unconditionally.
func (c *Cache) Refresh(now time.Time, st tracking.State) {
	c.texts = Build(st)
	c.bars = Bars(st, c.graphBars)
	c.last = now
	c.primed = true
}

// Texts returns the cached text.
func (c *Cache) Texts() Texts { return c.texts }

// Bars returns a copy of the cached graph bars.
func (c *Cache) Bars() []Bar {
	out := make([]Bar, len(c.bars))
	copy(out, c.bars)
	return out
}
