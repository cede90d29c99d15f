// Package ranking orders run names by their recent profitability.
package ranking

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/goldhelper/history"
)

// Defaults for Rank.
const (
	DefaultRecencyWindow = 10
	DefaultTopK          = 3
)

// Entry is one ranked run name.
type Entry struct {
	Name               string
	AverageRatePerHour float64
	Runs               int // records that contributed to the average
}

// LogValue implements slog.LogValuer for structured logging.
func (e Entry) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("name", e.Name),
		slog.Float64("avg_gold_per_hour", e.AverageRatePerHour),
		slog.Int("runs", e.Runs),
	)
}

// group collects the records sharing a name, in first-seen order.
type group struct {
	name    string
	records []history.Record
}

// groupByName buckets records by name. Groups keep first-seen order and each
// group's records keep history order.
func groupByName(records []history.Record) []*group {
	index := make(map[string]*group)
	var groups []*group
	for _, r := range records {
		g, ok := index[r.Name]
		if !ok {
			g = &group{name: r.Name}
			index[r.Name] = g
			groups = append(groups, g)
		}
		g.records = append(g.records, r)
	}
	return groups
}

// recent returns at most window records of g, newest first. Records with
// equal completion times are ordered by position in history, later first.
func (g *group) recent(window int) []history.Record {
	newest := make([]history.Record, len(g.records))
	for i, r := range g.records {
		newest[len(g.records)-1-i] = r
	}
	sort.SliceStable(newest, func(i, j int) bool {
		return newest[i].CompletedAt.After(newest[j].CompletedAt)
	})
	if len(newest) > window {
		newest = newest[:window]
	}
	return newest
}

// Rank groups records by name, averages gold/hour over each group's
// recencyWindow most recent records, and returns the topK groups by that
// average, highest first. Ties keep first-seen order. Non-positive arguments
// fall back to the defaults.
func Rank(records []history.Record, recencyWindow, topK int) []Entry {
	if recencyWindow <= 0 {
		recencyWindow = DefaultRecencyWindow
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	if len(records) == 0 {
		return []Entry{}
	}

	groups := groupByName(records)
	entries := make([]Entry, 0, len(groups))
	for _, g := range groups {
		windowed := g.recent(recencyWindow)
		rates := make([]float64, len(windowed))
		for i, r := range windowed {
			rates[i] = r.GoldPerHour()
		}
		entries = append(entries, Entry{
			Name:               g.name,
			AverageRatePerHour: stat.Mean(rates, nil),
			Runs:               len(windowed),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].AverageRatePerHour > entries[j].AverageRatePerHour
	})

	if len(entries) > topK {
		entries = entries[:topK]
	}
	return entries
}
