package ranking

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/goldhelper/history"
)

// NameStats summarizes every record of one run name.
type NameStats struct {
	Name        string  `csv:"name"`
	Runs        int     `csv:"runs"`
	TotalGold   float64 `csv:"total_gold"`
	MeanGold    float64 `csv:"mean_gold"`
	MeanRate    float64 `csv:"mean_gold_per_hour"`
	StdDevRate  float64 `csv:"std_gold_per_hour"`
	MedianRate  float64 `csv:"p50_gold_per_hour"`
	BestRate    float64 `csv:"max_gold_per_hour"`
	MeanMinutes float64 `csv:"mean_minutes"`
}

// Summarize computes per-name statistics over the whole history, ordered by
// mean rate descending. Unlike Rank it does not apply a recency window.
func Summarize(records []history.Record) []NameStats {
	groups := groupByName(records)
	out := make([]NameStats, 0, len(groups))

	for _, g := range groups {
		n := len(g.records)
		gold := make([]float64, n)
		rates := make([]float64, n)
		minutes := make([]float64, n)
		for i, r := range g.records {
			gold[i] = float64(r.GoldGained)
			rates[i] = r.GoldPerHour()
			minutes[i] = r.Elapsed.Minutes()
		}

		meanRate, stdRate := stat.MeanStdDev(rates, nil)
		if n < 2 {
			stdRate = 0
		}

		sorted := make([]float64, n)
		copy(sorted, rates)
		sort.Float64s(sorted)

		out = append(out, NameStats{
			Name:        g.name,
			Runs:        n,
			TotalGold:   floats.Sum(gold),
			MeanGold:    stat.Mean(gold, nil),
			MeanRate:    meanRate,
			StdDevRate:  stdRate,
			MedianRate:  stat.Quantile(0.5, stat.Empirical, sorted, nil),
			BestRate:    floats.Max(rates),
			MeanMinutes: stat.Mean(minutes, nil),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MeanRate > out[j].MeanRate
	})
	return out
}
