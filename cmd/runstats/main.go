// Package main prints profitability statistics from a run history file.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/goldhelper/config"
	"github.com/pthm-cable/goldhelper/display"
	"github.com/pthm-cable/goldhelper/history"
	"github.com/pthm-cable/goldhelper/ranking"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Config YAML file (empty = use defaults)")
	historyPath := flag.String("history", "", "Run history JSON (empty = tracker.history_path)")
	window := flag.Int("window", 0, "Recent runs per name used for ranking (0 = config)")
	top := flag.Int("top", 0, "Ranked names shown (0 = config)")
	csvPath := flag.String("csv", "", "Write per-name statistics to this CSV file")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := config.Cfg()

	path := cfg.Tracker.HistoryPath
	if *historyPath != "" {
		path = *historyPath
	}
	if *window <= 0 {
		*window = cfg.Tracker.RecencyWindow
	}
	if *top <= 0 {
		*top = cfg.Tracker.TopK
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("failed to read history: %v", err)
	}
	records, err := history.Decode(data)
	if err != nil {
		log.Fatalf("failed to parse %s: %v", path, err)
	}

	if err := report(os.Stdout, records, *window, *top); err != nil {
		log.Fatalf("failed to write report: %v", err)
	}

	if *csvPath != "" {
		f, err := os.Create(*csvPath)
		if err != nil {
			log.Fatalf("failed to create %s: %v", *csvPath, err)
		}
		defer f.Close()
		if err := gocsv.MarshalFile(ranking.Summarize(records), f); err != nil {
			log.Fatalf("failed to write %s: %v", *csvPath, err)
		}
	}
}

// report writes the ranking and the per-name table for records.
func report(w io.Writer, records []history.Record, window, top int) error {
	fmt.Fprintf(w, "%d runs\n\n", len(records))

	ranked := ranking.Rank(records, window, top)
	fmt.Fprintf(w, "Most profitable (last %d runs per map)\n", window)
	if len(ranked) == 0 {
		fmt.Fprintln(w, "  No completed runs")
	}
	for i, e := range ranked {
		fmt.Fprintf(w, "  %d. %s  %s/hr (%d runs)\n", i+1, e.Name, display.FormatMagnitude(e.AverageRatePerHour), e.Runs)
	}
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Map\tRuns\tTotal\tMean/run\tMean/hr\tStd/hr\tMedian/hr\tBest/hr\tMinutes\t")
	for _, s := range ranking.Summarize(records) {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\t%s\t%s\t%.1f\t\n",
			s.Name, s.Runs,
			display.FormatCount(s.TotalGold),
			display.FormatCount(s.MeanGold),
			display.FormatMagnitude(s.MeanRate),
			display.FormatMagnitude(s.StdDevRate),
			display.FormatMagnitude(s.MedianRate),
			display.FormatMagnitude(s.BestRate),
			s.MeanMinutes,
		)
	}
	return tw.Flush()
}
