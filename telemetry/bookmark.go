package telemetry

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/stat"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkRateBreakthrough BookmarkType = "rate_breakthrough"
	BookmarkRateSlump        BookmarkType = "rate_slump"
	BookmarkDrySpell         BookmarkType = "dry_spell"
	BookmarkSteadyFarming    BookmarkType = "steady_farming"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	WindowEnd   float64      `csv:"window_end"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"window_end", b.WindowEnd,
		"description", b.Description,
	)
}

const (
	drySpellWindows = 3
	steadyWindows   = 5
)

// BookmarkDetector flags notable windows of a farming session.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	// State tracking
	recentRatePeak float64 // best window rate in recent history
	dryWindows     int     // consecutive windows with no gain
	steadyCount    int     // consecutive windows with a stable rate
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < steadyWindows {
		historySize = steadyWindows
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if b := bd.checkDrySpell(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	if bd.historyFull || bd.historyIdx > 0 {
		// Window rate > 2x rolling average
		if b := bd.checkRateBreakthrough(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}

		// Window rate below half the recent peak
		if b := bd.checkRateSlump(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}

		// Low variance in rate over steadyWindows windows
		if b := bd.checkSteadyFarming(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	bd.addToHistory(stats)

	if stats.GoldPerHour > bd.recentRatePeak {
		bd.recentRatePeak = stats.GoldPerHour
	}

	return bookmarks
}

// Reset forgets all history.
func (bd *BookmarkDetector) Reset() {
	*bd = BookmarkDetector{
		history:     make([]WindowStats, bd.historySize),
		historySize: bd.historySize,
	}
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []WindowStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

func (bd *BookmarkDetector) averageRate() float64 {
	history := bd.getHistory()
	rates := make([]float64, len(history))
	for i, h := range history {
		rates[i] = h.GoldPerHour
	}
	return stat.Mean(rates, nil)
}

func (bd *BookmarkDetector) checkRateBreakthrough(stats WindowStats) *Bookmark {
	if len(bd.getHistory()) < 3 {
		return nil
	}

	avg := bd.averageRate()
	if avg <= 0 || stats.GoldPerHour <= 2*avg {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkRateBreakthrough,
		WindowEnd:   stats.WindowEndSec,
		Description: fmt.Sprintf("rate %.0f/hr vs avg %.0f/hr", stats.GoldPerHour, avg),
	}
}

func (bd *BookmarkDetector) checkRateSlump(stats WindowStats) *Bookmark {
	if len(bd.getHistory()) < 3 || bd.recentRatePeak <= 0 {
		return nil
	}
	// A dry window is reported as a dry spell instead
	if stats.GoldGained == 0 || stats.GoldPerHour >= 0.5*bd.recentRatePeak {
		return nil
	}

	b := &Bookmark{
		Type:        BookmarkRateSlump,
		WindowEnd:   stats.WindowEndSec,
		Description: fmt.Sprintf("rate %.0f/hr vs peak %.0f/hr", stats.GoldPerHour, bd.recentRatePeak),
	}
	// Reset the peak so a sustained slump is reported once
	bd.recentRatePeak = stats.GoldPerHour
	return b
}

func (bd *BookmarkDetector) checkDrySpell(stats WindowStats) *Bookmark {
	if stats.GoldGained > 0 {
		bd.dryWindows = 0
		return nil
	}

	bd.dryWindows++
	if bd.dryWindows != drySpellWindows {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkDrySpell,
		WindowEnd:   stats.WindowEndSec,
		Description: fmt.Sprintf("no gold for %d windows", drySpellWindows),
	}
}

func (bd *BookmarkDetector) checkSteadyFarming(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < steadyWindows-1 || stats.GoldPerHour <= 0 {
		bd.steadyCount = 0
		return nil
	}

	// Most recent steadyWindows-1 windows plus this one
	rates := []float64{stats.GoldPerHour}
	for i := 1; i < steadyWindows; i++ {
		idx := (bd.historyIdx - i + bd.historySize) % bd.historySize
		rates = append(rates, bd.history[idx].GoldPerHour)
	}

	mean, std := stat.MeanStdDev(rates, nil)
	if mean <= 0 || std/mean >= 0.2 {
		bd.steadyCount = 0
		return nil
	}

	bd.steadyCount++
	if bd.steadyCount != 1 {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkSteadyFarming,
		WindowEnd:   stats.WindowEndSec,
		Description: fmt.Sprintf("steady %.0f/hr over %d windows", mean, steadyWindows),
	}
}
