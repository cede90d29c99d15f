package telemetry

import "testing"

func hasBookmark(bookmarks []Bookmark, typ BookmarkType) bool {
	for _, bm := range bookmarks {
		if bm.Type == typ {
			return true
		}
	}
	return false
}

func TestBookmarkDetector_RateBreakthrough(t *testing.T) {
	bd := NewBookmarkDetector(10)

	// Add some history at a modest rate
	for i := 0; i < 5; i++ {
		bd.Check(WindowStats{
			WindowEndSec: float64((i + 1) * 60),
			GoldGained:   16,
			GoldPerHour:  1000,
		})
	}

	// Now a window at 3x the average
	bookmarks := bd.Check(WindowStats{
		WindowEndSec: 360,
		GoldGained:   50,
		GoldPerHour:  3000,
	})
	if !hasBookmark(bookmarks, BookmarkRateBreakthrough) {
		t.Error("expected rate_breakthrough bookmark")
	}
}

func TestBookmarkDetector_NoBreakthroughWithoutHistory(t *testing.T) {
	bd := NewBookmarkDetector(10)

	bd.Check(WindowStats{GoldGained: 1, GoldPerHour: 100})
	bookmarks := bd.Check(WindowStats{GoldGained: 100, GoldPerHour: 10000})
	if hasBookmark(bookmarks, BookmarkRateBreakthrough) {
		t.Error("breakthrough needs at least 3 windows of history")
	}
}

func TestBookmarkDetector_RateSlump(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for i := 0; i < 3; i++ {
		bd.Check(WindowStats{GoldGained: 16, GoldPerHour: 1000})
	}

	bookmarks := bd.Check(WindowStats{GoldGained: 5, GoldPerHour: 300})
	if !hasBookmark(bookmarks, BookmarkRateSlump) {
		t.Fatal("expected rate_slump bookmark")
	}

	// A sustained slump is only reported once
	bookmarks = bd.Check(WindowStats{GoldGained: 5, GoldPerHour: 300})
	if hasBookmark(bookmarks, BookmarkRateSlump) {
		t.Error("rate_slump reported twice for the same slump")
	}
}

func TestBookmarkDetector_DrySpell(t *testing.T) {
	bd := NewBookmarkDetector(10)

	bd.Check(WindowStats{GoldGained: 10, GoldPerHour: 600})

	var fired int
	for i := 0; i < 5; i++ {
		bookmarks := bd.Check(WindowStats{WindowEndSec: float64(i)})
		if hasBookmark(bookmarks, BookmarkDrySpell) {
			fired++
			if i != drySpellWindows-1 {
				t.Errorf("dry_spell fired at window %d, want %d", i, drySpellWindows-1)
			}
		}
	}
	if fired != 1 {
		t.Errorf("dry_spell fired %d times, want 1", fired)
	}

	// A pickup ends the spell; a new spell fires again
	bd.Check(WindowStats{GoldGained: 1, GoldPerHour: 60})
	var again bool
	for i := 0; i < drySpellWindows; i++ {
		again = hasBookmark(bd.Check(WindowStats{}), BookmarkDrySpell)
	}
	if !again {
		t.Error("expected dry_spell after a new run of dry windows")
	}
}

func TestBookmarkDetector_SteadyFarming(t *testing.T) {
	bd := NewBookmarkDetector(10)

	rates := []float64{1000, 1050, 980, 1020, 1000, 1010}
	var firedAt []int
	for i, rate := range rates {
		bookmarks := bd.Check(WindowStats{GoldGained: 16, GoldPerHour: rate})
		if hasBookmark(bookmarks, BookmarkSteadyFarming) {
			firedAt = append(firedAt, i)
		}
	}

	if len(firedAt) != 1 || firedAt[0] != steadyWindows-1 {
		t.Errorf("steady_farming fired at %v, want [%d]", firedAt, steadyWindows-1)
	}
}

func TestBookmarkDetector_Reset(t *testing.T) {
	bd := NewBookmarkDetector(10)
	for i := 0; i < 5; i++ {
		bd.Check(WindowStats{GoldGained: 16, GoldPerHour: 1000})
	}
	bd.Reset()

	bookmarks := bd.Check(WindowStats{GoldGained: 50, GoldPerHour: 3000})
	if hasBookmark(bookmarks, BookmarkRateBreakthrough) {
		t.Error("history should be empty after Reset")
	}
}
