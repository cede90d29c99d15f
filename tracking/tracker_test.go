package tracking

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/goldhelper/history"
)

const tick = 100 * time.Millisecond

// feed runs the tracker over samples, one tick apart.
func feed(tr *Tracker, samples ...Sample) []Result {
	results := make([]Result, len(samples))
	for i, s := range samples {
		if s.Elapsed == 0 {
			s.Elapsed = tick
		}
		results[i] = tr.Process(s, epoch.Add(time.Duration(i)*time.Second))
	}
	return results
}

func at(s Sample, total int64) Sample {
	s.RawTotal = total
	return s
}

func TestTrackerFirstSampleIsNeutral(t *testing.T) {
	tr := New(Options{})
	a := eligible("a1", "Crypt")

	results := feed(tr, at(a, 100), at(a, 150))
	assert.Zero(t, results[0].SessionGain)
	assert.Equal(t, int64(50), results[1].SessionGain)
	assert.Equal(t, int64(50), results[1].RunGain)

	st := tr.Snapshot()
	assert.Equal(t, int64(50), st.SessionGold)
	require.NotNil(t, st.Active)
	assert.Equal(t, int64(50), st.Active.Gold)
}

func TestTrackerSpendingDoesNotReduceTotals(t *testing.T) {
	tr := New(Options{})
	a := eligible("a1", "Crypt")

	results := feed(tr, at(a, 100), at(a, 120), at(a, 20), at(a, 35))
	assert.Equal(t, int64(100), results[2].Spent)
	assert.Zero(t, results[2].SessionGain)

	st := tr.Snapshot()
	assert.Equal(t, int64(35), st.SessionGold)
	assert.Equal(t, int64(35), st.Active.Gold)
}

func TestTrackerAttributionBoundary(t *testing.T) {
	tr := New(Options{})
	a := eligible("a1", "Crypt")
	// Active, but an ineligible zone: the run stays open on a1
	b := Sample{InActiveContext: true, Zone: "b1", ZoneName: "Lab"}

	feed(tr, at(a, 0), at(a, 10), at(b, 40))

	st := tr.Snapshot()
	assert.Equal(t, int64(40), st.SessionGold)
	require.NotNil(t, st.Active)
	assert.Equal(t, ZoneID("a1"), st.Active.Zone)
	assert.Equal(t, int64(10), st.Active.Gold)
}

func TestTrackerPeacefulContextAccruesNothing(t *testing.T) {
	tr := New(Options{})
	a := eligible("a1", "Crypt")
	town := hub("t1", "Town")

	feed(tr, at(a, 0), at(town, 500))

	st := tr.Snapshot()
	assert.Zero(t, st.SessionGold)
	assert.Equal(t, tick, st.SessionElapsed)
	assert.Zero(t, st.Active.Gold)
}

func TestTrackerCompletesRun(t *testing.T) {
	store := history.NewStore(history.Options{Max: 10})
	tr := New(Options{Store: store})
	a := eligible("a1", "Crypt")
	b := eligible("b1", "Dunes")

	results := feed(tr, at(a, 0), at(a, 60), at(a, 80), at(b, 80))
	assert.True(t, results[0].Started)
	require.NotNil(t, results[3].Finalized)
	assert.True(t, results[3].Started)

	rec := *results[3].Finalized
	assert.Equal(t, "Crypt", rec.Name)
	assert.Equal(t, int64(80), rec.GoldGained)
	// The first tick in a1 only opens the run; the next two accrue to it
	assert.Equal(t, 2*tick, rec.Elapsed)
	assert.Equal(t, epoch.Add(3*time.Second), rec.CompletedAt)

	st := tr.Snapshot()
	assert.Equal(t, 1, st.CompletedRuns)
	assert.Equal(t, int64(80), st.TotalRunGold)
	assert.InDelta(t, 80.0, st.AverageRunGold(), 1e-9)
	require.Len(t, st.Recent, 1)
	require.Len(t, st.Ranking, 1)
	assert.Equal(t, "Crypt", st.Ranking[0].Name)
	assert.Equal(t, 1, store.Len())
}

func TestTrackerDiscardsRunWithoutGain(t *testing.T) {
	store := history.NewStore(history.Options{Max: 10})
	tr := New(Options{Store: store})

	results := feed(tr,
		at(eligible("a1", "Crypt"), 100),
		at(eligible("a1", "Crypt"), 50), // spent only
		at(eligible("b1", "Dunes"), 50),
	)
	assert.Nil(t, results[2].Finalized)
	assert.True(t, results[2].Discarded)
	assert.Zero(t, store.Len())
	assert.Zero(t, tr.Snapshot().CompletedRuns)
}

func TestTrackerExcursionKeepsRun(t *testing.T) {
	store := history.NewStore(history.Options{Max: 10})
	tr := New(Options{Store: store})
	a := eligible("a1", "Crypt")
	home := hub("h1", "Hideout")

	feed(tr, at(a, 0), at(a, 30), at(home, 30), at(home, 30), at(a, 30), at(a, 45))

	assert.Zero(t, store.Len())
	st := tr.Snapshot()
	require.NotNil(t, st.Active)
	assert.Equal(t, int64(45), st.Active.Gold)
	assert.Equal(t, PhaseTracking, tr.Phase())
}

func TestTrackerRankingEndToEnd(t *testing.T) {
	store := history.NewStore(history.Options{Max: 10})
	tr := New(Options{Store: store})

	run := func(id ZoneID, name string, gold int64) {
		s := eligible(id, name)
		s.Elapsed = time.Hour
		base, _ := tr.delta.Baseline()
		// Entering the zone starts the run; the hour accrues on the second sample
		tr.Process(at(s, base), epoch)
		tr.Process(at(s, base+gold), epoch)
	}
	run("a1", "A", 100)
	run("b1", "B", 40)
	run("a2", "A", 300)
	run("z1", "Z", 0) // closes a2

	ranked := tr.Ranking()
	require.Len(t, ranked, 2)
	assert.Equal(t, "A", ranked[0].Name)
	assert.InDelta(t, 200.0, ranked[0].AverageRatePerHour, 1e-9)
	assert.Equal(t, "B", ranked[1].Name)
	assert.InDelta(t, 40.0, ranked[1].AverageRatePerHour, 1e-9)
}

func TestTrackerRankingFromLoadedHistory(t *testing.T) {
	store := history.NewStore(history.Options{Max: 10})
	store.Append(history.Record{Name: "A", GoldGained: 100, Elapsed: time.Hour, CompletedAt: epoch})
	store.Append(history.Record{Name: "B", GoldGained: 500, Elapsed: time.Hour, CompletedAt: epoch})

	tr := New(Options{Store: store, TopK: 1})
	ranked := tr.Ranking()
	require.Len(t, ranked, 1)
	assert.Equal(t, "B", ranked[0].Name)
}

func TestTrackerResetAll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	store := history.NewStore(history.Options{Path: path, Max: 10, Persist: true})
	tr := New(Options{Store: store})

	feed(tr,
		at(eligible("a1", "Crypt"), 0),
		at(eligible("a1", "Crypt"), 10),
		at(eligible("b1", "Dunes"), 10),
		at(eligible("b1", "Dunes"), 25),
	)
	require.FileExists(t, path)

	tr.ResetAll()

	st := tr.Snapshot()
	assert.Zero(t, st.SessionElapsed)
	assert.Zero(t, st.SessionGold)
	assert.Nil(t, st.Active)
	assert.Zero(t, st.CompletedRuns)
	assert.Zero(t, st.TotalRunGold)
	assert.Empty(t, st.Recent)
	assert.Empty(t, st.Ranking)
	assert.Equal(t, PhaseIdle, tr.Phase())

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// The raw counter baseline survives the reset: a pickup right after it counts
	feed(tr, at(eligible("c1", "Jungle"), 25), at(eligible("c1", "Jungle"), 30))
	assert.Equal(t, int64(5), tr.Snapshot().SessionGold)
}

func TestTrackerResetProfitabilityKeepsSession(t *testing.T) {
	store := history.NewStore(history.Options{Max: 10})
	tr := New(Options{Store: store})

	feed(tr,
		at(eligible("a1", "Crypt"), 0),
		at(eligible("a1", "Crypt"), 10),
		at(eligible("b1", "Dunes"), 10),
	)
	tr.ResetProfitabilityData()

	st := tr.Snapshot()
	assert.Empty(t, st.Recent)
	assert.Empty(t, st.Ranking)
	assert.Equal(t, int64(10), st.SessionGold)
	assert.Equal(t, 1, st.CompletedRuns)
	require.NotNil(t, st.Active)
	assert.Equal(t, ZoneID("b1"), st.Active.Zone)
}

func TestStateLastRuns(t *testing.T) {
	st := State{Recent: []history.Record{{Name: "a"}, {Name: "b"}, {Name: "c"}}}
	assert.Nil(t, st.LastRuns(0))
	assert.Len(t, st.LastRuns(5), 3)
	last := st.LastRuns(2)
	require.Len(t, last, 2)
	assert.Equal(t, "b", last[0].Name)
	assert.Equal(t, "c", last[1].Name)
}
