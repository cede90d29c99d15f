package tracking

import (
	"log/slog"
	"time"

	"github.com/pthm-cable/goldhelper/history"
	"github.com/pthm-cable/goldhelper/ranking"
)

// RunStore receives finalized runs. history.Store implements it.
type RunStore interface {
	Append(history.Record)
	Records() []history.Record
	Reset()
}

// Commands are the operations a control surface may trigger. Tracker
// implements them directly.
type Commands interface {
	ResetAll()
	ResetProfitabilityData()
}

// Options configures a Tracker.
type Options struct {
	Store         RunStore // nil = in-memory store with the default bound
	RecencyWindow int      // ranking window; <= 0 uses ranking.DefaultRecencyWindow
	TopK          int      // ranked names; <= 0 uses ranking.DefaultTopK
	Logger        *slog.Logger
}

// Result describes what one Process call changed.
type Result struct {
	SessionGain int64           // gold added to the session
	RunGain     int64           // gold added to the open run
	Spent       int64           // drop in the raw counter, not accounted
	Started     bool            // a new run opened
	Finalized   *history.Record // run recorded this tick
	Discarded   bool            // a run closed with no gain
}

// Tracker owns the session clock, the run state machine, the delta tracker,
// and the ranking derived from the run store.
type Tracker struct {
	session SessionClock
	runs    RunTracker
	delta   DeltaTracker
	store   RunStore

	recencyWindow int
	topK          int
	ranking       []ranking.Entry

	// Map stats since the last ResetAll
	completedRuns int
	totalRunGold  int64

	logger *slog.Logger
}

// New creates a Tracker. The ranking is computed from whatever the store
// already holds.
func New(opts Options) *Tracker {
	if opts.Store == nil {
		opts.Store = history.NewStore(history.Options{Max: history.DefaultMax})
	}
	if opts.RecencyWindow <= 0 {
		opts.RecencyWindow = ranking.DefaultRecencyWindow
	}
	if opts.TopK <= 0 {
		opts.TopK = ranking.DefaultTopK
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	t := &Tracker{
		store:         opts.Store,
		recencyWindow: opts.RecencyWindow,
		topK:          opts.TopK,
		logger:        logger,
	}
	t.rerank()
	return t
}

// Process handles one sample. It never fails: persistence problems are
// logged by the store and the in-memory state carries on.
func (t *Tracker) Process(s Sample, now time.Time) Result {
	var res Result

	// Time accrues before boundary detection, so the tick that enters a new
	// zone does not count towards either run.
	if s.InActiveContext {
		t.session.Accrue(s.Elapsed)
		t.runs.AccrueTime(s.Zone, s.Elapsed)
	}

	wasZone := t.activeZone()
	rec, finalized, discarded := t.runs.Observe(s, now)
	if finalized {
		t.record(rec)
		res.Finalized = &rec
	}
	if discarded {
		t.logger.Debug("run discarded without gain", "zone", string(wasZone))
		res.Discarded = true
	}
	if active := t.runs.Active(); active != nil && active.Zone != wasZone {
		res.Started = true
		t.logger.Debug("run started", "zone", string(active.Zone), "name", active.Name)
	}

	previous, hadBaseline := t.delta.Baseline()
	gain := t.delta.Observe(s.RawTotal)
	if hadBaseline && s.RawTotal < previous {
		res.Spent = previous - s.RawTotal
	}
	if gain > 0 && s.InActiveContext {
		t.session.AddGold(gain)
		res.SessionGain = gain
		if t.runs.AddGold(s.Zone, gain) {
			res.RunGain = gain
		}
	}

	return res
}

// record hands a finalized run to the store and refreshes derived state.
func (t *Tracker) record(rec history.Record) {
	t.completedRuns++
	t.totalRunGold += rec.GoldGained
	t.store.Append(rec)
	t.rerank()
	t.logger.Info("run completed", "run", rec)
}

func (t *Tracker) rerank() {
	t.ranking = ranking.Rank(t.store.Records(), t.recencyWindow, t.topK)
}

func (t *Tracker) activeZone() ZoneID {
	if t.runs.active == nil {
		return ""
	}
	return t.runs.active.Zone
}

// ResetAll clears the session, the open run (without recording it), the map
// stats, and the profitability data.
func (t *Tracker) ResetAll() {
	t.session.Reset()
	t.runs.Reset()
	t.completedRuns = 0
	t.totalRunGold = 0
	t.ResetProfitabilityData()
	t.logger.Info("session reset")
}

// ResetProfitabilityData clears the run history, including its file.
func (t *Tracker) ResetProfitabilityData() {
	t.store.Reset()
	t.rerank()
	t.logger.Info("profitability data reset")
}

// Phase reports the run state machine's state.
func (t *Tracker) Phase() Phase {
	return t.runs.Phase()
}

// Ranking returns a copy of the current profitability ranking.
func (t *Tracker) Ranking() []ranking.Entry {
	out := make([]ranking.Entry, len(t.ranking))
	copy(out, t.ranking)
	return out
}

// Snapshot returns a read-only copy of everything the presentation needs.
func (t *Tracker) Snapshot() State {
	return State{
		SessionElapsed: t.session.Elapsed(),
		SessionGold:    t.session.Gold(),
		Active:         t.runs.Active(),
		CompletedRuns:  t.completedRuns,
		TotalRunGold:   t.totalRunGold,
		Ranking:        t.Ranking(),
		Recent:         t.store.Records(),
	}
}
