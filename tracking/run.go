package tracking

import (
	"time"

	"github.com/pthm-cable/goldhelper/history"
)

// Phase is the RunTracker state.
type Phase uint8

const (
	PhaseIdle Phase = iota
	PhaseTracking
)

func (p Phase) String() string {
	if p == PhaseTracking {
		return "tracking"
	}
	return "idle"
}

// ActiveRun is the open run while the tracker is in PhaseTracking.
type ActiveRun struct {
	Zone    ZoneID
	Name    string
	Elapsed time.Duration
	Gold    int64
}

// GoldPerHour returns the run's current rate.
func (r ActiveRun) GoldPerHour() float64 {
	return ratePerHour(r.Gold, r.Elapsed)
}

// RunTracker segments samples into runs. It is Idle when active is nil and
// Tracking otherwise.
type RunTracker struct {
	active *ActiveRun
}

// Phase reports whether a run is open.
func (t *RunTracker) Phase() Phase {
	if t.active == nil {
		return PhaseIdle
	}
	return PhaseTracking
}

// Active returns a copy of the open run, or nil when Idle.
func (t *RunTracker) Active() *ActiveRun {
	if t.active == nil {
		return nil
	}
	run := *t.active
	return &run
}

// Observe applies one sample's boundary rules:
//   - ineligible zone: nothing changes, an open run stays open;
//   - eligible zone while Idle: a run starts;
//   - eligible zone with a different ID: the open run is finalized and a new
//     one starts;
//   - the open run's zone: nothing changes.
//
// When a run is finalized with a positive gain, its record is returned with
// finalized set. A finalized run with no gain is discarded and reported via
// discarded.
func (t *RunTracker) Observe(s Sample, now time.Time) (rec history.Record, finalized, discarded bool) {
	if !s.Eligible {
		return history.Record{}, false, false
	}
	if t.active != nil && t.active.Zone == s.Zone {
		return history.Record{}, false, false
	}

	if t.active != nil {
		rec, finalized = t.Finalize(now)
		discarded = !finalized
	}
	t.start(s.Zone, s.ZoneName)
	return rec, finalized, discarded
}

// Finalize closes the open run. It returns a record only when the run
// gained gold; otherwise the run is dropped. The tracker is Idle afterwards
// either way. Finalizing while Idle does nothing.
func (t *RunTracker) Finalize(now time.Time) (history.Record, bool) {
	run := t.active
	t.active = nil
	if run == nil || run.Gold <= 0 {
		return history.Record{}, false
	}
	return history.Record{
		Name:        run.Name,
		GoldGained:  run.Gold,
		Elapsed:     run.Elapsed,
		CompletedAt: now,
	}, true
}

// AccrueTime adds d to the open run when zone is the run's zone.
func (t *RunTracker) AccrueTime(zone ZoneID, d time.Duration) {
	if t.active != nil && t.active.Zone == zone && d > 0 {
		t.active.Elapsed += d
	}
}

// AddGold adds n to the open run when zone is the run's zone. It reports
// whether the gain was attributed.
func (t *RunTracker) AddGold(zone ZoneID, n int64) bool {
	if t.active == nil || t.active.Zone != zone || n <= 0 {
		return false
	}
	t.active.Gold += n
	return true
}

// Reset drops the open run without finalizing it.
func (t *RunTracker) Reset() {
	t.active = nil
}

func (t *RunTracker) start(zone ZoneID, name string) {
	t.active = &ActiveRun{Zone: zone, Name: name}
}
