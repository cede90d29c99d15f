package tracking

// DeltaTracker converts successive raw gold totals into gains.
//
// The counter belongs to the host and drops whenever gold is spent, so only
// increases count. The first observation only sets the baseline; the
// starting balance is not a gain.
type DeltaTracker struct {
	previous    int64
	initialized bool
}

// Observe records current and returns the gain since the previous
// observation: 0 for the first observation, for no change, and for a
// decrease.
func (d *DeltaTracker) Observe(current int64) int64 {
	if !d.initialized {
		d.previous = current
		d.initialized = true
		return 0
	}

	delta := current - d.previous
	d.previous = current
	if delta <= 0 {
		return 0
	}
	return delta
}

// Baseline returns the last observed total and whether one exists.
func (d *DeltaTracker) Baseline() (int64, bool) {
	return d.previous, d.initialized
}

// Reset forgets the baseline; the next observation is neutral again.
func (d *DeltaTracker) Reset() {
	*d = DeltaTracker{}
}
