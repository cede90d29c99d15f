package tracking

import "time"

// SessionClock accumulates active time and gold for the whole process.
type SessionClock struct {
	elapsed time.Duration
	gold    int64
}

// Accrue adds active time. Non-positive durations are ignored.
func (c *SessionClock) Accrue(d time.Duration) {
	if d > 0 {
		c.elapsed += d
	}
}

// AddGold adds a gain. Non-positive amounts are ignored.
func (c *SessionClock) AddGold(n int64) {
	if n > 0 {
		c.gold += n
	}
}

// Elapsed returns the total active time.
func (c *SessionClock) Elapsed() time.Duration { return c.elapsed }

// Gold returns the total gold gained.
func (c *SessionClock) Gold() int64 { return c.gold }

// GoldPerHour returns the session rate, or 0 before any time has accrued.
func (c *SessionClock) GoldPerHour() float64 {
	return ratePerHour(c.gold, c.elapsed)
}

// Reset zeroes the clock.
func (c *SessionClock) Reset() {
	*c = SessionClock{}
}

func ratePerHour(gold int64, elapsed time.Duration) float64 {
	hours := elapsed.Hours()
	if hours <= 0 {
		return 0
	}
	return float64(gold) / hours
}
