// Package tracking turns a stream of host samples into session and per-run
// gold accounting.
//
// Everything here is driven by one caller, once per tick. Nothing in the
// package locks; callers on other goroutines go through plugin.Plugin.
package tracking

import (
	"log/slog"
	"time"
)

// ZoneID identifies one visit to a zone. Two visits to zones with the same
// name have different IDs. The value is opaque; only equality matters.
type ZoneID string

// Sample is one observation of the host, taken once per tick.
type Sample struct {
	InActiveContext bool          // in game and not in a peaceful area; session time and gold accrue
	Zone            ZoneID        // current zone visit
	ZoneName        string        // display name of the zone
	Eligible        bool          // zone can host a run (not a hub or town)
	RawTotal        int64         // host-owned gold counter; may drop when gold is spent
	Elapsed         time.Duration // time since the previous sample
}

// LogValue implements slog.LogValuer for structured logging.
func (s Sample) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("active", s.InActiveContext),
		slog.String("zone", string(s.Zone)),
		slog.String("zone_name", s.ZoneName),
		slog.Bool("eligible", s.Eligible),
		slog.Int64("raw_total", s.RawTotal),
		slog.Duration("elapsed", s.Elapsed),
	)
}
