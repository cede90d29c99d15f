// Package sampler produces the per-tick host samples the tracker consumes.
//
// The overlay never reads a real game process. Samples come from a simulated
// host or from a CSV recording of an earlier session.
package sampler

import (
	"fmt"
	"io"
	"time"

	"github.com/pthm-cable/goldhelper/config"
	"github.com/pthm-cable/goldhelper/tracking"
)

// Source yields one sample per call. Next returns io.EOF once exhausted.
type Source interface {
	Next() (tracking.Sample, error)
	io.Closer
}

// New builds the source selected by cfg.Mode. tick is the elapsed time
// reported by simulated samples.
func New(cfg config.SamplerConfig, tick time.Duration) (Source, error) {
	switch cfg.Mode {
	case "", "simulated":
		return NewSimulated(cfg, tick), nil
	case "replay":
		return OpenReplay(cfg.ReplayPath)
	default:
		return nil, fmt.Errorf("sampler: unknown mode %q", cfg.Mode)
	}
}
