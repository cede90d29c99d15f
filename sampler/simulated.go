package sampler

import (
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/pthm-cable/goldhelper/config"
	"github.com/pthm-cable/goldhelper/tracking"
)

// excursionChance is the per-tick chance of portalling out of a run to a
// hub and back.
const excursionChance = 0.002

type location struct {
	id       tracking.ZoneID
	name     string
	eligible bool
}

// Simulated is a host that cycles between hubs and farming zones, picking up
// gold in zones and spending it in hubs. Every zone entry is a new visit
// with a fresh ID, except returning from an excursion.
type Simulated struct {
	cfg  config.SamplerConfig
	tick time.Duration
	rng  *rand.Rand

	balance   int64
	where     location
	remaining time.Duration

	// Run left behind during an excursion
	run       location
	runLeft   time.Duration
	excursion bool
}

// NewSimulated creates a simulated host. A zero seed uses the clock.
func NewSimulated(cfg config.SamplerConfig, tick time.Duration) *Simulated {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if tick <= 0 {
		tick = time.Second / 60
	}
	if len(cfg.Zones) == 0 {
		cfg.Zones = []string{"Zone"}
	}
	if len(cfg.Hubs) == 0 {
		cfg.Hubs = []string{"Hideout"}
	}

	s := &Simulated{
		cfg:     cfg,
		tick:    tick,
		rng:     rand.New(rand.NewSource(seed)),
		balance: max(cfg.StartBalance, 0),
	}
	s.enterHub(s.jitter(cfg.HubSeconds))
	return s
}

// Next advances the host by one tick.
func (s *Simulated) Next() (tracking.Sample, error) {
	switch {
	case s.remaining <= 0:
		s.transition()
	case s.where.eligible && s.rng.Float64() < excursionChance:
		s.run, s.runLeft, s.excursion = s.where, s.remaining, true
		s.enterHub(s.jitter(s.cfg.HubSeconds / 3))
	}

	if s.where.eligible {
		if s.rng.Float64() < s.cfg.PickChance {
			s.balance += s.pickup()
		}
	} else if s.balance > 0 && s.rng.Float64() < s.cfg.SpendChance {
		s.balance -= s.rng.Int63n(s.balance) + 1
	}

	s.remaining -= s.tick

	return tracking.Sample{
		InActiveContext: s.where.eligible,
		Zone:            s.where.id,
		ZoneName:        s.where.name,
		Eligible:        s.where.eligible,
		RawTotal:        s.balance,
		Elapsed:         s.tick,
	}, nil
}

// Close implements io.Closer.
func (s *Simulated) Close() error { return nil }

// Balance returns the host's current gold counter.
func (s *Simulated) Balance() int64 { return s.balance }

func (s *Simulated) transition() {
	switch {
	case s.excursion:
		s.where, s.remaining = s.run, s.runLeft
		s.excursion = false
	case s.where.eligible:
		s.enterHub(s.jitter(s.cfg.HubSeconds))
	default:
		s.where = location{
			id:       s.newID(),
			name:     s.cfg.Zones[s.rng.Intn(len(s.cfg.Zones))],
			eligible: true,
		}
		s.remaining = s.jitter(s.cfg.RunSeconds)
	}
}

func (s *Simulated) enterHub(d time.Duration) {
	s.where = location{
		id:   s.newID(),
		name: s.cfg.Hubs[s.rng.Intn(len(s.cfg.Hubs))],
	}
	s.remaining = d
}

// newID draws the visit ID from the seeded source so runs are reproducible.
func (s *Simulated) newID() tracking.ZoneID {
	id, err := uuid.NewRandomFromReader(s.rng)
	if err != nil {
		id = uuid.New()
	}
	return tracking.ZoneID(id.String())
}

// jitter returns a duration uniformly within +-50% of mean seconds, and at
// least one tick.
func (s *Simulated) jitter(mean float64) time.Duration {
	d := time.Duration(mean * (0.5 + s.rng.Float64()) * float64(time.Second))
	return max(d, s.tick)
}

func (s *Simulated) pickup() int64 {
	mean := s.cfg.GoldPerPick
	if mean <= 0 {
		return 1
	}
	return mean/2 + s.rng.Int63n(mean+1)
}
