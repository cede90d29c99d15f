package telemetry

import (
	"log/slog"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// TickPhase is one timed section of a tick.
type TickPhase uint8

const (
	PhaseCommands TickPhase = iota
	PhaseSample
	PhaseTracking
	PhaseTelemetry
	PhaseDisplay

	numPhases
)

var phaseNames = [numPhases]string{"commands", "sample", "tracking", "telemetry", "display"}

func (p TickPhase) String() string {
	if p < numPhases {
		return phaseNames[p]
	}
	return "unknown"
}

// tickTiming is the timing of one tick.
type tickTiming struct {
	total  time.Duration
	phases [numPhases]time.Duration
}

// PerfCollector keeps tick timings in a ring buffer. Nothing allocates per
// tick.
type PerfCollector struct {
	ring    []tickTiming
	next    int
	filled  int
	current tickTiming

	tickStart  time.Time
	phaseStart time.Time
	phase      TickPhase
	inPhase    bool

	// Graphics mode only
	lastFrame     time.Time
	frameDuration time.Duration
}

// NewPerfCollector creates a collector averaging over the last windowSize
// ticks.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{ring: make([]tickTiming, windowSize)}
}

// StartTick begins timing a tick.
func (p *PerfCollector) StartTick() {
	p.tickStart = time.Now()
	p.current = tickTiming{}
	p.inPhase = false
}

// StartPhase closes the running phase, if any, and starts phase.
func (p *PerfCollector) StartPhase(phase TickPhase) {
	now := time.Now()
	p.closePhase(now)
	p.phase = phase
	p.phaseStart = now
	p.inPhase = true
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.inPhase && p.phase < numPhases {
		p.current.phases[p.phase] += now.Sub(p.phaseStart)
	}
	p.inPhase = false
}

// EndTick records the tick.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	p.closePhase(now)
	p.current.total = now.Sub(p.tickStart)

	p.ring[p.next] = p.current
	p.next = (p.next + 1) % len(p.ring)
	if p.filled < len(p.ring) {
		p.filled++
	}
}

// RecordFrame marks the end of a rendered frame.
func (p *PerfCollector) RecordFrame() {
	now := time.Now()
	if !p.lastFrame.IsZero() {
		p.frameDuration = now.Sub(p.lastFrame)
	}
	p.lastFrame = now
}

// PerfStats summarizes the collector's window.
type PerfStats struct {
	Ticks          int
	AvgTick        time.Duration
	P50Tick        time.Duration
	P99Tick        time.Duration
	MaxTick        time.Duration
	TicksPerSecond float64

	PhaseAvg [numPhases]time.Duration
	PhasePct [numPhases]float64 // share of the average tick, 0..100

	FrameDuration time.Duration
	FPS           float64
}

// Pct returns phase's share of the average tick.
func (s PerfStats) Pct(phase TickPhase) float64 {
	if phase >= numPhases {
		return 0
	}
	return s.PhasePct[phase]
}

// Stats computes statistics over the ticks in the window.
func (p *PerfCollector) Stats() PerfStats {
	s := PerfStats{Ticks: p.filled, FrameDuration: p.frameDuration}
	if p.frameDuration > 0 {
		s.FPS = float64(time.Second) / float64(p.frameDuration)
	}
	if p.filled == 0 {
		return s
	}

	totals := make([]float64, p.filled)
	var phaseSum [numPhases]time.Duration
	for i, tt := range p.ring[:p.filled] {
		totals[i] = float64(tt.total)
		for ph, d := range tt.phases {
			phaseSum[ph] += d
		}
	}
	sort.Float64s(totals)

	s.AvgTick = time.Duration(stat.Mean(totals, nil))
	s.P50Tick = time.Duration(stat.Quantile(0.5, stat.Empirical, totals, nil))
	s.P99Tick = time.Duration(stat.Quantile(0.99, stat.Empirical, totals, nil))
	s.MaxTick = time.Duration(totals[len(totals)-1])
	if s.AvgTick > 0 {
		s.TicksPerSecond = float64(time.Second) / float64(s.AvgTick)
	}

	n := time.Duration(p.filled)
	for ph := range phaseSum {
		s.PhaseAvg[ph] = phaseSum[ph] / n
		if s.AvgTick > 0 {
			s.PhasePct[ph] = float64(s.PhaseAvg[ph]) / float64(s.AvgTick) * 100
		}
	}
	return s
}

// LogStats logs the stats at info level.
func (s PerfStats) LogStats() {
	slog.Info("perf", "stats", s)
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTick.Microseconds()),
		slog.Int64("p99_tick_us", s.P99Tick.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTick.Microseconds()),
		slog.Int("ticks_per_sec", int(s.TicksPerSecond)),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Int("fps", int(s.FPS)))
	}
	for ph, pct := range s.PhasePct {
		if pct >= 0.1 {
			attrs = append(attrs, slog.Float64(TickPhase(ph).String()+"_pct", float64(int(pct*10))/10))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is the perf.csv row.
type PerfStatsCSV struct {
	Tick         int64   `csv:"tick"`
	AvgTickUS    int64   `csv:"avg_tick_us"`
	P50TickUS    int64   `csv:"p50_tick_us"`
	P99TickUS    int64   `csv:"p99_tick_us"`
	MaxTickUS    int64   `csv:"max_tick_us"`
	TicksPerSec  float64 `csv:"ticks_per_sec"`
	FPS          float64 `csv:"fps"`
	CommandsPct  float64 `csv:"commands_pct"`
	SamplePct    float64 `csv:"sample_pct"`
	TrackingPct  float64 `csv:"tracking_pct"`
	TelemetryPct float64 `csv:"telemetry_pct"`
	DisplayPct   float64 `csv:"display_pct"`
}

// ToCSV flattens s for CSV output at tick.
func (s PerfStats) ToCSV(tick int64) PerfStatsCSV {
	return PerfStatsCSV{
		Tick:         tick,
		AvgTickUS:    s.AvgTick.Microseconds(),
		P50TickUS:    s.P50Tick.Microseconds(),
		P99TickUS:    s.P99Tick.Microseconds(),
		MaxTickUS:    s.MaxTick.Microseconds(),
		TicksPerSec:  s.TicksPerSecond,
		FPS:          s.FPS,
		CommandsPct:  s.Pct(PhaseCommands),
		SamplePct:    s.Pct(PhaseSample),
		TrackingPct:  s.Pct(PhaseTracking),
		TelemetryPct: s.Pct(PhaseTelemetry),
		DisplayPct:   s.Pct(PhaseDisplay),
	}
}
