// Package plugin drives the tracker once per tick: it drains queued
// commands, pulls a sample, feeds the tracker, updates telemetry and the
// display cache, and publishes a read-only View for other goroutines.
package plugin

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/pthm-cable/goldhelper/config"
	"github.com/pthm-cable/goldhelper/display"
	"github.com/pthm-cable/goldhelper/history"
	"github.com/pthm-cable/goldhelper/sampler"
	"github.com/pthm-cable/goldhelper/telemetry"
	"github.com/pthm-cable/goldhelper/tracking"
)

const commandQueueSize = 16

// Options configures a Plugin.
type Options struct {
	Config *config.Config
	Source sampler.Source

	LogStats    bool
	OutputDir   string // overrides Config.Telemetry.OutputDir when set
	SnapshotDir string // bookmark snapshots; empty disables

	Meter  metric.Meter     // nil disables OTEL instruments
	Clock  func() time.Time // nil uses time.Now
	Logger *slog.Logger
}

// View is the state published after each tick. It is never mutated after
// publication.
type View struct {
	Tick      int64
	UpdatedAt time.Time
	Phase     tracking.Phase
	State     tracking.State
	Texts     display.Texts
	Bars      []display.Bar
}

// Plugin owns every piece of per-tick state. Update, Enqueue and Close run
// on the tick goroutine; View, ResetAll and ResetProfitabilityData may be
// called from anywhere.
type Plugin struct {
	cfg     *config.Config
	source  sampler.Source
	store   *history.Store
	tracker *tracking.Tracker
	cache   *display.Cache

	// Telemetry
	collector     *telemetry.Collector
	perfCollector *telemetry.PerfCollector
	bookmarks     *telemetry.BookmarkDetector
	outputManager *telemetry.OutputManager
	metrics       *telemetry.Metrics
	logStats      bool
	snapshotDir   string

	commands       chan request
	refreshDisplay bool
	view           atomic.Pointer[View]

	tick   int64
	now    func() time.Time
	logger *slog.Logger
}

// New wires a Plugin from configuration. The history file is loaded before
// the first tick.
func New(opts Options) (*Plugin, error) {
	if opts.Config == nil {
		return nil, errors.New("plugin: config is required")
	}
	if opts.Source == nil {
		return nil, errors.New("plugin: sample source is required")
	}
	cfg := opts.Config

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Clock
	if now == nil {
		now = time.Now
	}

	outputDir := cfg.Telemetry.OutputDir
	if opts.OutputDir != "" {
		outputDir = opts.OutputDir
	}
	om, err := telemetry.NewOutputManager(outputDir)
	if err != nil {
		return nil, err
	}
	if err := om.WriteConfig(cfg); err != nil {
		logger.Error("failed to write config snapshot", "error", err)
	}

	store := history.NewStore(history.Options{
		Path:    cfg.Tracker.HistoryPath,
		Max:     cfg.Tracker.MaxHistory,
		Persist: cfg.Tracker.Persist,
		Async:   cfg.Tracker.AsyncSave,
		Logger:  logger,
	})
	store.Load()

	p := &Plugin{
		cfg:    cfg,
		source: opts.Source,
		store:  store,
		tracker: tracking.New(tracking.Options{
			Store:         store,
			RecencyWindow: cfg.Tracker.RecencyWindow,
			TopK:          cfg.Tracker.TopK,
			Logger:        logger,
		}),
		cache:         display.NewCache(cfg.Derived.RefreshInterval, cfg.Display.GraphBars),
		collector:     telemetry.NewCollector(cfg.Derived.StatsWindow),
		perfCollector: telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		bookmarks:     telemetry.NewBookmarkDetector(10),
		outputManager: om,
		logStats:      opts.LogStats,
		snapshotDir:   opts.SnapshotDir,
		commands:      make(chan request, commandQueueSize),
		now:           now,
		logger:        logger,
	}
	if opts.Meter != nil {
		p.metrics = telemetry.NewMetrics(opts.Meter, func() tracking.State {
			return p.View().State
		})
	}

	// Publish the loaded history before the first tick
	t := now()
	st := p.tracker.Snapshot()
	p.cache.Refresh(t, st)
	p.publish(t, st)

	return p, nil
}

// Update runs one tick. It returns the source's error, io.EOF when a replay
// ends; commands queued before the tick are still applied.
func (p *Plugin) Update(ctx context.Context) error {
	p.perfCollector.StartTick()
	defer p.perfCollector.EndTick()

	p.perfCollector.StartPhase(telemetry.PhaseCommands)
	waiters := p.drainCommands(nil)

	p.perfCollector.StartPhase(telemetry.PhaseSample)
	s, err := p.source.Next()
	if err != nil {
		if len(waiters) > 0 {
			p.publishNow()
			release(waiters)
		}
		return err
	}
	now := p.now()

	p.perfCollector.StartPhase(telemetry.PhaseTracking)
	res := p.tracker.Process(s, now)
	p.tick++

	p.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	p.observe(ctx, s, res)

	p.perfCollector.StartPhase(telemetry.PhaseDisplay)
	st := p.tracker.Snapshot()
	if p.refreshDisplay || res.Finalized != nil {
		p.cache.Refresh(now, st)
		p.refreshDisplay = false
	} else {
		p.cache.Update(now, st)
	}
	p.publish(now, st)
	release(waiters)

	return nil
}

func (p *Plugin) publishNow() {
	now := p.now()
	st := p.tracker.Snapshot()
	p.cache.Refresh(now, st)
	p.refreshDisplay = false
	p.publish(now, st)
}

func (p *Plugin) publish(now time.Time, st tracking.State) {
	p.view.Store(&View{
		Tick:      p.tick,
		UpdatedAt: now,
		Phase:     p.tracker.Phase(),
		State:     st,
		Texts:     p.cache.Texts(),
		Bars:      p.cache.Bars(),
	})
}

func release(waiters []chan struct{}) {
	for _, w := range waiters {
		close(w)
	}
}

// View returns the most recently published state.
func (p *Plugin) View() View {
	v := p.view.Load()
	if v == nil {
		return View{}
	}
	return *v
}

// Tick returns the number of samples processed.
func (p *Plugin) Tick() int64 {
	return p.tick
}

// Perf returns timing statistics over the perf collector's window.
func (p *Plugin) Perf() telemetry.PerfStats {
	return p.perfCollector.Stats()
}

// RecordFrame records frame timing in graphical mode.
func (p *Plugin) RecordFrame() {
	p.perfCollector.RecordFrame()
}

// Close flushes history writes and closes the source and output files.
func (p *Plugin) Close() error {
	var errs []error
	if err := p.store.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := p.source.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := p.outputManager.Close(); err != nil {
		errs = append(errs, err)
	}
	p.logger.Info("plugin closed", "tick", p.tick, "state", p.tracker.Snapshot())
	return errors.Join(errs...)
}
