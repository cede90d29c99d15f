package plugin

import (
	"context"

	"github.com/pthm-cable/goldhelper/telemetry"
	"github.com/pthm-cable/goldhelper/tracking"
)

// observe feeds one tracker step to the collector, metrics and outputs.
func (p *Plugin) observe(ctx context.Context, s tracking.Sample, res tracking.Result) {
	p.collector.Observe(s, res)
	p.metrics.Record(ctx, res)

	if res.Finalized != nil {
		if err := p.outputManager.WriteRun(*res.Finalized); err != nil {
			p.logger.Error("failed to write run", "error", err)
		}
	}

	p.flushTelemetry()
}

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (p *Plugin) flushTelemetry() {
	if !p.collector.ShouldFlush() {
		return
	}

	st := p.tracker.Snapshot()
	stats := p.collector.Flush(p.tick, st)
	perfStats := p.perfCollector.Stats()

	// Log stats if enabled (console output)
	if p.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := p.outputManager.WriteTelemetry(stats); err != nil {
		p.logger.Error("failed to write telemetry", "error", err)
	}
	if err := p.outputManager.WritePerf(perfStats, p.tick); err != nil {
		p.logger.Error("failed to write perf", "error", err)
	}

	for _, bm := range p.bookmarks.Check(stats) {
		if p.logStats {
			bm.LogBookmark()
		}
		if err := p.outputManager.WriteBookmark(bm); err != nil {
			p.logger.Error("failed to write bookmark", "error", err)
		}
		if p.snapshotDir != "" {
			p.saveSnapshot(&bm, st)
		}
	}
}

func (p *Plugin) saveSnapshot(bm *telemetry.Bookmark, st tracking.State) {
	snap := telemetry.NewSnapshot(p.tick, p.now(), st, bm)
	path, err := telemetry.SaveSnapshot(snap, p.snapshotDir)
	if err != nil {
		p.logger.Error("failed to save snapshot", "error", err)
		return
	}
	p.logger.Info("snapshot saved", "path", path, "bookmark", string(bm.Type))
}
