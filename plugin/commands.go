package plugin

import (
	"context"
	"fmt"

	"github.com/pthm-cable/goldhelper/tracking"
)

// Command is a control-surface request applied at the start of a tick.
type Command uint8

const (
	CommandResetAll Command = iota + 1
	CommandResetProfitability
)

func (c Command) String() string {
	switch c {
	case CommandResetAll:
		return "reset_all"
	case CommandResetProfitability:
		return "reset_profitability"
	default:
		return fmt.Sprintf("command(%d)", uint8(c))
	}
}

func (c Command) apply(target tracking.Commands) {
	switch c {
	case CommandResetAll:
		target.ResetAll()
	case CommandResetProfitability:
		target.ResetProfitabilityData()
	}
}

type request struct {
	cmd  Command
	done chan struct{} // closed once the result is visible in View; nil when nobody waits
}

// Enqueue queues cmd without waiting. It is safe to call from the tick
// goroutine itself, e.g. from a UI button. It reports false when the queue
// is full.
func (p *Plugin) Enqueue(cmd Command) bool {
	select {
	case p.commands <- request{cmd: cmd}:
		return true
	default:
		p.logger.Warn("command queue full", "command", cmd.String())
		return false
	}
}

// ResetAll queues a full reset and waits until a published View reflects
// it. It must not be called from the tick goroutine.
func (p *Plugin) ResetAll(ctx context.Context) error {
	return p.do(ctx, CommandResetAll)
}

// ResetProfitabilityData queues a history reset and waits until a published
// View reflects it. It must not be called from the tick goroutine.
func (p *Plugin) ResetProfitabilityData(ctx context.Context) error {
	return p.do(ctx, CommandResetProfitability)
}

func (p *Plugin) do(ctx context.Context, cmd Command) error {
	req := request{cmd: cmd, done: make(chan struct{})}
	select {
	case p.commands <- req:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-req.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// drainCommands applies every queued command and returns the waiters to
// release after the next publish.
func (p *Plugin) drainCommands(waiters []chan struct{}) []chan struct{} {
	for {
		select {
		case req := <-p.commands:
			req.cmd.apply(p.tracker)
			p.afterReset(req.cmd)
			p.logger.Info("command applied", "command", req.cmd.String(), "tick", p.tick)
			if req.done != nil {
				waiters = append(waiters, req.done)
			}
		default:
			return waiters
		}
	}
}

// afterReset clears derived state that would otherwise describe the
// discarded session.
func (p *Plugin) afterReset(cmd Command) {
	if cmd == CommandResetAll {
		p.collector.Reset()
		p.bookmarks.Reset()
	}
	p.refreshDisplay = true
}
