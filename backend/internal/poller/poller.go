// Package poller drives the diagnostics reporter at a fixed rate.
package poller

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// Target is polled once per tick.
type Target interface {
	Publish(ctx context.Context) bool
}

// Poller invokes a Target on a fixed-rate ticker. Polls run one at a time;
// on-demand triggers arriving while a poll is queued are coalesced.
type Poller struct {
	l        *slog.Logger
	interval time.Duration
	trigger  chan struct{}

	polls     atomic.Uint64
	lastPoll  atomic.Int64
	lastState atomic.Bool
}

// New creates a poller ticking every interval.
func New(l *slog.Logger, interval time.Duration) *Poller {
	return &Poller{
		l:        l.With(slog.String("component", "poller")),
		interval: interval,
		trigger:  make(chan struct{}, 1),
	}
}

// Trigger requests a poll outside the regular schedule. It never blocks and
// reports whether the request was queued.
func (p *Poller) Trigger() bool {
	select {
	case p.trigger <- struct{}{}:
		return true
	default:
		return false
	}
}

// Run polls target immediately and then on every tick until ctx is cancelled.
func (p *Poller) Run(ctx context.Context, target Target) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.l.Info("poller started", slog.Duration("interval", p.interval))
	p.runOnce(ctx, target)

	for {
		select {
		case <-ctx.Done():
			p.l.Info("poller stopped", slog.Uint64("polls", p.polls.Load()))
			return nil
		case <-ticker.C:
			p.runOnce(ctx, target)
		case <-p.trigger:
			p.runOnce(ctx, target)
		}
	}
}

// Polls returns how many polls have completed.
func (p *Poller) Polls() uint64 {
	return p.polls.Load()
}

// LastPoll returns when the last poll completed and its result.
func (p *Poller) LastPoll() (time.Time, bool, bool) {
	ns := p.lastPoll.Load()
	if ns == 0 {
		return time.Time{}, false, false
	}

	return time.Unix(0, ns), p.lastState.Load(), true
}

func (p *Poller) runOnce(ctx context.Context, target Target) {
	ok := target.Publish(ctx)

	p.lastState.Store(ok)
	p.lastPoll.Store(time.Now().UnixNano())
	p.polls.Add(1)

	if !ok {
		p.l.Debug("poll reported errors")
	}
}
