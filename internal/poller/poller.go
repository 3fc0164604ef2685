package poller

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

const (
	// DefaultInterval is the pause between store pings.
	DefaultInterval = 30 * time.Second
	pingTimeout     = 2 * time.Second
)

// Pinger is the store whose reachability is tracked.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StatusSink receives the outcome of every ping.
type StatusSink interface {
	SetStoreUp(up bool)
}

// Poller pings the device store in the background and reports reachability
// changes. It never blocks request handling.
type Poller struct {
	store     Pinger
	sink      StatusSink
	interval  time.Duration
	refreshCh chan struct{}
	logger    *slog.Logger
	up        atomic.Bool
	checked   atomic.Bool
}

// New creates a poller. sink may be nil; interval <= 0 selects DefaultInterval.
func New(store Pinger, sink StatusSink, interval time.Duration, logger *slog.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{store: store, sink: sink, interval: interval, refreshCh: make(chan struct{}, 1), logger: logger}
}

// TriggerRefresh requests an immediate ping without waiting for the interval.
func (p *Poller) TriggerRefresh() {
	select {
	case p.refreshCh <- struct{}{}:
	default:
	}
}

// Up reports the result of the latest ping.
func (p *Poller) Up() bool {
	return p.up.Load()
}

// Run pings once immediately, then every interval until ctx is done.
func (p *Poller) Run(ctx context.Context) {
	p.PollOnce(ctx)
	for {
		timer := time.NewTimer(p.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-p.refreshCh:
			timer.Stop()
		case <-timer.C:
		}
		p.PollOnce(ctx)
	}
}

// PollOnce pings the store and records the result.
func (p *Poller) PollOnce(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	err := p.store.Ping(pingCtx)
	cancel()
	if ctx.Err() != nil {
		return
	}

	up := err == nil
	previous := p.up.Swap(up)
	firstCheck := !p.checked.Swap(true)
	if p.sink != nil {
		p.sink.SetStoreUp(up)
	}
	switch {
	case !up && (previous || firstCheck):
		p.logger.Error("device store unreachable", "err", err)
	case up && !previous && !firstCheck:
		p.logger.Info("device store reachable again")
	}
}
