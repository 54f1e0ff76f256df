package client

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// HealthChecker is the probe the oracle runs, normally the server's
// health endpoint.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Oracle tracks whether the server is reachable. A state flip needs
// two consecutive probes agreeing, so one dropped packet on a flaky
// field link does not flap the auto-sync loop.
type Oracle struct {
	checker  HealthChecker
	log      *slog.Logger
	interval time.Duration

	mu        sync.Mutex
	online    bool
	streak    int
	lastSeen  bool
	listeners []func(online bool)
}

func NewOracle(checker HealthChecker, log *slog.Logger, interval time.Duration) *Oracle {
	return &Oracle{
		checker:  checker,
		log:      log,
		interval: interval,
	}
}

// Online reports the current debounced state.
func (o *Oracle) Online() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.online
}

// OnChange registers a callback invoked on every debounced state flip.
// Callbacks run on the probing goroutine and must not block.
func (o *Oracle) OnChange(fn func(online bool)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.listeners = append(o.listeners, fn)
}

// Probe runs a single health check and feeds the result into the
// debounce. Returns the state after the probe.
func (o *Oracle) Probe(ctx context.Context) bool {
	return o.observe(o.checker.HealthCheck(ctx) == nil)
}

// Run probes on the configured interval until the context is
// cancelled. The first probe fires immediately.
func (o *Oracle) Run(ctx context.Context) {
	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()

	o.Probe(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.Probe(ctx)
		}
	}
}

func (o *Oracle) observe(up bool) bool {
	o.mu.Lock()

	if up == o.lastSeen {
		o.streak++
	} else {
		o.lastSeen = up
		o.streak = 1
	}

	var flipped []func(online bool)
	if up != o.online && o.streak >= 2 {
		o.online = up
		flipped = append(flipped, o.listeners...)
		o.log.Info("connectivity changed", "online", up)
	}
	state := o.online
	o.mu.Unlock()

	for _, fn := range flipped {
		fn(state)
	}
	return state
}
