package db

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Pinger is anything whose reachability can be probed.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Monitor tracks whether the storage backend answered its last ping.
type Monitor struct {
	healthy atomic.Bool
}

// Healthy reports the result of the most recent probe.
func (m *Monitor) Healthy() bool {
	return m.healthy.Load()
}

// StartHealthMonitor probes p immediately and then every interval until ctx is done.
// Transitions between reachable and unreachable are logged.
func StartHealthMonitor(
	ctx context.Context,
	p Pinger,
	interval time.Duration,
	log *zap.Logger,
) *Monitor {
	m := &Monitor{}
	m.healthy.Store(probe(ctx, p, interval) == nil)

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				err := probe(ctx, p, interval)
				was := m.healthy.Swap(err == nil)
				switch {
				case err != nil && was:
					log.Error("storage backend unreachable", zap.Error(err))
				case err == nil && !was:
					log.Info("storage backend reachable again")
				}
			}
		}
	}()
	return m
}

func probe(ctx context.Context, p Pinger, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.Ping(ctx)
}
