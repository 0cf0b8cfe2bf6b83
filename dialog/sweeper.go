package dialog

import (
	"context"
	"time"

	"log/slog"

	"github.com/skillsdiff/supportbot/core/logger"
)

// OnStale is invoked with the dialogs removed by a sweep pass. It runs on the
// sweeper goroutine, so implementations must not block for long.
type OnStale func(removed []Dialog)

// Sweeper periodically evicts dialogs that exceeded the staleness timeout.
type Sweeper struct {
	manager  *Manager
	timeout  time.Duration
	interval time.Duration
	onStale  OnStale
}

// NewSweeper builds a sweeper over the given registry. Zero or negative
// values fall back to the 30m/5m defaults.
func NewSweeper(m *Manager, timeout, interval time.Duration, onStale OnStale) *Sweeper {
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Sweeper{
		manager:  m,
		timeout:  timeout,
		interval: interval,
		onStale:  onStale,
	}
}

// Run blocks until ctx is cancelled, sweeping the registry every interval.
func (s *Sweeper) Run(ctx context.Context) {
	logger.Dialog.LogAttrs(ctx, slog.LevelInfo, "sweeper.start",
		slog.Duration("timeout", s.timeout),
		slog.Duration("interval", s.interval),
	)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Dialog.LogAttrs(context.Background(), slog.LevelInfo, "sweeper.stop")
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Sweep runs one eviction pass and returns the number of removed dialogs.
func (s *Sweeper) Sweep() int {
	removed := s.manager.CleanupStale(s.timeout)
	if len(removed) > 0 && s.onStale != nil {
		s.onStale(removed)
	}
	return len(removed)
}
