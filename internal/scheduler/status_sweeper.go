package scheduler

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/arvai/internal/logger"
)

// Sweeper drops stale entries and reports how many went.
type Sweeper interface {
	Sweep() int
	Len() int
}

// StatusSweeper periodically purges stale bookmark status entries so a
// long-running agent does not keep every URL it ever saw.
type StatusSweeper struct {
	cache    Sweeper
	logger   logger.Logger
	interval time.Duration
	stopCh   chan struct{}
}

// NewStatusSweeper creates a sweeper. An interval <= 0 disables it.
func NewStatusSweeper(cache Sweeper, log logger.Logger, interval time.Duration) *StatusSweeper {
	return &StatusSweeper{
		cache:    cache,
		logger:   log,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic sweep. It returns immediately.
func (s *StatusSweeper) Start(ctx context.Context) {
	if s.interval <= 0 {
		s.logger.Debug("status sweeper disabled")
		return
	}

	ticker := time.NewTicker(s.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.Collect()
			case <-s.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the sweeper
func (s *StatusSweeper) Stop() {
	close(s.stopCh)
}

// Collect runs one sweep.
func (s *StatusSweeper) Collect() int {
	removed := s.cache.Sweep()
	if removed > 0 {
		s.logger.Debug("status cache swept",
			logger.Int("removed", removed),
			logger.Int("remaining", s.cache.Len()))
	}
	return removed
}
