package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// OverdueMarker flips lapsed sent invoices to overdue and reports how many
// rows changed. Implemented by the invoice repository.
type OverdueMarker interface {
	MarkOverdue(ctx context.Context, now time.Time) (int64, error)
}

// OverdueSweeperConfig holds configuration for the overdue sweep
type OverdueSweeperConfig struct {
	// Interval is how often the sweep runs
	Interval time.Duration
}

// DefaultOverdueSweeperConfig returns default sweep configuration
func DefaultOverdueSweeperConfig() OverdueSweeperConfig {
	return OverdueSweeperConfig{
		Interval: time.Hour,
	}
}

// OverdueSweeper periodically reconciles invoice statuses with the clock:
// a sent invoice whose due date has passed becomes overdue. The sweep is a
// bulk UPDATE, so missing a tick never loses work; the next run catches up.
type OverdueSweeper struct {
	config OverdueSweeperConfig
	marker OverdueMarker
	logger *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewOverdueSweeper creates a new overdue sweeper
func NewOverdueSweeper(config OverdueSweeperConfig, marker OverdueMarker, logger *zap.Logger) *OverdueSweeper {
	return &OverdueSweeper{
		config: config,
		marker: marker,
		logger: logger,
	}
}

// Start launches the sweep loop. Calling Start on a running sweeper is a no-op.
func (s *OverdueSweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("Overdue sweeper started",
		zap.Duration("interval", s.config.Interval),
	)

	return nil
}

// Stop stops the sweep loop, waiting for an in-flight sweep to finish
func (s *OverdueSweeper) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Overdue sweeper stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// runLoop sweeps once at startup, then on every tick
func (s *OverdueSweeper) runLoop(ctx context.Context) {
	defer s.wg.Done()

	s.Sweep(ctx)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs a single reconciliation pass
func (s *OverdueSweeper) Sweep(ctx context.Context) {
	affected, err := s.marker.MarkOverdue(ctx, time.Now())
	if err != nil {
		s.logger.Error("Overdue sweep failed", zap.Error(err))
		return
	}

	if affected > 0 {
		s.logger.Info("Marked invoices overdue", zap.Int64("count", affected))
	}
}
