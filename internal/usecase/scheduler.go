package usecase

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/fxwallet/internal/infrastructure/metrics"
)

// RateRefreshScheduler periodically sweeps the supported currency pairs
// with live fetches so the persisted fallback stays fresh through provider
// outages. A sweep that is still running when the next tick fires is
// skipped, never overlapped.
type RateRefreshScheduler struct {
	rates    *RateUseCase
	metrics  *metrics.Metrics
	logger   zerolog.Logger
	interval time.Duration
	running  atomic.Bool
	stop     chan struct{}
	done     sync.WaitGroup
}

// NewRateRefreshScheduler creates a new scheduler.
func NewRateRefreshScheduler(rates *RateUseCase, m *metrics.Metrics, logger zerolog.Logger, interval time.Duration) *RateRefreshScheduler {
	return &RateRefreshScheduler{
		rates:    rates,
		metrics:  m,
		logger:   logger,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

// Start launches the refresh loop. It runs one sweep immediately so the
// fallback store is populated on boot, then sweeps every interval until
// Stop is called or ctx is cancelled.
func (s *RateRefreshScheduler) Start(ctx context.Context) {
	s.done.Add(1)

	go func() {
		defer s.done.Done()

		s.sweep(ctx)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.sweep(ctx)
			case <-s.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop terminates the refresh loop and waits for an in-flight sweep.
func (s *RateRefreshScheduler) Stop() {
	close(s.stop)
	s.done.Wait()
}

func (s *RateRefreshScheduler) sweep(ctx context.Context) {
	if !s.running.CompareAndSwap(false, true) {
		s.metrics.RefreshSweepsSkipped.Inc()
		s.logger.Warn().Msg("rate refresh sweep still running, skipping tick")

		return
	}
	defer s.running.Store(false)

	start := time.Now()
	s.logger.Debug().Msg("starting rate refresh sweep")

	s.rates.RefreshAll(ctx)

	s.metrics.RefreshSweeps.Inc()
	s.logger.Info().Dur("duration", time.Since(start)).Msg("rate refresh sweep completed")
}
