package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/fxwallet/internal/domain"
	"github.com/iho/fxwallet/internal/infrastructure/metrics"
)

type stubRateCache struct{}

func (stubRateCache) GetRate(context.Context, string, string) (decimal.Decimal, bool, error) {
	return decimal.Zero, false, nil
}

func (stubRateCache) SetRate(context.Context, string, string, decimal.Decimal, time.Duration) error {
	return nil
}

type stubRateProvider struct {
	release chan struct{}
	mu      sync.Mutex
	fetches int
}

func (p *stubRateProvider) Name() string { return "stub" }

func (p *stubRateProvider) FetchRate(_ context.Context, base, target string) (*domain.RateSample, error) {
	p.mu.Lock()
	p.fetches++
	p.mu.Unlock()

	if p.release != nil {
		<-p.release
	}

	return &domain.RateSample{Rate: decimal.NewFromInt(2), Source: "stub"}, nil
}

func (p *stubRateProvider) fetchCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.fetches
}

type stubSampleRepo struct{}

func (stubSampleRepo) Insert(context.Context, *domain.RateSample) error { return nil }

func (stubSampleRepo) GetLatest(context.Context, string, string) (*domain.RateSample, error) {
	return nil, domain.ErrRateUnavailable
}

func (stubSampleRepo) ListByPair(context.Context, string, string, int) ([]*domain.RateSample, error) {
	return nil, nil
}

type stubIDGen struct{}

func (stubIDGen) Generate() string { return "stub-id" }

func newSchedulerFixture(provider *stubRateProvider, interval time.Duration) (*RateRefreshScheduler, *metrics.Metrics) {
	m := metrics.New(prometheus.NewRegistry())
	rates := NewRateUseCase(
		stubRateCache{},
		provider,
		stubSampleRepo{},
		stubIDGen{},
		m,
		zerolog.Nop(),
		time.Minute,
		time.Second,
		[]string{"NGN", "USD"},
	)

	return NewRateRefreshScheduler(rates, m, zerolog.Nop(), interval), m
}

func TestRateRefreshScheduler_SweepsOnStart(t *testing.T) {
	provider := &stubRateProvider{}
	s, m := newSchedulerFixture(provider, time.Hour)

	s.Start(context.Background())
	s.Stop()

	// two supported currencies: one ordered pair each way
	if got := provider.fetchCount(); got != 2 {
		t.Errorf("expected 2 fetches from the boot sweep, got %d", got)
	}

	if got := testutil.ToFloat64(m.RefreshSweeps); got != 1 {
		t.Errorf("expected 1 completed sweep, got %v", got)
	}
}

func TestRateRefreshScheduler_ConcurrentSweepIsSkipped(t *testing.T) {
	provider := &stubRateProvider{release: make(chan struct{})}
	s, m := newSchedulerFixture(provider, time.Hour)

	var wg sync.WaitGroup

	wg.Add(1)

	go func() {
		defer wg.Done()
		s.sweep(context.Background())
	}()

	// wait for the first sweep to be mid-fetch, then race a second one
	for provider.fetchCount() == 0 {
		time.Sleep(time.Millisecond)
	}

	s.sweep(context.Background())

	if got := testutil.ToFloat64(m.RefreshSweepsSkipped); got != 1 {
		t.Errorf("expected the overlapping sweep to be skipped, got %v skips", got)
	}

	close(provider.release)
	wg.Wait()

	if got := testutil.ToFloat64(m.RefreshSweeps); got != 1 {
		t.Errorf("expected exactly 1 completed sweep, got %v", got)
	}
}

func TestRateRefreshScheduler_StopsOnContextCancel(t *testing.T) {
	provider := &stubRateProvider{}
	s, _ := newSchedulerFixture(provider, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)

	cancel()
	s.done.Wait()
}
