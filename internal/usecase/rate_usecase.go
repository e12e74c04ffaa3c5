package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/fxwallet/internal/domain"
	"github.com/iho/fxwallet/internal/infrastructure/metrics"
)

// Historical query bounds.
const (
	defaultHistoryLimit = 100
	maxHistoryLimit     = 500
)

// RateUseCase resolves exchange rates through the fallback chain:
// cache, then live provider, then last persisted sample. Every freshly
// observed rate is written through to both the cache and the store.
type RateUseCase struct {
	cache           RateCache
	provider        RateProvider
	sampleRepo      RateSampleRepository
	idGen           IDGenerator
	metrics         *metrics.Metrics
	logger          zerolog.Logger
	cacheTTL        time.Duration
	providerTimeout time.Duration
	supported       []string
}

// NewRateUseCase creates a new RateUseCase.
func NewRateUseCase(
	cache RateCache,
	provider RateProvider,
	sampleRepo RateSampleRepository,
	idGen IDGenerator,
	m *metrics.Metrics,
	logger zerolog.Logger,
	cacheTTL time.Duration,
	providerTimeout time.Duration,
	supportedCurrencies []string,
) *RateUseCase {
	return &RateUseCase{
		cache:           cache,
		provider:        provider,
		sampleRepo:      sampleRepo,
		idGen:           idGen,
		metrics:         m,
		logger:          logger,
		cacheTTL:        cacheTTL,
		providerTimeout: providerTimeout,
		supported:       supportedCurrencies,
	}
}

// GetRate resolves the rate for one currency pair. Same-currency pairs
// short-circuit to a synthetic rate of 1 without touching cache, provider,
// or store.
func (uc *RateUseCase) GetRate(ctx context.Context, base, target string) (*domain.RateSample, error) {
	base = domain.NormalizeCurrency(base)
	target = domain.NormalizeCurrency(target)

	if err := domain.ValidateCurrency(base); err != nil {
		return nil, err
	}

	if err := domain.ValidateCurrency(target); err != nil {
		return nil, err
	}

	if base == target {
		uc.metrics.RateLookups.WithLabelValues(domain.RateSourceIdentity).Inc()
		return domain.IdentityRate(base), nil
	}

	rate, ok, err := uc.cache.GetRate(ctx, base, target)
	if err != nil {
		// Cache loss only costs latency; the chain continues.
		uc.metrics.RateCacheErrors.Inc()
		uc.logger.Warn().Err(err).Str("base", base).Str("target", target).Msg("rate cache read failed")
	} else if ok {
		uc.metrics.RateLookups.WithLabelValues(domain.RateSourceCache).Inc()

		return &domain.RateSample{
			BaseCurrency:   base,
			TargetCurrency: target,
			Rate:           rate,
			Source:         domain.RateSourceCache,
			CreatedAt:      time.Now().UTC(),
		}, nil
	}

	sample, err := uc.fetchAndStore(ctx, base, target)
	if err == nil {
		uc.metrics.RateLookups.WithLabelValues(sample.Source).Inc()
		return sample, nil
	}

	uc.logger.Warn().Err(err).Str("base", base).Str("target", target).Msg("live rate fetch failed, falling back to last persisted sample")

	last, lastErr := uc.sampleRepo.GetLatest(ctx, base, target)
	if lastErr != nil {
		if errors.Is(lastErr, domain.ErrRateUnavailable) {
			return nil, fmt.Errorf("%w: %s/%s", domain.ErrRateUnavailable, base, target)
		}

		return nil, lastErr
	}

	last.Source = domain.RateSourceFallback
	uc.metrics.RateLookups.WithLabelValues(domain.RateSourceFallback).Inc()

	return last, nil
}

// RatesView aggregates many target rates against one base.
type RatesView struct {
	Timestamp time.Time
	Rates     map[string]decimal.Decimal
	Base      string
}

// GetManyRates resolves the base against each target concurrently. Targets
// that fail are omitted from the result rather than failing the whole call;
// the identity target is skipped.
func (uc *RateUseCase) GetManyRates(ctx context.Context, base string, targets []string) (*RatesView, error) {
	base = domain.NormalizeCurrency(base)
	if err := domain.ValidateCurrency(base); err != nil {
		return nil, err
	}

	if len(targets) == 0 {
		targets = uc.supported
	}

	view := &RatesView{
		Base:      base,
		Rates:     make(map[string]decimal.Decimal, len(targets)),
		Timestamp: time.Now().UTC(),
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	for _, target := range targets {
		target := domain.NormalizeCurrency(target)
		if target == base {
			continue
		}

		wg.Add(1)

		go func() {
			defer wg.Done()

			sample, err := uc.GetRate(ctx, base, target)
			if err != nil {
				uc.logger.Debug().Err(err).Str("base", base).Str("target", target).Msg("rate omitted from aggregate")
				return
			}

			mu.Lock()
			view.Rates[target] = sample.Rate
			mu.Unlock()
		}()
	}

	wg.Wait()

	return view, nil
}

// GetHistoricalRates returns persisted samples for a pair, newest first.
func (uc *RateUseCase) GetHistoricalRates(ctx context.Context, base, target string, limit int) ([]*domain.RateSample, error) {
	base = domain.NormalizeCurrency(base)
	target = domain.NormalizeCurrency(target)

	if err := domain.ValidateCurrency(base); err != nil {
		return nil, err
	}

	if err := domain.ValidateCurrency(target); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	return uc.sampleRepo.ListByPair(ctx, base, target, limit)
}

// RefreshAll sweeps the ordered cross-product of the supported set with
// live fetches, bypassing the cache. A failing pair is logged and skipped;
// the sweep always visits every pair.
func (uc *RateUseCase) RefreshAll(ctx context.Context) {
	for _, base := range uc.supported {
		for _, target := range uc.supported {
			if base == target {
				continue
			}

			if _, err := uc.fetchAndStore(ctx, base, target); err != nil {
				uc.metrics.RefreshPairFailures.Inc()
				uc.logger.Warn().Err(err).Str("base", base).Str("target", target).Msg("rate refresh failed for pair")
			}
		}
	}
}

// fetchAndStore asks the provider for a live quote under a bounded timeout,
// then writes the sample through to the cache and the store.
func (uc *RateUseCase) fetchAndStore(ctx context.Context, base, target string) (*domain.RateSample, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, uc.providerTimeout)
	defer cancel()

	sample, err := uc.provider.FetchRate(fetchCtx, base, target)
	if err != nil {
		uc.metrics.RateFetchErrors.WithLabelValues(uc.provider.Name()).Inc()
		return nil, err
	}

	sample.ID = uc.idGen.Generate()
	sample.BaseCurrency = base
	sample.TargetCurrency = target
	if sample.CreatedAt.IsZero() {
		sample.CreatedAt = time.Now().UTC()
	}

	if err := sample.Validate(); err != nil {
		return nil, fmt.Errorf("provider %s returned invalid sample: %w", uc.provider.Name(), err)
	}

	if err := uc.cache.SetRate(ctx, base, target, sample.Rate, uc.cacheTTL); err != nil {
		uc.metrics.RateCacheErrors.Inc()
		uc.logger.Warn().Err(err).Str("base", base).Str("target", target).Msg("rate cache write failed")
	}

	if err := uc.sampleRepo.Insert(ctx, sample); err != nil {
		return nil, err
	}

	return sample, nil
}
