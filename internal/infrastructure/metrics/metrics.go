package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the wallet service.
type Metrics struct {
	// Ledger metrics
	LedgerOperations  *prometheus.CounterVec
	LedgerErrors      *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	ConversionAmount  prometheus.Histogram

	// FX rate metrics
	RateLookups          *prometheus.CounterVec
	RateFetchErrors      *prometheus.CounterVec
	RateCacheErrors      prometheus.Counter
	RefreshSweeps        prometheus.Counter
	RefreshSweepsSkipped prometheus.Counter
	RefreshPairFailures  prometheus.Counter
}

// New creates all metrics on the given registerer. Tests pass a fresh
// registry so repeated construction never collides.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		LedgerOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fxwallet_ledger_operations_total",
				Help: "Total completed ledger operations by journal entry type",
			},
			[]string{"type"},
		),
		LedgerErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fxwallet_ledger_errors_total",
				Help: "Total failed ledger operations by error type",
			},
			[]string{"error_type"},
		),
		OperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fxwallet_ledger_operation_duration_seconds",
				Help:    "Duration of ledger operations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"type"},
		),
		ConversionAmount: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "fxwallet_conversion_amount",
			Help:    "Source amounts of conversions and trades",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
		}),

		RateLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fxwallet_rate_lookups_total",
				Help: "Total rate resolutions by source tier",
			},
			[]string{"source"},
		),
		RateFetchErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fxwallet_rate_fetch_errors_total",
				Help: "Total live rate fetch failures by provider",
			},
			[]string{"provider"},
		),
		RateCacheErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "fxwallet_rate_cache_errors_total",
			Help: "Total rate cache read/write failures",
		}),
		RefreshSweeps: factory.NewCounter(prometheus.CounterOpts{
			Name: "fxwallet_rate_refresh_sweeps_total",
			Help: "Total completed rate refresh sweeps",
		}),
		RefreshSweepsSkipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "fxwallet_rate_refresh_sweeps_skipped_total",
			Help: "Total refresh ticks skipped because a sweep was still running",
		}),
		RefreshPairFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "fxwallet_rate_refresh_pair_failures_total",
			Help: "Total per-pair failures during refresh sweeps",
		}),
	}
}
