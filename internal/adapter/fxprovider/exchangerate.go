// Package fxprovider contains clients for external pricing sources.
package fxprovider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/fxwallet/internal/domain"
)

const providerName = "exchangerate-api"

// ExchangeRateAPI fetches live quotes from exchangerate-api.com. The API key
// is part of the URL path, so it never appears in query strings or logs.
type ExchangeRateAPI struct {
	client *http.Client
	apiURL string
	apiKey string
}

// NewExchangeRateAPI creates a new ExchangeRateAPI client.
func NewExchangeRateAPI(apiURL, apiKey string, timeout time.Duration) *ExchangeRateAPI {
	return &ExchangeRateAPI{
		client: &http.Client{Timeout: timeout},
		apiURL: apiURL,
		apiKey: apiKey,
	}
}

// Name identifies the provider in samples and metrics.
func (p *ExchangeRateAPI) Name() string {
	return providerName
}

type pairResponse struct {
	Result             string          `json:"result"`
	ErrorType          string          `json:"error-type"`
	BaseCode           string          `json:"base_code"`
	TargetCode         string          `json:"target_code"`
	ConversionRate     decimal.Decimal `json:"conversion_rate"`
	TimeLastUpdateUTC  string          `json:"time_last_update_utc"`
	TimeNextUpdateUTC  string          `json:"time_next_update_utc"`
	TimeLastUpdateUnix int64           `json:"time_last_update_unix"`
}

// FetchRate fetches one live quote for a currency pair.
func (p *ExchangeRateAPI) FetchRate(ctx context.Context, base, target string) (*domain.RateSample, error) {
	url := fmt.Sprintf("%s/%s/pair/%s/%s", p.apiURL, p.apiKey, base, target)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching rate %s/%s: %w", base, target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching rate %s/%s: unexpected status %d", base, target, resp.StatusCode)
	}

	var body pairResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding rate %s/%s: %w", base, target, err)
	}

	if body.Result != "success" {
		return nil, fmt.Errorf("fetching rate %s/%s: provider returned %q (%s)", base, target, body.Result, body.ErrorType)
	}

	return &domain.RateSample{
		BaseCurrency:   base,
		TargetCurrency: target,
		Rate:           body.ConversionRate,
		Source:         providerName,
		CreatedAt:      time.Now().UTC(),
		Metadata: map[string]any{
			"time_last_update_utc": body.TimeLastUpdateUTC,
			"time_next_update_utc": body.TimeNextUpdateUTC,
		},
	}, nil
}
