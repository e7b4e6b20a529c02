package source

import (
	"context"
	"fmt"

	"valutahub/config"
	"valutahub/internal/pair"
	"valutahub/logger"
)

const exchangeRateName = "ExchangeRate-API"

// exchangeRateResponse is the v6 latest-rates payload. The provider quotes
// "1 base unit = X target", the inverse of the canonical direction.
type exchangeRateResponse struct {
	Result          string             `json:"result"`
	ErrorType       string             `json:"error-type,omitempty"`
	BaseCode        string             `json:"base_code"`
	ConversionRates map[string]float64 `json:"conversion_rates"`
}

// ExchangeRate fetches fiat rates and inverts them so every pair reads
// "1 unit of OTHER = Y base units", matching the crypto adapter.
type ExchangeRate struct {
	client  *Client
	baseURL string
	apiKey  string
	base    string
	fiat    []string
	log     *logger.Entry
}

func NewExchangeRate(cfg *config.Config, client *Client, log *logger.Log) *ExchangeRate {
	return &ExchangeRate{
		client:  client,
		baseURL: cfg.Sources.ExchangeRate.URL,
		apiKey:  cfg.Sources.ExchangeRate.APIKey,
		base:    cfg.Currencies.Base,
		fiat:    cfg.Currencies.Fiat,
		log:     log.WithComponent("exchangerate-source"),
	}
}

func (s *ExchangeRate) Name() string { return exchangeRateName }

func (s *ExchangeRate) Fetch(ctx context.Context) (Result, error) {
	if len(s.fiat) == 0 {
		return Result{}, &ExternalServiceError{Service: exchangeRateName, Reason: "no fiat currencies configured"}
	}

	requestURL := fmt.Sprintf("%s/%s/latest/%s", s.baseURL, s.apiKey, s.base)

	var body exchangeRateResponse
	meta, err := s.client.GetJSON(ctx, exchangeRateName, requestURL, &body)
	if err != nil {
		return Result{}, err
	}
	if body.Result != "success" {
		reason := body.ErrorType
		if reason == "" {
			reason = "provider reported failure"
		}
		return Result{}, &ExternalServiceError{Service: exchangeRateName, Reason: reason}
	}
	if len(body.ConversionRates) == 0 {
		return Result{}, &ExternalServiceError{Service: exchangeRateName, Reason: "empty conversion_rates"}
	}

	result := Result{
		Pairs: make(map[string]float64, len(s.fiat)),
		Meta:  meta,
	}
	for _, code := range s.fiat {
		perBase, ok := body.ConversionRates[code]
		if !ok {
			return Result{}, &ExternalServiceError{
				Service: exchangeRateName,
				Reason:  fmt.Sprintf("missing conversion rate for %q", code),
			}
		}
		if perBase <= 0 {
			return Result{}, &ExternalServiceError{
				Service: exchangeRateName,
				Reason:  fmt.Sprintf("invalid conversion rate %v for %q", perBase, code),
			}
		}
		result.Pairs[pair.Key(code, s.base)] = 1 / perBase
	}

	s.log.WithFields(logger.Fields{
		"pairs":      len(result.Pairs),
		"request_ms": meta.RequestMs,
	}).Debug("fiat rates fetched")
	return result, nil
}
