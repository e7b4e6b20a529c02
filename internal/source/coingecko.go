package source

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"valutahub/config"
	"valutahub/internal/pair"
	"valutahub/logger"
)

const coinGeckoName = "CoinGecko"

// CoinGecko fetches crypto rates from the simple-price endpoint. Rates come
// back keyed by the provider's own asset ids and are re-keyed to canonical
// {CRYPTO}_{BASE} pairs.
type CoinGecko struct {
	client  *Client
	baseURL string
	apiKey  string
	base    string
	ids     map[string]string
	log     *logger.Entry
}

func NewCoinGecko(cfg *config.Config, client *Client, log *logger.Log) *CoinGecko {
	ids := make(map[string]string, len(cfg.Currencies.Crypto))
	for _, symbol := range cfg.Currencies.Crypto {
		ids[symbol] = cfg.Currencies.CryptoIDs[symbol]
	}
	return &CoinGecko{
		client:  client,
		baseURL: cfg.Sources.CoinGecko.URL,
		apiKey:  cfg.Sources.CoinGecko.APIKey,
		base:    cfg.Currencies.Base,
		ids:     ids,
		log:     log.WithComponent("coingecko-source"),
	}
}

func (s *CoinGecko) Name() string { return coinGeckoName }

func (s *CoinGecko) Fetch(ctx context.Context) (Result, error) {
	if len(s.ids) == 0 {
		return Result{}, &ExternalServiceError{Service: coinGeckoName, Reason: "no crypto currencies configured"}
	}

	symbols := make([]string, 0, len(s.ids))
	providerIDs := make([]string, 0, len(s.ids))
	for symbol := range s.ids {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	for _, symbol := range symbols {
		providerIDs = append(providerIDs, s.ids[symbol])
	}

	query := url.Values{}
	query.Set("vs_currencies", strings.ToLower(s.base))
	query.Set("ids", strings.Join(providerIDs, ","))
	if s.apiKey != "" {
		query.Set("x_cg_demo_api_key", s.apiKey)
	}
	requestURL := s.baseURL + "?" + query.Encode()

	var body map[string]map[string]float64
	meta, err := s.client.GetJSON(ctx, coinGeckoName, requestURL, &body)
	if err != nil {
		return Result{}, err
	}
	if len(body) == 0 {
		return Result{}, &ExternalServiceError{Service: coinGeckoName, Reason: "empty response body"}
	}

	vs := strings.ToLower(s.base)
	result := Result{
		Pairs:  make(map[string]float64, len(symbols)),
		RawIDs: make(map[string]string, len(symbols)),
		Meta:   meta,
	}
	for _, symbol := range symbols {
		id := s.ids[symbol]
		quote, ok := body[id]
		if !ok {
			return Result{}, &ExternalServiceError{
				Service: coinGeckoName,
				Reason:  fmt.Sprintf("missing asset %q in response", id),
			}
		}
		rate, ok := quote[vs]
		if !ok || rate <= 0 {
			return Result{}, &ExternalServiceError{
				Service: coinGeckoName,
				Reason:  fmt.Sprintf("missing or invalid %s rate for %q", s.base, id),
			}
		}
		key := pair.Key(symbol, s.base)
		result.Pairs[key] = rate
		result.RawIDs[key] = id
	}

	s.log.WithFields(logger.Fields{
		"pairs":      len(result.Pairs),
		"request_ms": meta.RequestMs,
	}).Debug("crypto rates fetched")
	return result, nil
}
