// Package updater drives one refresh cycle: fetch every configured source,
// tolerate individual failures, append observations to the history log and
// merge the survivors into the cache.
package updater

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"valutahub/internal/pair"
	"valutahub/internal/source"
	"valutahub/internal/store"
	"valutahub/logger"
)

// Stats summarizes one refresh cycle. Created fresh per cycle and returned
// to the caller, never persisted.
type Stats struct {
	CycleID     string
	CryptoCount int
	FiatCount   int
	TotalCount  int
	Success     int
	Failed      int
	Errors      []string
}

// Updater coordinates refresh cycles across all configured sources.
type Updater struct {
	sources []source.Source
	cache   *store.CacheStore
	history *store.HistoryStore
	crypto  map[string]bool
	log     *logger.Entry
}

func New(sources []source.Source, cache *store.CacheStore, history *store.HistoryStore, cryptoCurrencies []string, log *logger.Log) *Updater {
	crypto := make(map[string]bool, len(cryptoCurrencies))
	for _, code := range cryptoCurrencies {
		crypto[code] = true
	}
	return &Updater{
		sources: sources,
		cache:   cache,
		history: history,
		crypto:  crypto,
		log:     log.WithComponent("updater"),
	}
}

// Run executes one refresh cycle. A failing source is recorded in the stats
// and the cycle continues; the cycle itself fails only when every source
// failed, or when storage breaks mid-merge.
func (u *Updater) Run(ctx context.Context) (*Stats, error) {
	start := time.Now()
	observedAt := start.UTC()
	stats := &Stats{CycleID: uuid.NewString()}
	log := u.log.WithFields(logger.Fields{"cycle_id": stats.CycleID})

	aggregate := make(map[string]float64)
	categorySource := map[bool]string{}

	for _, src := range u.sources {
		result, err := src.Fetch(ctx)
		if err != nil {
			stats.Failed++
			stats.Errors = append(stats.Errors, src.Name()+": "+err.Error())
			log.WithError(err).WithFields(logger.Fields{"source": src.Name()}).Warn("source fetch failed")
			continue
		}
		stats.Success++

		// History records go in before the cache merge so the log is
		// never behind the cache for this cycle's observations.
		for key, rate := range result.Pairs {
			from, to, err := pair.Parse(key)
			if err != nil {
				return nil, err
			}
			obs, err := store.NewObservation(from, to, rate, observedAt, src.Name())
			if err != nil {
				return nil, err
			}
			obs.RawID = result.RawIDs[key]
			obs.RequestMs = result.Meta.RequestMs
			obs.StatusCode = result.Meta.StatusCode
			obs.ETag = result.Meta.ETag
			if err := u.history.Append(obs); err != nil {
				return nil, err
			}

			aggregate[key] = rate
			categorySource[u.crypto[from]] = src.Name()
		}
	}

	if len(aggregate) == 0 {
		return nil, &source.ExternalServiceError{
			Service: "updater",
			Reason:  "all sources failed: " + strings.Join(stats.Errors, "; "),
		}
	}

	cryptoRates := make(map[string]float64)
	fiatRates := make(map[string]float64)
	for key, rate := range aggregate {
		from, _, err := pair.Parse(key)
		if err != nil {
			return nil, err
		}
		if u.crypto[from] {
			cryptoRates[key] = rate
		} else {
			fiatRates[key] = rate
		}
	}

	// Merge per category so cache entries keep accurate provenance
	if len(cryptoRates) > 0 {
		applied, err := u.cache.MergeUpdate(cryptoRates, categorySource[true], observedAt)
		if err != nil {
			return nil, err
		}
		logger.LogDataFlowEntry(log, categorySource[true], "cache", applied, "crypto_rates")
	}
	if len(fiatRates) > 0 {
		applied, err := u.cache.MergeUpdate(fiatRates, categorySource[false], observedAt)
		if err != nil {
			return nil, err
		}
		logger.LogDataFlowEntry(log, categorySource[false], "cache", applied, "fiat_rates")
	}

	stats.CryptoCount = len(cryptoRates)
	stats.FiatCount = len(fiatRates)
	stats.TotalCount = len(aggregate)

	logger.LogPerformanceEntry(log, "updater", "refresh_cycle", time.Since(start), logger.Fields{
		"total":   stats.TotalCount,
		"success": stats.Success,
		"failed":  stats.Failed,
	})
	return stats, nil
}
