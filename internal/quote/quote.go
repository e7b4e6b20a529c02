// Package quote is the read side of the rate cache: pair lookups, cross
// conversion through the base currency and display views over the cached
// snapshot.
package quote

import (
	"fmt"
	"sort"
	"time"

	"valutahub/internal/pair"
	"valutahub/internal/store"
	"valutahub/logger"
)

// NotFoundError reports a pair missing from the cache. It is an expected
// condition for currencies that have never been refreshed.
type NotFoundError struct {
	Pair string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no cached rate for %s, run update-rates first", e.Pair)
}

// Quote is one displayable rate derived from the cache.
type Quote struct {
	Pair      string
	Rate      float64
	UpdatedAt time.Time
	Source    string
}

// ListOptions narrow the quote listing. Zero values mean no filtering.
type ListOptions struct {
	// Currency keeps only pairs that mention this code.
	Currency string
	// Top keeps the N highest-rate crypto pairs.
	Top int
	// Base re-expresses every rate against this anchor instead of the
	// configured base currency.
	Base string
}

type Service struct {
	cache  *store.CacheStore
	base   string
	crypto map[string]bool
	log    *logger.Entry
}

func NewService(cache *store.CacheStore, baseCurrency string, cryptoCurrencies []string, log *logger.Log) *Service {
	crypto := make(map[string]bool, len(cryptoCurrencies))
	for _, code := range cryptoCurrencies {
		crypto[code] = true
	}
	return &Service{
		cache:  cache,
		base:   baseCurrency,
		crypto: crypto,
		log:    log.WithComponent("quote"),
	}
}

// valueInBase returns how many base units one unit of code is worth.
func (s *Service) valueInBase(snap *store.Snapshot, code string) (float64, error) {
	if code == s.base {
		return 1, nil
	}
	key := pair.Key(code, s.base)
	entry, ok := snap.Pairs[key]
	if !ok {
		return 0, &NotFoundError{Pair: key}
	}
	return entry.Rate, nil
}

// Rate converts between two currencies through the base currency.
func (s *Service) Rate(from, to string) (float64, error) {
	from, err := pair.Normalize(from)
	if err != nil {
		return 0, err
	}
	to, err = pair.Normalize(to)
	if err != nil {
		return 0, err
	}
	if from == to {
		return 1, nil
	}

	snap, err := s.cache.ReadSnapshot()
	if err != nil {
		return 0, err
	}
	fromValue, err := s.valueInBase(snap, from)
	if err != nil {
		return 0, err
	}
	toValue, err := s.valueInBase(snap, to)
	if err != nil {
		return 0, err
	}
	return fromValue / toValue, nil
}

// LastRefresh reports when the cache was last touched by a refresh cycle.
func (s *Service) LastRefresh() (time.Time, error) {
	snap, err := s.cache.ReadSnapshot()
	if err != nil {
		return time.Time{}, err
	}
	if snap.LastRefresh == nil {
		return time.Time{}, nil
	}
	return snap.LastRefresh.Time, nil
}

// List renders the cached pairs for display, applying the requested filter,
// top-N limit and rebase anchor in that order.
func (s *Service) List(opts ListOptions) ([]Quote, error) {
	snap, err := s.cache.ReadSnapshot()
	if err != nil {
		return nil, err
	}

	var currency string
	if opts.Currency != "" {
		if currency, err = pair.Normalize(opts.Currency); err != nil {
			return nil, err
		}
	}

	quotes := make([]Quote, 0, len(snap.Pairs))
	for key, entry := range snap.Pairs {
		from, to, err := pair.Parse(key)
		if err != nil {
			// Tolerate junk keys from hand-edited files
			s.log.WithError(err).WithFields(logger.Fields{"pair": key}).Warn("skipping malformed cache key")
			continue
		}
		if currency != "" && from != currency && to != currency {
			continue
		}
		quotes = append(quotes, Quote{
			Pair:      key,
			Rate:      entry.Rate,
			UpdatedAt: entry.UpdatedAt.Time,
			Source:    entry.Source,
		})
	}

	if opts.Top > 0 {
		quotes = s.topCrypto(quotes, opts.Top)
	} else {
		sort.Slice(quotes, func(i, j int) bool { return quotes[i].Pair < quotes[j].Pair })
	}

	if opts.Base != "" {
		anchor, err := pair.Normalize(opts.Base)
		if err != nil {
			return nil, err
		}
		if anchor != s.base {
			if quotes, err = s.rebase(snap, quotes, anchor); err != nil {
				return nil, err
			}
		}
	}
	return quotes, nil
}

// topCrypto keeps the n highest-rate crypto pairs, ordered by rate.
func (s *Service) topCrypto(quotes []Quote, n int) []Quote {
	kept := quotes[:0]
	for _, q := range quotes {
		from, _, err := pair.Parse(q.Pair)
		if err == nil && s.crypto[from] {
			kept = append(kept, q)
		}
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].Rate > kept[j].Rate })
	if len(kept) > n {
		kept = kept[:n]
	}
	return kept
}

// rebase re-expresses each quote against the anchor currency. The anchor's
// own pair against the base currency must be cached.
func (s *Service) rebase(snap *store.Snapshot, quotes []Quote, anchor string) ([]Quote, error) {
	anchorValue, err := s.valueInBase(snap, anchor)
	if err != nil {
		return nil, err
	}

	rebased := make([]Quote, 0, len(quotes))
	for _, q := range quotes {
		from, _, err := pair.Parse(q.Pair)
		if err != nil || from == anchor {
			continue
		}
		q.Pair = pair.Key(from, anchor)
		q.Rate = q.Rate / anchorValue
		rebased = append(rebased, q)
	}
	return rebased, nil
}
