package store

import (
	"encoding/json"
	"os"
	"sync"
	"time"

	"valutahub/internal/pair"
	"valutahub/logger"
)

// MigratedSource marks cache entries upgraded from the legacy flat file
// shape on read.
const MigratedSource = "migrated"

// legacySnapshot is the pre-pair flat cache shape, rates expressed against
// an implicit base currency.
type legacySnapshot struct {
	Rates        map[string]float64 `json:"rates"`
	BaseCurrency string             `json:"base_currency"`
	UpdatedAt    string             `json:"updated_at"`
}

// CacheStore owns the latest-known-rate file. Access is serialized so a
// scheduler cycle and a manual refresh cannot interleave read-modify-write.
type CacheStore struct {
	path string
	base string

	mu  sync.Mutex
	log *logger.Entry
}

func NewCacheStore(path, baseCurrency string, log *logger.Log) *CacheStore {
	return &CacheStore{
		path: path,
		base: baseCurrency,
		log:  log.WithComponent("cache-store"),
	}
}

// ReadSnapshot loads the cache file. A missing file yields an empty
// snapshot. The legacy flat shape is upgraded in memory; the upgraded form
// is only persisted by the next WriteSnapshot.
func (s *CacheStore) ReadSnapshot() (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readLocked()
}

func (s *CacheStore) readLocked() (*Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Snapshot{Pairs: map[string]CacheEntry{}}, nil
		}
		return nil, &StorageError{Op: "read", Path: s.path, Err: err}
	}

	var legacy legacySnapshot
	if err := json.Unmarshal(data, &legacy); err == nil && legacy.Rates != nil {
		return s.migrateLegacy(legacy), nil
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, &StorageError{Op: "parse", Path: s.path, Err: err}
	}
	if snap.Pairs == nil {
		// Repair legacy content in memory so reads never fail on it
		snap.Pairs = map[string]CacheEntry{}
	}
	return &snap, nil
}

func (s *CacheStore) migrateLegacy(legacy legacySnapshot) *Snapshot {
	base := legacy.BaseCurrency
	if base == "" {
		base = s.base
	}

	var updatedAt Timestamp
	if legacy.UpdatedAt != "" {
		if t, err := time.Parse(pair.TimeLayout, legacy.UpdatedAt); err == nil {
			updatedAt = NewTimestamp(t)
		}
	}

	snap := &Snapshot{Pairs: make(map[string]CacheEntry, len(legacy.Rates))}
	for code, rate := range legacy.Rates {
		if code == base {
			continue
		}
		snap.Pairs[pair.Key(code, base)] = CacheEntry{
			Rate:      rate,
			UpdatedAt: updatedAt,
			Source:    MigratedSource,
		}
	}
	if !updatedAt.IsZero() {
		snap.LastRefresh = &updatedAt
	}

	s.log.WithFields(logger.Fields{
		"pairs": len(snap.Pairs),
		"base":  base,
	}).Info("migrated legacy cache shape")
	return snap
}

// WriteSnapshot persists the snapshot with an atomic file replace.
func (s *CacheStore) WriteSnapshot(snap *Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return WriteJSONAtomic(s.path, snap)
}

// MergeUpdate folds freshly fetched rates into the cache. An incoming pair
// only overwrites the stored entry when observedAt is strictly newer than
// the entry's timestamp. The last refresh marker is always advanced to
// observedAt, even when every pair was skipped. Returns the number of pairs
// actually applied.
func (s *CacheStore) MergeUpdate(rates map[string]float64, source string, observedAt time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.readLocked()
	if err != nil {
		return 0, err
	}

	ts := NewTimestamp(observedAt)
	applied := 0
	for key, rate := range rates {
		if current, ok := snap.Pairs[key]; ok && !ts.After(current.UpdatedAt.Time) {
			s.log.WithFields(logger.Fields{
				"pair":      key,
				"stored_at": current.UpdatedAt.Format(pair.TimeLayout),
			}).Debug("skipping stale observation")
			continue
		}
		snap.Pairs[key] = CacheEntry{Rate: rate, UpdatedAt: ts, Source: source}
		applied++
	}
	snap.LastRefresh = &ts

	if err := WriteJSONAtomic(s.path, snap); err != nil {
		return 0, err
	}

	s.log.WithFields(logger.Fields{
		"source":  source,
		"fetched": len(rates),
		"applied": applied,
	}).Info("cache merge complete")
	return applied, nil
}
