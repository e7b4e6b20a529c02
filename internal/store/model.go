package store

import (
	"encoding/json"
	"fmt"
	"time"

	"valutahub/internal/pair"
)

// Timestamp serializes a UTC time using the on-disk layout shared by the
// cache and history files.
type Timestamp struct {
	time.Time
}

// NewTimestamp truncates t to second precision in UTC, matching what the
// on-disk layout can represent.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC().Truncate(time.Second)}
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.UTC().Format(pair.TimeLayout))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	if s == nil {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := time.Parse(pair.TimeLayout, *s)
	if err != nil {
		// Older files may carry full RFC3339 timestamps
		parsed, err = time.Parse(time.RFC3339, *s)
		if err != nil {
			return fmt.Errorf("invalid timestamp %q: %w", *s, err)
		}
	}
	t.Time = parsed.UTC()
	return nil
}

// CacheEntry is the latest known rate for one pair.
type CacheEntry struct {
	Rate      float64   `json:"rate"`
	UpdatedAt Timestamp `json:"updated_at"`
	Source    string    `json:"source"`
}

// Snapshot is the full cache file content.
type Snapshot struct {
	Pairs       map[string]CacheEntry `json:"pairs"`
	LastRefresh *Timestamp            `json:"last_refresh"`
}

// Observation is one immutable history record: a rate seen for a pair at a
// point in time, with optional transport metadata from the fetch.
type Observation struct {
	ID         string    `json:"id"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	Rate       float64   `json:"rate"`
	UpdatedAt  Timestamp `json:"updated_at"`
	Source     string    `json:"source"`
	RawID      string    `json:"raw_id,omitempty"`
	RequestMs  int64     `json:"request_ms,omitempty"`
	StatusCode int       `json:"status_code,omitempty"`
	ETag       string    `json:"etag,omitempty"`
}

// HistoryLog is the full history file content.
type HistoryLog struct {
	History     []Observation `json:"history"`
	LastUpdated *Timestamp    `json:"last_updated"`
}

// NewObservation builds a history record for one observed rate. The record
// id encodes the pair and the observation time.
func NewObservation(from, to string, rate float64, observedAt time.Time, source string) (Observation, error) {
	ts := NewTimestamp(observedAt)
	id, err := pair.RecordID(from, to, ts.Time)
	if err != nil {
		return Observation{}, err
	}
	return Observation{
		ID:        id,
		From:      from,
		To:        to,
		Rate:      rate,
		UpdatedAt: ts,
		Source:    source,
	}, nil
}
