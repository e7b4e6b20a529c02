package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"valutahub/logger"
)

func newTestHistory(t *testing.T) *HistoryStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "exchange_rates.json")
	return NewHistoryStore(path, logger.Logger())
}

func TestReadAllMissingFile(t *testing.T) {
	history := newTestHistory(t)

	log, err := history.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(log.History) != 0 {
		t.Errorf("expected empty log, got %d records", len(log.History))
	}
	if log.LastUpdated != nil {
		t.Errorf("expected nil last_updated, got %v", log.LastUpdated)
	}
}

func TestReadAllMalformed(t *testing.T) {
	history := newTestHistory(t)
	if err := os.WriteFile(history.path, []byte(`["not", "a", "container"]`), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	_, err := history.ReadAll()
	var storageErr *StorageError
	if !errors.As(err, &storageErr) {
		t.Fatalf("expected StorageError, got %v", err)
	}
}

func TestReadAllRepairsMissingRecords(t *testing.T) {
	history := newTestHistory(t)
	if err := os.WriteFile(history.path, []byte(`{"last_updated": null}`), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	log, err := history.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if log.History == nil {
		t.Fatal("expected records list to be repaired")
	}
}

func TestAppendPreservesOrder(t *testing.T) {
	history := newTestHistory(t)
	t1, err := time.Parse("2006-01-02T15:04:05Z", "2025-10-10T12:00:01Z")
	if err != nil {
		t.Fatalf("parse time: %v", err)
	}

	first, err := NewObservation("BTC", "USD", 60000, t1, "CoinGecko")
	if err != nil {
		t.Fatalf("NewObservation failed: %v", err)
	}
	second, err := NewObservation("EUR", "USD", 1.08, t1.Add(time.Second), "ExchangeRate-API")
	if err != nil {
		t.Fatalf("NewObservation failed: %v", err)
	}

	if err := history.Append(first); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := history.Append(second); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	log, err := history.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(log.History) != 2 {
		t.Fatalf("expected 2 records, got %d", len(log.History))
	}
	if log.History[0].ID != "BTC_USD_2025-10-10T12:00:01Z" {
		t.Errorf("unexpected first record id: %s", log.History[0].ID)
	}
	if log.History[1].From != "EUR" {
		t.Errorf("unexpected second record: %+v", log.History[1])
	}
	if log.LastUpdated == nil || !log.LastUpdated.Equal(second.UpdatedAt.Time) {
		t.Errorf("expected last_updated to follow the appended record, got %v", log.LastUpdated)
	}
}

func TestNewObservationRejectsBadCodes(t *testing.T) {
	if _, err := NewObservation("btc", "USD", 1, time.Now(), "CoinGecko"); err == nil {
		t.Fatal("expected validation error for lowercase code")
	}
}
