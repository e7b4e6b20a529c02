package store

import (
	"encoding/json"
	"os"
	"sync"

	"valutahub/logger"
)

// HistoryStore owns the append-only observation log. Records are never
// mutated or deleted once written.
type HistoryStore struct {
	path string

	mu  sync.Mutex
	log *logger.Entry
}

func NewHistoryStore(path string, log *logger.Log) *HistoryStore {
	return &HistoryStore{
		path: path,
		log:  log.WithComponent("history-store"),
	}
}

// ReadAll loads the full log. A missing file yields an empty log; a file
// missing the records field is repaired in memory without a write-back.
func (s *HistoryStore) ReadAll() (*HistoryLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readLocked()
}

func (s *HistoryStore) readLocked() (*HistoryLog, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &HistoryLog{History: []Observation{}}, nil
		}
		return nil, &StorageError{Op: "read", Path: s.path, Err: err}
	}

	var log HistoryLog
	if err := json.Unmarshal(data, &log); err != nil {
		return nil, &StorageError{Op: "parse", Path: s.path, Err: err}
	}
	if log.History == nil {
		log.History = []Observation{}
	}
	return &log, nil
}

// Append pushes one observation to the end of the log and persists it with
// an atomic file replace. The log's last-updated marker follows the
// observation's timestamp.
func (s *HistoryStore) Append(obs Observation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	log, err := s.readLocked()
	if err != nil {
		return err
	}

	log.History = append(log.History, obs)
	ts := obs.UpdatedAt
	log.LastUpdated = &ts

	if err := WriteJSONAtomic(s.path, log); err != nil {
		return err
	}

	s.log.WithFields(logger.Fields{
		"id":     obs.ID,
		"source": obs.Source,
	}).Debug("observation appended")
	return nil
}
