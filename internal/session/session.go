// Package session keeps the logged-in user between CLI invocations in a
// small state file.
package session

import (
	"encoding/json"
	"errors"
	"os"
	"time"

	"valutahub/internal/store"
	"valutahub/logger"
)

var ErrNotLoggedIn = errors.New("not logged in")

type Session struct {
	UserID     int             `json:"user_id"`
	Username   string          `json:"username"`
	LoggedInAt store.Timestamp `json:"logged_in_at"`
}

type Store struct {
	path string
	log  *logger.Entry
}

func NewStore(path string, log *logger.Log) *Store {
	return &Store{
		path: path,
		log:  log.WithComponent("session"),
	}
}

// Save records the active user.
func (s *Store) Save(userID int, username string) error {
	session := Session{
		UserID:     userID,
		Username:   username,
		LoggedInAt: store.NewTimestamp(time.Now()),
	}
	if err := store.WriteJSONAtomic(s.path, &session); err != nil {
		return err
	}
	s.log.WithFields(logger.Fields{"user_id": userID}).Debug("session saved")
	return nil
}

// Current returns the active session, or ErrNotLoggedIn when no session
// file exists.
func (s *Store) Current() (*Session, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotLoggedIn
		}
		return nil, &store.StorageError{Op: "read", Path: s.path, Err: err}
	}
	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		// A corrupt session file just means logging in again
		s.log.WithError(err).Warn("discarding unreadable session file")
		os.Remove(s.path)
		return nil, ErrNotLoggedIn
	}
	return &session, nil
}

// Clear removes the session file. Clearing an absent session is a no-op.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return &store.StorageError{Op: "remove", Path: s.path, Err: err}
	}
	return nil
}
