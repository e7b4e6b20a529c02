// Package portfolio holds the account side of the application: registered
// users, per-currency wallet balances and the trades between them. Rates
// always come from the cache's read side, never from the network.
package portfolio

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"valutahub/internal/store"
	"valutahub/logger"
)

const (
	minUsernameLen = 3
	minPasswordLen = 4
)

type User struct {
	ID           int             `json:"id"`
	Username     string          `json:"username"`
	PasswordHash string          `json:"password_hash"`
	RegisteredAt store.Timestamp `json:"registered_at"`
}

type userFile struct {
	Users []User `json:"users"`
}

// UserStore persists accounts in a single JSON file, written atomically
// like every other data file.
type UserStore struct {
	path string

	mu  sync.Mutex
	log *logger.Entry
}

func NewUserStore(path string, log *logger.Log) *UserStore {
	return &UserStore{
		path: path,
		log:  log.WithComponent("user-store"),
	}
}

func (s *UserStore) readLocked() (*userFile, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &userFile{Users: []User{}}, nil
		}
		return nil, &store.StorageError{Op: "read", Path: s.path, Err: err}
	}
	var file userFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, &store.StorageError{Op: "parse", Path: s.path, Err: err}
	}
	if file.Users == nil {
		file.Users = []User{}
	}
	return &file, nil
}

// Register creates an account with a bcrypt password hash and the next
// sequential user id.
func (s *UserStore) Register(username, password string) (*User, error) {
	username = strings.TrimSpace(username)
	if len(username) < minUsernameLen {
		return nil, fmt.Errorf("username must be at least %d characters", minUsernameLen)
	}
	if len(password) < minPasswordLen {
		return nil, fmt.Errorf("password must be at least %d characters", minPasswordLen)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.readLocked()
	if err != nil {
		return nil, err
	}

	nextID := 1
	for _, u := range file.Users {
		if strings.EqualFold(u.Username, username) {
			return nil, ErrUserExists
		}
		if u.ID >= nextID {
			nextID = u.ID + 1
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := User{
		ID:           nextID,
		Username:     username,
		PasswordHash: string(hash),
		RegisteredAt: store.NewTimestamp(time.Now()),
	}
	file.Users = append(file.Users, user)

	if err := store.WriteJSONAtomic(s.path, file); err != nil {
		return nil, err
	}

	s.log.WithFields(logger.Fields{"user_id": user.ID, "username": user.Username}).Info("user registered")
	return &user, nil
}

// Authenticate checks a username/password pair. Unknown user and wrong
// password are indistinguishable to the caller.
func (s *UserStore) Authenticate(username, password string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.readLocked()
	if err != nil {
		return nil, err
	}
	for _, u := range file.Users {
		if strings.EqualFold(u.Username, strings.TrimSpace(username)) {
			if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
				return nil, ErrInvalidCredentials
			}
			user := u
			return &user, nil
		}
	}
	return nil, ErrInvalidCredentials
}

// Lookup finds a user by id.
func (s *UserStore) Lookup(id int) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.readLocked()
	if err != nil {
		return nil, err
	}
	for _, u := range file.Users {
		if u.ID == id {
			user := u
			return &user, nil
		}
	}
	return nil, ErrUserNotFound
}
