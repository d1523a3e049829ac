// Package session holds the locally persisted login: a bearer token and the
// username it belongs to.
package session

import (
	"errors"

	"go.uber.org/zap"

	"taskman/internal/logging"
	"taskman/internal/observable"
)

// Storage keys for the two session entries.
const (
	TokenKey    = "auth-token"
	UsernameKey = "auth-username"
)

// Store is the session context shared by the API transport and the
// controllers. It is safe for concurrent use.
type Store struct {
	storage Storage
	state   *observable.Value[bool]
	log     *zap.SugaredLogger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for storage read failures.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(s *Store) { s.log = log }
}

// NewStore returns a Store over storage. The published auth state is
// computed here, once; later changes made to storage by other processes
// are not observed until the next Login or Logout.
func NewStore(storage Storage, opts ...Option) *Store {
	s := &Store{storage: storage, log: logging.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	s.state = observable.NewValue(s.hasToken())
	return s
}

// Login stores token and username and publishes true.
func (s *Store) Login(token, username string) error {
	if err := s.storage.Set(TokenKey, token); err != nil {
		return err
	}
	if err := s.storage.Set(UsernameKey, username); err != nil {
		return err
	}
	s.state.Set(true)
	return nil
}

// Logout removes both entries and publishes false. Both removals are
// attempted even if the first one fails.
func (s *Store) Logout() error {
	errToken := s.storage.Remove(TokenKey)
	errUser := s.storage.Remove(UsernameKey)
	s.state.Set(false)
	return errors.Join(errToken, errUser)
}

// Token returns the stored token. Empty or unreadable entries count as absent.
func (s *Store) Token() (string, bool) {
	return s.get(TokenKey)
}

// Username returns the stored username.
func (s *Store) Username() (string, bool) {
	return s.get(UsernameKey)
}

// IsAuthenticated reports whether a token is currently stored.
func (s *Store) IsAuthenticated() bool {
	return s.hasToken()
}

// AuthState returns the published authentication state.
func (s *Store) AuthState() *observable.Value[bool] {
	return s.state
}

func (s *Store) hasToken() bool {
	_, ok := s.Token()
	return ok
}

func (s *Store) get(key string) (string, bool) {
	v, ok, err := s.storage.Get(key)
	if err != nil {
		s.log.Warnw("session storage read failed", "key", key, "error", err)
		return "", false
	}
	if !ok || v == "" {
		return "", false
	}
	return v, true
}
