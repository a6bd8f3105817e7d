// Package session holds the authentication token and the cached user profile.
//
// A cached profile on disk is not trusted by itself: the store starts in
// StateUnknown and only reports a current user after Restore (or a login)
// has moved it to StateVerified.
package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"cinema-cli/domain"

	"github.com/golang-jwt/jwt/v5"
)

const (
	TokenKey = "cinema_jwt_token"
	UserKey  = "cinema_current_user"
)

// Medium is the persisted key-value space the session lives in.
type Medium interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	// Delete removes all keys in a single write.
	Delete(keys ...string) error
}

type State int

const (
	StateUnknown State = iota
	StateVerified
	StateAnonymous
)

func (s State) String() string {
	switch s {
	case StateVerified:
		return "verified"
	case StateAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// Verifier checks a token against the backend. valid=false with a nil error
// means the backend rejected the token.
type Verifier interface {
	Verify(ctx context.Context, token string) (user domain.User, valid bool, err error)
}

type Store struct {
	mu     sync.RWMutex
	medium Medium
	state  State
	user   *domain.User
}

func NewStore(medium Medium) *Store {
	return &Store{medium: medium}
}

func (s *Store) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	token, ok, err := s.medium.Get(TokenKey)
	if err != nil || !ok || token == "" {
		return "", false
	}
	return token, true
}

func (s *Store) SaveToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.medium.Set(TokenKey, token)
}

// Clear drops token and cached user together and leaves the store anonymous.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.state = StateAnonymous
	return s.medium.Delete(TokenKey, UserKey)
}

// CachedUser returns the persisted profile regardless of verification state.
func (s *Store) CachedUser() (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cachedUserLocked()
}

func (s *Store) cachedUserLocked() (domain.User, bool) {
	raw, ok, err := s.medium.Get(UserKey)
	if err != nil || !ok || raw == "" {
		return domain.User{}, false
	}
	var user domain.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return domain.User{}, false
	}
	return user, true
}

func (s *Store) CacheUser(user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cacheUserLocked(user)
}

func (s *Store) cacheUserLocked(user domain.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return s.medium.Set(UserKey, string(data))
}

// Authenticate records a fresh login: token and user are persisted and the store is verified.
func (s *Store) Authenticate(token string, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.medium.Set(TokenKey, token); err != nil {
		return err
	}
	if err := s.cacheUserLocked(user); err != nil {
		return err
	}
	s.user = &user
	s.state = StateVerified
	return nil
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// CurrentUser is only reported once the session has been verified.
func (s *Store) CurrentUser() (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != StateVerified || s.user == nil {
		return domain.User{}, false
	}
	return *s.user, true
}

// Restore resolves an unknown session. A rejected token clears the session; a
// verification that could not reach the backend leaves the token in place but
// the store anonymous.
func (s *Store) Restore(ctx context.Context, verifier Verifier) (State, error) {
	token, ok := s.Token()
	if !ok {
		s.setState(StateAnonymous, nil)
		return StateAnonymous, nil
	}

	user, valid, err := verifier.Verify(ctx, token)
	if err != nil {
		s.setState(StateAnonymous, nil)
		return StateAnonymous, err
	}
	if !valid {
		return StateAnonymous, s.Clear()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.cacheUserLocked(user); err != nil {
		return s.state, err
	}
	s.user = &user
	s.state = StateVerified
	return StateVerified, nil
}

func (s *Store) setState(state State, user *domain.User) {
	s.mu.Lock()
	s.state = state
	s.user = user
	s.mu.Unlock()
}

// TokenExpired reads the exp claim without checking the signature. Tokens that
// are not JWTs or carry no exp are left for the backend to judge.
func (s *Store) TokenExpired(now time.Time) bool {
	token, ok := s.Token()
	if !ok {
		return false
	}
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return now.After(claims.ExpiresAt.Time)
}

// MemoryMedium keeps the session in process memory.
type MemoryMedium struct {
	mu     sync.Mutex
	values map[string]string
}

func NewMemoryMedium() *MemoryMedium {
	return &MemoryMedium{values: map[string]string{}}
}

func (m *MemoryMedium) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryMedium) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryMedium) Delete(keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.values, key)
	}
	return nil
}
