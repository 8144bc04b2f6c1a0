// Package session holds the signed-in user for the client side. It is an
// explicit value passed to whatever needs auth, backed by a Store.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"ngoledger/internal/client"
	"ngoledger/internal/domain"
	"ngoledger/internal/infra"
)

const userKey = "user"

// User is the persisted session user.
type User struct {
	Username   string `json:"username"`
	Token      string `json:"token"`
	IsNGOAdmin bool   `json:"is_ngo_admin"`
	NGOID      *int64 `json:"ngo_id,omitempty"`
}

// Authenticator is the part of the API client a session needs.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*domain.LoginResult, error)
	Register(ctx context.Context, username, password string) (*client.RegisteredUser, error)
}

// Session is safe for concurrent use.
type Session struct {
	mu     sync.RWMutex
	store  Store
	auth   Authenticator
	user   *User
	logger *infra.Logger
}

func New(store Store, auth Authenticator, logger *infra.Logger) *Session {
	if store == nil {
		store = NewMemoryStore()
	}
	if logger == nil {
		logger = infra.DiscardLogger()
	}
	return &Session{store: store, auth: auth, logger: logger}
}

// Load restores the persisted user. A corrupt entry is cleared and the
// session starts anonymous.
func (s *Session) Load() error {
	raw, ok, err := s.store.Get(userKey)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	if !ok || raw == "" {
		return nil
	}
	var u User
	if err := json.Unmarshal([]byte(raw), &u); err != nil || u.Token == "" {
		s.logger.Warn().Msg("session: discarding unreadable persisted user")
		return s.store.Clear(userKey)
	}
	s.user = &u
	return nil
}

// Login authenticates and persists the user. Transport failures are
// reported as "Network error".
func (s *Session) Login(ctx context.Context, username, password string) (*User, error) {
	res, err := s.auth.Login(ctx, username, password)
	if err != nil {
		return nil, networkError(err)
	}
	u := &User{Username: res.Username, Token: res.Token, IsNGOAdmin: res.IsNGOAdmin, NGOID: res.NGOID}
	if u.Username == "" {
		u.Username = username
	}
	raw, err := json.Marshal(u)
	if err != nil {
		return nil, fmt.Errorf("session: encode user: %w", err)
	}
	if err := s.store.Set(userKey, string(raw)); err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.user = u
	s.mu.Unlock()
	s.logger.Debug().Str("username", u.Username).Bool("is_ngo_admin", u.IsNGOAdmin).Msg("session: logged in")
	return u, nil
}

// Register creates the account and then logs in with the same credentials.
func (s *Session) Register(ctx context.Context, username, password string) (*User, error) {
	if _, err := s.auth.Register(ctx, username, password); err != nil {
		return nil, networkError(err)
	}
	return s.Login(ctx, username, password)
}

// Logout forgets the user in memory and in the store.
func (s *Session) Logout() error {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
	return s.store.Clear(userKey)
}

// User returns a copy of the current user, nil when anonymous.
func (s *Session) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Username returns the signed-in username, "" when anonymous.
func (s *Session) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return ""
	}
	return s.user.Username
}

func (s *Session) IsAuthenticated() bool {
	return s.Token() != ""
}

// Token implements client.TokenSource.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return ""
	}
	return s.user.Token
}

// networkError rewrites transport failures to the generic sign-in message
// while keeping the underlying cause.
func networkError(err error) error {
	var ce *client.Error
	if errors.As(err, &ce) && ce.Kind == client.KindNetwork {
		return &client.Error{Kind: ce.Kind, Op: ce.Op, Message: "Network error", Err: ce.Err}
	}
	return err
}
