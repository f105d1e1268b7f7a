package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/user/opsboard/internal/logger"
)

type Authenticator interface {
	Login(ctx context.Context, username, password string) (string, error)
}

// Store persists the token and the user it belongs to between runs.
type Store interface {
	Load(ctx context.Context) (token, username string, err error)
	Save(ctx context.Context, token, username string) error
	Clear(ctx context.Context) error
}

// Manager owns the session token. It is the only writer of the token; any
// request issuer may read it through Token.
type Manager struct {
	auth  Authenticator
	store Store

	mu        sync.RWMutex
	token     string
	username  string
	listeners []func()
}

func NewManager(auth Authenticator, store Store) *Manager {
	return &Manager{
		auth:  auth,
		store: store,
	}
}

// Restore loads a previously persisted token. A missing token is not an
// error.
func (m *Manager) Restore(ctx context.Context) error {
	if m.store == nil {
		return nil
	}
	token, username, err := m.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading session: %w", err)
	}

	m.mu.Lock()
	m.token = token
	m.username = username
	m.mu.Unlock()
	return nil
}

func (m *Manager) Login(ctx context.Context, username, password string) (string, error) {
	token, err := m.auth.Login(ctx, username, password)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	m.token = token
	m.username = username
	m.mu.Unlock()

	if m.store != nil {
		if err := m.store.Save(ctx, token, username); err != nil {
			logger.Warn().Err(err).Msg("Failed to persist session token")
		}
	}

	logger.Info().Str("user", username).Msg("Logged in")
	return token, nil
}

func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

func (m *Manager) Username() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.username
}

func (m *Manager) Authenticated() bool {
	return m.Token() != ""
}

// Invalidate clears the token, forgets the persisted copy and notifies
// listeners. Calling it on an unauthenticated session is a no-op.
func (m *Manager) Invalidate() {
	m.mu.Lock()
	if m.token == "" {
		m.mu.Unlock()
		return
	}
	m.token = ""
	m.username = ""
	listeners := append([]func(){}, m.listeners...)
	m.mu.Unlock()

	if m.store != nil {
		if err := m.store.Clear(context.Background()); err != nil {
			logger.Warn().Err(err).Msg("Failed to clear persisted session")
		}
	}

	logger.Info().Msg("Session invalidated")
	for _, fn := range listeners {
		fn()
	}
}

func (m *Manager) OnInvalidate(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}
