package service

import (
	"context"
	"log/slog"
	"sync"
)

// CredentialStore persists the bearer credential.
type CredentialStore interface {
	Load(ctx context.Context) string
	Save(ctx context.Context, credential string)
	Clear(ctx context.Context)
}

type Session struct {
	Credential string
	Identity   string
}

func (s Session) Active() bool {
	return s.Credential != ""
}

// SessionManager owns the buyer's login state shared by every storefront flow.
type SessionManager struct {
	store  CredentialStore
	logger *slog.Logger

	mu      sync.RWMutex
	current Session
	onEnd   []func(ctx context.Context)
}

func NewSessionManager(store CredentialStore, logger *slog.Logger) *SessionManager {
	return &SessionManager{store: store, logger: logger}
}

func (m *SessionManager) Current() Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

func (m *SessionManager) Active() bool {
	return m.Current().Active()
}

// Stored returns the persisted credential without adopting it.
func (m *SessionManager) Stored(ctx context.Context) string {
	return m.store.Load(ctx)
}

// Begin adopts credential for identity and persists it.
func (m *SessionManager) Begin(ctx context.Context, credential, identity string) {
	if credential == "" {
		return
	}
	m.store.Save(ctx, credential)

	m.mu.Lock()
	m.current = Session{Credential: credential, Identity: identity}
	m.mu.Unlock()

	m.logger.InfoContext(ctx, "session started", slog.String("email", identity))
}

// End forgets the session everywhere and runs the end hooks.
func (m *SessionManager) End(ctx context.Context) {
	m.store.Clear(ctx)

	m.mu.Lock()
	m.current = Session{}
	hooks := append([]func(context.Context){}, m.onEnd...)
	m.mu.Unlock()

	for _, fn := range hooks {
		fn(ctx)
	}
	m.logger.InfoContext(ctx, "session ended")
}

// OnEnd registers fn to run after every End.
func (m *SessionManager) OnEnd(fn func(ctx context.Context)) {
	m.mu.Lock()
	m.onEnd = append(m.onEnd, fn)
	m.mu.Unlock()
}
