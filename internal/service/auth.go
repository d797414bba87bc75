package service

import (
	"context"
	"errors"
	"log/slog"
	"storefront/internal/client"
	"storefront/internal/token"
	"strings"
	"sync"
	"time"
)

type AuthState string

const (
	StateLoggedOut    AuthState = "logged_out"
	StateAwaitingCode AuthState = "awaiting_code"
	StateLoggedIn     AuthState = "logged_in"
)

type AuthSnapshot struct {
	State        AuthState
	Email        string
	PendingEmail string
}

type AuthService interface {
	// Initialize restores a persisted session, logging out when it is unusable.
	Initialize(ctx context.Context) error
	RequestCode(ctx context.Context, email string) error
	VerifyCode(ctx context.Context, email, code string) error
	Logout(ctx context.Context)
	Snapshot() AuthSnapshot
}

type authServiceImpl struct {
	sessions *SessionManager
	backend  client.BackendClient
	cache    PurchaseCache
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time

	mu           sync.Mutex
	state        AuthState
	pendingEmail string
}

func NewAuthService(
	sessions *SessionManager,
	backend client.BackendClient,
	cache PurchaseCache,
	notifier Notifier,
	logger *slog.Logger,
) AuthService {
	s := &authServiceImpl{
		sessions: sessions,
		backend:  backend,
		cache:    cache,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
		state:    StateLoggedOut,
	}
	sessions.OnEnd(func(context.Context) { s.setState(StateLoggedOut, "") })
	return s
}

func (s *authServiceImpl) Initialize(ctx context.Context) error {
	credential := s.sessions.Stored(ctx)
	if credential == "" {
		s.logger.DebugContext(ctx, "no stored credential")
		return nil
	}

	claim, ok := token.Decode(credential)
	if !ok {
		s.logger.InfoContext(ctx, "stored credential is malformed, logging out")
		s.endSession(ctx, LevelWarning, msgSessionExpired)
		return ErrSessionExpired
	}
	if token.IsExpired(claim, s.now()) {
		s.logger.InfoContext(ctx, "stored credential expired, logging out")
		s.endSession(ctx, LevelWarning, msgSessionExpired)
		return ErrSessionExpired
	}

	s.sessions.Begin(ctx, credential, claim.Email)
	s.setState(StateLoggedIn, "")

	// failures are already surfaced as notices
	_ = s.cache.Refresh(ctx)
	return nil
}

func (s *authServiceImpl) RequestCode(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if !ValidEmail(email) {
		s.notifier.Notify(ctx, LevelError, "Please enter a valid email address")
		return fail(ErrInvalidEmail, "Please enter a valid email address", nil)
	}

	if err := s.backend.RequestOTP(ctx, email); err != nil {
		return s.backendFailure(ctx, err, "Unable to send verification code")
	}

	s.setState(StateAwaitingCode, email)
	s.notifier.Notify(ctx, LevelSuccess, "Verification code sent to your email")
	return nil
}

func (s *authServiceImpl) VerifyCode(ctx context.Context, email, code string) error {
	email = strings.TrimSpace(email)
	if !ValidCode(code) {
		s.notifier.Notify(ctx, LevelWarning, "Please enter the 6-digit code")
		return fail(ErrInvalidCode, "Please enter the 6-digit code", nil)
	}

	credential, err := s.backend.VerifyOTP(ctx, email, code)
	if err != nil {
		if errors.Is(err, client.ErrNetwork) {
			s.notifier.Notify(ctx, LevelError, "Network error. Please try again.")
			return fail(ErrNetwork, "Network error. Please try again.", err)
		}
		return s.backendFailure(ctx, err, "Invalid verification code")
	}

	identity := email
	if claim, ok := token.Decode(credential); ok && claim.Email != "" {
		identity = claim.Email
	}

	s.sessions.Begin(ctx, credential, identity)
	s.setState(StateLoggedIn, "")
	s.notifier.Notify(ctx, LevelSuccess, "Welcome to ZishanHack!")

	_ = s.cache.Refresh(ctx)
	return nil
}

func (s *authServiceImpl) Logout(ctx context.Context) {
	s.endSession(ctx, LevelSuccess, "Logged out successfully")
}

func (s *authServiceImpl) Snapshot() AuthSnapshot {
	sess := s.sessions.Current()

	s.mu.Lock()
	defer s.mu.Unlock()
	return AuthSnapshot{
		State:        s.state,
		Email:        sess.Identity,
		PendingEmail: s.pendingEmail,
	}
}

func (s *authServiceImpl) endSession(ctx context.Context, level Level, message string) {
	s.sessions.End(ctx)
	s.notifier.Notify(ctx, level, message)
}

func (s *authServiceImpl) backendFailure(ctx context.Context, err error, fallback string) error {
	if errors.Is(err, client.ErrNetwork) {
		s.notifier.Notify(ctx, LevelError, msgNetwork)
		return fail(ErrNetwork, msgNetwork, err)
	}

	msg := client.Message(err, fallback)
	s.logger.WarnContext(ctx, "auth request rejected", slog.Any("error", err))
	s.notifier.Notify(ctx, LevelError, msg)
	return fail(ErrRejected, msg, err)
}

func (s *authServiceImpl) setState(state AuthState, pendingEmail string) {
	s.mu.Lock()
	s.state = state
	s.pendingEmail = pendingEmail
	s.mu.Unlock()
}
