// Package auth owns the client's authentication state.
//
// One Manager is built at startup and handed to everything that needs the current
// user. It is the gateway's credential source and listens for 401 responses, so any
// rejected request logs the client out.
package auth

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/studyhub/portal/gateway"
	"github.com/studyhub/portal/internal/validation"
	"github.com/studyhub/portal/sessions"
	"github.com/studyhub/portal/token"
	"github.com/studyhub/portal/users"
)

const (
	LoginPath       = "/auth/login/"
	LogoutPath      = "/auth/logout/"
	MePath          = "/auth/me/"
	SocialLoginPath = "/auth/social/login/"

	defaultSessionTTL = 24 * time.Hour
)

// State is the authentication state of the client
type State int

const (
	StateUnknown State = iota // not yet restored
	StateAuthenticated
	StateAnonymous
)

func (s State) String() string {
	switch s {
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	}
	return "unknown"
}

// Gateway is the part of the gateway client the Manager depends on
type Gateway interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, in, out any) error
	Patch(ctx context.Context, path string, in, out any) error
	SetCredentials(source gateway.CredentialSource)
	OnUnauthorized(hook gateway.UnauthorizedHook)
}

// Manager holds the current session and keeps it consistent with the store.
// Its lock is never held across a gateway call: the gateway reads Credentials and
// runs the 401 hook on the calling goroutine.
type Manager struct {
	gateway    Gateway
	repo       sessions.Repo
	validator  *validation.Validator
	logger     zerolog.Logger
	nowTime    func() time.Time
	sessionTTL time.Duration

	lock     sync.RWMutex
	state    State
	session  *sessions.Session
	resolved chan struct{}
	once     sync.Once
}

// ManagerOption defines a function type to modify the Manager instance.
type ManagerOption func(*Manager)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowTime = nowFunc
	}
}

func WithLogger(logger zerolog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithSessionTTL sets the expiry used for tokens that carry no exp claim
func WithSessionTTL(ttl time.Duration) ManagerOption {
	return func(m *Manager) {
		if ttl > 0 {
			m.sessionTTL = ttl
		}
	}
}

// NewManager wires the Manager into gw as its credential source and 401 listener.
// Call Restore before relying on State.
func NewManager(gw Gateway, repo sessions.Repo, options ...ManagerOption) (*Manager, error) {
	if gw == nil {
		return nil, errors.New("[NewManager] gateway is required")
	}
	if repo == nil {
		return nil, errors.New("[NewManager] session repo is required")
	}

	m := &Manager{
		gateway:    gw,
		repo:       repo,
		validator:  validation.New(),
		logger:     zerolog.Nop(),
		nowTime:    time.Now,
		sessionTTL: defaultSessionTTL,
		state:      StateUnknown,
		resolved:   make(chan struct{}),
	}
	for _, opt := range options {
		opt(m)
	}

	gw.SetCredentials(m)
	gw.OnUnauthorized(m.handleUnauthorized)
	return m, nil
}

// Restore resolves the initial state from the stored session.
// A stored session is checked against GET /auth/me/; when the backend cannot be reached
// the stored snapshot is trusted until a request is rejected.
func (m *Manager) Restore(ctx context.Context) error {
	stored, err := m.repo.Load()
	if err != nil {
		if errors.Is(err, sessions.ErrNotFound) {
			m.setAnonymous()
			return nil
		}
		if errors.Is(err, ErrStoreCorrupted) {
			_ = m.clearAll("stored session corrupted")
		}
		m.setAnonymous()
		return errors.Wrap(err, "[Manager.Restore] Load")
	}

	if !stored.Valid() || stored.Expired(m.nowTime()) {
		m.logger.Info().Msg("stored session expired")
		return m.clearAll("expired")
	}

	m.lock.Lock()
	m.session = stored
	m.lock.Unlock()

	var payload users.Payload
	err = m.gateway.Get(ctx, MePath, &payload)
	switch {
	case err == nil:
		m.lock.Lock()
		defer m.lock.Unlock()
		if m.session != stored {
			// Logged out or replaced while validating
			return nil
		}
		m.transition(StateAuthenticated)
		if payload.ID.IsZero() && payload.Username == "" {
			// Nothing to refresh from, keep the stored user
			return nil
		}
		m.session.User = users.Normalize(payload)
		if err := m.repo.Save(m.session); err != nil {
			return errors.Wrap(err, "[Manager.Restore] Save")
		}
		return nil

	case gateway.IsUnauthorized(err):
		// The 401 hook has already cleared the session
		m.setAnonymous()
		return nil

	default:
		m.logger.Warn().Err(err).Msg("could not validate stored session, keeping it")
		m.lock.Lock()
		if m.session == stored {
			m.transition(StateAuthenticated)
		}
		m.lock.Unlock()
		return nil
	}
}

// Login authenticates with a username and password. Any failure leaves the client
// anonymous with nothing persisted.
func (m *Manager) Login(ctx context.Context, username, password string) (*users.User, error) {
	params := LoginParameters{Username: username, Password: password}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	var resp LoginResponse
	if err := m.gateway.Post(ctx, LoginPath, params, &resp); err != nil {
		_ = m.clearAll("login failed")
		return nil, errors.Wrap(err, "[Manager.Login] login")
	}
	if !resp.complete() {
		_ = m.clearAll("login response incomplete")
		return nil, ErrMalformedLogin
	}
	return m.establish(resp.Token, resp.SessionCode, *resp.User)
}

// UpdateUserAfterSocialLogin stores a session issued by the social login exchange.
// Credentials are live in memory before the store is written.
func (m *Manager) UpdateUserAfterSocialLogin(tok string, payload users.Payload) (*users.User, error) {
	if tok == "" {
		_ = m.clearAll("social login without token")
		return nil, ErrMalformedLogin
	}
	return m.establish(tok, "", payload)
}

// SocialLogin trades verified provider tokens for a portal session
func (m *Manager) SocialLogin(ctx context.Context, creds SocialCredentials) (*users.User, error) {
	if err := m.validator.Validate(creds); err != nil {
		return nil, err
	}

	var resp LoginResponse
	if err := m.gateway.Post(ctx, SocialLoginPath, creds, &resp); err != nil {
		_ = m.clearAll("social login failed")
		return nil, errors.Wrap(err, "[Manager.SocialLogin] social login")
	}
	if !resp.complete() {
		_ = m.clearAll("social login response incomplete")
		return nil, ErrMalformedLogin
	}
	return m.establish(resp.Token, resp.SessionCode, *resp.User)
}

func (m *Manager) establish(tok, sessionCode string, payload users.Payload) (*users.User, error) {
	session := &sessions.Session{
		Token:       tok,
		SessionCode: sessionCode,
		Expiry:      token.Expiry(tok, m.nowTime(), m.sessionTTL),
		User:        users.Normalize(payload),
	}

	m.lock.Lock()
	m.session = session
	m.transition(StateAuthenticated)
	err := m.repo.Save(session)
	m.lock.Unlock()

	if err != nil {
		_ = m.clearAll("session could not be stored")
		return nil, errors.Wrap(err, "[Manager.establish] Save")
	}
	return session.User, nil
}

// Logout tells the backend best-effort, then clears everything locally. Only a local
// failure is returned.
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.gateway.Post(ctx, LogoutPath, nil, nil); err != nil {
		m.logger.Warn().Err(err).Msg("remote logout failed")
	}
	return m.clearAll("logout")
}

// RefreshUser reloads the user from GET /auth/me/ and updates the stored snapshot
func (m *Manager) RefreshUser(ctx context.Context) (*users.User, error) {
	if !m.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}

	var payload users.Payload
	if err := m.gateway.Get(ctx, MePath, &payload); err != nil {
		return nil, errors.Wrap(err, "[Manager.RefreshUser] me")
	}
	return m.replaceUser(payload)
}

// UpdateProfile patches the user's profile fields and stores the result
func (m *Manager) UpdateProfile(ctx context.Context, update ProfileUpdate) (*users.User, error) {
	if !m.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}
	if err := m.validator.Validate(update); err != nil {
		return nil, err
	}
	if update.Empty() {
		return m.CurrentUser(), nil
	}

	var payload users.Payload
	if err := m.gateway.Patch(ctx, MePath, update, &payload); err != nil {
		return nil, errors.Wrap(err, "[Manager.UpdateProfile] patch")
	}
	if payload.ID.IsZero() && payload.Username == "" {
		// Some deployments answer with a bare message
		return m.RefreshUser(ctx)
	}
	return m.replaceUser(payload)
}

func (m *Manager) replaceUser(payload users.Payload) (*users.User, error) {
	user := users.Normalize(payload)

	m.lock.Lock()
	defer m.lock.Unlock()
	if m.session == nil {
		return nil, ErrNotAuthenticated
	}
	m.session.User = user
	if err := m.repo.Save(m.session); err != nil {
		return user, errors.Wrap(err, "[Manager.replaceUser] Save")
	}
	return user, nil
}

// handleUnauthorized runs for every 401. Only the first one for a session clears it.
func (m *Manager) handleUnauthorized(apiErr *gateway.APIError) {
	m.lock.Lock()
	if m.session == nil {
		m.lock.Unlock()
		return
	}
	m.session = nil
	m.transition(StateAnonymous)
	err := m.repo.Clear()
	m.lock.Unlock()

	m.logger.Info().Str("path", apiErr.Path).Msg("session rejected by backend, logged out")
	if err != nil {
		m.logger.Error().Err(err).Msg("failed to clear stored session")
	}
}

// clearAll is the single clear path shared by logout and failed logins
func (m *Manager) clearAll(reason string) error {
	m.lock.Lock()
	m.session = nil
	m.transition(StateAnonymous)
	err := m.repo.Clear()
	m.lock.Unlock()

	m.logger.Info().Str("reason", reason).Msg("session cleared")
	if err != nil {
		return errors.Wrap(err, "[Manager.clearAll] Clear")
	}
	return nil
}

func (m *Manager) setAnonymous() {
	m.lock.Lock()
	defer m.lock.Unlock()
	if m.session == nil {
		m.transition(StateAnonymous)
	}
}

// transition must be called with the lock held
func (m *Manager) transition(state State) {
	if m.state != state {
		m.logger.Debug().Stringer("from", m.state).Stringer("to", state).Msg("auth state")
	}
	m.state = state
	if state != StateUnknown {
		m.once.Do(func() { close(m.resolved) })
	}
}

// Credentials implements gateway.CredentialSource
func (m *Manager) Credentials() gateway.Credentials {
	m.lock.RLock()
	defer m.lock.RUnlock()
	if m.session == nil {
		return gateway.Credentials{}
	}
	return gateway.Credentials{Token: m.session.Token, SessionCode: m.session.SessionCode}
}

func (m *Manager) State() State {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.state
}

func (m *Manager) IsAuthenticated() bool {
	return m.State() == StateAuthenticated
}

// CurrentUser returns a copy of the signed-in user, or nil
func (m *Manager) CurrentUser() *users.User {
	m.lock.RLock()
	defer m.lock.RUnlock()
	if m.state != StateAuthenticated || m.session == nil {
		return nil
	}
	return m.session.Clone().User
}

// Session returns a copy of the current session, or nil
func (m *Manager) Session() *sessions.Session {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.session.Clone()
}

// WaitResolved blocks until the state is no longer Unknown
func (m *Manager) WaitResolved(ctx context.Context) error {
	select {
	case <-m.resolved:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close drops the in-memory session. The stored session is kept for the next run.
func (m *Manager) Close() {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.session = nil
	m.transition(StateAnonymous)
}
