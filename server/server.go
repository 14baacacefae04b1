// Package server runs the loopback HTTP server that completes social login.
//
// Begin builds the provider's authorization URL; the provider redirects the browser back
// to /callback, where the code is exchanged, the ID token verified and the result handed
// to whoever is blocked in Wait.
package server

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	portalerrors "github.com/studyhub/portal/internal/errors"
	"github.com/studyhub/portal/server/authflowrepo"
	"golang.org/x/oauth2"
)

const (
	DefaultAddr     = "127.0.0.1:8765"
	authFlowTimeout = 10 * time.Minute
)

type OidcConfig struct {
	OidcProvider *oidc.Provider
	OAuth2Config *oauth2.Config
	OidcVerifier *oidc.IDTokenVerifier
}

// SocialResult is a verified provider sign-in, ready to be traded for a portal session
type SocialResult struct {
	Provider    string
	IDToken     string
	AccessToken string
	Subject     string
	Email       string
	Name        string
}

type outcome struct {
	result SocialResult
	err    error
}

type Server struct {
	env       string // Environment (e.g., "DEV", "PROD")
	provider  string
	addr      string
	mux       *http.ServeMux
	routes    []string
	oidc      OidcConfig
	authState authflowrepo.Repo
	logger    zerolog.Logger
	nowTime   func() time.Time
	results   chan outcome

	lock       sync.Mutex
	httpServer *http.Server
	listener   net.Listener
}

// ServerOption defines a function type to modify the Server instance.
type ServerOption func(*Server)

func WithEnv(env string) ServerOption {
	return func(s *Server) {
		s.env = strings.ToUpper(env)
	}
}

// WithProvider sets the provider name reported to the backend
func WithProvider(provider string) ServerOption {
	return func(s *Server) {
		s.provider = provider
	}
}

func WithAddr(addr string) ServerOption {
	return func(s *Server) {
		if addr != "" {
			s.addr = addr
		}
	}
}

func WithLogger(logger zerolog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServerOption {
	return func(s *Server) {
		s.nowTime = nowFunc
	}
}

func New(oidcConfig OidcConfig, authStateRepo authflowrepo.Repo, options ...ServerOption) (*Server, error) {
	if oidcConfig.OAuth2Config == nil {
		return nil, errors.New("[Server New] OAuth2 config is required")
	}
	if oidcConfig.OidcVerifier == nil {
		return nil, errors.New("[Server New] ID token verifier is required")
	}
	if authStateRepo == nil {
		return nil, errors.New("[Server New] auth flow repo is required")
	}

	s := &Server{
		env:       "DEV",
		provider:  "google",
		addr:      DefaultAddr,
		mux:       http.NewServeMux(),
		oidc:      oidcConfig,
		authState: authStateRepo,
		logger:    zerolog.Nop(),
		nowTime:   time.Now,
		results:   make(chan outcome, 1),
	}
	for _, opt := range options {
		opt(s)
	}

	s.initRoutes()
	s.logRoutes()
	return s, nil
}

// SocialSettings is the provider configuration NewOidcConfig needs
type SocialSettings interface {
	GetOIDCIssuer() string
	GetOIDCClientID() string
	GetOIDCClientSecret() string
	GetCallbackAddr() string
	SocialEnabled() bool
}

// NewOidcConfig discovers the provider and builds the OAuth2 client for the loopback redirect
func NewOidcConfig(ctx context.Context, settings SocialSettings) (OidcConfig, error) {
	if !settings.SocialEnabled() {
		return OidcConfig{}, portalerrors.ErrSocialNotConfig
	}

	provider, err := oidc.NewProvider(ctx, settings.GetOIDCIssuer())
	if err != nil {
		return OidcConfig{}, errors.Wrap(err, "[NewOidcConfig] provider discovery")
	}

	addr := settings.GetCallbackAddr()
	if addr == "" {
		addr = DefaultAddr
	}

	oauth2Config := &oauth2.Config{
		ClientID:     settings.GetOIDCClientID(),
		ClientSecret: settings.GetOIDCClientSecret(),
		Endpoint:     provider.Endpoint(),
		RedirectURL:  "http://" + addr + RouteCallback,
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
	}

	return OidcConfig{
		OidcProvider: provider,
		OAuth2Config: oauth2Config,
		OidcVerifier: provider.Verifier(&oidc.Config{ClientID: oauth2Config.ClientID}),
	}, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			s.logRoute(parts[0], parts[1])
		} else {
			s.logRoute("", parts[0])
		}
	}
}

func (s *Server) logRoute(method, path string) {
	displayMethod := methodColor(method).Sprintf(" %-7s", method)
	s.logger.Debug().Msgf("[%s] %s", displayMethod, path)
}

// Start listens on the configured loopback address and serves in the background
func (s *Server) Start() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.httpServer != nil {
		return errors.New("[Server.Start] already started")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return errors.Wrapf(err, "[Server.Start] listen on %s", s.addr)
	}
	s.listener = listener
	s.httpServer = &http.Server{Handler: s, ReadHeaderTimeout: 10 * time.Second}

	go func(srv *http.Server, l net.Listener) {
		s.logger.Debug().Str("addr", l.Addr().String()).Msg("callback server listening")
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.deliver(outcome{err: errors.Wrap(err, "[Server.Start] Serve")})
		}
	}(s.httpServer, listener)
	return nil
}

// Addr returns the bound address once started, otherwise the configured one
func (s *Server) Addr() string {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.lock.Lock()
	srv := s.httpServer
	s.httpServer = nil
	s.listener = nil
	s.lock.Unlock()

	if srv == nil {
		return nil
	}
	if err := srv.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "[Server.Shutdown]")
	}
	return nil
}

// deliver hands an outcome to Wait without blocking the handler
func (s *Server) deliver(o outcome) {
	select {
	case s.results <- o:
	default:
		s.logger.Warn().Msg("social login result dropped, nobody waiting")
	}
}

// Wait blocks until a callback completes or ctx ends
func (s *Server) Wait(ctx context.Context) (SocialResult, error) {
	select {
	case o := <-s.results:
		return o.result, o.err
	case <-ctx.Done():
		return SocialResult{}, ctx.Err()
	}
}
