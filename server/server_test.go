package server_test

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	portalerrors "github.com/studyhub/portal/internal/errors"
	"github.com/studyhub/portal/server"
	"github.com/studyhub/portal/server/authflowrepo"
	"golang.org/x/oauth2"
)

const (
	testIssuer   = "https://accounts.example.com"
	testClientID = "portal-cli"
	testCode     = "good-code"
)

// provider fakes the token endpoint of an OIDC provider
type provider struct {
	t   *testing.T
	key *rsa.PrivateKey
	srv *httptest.Server

	lock  sync.Mutex
	nonce string
}

func newProvider(t *testing.T) *provider {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	p := &provider{t: t, key: key}
	p.srv = httptest.NewServer(http.HandlerFunc(p.token))
	t.Cleanup(p.srv.Close)
	return p
}

func (p *provider) setNonce(nonce string) {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.nonce = nonce
}

func (p *provider) token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil || r.PostForm.Get("code") != testCode || r.PostForm.Get("code_verifier") == "" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": "invalid_grant"}`))
		return
	}

	p.lock.Lock()
	nonce := p.nonce
	p.lock.Unlock()

	now := time.Now()
	idToken, err := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"iss":   testIssuer,
		"aud":   testClientID,
		"sub":   "google-123",
		"email": "asha@example.edu",
		"name":  "Asha Rao",
		"nonce": nonce,
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
	}).SignedString(p.key)
	require.NoError(p.t, err)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"access_token": "provider-access",
		"token_type":   "Bearer",
		"expires_in":   3600,
		"id_token":     idToken,
	})
}

func (p *provider) oidcConfig() server.OidcConfig {
	keySet := &oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{&p.key.PublicKey}}
	return server.OidcConfig{
		OAuth2Config: &oauth2.Config{
			ClientID:     testClientID,
			ClientSecret: "secret",
			Endpoint: oauth2.Endpoint{
				AuthURL:  testIssuer + "/authorize",
				TokenURL: p.srv.URL + "/token",
			},
			RedirectURL: "http://127.0.0.1:8765/callback",
			Scopes:      []string{oidc.ScopeOpenID, "email"},
		},
		OidcVerifier: oidc.NewVerifier(testIssuer, keySet, &oidc.Config{ClientID: testClientID}),
	}
}

func setupServer(t *testing.T, options ...server.ServerOption) (*server.Server, *provider) {
	t.Helper()

	p := newProvider(t)
	s, err := server.New(p.oidcConfig(), authflowrepo.NewInMemoryRepo(), options...)
	require.NoError(t, err)
	return s, p
}

// begin starts a flow and returns its state and nonce
func begin(t *testing.T, s *server.Server) (string, string) {
	t.Helper()

	authURL, err := s.Begin()
	require.NoError(t, err)
	u, err := url.Parse(authURL)
	require.NoError(t, err)

	q := u.Query()
	require.Equal(t, testClientID, q.Get("client_id"))
	require.Equal(t, "S256", q.Get("code_challenge_method"))
	require.NotEmpty(t, q.Get("code_challenge"))
	require.NotEmpty(t, q.Get("state"))
	require.NotEmpty(t, q.Get("nonce"))
	return q.Get("state"), q.Get("nonce")
}

func callback(s *server.Server, query url.Values) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, server.RouteCallback+"?"+query.Encode(), nil))
	return rec
}

func waitShort(s *server.Server) (server.SocialResult, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	return s.Wait(ctx)
}

func TestNewRequiresConfig(t *testing.T) {
	_, err := server.New(server.OidcConfig{}, authflowrepo.NewInMemoryRepo())
	require.Error(t, err)

	p := newProvider(t)
	_, err = server.New(p.oidcConfig(), nil)
	require.Error(t, err)
}

func TestCallbackDeliversVerifiedResult(t *testing.T) {
	s, p := setupServer(t, server.WithProvider("google"))
	state, nonce := begin(t, s)
	p.setNonce(nonce)

	rec := callback(s, url.Values{"state": {state}, "code": {testCode}})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	result, err := waitShort(s)
	require.NoError(t, err)
	require.Equal(t, "google", result.Provider)
	require.Equal(t, "provider-access", result.AccessToken)
	require.Equal(t, "google-123", result.Subject)
	require.Equal(t, "asha@example.edu", result.Email)
	require.NotEmpty(t, result.IDToken)

	// The state is single use
	rec = callback(s, url.Values{"state": {state}, "code": {testCode}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCallbackRejectsUnknownState(t *testing.T) {
	s, _ := setupServer(t)
	begin(t, s)

	rec := callback(s, url.Values{"state": {"forged"}, "code": {testCode}})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	_, err := waitShort(s)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCallbackRejectsNonceMismatch(t *testing.T) {
	s, p := setupServer(t)
	state, _ := begin(t, s)
	p.setNonce("replayed-nonce")

	rec := callback(s, url.Values{"state": {state}, "code": {testCode}})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	_, err := waitShort(s)
	require.ErrorIs(t, err, portalerrors.ErrInvalidNonce)
}

func TestCallbackFailures(t *testing.T) {
	tests := []struct {
		name   string
		query  func(state string) url.Values
		status int
	}{
		{
			name:   "provider error",
			query:  func(state string) url.Values { return url.Values{"state": {state}, "error": {"access_denied"}} },
			status: http.StatusBadRequest,
		},
		{
			name:   "missing code",
			query:  func(state string) url.Values { return url.Values{"state": {state}} },
			status: http.StatusBadRequest,
		},
		{
			name:   "bad code",
			query:  func(state string) url.Values { return url.Values{"state": {state}, "code": {"stolen"}} },
			status: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := setupServer(t)
			state, _ := begin(t, s)

			rec := callback(s, tt.query(state))
			require.Equal(t, tt.status, rec.Code)

			_, err := waitShort(s)
			require.Error(t, err)
			require.NotErrorIs(t, err, context.DeadlineExceeded)
		})
	}
}

func TestCallbackRejectsStaleFlow(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	s, p := setupServer(t, server.WithNowTime(func() time.Time { return clock() }))
	state, nonce := begin(t, s)
	p.setNonce(nonce)

	clock = func() time.Time { return now.Add(11 * time.Minute) }
	rec := callback(s, url.Values{"state": {state}, "code": {testCode}})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	_, err := waitShort(s)
	require.ErrorIs(t, err, portalerrors.ErrInvalidState)
}

func TestStartServesLoopback(t *testing.T) {
	s, _ := setupServer(t, server.WithAddr("127.0.0.1:0"))
	require.NoError(t, s.Start())
	defer func() { require.NoError(t, s.Shutdown(context.Background())) }()
	require.Error(t, s.Start())

	resp, err := http.Get("http://" + s.Addr() + server.RouteIndex)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	missing, err := http.Get("http://" + s.Addr() + "/favicon.ico")
	require.NoError(t, err)
	missing.Body.Close()
	require.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestRecoverMiddleware(t *testing.T) {
	s, _ := setupServer(t)
	handler := server.ChainMiddleware(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}, s.HTMLMiddleWare()...)

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}
