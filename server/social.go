package server

import (
	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/studyhub/portal/server/authflowrepo"
	"golang.org/x/oauth2"
)

// Begin starts a login flow and returns the URL the user should open.
// The state, nonce and PKCE verifier are kept until the callback arrives.
func (s *Server) Begin() (string, error) {
	state := uuid.New().String()
	nonce := uuid.New().String()
	verifier := oauth2.GenerateVerifier()

	err := s.authState.Upsert(state, &authflowrepo.AuthFlowState{
		Provider:     s.provider,
		CodeVerifier: verifier,
		Nonce:        nonce,
		CreatedAt:    s.nowTime(),
	})
	if err != nil {
		return "", errors.Wrap(err, "[Server.Begin] Upsert")
	}

	return s.oidc.OAuth2Config.AuthCodeURL(state,
		oauth2.S256ChallengeOption(verifier),
		oidc.Nonce(nonce),
	), nil
}
