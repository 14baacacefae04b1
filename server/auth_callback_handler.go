package server

import (
	"fmt"
	"html"
	"net/http"

	"github.com/pkg/errors"
	portalerrors "github.com/studyhub/portal/internal/errors"
	"golang.org/x/oauth2"
)

const (
	signedInPage = "<!doctype html><title>Signed in</title><p>Signed in. You can close this window and return to the terminal.</p>"
	failedPage   = "<!doctype html><title>Sign-in failed</title><p>Sign-in failed: %s</p>"
)

func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != RouteIndex {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = fmt.Fprint(w, "<!doctype html><title>Portal sign-in</title><p>Waiting for the sign-in redirect.</p>")
	}
}

func (s *Server) OAuthCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// r.FormValue works for both query params and POST form data
		state := r.FormValue("state")
		code := r.FormValue("code")
		errorParam := r.FormValue("error")
		errorDesc := r.FormValue("error_description")

		if state == "" {
			http.Error(w, "Missing state parameter", http.StatusBadRequest)
			return
		}

		// Unknown states are not delivered: they do not belong to a flow we started
		authState, err := s.authState.Get(state)
		if err != nil || authState == nil {
			http.Error(w, portalerrors.ErrInvalidState.Error(), http.StatusBadRequest)
			return
		}

		// Clean up state after use
		if err := s.authState.Delete(state); err != nil {
			s.fail(w, http.StatusInternalServerError, errors.Wrap(err, "[OAuthCallbackHandler] Delete"))
			return
		}

		if s.nowTime().Sub(authState.CreatedAt) > authFlowTimeout {
			s.fail(w, http.StatusBadRequest, errors.Wrap(portalerrors.ErrInvalidState, "sign-in took too long"))
			return
		}

		if errorParam != "" {
			s.fail(w, http.StatusBadRequest, errors.Errorf("authorization failed: %s %s", errorParam, errorDesc))
			return
		}
		if code == "" {
			s.fail(w, http.StatusBadRequest, errors.New("missing code parameter"))
			return
		}

		oauth2Token, err := s.oidc.OAuth2Config.Exchange(r.Context(), code, oauth2.VerifierOption(authState.CodeVerifier))
		if err != nil {
			s.fail(w, http.StatusBadGateway, errors.Wrap(err, "token exchange failed"))
			return
		}

		rawIDToken, ok := oauth2Token.Extra("id_token").(string)
		if !ok || rawIDToken == "" {
			s.fail(w, http.StatusBadGateway, portalerrors.ErrMissingIDToken)
			return
		}

		idToken, err := s.oidc.OidcVerifier.Verify(r.Context(), rawIDToken)
		if err != nil {
			s.fail(w, http.StatusUnauthorized, errors.Wrap(err, "ID token verification failed"))
			return
		}

		var claims struct {
			Nonce string `json:"nonce"`
			Sub   string `json:"sub"`
			Email string `json:"email"`
			Name  string `json:"name"`
		}
		if err := idToken.Claims(&claims); err != nil {
			s.fail(w, http.StatusBadGateway, errors.Wrap(err, "failed to extract claims"))
			return
		}

		// Validate nonce to prevent replay attacks
		if claims.Nonce != authState.Nonce {
			s.fail(w, http.StatusUnauthorized, portalerrors.ErrInvalidNonce)
			return
		}

		s.deliver(outcome{result: SocialResult{
			Provider:    authState.Provider,
			IDToken:     rawIDToken,
			AccessToken: oauth2Token.AccessToken,
			Subject:     claims.Sub,
			Email:       claims.Email,
			Name:        claims.Name,
		}})

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = fmt.Fprint(w, signedInPage)
	}
}

// fail reports err to the browser and to the waiting caller
func (s *Server) fail(w http.ResponseWriter, status int, err error) {
	s.logger.Warn().Err(err).Msg("social login callback failed")
	s.deliver(outcome{err: err})

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = fmt.Fprintf(w, failedPage, html.EscapeString(err.Error()))
}
