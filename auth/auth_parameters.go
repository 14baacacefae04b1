package auth

import (
	"strings"

	"github.com/studyhub/portal/users"
)

// LoginParameters is the body of POST /auth/login/
type LoginParameters struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate rejects blank credentials before any request is made
func (p LoginParameters) Validate() error {
	if strings.TrimSpace(p.Username) == "" || p.Password == "" {
		return ErrMissingCredentials
	}
	return nil
}

// LoginResponse is what the backend returns for password and social login.
// SessionCode is only issued by some deployments.
type LoginResponse struct {
	User        *users.Payload `json:"user"`
	Token       string         `json:"token"`
	Message     string         `json:"message,omitempty"`
	SessionCode string         `json:"session_code,omitempty"`
}

func (r *LoginResponse) complete() bool {
	return r != nil && r.Token != "" && r.User != nil
}

// SocialCredentials are the provider tokens posted to POST /auth/social/login/ once the
// ID token has been verified locally.
type SocialCredentials struct {
	Provider    string `json:"provider" validate:"notblank"`
	IDToken     string `json:"id_token" validate:"notblank"`
	AccessToken string `json:"access_token,omitempty"`
}

// ProfileUpdate is the body of PATCH /auth/me/. Empty fields are left unchanged.
type ProfileUpdate struct {
	FirstName    string   `json:"first_name,omitempty" validate:"omitempty,max=150"`
	LastName     string   `json:"last_name,omitempty" validate:"omitempty,max=150"`
	Email        string   `json:"email,omitempty" validate:"omitempty,email"`
	Skills       []string `json:"skills,omitempty" validate:"omitempty,dive,notblank"`
	Availability string   `json:"availability,omitempty" validate:"omitempty,max=255"`
	College      string   `json:"college,omitempty" validate:"omitempty,max=255"`
	Branch       string   `json:"branch,omitempty" validate:"omitempty,max=255"`
	Bio          string   `json:"bio,omitempty" validate:"omitempty,max=2000"`
}

// Empty reports whether the update would change nothing
func (p ProfileUpdate) Empty() bool {
	return p.FirstName == "" && p.LastName == "" && p.Email == "" && len(p.Skills) == 0 &&
		p.Availability == "" && p.College == "" && p.Branch == "" && p.Bio == ""
}
