package config

import "github.com/spf13/viper"

const (
	keyOIDCIssuer       = "oidc_issuer"
	keyOIDCClientID     = "oidc_client_id"
	keyOIDCClientSecret = "oidc_client_secret"
	keySocialProvider   = "social_provider"
	keyCallbackAddr     = "callback_addr"
)

type SocialConfig interface {
	GetOIDCIssuer() string
	GetOIDCClientID() string
	GetOIDCClientSecret() string
	GetSocialProvider() string
	GetCallbackAddr() string
	SocialEnabled() bool
}

type Social struct {
	v *viper.Viper
}

var _ SocialConfig = Social{}

func (s Social) GetOIDCIssuer() string {
	return s.v.GetString(keyOIDCIssuer)
}

func (s Social) GetOIDCClientID() string {
	return s.v.GetString(keyOIDCClientID)
}

func (s Social) GetOIDCClientSecret() string {
	return s.v.GetString(keyOIDCClientSecret)
}

// GetSocialProvider names the provider to the backend (e.g. "google")
func (s Social) GetSocialProvider() string {
	return s.v.GetString(keySocialProvider)
}

// GetCallbackAddr is the loopback address the OAuth redirect lands on
func (s Social) GetCallbackAddr() string {
	return s.v.GetString(keyCallbackAddr)
}

func (s Social) SocialEnabled() bool {
	return s.GetOIDCIssuer() != "" && s.GetOIDCClientID() != ""
}
