package config

import (
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

const (
	keySessionTTL      = "session_ttl"
	keyStorePassphrase = "store_passphrase"

	sessionFileName = "session.json"
)

type SessionConfig interface {
	GetSessionTTL() time.Duration
	GetSessionFile() string
	GetStorePassphrase() string
}

type Session struct {
	v *viper.Viper
}

var _ SessionConfig = Session{}

// GetSessionTTL is used when the backend token carries no expiry of its own
func (s Session) GetSessionTTL() time.Duration {
	ttl := s.v.GetDuration(keySessionTTL)
	if ttl <= 0 {
		return 24 * time.Hour
	}
	return ttl
}

func (s Session) GetSessionFile() string {
	return filepath.Join(s.v.GetString(keyDataFolder), sessionFileName)
}

// GetStorePassphrase returns the passphrase used to seal the session file; empty stores plain JSON
func (s Session) GetStorePassphrase() string {
	return s.v.GetString(keyStorePassphrase)
}
