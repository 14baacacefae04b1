package config

import (
	"strings"

	"github.com/spf13/viper"
)

const (
	keyAppName    = "app_name"
	keyAPIOrigin  = "api_origin"
	keyDataFolder = "data_folder"
	keyEnv        = "env"
	keyLogLevel   = "log_level"

	apiPath = "/api"
)

type EnvVars struct {
	v *viper.Viper
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetAppName() string {
	return e.v.GetString(keyAppName)
}

// GetAPIOrigin returns the backend origin without a trailing slash (e.g. "https://portal.example.edu")
func (e EnvVars) GetAPIOrigin() string {
	return strings.TrimRight(e.v.GetString(keyAPIOrigin), "/")
}

// GetAPIBaseURL returns the origin with the REST prefix every endpoint hangs off
func (e EnvVars) GetAPIBaseURL() string {
	return e.GetAPIOrigin() + apiPath
}

func (e EnvVars) GetDataFolder() string {
	return e.v.GetString(keyDataFolder)
}

// GetLogLevel returns the configured zerolog level; empty means "derive from env"
func (e EnvVars) GetLogLevel() string {
	return strings.ToLower(e.v.GetString(keyLogLevel))
}

func (e EnvVars) GetEnv() string {
	env := e.v.GetString(keyEnv)
	if env == "" {
		return "DEV"
	}
	return strings.ToUpper(env)
}
