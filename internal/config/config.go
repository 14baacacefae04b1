package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const envPrefix = "PORTAL"

type Config interface {
	EnvConfig
	SessionConfig
	UploadConfig
	SocialConfig
}

type EnvConfig interface {
	GetAppName() string
	GetAPIOrigin() string
	GetAPIBaseURL() string
	GetDataFolder() string
	GetLogLevel() string
	GetEnv() string
}

type mainConfig struct {
	EnvVars
	Session
	Upload
	Social
}

// New wraps a loaded viper instance in the typed getters used across the client.
func New(v *viper.Viper) Config {
	return mainConfig{
		EnvVars: EnvVars{v: v},
		Session: Session{v: v},
		Upload:  Upload{v: v},
		Social:  Social{v: v},
	}
}

// Load reads .env, PORTAL_* environment variables and an optional YAML config file.
// An explicit configFile must exist; otherwise portal.yaml is looked up in the working
// directory and the data folder.
func Load(configFile string) (*viper.Viper, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "[config.Load] reading .env")
	}

	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "[config.Load] reading %s", configFile)
		}
		return v, nil
	}

	v.SetConfigName("portal")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath(v.GetString(keyDataFolder))
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "[config.Load] reading portal.yaml")
		}
	}
	return v, nil
}

// SetDefaults registers every key with its default so env lookups and Get calls agree.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(keyAppName, "StudyHub Portal")
	v.SetDefault(keyAPIOrigin, "http://localhost:8000")
	v.SetDefault(keyDataFolder, defaultDataFolder())
	v.SetDefault(keyEnv, "DEV")
	v.SetDefault(keyLogLevel, "")
	v.SetDefault(keySessionTTL, 24*time.Hour)
	v.SetDefault(keyStorePassphrase, "")
	v.SetDefault(keyUploadMaxMB, 10)
	v.SetDefault(keyUploadExtensions, ".pdf,.doc,.docx,.ppt,.pptx,.txt,.zip,.png,.jpg,.jpeg")
	v.SetDefault(keyOIDCIssuer, "https://accounts.google.com")
	v.SetDefault(keyOIDCClientID, "")
	v.SetDefault(keyOIDCClientSecret, "")
	v.SetDefault(keySocialProvider, "google")
	v.SetDefault(keyCallbackAddr, "127.0.0.1:8765")
}

func defaultDataFolder() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./data"
	}
	return filepath.Join(home, ".studyhub")
}
