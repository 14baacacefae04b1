package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
	"github.com/studyhub/portal/internal/config"
)

func newTestConfig(t *testing.T, overrides map[string]any) config.Config {
	t.Helper()
	v := viper.New()
	config.SetDefaults(v)
	for k, val := range overrides {
		v.Set(k, val)
	}
	return config.New(v)
}

func TestDefaults(t *testing.T) {
	c := newTestConfig(t, nil)

	require.Equal(t, "http://localhost:8000/api", c.GetAPIBaseURL())
	require.Equal(t, "DEV", c.GetEnv())
	require.Equal(t, 24*time.Hour, c.GetSessionTTL())
	require.Equal(t, int64(10), c.GetUploadMaxMB())
	require.Contains(t, c.GetUploadExtensions(), ".pdf")
	require.False(t, c.SocialEnabled())
}

func TestOverrides(t *testing.T) {
	c := newTestConfig(t, map[string]any{
		"api_origin":        "https://portal.example.edu/",
		"data_folder":       "/tmp/portal",
		"upload_extensions": "PDF, .Zip",
		"upload_max_mb":     5,
		"oidc_client_id":    "client-1",
		"env":               "prod",
	})

	require.Equal(t, "https://portal.example.edu/api", c.GetAPIBaseURL())
	require.Equal(t, filepath.Join("/tmp/portal", "session.json"), c.GetSessionFile())
	require.Equal(t, []string{".pdf", ".zip"}, c.GetUploadExtensions())
	require.Equal(t, int64(5), c.GetUploadMaxMB())
	require.True(t, c.SocialEnabled())
	require.Equal(t, "PROD", c.GetEnv())
}

func TestLoadFromEnvAndFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "portal.yaml")
	require.NoError(t, os.WriteFile(file, []byte("app_name: Campus Hub\nupload_max_mb: 3\n"), 0o600))
	t.Setenv("PORTAL_API_ORIGIN", "https://api.campus.test")

	v, err := config.Load(file)
	require.NoError(t, err)
	c := config.New(v)

	require.Equal(t, "Campus Hub", c.GetAppName())
	require.Equal(t, int64(3), c.GetUploadMaxMB())
	require.Equal(t, "https://api.campus.test/api", c.GetAPIBaseURL())
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
