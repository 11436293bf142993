package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://127.0.0.1:8080", c.ServerEndpoint)
	assert.Equal(t, 30*time.Second, c.RequestTimeout)
	assert.Equal(t, int64(100<<20), c.MaxFileSize)
	assert.Equal(t, 24*time.Hour, c.DefaultExpiry)
	assert.Equal(t, 600_000, c.Iterations)
	assert.Equal(t, "AES256-GCM", c.Algorithm)
	assert.Equal(t, uint64(3), c.RetryAttempts)
	assert.Equal(t, "http://127.0.0.1:8080", c.ShareBase())
}

func TestLoadConfig_NoArgsGivesDefaults(t *testing.T) {
	cfg, err := LoadConfig(nil)
	require.NoError(t, err)

	var want Config
	want.LoadDefaults()
	assert.Equal(t, &want, cfg)
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_SourcesAndPrecedence(t *testing.T) {
	yamlPath := writeFile(t, "client.yaml", `
server_endpoint: http://files.internal:8080
share_base_url: https://share.example.com
request_timeout: 10s
default_expiry: 1h
retry_base_delay: 50ms
log_backend: logrus
`)
	jsonPath := writeFile(t, "client.json", `{"server_endpoint":"http://json:8080","iterations":700000,"max_expiry":3600000000000}`)

	t.Run("yaml file", func(t *testing.T) {
		cfg, err := LoadConfig([]string{"-c", yamlPath, "upload", "a.txt"})
		require.NoError(t, err)

		assert.Equal(t, "http://files.internal:8080", cfg.ServerEndpoint)
		assert.Equal(t, "https://share.example.com", cfg.ShareBase())
		assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
		assert.Equal(t, time.Hour, cfg.DefaultExpiry)
		assert.Equal(t, 50*time.Millisecond, cfg.RetryBaseDelay)
		assert.Equal(t, "logrus", cfg.LogBackend)
		// untouched keys keep defaults
		assert.Equal(t, 600_000, cfg.Iterations)
		assert.Equal(t, 30*24*time.Hour, cfg.MaxExpiry)
	})

	t.Run("json file", func(t *testing.T) {
		cfg, err := LoadConfig([]string{"--config=" + jsonPath})
		require.NoError(t, err)

		assert.Equal(t, "http://json:8080", cfg.ServerEndpoint)
		assert.Equal(t, 700_000, cfg.Iterations)
		assert.Equal(t, time.Hour, cfg.MaxExpiry)
	})

	t.Run("flags override the file", func(t *testing.T) {
		cfg, err := LoadConfig([]string{"-c", yamlPath, "--server", "http://flag:9090", "-timeout", "2s", "download", "link"})
		require.NoError(t, err)

		assert.Equal(t, "http://flag:9090", cfg.ServerEndpoint)
		assert.Equal(t, 2*time.Second, cfg.RequestTimeout)
		assert.Equal(t, "https://share.example.com", cfg.ShareBaseURL)
	})
}

func TestLoadConfig_Errors(t *testing.T) {
	unknown := writeFile(t, "bad.yaml", "server_endpont: http://typo\n")
	broken := writeFile(t, "bad.json", `{ this is not valid json`)

	for name, args := range map[string][]string{
		"unknown key":  {"-c", unknown},
		"invalid json": {"-c", broken},
		"missing file": {"-c", filepath.Join(t.TempDir(), "none.yaml")},
		"bad duration": {"-timeout", "soon"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(args)
			assert.Error(t, err)
		})
	}
}
