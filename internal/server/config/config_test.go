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

	assert.Equal(t, ":8080", c.ListenAddr)
	assert.Empty(t, c.DatabaseDSN)
	assert.Empty(t, c.SecretKey)
	assert.Equal(t, "memory", c.BlobBackend)
	assert.Equal(t, 5*time.Minute, c.TokenTTL)
	assert.Equal(t, 24*time.Hour, c.DefaultExpiry)
	assert.Equal(t, 720*time.Hour, c.MaxExpiry)
	assert.Equal(t, int64(101<<20), c.MaxUploadSize)
	assert.True(t, c.MetricsEnabled)
	assert.False(t, c.TracingEnabled)
	require.NoError(t, c.Validate())
}

func TestLoadConfig_NoArgsGivesDefaults(t *testing.T) {
	c, err := LoadConfig(nil)
	require.NoError(t, err)

	var want Config
	want.LoadDefaults()
	assert.Equal(t, &want, c)
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_FileThenFlags(t *testing.T) {
	path := writeFile(t, "server.yaml", `
listen_addr: ":9000"
database_dsn: postgres://u:p@db:5432/uploadhaven?sslmode=disable
blob_backend: s3
s3_bucket: files
s3_use_path_style: false
token_ttl: 2m
max_expiry: 48h
sweep_batch: 10
metrics_enabled: false
`)

	c, err := LoadConfig([]string{"-c", path, "-a", ":9100", "-log-level", "debug", "-trace"})
	require.NoError(t, err)

	assert.Equal(t, ":9100", c.ListenAddr)
	assert.Equal(t, "postgres://u:p@db:5432/uploadhaven?sslmode=disable", c.DatabaseDSN)
	assert.Equal(t, "s3", c.BlobBackend)
	assert.Equal(t, "files", c.S3Bucket)
	assert.False(t, c.S3UsePathStyle)
	assert.Equal(t, 2*time.Minute, c.TokenTTL)
	assert.Equal(t, 48*time.Hour, c.MaxExpiry)
	assert.Equal(t, 10, c.SweepBatch)
	assert.False(t, c.MetricsEnabled)
	assert.True(t, c.TracingEnabled)
	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, "us-east-1", c.S3Region, "untouched keys keep defaults")
}

func TestLoadConfig_JSON(t *testing.T) {
	path := writeFile(t, "server.json", `{"secret_key":"k","default_expiry":3600000000000,"max_upload_size":2048}`)

	c, err := LoadConfig([]string{"-config=" + path})
	require.NoError(t, err)
	assert.Equal(t, "k", c.SecretKey)
	assert.Equal(t, time.Hour, c.DefaultExpiry)
	assert.Equal(t, int64(2048), c.MaxUploadSize)
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := map[string][]string{
		"missing file":   {"-c", filepath.Join(t.TempDir(), "nope.yaml")},
		"unknown key":    {"-c", writeFile(t, "bad.yaml", "listen: :1\n")},
		"bad duration":   {"-sweep", "often"},
		"invalid window": {"-max-expiry", "1h"},
		"zero upload":    {"-max-upload", "0"},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(args)
			require.Error(t, err)
		})
	}
}
