package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LOG_FILE", "")
	t.Setenv("AZURE_STORAGE_BEARER_TOKEN", "")
	t.Setenv("AZURE_DOWNLOAD_TIMEOUT_SECONDS", "")

	cfg := Load()

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "/var/log/apt-transport-blob.log", cfg.Logging.File)
	assert.Empty(t, cfg.Azure.BearerToken)
	assert.Equal(t, time.Duration(0), cfg.Azure.DownloadTimeout)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FILE", "/tmp/agent.log")
	t.Setenv("AZURE_STORAGE_BEARER_TOKEN", "token-123")
	t.Setenv("AZURE_DOWNLOAD_TIMEOUT_SECONDS", "30")

	cfg := Load()

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "/tmp/agent.log", cfg.Logging.File)
	assert.Equal(t, "token-123", cfg.Azure.BearerToken)
	assert.Equal(t, 30*time.Second, cfg.Azure.DownloadTimeout)
}

func TestLoad_InvalidTimeout(t *testing.T) {
	t.Setenv("AZURE_DOWNLOAD_TIMEOUT_SECONDS", "not-a-number")

	cfg := Load()

	assert.Equal(t, time.Duration(0), cfg.Azure.DownloadTimeout)
}
