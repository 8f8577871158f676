package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Logging LoggingConfig
	Azure   AzureConfig
}

type LoggingConfig struct {
	Level string
	File  string
}

type AzureConfig struct {
	// BearerToken, when set, is a pre-acquired token with the
	// storage.azure.com scope and takes priority over the credential chain.
	BearerToken string

	// DownloadTimeout bounds a single blob download. Zero means no timeout.
	DownloadTimeout time.Duration
}

func Load() *Config {
	// APT invokes the method with a bare environment; a .env file is a
	// convenience for local runs, not a requirement.
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}
	return &Config{
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", "/var/log/apt-transport-blob.log"),
		},
		Azure: AzureConfig{
			BearerToken:     getEnv("AZURE_STORAGE_BEARER_TOKEN", ""),
			DownloadTimeout: time.Duration(getEnvInt("AZURE_DOWNLOAD_TIMEOUT_SECONDS", 0)) * time.Second,
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
