package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAppliesDefaults(t *testing.T) {
	cfg, err := New(WithDisableFlagsParsing(true))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.RunAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.DatabaseDSN)
	assert.Empty(t, cfg.DBFileName)
	assert.Equal(t, 10*time.Second, cfg.DBConnectionTimeout)
	assert.Equal(t, "./migrations", cfg.MigrationsDir)
	assert.Equal(t, "c3VwZXJzZWNyZXQ=", cfg.JWTSigningSecretKey)
	assert.Equal(t, time.Hour, cfg.JWTTimeToLive)
	assert.Equal(t, "https://api.github.com", cfg.GithubAPIBaseURL)
	assert.Equal(t, 5*time.Second, cfg.GithubRequestTimeout)
	assert.Empty(t, cfg.TrustedSubnet)
}

func TestNewEnvironmentOverridesDefaults(t *testing.T) {
	t.Setenv("SERVER_ADDRESS", "localhost:9999")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("FILE_STORAGE_PATH", "/tmp/devconnect-test.json")
	t.Setenv("JWT_TIME_TO_LIVE", "30m")
	t.Setenv("GITHUB_API_BASE_URL", "https://github.example.com")
	t.Setenv("TRUSTED_SUBNET", "192.168.1.0/24")

	cfg, err := New(WithDisableFlagsParsing(true))
	require.NoError(t, err)

	assert.Equal(t, "localhost:9999", cfg.RunAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/tmp/devconnect-test.json", cfg.DBFileName)
	assert.Equal(t, 30*time.Minute, cfg.JWTTimeToLive)
	assert.Equal(t, "https://github.example.com", cfg.GithubAPIBaseURL)
	assert.Equal(t, "192.168.1.0/24", cfg.TrustedSubnet)
}

func TestNewRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name     string
		envName  string
		envValue string
	}{
		{
			name:     "unknown log level",
			envName:  "LOG_LEVEL",
			envValue: "verbose",
		},
		{
			name:     "malformed run address",
			envName:  "SERVER_ADDRESS",
			envValue: "not-an-address",
		},
		{
			name:     "signing secret is not base64",
			envName:  "JWT_SIGNING_SECRET_KEY",
			envValue: "###not-base64###",
		},
		{
			name:     "github base URL is not a URL",
			envName:  "GITHUB_API_BASE_URL",
			envValue: "not a url",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Setenv(test.envName, test.envValue)

			_, err := New(WithDisableFlagsParsing(true))
			assert.Error(t, err)
		})
	}
}
