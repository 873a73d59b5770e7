// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setEnvVars(t *testing.T, vars map[string]string) {
	t.Helper()
	for k, v := range vars {
		t.Setenv(k, v)
	}
}

func TestParseEnv_AllFields(t *testing.T) {
	// Arrange
	envVars := map[string]string{
		"CONFIG": "/path/to/config.json",

		"APP_VERSION": "1.2.3",

		"REMOTE_BASE_URL":        "https://project.supabase.co",
		"REMOTE_API_KEY":         "anon-key",
		"REMOTE_REQUEST_TIMEOUT": "30s",

		// Storage has nested prefixes: STORAGE_ + DB_
		"STORAGE_DB_DSN": "/var/lib/listsync/local.db",

		"WORKERS_SYNC_INTERVAL":  "2m",
		"WORKERS_PROBE_INTERVAL": "10s",
	}
	setEnvVars(t, envVars)

	// Act
	cfg := &StructuredConfig{}
	err := parseEnv(cfg)

	// Assert
	require.NoError(t, err)

	assert.Equal(t, "/path/to/config.json", cfg.JSONFilePath)
	assert.Equal(t, "1.2.3", cfg.App.Version)

	assert.Equal(t, "https://project.supabase.co", cfg.Remote.BaseURL)
	assert.Equal(t, "anon-key", cfg.Remote.APIKey)
	assert.Equal(t, 30*time.Second, cfg.Remote.RequestTimeout)

	assert.Equal(t, "/var/lib/listsync/local.db", cfg.Storage.DB.DSN)

	assert.Equal(t, 2*time.Minute, cfg.Workers.SyncInterval)
	assert.Equal(t, 10*time.Second, cfg.Workers.ProbeInterval)
}

func TestParseEnv_PartialFields(t *testing.T) {
	// Arrange
	envVars := map[string]string{
		"REMOTE_BASE_URL": "https://project.supabase.co",
	}
	setEnvVars(t, envVars)

	// Act
	cfg := &StructuredConfig{}
	err := parseEnv(cfg)

	// Assert
	require.NoError(t, err)

	assert.Equal(t, "https://project.supabase.co", cfg.Remote.BaseURL)
	assert.Empty(t, cfg.Remote.APIKey)
	assert.Zero(t, cfg.Remote.RequestTimeout)
	assert.Empty(t, cfg.Storage.DB.DSN)
	assert.Zero(t, cfg.Workers.SyncInterval)
}

func TestGetClientConfig_DefaultsApplied(t *testing.T) {
	setEnvVars(t, map[string]string{
		"REMOTE_BASE_URL": "https://project.supabase.co",
	})

	cfg, err := GetClientConfig("")
	require.NoError(t, err)

	assert.Equal(t, "https://project.supabase.co", cfg.Remote.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.Remote.RequestTimeout)
	assert.Equal(t, "listsync.db", cfg.Storage.DB.DSN)
	assert.Equal(t, 5*time.Minute, cfg.Workers.SyncInterval)
}

func TestGetClientConfig_EnvOverridesJSON(t *testing.T) {
	jsonPath := filepath.Join(t.TempDir(), "config.json")
	jsonBody := `{
		"remote": {"base_url": "https://json.example.com", "request_timeout": "45s"},
		"storage": {"db": {"dsn": "/tmp/from-json.db"}},
		"workers": {"sync_interval": "1m"}
	}`
	require.NoError(t, os.WriteFile(jsonPath, []byte(jsonBody), 0o600))

	setEnvVars(t, map[string]string{
		"REMOTE_BASE_URL": "https://env.example.com",
	})

	cfg, err := GetClientConfig(jsonPath)
	require.NoError(t, err)

	// env wins over json
	assert.Equal(t, "https://env.example.com", cfg.Remote.BaseURL)
	// json wins over defaults
	assert.Equal(t, 45*time.Second, cfg.Remote.RequestTimeout)
	assert.Equal(t, "/tmp/from-json.db", cfg.Storage.DB.DSN)
	assert.Equal(t, time.Minute, cfg.Workers.SyncInterval)
}

func TestGetClientConfig_MissingBaseURL(t *testing.T) {
	cfg, err := GetClientConfig("")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRemoteConfigs)
	assert.Nil(t, cfg)
}

func TestGetClientConfig_BadJSONFile(t *testing.T) {
	jsonPath := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte("{not json"), 0o600))

	setEnvVars(t, map[string]string{
		"REMOTE_BASE_URL": "https://project.supabase.co",
	})

	_, err := GetClientConfig(jsonPath)
	require.Error(t, err)
}

func TestDuration_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Duration
	}{
		{name: "string form", input: `"30s"`, want: 30 * time.Second},
		{name: "numeric nanoseconds", input: `1000000000`, want: time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			require.NoError(t, d.UnmarshalJSON([]byte(tt.input)))
			assert.Equal(t, tt.want, time.Duration(d))
		})
	}
}
