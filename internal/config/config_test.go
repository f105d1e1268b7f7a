package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/user/opsboard/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func clearEnv(t *testing.T) {
	t.Setenv("OPSBOARD_API_URL", "")
	t.Setenv("OPSBOARD_STATE_PATH", "")
	t.Setenv("OPSBOARD_LOG_FILE", "")
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))

	require.NoError(t, err)
	require.Equal(t, config.DefaultAPIURL, cfg.APIURL)
	require.Equal(t, 60*time.Second, cfg.PollInterval)
	require.Equal(t, 30*time.Second, cfg.RequestTimeout)
	require.Equal(t, "tekton", cfg.TektonNamespace)
	require.Equal(t, "en", cfg.Language().String())
	require.True(t, filepath.IsAbs(cfg.StatePath))
	require.Equal(t, "state.db", filepath.Base(cfg.StatePath))
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
api_url: https://ops.example.com/
poll_interval: 15s
request_timeout: 5s
tekton_namespace: ci
locale: tr
state_path: /var/lib/opsboard/state.db
log_file: /var/log/opsboard.log
`)

	cfg, err := config.Load(path)

	require.NoError(t, err)
	require.Equal(t, &config.Config{
		APIURL:          "https://ops.example.com",
		PollInterval:    15 * time.Second,
		RequestTimeout:  5 * time.Second,
		TektonNamespace: "ci",
		Locale:          "tr",
		StatePath:       "/var/lib/opsboard/state.db",
		LogFile:         "/var/log/opsboard.log",
	}, cfg)
	require.Equal(t, "tr", cfg.Language().String())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "api_url: https://from-file\nstate_path: /tmp/file.db\n")
	t.Setenv("OPSBOARD_API_URL", "https://from-env")
	t.Setenv("OPSBOARD_STATE_PATH", "/tmp/env.db")
	t.Setenv("OPSBOARD_LOG_FILE", "/tmp/env.log")

	cfg, err := config.Load(path)

	require.NoError(t, err)
	require.Equal(t, "https://from-env", cfg.APIURL)
	require.Equal(t, "/tmp/env.db", cfg.StatePath)
	require.Equal(t, "/tmp/env.log", cfg.LogFile)
}

func TestLoad_Invalid(t *testing.T) {
	type tc struct {
		name    string
		body    string
		wantErr string
	}

	cases := []tc{
		{name: "negative interval", body: "poll_interval: -5s\n", wantErr: "poll_interval must be positive"},
		{name: "negative timeout", body: "request_timeout: -1s\n", wantErr: "request_timeout must not be negative"},
		{name: "bad locale", body: "locale: not_a_locale!!\n", wantErr: "invalid locale"},
		{name: "bad yaml", body: "api_url: [unterminated\n", wantErr: "parsing config"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			clearEnv(t)

			_, err := config.Load(writeConfig(t, c.body))

			require.Error(t, err)
			require.Contains(t, err.Error(), c.wantErr)
		})
	}
}
