package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("HORACULO_CONFIG", "")

	cfg, err := Load("")
	require.NoError(t, err)
	require.True(t, cfg.API.Mock)
	require.Equal(t, 500*time.Millisecond, cfg.Workflow.FirstDelay)
	require.Equal(t, time.Second, cfg.Workflow.SecondDelay)
	require.Equal(t, 10*time.Minute, cfg.Cache.TTL)
	require.Equal(t, "MACRO", cfg.UI.DefaultMode)
	require.Equal(t, "HORACULO_API_TOKEN", cfg.API.TokenEnv)
	require.Equal(t, filepath.Join(DataDir(), "horaculo.db"), cfg.Database.Path)
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[api]
base_url = "http://analysis.internal:9000"
mock = false
poll_interval = "250ms"

[workflow]
first_delay = "10ms"
`), 0o600))
	t.Setenv("HORACULO_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "http://analysis.internal:9000", cfg.API.BaseURL)
	require.False(t, cfg.API.Mock)
	require.Equal(t, 250*time.Millisecond, cfg.API.PollInterval)
	require.Equal(t, 10*time.Millisecond, cfg.Workflow.FirstDelay)
	require.Equal(t, time.Second, cfg.Workflow.SecondDelay)
	require.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("HORACULO_CONFIG", "")
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg, err := Load("")
	require.NoError(t, err)
	cfg.API.Mock = false
	cfg.API.Token = "secret"
	cfg.UI.DefaultMode = "CRYPTO"
	cfg.Workflow.SecondDelay = 1500 * time.Millisecond
	require.NoError(t, Save(path, cfg))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(raw), "secret")

	back, err := Load(path)
	require.NoError(t, err)
	require.False(t, back.API.Mock)
	require.Equal(t, "CRYPTO", back.UI.DefaultMode)
	require.Equal(t, 1500*time.Millisecond, back.Workflow.SecondDelay)
}

func TestApplyStartsFromDefaultsAndIgnoresEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("HORACULO_WORKFLOW_FIRST_DELAY", "0s")
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, err := Apply(path, "ui.default_mode", "crypto")
	require.NoError(t, err)
	require.Equal(t, "CRYPTO", cfg.UI.DefaultMode)
	require.Equal(t, 500*time.Millisecond, cfg.Workflow.FirstDelay)
	require.NoFileExists(t, path)

	require.NoError(t, Save(path, cfg))
	t.Setenv("HORACULO_WORKFLOW_FIRST_DELAY", "")
	back, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "CRYPTO", back.UI.DefaultMode)
	require.Equal(t, 500*time.Millisecond, back.Workflow.FirstDelay)
}

func TestApplyKeepsOtherFileSettings(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[api]
base_url = "http://analysis.internal:9000"
token = "plain"
`), 0o600))

	cfg, err := Apply(path, "api.mock", "false")
	require.NoError(t, err)
	require.False(t, cfg.API.Mock)
	require.Equal(t, "http://analysis.internal:9000", cfg.API.BaseURL)
	require.Equal(t, "plain", cfg.API.Token)

	v, err := Get(cfg, "api.token")
	require.NoError(t, err)
	require.Equal(t, "(set)", v)
}

func TestApplyRejectsBadInput(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.toml")

	_, err := Apply(path, "api.colour", "blue")
	require.ErrorIs(t, err, ErrUnknownKey)

	cases := map[string]string{
		"api.token":       "abc",
		"api.timeout":     "soon",
		"cache.ttl":       "-1m",
		"api.mock":        "maybe",
		"ui.default_mode": "fx",
		"log.level":       "loud",
		"log.path":        "  ",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			_, err := Apply(path, key, value)
			require.Error(t, err)
		})
	}
}

func TestKeysCoverSavedSettings(t *testing.T) {
	keys := Keys()
	require.Contains(t, keys, "ui.default_mode")
	require.Contains(t, keys, "workflow.second_delay")
	require.IsIncreasing(t, keys)

	cfg := Defaults()
	for _, k := range keys {
		_, err := Get(cfg, k)
		require.NoError(t, err, k)
	}
}
