package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	require.Equal(t, 210_000, cfg.Security.KDFIterations)
	require.Equal(t, "FINVAULT_PASSWORD", cfg.Security.PasswordEnv)
	require.Equal(t, 6, cfg.Security.MinPasswordLength)
	require.Equal(t, "info", cfg.Log.Level)
	require.Equal(t, "R$", cfg.UI.CurrencySymbol)
	require.NotEmpty(t, cfg.Database.Path)
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[database]
path = "/tmp/ledger.db"

[security]
kdf_iterations = 300000

[log]
level = "debug"
format = "json"
`), 0o600))
	t.Setenv("FINVAULT_SECURITY_MIN_PASSWORD_LENGTH", "10")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/tmp/ledger.db", cfg.Database.Path)
	require.Equal(t, 300_000, cfg.Security.KDFIterations)
	require.Equal(t, 10, cfg.Security.MinPasswordLength)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, "json", cfg.Log.Format)
}

func TestLoadRejectsWeakKDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[security]\nkdf_iterations = 1000\n"), 0o600))

	_, err := Load(path)
	require.ErrorContains(t, err, "kdf_iterations")
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[database\n"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg, err := Load(path)
	require.NoError(t, err)
	cfg.Database.Path = "/data/finvault.db"
	cfg.Log.Level = "warn"
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg, loaded)
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("FINVAULT_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	require.Equal(t, "/xdg/finvault/config.toml", DefaultPath())

	t.Setenv("FINVAULT_CONFIG", "/etc/finvault.toml")
	require.Equal(t, "/etc/finvault.toml", DefaultPath())
}
