package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:          AppConfig{Environment: "development"},
		Logger:       LoggerConfig{Level: "info"},
		Data:         DataConfig{BasePath: "/var/lib/lca"},
		Import:       ImportConfig{Concurrency: 4},
		Registration: RegistrationConfig{RatePerSecond: 0.2, Burst: 3},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown environment", func(c *Config) { c.App.Environment = "test" }},
		{"empty environment", func(c *Config) { c.App.Environment = "" }},
		{"bad log level", func(c *Config) { c.Logger.Level = "trace" }},
		{"empty data path", func(c *Config) { c.Data.BasePath = "" }},
		{"watch without dir", func(c *Config) { c.Import.WatchEnabled = true }},
		{"zero concurrency", func(c *Config) { c.Import.Concurrency = 0 }},
		{"zero registration rate", func(c *Config) { c.Registration.RatePerSecond = 0 }},
		{"short production admin key", func(c *Config) {
			c.App.Environment = "production"
			c.Admin.APIKey = "short"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATA_PATH", t.TempDir())

	cfg, err := Load([]string{"-env-file", filepath.Join(t.TempDir(), "missing.env")})
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 60*time.Second, cfg.Server.IdleTimeout)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.False(t, cfg.Import.WatchEnabled)
	assert.Equal(t, 4, cfg.Import.Concurrency)
	assert.Equal(t, 2*time.Second, cfg.Import.SettleDelay)
	assert.InDelta(t, 0.2, cfg.Registration.RatePerSecond, 1e-9)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, filepath.Join(cfg.Data.BasePath, "academy.db"), cfg.Data.DatabasePath())
}

func TestLoad_FlagsBeatEnvironment(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DATA_PATH", dir)
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load([]string{
		"-env-file", filepath.Join(dir, "none.env"),
		"-port", "9100",
		"-import-dir", dir,
	})
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.Server.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, dir, cfg.Import.WatchDir)
	assert.True(t, cfg.Import.WatchEnabled, "watching defaults on once a directory is set")
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("DATA_PATH", t.TempDir())
	t.Setenv("SERVER_READ_TIMEOUT", "soon")

	_, err := Load([]string{"-env-file", filepath.Join(t.TempDir(), "x.env")})
	assert.ErrorContains(t, err, "invalid read timeout")
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := expandPath("~/lca", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "lca"), got)

	got, err = expandPath("", "/default")
	require.NoError(t, err)
	assert.Equal(t, "/default", got)

	got, err = expandPath("/abs/../abs/data", "")
	require.NoError(t, err)
	assert.Equal(t, "/abs/data", got)
}

func TestGetConfigValue_Precedence(t *testing.T) {
	t.Setenv("LCA_TEST_VALUE", "from-env")

	assert.Equal(t, "from-flag", getConfigValue("from-flag", "LCA_TEST_VALUE", "default"))
	assert.Equal(t, "from-env", getConfigValue("", "LCA_TEST_VALUE", "default"))
	assert.Equal(t, "default", getConfigValue("", "LCA_TEST_UNSET", "default"))
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "# comment\n\nLCA_ENV_A=one\nLCA_ENV_B = \"two\"\nLCA_ENV_C=three\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("LCA_ENV_C", "kept")
	t.Setenv("LCA_ENV_A", "")
	t.Setenv("LCA_ENV_B", "")

	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "one", os.Getenv("LCA_ENV_A"))
	assert.Equal(t, "two", os.Getenv("LCA_ENV_B"))
	assert.Equal(t, "kept", os.Getenv("LCA_ENV_C"))
}

func TestLoadEnvFile_InvalidFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("NOT_A_PAIR\n"), 0o600))

	assert.Error(t, loadEnvFile(path))
}
