package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("FXCHAT_TEST_VAR", "test_value")

	assert.Equal(t, "test_value", GetEnv("FXCHAT_TEST_VAR", "default"))
	assert.Equal(t, "default", GetEnv("FXCHAT_NONEXISTENT_VAR", "default"))
}

func TestIsEnvSet(t *testing.T) {
	t.Setenv("FXCHAT_TEST_VAR", "test_value")

	assert.True(t, IsEnvSet("FXCHAT_TEST_VAR"))
	assert.False(t, IsEnvSet("FXCHAT_NONEXISTENT_VAR"))
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("missing.env")
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, 3001, cfg.Server.Port)
	assert.Equal(t, "freecurrencyapi", cfg.RateProvider.Name)
	assert.Equal(t, "https://api.freecurrencyapi.com/v1", cfg.RateProvider.ApiUrl)
	assert.Equal(t, 5*time.Minute, cfg.RateProvider.RefreshInterval)
	assert.Equal(t, 5*time.Minute, cfg.RateCache.TTL)
	assert.Equal(t, 5*time.Second, cfg.Conversion.LookupTimeout)
	assert.Equal(t, 50, cfg.History.MaxEntries)
	assert.Equal(t, 3*time.Second, cfg.Notification.StatusTTL)
	assert.Equal(t, "database", cfg.Storage.Driver)
	assert.Equal(t, "sqlite://fxchat.db", cfg.DB.Url)
}

func TestLoad_FromEnvFile(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "nested")
	require.NoError(t, os.Mkdir(nested, 0o755))
	content := "HISTORY_MAX_ENTRIES=15\nRATE_PROVIDER_NAME=static\nRATE_PROVIDER_API_KEY=fca_live_secret\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.test"), []byte(content), 0o600))
	t.Chdir(nested)
	// godotenv does not override variables that already exist.
	t.Setenv("HISTORY_MAX_ENTRIES", "")
	require.NoError(t, os.Unsetenv("HISTORY_MAX_ENTRIES"))
	t.Setenv("RATE_PROVIDER_NAME", "")
	require.NoError(t, os.Unsetenv("RATE_PROVIDER_NAME"))
	t.Setenv("RATE_PROVIDER_API_KEY", "")
	require.NoError(t, os.Unsetenv("RATE_PROVIDER_API_KEY"))

	cfg, err := Load(".env.test")
	require.NoError(t, err)

	assert.Equal(t, 15, cfg.History.MaxEntries)
	assert.Equal(t, "static", cfg.RateProvider.Name)
	assert.Equal(t, "fca_live_secret", cfg.RateProvider.ApiKey)
}

func TestFindEnvTest_NotFound(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := FindEnvTest("definitely-not-here.env")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestMaskValue(t *testing.T) {
	assert.Equal(t, "****", maskValue("short"))
	assert.Equal(t, "fc****1Gs9", maskValue("fca_live_1Gs9"))
}
