package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", "")
	require.NoError(t, err)

	assert.Equal(t, "https://api.moltin.com", cfg.Commerce.BaseURL)
	assert.Equal(t, 59*time.Minute, cfg.Commerce.TokenWindow)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
	assert.Equal(t, "pictures", cfg.Images.Dir)
	assert.Empty(t, cfg.Redis.Prefix, "state keys are bare user ids by default")
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shopbot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
commerce:
  client_id: from-yaml
  timeout: 5s
redis:
  host: redis.internal
  port: 6380
log:
  format: json
`), 0o644))

	t.Setenv("SHOPBOT_CLIENT_ID", "from-env")
	t.Setenv("SHOPBOT_REDIS_LOCK", "true")
	t.Setenv("SHOPBOT_ALERT_CHAT_ID", "-100123")
	t.Setenv("SHOPBOT_RATE_LIMIT", "2.5")
	t.Setenv("SHOPBOT_TOKEN_WINDOW", "30m")
	t.Setenv("SHOPBOT_REDIS_PREFIX", "shop:state:")

	cfg, err := Load(path, "")
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Commerce.ClientID)
	assert.Equal(t, 5*time.Second, cfg.Commerce.Timeout)
	assert.Equal(t, 30*time.Minute, cfg.Commerce.TokenWindow)
	assert.Equal(t, 2.5, cfg.Commerce.RateLimit)
	assert.Equal(t, "redis.internal:6380", cfg.Redis.Addr())
	assert.True(t, cfg.Redis.Lock)
	assert.Equal(t, "shop:state:", cfg.Redis.Prefix)
	assert.Equal(t, int64(-100123), cfg.Telegram.AlertChatID)
	assert.Equal(t, "json", cfg.Log.Format)
	// Untouched defaults survive the overlay.
	assert.Equal(t, "https://api.moltin.com", cfg.Commerce.BaseURL)
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	// Keys already in the environment win over the file.
	t.Setenv("SHOPBOT_TELEGRAM_TOKEN", "env-token")
	require.NoError(t, os.WriteFile(envFile, []byte("SHOPBOT_TELEGRAM_TOKEN=file-token\n"), 0o644))

	cfg, err := Load("", envFile)
	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.Telegram.Token)
}

func TestLoad_MissingEnvFileIgnored(t *testing.T) {
	_, err := Load("", filepath.Join(t.TempDir(), "nope.env"))
	assert.NoError(t, err)
}

func TestLoad_InvalidEnv(t *testing.T) {
	t.Setenv("SHOPBOT_REDIS_PORT", "not-a-port")
	_, err := Load("", "")
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"SHOPBOT_STRICT_UNKNOWN_USERS": "1",
		"SHOPBOT_REDIS_TTL":            "24h",
	}
	cfg := Default()
	require.NoError(t, applyEnv(cfg, func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}))

	assert.True(t, cfg.Bot.StrictUnknownUsers)
	assert.Equal(t, 24*time.Hour, cfg.Redis.TTL)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "commerce.client_id is required")
	assert.Contains(t, err.Error(), "telegram.token is required")

	cfg.Commerce.ClientID = "id"
	cfg.Telegram.Token = "tok"
	assert.NoError(t, cfg.Validate())

	cfg.Log.Format = "xml"
	assert.Error(t, cfg.Validate())
}
