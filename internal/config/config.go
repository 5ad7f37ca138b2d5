// Package config loads process configuration from an optional YAML file, an optional .env
// file and SHOPBOT_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// EnvPrefix namespaces every environment variable.
const EnvPrefix = "SHOPBOT_"

// Config is the complete runtime configuration.
type Config struct {
	Commerce CommerceConfig `yaml:"commerce" mapstructure:"commerce"`
	Telegram TelegramConfig `yaml:"telegram" mapstructure:"telegram"`
	Redis    RedisConfig    `yaml:"redis" mapstructure:"redis"`
	Images   ImagesConfig   `yaml:"images" mapstructure:"images"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
	Ops      OpsConfig      `yaml:"ops" mapstructure:"ops"`
	Bot      BotConfig      `yaml:"bot" mapstructure:"bot"`
}

// CommerceConfig configures the commerce backend client and its token provider.
type CommerceConfig struct {
	StoreID          string        `yaml:"store_id" mapstructure:"store_id"`
	ClientID         string        `yaml:"client_id" mapstructure:"client_id"`
	ClientSecret     string        `yaml:"client_secret" mapstructure:"client_secret"`
	BaseURL          string        `yaml:"base_url" mapstructure:"base_url"`
	CustomerPassword string        `yaml:"customer_password" mapstructure:"customer_password"`
	RateLimit        float64       `yaml:"rate_limit" mapstructure:"rate_limit"` // requests per second, 0 = unlimited
	RateBurst        int           `yaml:"rate_burst" mapstructure:"rate_burst"`
	Timeout          time.Duration `yaml:"timeout" mapstructure:"timeout"`
	TokenWindow      time.Duration `yaml:"token_window" mapstructure:"token_window"`
}

// TelegramConfig configures the bot and the operator alert chat.
type TelegramConfig struct {
	Token       string        `yaml:"token" mapstructure:"token"`
	AlertChatID int64         `yaml:"alert_chat_id" mapstructure:"alert_chat_id"` // 0 disables alerts
	AlertLevel  string        `yaml:"alert_level" mapstructure:"alert_level"`
	PollTimeout time.Duration `yaml:"poll_timeout" mapstructure:"poll_timeout"`
}

// RedisConfig configures the state store and the optional distributed lock.
type RedisConfig struct {
	Host     string        `yaml:"host" mapstructure:"host"`
	Port     int           `yaml:"port" mapstructure:"port"`
	Password string        `yaml:"password" mapstructure:"password"`
	DB       int           `yaml:"db" mapstructure:"db"`
	Prefix   string        `yaml:"prefix" mapstructure:"prefix"` // empty keys state by bare user id
	TTL      time.Duration `yaml:"ttl" mapstructure:"ttl"`
	Lock     bool          `yaml:"lock" mapstructure:"lock"`
	LockTTL  time.Duration `yaml:"lock_ttl" mapstructure:"lock_ttl"`
}

// Addr returns host:port.
func (r RedisConfig) Addr() string {
	return net.JoinHostPort(r.Host, strconv.Itoa(r.Port))
}

// ImagesConfig configures the local product image cache.
type ImagesConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// LogConfig configures the application logger.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // text or json
}

// OpsConfig configures the metrics and health endpoint.
type OpsConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"` // empty disables the server
}

// BotConfig tunes conversation handling.
type BotConfig struct {
	// StrictUnknownUsers rejects events from users without a stored state instead of
	// restarting their conversation.
	StrictUnknownUsers bool `yaml:"strict_unknown_users" mapstructure:"strict_unknown_users"`
	MaxInputSize       int  `yaml:"max_input_size" mapstructure:"max_input_size"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Commerce: CommerceConfig{
			BaseURL:     "https://api.moltin.com",
			RateBurst:   1,
			Timeout:     15 * time.Second,
			TokenWindow: 59 * time.Minute,
		},
		Telegram: TelegramConfig{
			AlertLevel:  "error",
			PollTimeout: 10 * time.Second,
		},
		Redis: RedisConfig{
			Host:    "localhost",
			Port:    6379,
			LockTTL: 30 * time.Second,
		},
		Images: ImagesConfig{Dir: "pictures"},
		Log:    LogConfig{Level: "info", Format: "text"},
		Bot:    BotConfig{MaxInputSize: 4096},
	}
}

// envKeys maps each supported variable (without EnvPrefix) to its config path.
var envKeys = map[string]string{
	"STORE_ID":          "commerce.store_id",
	"CLIENT_ID":         "commerce.client_id",
	"CLIENT_SECRET":     "commerce.client_secret",
	"COMMERCE_URL":      "commerce.base_url",
	"CUSTOMER_PASSWORD": "commerce.customer_password",
	"RATE_LIMIT":        "commerce.rate_limit",
	"RATE_BURST":        "commerce.rate_burst",
	"HTTP_TIMEOUT":      "commerce.timeout",
	"TOKEN_WINDOW":      "commerce.token_window",

	"TELEGRAM_TOKEN": "telegram.token",
	"ALERT_CHAT_ID":  "telegram.alert_chat_id",
	"ALERT_LEVEL":    "telegram.alert_level",
	"POLL_TIMEOUT":   "telegram.poll_timeout",

	"REDIS_HOST":     "redis.host",
	"REDIS_PORT":     "redis.port",
	"REDIS_PASSWORD": "redis.password",
	"REDIS_DB":       "redis.db",
	"REDIS_PREFIX":   "redis.prefix",
	"REDIS_TTL":      "redis.ttl",
	"REDIS_LOCK":     "redis.lock",
	"REDIS_LOCK_TTL": "redis.lock_ttl",

	"IMAGE_DIR": "images.dir",

	"LOG_LEVEL":  "log.level",
	"LOG_FORMAT": "log.format",

	"OPS_ADDR": "ops.addr",

	"STRICT_UNKNOWN_USERS": "bot.strict_unknown_users",
	"MAX_INPUT_SIZE":       "bot.max_input_size",
}

// Load builds the configuration.
// path is an optional YAML file; envFile is an optional dotenv file (a missing file is ignored).
func Load(path, envFile string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if envFile != "" {
		// godotenv never overrides variables that are already set.
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	}

	if err := applyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays SHOPBOT_* variables onto cfg.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	overrides := map[string]any{}
	for name, path := range envKeys {
		val, ok := lookup(EnvPrefix + name)
		if !ok {
			continue
		}
		section, field, _ := strings.Cut(path, ".")
		m, _ := overrides[section].(map[string]any)
		if m == nil {
			m = map[string]any{}
			overrides[section] = m
		}
		m[field] = val
	}
	if len(overrides) == 0 {
		return nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		Result:           cfg,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(overrides); err != nil {
		return fmt.Errorf("invalid %s environment: %w", EnvPrefix, err)
	}
	return nil
}

// Validate reports every missing or inconsistent value at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Commerce.ClientID == "" {
		errs = append(errs, errors.New("commerce.client_id is required"))
	}
	if c.Telegram.Token == "" {
		errs = append(errs, errors.New("telegram.token is required"))
	}
	if c.Redis.Host == "" {
		errs = append(errs, errors.New("redis.host is required"))
	}
	if c.Redis.Port <= 0 || c.Redis.Port > 65535 {
		errs = append(errs, fmt.Errorf("redis.port %d out of range", c.Redis.Port))
	}
	if c.Commerce.RateLimit < 0 {
		errs = append(errs, errors.New("commerce.rate_limit must not be negative"))
	}
	if c.Commerce.TokenWindow <= 0 {
		errs = append(errs, errors.New("commerce.token_window must be positive"))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q must be text or json", c.Log.Format))
	}
	return errors.Join(errs...)
}
