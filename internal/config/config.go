package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every configuration key read from the
// environment, e.g. HEALTHBRIDGE_SERVER_PORT.
const EnvPrefix = "HEALTHBRIDGE"

// Config holds all application configuration
type Config struct {
	Env       string          `mapstructure:"env" yaml:"env"`
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
	Database  DatabaseConfig  `mapstructure:"database" yaml:"database"`
	Redis     RedisConfig     `mapstructure:"redis" yaml:"redis"`
	Telegram  TelegramConfig  `mapstructure:"telegram" yaml:"telegram"`
	Catalog   CatalogConfig   `mapstructure:"catalog" yaml:"catalog"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit" yaml:"rate_limit"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port int    `mapstructure:"port" yaml:"port"`
}

type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

// DatabaseConfig holds database configuration. An empty URL keeps
// assessments in memory.
type DatabaseConfig struct {
	URL           string `mapstructure:"url" yaml:"url"`
	RunMigrations bool   `mapstructure:"run_migrations" yaml:"run_migrations"`
}

// RedisConfig holds Redis configuration. An empty Addr disables event
// publishing.
type RedisConfig struct {
	Addr     string `mapstructure:"addr" yaml:"addr"`
	Password string `mapstructure:"password" yaml:"password"`
	DB       int    `mapstructure:"db" yaml:"db"`
	Channel  string `mapstructure:"channel" yaml:"channel"`
}

// TelegramConfig holds the doctor notification settings.
type TelegramConfig struct {
	Token        string `mapstructure:"token" yaml:"token"`
	DoctorChatID int64  `mapstructure:"doctor_chat_id" yaml:"doctor_chat_id"`
	FontPath     string `mapstructure:"font_path" yaml:"font_path"`
}

// CatalogConfig points at an optional YAML catalog that replaces the
// embedded one.
type CatalogConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second" yaml:"requests_per_second"`
	Burst             int     `mapstructure:"burst" yaml:"burst"`
}

// Addr returns the listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// New returns a viper instance with defaults, environment bindings and,
// when configFile is set, the YAML file merged in.
func New(configFile string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Names used by the existing deployment scripts.
	legacy := map[string]string{
		"database.url":            "DATABASE_URL",
		"server.port":             "PORT",
		"telegram.token":          "TELEGRAM_BOT_TOKEN",
		"telegram.doctor_chat_id": "DOCTOR_CHAT_ID",
		"redis.addr":              "REDIS_ADDR",
	}
	for key, env := range legacy {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.NewReplacer(".", "_").Replace(key))
		if err := v.BindEnv(key, prefixed, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}
	return v, nil
}

// Load decodes the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return nil, fmt.Errorf("server.port %d out of range", cfg.Server.Port)
	}
	if cfg.RateLimit.RequestsPerSecond < 0 {
		return nil, fmt.Errorf("rate_limit.requests_per_second must not be negative")
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("database.url", "")
	v.SetDefault("database.run_migrations", true)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.channel", "triage.assessments")
	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.doctor_chat_id", 0)
	v.SetDefault("telegram.font_path", "")
	v.SetDefault("catalog.path", "")
	v.SetDefault("rate_limit.requests_per_second", 5.0)
	v.SetDefault("rate_limit.burst", 10)
}

// Redacted returns a copy safe to print.
func (c Config) Redacted() Config {
	if c.Telegram.Token != "" {
		c.Telegram.Token = "****"
	}
	if c.Redis.Password != "" {
		c.Redis.Password = "****"
	}
	if c.Database.URL != "" {
		c.Database.URL = redactURL(c.Database.URL)
	}
	return c
}

func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "****")
	}
	return u.String()
}
