package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. SHOPCLI_API_BASE_URL.
const EnvPrefix = "SHOPCLI"

// Config holds all configuration for shopcli.
type Config struct {
	API      APIConfig      `mapstructure:"api" json:"api"`
	Cache    CacheConfig    `mapstructure:"cache" json:"cache"`
	Server   ServerConfig   `mapstructure:"server" json:"server"`
	Log      LogConfig      `mapstructure:"log" json:"log"`
	Defaults DefaultsConfig `mapstructure:"defaults" json:"defaults"`
}

// APIConfig points at the storefront REST API.
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url" json:"base_url" validate:"required,url"`
	Timeout time.Duration `mapstructure:"timeout" json:"timeout" validate:"gt=0"`
	Retries int           `mapstructure:"retries" json:"retries" validate:"gte=0,lte=10"`
}

// CacheConfig controls the catalog snapshot cache. An empty RedisAddr keeps
// the cache in process.
type CacheConfig struct {
	TTL           time.Duration `mapstructure:"ttl" json:"ttl" validate:"gte=0"`
	RedisAddr     string        `mapstructure:"redis_addr" json:"redis_addr" validate:"omitempty,hostname_port"`
	RedisPassword string        `mapstructure:"redis_password" json:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db" json:"redis_db" validate:"gte=0"`
}

// ServerConfig configures "shopcli serve".
type ServerConfig struct {
	Addr            string        `mapstructure:"addr" json:"addr" validate:"required"`
	RefreshSchedule string        `mapstructure:"refresh_schedule" json:"refresh_schedule" validate:"omitempty,cron_schedule"`
	RateLimit       int           `mapstructure:"rate_limit" json:"rate_limit" validate:"gt=0"`
	RateBurst       int           `mapstructure:"rate_burst" json:"rate_burst" validate:"gt=0"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout" json:"request_timeout" validate:"gt=0"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Env   string `mapstructure:"env" json:"env" validate:"omitempty,oneof=production development"`
	Level string `mapstructure:"level" json:"level" validate:"omitempty,oneof=debug info warn error"`
	File  string `mapstructure:"file" json:"file"`
}

// DefaultsConfig holds per-user defaults for listing commands.
type DefaultsConfig struct {
	Sort  string `mapstructure:"sort" json:"sort" validate:"omitempty,oneof=popularity price-asc price-desc rating price-low price-high"`
	Limit int    `mapstructure:"limit" json:"limit" validate:"gte=0"`
}

// Load reads configuration from defaults, an optional .env file, an optional
// YAML file and SHOPCLI_* environment variables, later sources winning. An
// explicit path must exist; otherwise ./shopcli.yaml is used when present.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("shopcli")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the built-in configuration without reading any source.
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	// Defaults are static and always decode.
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "http://127.0.0.1:5000/api")
	v.SetDefault("api.timeout", "15s")
	v.SetDefault("api.retries", 2)

	v.SetDefault("cache.ttl", "5m")
	v.SetDefault("cache.redis_addr", "")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.refresh_schedule", "@every 5m")
	v.SetDefault("server.rate_limit", 20)
	v.SetDefault("server.rate_burst", 40)
	v.SetDefault("server.request_timeout", "10s")

	v.SetDefault("log.env", "development")
	v.SetDefault("log.level", "")
	v.SetDefault("log.file", "")

	v.SetDefault("defaults.sort", "popularity")
	v.SetDefault("defaults.limit", 0)
}
