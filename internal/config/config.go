package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Events   EventsConfig   `mapstructure:"events"`
}

// ServerConfig holds HTTP API configuration
type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Host string `mapstructure:"host"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// StorageConfig selects the persistence backend and the keys state is kept under
type StorageConfig struct {
	Backend       string `mapstructure:"backend"` // redis, postgres, memory or none
	StateKey      string `mapstructure:"state_key"`
	CategoriesKey string `mapstructure:"categories_key"`
	AuthUserKey   string `mapstructure:"auth_user_key"`
}

// CatalogConfig holds the category API configuration
type CatalogConfig struct {
	BaseURL              string   `mapstructure:"base_url"`
	CategoriesPath       string   `mapstructure:"categories_path"`
	Format               string   `mapstructure:"format"` // graphql or html
	Timeout              int      `mapstructure:"timeout"`
	MaxRetries           int      `mapstructure:"max_retries"`
	MaxRequestsPerSecond int      `mapstructure:"max_requests_per_second"`
	RefreshInterval      int      `mapstructure:"refresh_interval"` // seconds, 0 disables the refresher
	Proxies              []string `mapstructure:"proxies"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

// RedisConfig holds Redis connection details
type RedisConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Password  string `mapstructure:"password"`
	Database  int    `mapstructure:"database"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// EventsConfig controls publishing of state change events to Redis streams
type EventsConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	StreamPrefix string `mapstructure:"stream_prefix"`
	MaxLen       int64  `mapstructure:"max_len"`
}

// Load loads configuration from YAML file with environment variable overrides.
// A missing config.yaml is not an error: defaults and environment are used.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	setDefaults()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	return &config, nil
}

// Addr returns the HTTP listen address
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.host", "localhost")

	viper.SetDefault("log.level", "info")

	viper.SetDefault("storage.backend", "memory")
	viper.SetDefault("storage.state_key", "commerce-store")
	viper.SetDefault("storage.categories_key", "category-store")
	viper.SetDefault("storage.auth_user_key", "auth-user")

	viper.SetDefault("catalog.base_url", "http://localhost:4000")
	viper.SetDefault("catalog.categories_path", "/graphql")
	viper.SetDefault("catalog.format", "graphql")
	viper.SetDefault("catalog.timeout", 30)
	viper.SetDefault("catalog.max_retries", 3)
	viper.SetDefault("catalog.max_requests_per_second", 5)
	viper.SetDefault("catalog.refresh_interval", 60)
	viper.SetDefault("catalog.proxies", []string{})

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.name", "storefront")
	viper.SetDefault("database.user", "storefront_user")
	viper.SetDefault("database.password", "storefront_pass")

	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.database", 0)
	viper.SetDefault("redis.key_prefix", "storefront:state:")

	viper.SetDefault("events.enabled", false)
	viper.SetDefault("events.stream_prefix", "storefront:stream:")
	viper.SetDefault("events.max_len", 10000)
}
