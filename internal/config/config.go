// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package config handles application configuration loading. Values are
// layered: built-in defaults, then an optional YAML file, then environment
// variables. It provides a centralized Config struct used across the
// application.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar overrides the YAML config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{"config.yaml", "config.yml", "/etc/yamdb/config.yaml"}

// devJWTSecret is the development signing key. Load refuses it in production.
const devJWTSecret = "yamdb-development-signing-key-change-me"

// minJWTSecretLen is the shortest signing key accepted in production.
const minJWTSecretLen = 32

// Config holds all application configuration values. Each koanf key is the
// lower-cased name of the environment variable that overrides it.
type Config struct {
	// Server settings
	Host     string `koanf:"app_host"`
	Port     string `koanf:"app_port"`
	Env      string `koanf:"app_env"` // "development", "production", "testing"
	LogLevel string `koanf:"log_level"`

	// PostgreSQL connection
	DBHost     string `koanf:"postgres_host"`
	DBPort     string `koanf:"postgres_port"`
	DBUser     string `koanf:"postgres_user"`
	DBPassword string `koanf:"postgres_password"`
	DBName     string `koanf:"postgres_db"`

	// Valkey (Redis-compatible) holds outstanding refresh tokens.
	ValkeyHost     string `koanf:"valkey_host"`
	ValkeyPort     string `koanf:"valkey_port"`
	ValkeyPassword string `koanf:"valkey_password"`
	ValkeyDB       int    `koanf:"valkey_db"`

	// Token signing and lifetimes
	JWTSecret       string        `koanf:"jwt_secret"`
	AccessTokenTTL  time.Duration `koanf:"jwt_access_ttl"`
	RefreshTokenTTL time.Duration `koanf:"jwt_refresh_ttl"`
	ConfirmationTTL time.Duration `koanf:"confirmation_ttl"`

	// Outbound mail
	SMTPHost     string `koanf:"smtp_host"`
	SMTPPort     string `koanf:"smtp_port"`
	SMTPUsername string `koanf:"smtp_username"`
	SMTPPassword string `koanf:"smtp_password"`
	SMTPFrom     string `koanf:"smtp_from"`

	// API behaviour
	PageSize      int      `koanf:"page_size"`
	MaxPageSize   int      `koanf:"max_page_size"`
	CORSOrigins   []string `koanf:"cors_origins"`
	AuthRateLimit int      `koanf:"rate_limit_auth"` // requests per minute per IP on /auth
}

// defaults returns the development configuration.
func defaults() *Config {
	return &Config{
		Host:     "0.0.0.0",
		Port:     "8080",
		Env:      "development",
		LogLevel: "debug",

		DBHost:     "localhost",
		DBPort:     "5432",
		DBUser:     "yamdb",
		DBPassword: "changeme",
		DBName:     "yamdb",

		ValkeyHost: "localhost",
		ValkeyPort: "6379",

		JWTSecret:       devJWTSecret,
		AccessTokenTTL:  24 * time.Hour,
		RefreshTokenTTL: 7 * 24 * time.Hour,
		ConfirmationTTL: 24 * time.Hour,

		SMTPHost: "localhost",
		SMTPPort: "1025",
		SMTPFrom: "noreply@yamdb.local",

		PageSize:      10,
		MaxPageSize:   100,
		CORSOrigins:   []string{"*"},
		AuthRateLimit: 20,
	}
}

// Load reads configuration from defaults, an optional YAML file and the
// environment. Returns an error if critical values are missing in
// production mode.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaults(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
		slog.Debug("config file loaded", "path", path)
	}

	known := knownKeys()
	envProvider := env.ProviderWithValue("", ".", func(key, value string) (string, interface{}) {
		key = strings.ToLower(key)
		// Empty values fall through to the lower layers.
		if _, ok := known[key]; !ok || value == "" {
			return "", nil
		}
		if key == "cors_origins" {
			return key, splitList(value)
		}
		return key, value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate enforces production safety rules and basic sanity.
func (c *Config) validate() error {
	if c.PageSize <= 0 {
		return errors.New("PAGE_SIZE must be positive")
	}
	if c.MaxPageSize < c.PageSize {
		return errors.New("MAX_PAGE_SIZE must be at least PAGE_SIZE")
	}

	if c.Env == "production" {
		if c.DBPassword == "changeme" {
			return fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
		if c.JWTSecret == devJWTSecret || len(c.JWTSecret) < minJWTSecretLen {
			return fmt.Errorf("JWT_SECRET must be set to at least %d characters in production", minJWTSecretLen)
		}
	}
	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// SMTPAddr returns the mail relay address (host:port).
func (c *Config) SMTPAddr() string {
	return fmt.Sprintf("%s:%s", c.SMTPHost, c.SMTPPort)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// findConfigFile returns the first existing config file, or "".
func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// knownKeys collects the koanf tags of Config so unrelated environment
// variables are not loaded.
func knownKeys() map[string]struct{} {
	keys := make(map[string]struct{})
	t := reflect.TypeOf(Config{})
	for i := 0; i < t.NumField(); i++ {
		if tag := t.Field(i).Tag.Get("koanf"); tag != "" {
			keys[tag] = struct{}{}
		}
	}
	return keys
}

// splitList parses a comma-separated environment value.
func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
