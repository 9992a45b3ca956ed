// SPDX-License-Identifier: Apache-2.0

// Package config loads server configuration from defaults, an optional
// YAML file, and environment variables, in that order of increasing
// priority, using the same koanf layering the teacher's config package
// uses.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// AuthConfig holds the §6.3 auth.* keys.
type AuthConfig struct {
	// Challenges is the comma-separated WWW-Authenticate scheme list
	// emitted on 401 (auth.challenges).
	Challenges []string `koanf:"challenges"`
	// Realm is embedded in every challenge (auth.realm).
	Realm string `koanf:"realm" validate:"required"`
	// Scope is optionally embedded in every challenge (auth.scope).
	Scope string `koanf:"scope"`
	// JWTSecret signs/verifies Bearer tokens for the JWT authenticator.
	JWTSecret string `koanf:"jwt_secret"`
}

// WebACConfig holds the §6.3 webac.* keys.
type WebACConfig struct {
	ReadableMethods        []string `koanf:"readable.methods"`
	WritableMethods        []string `koanf:"writable.methods"`
	AppendableMethods      []string `koanf:"appendable.methods"`
	CacheSize              int      `koanf:"cache.size" validate:"gte=0"`
	CacheExpireSeconds     int      `koanf:"cache.expireSeconds" validate:"gte=0"`
	MembershipCheckEnabled bool     `koanf:"membershipCheck.enabled"`
}

// DataConfig holds the §6.3 data.* keys.
type DataConfig struct {
	// Prefix is the IRI prefix prepended to request paths (data.prefix).
	Prefix string `koanf:"prefix" validate:"required"`
	// Root is the distinguished root IRI with no parent.
	Root string `koanf:"root" validate:"required"`
}

// ServerConfig holds the ambient HTTP listener settings the teacher keeps
// alongside its domain config.
type ServerConfig struct {
	ListenAddr      string        `koanf:"listen_addr" validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimitPerMin int           `koanf:"rate_limit_per_min" validate:"gte=0"`
}

// LoggingConfig holds the ambient logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"required,oneof=debug info warn error"`
	Format string `koanf:"format" validate:"required,oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// Config is the root configuration object, unmarshaled from defaults, an
// optional YAML file, and environment variables.
type Config struct {
	Auth    AuthConfig    `koanf:"auth" validate:"required"`
	WebAC   WebACConfig   `koanf:"webac" validate:"required"`
	Data    DataConfig    `koanf:"data" validate:"required"`
	Server  ServerConfig  `koanf:"server" validate:"required"`
	Logging LoggingConfig `koanf:"logging" validate:"required"`
}

// validate is shared across all Config instances, mirroring the teacher's
// package-level validator singleton.
var validate = validator.New()

// DefaultConfigPaths lists the paths searched for a config file, in
// priority order; the first one found is used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/webac/config.yaml",
	"/etc/webac/config.yml",
}

// ConfigPathEnvVar overrides the searched config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns the spec's documented defaults (§6.3, §4.5, §4.6).
func defaultConfig() *Config {
	return &Config{
		Auth: AuthConfig{
			Challenges: nil,
			Realm:      "trellis",
			Scope:      "",
		},
		WebAC: WebACConfig{
			CacheSize:              1000,
			CacheExpireSeconds:     5,
			MembershipCheckEnabled: true,
		},
		Data: DataConfig{
			Prefix: "trellis:data/",
			Root:   "trellis:data/",
		},
		Server: ServerConfig{
			ListenAddr:      ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RateLimitPerMin: 100,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds a Config by layering defaults, an optional YAML file, and
// environment variables (highest priority), following the teacher's
// LoadWithKoanf precedence.
func Load() (*Config, error) {
	k := koanf.New(".")

	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	envProvider := env.Provider("WEBAC_", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// envTransformFunc converts WEBAC_AUTH_REALM to auth.realm, mirroring the
// teacher's underscore-to-dot environment variable convention.
func envTransformFunc(s string) string {
	s = strings.TrimPrefix(s, "WEBAC_")
	return strings.ToLower(strings.ReplaceAll(s, "_", "."))
}

// sliceConfigPaths names the keys that arrive from the environment as
// comma-separated strings and must be split before unmarshaling.
var sliceConfigPaths = []string{
	"auth.challenges",
	"webac.readable.methods",
	"webac.writable.methods",
	"webac.appendable.methods",
	"server.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		v := k.String(path)
		if v == "" {
			continue
		}
		parts := strings.Split(v, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		if err := k.Set(path, parts); err != nil {
			return err
		}
	}
	return nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Validate checks the loaded configuration for values the rest of the
// system cannot tolerate, enforcing the struct tags declared above.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
