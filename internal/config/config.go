// Package config provides configuration management for Quayside.
//
// Configuration is loaded in the following order (later sources override
// earlier ones):
//  1. Default values (hardcoded)
//  2. Configuration files (./config.yaml, ./configs/config.yaml,
//     ~/.quayside/config.yaml, /etc/quayside/config.yaml)
//  3. .env files
//  4. Environment variables (QS_ prefix)
//
// Environment variables use the QS_ prefix and underscores for nested
// keys, e.g. QS_SERVER_PORT=8090 or QS_ACTIONS_PROTECTED=quayside,db.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration structure for Quayside.
type Config struct {
	// Server contains HTTP server configuration
	Server ServerConfig `mapstructure:"server"`

	// Docker contains Docker daemon connection settings
	Docker DockerConfig `mapstructure:"docker"`

	// Actions contains bulk-action policy settings
	Actions ActionsConfig `mapstructure:"actions"`

	// Catalog contains service catalog settings
	Catalog CatalogConfig `mapstructure:"catalog"`

	// Logging contains logging settings
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	// Host is the server bind address (default: 0.0.0.0)
	Host string `mapstructure:"host"`

	// Port is the server listen port (default: 8090)
	Port int `mapstructure:"port"`

	// ReadTimeout is the maximum duration for reading requests
	ReadTimeout time.Duration `mapstructure:"read_timeout"`

	// WriteTimeout is the maximum duration for writing responses
	WriteTimeout time.Duration `mapstructure:"write_timeout"`

	// ShutdownTimeout is the maximum duration for graceful shutdown
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// Debug enables debug logging and verbose error responses
	Debug bool `mapstructure:"debug"`

	// RateLimit is the maximum requests per second per client (0 disables)
	RateLimit int `mapstructure:"rate_limit"`

	// AllowedOrigins are the CORS allowed origins
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DockerConfig contains Docker daemon connection settings.
type DockerConfig struct {
	// Socket is the Docker control socket. Empty means use the standard
	// environment (DOCKER_HOST et al.).
	Socket string `mapstructure:"socket"`

	// APITimeout bounds every individual call to the daemon, so a hung
	// container cannot stall a bulk worker indefinitely.
	APITimeout time.Duration `mapstructure:"api_timeout"`

	// StopTimeout is how long the daemon waits for a container to stop
	// before killing it, in seconds.
	StopTimeout int `mapstructure:"stop_timeout"`
}

// ActionsConfig contains bulk-action policy settings.
type ActionsConfig struct {
	// Protected is a comma-separated list of container names excluded
	// from bulk actions. Matching is case-insensitive.
	Protected string `mapstructure:"protected"`

	// Workers caps how many container actions run concurrently inside
	// one bulk operation.
	Workers int `mapstructure:"workers"`
}

// CatalogConfig contains service catalog settings.
type CatalogConfig struct {
	// Path is the YAML service catalog file (default: ./services.yaml)
	Path string `mapstructure:"path"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the log level (debug, info, warn, error)
	Level string `mapstructure:"level"`

	// Format is the log format (json, console)
	Format string `mapstructure:"format"`
}

// defaultProtected is the fallback protected-name set, covering the
// dashboard's own containers so a bulk stop cannot take it down.
var defaultProtected = []string{"quayside", "quayside-api"}

// Load reads configuration from a file and environment variables.
// If cfgFile is empty, it searches for config.yaml in standard locations.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.quayside")
		v.AddConfigPath("/etc/quayside")
	}

	if err := v.ReadInConfig(); err != nil {
		if cfgFile != "" {
			if !isFileNotFoundError(err) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		} else {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.MergeInConfig() // Ignore error if .env file doesn't exist

	v.SetEnvPrefix("QS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8090)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.debug", false)
	v.SetDefault("server.rate_limit", 100)
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("docker.socket", "")
	v.SetDefault("docker.api_timeout", "30s")
	v.SetDefault("docker.stop_timeout", 10)

	v.SetDefault("actions.protected", strings.Join(defaultProtected, ","))
	v.SetDefault("actions.workers", 5)

	v.SetDefault("catalog.path", "./services.yaml")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

func validate(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}

	if cfg.Actions.Workers < 1 {
		return fmt.Errorf("actions.workers must be at least 1, got %d", cfg.Actions.Workers)
	}

	if cfg.Docker.APITimeout <= 0 {
		return fmt.Errorf("docker.api_timeout must be positive, got %v", cfg.Docker.APITimeout)
	}

	return nil
}

// ProtectedNames parses the configured protected-name list: comma split,
// trimmed, case-folded, empty entries dropped.
func (c *ActionsConfig) ProtectedNames() []string {
	parts := strings.Split(c.Protected, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			names = append(names, p)
		}
	}
	return names
}

// isFileNotFoundError checks if an error is a file not found error.
func isFileNotFoundError(err error) bool {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return errors.Is(pathErr, os.ErrNotExist)
	}
	return false
}
