// Package config provides application configuration management with
// multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (SESSIONMCP_* prefix, runtime override)
//  2. Config file (~/.sessionmcp/config.yaml)
//  3. Default values
//
// Settings:
//   - listen_addr: loopback address the server binds to; port 0 asks
//     the OS for an ephemeral port
//   - log_level / log_json: logging behavior
//   - default_mode: opaque map forwarded untouched with every reminder
//     push; downstream decides what it means
//
// Validation uses sentinel errors checked with errors.Is().
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/viper"
)

var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrInvalidListenAddr indicates the listen address is malformed
	// or not bound to the loopback interface.
	ErrInvalidListenAddr = errors.New("invalid listen address")

	// ErrInvalidLogLevel indicates the log level is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
)

const (
	// DefaultListenAddr binds to loopback on an OS-assigned port.
	DefaultListenAddr = "127.0.0.1:0"

	// DefaultLogLevel is the default minimum log level.
	DefaultLogLevel = "info"
)

// Config stores application configuration.
type Config struct {
	// ListenAddr is the address the MCP endpoint binds to. Loopback
	// only; the server is torn down with its session and must never
	// be reachable from outside the machine.
	ListenAddr string `mapstructure:"listen_addr" json:"listen_addr"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"log_level" json:"log_level"`

	// LogJSON switches log output from text to JSON.
	LogJSON bool `mapstructure:"log_json" json:"log_json"`

	// DefaultMode is attached to every injected reminder. The server
	// never inspects it.
	DefaultMode map[string]any `mapstructure:"default_mode" json:"default_mode"`
}

// Load loads configuration.
// Priority: Environment variables > Configuration file > Default values
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".sessionmcp")
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	setDefaults(v)

	v.SetEnvPrefix("SESSIONMCP")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is not an error, defaults apply.
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using default values",
			"search_paths", []string{configDir, "."},
			"config_name", "config.yaml")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("listen_addr", DefaultListenAddr)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("log_json", false)
}

// Validate validates configuration values.
// Returns sentinel errors that can be checked with errors.Is().
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}

	if err := validateLoopbackAddr(c.ListenAddr); err != nil {
		return err
	}

	if _, err := c.SlogLevel(); err != nil {
		return err
	}

	return nil
}

// SlogLevel maps the configured log level to a slog.Level.
func (c *Config) SlogLevel() (slog.Level, error) {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("%w: must be one of debug, info, warn, error, got %q",
			ErrInvalidLogLevel, c.LogLevel)
	}
}

// validateLoopbackAddr checks that addr is a host:port pair on the
// loopback interface. Port 0 is allowed (OS-assigned ephemeral port).
func validateLoopbackAddr(addr string) error {
	if addr == "" {
		return fmt.Errorf("%w: listen_addr cannot be empty", ErrInvalidListenAddr)
	}

	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidListenAddr, err)
	}

	port, err := strconv.Atoi(portStr)
	if err != nil || port < 0 || port > 65535 {
		return fmt.Errorf("%w: port must be between 0 and 65535, got %q",
			ErrInvalidListenAddr, portStr)
	}

	if host == "localhost" {
		return nil
	}
	ip := net.ParseIP(host)
	if ip == nil || !ip.IsLoopback() {
		return fmt.Errorf("%w: %q is not a loopback address", ErrInvalidListenAddr, host)
	}

	return nil
}
