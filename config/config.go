package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v10"
	"go.uber.org/zap"
)

// BaseConfig contains the server's core configuration needs.
// Applications can embed this in their own config structs to inherit its settings.
type BaseConfig struct {
	HTTPPort    int    `toml:"http_port" env:"HTTP_PORT"`
	HealthPort  int    `toml:"health_port" env:"HEALTH_PORT"`
	MetricsPort int    `toml:"metrics_port" env:"METRICS_PORT"`
	LogLevel    string `toml:"log_level" env:"LOG_LEVEL"`
	Environment string `toml:"environment" env:"ENVIRONMENT"`
}

// Pipeline describes a request pipeline by service identifiers.
//
// Middleware entries are either a service identifier or a two element array
// of service identifier and configurator name:
//
//	[pipeline]
//	handler = "app.hello"
//	middleware = ["request_id", ["auth", "admin_secret"], "logger"]
//
// Entries are not validated here; a malformed entry fails when a request
// reaches it.
type Pipeline struct {
	Handler    string `toml:"handler"`
	Middleware []any  `toml:"middleware"`
}

// GetHTTPPort returns the HTTP port to use, checking Nomad dynamic port allocation first.
// If NOMAD_PORT_http is set and valid, it returns that value.
// Otherwise, it falls back to the configured HTTPPort value.
func (b *BaseConfig) GetHTTPPort() int {
	return resolvePort("http", b.HTTPPort)
}

// GetHealthPort returns the health port to use, checking Nomad dynamic port allocation first.
func (b *BaseConfig) GetHealthPort() int {
	return resolvePort("health", b.HealthPort)
}

// GetMetricsPort returns the metrics port to use, checking Nomad dynamic port allocation first.
func (b *BaseConfig) GetMetricsPort() int {
	return resolvePort("metrics", b.MetricsPort)
}

// resolvePort checks for Nomad dynamic port allocation and falls back to configured value.
func resolvePort(label string, fallback int) int {
	envVar := "NOMAD_PORT_" + label
	nomadPort := os.Getenv(envVar)
	if nomadPort == "" {
		return fallback
	}

	port, err := strconv.Atoi(nomadPort)
	if err != nil {
		zap.L().Warn("invalid Nomad port, falling back to configured port",
			zap.String("env", envVar),
			zap.String("value", nomadPort),
			zap.Int("port", fallback),
		)
		return fallback
	}

	zap.L().Info("using Nomad-assigned port", zap.String("label", label), zap.Int("port", port))
	return port
}

// Loader handles loading configuration from TOML files and environment variables.
type Loader struct {
	configPath string
}

// NewLoader creates a new config loader for the specified TOML file path.
func NewLoader(configPath string) *Loader {
	return &Loader{
		configPath: configPath,
	}
}

// Load reads the TOML configuration file and unmarshals it into the provided config struct.
// It then applies environment variable overrides for any fields with an `env` tag.
// A missing file is not an error. The config parameter must be a pointer to a struct.
func (l *Loader) Load(config interface{}) error {
	if config == nil {
		return fmt.Errorf("config cannot be nil")
	}

	rv := reflect.ValueOf(config)
	if rv.Kind() != reflect.Ptr {
		return fmt.Errorf("config must be a pointer to a struct, got %T", config)
	}
	if rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("config must be a pointer to a struct, got pointer to %v", rv.Elem().Kind())
	}

	if _, err := toml.DecodeFile(l.configPath, config); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to decode TOML file %s: %w", l.configPath, err)
	}

	if err := env.Parse(config); err != nil {
		return fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	return nil
}
