package config

import (
	"os"
	"path/filepath"
	"testing"
)

// TestAppConfig is an example of how an application would embed BaseConfig
type TestAppConfig struct {
	Server           BaseConfig `toml:"server"`
	Pipeline         Pipeline   `toml:"pipeline"`
	AppSpecificField string     `toml:"app_field" env:"APP_FIELD"`
	DatabaseURL      string     `toml:"database_url" env:"DATABASE_URL"`
	MaxConnections   int        `toml:"max_connections" env:"MAX_CONNECTIONS"`
}

func TestNewLoader(t *testing.T) {
	loader := NewLoader("test.toml")
	if loader == nil {
		t.Fatal("NewLoader returned nil")
	}
	if loader.configPath != "test.toml" {
		t.Errorf("expected configPath to be 'test.toml', got %s", loader.configPath)
	}
}

func TestLoadTOMLFile(t *testing.T) {
	// Create a temporary TOML file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")

	tomlContent := `
app_field = "test_value"
database_url = "postgres://localhost/test"
max_connections = 100

[server]
log_level = "debug"
metrics_port = 9090
health_port = 8080
environment = "production"
`

	if err := os.WriteFile(configPath, []byte(tomlContent), 0644); err != nil {
		t.Fatalf("failed to write test config file: %v", err)
	}

	// Load the config
	loader := NewLoader(configPath)
	var config TestAppConfig
	if err := loader.Load(&config); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Verify BaseConfig fields
	if config.Server.LogLevel != "debug" {
		t.Errorf("expected LogLevel to be 'debug', got %s", config.Server.LogLevel)
	}
	if config.Server.MetricsPort != 9090 {
		t.Errorf("expected MetricsPort to be 9090, got %d", config.Server.MetricsPort)
	}
	if config.Server.HealthPort != 8080 {
		t.Errorf("expected HealthPort to be 8080, got %d", config.Server.HealthPort)
	}
	if config.Server.Environment != "production" {
		t.Errorf("expected Environment to be 'production', got %s", config.Server.Environment)
	}

	// Verify app-specific fields
	if config.AppSpecificField != "test_value" {
		t.Errorf("expected AppSpecificField to be 'test_value', got %s", config.AppSpecificField)
	}
	if config.DatabaseURL != "postgres://localhost/test" {
		t.Errorf("expected DatabaseURL to be 'postgres://localhost/test', got %s", config.DatabaseURL)
	}
	if config.MaxConnections != 100 {
		t.Errorf("expected MaxConnections to be 100, got %d", config.MaxConnections)
	}
}

func TestEnvOverrides(t *testing.T) {
	// Create a temporary TOML file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")

	tomlContent := `
app_field = "original_value"
max_connections = 50

[server]
log_level = "info"
metrics_port = 9090
health_port = 8080
environment = "development"
`

	if err := os.WriteFile(configPath, []byte(tomlContent), 0644); err != nil {
		t.Fatalf("failed to write test config file: %v", err)
	}

	// Set environment variables
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("METRICS_PORT", "9999")
	t.Setenv("APP_FIELD", "overridden_value")
	t.Setenv("MAX_CONNECTIONS", "200")

	// Load the config
	loader := NewLoader(configPath)
	var config TestAppConfig
	if err := loader.Load(&config); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Verify environment variables overrode TOML values
	if config.Server.LogLevel != "error" {
		t.Errorf("expected LogLevel to be 'error' (from env), got %s", config.Server.LogLevel)
	}
	if config.Server.MetricsPort != 9999 {
		t.Errorf("expected MetricsPort to be 9999 (from env), got %d", config.Server.MetricsPort)
	}
	if config.AppSpecificField != "overridden_value" {
		t.Errorf("expected AppSpecificField to be 'overridden_value' (from env), got %s", config.AppSpecificField)
	}
	if config.MaxConnections != 200 {
		t.Errorf("expected MaxConnections to be 200 (from env), got %d", config.MaxConnections)
	}

	// Verify fields without env vars keep TOML values
	if config.Server.HealthPort != 8080 {
		t.Errorf("expected HealthPort to be 8080 (from TOML), got %d", config.Server.HealthPort)
	}
	if config.Server.Environment != "development" {
		t.Errorf("expected Environment to be 'development' (from TOML), got %s", config.Server.Environment)
	}
}

func TestLoadNonExistentFile(t *testing.T) {
	// Try to load a non-existent file
	loader := NewLoader("/nonexistent/path/config.toml")
	var config TestAppConfig

	// Should not error, just use zero values
	if err := loader.Load(&config); err != nil {
		t.Fatalf("expected no error for non-existent file, got: %v", err)
	}

	// All values should be zero/empty
	if config.Server.LogLevel != "" {
		t.Errorf("expected empty LogLevel for non-existent file, got %s", config.Server.LogLevel)
	}
}

func TestLoadWithInvalidTOML(t *testing.T) {
	// Create a temporary TOML file with invalid content
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.toml")

	invalidContent := `
[server
this is not valid TOML
`

	if err := os.WriteFile(configPath, []byte(invalidContent), 0644); err != nil {
		t.Fatalf("failed to write test config file: %v", err)
	}

	// Load the config - should error
	loader := NewLoader(configPath)
	var config TestAppConfig
	if err := loader.Load(&config); err == nil {
		t.Fatal("expected error for invalid TOML, got nil")
	}
}

func TestLoadNilConfig(t *testing.T) {
	loader := NewLoader("test.toml")
	if err := loader.Load(nil); err == nil {
		t.Fatal("expected error for nil config, got nil")
	}
}

func TestLoadNonPointer(t *testing.T) {
	loader := NewLoader("test.toml")
	var config TestAppConfig
	if err := loader.Load(config); err == nil {
		t.Fatal("expected error for non-pointer config, got nil")
	}
}

func TestLoadPointerToNonStruct(t *testing.T) {
	loader := NewLoader("test.toml")
	var config string
	if err := loader.Load(&config); err == nil {
		t.Fatal("expected error for pointer to non-struct, got nil")
	}
}

func TestEnvOverrideInvalidInt(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")

	tomlContent := `
[server]
metrics_port = 9090
`

	if err := os.WriteFile(configPath, []byte(tomlContent), 0644); err != nil {
		t.Fatalf("failed to write test config file: %v", err)
	}

	// Set invalid int value
	t.Setenv("METRICS_PORT", "not_a_number")

	loader := NewLoader(configPath)
	var config TestAppConfig
	if err := loader.Load(&config); err == nil {
		t.Fatal("expected error for invalid int in env var, got nil")
	}
}

func TestBaseConfigOnly(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")

	tomlContent := `
log_level = "warn"
metrics_port = 7777
health_port = 6666
environment = "staging"
`

	if err := os.WriteFile(configPath, []byte(tomlContent), 0644); err != nil {
		t.Fatalf("failed to write test config file: %v", err)
	}

	// Load directly into BaseConfig (not embedded)
	loader := NewLoader(configPath)
	var config BaseConfig
	if err := loader.Load(&config); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if config.LogLevel != "warn" {
		t.Errorf("expected LogLevel to be 'warn', got %s", config.LogLevel)
	}
	if config.MetricsPort != 7777 {
		t.Errorf("expected MetricsPort to be 7777, got %d", config.MetricsPort)
	}
	if config.HealthPort != 6666 {
		t.Errorf("expected HealthPort to be 6666, got %d", config.HealthPort)
	}
	if config.Environment != "staging" {
		t.Errorf("expected Environment to be 'staging', got %s", config.Environment)
	}
}

func TestEnvOverrideWithoutTOMLFile(t *testing.T) {
	// Set environment variables without a TOML file
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("METRICS_PORT", "5555")
	t.Setenv("HEALTH_PORT", "4444")
	t.Setenv("ENVIRONMENT", "test")

	loader := NewLoader("/nonexistent/config.toml")
	var config BaseConfig
	if err := loader.Load(&config); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// All values should come from environment
	if config.LogLevel != "debug" {
		t.Errorf("expected LogLevel to be 'debug' (from env), got %s", config.LogLevel)
	}
	if config.MetricsPort != 5555 {
		t.Errorf("expected MetricsPort to be 5555 (from env), got %d", config.MetricsPort)
	}
	if config.HealthPort != 4444 {
		t.Errorf("expected HealthPort to be 4444 (from env), got %d", config.HealthPort)
	}
	if config.Environment != "test" {
		t.Errorf("expected Environment to be 'test' (from env), got %s", config.Environment)
	}
}

func TestLoadPipeline(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")

	tomlContent := `
[pipeline]
handler = "app.hello"
middleware = ["request_id", ["auth", "admin_secret"], "logger"]
`

	if err := os.WriteFile(configPath, []byte(tomlContent), 0644); err != nil {
		t.Fatalf("failed to write test config file: %v", err)
	}

	loader := NewLoader(configPath)
	var config TestAppConfig
	if err := loader.Load(&config); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if config.Pipeline.Handler != "app.hello" {
		t.Errorf("expected Handler to be 'app.hello', got %s", config.Pipeline.Handler)
	}
	if len(config.Pipeline.Middleware) != 3 {
		t.Fatalf("expected 3 middleware entries, got %d", len(config.Pipeline.Middleware))
	}
	if config.Pipeline.Middleware[0] != "request_id" {
		t.Errorf("expected first entry to be 'request_id', got %v", config.Pipeline.Middleware[0])
	}
	pair, ok := config.Pipeline.Middleware[1].([]any)
	if !ok || len(pair) != 2 {
		t.Fatalf("expected second entry to be a pair, got %#v", config.Pipeline.Middleware[1])
	}
	if pair[0] != "auth" || pair[1] != "admin_secret" {
		t.Errorf("expected pair [auth admin_secret], got %v", pair)
	}
}

func TestResolvePortNomad(t *testing.T) {
	config := BaseConfig{HTTPPort: 8080, HealthPort: 9090}

	t.Setenv("NOMAD_PORT_http", "31000")
	t.Setenv("NOMAD_PORT_health", "not_a_number")

	if got := config.GetHTTPPort(); got != 31000 {
		t.Errorf("expected HTTP port 31000 from Nomad, got %d", got)
	}
	if got := config.GetHealthPort(); got != 9090 {
		t.Errorf("expected health port to fall back to 9090, got %d", got)
	}
	if got := config.GetMetricsPort(); got != 0 {
		t.Errorf("expected metrics port 0, got %d", got)
	}
}
