package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig loads configuration from file using viper.
// CLI flags > environment > config file > defaults precedence.
func LoadConfig(configPath string) (*ConsoleConfig, error) {
	v := viper.New()

	// Set defaults matching DefaultConsoleConfig
	v.SetDefault("console.host", "0.0.0.0")
	v.SetDefault("console.port", 8080)
	v.SetDefault("console.read_timeout", "15s")
	v.SetDefault("console.write_timeout", "30s")
	v.SetDefault("console.request_timeout", "30s")
	v.SetDefault("console.enabled", true)

	// Bind environment variables with CK_ prefix
	v.SetEnvPrefix("CK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Credentials belong in the database URL flag or environment, never in
	// the config file checked into deployment repos.
	if err := validateNoSecretsInConfig(v); err != nil {
		return nil, err
	}

	cfg := &ConsoleConfig{
		Host:           v.GetString("console.host"),
		Port:           v.GetInt("console.port"),
		ReadTimeout:    v.GetDuration("console.read_timeout"),
		WriteTimeout:   v.GetDuration("console.write_timeout"),
		RequestTimeout: v.GetDuration("console.request_timeout"),
		Enabled:        v.GetBool("console.enabled"),
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateConfig checks port range and positive timeouts.
func validateConfig(cfg *ConsoleConfig) error {
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", cfg.Port)
	}
	if cfg.ReadTimeout <= 0 {
		return fmt.Errorf("read_timeout must be positive, got %v", cfg.ReadTimeout)
	}
	if cfg.WriteTimeout <= 0 {
		return fmt.Errorf("write_timeout must be positive, got %v", cfg.WriteTimeout)
	}
	if cfg.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %v", cfg.RequestTimeout)
	}
	return nil
}

// validateNoSecretsInConfig enforces environment-only credentials.
func validateNoSecretsInConfig(v *viper.Viper) error {
	if v.IsSet("db_password") || v.IsSet("console.db_password") {
		return fmt.Errorf("database credentials not allowed in config files (use the --db-url flag or CK_DB_URL)")
	}
	return nil
}
