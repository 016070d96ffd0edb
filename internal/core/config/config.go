// Package config provides configuration management for CrateKeeper services.
package config

import "time"

// ConsoleConfig holds configuration for the administration console service.
type ConsoleConfig struct {
	Host           string
	Port           int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	RequestTimeout time.Duration
	Enabled        bool
}

// DefaultConsoleConfig returns configuration with default values.
func DefaultConsoleConfig() *ConsoleConfig {
	return &ConsoleConfig{
		Host:           "0.0.0.0",
		Port:           8080,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   30 * time.Second,
		RequestTimeout: 30 * time.Second,
		Enabled:        true,
	}
}
