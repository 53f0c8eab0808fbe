// Package config reads server configuration from command-line flags and
// environment variables. Environment variables win over flags.
package config

import (
	"flag"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the server configuration.
type Config struct {
	RunAddress string `env:"RUN_ADDRESS"`
	DBPath     string `env:"DB_PATH"`
	LogLevel   string `env:"LOG_LEVEL"`
}

// Parse reads configuration from flags and environment variables.
func Parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envRunAddress := cfg.RunAddress
	envDBPath := cfg.DBPath
	envLogLevel := cfg.LogLevel

	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "address and port for HTTP server")
	flag.StringVar(&cfg.DBPath, "d", "./data/splitledger.db", "path to the SQLite database file")
	flag.StringVar(&cfg.LogLevel, "l", "info", "log level: debug, info, warn, error")

	flag.Parse()

	if envRunAddress != "" {
		cfg.RunAddress = envRunAddress
	}
	if envDBPath != "" {
		cfg.DBPath = envDBPath
	}
	if envLogLevel != "" {
		cfg.LogLevel = envLogLevel
	}

	return cfg, nil
}
