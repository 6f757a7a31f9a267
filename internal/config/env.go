package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
)

// Env holds process settings read from the environment. Command-line flags
// use these values as their defaults.
type Env struct {
	Port     string `env:"CCT_PORT" envDefault:"9999"`
	HTTPPort int    `env:"CCT_HTTP_PORT" envDefault:"8080"`
	TaskFile string `env:"CCT_TASK_FILE"`
	Seed     int64  `env:"CCT_SEED" envDefault:"0"`
	Addr     string `env:"CCT_ADDR" envDefault:"localhost:9999"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load returns the process settings, exiting on malformed values.
func Load() Env {
	var cfg Env
	if err := ParseEnv(&cfg); err != nil {
		Exitf("Error: %v", err)
	}
	return cfg
}

// Exitf writes a formatted error message to stderr and exits with code 1.
func Exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
