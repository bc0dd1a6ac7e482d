package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds everything the storefront client needs at runtime.
type Config struct {
	// Base URL of the storefront REST backend, including the API root prefix.
	APIBaseURL string `env:"API_BASE_URL" envDefault:"http://localhost:4534/api"`

	AppEnv string `env:"APP_ENV" envDefault:"development"`

	// Timeout applied to every outgoing HTTP request.
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT" envDefault:"15s"`

	// StateFile is where the persisted credential/identity snapshot lives.
	StateFile string `env:"STATE_FILE" envDefault:".shopctl/session.json"`

	// StateSecret, when set, must be a 32-byte key (hex or raw) used to
	// seal the state file at rest. Empty means plain JSON.
	StateSecret string `env:"STATE_SECRET"`
}

// Load reads .env (if present) and parses typed environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	return cfg, nil
}
