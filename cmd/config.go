package cmd

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the brokerage connection settings, read from the environment
// (an optional .env file is loaded first). Credentials are only required by
// the login command, which validates them itself.
type Config struct {
	Username   string `env:"RH_USERNAME"`
	Password   string `env:"RH_PASSWORD"`
	TOTPSecret string `env:"RH_TOTP_SECRET"`

	APIURL       string        `env:"RH_API_URL" envDefault:"https://api.robinhood.com"`
	CryptoAPIURL string        `env:"RH_CRYPTO_API_URL" envDefault:"https://nummus.robinhood.com"`
	Timeout      time.Duration `env:"RH_API_TIMEOUT" envDefault:"30s"`
	Debug        bool          `env:"RH_API_DEBUG" envDefault:"false"`
}

// LoadConfig reads the configuration from the environment.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config error: %w", err)
	}
	return cfg, nil
}
