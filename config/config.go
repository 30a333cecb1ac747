package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port           int      `env:"PORT" envDefault:"5000"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`
	PostgresURL    string   `env:"POSTGRES_URL"`
	GinMode        string   `env:"GIN_MODE" envDefault:"debug"`
	Debug          bool     `env:"DEBUG"`
}

// Load reads configuration from the environment. A .env file, when present,
// is loaded first; a missing one is not an error.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
