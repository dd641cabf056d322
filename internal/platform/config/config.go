package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv   string `env:"APP_ENV" envDefault:"local"`
	BotToken string `env:"BOT_TOKEN,required"`

	// Translation upstream (LibreTranslate-compatible).
	LibreTranslateURL string        `env:"LIBRETRANSLATE_URL" envDefault:"http://localhost:5000"`
	TranslateTimeout  time.Duration `env:"TRANSLATE_TIMEOUT" envDefault:"10s"`
	TranslateRPS      float64       `env:"TRANSLATE_RPS" envDefault:"5"`

	// Search upstream. An empty key is allowed at startup; search commands
	// report a configuration error before any network call.
	ShodanAPIKey  string        `env:"SHODAN_KEY"`
	ShodanBaseURL string        `env:"SHODAN_BASE_URL" envDefault:"https://api.shodan.io"`
	SearchTimeout time.Duration `env:"SEARCH_TIMEOUT" envDefault:"15s"`
	SearchLimit   int           `env:"SEARCH_LIMIT" envDefault:"100"`

	// Result browser sessions.
	BrowseSessionTTL time.Duration `env:"BROWSE_SESSION_TTL" envDefault:"60s"`

	HealthPort int `env:"HEALTH_PORT" envDefault:"8080"`
}

func Load() (*Config, error) {
	_ = godotenv.Load() //nolint:errcheck // .env file is optional, error is expected when not present

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment config: %w", err)
	}

	return cfg, nil
}
