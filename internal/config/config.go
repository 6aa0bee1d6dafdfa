// Package config centralizes all environment-driven settings with sensible
// defaults. A .env file is honored when present; real environment variables
// always win.
package config

import (
	"fmt"

	env "github.com/Netflix/go-env"
	"github.com/joho/godotenv"
)

type Config struct {
	Port     int    `env:"PORT,default=3000"`
	AppEnv   string `env:"APP_ENV,default=development"`
	LogLevel string `env:"LOG_LEVEL,default=info"`

	// Ollama serves as the local text-generation backend.
	OllamaHost  string `env:"OLLAMA_HOST,default=http://localhost:11434"`
	OllamaModel string `env:"OLLAMA_MODEL,default=llama3.1:8b"`
}

// Load reads .env (if any) and the process environment into a Config.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// IsDev reports whether the server runs in development mode.
func (c Config) IsDev() bool {
	return c.AppEnv == "development"
}

// Addr returns the listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
