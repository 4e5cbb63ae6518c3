package main

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every knob the server reads from the environment. A local
// .env file is loaded first when present so dev setups need no exports.
type Config struct {
	Addr          string   `env:"COMPASS_ADDR" envDefault:":8080"`
	SQLitePath    string   `env:"COMPASS_SQLITE_PATH"`
	MigrationsDir string   `env:"COMPASS_MIGRATIONS_DIR"`
	AdminEmails   []string `env:"COMPASS_ADMIN_EMAILS" envSeparator:","`
	Commit        string   `env:"COMPASS_COMMIT"`
	BuildTime     string   `env:"COMPASS_BUILD_TIME"`
}

func loadConfig() (Config, error) {
	_ = godotenv.Load()
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
