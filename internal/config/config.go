// Package config loads application configuration from environment variables.
// There is deliberately no other configuration source: the process receives
// everything it needs at startup and nothing reads the environment afterwards.
package config

import (
	"log"
	"os"
)

// Config holds all runtime configuration values. Each field corresponds to an
// environment variable. Database credentials are required; the rest fall back
// to sensible defaults for local development.
type Config struct {
	Env    string // application environment (e.g. "dev", "prod")
	Port   string // HTTP port to listen on
	DBHost string // Postgres host address
	DBPort string // Postgres port number
	DBUser string // Postgres username
	DBPass string // Postgres password (optional)
	DBName string // Postgres database name
}

// Load reads configuration from the environment. Missing required variables
// cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:    envStr("APP_ENV", "dev"),
		Port:   envStr("APP_PORT", "8080"),
		DBHost: must("DB_HOST"),
		DBPort: envStr("DB_PORT", "5432"),
		DBUser: must("DB_USER"),
		DBPass: os.Getenv("DB_PASSWORD"), // empty allowed
		DBName: envStr("DB_NAME", "plz"),
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
