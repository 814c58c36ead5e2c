// Package config loads configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"time"
)

// Env holds the configuration values for the application.
type Env struct {
	Port              string
	DBPath            string
	AdminPasswordHash string
	JWTSecret         string
	TokenTTL          time.Duration
	RetentionMaxAge   time.Duration
	SweepInterval     time.Duration
}

// Load reads the environment and returns an Env struct. The auth settings
// have no defaults: serving the admin API with a guessable secret would be
// worse than failing to start.
func Load() (Env, error) {
	e := Env{
		Port:              get("PORT", "8080"),
		DBPath:            get("DB_PATH", "./data/groups.db"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		TokenTTL:          duration("TOKEN_TTL", 12*time.Hour),
		RetentionMaxAge:   duration("RETENTION_MAX_AGE", 2*365*24*time.Hour),
		SweepInterval:     duration("SWEEP_INTERVAL", 24*time.Hour),
	}
	if e.AdminPasswordHash == "" {
		return e, fmt.Errorf("missing env ADMIN_PASSWORD_HASH")
	}
	if e.JWTSecret == "" {
		return e, fmt.Errorf("missing env JWT_SECRET")
	}
	return e, nil
}

// get returns the value of the environment variable k or def if not set.
func get(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// duration parses the environment variable k as a time.Duration, falling back
// to def when unset or unparseable.
func duration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
