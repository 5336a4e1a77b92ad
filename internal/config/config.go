package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the inspection client consumes.
type Config struct {
	// Remote debugging endpoint.
	Host string
	Port int

	// Per-command reply timeout.
	CommandTimeout time.Duration

	Log struct {
		Level  string
		Writer []string
		File   string
	}

	Sqlite struct {
		Dsn    string
		Prefix string
	}
}

// New returns the defaults: Chrome's standard remote debugging endpoint and a
// 10 second command timeout.
func New() *Config {
	cfg := &Config{
		Host:           "localhost",
		Port:           9222,
		CommandTimeout: 10 * time.Second,
	}
	cfg.Log.Level = "info"
	cfg.Log.Writer = []string{"console"}
	cfg.Log.File = "cdpinspect.log"
	cfg.Sqlite.Dsn = "cdpinspect.sqlite3"
	cfg.Sqlite.Prefix = "cdpinspect_"
	return cfg
}

// Load builds a Config from the environment on top of the defaults. A .env
// file is honored when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := New()
	cfg.Host = getEnv("CHROME_DEBUG_HOST", cfg.Host)

	if v := os.Getenv("CHROME_DEBUG_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid CHROME_DEBUG_PORT: %w", err)
		}
		cfg.Port = port
	}

	if v := os.Getenv("CDP_COMMAND_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid CDP_COMMAND_TIMEOUT: %w", err)
		}
		cfg.CommandTimeout = d
	}

	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	if v := os.Getenv("LOG_WRITER"); v != "" {
		cfg.Log.Writer = strings.Split(v, ",")
	}
	cfg.Log.File = getEnv("LOG_FILE", cfg.Log.File)
	cfg.Sqlite.Dsn = getEnv("SQLITE_DSN", cfg.Sqlite.Dsn)
	cfg.Sqlite.Prefix = getEnv("SQLITE_PREFIX", cfg.Sqlite.Prefix)

	return cfg, nil
}

// DevToolsURL is the HTTP base of the discovery endpoint.
func (c *Config) DevToolsURL() string {
	return fmt.Sprintf("http://%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
