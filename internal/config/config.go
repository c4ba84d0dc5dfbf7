package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the runtime settings. Values resolve in layers: built-in
// defaults, then an optional YAML file named by CONFIG_FILE, then the
// environment (with .env support).
type Config struct {
	Port           string  `yaml:"port"`
	Environment    string  `yaml:"environment"`
	DatabaseURL    string  `yaml:"database_url"`
	TickIntervalMs int     `yaml:"tick_interval_ms"`
	StartingCash   float64 `yaml:"starting_cash"`
	Seed           int64   `yaml:"seed"`
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Port:           "8080",
		Environment:    "development",
		DatabaseURL:    "",
		TickIntervalMs: 1200,
		StartingCash:   100000,
		Seed:           0,
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := config.loadFile(path); err != nil {
			log.Printf("Failed to load config file %s: %v", path, err)
		}
	}

	config.Port = getEnv("PORT", config.Port)
	config.Environment = getEnv("ENVIRONMENT", config.Environment)
	config.DatabaseURL = getEnv("DATABASE_URL", config.DatabaseURL)
	if v := os.Getenv("TICK_INTERVAL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			config.TickIntervalMs = n
		} else {
			log.Printf("Invalid TICK_INTERVAL_MS %q, keeping %dms", v, config.TickIntervalMs)
		}
	}
	if v := os.Getenv("STARTING_CASH"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			config.StartingCash = f
		} else {
			log.Printf("Invalid STARTING_CASH %q, keeping %.2f", v, config.StartingCash)
		}
	}
	if v := os.Getenv("SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.Seed = n
		} else {
			log.Printf("Invalid SEED %q, keeping %d", v, config.Seed)
		}
	}

	return config
}

// TickInterval returns the price cycle spacing as a time.Duration.
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.TickIntervalMs) * time.Millisecond
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
