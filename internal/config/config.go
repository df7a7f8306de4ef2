package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	// Discord
	DiscordToken string
	AppID        string
	GuildID      string

	// Where entity collections and the activity log are persisted.
	DataDir string

	// Reconciliation period. Short enough that deadline-to-alert latency
	// stays bounded, long enough to keep Discord call volume sane.
	TickInterval time.Duration

	// Role mentioned in channel alerts; empty falls back to @here.
	AlertRoleName string

	// HTTP health/metrics server.
	Port int

	LogLevel    string
	LogFormat   string
	Environment string
	Version     string
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists, but don't fail if it doesn't (could be real env vars)
	_ = godotenv.Load()

	if err := ValidateEnv(); err != nil {
		return nil, err
	}

	cfg := &Config{
		DiscordToken:  os.Getenv("DISCORD_TOKEN"),
		AppID:         os.Getenv("DISCORD_APP_ID"),
		GuildID:       os.Getenv("DISCORD_GUILD_ID"),
		DataDir:       getEnv("DATA_DIR", "data"),
		AlertRoleName: getEnv("ALERT_ROLE_NAME", ""),
		LogLevel:      getEnv("LOG_LEVEL", "INFO"),
		LogFormat:     getEnv("LOG_FORMAT", "text"),
		Environment:   getEnv("ENVIRONMENT", "dev"),
		Version:       getEnv("VERSION", "dev"),
	}

	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT value: %w", err)
	}
	cfg.Port = port

	tickStr := getEnv("TICK_INTERVAL", "20s")
	tick, err := time.ParseDuration(tickStr)
	if err != nil {
		return nil, fmt.Errorf("invalid TICK_INTERVAL value: %w", err)
	}
	if tick <= 0 {
		return nil, fmt.Errorf("TICK_INTERVAL must be positive, got %s", tick)
	}
	cfg.TickInterval = tick

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
