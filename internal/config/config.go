package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	CORS        CORSConfig
	Gateway     GatewayConfig
	Limits      LimitsConfig
	Refresh     RefreshConfig
	Sessions    SessionConfig
	Log         LogConfig
	Preferences PreferencesConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// GatewayConfig holds settings for the upstream mutual fund API.
type GatewayConfig struct {
	BaseURL string
	Timeout time.Duration
	// RateLimit is the number of outbound requests per second. Zero disables pacing.
	RateLimit float64
	// FanoutLimit bounds the number of concurrent NAV requests in a batch.
	FanoutLimit int
}

// LimitsConfig holds the product limits for the user's fund sets.
type LimitsConfig struct {
	SelectionCap       int
	FavoritesCap       int
	SearchHistoryLimit int
}

// RefreshConfig holds auto refresh settings for the comparison view.
type RefreshConfig struct {
	Interval time.Duration
}

// SessionConfig holds the lifetime settings of login sessions.
type SessionConfig struct {
	// IdleTTL is how long a session may go unused before it is expired. Zero
	// keeps sessions until logout.
	IdleTTL time.Duration
	// SweepInterval is how often idle sessions are looked for.
	SweepInterval time.Duration
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string
	Format string
}

// PreferencesConfig holds settings for the local preference store.
type PreferencesConfig struct {
	// EncryptionKey is a base64 fernet key. Empty stores the user email in plain text.
	EncryptionKey string
}

// Load reads configuration from environment variables and .env file
func Load(envFiles ...string) (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load(envFiles...)

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/rabbit_invest.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost")),
		},
		Gateway: GatewayConfig{
			BaseURL: strings.TrimRight(getEnv("MFAPI_BASE_URL", "https://api.mfapi.in"), "/"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Preferences: PreferencesConfig{
			EncryptionKey: getEnv("PREFERENCE_ENCRYPTION_KEY", ""),
		},
	}

	var err error
	if config.Gateway.Timeout, err = getDuration("MFAPI_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if config.Gateway.RateLimit, err = getFloat("MFAPI_RATE_LIMIT", 10); err != nil {
		return nil, err
	}
	if config.Gateway.FanoutLimit, err = getInt("NAV_FANOUT_LIMIT", 8); err != nil {
		return nil, err
	}
	if config.Refresh.Interval, err = getDuration("NAV_REFRESH_INTERVAL", 5*time.Minute); err != nil {
		return nil, err
	}
	if config.Sessions.IdleTTL, err = getDuration("SESSION_IDLE_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if config.Sessions.SweepInterval, err = getDuration("SESSION_SWEEP_INTERVAL", 5*time.Minute); err != nil {
		return nil, err
	}
	if config.Limits.SelectionCap, err = getInt("SELECTION_CAP", 4); err != nil {
		return nil, err
	}
	if config.Limits.FavoritesCap, err = getInt("FAVORITES_CAP", 5); err != nil {
		return nil, err
	}
	if config.Limits.SearchHistoryLimit, err = getInt("SEARCH_HISTORY_LIMIT", 10); err != nil {
		return nil, err
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

func (c *Config) validate() error {
	if c.Limits.SelectionCap < 1 {
		return fmt.Errorf("SELECTION_CAP must be at least 1, got %d", c.Limits.SelectionCap)
	}
	if c.Limits.FavoritesCap < 1 {
		return fmt.Errorf("FAVORITES_CAP must be at least 1, got %d", c.Limits.FavoritesCap)
	}
	if c.Limits.SearchHistoryLimit < 1 {
		return fmt.Errorf("SEARCH_HISTORY_LIMIT must be at least 1, got %d", c.Limits.SearchHistoryLimit)
	}
	if c.Gateway.FanoutLimit < 1 {
		return fmt.Errorf("NAV_FANOUT_LIMIT must be at least 1, got %d", c.Gateway.FanoutLimit)
	}
	if c.Refresh.Interval <= 0 {
		return fmt.Errorf("NAV_REFRESH_INTERVAL must be positive, got %s", c.Refresh.Interval)
	}
	if c.Sessions.IdleTTL < 0 {
		return fmt.Errorf("SESSION_IDLE_TTL must not be negative, got %s", c.Sessions.IdleTTL)
	}
	if c.Sessions.SweepInterval <= 0 {
		return fmt.Errorf("SESSION_SWEEP_INTERVAL must be positive, got %s", c.Sessions.SweepInterval)
	}
	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
