// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App          AppConfig
	Logger       LoggerConfig
	Server       ServerConfig
	Store        StoreConfig
	OpenFoodFacts OpenFoodFactsConfig
	Cache        CacheConfig
	Auth         AuthConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// StoreConfig holds persistence configuration.
type StoreConfig struct {
	// DBPath is the SQLite database file path (default: {data}/nutritrack.db).
	DBPath string
}

// OpenFoodFactsConfig holds Open Food Facts API client configuration.
type OpenFoodFactsConfig struct {
	BaseURL string
	// UserAgent is sent on every request, per the OFF terms of use.
	UserAgent string
	Timeout   time.Duration
	// RequestsPerMinute caps outbound request rate (OFF asks for ~100/min).
	RequestsPerMinute int
}

// CacheConfig holds product cache configuration.
type CacheConfig struct {
	// FreshnessWindow is the maximum age before a cached product is re-fetched.
	FreshnessWindow time.Duration
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	// AccessTokenKeyHex is the PASETO v4 symmetric key as 64 hex characters.
	AccessTokenKeyHex    string
	AccessTokenDuration  time.Duration
	RefreshTokenDuration time.Duration
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	serverPort := flag.String("port", "", "Server port (default: 8080)")
	dbPath := flag.String("db-path", "", "SQLite database path")
	offBaseURL := flag.String("off-base-url", "", "Open Food Facts API base URL")
	cacheWindow := flag.String("cache-freshness", "", "Product cache freshness window (default: 168h)")
	accessTokenKey := flag.String("access-token-key", "", "PASETO v4 symmetric key (64 hex chars)")
	accessTokenDuration := flag.String("access-token-duration", "", "Access token lifetime (e.g., 15m)")
	refreshTokenDuration := flag.String("refresh-token-duration", "", "Refresh token lifetime (e.g., 720h)")
	envFile := flag.String("env-file", ".env", "Path to .env file")

	flag.Parse()

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Port: getConfigValue(*serverPort, "SERVER_PORT", "8080"),
		},
		Store: StoreConfig{
			DBPath: getConfigValue(*dbPath, "DB_PATH", ""),
		},
		OpenFoodFacts: OpenFoodFactsConfig{
			BaseURL:           getConfigValue(*offBaseURL, "OFF_BASE_URL", "https://world.openfoodfacts.org"),
			UserAgent:         getConfigValue("", "OFF_USER_AGENT", "NutriTrack/1.0 (https://github.com/nutritrackapp/nutritrack-server)"),
			RequestsPerMinute: getIntConfigValue("", "OFF_REQUESTS_PER_MINUTE", 100),
		},
		Auth: AuthConfig{
			AccessTokenKeyHex: getConfigValue(*accessTokenKey, "ACCESS_TOKEN_KEY", ""),
		},
	}

	var err error

	cfg.OpenFoodFacts.Timeout, err = parseDurationValue("", "OFF_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}

	cfg.Cache.FreshnessWindow, err = parseDurationValue(*cacheWindow, "CACHE_FRESHNESS_WINDOW", "168h")
	if err != nil {
		return nil, err
	}

	cfg.Auth.AccessTokenDuration, err = parseDurationValue(*accessTokenDuration, "ACCESS_TOKEN_DURATION", "15m")
	if err != nil {
		return nil, err
	}

	cfg.Auth.RefreshTokenDuration, err = parseDurationValue(*refreshTokenDuration, "REFRESH_TOKEN_DURATION", "720h")
	if err != nil {
		return nil, err
	}

	cfg.Server.ReadTimeout, err = parseDurationValue("", "SERVER_READ_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}

	cfg.Server.WriteTimeout, err = parseDurationValue("", "SERVER_WRITE_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}

	cfg.Server.IdleTimeout, err = parseDurationValue("", "SERVER_IDLE_TIMEOUT", "60s")
	if err != nil {
		return nil, err
	}

	if err := cfg.expandDBPath(); err != nil {
		return nil, fmt.Errorf("invalid db path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.OpenFoodFacts.BaseURL == "" {
		return errors.New("Open Food Facts base URL cannot be empty")
	}

	if c.Cache.FreshnessWindow <= 0 {
		return errors.New("cache freshness window must be positive")
	}

	if c.Store.DBPath == "" {
		return errors.New("db path cannot be empty after expansion")
	}

	return nil
}

// expandDBPath expands ~ and makes the path absolute.
// Defaults to ~/NutriTrack/nutritrack.db.
func (c *Config) expandDBPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultPath := filepath.Join(homeDir, "NutriTrack", "nutritrack.db")

	expanded, err := expandPath(c.Store.DBPath, defaultPath)
	if err != nil {
		return err
	}
	c.Store.DBPath = expanded
	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// parseDurationValue resolves a duration from flag, env var, or default.
func parseDurationValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	raw := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, raw, err)
	}
	return d, nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments). Existing environment
// variables are not overridden.
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.Trim(strings.TrimSpace(parts[1]), `"'`)

		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}

	return scanner.Err()
}
