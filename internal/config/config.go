package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// TMDB metadata provider
	TMDBAPIKey  string
	TMDBBaseURL string

	// Release-date resolver
	RefreshIntervalHours int // Hours between scheduled resolver runs (default: 6)
	NoDateRecheckHours   int // Hours before re-asking about an entity with no known date (default: 6)

	// Server
	ServerPort string

	// Paths
	DatabaseFile string // $CONFIG_DIR/tracknarr.db

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Setup viper FIRST to load .env file
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Load .env file if it exists (ignore if not found)
	_ = viper.ReadInConfig()

	// Set defaults
	viper.SetDefault("TMDB_BASE_URL", "https://api.themoviedb.org/3")
	viper.SetDefault("REFRESH_INTERVAL_HOURS", 6)
	viper.SetDefault("NO_DATE_RECHECK_HOURS", 6)
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("LOG_LEVEL", "info")

	// NOW read CONFIG_DIR from viper (which has loaded .env file)
	configDir := viper.GetString("CONFIG_DIR")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config", "tracknarr")
	} else {
		// Convert relative path to absolute path
		absPath, err := filepath.Abs(configDir)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path for CONFIG_DIR: %w", err)
		}
		configDir = absPath
	}

	// Create config directory if it doesn't exist
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	config := &Config{
		// TMDB
		TMDBAPIKey:  viper.GetString("TMDB_API_KEY"),
		TMDBBaseURL: viper.GetString("TMDB_BASE_URL"),

		// Resolver
		RefreshIntervalHours: viper.GetInt("REFRESH_INTERVAL_HOURS"),
		NoDateRecheckHours:   viper.GetInt("NO_DATE_RECHECK_HOURS"),

		// Server
		ServerPort: viper.GetString("SERVER_PORT"),

		// Paths
		DatabaseFile: filepath.Join(configDir, "tracknarr.db"),

		// Logging
		LogLevel: viper.GetString("LOG_LEVEL"),
	}

	// Validate required fields
	if config.TMDBAPIKey == "" {
		return nil, fmt.Errorf("TMDB_API_KEY is required")
	}
	if config.RefreshIntervalHours < 1 || config.RefreshIntervalHours > 23 {
		return nil, fmt.Errorf("REFRESH_INTERVAL_HOURS must be between 1 and 23")
	}

	return config, nil
}
