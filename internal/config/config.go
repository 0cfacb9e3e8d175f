package config

import (
	"os"
	"strconv"
	"strings"

	"safetyhub/internal/errors"
)

// Store drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config represents the complete application configuration
type Config struct {
	Database  DatabaseConfig
	Server    ServerConfig
	Paths     PathConfig
	Profiling ProfilingConfig
	LogLevel  string
}

// DatabaseConfig selects the document store backend
type DatabaseConfig struct {
	Driver string
	URL    string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port        string
	GinMode     string
	MaxUploadMB int
}

// PathConfig holds file system paths
type PathConfig struct {
	ModelSavePath         string
	AnalyticsCachePath    string
	CollectionMappingFile string
	CollectionsFile       string
}

// ProfilingConfig holds performance profiling settings
type ProfilingConfig struct {
	Port    string
	Enabled bool
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database:  loadDatabaseConfig(),
		Server:    loadServerConfig(),
		Paths:     loadPathConfig(),
		Profiling: loadProfilingConfig(),
		LogLevel:  getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func loadDatabaseConfig() DatabaseConfig {
	driver := strings.ToLower(getEnvOrDefault("STORE_DRIVER", DriverSQLite))
	url := os.Getenv("DATABASE_URL")
	if url == "" && driver == DriverSQLite {
		url = "file:safetyhub.db"
	}
	return DatabaseConfig{Driver: driver, URL: url}
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port:        getEnvOrDefault("PORT", "5000"),
		GinMode:     getEnvOrDefault("GIN_MODE", "debug"),
		MaxUploadMB: getEnvIntOrDefault("MAX_UPLOAD_MB", 16),
	}
}

func loadPathConfig() PathConfig {
	return PathConfig{
		ModelSavePath:         getEnvOrDefault("MODEL_SAVE_PATH", "model.json"),
		AnalyticsCachePath:    getEnvOrDefault("ANALYTICS_CACHE_PATH", "safety_analytics_results.json"),
		CollectionMappingFile: getEnvOrDefault("COLLECTION_MAPPING_FILE", ""),
		CollectionsFile:       getEnvOrDefault("COLLECTIONS_FILE", "collections.json"),
	}
}

func loadProfilingConfig() ProfilingConfig {
	return ProfilingConfig{
		Port:    getEnvOrDefault("PPROF_PORT", "6060"),
		Enabled: getEnvBoolOrDefault("PPROF_ENABLED", false),
	}
}

func validateConfig(config *Config) error {
	switch config.Database.Driver {
	case DriverPostgres:
		if config.Database.URL == "" {
			return errors.ConfigInvalid("DATABASE_URL is required for the postgres store")
		}
	case DriverSQLite:
	default:
		return errors.ConfigInvalid("STORE_DRIVER must be postgres or sqlite, got " + strconv.Quote(config.Database.Driver))
	}
	if _, err := strconv.Atoi(config.Server.Port); err != nil {
		return errors.ConfigInvalid("PORT must be numeric, got " + strconv.Quote(config.Server.Port))
	}
	switch config.Server.GinMode {
	case "debug", "release", "test":
	default:
		return errors.ConfigInvalid("GIN_MODE must be debug, release or test")
	}
	if config.Server.MaxUploadMB <= 0 {
		return errors.ConfigInvalid("MAX_UPLOAD_MB must be positive")
	}
	if config.Paths.ModelSavePath == "" {
		return errors.ConfigInvalid("MODEL_SAVE_PATH is required")
	}
	return nil
}

// MaxUploadBytes is the request body limit for uploads.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Server.MaxUploadMB) << 20
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
