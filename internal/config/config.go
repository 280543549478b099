package config

import (
	"os"
	"strconv"
	"time"

	"planetarium/internal/cache"
	"planetarium/internal/database"
	"planetarium/internal/messaging"
)

// Config holds the application configuration
type Config struct {
	Port           string
	GinMode        string
	LogLevel       string
	LogFormat      string
	RequestTimeout time.Duration

	Database      database.Config
	Cache         cache.Config
	NATS          messaging.Config
	Elasticsearch ElasticsearchConfig
}

// Load reads the configuration from environment variables
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		RequestTimeout: time.Duration(getEnvInt("REQUEST_TIMEOUT_SEC", 30)) * time.Second,

		Database: database.Config{
			Host:               getEnv("DB_HOST", "localhost"),
			Port:               getEnvInt("DB_PORT", 5432),
			User:               getEnv("DB_USER", "planetarium"),
			Password:           getEnv("DB_PASSWORD", "planetarium"),
			DBName:             getEnv("DB_NAME", "planetarium"),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 50),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetimeMin: getEnvInt("DB_CONN_MAX_LIFETIME_MIN", 5),
			ConnMaxIdleTimeMin: getEnvInt("DB_CONN_MAX_IDLE_TIME_MIN", 1),
		},

		Cache: cache.Config{
			Addr:         getEnv("CACHE_ADDR", ""),
			Password:     getEnv("CACHE_PASSWORD", ""),
			UsersHashKey: getEnv("CACHE_USERS_HASH_KEY", "users:auth"),
		},

		NATS: messaging.Config{
			URL:       getEnv("NATS_URL", ""),
			ClusterID: getEnv("NATS_CLUSTER_ID", "planetarium"),
			ClientID:  getEnv("NATS_CLIENT_ID", "planetarium-api"),
		},

		Elasticsearch: LoadElasticsearchConfig(),
	}
}

// getEnv returns the environment variable value or the given default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
