package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	ServerPort     string
	ServerHost     string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxRequestBody int64

	// Database
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Legacy database (one-shot merge source)
	LegacyDBPath string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Kafka
	KafkaBrokers      []string
	KafkaGroupID      string
	ImportEventsTopic string

	// Remote tabular API
	TabularBaseURL       string
	TabularAPIKey        string
	TabularBaseID        string
	TabularLeadsTable    string
	TabularBookingsTable string
	TabularTimeout       time.Duration

	// Import pipeline
	AliasConfigPath string
	ImportStatusTTL time.Duration
}

func Load() *Config {
	return &Config{
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		ServerHost:     getEnv("SERVER_HOST", "0.0.0.0"),
		ReadTimeout:    getDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout:   getDuration("WRITE_TIMEOUT", 30*time.Second),
		MaxRequestBody: int64(getIntEnv("MAX_REQUEST_BODY_BYTES", 8*1024*1024)),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "guestflow"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "guestflow123"),
		PostgresDB:       getEnv("POSTGRES_DB", "guestflow"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		LegacyDBPath: getEnv("LEGACY_DB_PATH", "cash_flow.db"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),

		KafkaBrokers:      getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
		KafkaGroupID:      getEnv("KAFKA_GROUP_ID", "guestflow-platform"),
		ImportEventsTopic: getEnv("IMPORT_EVENTS_TOPIC", "import-events"),

		TabularBaseURL:       getEnv("TABULAR_API_BASE_URL", "https://api.airtable.com/v0"),
		TabularAPIKey:        getEnv("TABULAR_API_KEY", ""),
		TabularBaseID:        getEnv("TABULAR_BASE_ID", ""),
		TabularLeadsTable:    getEnv("TABULAR_LEADS_TABLE", "Main"),
		TabularBookingsTable: getEnv("TABULAR_BOOKINGS_TABLE", "Bookings"),
		TabularTimeout:       getDuration("TABULAR_API_TIMEOUT", 30*time.Second),

		AliasConfigPath: getEnv("ALIAS_CONFIG_PATH", ""),
		ImportStatusTTL: getDuration("IMPORT_STATUS_TTL", 24*time.Hour),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getStringSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
