// internal/config/config.go

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	NATS        NATSConfig
	Upstream    UpstreamConfig
	Simulation  SimulationConfig
	Engine      EngineConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CorsOrigins     []string
}

// DatabaseConfig holds database configuration. The database is optional:
// when unreachable the engine runs fully in memory.
type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Database     string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
	SSLMode      string
}

// NATSConfig holds NATS configuration. The event bus is optional.
type NATSConfig struct {
	URL            string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectTimeout time.Duration
}

// UpstreamConfig holds snapshot and live-stream source configuration
type UpstreamConfig struct {
	BaseURL          string
	StreamURL        string
	SnapshotInterval time.Duration
	FallbackInterval time.Duration
	RequestTimeout   time.Duration
	Window           string
	Category         string
}

// SimulationConfig holds spread-simulation backend configuration
type SimulationConfig struct {
	BaseURL string
	Timeout time.Duration
}

// EngineConfig holds derived-view configuration
type EngineConfig struct {
	AlertLimit  int
	VizMode     string
	TimeRange   string
	MaxHotspots int
}

// Load loads configuration from environment variables
func Load() (Config, error) {
	config := Config{
		Environment: getEnv("APP_ENV", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			CorsOrigins:     getEnvAsSlice("SERVER_CORS_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnvAsInt("DB_PORT", 5432),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", "postgres"),
			Database:     getEnv("DB_NAME", "infowatch"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  getEnvAsDuration("DB_MAX_LIFETIME", 5*time.Minute),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
		},
		NATS: NATSConfig{
			URL:            getEnv("NATS_URL", "nats://localhost:4222"),
			MaxReconnects:  getEnvAsInt("NATS_MAX_RECONNECTS", 10),
			ReconnectWait:  getEnvAsDuration("NATS_RECONNECT_WAIT", 1*time.Second),
			ConnectTimeout: getEnvAsDuration("NATS_CONNECT_TIMEOUT", 2*time.Second),
		},
		Upstream: UpstreamConfig{
			BaseURL:          getEnv("UPSTREAM_BASE_URL", "http://localhost:8000/api/v1"),
			StreamURL:        getEnv("UPSTREAM_STREAM_URL", "ws://localhost:8000/api/v1/heatmap/stream"),
			SnapshotInterval: getEnvAsDuration("UPSTREAM_SNAPSHOT_INTERVAL", 30*time.Second),
			FallbackInterval: getEnvAsDuration("UPSTREAM_FALLBACK_INTERVAL", 3*time.Second),
			RequestTimeout:   getEnvAsDuration("UPSTREAM_REQUEST_TIMEOUT", 15*time.Second),
			Window:           getEnv("UPSTREAM_WINDOW", "24h"),
			Category:         getEnv("UPSTREAM_CATEGORY", ""),
		},
		Simulation: SimulationConfig{
			BaseURL: getEnv("SIMULATION_BASE_URL", "http://localhost:8000/api/v1"),
			Timeout: getEnvAsDuration("SIMULATION_TIMEOUT", 10*time.Second),
		},
		Engine: EngineConfig{
			AlertLimit:  getEnvAsInt("ENGINE_ALERT_LIMIT", 6),
			VizMode:     getEnv("ENGINE_VIZ_MODE", "volume"),
			TimeRange:   getEnv("ENGINE_TIME_RANGE", "24h"),
			MaxHotspots: getEnvAsInt("ENGINE_MAX_HOTSPOTS", 400),
		},
	}

	return config, validate(config)
}

// ConnString returns a pgx connection string
func (c DatabaseConfig) ConnString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s pool_max_conns=%d",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode, c.MaxOpenConns,
	)
}

// validate checks if config is valid
func validate(config Config) error {
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}
	if config.Upstream.SnapshotInterval <= 0 {
		return fmt.Errorf("snapshot interval must be positive")
	}
	if config.Upstream.FallbackInterval <= 0 {
		return fmt.Errorf("fallback interval must be positive")
	}

	switch config.Engine.VizMode {
	case "volume", "risk":
	default:
		return fmt.Errorf("unknown viz mode: %s", config.Engine.VizMode)
	}

	switch config.Engine.TimeRange {
	case "1h", "24h", "7d":
	default:
		return fmt.Errorf("unknown time range: %s", config.Engine.TimeRange)
	}

	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	return strings.Split(valueStr, ",")
}
