// Package config provides configuration for muednote.
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/xiaot623/gogo/muednote/internal/domain"
)

// DefaultDatabaseURL is used when MUEDNOTE_DATABASE_URL is not set.
const DefaultDatabaseURL = "file:muednote.db?_foreign_keys=on&_busy_timeout=5000"

// Config holds the muednote configuration.
type Config struct {
	// Server settings
	HTTPPort int
	RPCPort  int

	// Database
	DatabaseURL      string
	DBMaxConns       int
	DBAcquireTimeout time.Duration

	// Intake
	IntakeMode       domain.IntakeMode
	ProcessBudget    time.Duration
	SimulatedLatency time.Duration

	// WebSocket settings
	PingInterval   time.Duration
	WriteTimeout   time.Duration
	ReadTimeout    time.Duration
	MaxMessageSize int64

	// IntakePolicy selects the intake policy: "" (accept all), "strict",
	// or a path to a rego file.
	IntakePolicy string
}

// Load loads configuration from environment variables. An env file named by
// MUEDNOTE_ENV_FILE (default .env.local) is read first when present; values
// already set in the environment win. MUEDNOTE_ENV_FILE set to an empty
// value disables the env file.
func Load() *Config {
	envFile, ok := os.LookupEnv("MUEDNOTE_ENV_FILE")
	if !ok {
		envFile = ".env.local"
	}
	LoadEnvFile(envFile)

	databaseURL := os.Getenv("MUEDNOTE_DATABASE_URL")
	if databaseURL == "" {
		log.Printf("MUEDNOTE_DATABASE_URL not found, using default")
		databaseURL = DefaultDatabaseURL
	}

	return &Config{
		HTTPPort:         getEnvInt("HTTP_PORT", 8787),
		RPCPort:          getEnvInt("RPC_PORT", 8788),
		DatabaseURL:      databaseURL,
		DBMaxConns:       getEnvInt("DB_MAX_CONNS", 5),
		DBAcquireTimeout: time.Duration(getEnvInt("DB_ACQUIRE_TIMEOUT_MS", 30000)) * time.Millisecond,
		IntakeMode:       domain.IntakeMode(getEnv("INTAKE_MODE", string(domain.IntakeModePersist))),
		ProcessBudget:    time.Duration(getEnvInt("PROCESS_BUDGET_MS", 500)) * time.Millisecond,
		SimulatedLatency: time.Duration(getEnvInt("SIMULATED_LATENCY_MS", 100)) * time.Millisecond,
		PingInterval:     time.Duration(getEnvInt("WS_PING_INTERVAL_MS", 30000)) * time.Millisecond,
		WriteTimeout:     time.Duration(getEnvInt("WS_WRITE_TIMEOUT_MS", 10000)) * time.Millisecond,
		ReadTimeout:      time.Duration(getEnvInt("WS_READ_TIMEOUT_MS", 60000)) * time.Millisecond,
		MaxMessageSize:   int64(getEnvInt("WS_MAX_MESSAGE_SIZE", 65536)),
		IntakePolicy:     os.Getenv("MUEDNOTE_INTAKE_POLICY"),
	}
}

// LoadEnvFile loads key=value pairs from path into the process environment
// without overriding existing variables. A missing file only logs a warning.
func LoadEnvFile(path string) {
	if path == "" {
		return
	}
	if err := godotenv.Load(path); err != nil {
		log.Printf("Failed to load %s: %v", path, err)
		return
	}
	log.Printf("Loaded env from %s", path)
}

// RedactedDatabaseURL returns at most the first 50 characters of the
// connection string, for startup logging.
func (c *Config) RedactedDatabaseURL() string {
	if len(c.DatabaseURL) <= 50 {
		return c.DatabaseURL
	}
	return c.DatabaseURL[:50] + "..."
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}
