package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	HTTPPort        string
	ShutdownTimeout time.Duration

	MongoURI    string
	MongoDBName string

	RedisAddr     string
	RedisPassword string

	// Ledger storage. When LedgerDBHost is empty the ledger falls back to
	// a local sqlite file (LedgerSQLitePath), which is also what tests use.
	LedgerDBHost      string
	LedgerDBPort      int
	LedgerDBUser      string
	LedgerDBPassword  string
	LedgerDBName      string
	LedgerSQLitePath  string
	MigrationsDirPath string

	// Empty broker list disables Kafka and notifications are logged only.
	KafkaBrokers string

	CatalogTimeout time.Duration
	LedgerTimeout  time.Duration
	NotifyTimeout  time.Duration
}

func Load() (*Config, error) {
	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		return nil, fmt.Errorf("MONGO_URI environment variable is required")
	}

	dbPort, err := strconv.Atoi(getEnv("LEDGER_DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid LEDGER_DB_PORT: %w", err)
	}

	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		ShutdownTimeout: 10 * time.Second,

		MongoURI:    mongoURI,
		MongoDBName: getEnv("MONGO_DB_NAME", "shopdb"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		LedgerDBHost:      getEnv("LEDGER_DB_HOST", ""),
		LedgerDBPort:      dbPort,
		LedgerDBUser:      getEnv("LEDGER_DB_USER", "postgres"),
		LedgerDBPassword:  getEnv("LEDGER_DB_PASSWORD", "postgres"),
		LedgerDBName:      getEnv("LEDGER_DB_NAME", "ledger"),
		LedgerSQLitePath:  getEnv("LEDGER_SQLITE_PATH", "./ledger.db"),
		MigrationsDirPath: getEnv("MIGRATIONS_PATH", "./internal/ledger/migrations"),

		KafkaBrokers: getEnv("KAFKA_BROKERS", ""),

		CatalogTimeout: 2 * time.Second,
		LedgerTimeout:  5 * time.Second,
		NotifyTimeout:  10 * time.Second,
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
