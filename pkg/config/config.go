package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Bar source kinds
const (
	BarSourceCSV      = "csv"
	BarSourcePostgres = "postgres"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	Env string // development, staging, production

	// Data
	Data DataConfig

	// Database (optional, only for BAR_SOURCE=postgres)
	Database DatabaseConfig

	// Backtest
	Backtest BacktestConfig

	// Results store (SQLite)
	ResultsDSN string

	// Scheduler
	ScreenCron string

	// Logging
	LogLevel  string
	LogFormat string
}

// DataConfig holds bar input configuration
type DataConfig struct {
	BarSource    string // csv, postgres
	HistoryDir   string // <code>.csv per ticker
	UniverseFile string // optional ticker list with metadata
	OutputDir    string // CSV exports
	StrategyFile string // optional strategy YAML
	QueryRPS     int    // postgres query throttle, 0 = unlimited
}

// BacktestConfig holds engine-wide defaults
type BacktestConfig struct {
	InitialCapital float64
	Workers        int
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	// Try multiple paths for .env file
	loadEnvFile()

	cfg := &Config{
		Env: getEnv("ENV", "development"),

		Data: DataConfig{
			BarSource:    getEnv("BAR_SOURCE", BarSourceCSV),
			HistoryDir:   getEnv("HISTORY_DATA_DIR", "./history_data"),
			UniverseFile: getEnv("UNIVERSE_FILE", ""),
			OutputDir:    getEnv("OUTPUT_DIR", "."),
			StrategyFile: getEnv("STRATEGY_FILE", ""),
			QueryRPS:     getEnvAsInt("DB_QUERY_RPS", 0),
		},

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Backtest: BacktestConfig{
			InitialCapital: getEnvAsFloat("INITIAL_CAPITAL", 1_000_000),
			Workers:        getEnvAsInt("WORKERS", DefaultWorkers()),
		},

		ResultsDSN: getEnv("RESULTS_DSN", "backtest_results.db"),
		ScreenCron: getEnv("SCREEN_CRON", "0 30 15 * * 1-5"), // 평일 15:30 장 마감 후

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// DefaultWorkers is NumCPU-1, never below 1
func DefaultWorkers() int {
	n := runtime.NumCPU() - 1
	if n < 1 {
		return 1
	}
	return n
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	// Validate environment
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	switch c.Data.BarSource {
	case BarSourceCSV:
		if c.Data.HistoryDir == "" {
			return fmt.Errorf("HISTORY_DATA_DIR is required for BAR_SOURCE=csv")
		}
	case BarSourcePostgres:
		// Database URL is required only when bars come from PostgreSQL
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required for BAR_SOURCE=postgres")
		}
	default:
		return fmt.Errorf("BAR_SOURCE must be one of: csv, postgres")
	}

	if c.Backtest.InitialCapital <= 0 {
		return fmt.Errorf("INITIAL_CAPITAL must be > 0")
	}
	if c.Backtest.Workers < 1 {
		return fmt.Errorf("WORKERS must be >= 1")
	}
	if c.Data.QueryRPS < 0 {
		return fmt.Errorf("DB_QUERY_RPS must be >= 0")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	// Try paths in order of priority
	paths := []string{
		".env", // Current directory
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
