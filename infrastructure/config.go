package infrastructure

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	LogLevel string
	Port     string

	DBDSN        string
	SeedDemoData bool

	// Empty RedisAddr selects the in-process locker.
	RedisAddr string
	LockTTL   time.Duration

	// Empty RabbitMQURL writes audit events straight to the database.
	RabbitMQURL string

	ResumeServiceURL    string
	BiasServiceURL      string
	InterviewServiceURL string
	GatewayTimeout      time.Duration

	WeekStart    time.Weekday
	SweepEnabled bool
}

// LoadEnv loads .env if present; the process environment wins.
func LoadEnv() {
	_ = godotenv.Load()
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Env:                 getEnvOrDefault("APP_ENV", "development"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		Port:                getEnvOrDefault("PORT", "8080"),
		DBDSN:               os.Getenv("DB_DSN"),
		RedisAddr:           os.Getenv("REDIS_ADDR"),
		RabbitMQURL:         os.Getenv("RABBITMQ_URL"),
		ResumeServiceURL:    getEnvOrDefault("RESUME_SERVICE_URL", "http://localhost:5001"),
		BiasServiceURL:      getEnvOrDefault("BIAS_SERVICE_URL", "http://localhost:5002"),
		InterviewServiceURL: getEnvOrDefault("INTERVIEW_SERVICE_URL", "http://localhost:5004"),
	}

	var err error
	if cfg.SeedDemoData, err = getEnvBool("SEED_DEMO_DATA", false); err != nil {
		return nil, err
	}
	if cfg.SweepEnabled, err = getEnvBool("METRICS_SWEEP_ENABLED", true); err != nil {
		return nil, err
	}
	if cfg.GatewayTimeout, err = getEnvDuration("GATEWAY_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.LockTTL, err = getEnvDuration("LOCK_TTL", 2*time.Minute); err != nil {
		return nil, err
	}
	if cfg.WeekStart, err = parseWeekday(getEnvOrDefault("WEEK_START", "monday")); err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.DBDSN == "" {
		return errors.New("DB_DSN is not set in environment")
	}
	if cfg.GatewayTimeout <= 0 {
		return errors.New("GATEWAY_TIMEOUT must be positive")
	}
	if cfg.LockTTL <= 0 {
		return errors.New("LOCK_TTL must be positive")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
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

func parseWeekday(s string) (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), strings.TrimSpace(s)) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("invalid WEEK_START %q", s)
}
