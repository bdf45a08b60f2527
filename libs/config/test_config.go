package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// LoadTestConfig loads configuration for integration tests from TEST_* variables.
// When the test database is not configured it returns a Config with an empty Database
// so callers can skip.
func LoadTestConfig() (*Config, error) {
	// .env is optional, look in the project root as well
	_ = godotenv.Load("../../.env")
	_ = godotenv.Load()

	cfg := &Config{}
	if os.Getenv("TEST_DB_HOST") == "" {
		return cfg, nil
	}

	db, err := loadDatabase("TEST_")
	if err != nil {
		return nil, err
	}
	cfg.Database = db

	cfg.JWT.Secret = stringEnv("TEST_JWT_SECRET", "integration-test-secret")
	if cfg.JWT.AccessTokenExpiry, err = durationEnv("TEST_JWT_ACCESS_TOKEN_EXPIRY", time.Hour); err != nil {
		return nil, fmt.Errorf("invalid test config: %w", err)
	}

	cfg.APIKey = os.Getenv("TEST_API_KEY")
	cfg.Learning.CertificateRequireQuizzes = true

	return cfg, nil
}
