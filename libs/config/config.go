// Package config provides configuration for the Go & Grow binaries
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Database      DatabaseConfig
	Redis         RedisConfig
	Server        ServerConfig
	Logging       LoggingConfig
	CORS          CORSConfig
	JWT           JWTConfig
	SMTP          SMTPConfig
	Learning      LearningConfig
	Admin         AdminConfig
	APIKey        string
	UploadsDir    string
	CacheTTL      time.Duration
	ReconcileCron string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns host:port of the Redis server
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port                int
	RegistrationEnabled bool
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigins []string
}

// JWTConfig holds JWT token configuration
type JWTConfig struct {
	Secret            string
	AccessTokenExpiry time.Duration
}

// SMTPConfig holds SMTP server configuration
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// LearningConfig holds the switches that shape grading and certification.
type LearningConfig struct {
	// StrictAnswers disables trimming and case folding when comparing quiz answers.
	StrictAnswers bool
	// CertificateRequireQuizzes requires every course quiz to be passed before a certificate is issued.
	CertificateRequireQuizzes bool
}

// AdminConfig holds the bootstrap administrator account
type AdminConfig struct {
	Email    string
	Password string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// .env is optional
	godotenv.Load()

	cfg := &Config{}

	var err error
	if cfg.Database, err = loadDatabase(""); err != nil {
		return nil, err
	}

	if cfg.Server.Port, err = intEnv("SERVER_PORT", 8080); err != nil {
		return nil, err
	}
	if cfg.Server.RegistrationEnabled, err = boolEnv("REGISTRATION_ENABLED", false); err != nil {
		return nil, err
	}

	cfg.Logging.Level = stringEnv("LOG_LEVEL", "info")
	cfg.CORS.AllowedOrigins = parseOrigins(os.Getenv("CORS_ALLOWED_ORIGINS"))

	cfg.JWT.Secret = os.Getenv("JWT_SECRET")
	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.JWT.AccessTokenExpiry, err = durationEnv("JWT_ACCESS_TOKEN_EXPIRY", 24*time.Hour); err != nil {
		return nil, err
	}

	// Guards the internal reconcile endpoint; empty disables it
	cfg.APIKey = os.Getenv("API_KEY")

	cfg.Redis.Host = stringEnv("REDIS_HOST", "localhost")
	if cfg.Redis.Port, err = intEnv("REDIS_PORT", 6379); err != nil {
		return nil, err
	}
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")
	if cfg.Redis.DB, err = intEnv("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = durationEnv("CACHE_TTL", 5*time.Minute); err != nil {
		return nil, err
	}

	cfg.SMTP.Host = stringEnv("SMTP_HOST", "localhost")
	if cfg.SMTP.Port, err = intEnv("SMTP_PORT", 587); err != nil {
		return nil, err
	}
	cfg.SMTP.Username = os.Getenv("SMTP_USERNAME")
	cfg.SMTP.Password = os.Getenv("SMTP_PASSWORD")
	cfg.SMTP.From = stringEnv("SMTP_FROM", "noreply@flowitec.com")

	cfg.UploadsDir = stringEnv("UPLOADS_DIR", "./uploads")

	if cfg.Learning.StrictAnswers, err = boolEnv("QUIZ_STRICT_ANSWERS", false); err != nil {
		return nil, err
	}
	if cfg.Learning.CertificateRequireQuizzes, err = boolEnv("CERTIFICATE_REQUIRE_QUIZZES", true); err != nil {
		return nil, err
	}

	cfg.ReconcileCron = stringEnv("RECONCILE_CRON", "*/15 * * * *")

	cfg.Admin.Email = stringEnv("ADMIN_EMAIL", "admin@flowitec.com")
	cfg.Admin.Password = os.Getenv("ADMIN_PASSWORD")

	return cfg, nil
}

// DSN returns the database connection string
func (c *Config) DSN() string {
	return c.Database.DSN()
}

// DSN returns the MySQL connection string for these settings
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&multiStatements=true",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.DBName,
	)
}

func loadDatabase(prefix string) (DatabaseConfig, error) {
	var db DatabaseConfig
	for _, item := range []struct {
		key string
		dst *string
	}{
		{"DB_HOST", &db.Host},
		{"DB_USER", &db.User},
		{"DB_PASSWORD", &db.Password},
		{"DB_NAME", &db.DBName},
	} {
		v := os.Getenv(prefix + item.key)
		if v == "" {
			return db, fmt.Errorf("%s%s is required", prefix, item.key)
		}
		*item.dst = v
	}

	portStr := os.Getenv(prefix + "DB_PORT")
	if portStr == "" {
		return db, fmt.Errorf("%sDB_PORT is required", prefix)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return db, fmt.Errorf("invalid %sDB_PORT: %w", prefix, err)
	}
	db.Port = port
	return db, nil
}

// parseOrigins splits a comma-separated origin list, defaulting to "*"
func parseOrigins(raw string) []string {
	origins := make([]string, 0)
	for _, origin := range strings.Split(raw, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func stringEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func boolEnv(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
