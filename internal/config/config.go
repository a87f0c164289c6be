package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	AppName string
	Env     string
	Host    string
	Port    int

	DBDriver    string
	SQLitePath  string
	DatabaseURL string

	JWTSecret          string
	AccessTokenMinutes int
	BcryptCost         int

	CORSOrigins []string
	Debug       bool
}

// Load builds the configuration from the environment. Values from .env.local
// and .env are layered in first; real environment variables always win
// because godotenv.Load never overwrites existing keys.
func Load() (*Config, error) {
	loadDotEnv()

	cfg := &Config{
		AppName: getEnv("APP_NAME", "messagely API"),
		Env:     getEnv("APP_ENV", "development"),
		Host:    getEnv("HTTP_HOST", "0.0.0.0"),
		Port:    getEnvAsInt("HTTP_PORT", 8000),

		DBDriver:   getEnv("DB_DRIVER", DriverSQLite),
		SQLitePath: getEnv("MESSAGELY_DB", "messagely.db"),

		JWTSecret:          os.Getenv("JWT_SECRET"),
		AccessTokenMinutes: getEnvAsInt("ACCESS_TOKEN_EXPIRE_MINUTES", 60*24),
		BcryptCost:         getEnvAsInt("BCRYPT_WORK_FACTOR", 12),

		Debug: getEnvAsBool("DEBUG", true),
	}

	switch cfg.DBDriver {
	case DriverSQLite:
		// nothing extra to resolve
	case DriverPostgres:
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(getEnv("POSTGRES_USER", "postgres"), getEnv("POSTGRES_PASSWORD", "postgres")),
			Host:     fmt.Sprintf("%s:%s", getEnv("POSTGRES_HOST", "localhost"), getEnv("POSTGRES_PORT", "5432")),
			Path:     getEnv("POSTGRES_DB", "messagely"),
			RawQuery: "sslmode=" + getEnv("POSTGRES_SSLMODE", "disable"),
		}
		cfg.DatabaseURL = u.String()
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	cors := getEnv("CORS_ORIGINS", "")
	if cors != "" {
		parts := strings.Split(cors, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		cfg.CORSOrigins = parts
	} else {
		cfg.CORSOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// loadDotEnv loads .env files with priority: .env.local > .env > real env.
func loadDotEnv() {
	candidates := []string{".env.local", ".env"}
	var found []string
	for _, f := range candidates {
		if _, err := os.Stat(f); err == nil {
			found = append(found, f)
		}
	}
	if len(found) > 0 {
		_ = godotenv.Load(found...)
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvAsInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getEnvAsBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
