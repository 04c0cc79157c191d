package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	GinMode string
	Addr    string
	TZ      string

	// DBDriver selects the dialect: "postgres" in production, "sqlite"
	// for local development.
	DBDriver   string
	SQLitePath string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPass     string
	DBName     string
	DBSSLMode  string

	SessionLifetime time.Duration
	TokenTTL        time.Duration
	RefreshTokenTTL time.Duration

	// Request-rate classes for the API surface.
	BasicRPS     float64
	BasicBurst   int
	PremiumRPS   float64
	PremiumBurst int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("warning: could not load .env: %v", err)
	}

	cfg := &Config{
		GinMode: getenv("GIN_MODE", "debug"),
		Addr:    getenv("ADDR", ":8080"),
		TZ:      getenv("TZ", "UTC"),

		DBDriver:   getenv("DB_DRIVER", "sqlite"),
		SQLitePath: getenv("SQLITE_PATH", "locallibrary.db"),
		DBHost:     getenv("DB_HOST", "localhost"),
		DBPort:     getenv("DB_PORT", "5432"),
		DBUser:     getenv("DB_USER", "postgres"),
		DBPass:     getenv("DB_PASS", ""),
		DBName:     getenv("DB_NAME", "locallibrary"),
		DBSSLMode:  os.Getenv("DB_SSLMODE"),

		SessionLifetime: getduration("SESSION_LIFETIME", 12*time.Hour),
		TokenTTL:        getduration("TOKEN_TTL", 24*time.Hour),
		RefreshTokenTTL: getduration("REFRESH_TOKEN_TTL", 30*24*time.Hour),

		BasicRPS:     getfloat("THROTTLE_BASIC_RPS", 2),
		BasicBurst:   getint("THROTTLE_BASIC_BURST", 4),
		PremiumRPS:   getfloat("THROTTLE_PREMIUM_RPS", 10),
		PremiumBurst: getint("THROTTLE_PREMIUM_BURST", 20),
	}

	if cfg.DBSSLMode == "" {
		if cfg.GinMode == "release" {
			cfg.DBSSLMode = "require"
		} else {
			cfg.DBSSLMode = "disable"
		}
	}

	return cfg
}

func (c *Config) DSN() string {
	if c.DBDriver == "sqlite" {
		return "file:" + c.SQLitePath + "?_fk=1"
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		c.DBHost,
		c.DBUser,
		c.DBPass,
		c.DBName,
		c.DBPort,
		c.DBSSLMode,
		c.TZ,
	)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getint(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getfloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getduration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
