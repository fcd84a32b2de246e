package config

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultEnv        = "development"
	defaultDBPath     = "./dev.db"
	defaultPort       = "8080"
	defaultSessionTTL = 12 * time.Hour
	defaultPrefix     = "ZEN"
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	Env           string
	AdminEmail    string
	AdminPassword string
	SessionSecret string
	SessionTTL    time.Duration
	DBPath        string
	DatabaseURL   string
	Port          string

	QuotationPrefix string
	CompanyName     string
	// GoogleAPIBase replaces the Sheets and Drive hosts, mainly for tests.
	GoogleAPIBase string
}

// IsDev reports whether the app runs in development mode.
func (c Config) IsDev() bool {
	return c.Env == "" || c.Env == defaultEnv
}

// Load reads environment variables and returns a populated Config.
func Load() Config {
	// Best-effort: production should use real env injection.
	if err := loadDotEnv(".env"); err != nil {
		log.Printf("warning: read .env: %v", err)
	}

	cfg := Config{
		Env:             os.Getenv("APP_ENV"),
		AdminEmail:      os.Getenv("ADMIN_EMAIL"),
		AdminPassword:   os.Getenv("ADMIN_PASSWORD"),
		SessionSecret:   os.Getenv("SESSION_SECRET"),
		DBPath:          os.Getenv("DB_PATH"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		Port:            os.Getenv("PORT"),
		QuotationPrefix: os.Getenv("QUOTATION_PREFIX"),
		CompanyName:     os.Getenv("COMPANY_NAME"),
		GoogleAPIBase:   os.Getenv("GOOGLE_API_BASE"),
		SessionTTL:      defaultSessionTTL,
	}

	if cfg.Env == "" {
		cfg.Env = defaultEnv
	}
	if cfg.DBPath == "" {
		cfg.DBPath = defaultDBPath
	}
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}
	if cfg.QuotationPrefix == "" {
		cfg.QuotationPrefix = defaultPrefix
	}
	if raw := os.Getenv("SESSION_TTL"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil || ttl <= 0 {
			log.Printf("warning: invalid SESSION_TTL %q, using %s", raw, defaultSessionTTL)
		} else {
			cfg.SessionTTL = ttl
		}
	}

	if cfg.AdminEmail == "" {
		log.Print("warning: ADMIN_EMAIL is not set")
	}
	if cfg.AdminPassword == "" {
		log.Print("warning: ADMIN_PASSWORD is not set")
	}
	if cfg.SessionSecret == "" {
		log.Print("warning: SESSION_SECRET is not set")
	}

	return cfg
}

// loadDotEnv loads KEY=VALUE pairs from a dotenv file without overwriting
// variables already present in the environment. A missing file is not an error.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
