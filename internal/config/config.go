package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	DBDSN          string
	LogFile        string
	JWTSecret      string
	RedisURL       string
	FilterCacheTTL time.Duration
	DefaultLang    string
	CookieSecure   bool
	TemplatesDir   string
}

// Load reads the environment, after an optional .env file in the working
// directory. Real environment variables win over .env entries.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[config] .env ignored: %v", err)
	}

	cfg := Config{
		Port:         getenv("PORT", "8080"),
		DBDSN:        getenv("DB_DSN", "medicatalog.db"), // sqlite file in project root
		LogFile:      getenv("LOG_FILE", "./medicatalog.log"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		RedisURL:     os.Getenv("REDIS_URL"),
		DefaultLang:  strings.ToUpper(getenv("DEFAULT_LANG", "FR")),
		CookieSecure: os.Getenv("COOKIE_SECURE") == "true",
		TemplatesDir: getenv("TEMPLATES_DIR", "./web/templates"),
	}
	cfg.FilterCacheTTL = 5 * time.Minute
	if raw := os.Getenv("FILTER_CACHE_TTL"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			cfg.FilterCacheTTL = d
		} else {
			log.Printf("[config] bad FILTER_CACHE_TTL %q, using %s", raw, cfg.FilterCacheTTL)
		}
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "dev-only-secret-change-me"
		log.Printf("[config] JWT_SECRET not set, using a development secret")
	}

	redis := "off"
	if cfg.RedisURL != "" {
		redis = "on"
	}
	log.Printf("[config] PORT=%s DB_DSN=%s LOG_FILE=%s REDIS=%s FILTER_CACHE_TTL=%s DEFAULT_LANG=%s",
		cfg.Port, redactDSN(cfg.DBDSN), cfg.LogFile, redis, cfg.FilterCacheTTL, cfg.DefaultLang)
	return cfg
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// redactDSN hides the password of a postgres URL.
func redactDSN(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	scheme := strings.Index(dsn, "://")
	if at < 0 || scheme < 0 {
		return dsn
	}
	creds := dsn[scheme+3 : at]
	if i := strings.Index(creds, ":"); i >= 0 {
		return dsn[:scheme+3] + creds[:i] + ":***" + dsn[at:]
	}
	return dsn
}
