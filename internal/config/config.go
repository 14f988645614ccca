package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime settings. It is loaded once from the environment
// at startup and treated as immutable.
type Config struct {
	// Server
	Port string

	// Database. Empty DSN means the in-memory store (dev/test mode).
	DatabaseDSN string

	// Auth
	JWTSecret      string
	SessionMaxAge  time.Duration
	CookieSecure   bool

	// Uploads
	UploadDir string

	// Rate limit for bid placement, per user
	BidRatePerMinute int
	BidBurst         int
}

// Load reads the configuration from environment variables, applying defaults
// for everything except JWT_SECRET, which is required.
func Load() (*Config, error) {
	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		DatabaseDSN:      os.Getenv("DATABASE_DSN"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		SessionMaxAge:    7 * 24 * time.Hour,
		UploadDir:        getEnv("UPLOAD_DIR", "public/uploads"),
		BidRatePerMinute: 60,
		BidBurst:         10,
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("config: JWT_SECRET is required")
	}

	if v := os.Getenv("COOKIE_SECURE"); v != "" {
		secure, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("config: invalid COOKIE_SECURE %q: %w", v, err)
		}
		cfg.CookieSecure = secure
	}

	if v := os.Getenv("BID_RATE_PER_MINUTE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("config: invalid BID_RATE_PER_MINUTE %q", v)
		}
		cfg.BidRatePerMinute = n
	}

	if v := os.Getenv("BID_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("config: invalid BID_BURST %q", v)
		}
		cfg.BidBurst = n
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
