package config

import (
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Server captures process-level configuration.
type Server struct {
	Addr          string
	DatabaseURL   string
	Redis         RedisConfig
	JWTSigningKey string

	// Fee is the fixed per-participant registration cost in USD.
	Fee decimal.Decimal

	// AdminEmails may view the financial report.
	AdminEmails []string

	RateSourcePrimaryURL   string
	RateSourceSecondaryURL string
	RateSourceTimeout      time.Duration

	// ManualRateTTL bounds how long a manually entered rate survives. It
	// mirrors the session lifetime so the override dies with the session.
	ManualRateTTL time.Duration
}

// RedisConfig holds connection settings for the manual-rate session store.
// An empty URL means redis is not configured and an in-process store is used.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultFee matches the congress fee the system was built around.
var DefaultFee = decimal.NewFromInt(8)

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("INSCRIPCIONES_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	fee := DefaultFee
	if raw := os.Getenv("REGISTRATION_FEE"); raw != "" {
		if parsed, err := decimal.NewFromString(raw); err == nil && parsed.IsPositive() {
			fee = parsed
		}
	}

	var admins []string
	for _, email := range strings.Split(os.Getenv("ADMIN_EMAILS"), ",") {
		email = strings.TrimSpace(email)
		if email != "" {
			admins = append(admins, email)
		}
	}

	primary := os.Getenv("RATE_SOURCE_PRIMARY_URL")
	if primary == "" {
		primary = "https://pydolarve.org/api/v1/dollar?page=bcv&monitor=usd"
	}
	secondary := os.Getenv("RATE_SOURCE_SECONDARY_URL")
	if secondary == "" {
		secondary = "https://ve.dolarapi.com/v1/dolares"
	}

	return Server{
		Addr:          addr,
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		JWTSigningKey: jwtSigningKey,
		Fee:           fee,
		AdminEmails:   admins,
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		RateSourcePrimaryURL:   primary,
		RateSourceSecondaryURL: secondary,
		RateSourceTimeout:      5 * time.Second,
		ManualRateTTL:          12 * time.Hour,
	}
}
