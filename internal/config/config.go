// Package config は環境変数からアプリケーション設定を読み込む。
package config

import (
	"fmt"
	"strings"
	"time"

	env "github.com/caarlos0/env/v11"
	"golang.org/x/net/publicsuffix"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL       string        `env:"DATABASE_URL,required,notEmpty"`
	DBMaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	DBMaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	DBConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"5m"`

	// Auth backend
	AuthBackendURL          string        `env:"AUTH_BACKEND_URL,required,notEmpty"`
	AuthBackendAPIKey       string        `env:"AUTH_BACKEND_API_KEY,required,notEmpty"`
	AuthJWTSecret           string        `env:"AUTH_JWT_SECRET,required,notEmpty"`
	AuthTimeout             time.Duration `env:"AUTH_TIMEOUT" envDefault:"10s"`
	AuthAllowPrivateNetwork bool          `env:"AUTH_ALLOW_PRIVATE_NETWORK" envDefault:"false"`

	// Session
	SessionMaxAge          int           `env:"SESSION_MAX_AGE" envDefault:"86400"`
	SessionCleanupInterval time.Duration `env:"SESSION_CLEANUP_INTERVAL" envDefault:"1h"`

	// Auth modal transitions
	SignUpTransitionDelay time.Duration `env:"SIGNUP_TRANSITION_DELAY" envDefault:"2s"`
	SignInCloseDelay      time.Duration `env:"SIGNIN_CLOSE_DELAY" envDefault:"1s"`

	// Registration status
	RegistrationCacheTTL time.Duration `env:"REGISTRATION_CACHE_TTL" envDefault:"1m"`

	// Deals
	DealsLimit int `env:"DEALS_LIMIT" envDefault:"10"`

	// Rate Limit（1分あたりのリクエスト数）
	RateLimitGeneral int `env:"RATE_LIMIT_GENERAL" envDefault:"120"`
	RateLimitAuth    int `env:"RATE_LIMIT_AUTH" envDefault:"10"`

	// Logging
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Server
	ServerPort  string `env:"SERVER_PORT" envDefault:"8080"`
	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`
	BaseURL     string `env:"BASE_URL,required,notEmpty"`

	// Cookie
	CookieSecure bool
	CookieDomain string `env:"COOKIE_DOMAIN"`

	// CORS
	CORSAllowedOrigin string `env:"CORS_ALLOWED_ORIGIN" envDefault:"http://localhost:3000"`
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合や値が不正な場合は、該当するすべての変数を含むエラーを返す。
func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.SessionMaxAge <= 0 {
		return nil, fmt.Errorf("SESSION_MAX_AGE must be positive: %d", cfg.SessionMaxAge)
	}
	if cfg.AuthTimeout <= 0 {
		return nil, fmt.Errorf("AUTH_TIMEOUT must be positive: %v", cfg.AuthTimeout)
	}

	if err := validateCookieDomain(cfg.CookieDomain); err != nil {
		return nil, err
	}

	cfg.CookieSecure = strings.HasPrefix(cfg.BaseURL, "https://")
	return &cfg, nil
}

// validateCookieDomain はCOOKIE_DOMAINがパブリックサフィックスでないことを確認する。
// 未設定、またはlocalhostのような未登録の単一ラベルは許可する。
func validateCookieDomain(domain string) error {
	d := strings.ToLower(strings.TrimPrefix(domain, "."))
	if d == "" {
		return nil
	}

	suffix, icann := publicsuffix.PublicSuffix(d)
	if suffix != d {
		return nil
	}
	if !icann && !strings.Contains(d, ".") {
		return nil
	}
	return fmt.Errorf("COOKIE_DOMAIN must not be a public suffix: %q", domain)
}
