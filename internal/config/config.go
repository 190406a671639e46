package config

import (
	"crypto/rand"
	"encoding/hex"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env      string // "development", "production", etc.
	LogLevel string

	// Server
	ServerAddr string
	ClientURL  string // base URL of the web client, used in share links

	// TLS
	TLSEnabled  bool
	TLSCertFile string
	TLSKeyFile  string
	TLSCAFile   string // optional; enables mTLS

	// Database (empty = in-memory store)
	DatabaseURL string

	// Redis (optional; backs rate limiting and token revocation)
	RedisURL string

	// Tokens
	JWTSecret string
	TokenTTL  time.Duration

	// OIDC (optional; enables auth?action=oauth)
	OIDCIssuer       string
	OIDCClientID     string
	OIDCClientSecret string
	OIDCRedirectURL  string

	// SMTP
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	SMTPFromName string
	SMTPTLS      string // "none", "starttls", "tls"

	// Object storage
	StorageDir        string
	StoragePublicURL  string
	MaxUploadBytes    int64
	AllowedImageTypes []string

	// Background image sweeper (0 = disabled)
	ImageSweepInterval time.Duration
	ImageSweepMinAge   time.Duration

	// CORS
	CORSOrigins string // Comma-separated allowed origins

	// Rate limiting
	RateLimitMax    int
	RateLimitWindow time.Duration

	// Sharing
	AllowAnonymousShares bool
	MaxShareRecipients   int
	InviteSubject        string // fmt template, receives the sender name and list name

	// Site branding for emails
	SiteTitle string

	// generated is true when JWTSecret was not configured.
	generatedSecret bool
}

// Load reads configuration from an optional .env file and environment
// variables with sensible defaults. Missing values never fail; see Warnings.
// The YAML overlay is applied separately with LoadYAMLConfig.
func Load() *Config {
	// .env is optional; real environment variables take precedence.
	_ = godotenv.Load()

	cfg := &Config{
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		ServerAddr: getEnv("SERVER_ADDR", ":3000"),
		ClientURL:  strings.TrimRight(getEnv("CLIENT_URL", "http://localhost:5173"), "/"),

		TLSEnabled:  getEnv("TLS_ENABLED", "") != "",
		TLSCertFile: getEnv("TLS_CERT_FILE", ""),
		TLSKeyFile:  getEnv("TLS_KEY_FILE", ""),
		TLSCAFile:   getEnv("TLS_CA_FILE", ""),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", ""),

		JWTSecret: getEnv("JWT_SECRET", ""),
		TokenTTL:  getDuration("TOKEN_TTL", 24*time.Hour),

		OIDCIssuer:       getEnv("OIDC_ISSUER", ""),
		OIDCClientID:     getEnv("OIDC_CLIENT_ID", ""),
		OIDCClientSecret: getEnv("OIDC_CLIENT_SECRET", ""),
		OIDCRedirectURL:  getEnv("OIDC_REDIRECT_URL", "http://localhost:3000/auth/callback"),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getInt("SMTP_PORT", 587),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", ""),
		SMTPFromName: getEnv("SMTP_FROM_NAME", "Lists"),
		SMTPTLS:      strings.ToLower(getEnv("SMTP_TLS", "starttls")),

		StorageDir:        getEnv("STORAGE_DIR", "./data/uploads"),
		StoragePublicURL:  strings.TrimRight(getEnv("STORAGE_PUBLIC_URL", "http://localhost:3000/uploads"), "/"),
		MaxUploadBytes:    int64(getInt("MAX_UPLOAD_BYTES", 5<<20)),
		AllowedImageTypes: splitList(getEnv("ALLOWED_IMAGE_TYPES", "image/jpeg,image/png,image/webp,image/gif")),

		ImageSweepInterval: getDuration("IMAGE_SWEEP_INTERVAL", 0),
		ImageSweepMinAge:   getDuration("IMAGE_SWEEP_MIN_AGE", 24*time.Hour),

		CORSOrigins: getEnv("CORS_ORIGINS", ""),

		RateLimitMax:    getInt("RATE_LIMIT_MAX", 100),
		RateLimitWindow: getDuration("RATE_LIMIT_WINDOW", time.Minute),

		AllowAnonymousShares: getBool("ALLOW_ANONYMOUS_SHARES", true),
		MaxShareRecipients:   getInt("MAX_SHARE_RECIPIENTS", 50),
		InviteSubject:        getEnv("INVITE_SUBJECT", "%s shared the list \"%s\" with you"),

		SiteTitle: getEnv("SITE_TITLE", "Lists"),
	}

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = randomSecret()
		cfg.generatedSecret = true
	}

	return cfg
}

// Warnings lists configuration gaps that degrade functionality.
func (c *Config) Warnings() []string {
	var warnings []string
	if c.DatabaseURL == "" {
		warnings = append(warnings, "DATABASE_URL not set: using in-memory store, data is lost on restart")
	}
	if c.generatedSecret {
		warnings = append(warnings, "JWT_SECRET not set: using a random secret, tokens do not survive restarts")
	}
	if !c.IsEmailEnabled() {
		warnings = append(warnings, "SMTP_HOST/SMTP_FROM not set: sharing and list export emails will fail")
	}
	if !c.IsOIDCEnabled() {
		warnings = append(warnings, "OIDC_ISSUER not set: auth?action=oauth is disabled")
	}
	if c.TLSEnabled && (c.TLSCertFile == "" || c.TLSKeyFile == "") {
		warnings = append(warnings, "TLS_ENABLED set without TLS_CERT_FILE/TLS_KEY_FILE")
	}
	return warnings
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

// IsEmailEnabled returns true if enough SMTP settings are present to send mail.
func (c *Config) IsEmailEnabled() bool {
	return c.SMTPHost != "" && c.SMTPFrom != ""
}

// IsOIDCEnabled returns true if an OIDC provider is configured.
func (c *Config) IsOIDCEnabled() bool {
	return c.OIDCIssuer != "" && c.OIDCClientID != ""
}

// ShareURL returns the client deep link for a list.
func (c *Config) ShareURL(listID string) string {
	return c.ClientURL + "/share/" + listID
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func randomSecret() string {
	b := make([]byte, 32)
	rand.Read(b)
	return hex.EncodeToString(b)
}
