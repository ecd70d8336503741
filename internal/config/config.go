// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultAdminPassword is the development fallback for ADMIN_PASSWORD.
// Load refuses to start a production instance that still uses it.
const DefaultAdminPassword = "admin123"

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host        string
	Port        string
	Env         string // "development", "production", "testing"
	BaseURL     string
	CORSOrigins []string

	Admin    AdminConfig
	Database DatabaseConfig
	Valkey   ValkeyConfig
	S3       S3Config
	Mail     MailConfig

	// RenderFallbackFields enables rendering of unknown top-level string
	// fields of generic page content as auto-titled sections.
	RenderFallbackFields bool
}

// AdminConfig holds the shared admin credential and session signing key.
type AdminConfig struct {
	Password     string
	PasswordHash string // bcrypt hash, takes precedence over Password when set
	SessionKey   string
	TOTPSecret   string // base32; empty disables the second factor
}

// DatabaseConfig holds the PostgreSQL connection string. An empty URL
// means the site runs without persistence for pages and submissions.
type DatabaseConfig struct {
	URL string
}

// ValkeyConfig holds the Valkey (Redis-compatible) connection settings.
type ValkeyConfig struct {
	Host     string
	Port     string
	Password string
}

// S3Config holds the S3-compatible blob store settings for media uploads.
type S3Config struct {
	Endpoint  string
	PublicURL string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
}

// MailConfig holds SMTP transport settings for the contact form.
type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Secure   bool // implicit TLS (port 465 style) instead of STARTTLS
	From     string
	To       string
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. A .env file in the working directory
// is loaded first when present. Returns an error if critical values are
// missing in production mode.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Host:        envOrDefault("APP_HOST", "0.0.0.0"),
		Port:        envOrDefault("APP_PORT", "8080"),
		Env:         envOrDefault("APP_ENV", "development"),
		BaseURL:     envOrDefault("APP_BASE_URL", "http://localhost:8080"),
		CORSOrigins: splitList(os.Getenv("CORS_ORIGINS")),

		Admin: AdminConfig{
			Password:     envOrDefault("ADMIN_PASSWORD", DefaultAdminPassword),
			PasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
			SessionKey:   os.Getenv("SESSION_SECRET"),
			TOTPSecret:   os.Getenv("ADMIN_TOTP_SECRET"),
		},

		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},

		Valkey: ValkeyConfig{
			Host:     envOrDefault("VALKEY_HOST", "localhost"),
			Port:     envOrDefault("VALKEY_PORT", "6379"),
			Password: os.Getenv("VALKEY_PASSWORD"),
		},

		S3: S3Config{
			Endpoint:  os.Getenv("S3_ENDPOINT"),
			PublicURL: os.Getenv("S3_PUBLIC_URL"),
			AccessKey: os.Getenv("S3_ACCESS_KEY"),
			SecretKey: os.Getenv("S3_SECRET_KEY"),
			Bucket:    os.Getenv("S3_BUCKET"),
			Region:    envOrDefault("S3_REGION", "us-east-1"),
		},

		Mail: MailConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     envInt("SMTP_PORT", 587),
			Username: os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASS"),
			Secure:   envBool("SMTP_SECURE", false),
			To:       os.Getenv("MAIL_TO"),
		},

		RenderFallbackFields: envBool("RENDER_FALLBACK_FIELDS", true),
	}

	cfg.Mail.From = envOrDefault("MAIL_FROM", cfg.Mail.Username)

	if cfg.Env == "production" {
		if cfg.Admin.PasswordHash == "" && cfg.Admin.Password == DefaultAdminPassword {
			return nil, fmt.Errorf("ADMIN_PASSWORD must be set in production")
		}
		if cfg.Admin.SessionKey == "" {
			return nil, fmt.Errorf("SESSION_SECRET must be set in production")
		}
	}

	// In development the signing key is derived from the password so that
	// a plain `go run` works without extra setup.
	if cfg.Admin.SessionKey == "" {
		sum := sha256.Sum256([]byte("corpsite-session:" + cfg.Admin.Password + cfg.Admin.PasswordHash))
		cfg.Admin.SessionKey = hex.EncodeToString(sum[:])
	}

	return cfg, nil
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// DatabaseConfigured reports whether a database connection string was given.
func (c *Config) DatabaseConfigured() bool {
	return c.Database.URL != ""
}

// S3Configured reports whether enough blob store settings exist to upload media.
func (c *Config) S3Configured() bool {
	return c.S3.Endpoint != "" && c.S3.Bucket != "" && c.S3.AccessKey != "" && c.S3.SecretKey != ""
}

// MailConfigured reports whether the contact form can send mail. Host,
// credentials and recipient are all required.
func (c *MailConfig) Configured() bool {
	return c.Host != "" && c.Username != "" && c.Password != "" && c.To != ""
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

// splitList parses a comma-separated list, dropping empty entries.
func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
