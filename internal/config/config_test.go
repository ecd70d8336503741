// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package config

import (
	"strings"
	"testing"
)

var allEnvVars = []string{
	"APP_HOST", "APP_PORT", "APP_ENV", "APP_BASE_URL", "CORS_ORIGINS",
	"ADMIN_PASSWORD", "ADMIN_PASSWORD_HASH", "SESSION_SECRET", "ADMIN_TOTP_SECRET",
	"DATABASE_URL",
	"VALKEY_HOST", "VALKEY_PORT", "VALKEY_PASSWORD",
	"S3_ENDPOINT", "S3_PUBLIC_URL", "S3_ACCESS_KEY", "S3_SECRET_KEY", "S3_BUCKET", "S3_REGION",
	"SMTP_HOST", "SMTP_PORT", "SMTP_USER", "SMTP_PASS", "SMTP_SECURE", "MAIL_FROM", "MAIL_TO",
	"RENDER_FALLBACK_FIELDS",
}

// clearEnv sets every variable Load reads to "", which envOrDefault treats
// the same as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range allEnvVars {
		t.Setenv(key, "")
	}
}

// TestLoad_Defaults verifies that Load returns sensible development defaults
// when no environment variables are set.
func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	check := func(field, got, want string) {
		t.Helper()
		if got != want {
			t.Errorf("%s = %q, want %q", field, got, want)
		}
	}

	check("Host", cfg.Host, "0.0.0.0")
	check("Port", cfg.Port, "8080")
	check("Env", cfg.Env, "development")
	check("Admin.Password", cfg.Admin.Password, DefaultAdminPassword)
	check("Valkey.Host", cfg.Valkey.Host, "localhost")
	check("Valkey.Port", cfg.Valkey.Port, "6379")
	check("S3.Region", cfg.S3.Region, "us-east-1")

	if cfg.Mail.Port != 587 {
		t.Errorf("Mail.Port = %d, want 587", cfg.Mail.Port)
	}
	if cfg.Mail.Secure {
		t.Error("Mail.Secure should default to false")
	}
	if !cfg.RenderFallbackFields {
		t.Error("RenderFallbackFields should default to true")
	}
	if cfg.Admin.SessionKey == "" {
		t.Error("development session key should be derived when SESSION_SECRET is empty")
	}
	if cfg.DatabaseConfigured() {
		t.Error("DatabaseConfigured should be false without DATABASE_URL")
	}
	if cfg.S3Configured() {
		t.Error("S3Configured should be false without S3 settings")
	}
	if cfg.Mail.Configured() {
		t.Error("Mail.Configured should be false without SMTP settings")
	}
	if !cfg.IsDev() {
		t.Error("IsDev should be true by default")
	}
}

// TestLoad_EnvOverrides verifies that environment variables override the
// default values.
func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	overrides := map[string]string{
		"APP_HOST":               "127.0.0.1",
		"APP_PORT":               "9090",
		"APP_ENV":                "testing",
		"CORS_ORIGINS":           "https://a.example.com, https://b.example.com,",
		"ADMIN_PASSWORD":         "s3cret",
		"SESSION_SECRET":         "signing-key",
		"DATABASE_URL":           "postgres://u:p@db/site",
		"VALKEY_HOST":            "cache.example.com",
		"S3_ENDPOINT":            "https://s3.example.com",
		"S3_ACCESS_KEY":          "AKIATEST",
		"S3_SECRET_KEY":          "secrettest",
		"S3_BUCKET":              "media",
		"SMTP_HOST":              "smtp.example.com",
		"SMTP_PORT":              "465",
		"SMTP_USER":              "mailer@example.com",
		"SMTP_PASS":              "pw",
		"SMTP_SECURE":            "true",
		"MAIL_TO":                "inbox@example.com",
		"RENDER_FALLBACK_FIELDS": "false",
	}
	for key, val := range overrides {
		t.Setenv(key, val)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.Addr() != "127.0.0.1:9090" {
		t.Errorf("Addr() = %q, want %q", cfg.Addr(), "127.0.0.1:9090")
	}
	if got := strings.Join(cfg.CORSOrigins, "|"); got != "https://a.example.com|https://b.example.com" {
		t.Errorf("CORSOrigins = %q", got)
	}
	if cfg.Admin.SessionKey != "signing-key" {
		t.Errorf("Admin.SessionKey = %q, want %q", cfg.Admin.SessionKey, "signing-key")
	}
	if !cfg.DatabaseConfigured() {
		t.Error("DatabaseConfigured should be true")
	}
	if !cfg.S3Configured() {
		t.Error("S3Configured should be true")
	}
	if !cfg.Mail.Configured() {
		t.Error("Mail.Configured should be true")
	}
	if cfg.Mail.Port != 465 || !cfg.Mail.Secure {
		t.Errorf("Mail port/secure = %d/%v, want 465/true", cfg.Mail.Port, cfg.Mail.Secure)
	}
	if cfg.Mail.From != "mailer@example.com" {
		t.Errorf("Mail.From = %q, want SMTP_USER fallback", cfg.Mail.From)
	}
	if cfg.RenderFallbackFields {
		t.Error("RenderFallbackFields should be false")
	}
}

// TestLoad_Production verifies that production mode rejects the default
// admin password and a missing session secret.
func TestLoad_Production(t *testing.T) {
	t.Run("rejects default password", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("APP_ENV", "production")
		t.Setenv("SESSION_SECRET", "k")

		_, err := Load()
		if err == nil || !strings.Contains(err.Error(), "ADMIN_PASSWORD") {
			t.Fatalf("expected ADMIN_PASSWORD error, got %v", err)
		}
	})

	t.Run("requires session secret", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("APP_ENV", "production")
		t.Setenv("ADMIN_PASSWORD", "strong")

		_, err := Load()
		if err == nil || !strings.Contains(err.Error(), "SESSION_SECRET") {
			t.Fatalf("expected SESSION_SECRET error, got %v", err)
		}
	})

	t.Run("accepts real credentials", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("APP_ENV", "production")
		t.Setenv("ADMIN_PASSWORD", "strong")
		t.Setenv("SESSION_SECRET", "k")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.IsDev() {
			t.Error("IsDev should be false in production")
		}
	})
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("SMTP_PORT", "abc")
	t.Setenv("SMTP_SECURE", "maybe")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Mail.Port != 587 {
		t.Errorf("Mail.Port = %d, want 587", cfg.Mail.Port)
	}
	if cfg.Mail.Secure {
		t.Error("Mail.Secure should fall back to false")
	}
}
