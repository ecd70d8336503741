// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package session implements the admin session gate. There is a single
// admin identity guarded by a shared password; a successful login issues
// a signed cookie that carries no identity beyond "authenticated". Logged
// out tokens are remembered in Valkey until they expire.
package session

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/redis/go-redis/v9"
	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/crypto/bcrypt"

	"corpsite/internal/config"
)

const (
	// CookieName is the name of the session cookie sent to the browser.
	CookieName = "admin_session"

	// DefaultTTL is how long an admin session stays valid.
	DefaultTTL = 7 * 24 * time.Hour

	// revokedPrefix namespaces revoked token IDs in Valkey.
	revokedPrefix = "session:revoked:"

	subject = "admin"
)

var (
	// ErrInvalidPassword is returned for a wrong admin password.
	ErrInvalidPassword = errors.New("invalid password")

	// ErrInvalidCode is returned for a missing or wrong TOTP code.
	ErrInvalidCode = errors.New("invalid code")

	// ErrTOTPDisabled is returned when asking for a QR code without a secret.
	ErrTOTPDisabled = errors.New("two-factor authentication not enabled")
)

// Manager issues and validates admin session cookies.
type Manager struct {
	key          []byte
	password     string
	passwordHash []byte
	totpSecret   string
	secure       bool
	ttl          time.Duration
	revoked      *redis.Client // nil disables logout revocation
	now          func() time.Time
}

// NewManager creates a session manager from the admin configuration.
// secure marks cookies Secure (production behind TLS). client may be nil.
func NewManager(cfg config.AdminConfig, secure bool, client *redis.Client) *Manager {
	return &Manager{
		key:          []byte(cfg.SessionKey),
		password:     cfg.Password,
		passwordHash: []byte(cfg.PasswordHash),
		totpSecret:   cfg.TOTPSecret,
		secure:       secure,
		ttl:          DefaultTTL,
		revoked:      client,
		now:          time.Now,
	}
}

// TOTPEnabled reports whether login requires a one-time code.
func (m *Manager) TOTPEnabled() bool {
	return m.totpSecret != ""
}

// Authenticate checks the shared password and, when enabled, the TOTP
// code. A wrong password and a missing admin are indistinguishable.
func (m *Manager) Authenticate(password, code string) error {
	if len(m.passwordHash) > 0 {
		if bcrypt.CompareHashAndPassword(m.passwordHash, []byte(password)) != nil {
			return ErrInvalidPassword
		}
	} else if subtle.ConstantTimeCompare([]byte(password), []byte(m.password)) != 1 {
		return ErrInvalidPassword
	}

	if m.TOTPEnabled() && !totp.Validate(code, m.totpSecret) {
		return ErrInvalidCode
	}
	return nil
}

// Issue signs a new session token and sets it as an HTTP-only cookie.
func (m *Manager) Issue(w http.ResponseWriter) error {
	now := m.now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.key)
	if err != nil {
		return fmt.Errorf("session sign: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(m.ttl.Seconds()),
	})
	return nil
}

// Check reports whether the request carries a valid, unrevoked session.
func (m *Manager) Check(ctx context.Context, r *http.Request) bool {
	claims := m.parse(r)
	if claims == nil {
		return false
	}
	return !m.isRevoked(ctx, claims.ID)
}

// Clear revokes the request's session (if any) and expires the cookie.
func (m *Manager) Clear(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	if claims := m.parse(r); claims != nil && m.revoked != nil && claims.ExpiresAt != nil {
		ttl := claims.ExpiresAt.Sub(m.now())
		if ttl > 0 {
			if err := m.revoked.Set(ctx, revokedPrefix+claims.ID, 1, ttl).Err(); err != nil {
				slog.Warn("session revoke failed", "error", err)
			}
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// TOTPQRCode returns a PNG QR code provisioning the configured secret in
// an authenticator app.
func (m *Manager) TOTPQRCode(issuer string) ([]byte, error) {
	if !m.TOTPEnabled() {
		return nil, ErrTOTPDisabled
	}

	q := url.Values{}
	q.Set("secret", m.totpSecret)
	q.Set("issuer", issuer)
	key, err := otp.NewKeyFromURL(fmt.Sprintf("otpauth://totp/%s:%s?%s",
		url.PathEscape(issuer), subject, q.Encode()))
	if err != nil {
		return nil, fmt.Errorf("totp key: %w", err)
	}

	png, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("totp qr: %w", err)
	}
	return png, nil
}

// parse validates the cookie's signature and expiry. Returns nil for a
// missing or invalid token.
func (m *Manager) parse(r *http.Request) *jwt.RegisteredClaims {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(cookie.Value, claims, func(*jwt.Token) (any, error) {
		return m.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithSubject(subject),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return nil
	}
	return claims
}

// isRevoked consults the Valkey revocation list. Lookup failures are
// logged and treated as not revoked.
func (m *Manager) isRevoked(ctx context.Context, id string) bool {
	if m.revoked == nil || id == "" {
		return false
	}
	n, err := m.revoked.Exists(ctx, revokedPrefix+id).Result()
	if err != nil {
		slog.Warn("session revocation lookup failed", "error", err)
		return false
	}
	return n > 0
}
