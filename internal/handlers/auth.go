package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"corpsite/internal/session"
)

// totpIssuer labels the account in authenticator apps.
const totpIssuer = "Corpsite Admin"

// Auth groups the admin login endpoints.
type Auth struct {
	sessions *session.Manager
}

// NewAuth creates a new Auth handler group.
func NewAuth(sessions *session.Manager) *Auth {
	return &Auth{sessions: sessions}
}

type loginRequest struct {
	Password string `json:"password"`
	Code     string `json:"code"`
}

// Login checks the shared admin password (and TOTP code when enabled) and
// sets the session cookie.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := a.sessions.Authenticate(req.Password, req.Code); err != nil {
		msg := "Invalid password"
		if errors.Is(err, session.ErrInvalidCode) {
			msg = "Invalid code"
		}
		slog.Info("admin login rejected", "reason", err, "remote", r.RemoteAddr)
		writeJSON(w, http.StatusUnauthorized, map[string]any{"ok": false, "error": msg})
		return
	}

	if err := a.sessions.Issue(w); err != nil {
		slog.Error("issue session failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	slog.Info("admin logged in", "remote", r.RemoteAddr)
	writeOK(w)
}

// Logout revokes the current session and clears the cookie.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	a.sessions.Clear(r.Context(), w, r)
	writeOK(w)
}

// Status reports whether the request carries a valid admin session, and
// whether login needs a one-time code.
func (a *Auth) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{
		"authenticated": a.sessions.Check(r.Context(), r),
		"totp":          a.sessions.TOTPEnabled(),
	})
}

// TOTPQRCode serves the PNG QR code for enrolling the shared TOTP secret
// in an authenticator app. Requires an admin session.
func (a *Auth) TOTPQRCode(w http.ResponseWriter, r *http.Request) {
	png, err := a.sessions.TOTPQRCode(totpIssuer)
	if errors.Is(err, session.ErrTOTPDisabled) {
		writeError(w, http.StatusNotFound, "Two-factor authentication is not enabled")
		return
	}
	if err != nil {
		slog.Error("totp qr code failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to generate QR code")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(png)
}
