// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"corpsite/internal/database"
)

// maxJSONBody caps JSON request bodies. Page content is the largest payload.
const maxJSONBody = 2 << 20

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes {"error": msg}.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeOK writes {"ok": true}.
func writeOK(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// decodeJSON reads a size-limited JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	return json.NewDecoder(r.Body).Decode(v)
}

// storeFailed answers a failed store call. A missing database is reported
// as 503; anything else is logged and hidden behind msg.
func storeFailed(w http.ResponseWriter, err error, msg string) {
	if errors.Is(err, database.ErrNotConfigured) {
		writeError(w, http.StatusServiceUnavailable, "Database is not configured")
		return
	}
	slog.Error(msg, "error", err)
	writeError(w, http.StatusInternalServerError, msg)
}
