// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"net/http"
)

// SessionChecker validates the admin session carried by a request.
type SessionChecker interface {
	Check(ctx context.Context, r *http.Request) bool
}

// RequireAdmin answers 401 JSON unless the request carries a valid admin
// session. The cookie is verified on every request.
func RequireAdmin(sessions SessionChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !sessions.Check(r.Context(), r) {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
