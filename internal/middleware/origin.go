// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"net/http"
	"net/url"
	"strings"
)

// CheckOrigin rejects cross-site state-changing requests. The admin API
// authenticates with a cookie, so a POST, PUT, PATCH or DELETE whose Origin
// (or, failing that, Referer) names another site is refused with 403.
// Requests without either header, such as curl, pass through. allowed
// lists extra origins (scheme://host[:port]) that may call the API.
func CheckOrigin(allowed []string) func(http.Handler) http.Handler {
	trusted := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		trusted[strings.TrimRight(strings.ToLower(o), "/")] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			origin := r.Header.Get("Origin")
			if origin == "" {
				origin = r.Header.Get("Referer")
			}
			if origin == "" || sameSite(origin, r.Host, trusted) {
				next.ServeHTTP(w, r)
				return
			}

			writeError(w, http.StatusForbidden, "Forbidden")
		})
	}
}

func sameSite(origin, host string, trusted map[string]bool) bool {
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	if strings.EqualFold(u.Host, host) {
		return true
	}
	return trusted[strings.ToLower(u.Scheme+"://"+u.Host)]
}
