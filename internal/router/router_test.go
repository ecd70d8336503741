// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router tests verify the HTTP routing configuration, middleware
// chains, and the health endpoint.
package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/go-chi/chi/v5"

	"corpsite/internal/cache"
	"corpsite/internal/config"
	"corpsite/internal/content"
	"corpsite/internal/database"
	"corpsite/internal/handlers"
	"corpsite/internal/mail"
	"corpsite/internal/media"
	"corpsite/internal/middleware"
	"corpsite/internal/render"
	"corpsite/internal/session"
	"corpsite/internal/store"
)

const testPassword = "router-test-password"

// newTestRouter wires the router against an instance with no database,
// no blob store and no mail relay.
func newTestRouter(t *testing.T) chi.Router {
	t.Helper()

	renderer, err := render.New("Corp Site", false, content.Options{})
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}

	db := database.NewLazy("")
	pages := store.NewPageStore(db)
	submissions := store.NewSubmissionStore(db)
	pageCache := cache.NewPageCache(nil, 0)
	sessions := session.NewManager(config.AdminConfig{Password: testPassword, SessionKey: "router-key"}, false, nil)

	limiter := middleware.NewRateLimiter(1, time.Minute)
	t.Cleanup(limiter.Stop)

	opts := Options{
		CORSOrigins:    []string{"https://app.example.org"},
		HSTS:           true,
		Static:         fstest.MapFS{"site.css": {Data: []byte("body{}")}},
		ContactLimiter: limiter,
	}
	return New(opts, sessions,
		handlers.NewAdmin(pages, submissions, media.NewService(nil), db, pageCache),
		handlers.NewAuth(sessions),
		handlers.NewPublic(pages, submissions, mail.NewSMTPSender(config.MailConfig{}), renderer, pageCache),
	)
}

func do(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t)
	rr := do(r, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("content-type: got %q", ct)
	}
	var body map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field: got %q, want %q", body["status"], "ok")
	}
}

func TestSecurityHeaders(t *testing.T) {
	r := newTestRouter(t)
	rr := do(r, httptest.NewRequest(http.MethodGet, "/health", nil))

	for _, h := range []string{"X-Content-Type-Options", "X-Frame-Options", "Strict-Transport-Security"} {
		if rr.Header().Get(h) == "" {
			t.Errorf("missing %s", h)
		}
	}
}

func TestAdminRequiresSession(t *testing.T) {
	r := newTestRouter(t)

	paths := []struct{ method, path string }{
		{http.MethodGet, "/api/admin/pages"},
		{http.MethodPost, "/api/admin/pages"},
		{http.MethodPut, "/api/admin/pages/about"},
		{http.MethodDelete, "/api/admin/pages/about"},
		{http.MethodGet, "/api/admin/media"},
		{http.MethodDelete, "/api/admin/media/logo.png"},
		{http.MethodGet, "/api/admin/contact-submissions"},
		{http.MethodGet, "/api/admin/contact-submissions/export"},
		{http.MethodGet, "/api/admin/db-ping"},
		{http.MethodGet, "/api/admin/content/layouts"},
		{http.MethodGet, "/api/admin/auth/totp"},
	}
	for _, p := range paths {
		t.Run(p.method+" "+p.path, func(t *testing.T) {
			rr := do(r, httptest.NewRequest(p.method, p.path, nil))
			if rr.Code != http.StatusUnauthorized {
				t.Errorf("got %d, want 401", rr.Code)
			}
		})
	}
}

func TestAdminWithSession(t *testing.T) {
	r := newTestRouter(t)

	rr := do(r, httptest.NewRequest(http.MethodPost, "/api/admin/auth",
		strings.NewReader(`{"password":"`+testPassword+`"}`)))
	if rr.Code != http.StatusOK {
		t.Fatalf("login: got %d", rr.Code)
	}
	cookies := rr.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("login should set a cookie")
	}

	get := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		for _, c := range cookies {
			req.AddCookie(c)
		}
		return do(r, req)
	}

	if rr := get("/api/admin/content/layouts"); rr.Code != http.StatusOK {
		t.Errorf("layouts: got %d", rr.Code)
	}
	// No database and no blob store behind this router.
	if rr := get("/api/admin/pages"); rr.Code != http.StatusServiceUnavailable {
		t.Errorf("pages: got %d, want 503", rr.Code)
	}
	if rr := get("/api/admin/media"); rr.Code != http.StatusServiceUnavailable {
		t.Errorf("media: got %d, want 503", rr.Code)
	}
	if rr := get("/api/admin/db-ping"); rr.Code != http.StatusServiceUnavailable {
		t.Errorf("db-ping: got %d, want 503", rr.Code)
	}
}

func TestAdminRejectsForeignOrigin(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/auth",
		strings.NewReader(`{"password":"`+testPassword+`"}`))
	req.Header.Set("Origin", "https://evil.example.net")
	rr := do(r, req)
	if rr.Code != http.StatusForbidden {
		t.Errorf("got %d, want 403", rr.Code)
	}
	if len(rr.Result().Cookies()) != 0 {
		t.Error("rejected login must not set a cookie")
	}
}

func TestCORSPreflight(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/cms/pages", nil)
	req.Header.Set("Origin", "https://app.example.org")
	req.Header.Set("Access-Control-Request-Method", "GET")
	rr := do(r, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.org" {
		t.Errorf("allow origin: got %q", got)
	}
}

func TestContactRateLimited(t *testing.T) {
	r := newTestRouter(t)

	post := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(`{}`))
		req.RemoteAddr = "203.0.113.9:4000"
		return do(r, req)
	}
	if rr := post(); rr.Code != http.StatusBadRequest {
		t.Fatalf("first: got %d, want 400", rr.Code)
	}
	rr := post()
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("second: got %d, want 429", rr.Code)
	}
	if rr.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}
}

func TestPublicRoutes(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"pages without database", "/api/cms/pages", http.StatusServiceUnavailable},
		{"metrics", "/metrics", http.StatusOK},
		{"static asset", "/static/site.css", http.StatusOK},
		{"home alias", "/home", http.StatusMovedPermanently},
		{"invalid slug", "/Not_A_Slug", http.StatusNotFound},
		{"nested path", "/a/b/c", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(r, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rr.Code != tt.status {
				t.Errorf("got %d, want %d", rr.Code, tt.status)
			}
		})
	}
}

func TestStaticCacheControl(t *testing.T) {
	r := newTestRouter(t)
	rr := do(r, httptest.NewRequest(http.MethodGet, "/static/site.css", nil))

	if !strings.Contains(rr.Header().Get("Cache-Control"), "max-age=604800") {
		t.Errorf("cache-control: got %q", rr.Header().Get("Cache-Control"))
	}
	if rr.Body.String() != "body{}" {
		t.Errorf("body: got %q", rr.Body.String())
	}
}

func TestNotFoundRendersPage(t *testing.T) {
	r := newTestRouter(t)
	rr := do(r, httptest.NewRequest(http.MethodGet, "/a/b/c", nil))

	if !strings.HasPrefix(rr.Header().Get("Content-Type"), "text/html") {
		t.Errorf("content-type: got %q", rr.Header().Get("Content-Type"))
	}
	if !strings.Contains(rr.Body.String(), "Page not found") {
		t.Error("expected the rendered 404 page")
	}
}
