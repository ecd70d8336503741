// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router configures the Chi router with all application routes
// and middleware stacks.
package router

import (
	"io/fs"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"corpsite/internal/handlers"
	"corpsite/internal/middleware"
)

// Options holds the settings that shape the middleware stacks.
type Options struct {
	// CORSOrigins lists the origins allowed to call /api from a browser.
	// It also extends the admin Origin check.
	CORSOrigins []string
	// HSTS adds Strict-Transport-Security to every response.
	HSTS bool
	// Static is served under /static/. Nil disables the route.
	Static fs.FS
	// ContactLimiter throttles the public contact form. Nil disables it.
	ContactLimiter *middleware.RateLimiter
}

// New creates and returns a configured Chi router with all routes.
func New(opts Options, sessions middleware.SessionChecker, admin *handlers.Admin, auth *handlers.Auth, public *handlers.Public) chi.Router {
	r := chi.NewRouter()

	// Global middleware stack.
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.Metrics)
	r.Use(middleware.SecureHeaders(opts.HSTS))

	r.Get("/health", public.Health)
	r.Handle("/metrics", promhttp.Handler())

	if opts.Static != nil {
		r.Handle("/static/*", http.StripPrefix("/static/", staticHandler(opts.Static)))
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))

		// Admin API. The session cookie is the only credential, so every
		// state-changing call must come from the site itself.
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.CheckOrigin(opts.CORSOrigins))

			r.Get("/auth", auth.Status)
			r.Post("/auth", auth.Login)
			r.Delete("/auth", auth.Logout)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin(sessions))

				r.Get("/auth/totp", auth.TOTPQRCode)

				r.Get("/pages", admin.PagesList)
				r.Post("/pages", admin.PageCreate)
				r.Get("/pages/{slug}", admin.PageGet)
				r.Put("/pages/{slug}", admin.PageUpdate)
				r.Delete("/pages/{slug}", admin.PageDelete)

				r.Get("/media", admin.MediaList)
				r.Post("/media", admin.MediaUpload)
				r.Delete("/media/{name}", admin.MediaDelete)

				r.Get("/contact-submissions", admin.SubmissionsList)
				r.Get("/contact-submissions/stats", admin.SubmissionsStats)
				r.Get("/contact-submissions/export", admin.SubmissionsExport)

				r.Get("/db-ping", admin.DBPing)

				r.Get("/content/layouts", admin.Layouts)
				r.Get("/content/slug", admin.SuggestSlug)
				r.Post("/content/blocks", admin.ContentToBlocks)
				r.Post("/content/from-blocks", admin.BlocksToContent)
			})
		})

		// Public content API.
		r.Get("/cms/pages", public.PagesList)
		r.Get("/cms/pages/{slug}", public.PageGet)
		r.Get("/cms/navigation", public.Navigation)

		r.Group(func(r chi.Router) {
			if opts.ContactLimiter != nil {
				r.Use(opts.ContactLimiter.Middleware)
			}
			r.Post("/contact", public.Contact)
		})
	})

	// Rendered site.
	r.Get("/", public.Homepage)
	r.Get("/{slug}", public.Page)
	r.NotFound(public.NotFound)

	return r
}

const staticMaxAge = 7 * 24 * time.Hour

// staticHandler serves embedded assets with a long cache lifetime.
func staticHandler(fsys fs.FS) http.Handler {
	files := http.FileServer(http.FS(fsys))
	maxAge := "public, max-age=" + strconv.Itoa(int(staticMaxAge/time.Second))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", maxAge)
		files.ServeHTTP(w, r)
	})
}
