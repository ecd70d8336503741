// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"corpsite/internal/cache"
	"corpsite/internal/mail"
	"corpsite/internal/models"
	"corpsite/internal/render"
	"corpsite/internal/slug"
)

var contactRequests = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "corpsite_contact_requests_total",
		Help: "Contact form requests by outcome.",
	},
	[]string{"result"},
)

// Public groups handlers for the public JSON API and the server-rendered
// site. Rendered pages go through the two-level page cache before
// touching the database.
type Public struct {
	pages       PageRepository
	submissions SubmissionRepository
	mailer      mail.Sender
	renderer    *render.Renderer
	pageCache   *cache.PageCache
}

// NewPublic creates a new Public handler group.
func NewPublic(pages PageRepository, submissions SubmissionRepository, mailer mail.Sender, renderer *render.Renderer, pageCache *cache.PageCache) *Public {
	return &Public{
		pages:       pages,
		submissions: submissions,
		mailer:      mailer,
		renderer:    renderer,
		pageCache:   pageCache,
	}
}

// --- JSON API ---

// PagesList returns metadata for every page so the site can link to them.
func (p *Public) PagesList(w http.ResponseWriter, r *http.Request) {
	pages, err := p.pages.List(r.Context())
	if err != nil {
		storeFailed(w, err, "Failed to list pages")
		return
	}
	writeJSON(w, http.StatusOK, pages)
}

// PageGet returns one page including its content.
func (p *Public) PageGet(w http.ResponseWriter, r *http.Request) {
	page, err := p.pages.FindBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		storeFailed(w, err, "Failed to load page")
		return
	}
	if page == nil {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// Navigation returns page links grouped by menu placement.
func (p *Public) Navigation(w http.ResponseWriter, r *http.Request) {
	pages, err := p.pages.List(r.Context())
	if err != nil {
		storeFailed(w, err, "Failed to load navigation")
		return
	}
	writeJSON(w, http.StatusOK, models.BuildNavigation(pages))
}

// Contact validates a contact form submission, mails it to the site owner
// and records it when a database is configured. Recording is best effort:
// once the mail is sent the visitor gets a success response.
func (p *Public) Contact(w http.ResponseWriter, r *http.Request) {
	var body any
	if err := decodeJSON(w, r, &body); err != nil {
		contactRequests.WithLabelValues("bad_request").Inc()
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	in, ok := validateContact(body)
	if !ok {
		contactRequests.WithLabelValues("bad_request").Inc()
		writeError(w, http.StatusBadRequest, msgContactInvalid)
		return
	}

	if !p.mailer.Configured() {
		slog.Error("contact form used without SMTP configuration")
		contactRequests.WithLabelValues("unconfigured").Inc()
		writeError(w, http.StatusServiceUnavailable, "Contact form is not configured. Please try again later.")
		return
	}

	if err := p.mailer.Send(r.Context(), mail.ContactMessage(in)); err != nil {
		slog.Error("contact mail send failed", "error", err)
		contactRequests.WithLabelValues("send_failed").Inc()
		writeError(w, http.StatusInternalServerError, "Failed to send message. Please try again later.")
		return
	}

	if p.submissions != nil && p.submissions.Configured() {
		if sub := p.submissions.Save(r.Context(), in); sub != nil {
			slog.Info("contact submission recorded", "id", sub.ID)
		}
	}

	contactRequests.WithLabelValues("sent").Inc()
	writeOK(w)
}

// Health answers liveness probes.
func (p *Public) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- Rendered site ---

// Homepage renders the page with slug "home".
func (p *Public) Homepage(w http.ResponseWriter, r *http.Request) {
	p.servePage(w, r, models.HomeSlug)
}

// Page renders a public page by its slug.
func (p *Public) Page(w http.ResponseWriter, r *http.Request) {
	s := chi.URLParam(r, "slug")
	if !slug.Valid(s) {
		p.notFound(w, r)
		return
	}
	if s == models.HomeSlug {
		http.Redirect(w, r, "/", http.StatusMovedPermanently)
		return
	}
	p.servePage(w, r, s)
}

func (p *Public) servePage(w http.ResponseWriter, r *http.Request, s string) {
	ctx := r.Context()

	if cached, ok := p.pageCache.Get(ctx, s); ok {
		writeHTML(w, http.StatusOK, cached)
		return
	}

	page, err := p.pages.FindBySlug(ctx, s)
	if err != nil {
		slog.Error("find page by slug failed", "error", err, "slug", s)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if page == nil {
		p.notFound(w, r)
		return
	}

	var buf bytes.Buffer
	if err := p.renderer.Page(&buf, page, p.navigation(ctx)); err != nil {
		slog.Error("render page failed", "error", err, "slug", s)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	rendered := buf.Bytes()
	p.pageCache.Set(ctx, s, rendered)
	writeHTML(w, http.StatusOK, rendered)
}

// notFound renders the 404 page. Responses for unknown slugs are not
// cached so a page created later shows up immediately.
func (p *Public) notFound(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := p.renderer.NotFound(&buf, p.navigation(r.Context())); err != nil {
		slog.Error("render not found page failed", "error", err)
		http.NotFound(w, r)
		return
	}
	writeHTML(w, http.StatusNotFound, buf.Bytes())
}

// NotFound is the router's fallback handler for unknown paths.
func (p *Public) NotFound(w http.ResponseWriter, r *http.Request) {
	p.notFound(w, r)
}

// navigation builds the site menus. Pages still render without menus when
// the page list cannot be loaded.
func (p *Public) navigation(ctx context.Context) models.Navigation {
	pages, err := p.pages.List(ctx)
	if err != nil {
		slog.Warn("navigation unavailable", "error", err)
		return models.BuildNavigation(nil)
	}
	return models.BuildNavigation(pages)
}

func writeHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(body)
}
