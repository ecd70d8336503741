// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for the corporate site.
// Handlers are grouped by concern (admin, auth, public) and receive
// their dependencies through the handler struct.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"corpsite/internal/cache"
	"corpsite/internal/content"
	"corpsite/internal/media"
	"corpsite/internal/models"
	"corpsite/internal/slug"
	"corpsite/internal/store"
)

// PageRepository is the page persistence the handlers need.
// *store.PageStore satisfies it.
type PageRepository interface {
	List(ctx context.Context) ([]models.PageMeta, error)
	FindBySlug(ctx context.Context, slug string) (*models.Page, error)
	Save(ctx context.Context, p *models.Page) error
	Rename(ctx context.Context, oldSlug string, p *models.Page) error
	Delete(ctx context.Context, slug string) error
}

// SubmissionRepository is the contact submission persistence the handlers
// need. *store.SubmissionStore satisfies it.
type SubmissionRepository interface {
	Configured() bool
	Save(ctx context.Context, in models.ContactInput) *models.ContactSubmission
	List(ctx context.Context, f models.SubmissionFilter) (*models.SubmissionPage, error)
	Stats(ctx context.Context, from, to string) ([]models.StatPoint, error)
	Counts(ctx context.Context) (*models.SubmissionCounts, error)
	Export(ctx context.Context, from, to *time.Time, limit int) ([]models.ContactSubmission, error)
}

// Pinger verifies the database connection. *database.Lazy satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Admin groups the admin JSON API handlers and their dependencies.
type Admin struct {
	pages       PageRepository
	submissions SubmissionRepository
	media       *media.Service
	db          Pinger
	pageCache   *cache.PageCache
}

// NewAdmin creates a new Admin handler group.
func NewAdmin(pages PageRepository, submissions SubmissionRepository, mediaSvc *media.Service, db Pinger, pageCache *cache.PageCache) *Admin {
	return &Admin{
		pages:       pages,
		submissions: submissions,
		media:       mediaSvc,
		db:          db,
		pageCache:   pageCache,
	}
}

// --- Pages CRUD ---

// PagesList returns metadata for every page, most recently updated first.
func (a *Admin) PagesList(w http.ResponseWriter, r *http.Request) {
	pages, err := a.pages.List(r.Context())
	if err != nil {
		storeFailed(w, err, "Failed to list pages")
		return
	}
	writeJSON(w, http.StatusOK, pages)
}

// PageGet returns one page including its content.
func (a *Admin) PageGet(w http.ResponseWriter, r *http.Request) {
	page, err := a.pages.FindBySlug(r.Context(), chi.URLParam(r, "slug"))
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

// PageCreate upserts a page. slug, title and type are required; content
// defaults to {} and an absent menuPlacement means footer-only.
func (a *Admin) PageCreate(w http.ResponseWriter, r *http.Request) {
	var in pageInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if in.Slug == nil || *in.Slug == "" || in.Title == nil || strings.TrimSpace(*in.Title) == "" || in.Type == nil {
		writeError(w, http.StatusBadRequest, msgPageRequired)
		return
	}

	typ := models.PageType(*in.Type)
	if typ == "" {
		typ = models.PageTypeCustom
	}
	page := &models.Page{
		PageMeta: models.PageMeta{
			Slug:  *in.Slug,
			Title: strings.TrimSpace(*in.Title),
			Type:  typ,
		},
		Content: contentOrEmpty(in.Content),
	}
	if present(in.MenuPlacement) {
		placement, ok := parsePlacement(in.MenuPlacement)
		if !ok {
			writeError(w, http.StatusBadRequest, msgInvalidPlacement)
			return
		}
		page.MenuPlacement = placement
	}

	if msg := validatePage(page); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	if err := a.pages.Save(r.Context(), page); err != nil {
		storeFailed(w, err, "Failed to save page")
		return
	}
	a.invalidatePages(r.Context())

	slog.Info("page saved", "slug", page.Slug, "type", page.Type)
	writeOK(w)
}

// PageUpdate merges the request into the stored page and saves it. Fields
// left out of the request keep their stored values; a page that does not
// exist yet is created with defaults. A different body slug renames the
// page atomically.
func (a *Admin) PageUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	pathSlug := chi.URLParam(r, "slug")

	var in pageInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	existing, err := a.pages.FindBySlug(ctx, pathSlug)
	if err != nil {
		storeFailed(w, err, "Failed to load page")
		return
	}

	page := &models.Page{
		PageMeta: models.PageMeta{
			Slug:  pathSlug,
			Title: "Untitled",
			Type:  models.PageTypeCustom,
		},
		Content: models.EmptyContent,
	}
	if existing != nil {
		page.Title = existing.Title
		page.Type = existing.Type
		page.MenuPlacement = existing.MenuPlacement
		page.Content = existing.Content
	}

	if in.Slug != nil {
		page.Slug = *in.Slug
	}
	if in.Title != nil {
		page.Title = strings.TrimSpace(*in.Title)
	}
	if in.Type != nil {
		page.Type = models.PageType(*in.Type)
	}
	if present(in.Content) {
		page.Content = contentOrEmpty(in.Content)
	}
	if present(in.MenuPlacement) {
		placement, ok := parsePlacement(in.MenuPlacement)
		if !ok {
			writeError(w, http.StatusBadRequest, msgInvalidPlacement)
			return
		}
		page.MenuPlacement = placement
	}

	if page.Title == "" {
		page.Title = "Untitled"
	}
	if msg := validatePage(page); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	// A new slug always goes through Rename so an unrelated page holding
	// it is never overwritten, even when pathSlug does not exist.
	if page.Slug != pathSlug {
		err = a.pages.Rename(ctx, pathSlug, page)
	} else {
		err = a.pages.Save(ctx, page)
	}
	if errors.Is(err, store.ErrSlugExists) {
		writeError(w, http.StatusConflict, "Slug already exists")
		return
	}
	if err != nil {
		storeFailed(w, err, "Failed to save page")
		return
	}
	if existing != nil && !navChanged(&existing.PageMeta, &page.PageMeta) {
		a.invalidatePage(ctx, page.Slug)
	} else {
		a.invalidatePages(ctx)
	}

	if page.Slug != pathSlug {
		slog.Info("page renamed", "from", pathSlug, "to", page.Slug)
	} else {
		slog.Info("page updated", "slug", page.Slug)
	}
	writeJSON(w, http.StatusOK, page)
}

// PageDelete removes a page. Deleting a missing page is not an error.
func (a *Admin) PageDelete(w http.ResponseWriter, r *http.Request) {
	s := chi.URLParam(r, "slug")
	if err := a.pages.Delete(r.Context(), s); err != nil {
		storeFailed(w, err, "Failed to delete page")
		return
	}
	a.invalidatePages(r.Context())

	slog.Info("page deleted", "slug", s)
	writeOK(w)
}

// invalidatePages drops every cached rendered page. Any page write can
// change the navigation shown on all pages.
func (a *Admin) invalidatePages(ctx context.Context) {
	if a.pageCache != nil {
		a.pageCache.InvalidateAll(ctx)
	}
}

// invalidatePage drops one cached page after an edit that left the menus
// untouched.
func (a *Admin) invalidatePage(ctx context.Context, slug string) {
	if a.pageCache != nil {
		a.pageCache.InvalidatePage(ctx, slug)
	}
}

// navChanged reports whether an edit affects the menus every page shows.
func navChanged(before, after *models.PageMeta) bool {
	if before.Slug != after.Slug || before.Title != after.Title {
		return true
	}
	if (before.MenuPlacement == nil) != (after.MenuPlacement == nil) {
		return true
	}
	return before.MenuPlacement != nil && *before.MenuPlacement != *after.MenuPlacement
}

// --- Block editor ---

// Layouts lists the row layouts the editor offers.
func (a *Admin) Layouts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, content.LayoutOptions)
}

// SuggestSlug derives a URL slug from ?title= for the new page form.
func (a *Admin) SuggestSlug(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"slug": slug.Generate(r.URL.Query().Get("title"))})
}

// ContentToBlocks decomposes {"content": {...}} into editor blocks.
func (a *Admin) ContentToBlocks(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content json.RawMessage `json:"content"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	c, err := content.Parse(req.Content)
	if err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidContent)
		return
	}
	writeJSON(w, http.StatusOK, content.ContentToBlocks(c))
}

// BlocksToContent merges {"blocks": [...]} back into page content.
func (a *Admin) BlocksToContent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Blocks []content.Block `json:"blocks"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	writeJSON(w, http.StatusOK, content.BlocksToContent(req.Blocks))
}

// --- Health ---

// DBPing verifies the database connection, opening it if needed.
func (a *Admin) DBPing(w http.ResponseWriter, r *http.Request) {
	if err := a.db.Ping(r.Context()); err != nil {
		slog.Warn("database ping failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false, "error": "Database unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "message": "Database connected"})
}
