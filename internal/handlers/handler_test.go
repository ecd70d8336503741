// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler tests.
// Persistence, mail and the blob store are replaced by in-memory fakes.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"corpsite/internal/cache"
	"corpsite/internal/config"
	"corpsite/internal/content"
	"corpsite/internal/mail"
	"corpsite/internal/media"
	"corpsite/internal/models"
	"corpsite/internal/render"
	"corpsite/internal/session"
	"corpsite/internal/storage"
	"corpsite/internal/store"
)

// --- pages ---

type memPages struct {
	mu    sync.Mutex
	pages map[string]models.Page
	err   error
	clock time.Time
}

func newMemPages() *memPages {
	return &memPages{
		pages: map[string]models.Page{},
		clock: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (m *memPages) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memPages) List(ctx context.Context) ([]models.PageMeta, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := []models.PageMeta{}
	for _, p := range m.pages {
		out = append(out, p.PageMeta)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (m *memPages) FindBySlug(ctx context.Context, slug string) (*models.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.pages[slug]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *memPages) Save(ctx context.Context, p *models.Page) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	p.UpdatedAt = m.tick()
	m.pages[p.Slug] = *p
	return nil
}

func (m *memPages) Rename(ctx context.Context, oldSlug string, p *models.Page) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, taken := m.pages[p.Slug]; taken && oldSlug != p.Slug {
		return store.ErrSlugExists
	}
	p.UpdatedAt = m.tick()
	delete(m.pages, oldSlug)
	m.pages[p.Slug] = *p
	return nil
}

func (m *memPages) Delete(ctx context.Context, slug string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	delete(m.pages, slug)
	return nil
}

func (m *memPages) put(p models.Page) {
	if len(p.Content) == 0 {
		p.Content = models.EmptyContent
	}
	m.Save(context.Background(), &p)
}

// --- submissions ---

type memSubmissions struct {
	mu         sync.Mutex
	configured bool
	saved      []models.ContactSubmission
	err        error
	lastFilter models.SubmissionFilter
}

func (m *memSubmissions) Configured() bool { return m.configured }

func (m *memSubmissions) Save(ctx context.Context, in models.ContactInput) *models.ContactSubmission {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub := models.ContactSubmission{
		ID:        uuid.New(),
		Name:      in.Name,
		Email:     in.Email,
		Message:   in.Message,
		CreatedAt: time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC),
	}
	if in.Phone != "" {
		sub.Phone = &in.Phone
	}
	if in.Subject != "" {
		sub.Subject = &in.Subject
	}
	m.saved = append(m.saved, sub)
	return &sub
}

func (m *memSubmissions) List(ctx context.Context, f models.SubmissionFilter) (*models.SubmissionPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastFilter = f
	if m.err != nil {
		return nil, m.err
	}
	return &models.SubmissionPage{Items: m.saved, Total: len(m.saved)}, nil
}

func (m *memSubmissions) Stats(ctx context.Context, from, to string) ([]models.StatPoint, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []models.StatPoint{{Date: "2026-03-02", Count: len(m.saved)}}, nil
}

func (m *memSubmissions) Counts(ctx context.Context) (*models.SubmissionCounts, error) {
	if m.err != nil {
		return nil, m.err
	}
	n := len(m.saved)
	return &models.SubmissionCounts{Total: n, ThisWeek: n, ThisMonth: n}, nil
}

func (m *memSubmissions) Export(ctx context.Context, from, to *time.Time, limit int) ([]models.ContactSubmission, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.saved, nil
}

// --- mail ---

type fakeMailer struct {
	configured bool
	err        error
	sent       []mail.Message
}

func (f *fakeMailer) Configured() bool { return f.configured }

func (f *fakeMailer) Send(ctx context.Context, msg mail.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

// --- blob store ---

type memBlobs struct {
	mu      sync.Mutex
	objects map[string]storage.Object
	types   map[string]string
}

func newMemBlobs() *memBlobs {
	return &memBlobs{objects: map[string]storage.Object{}, types: map[string]string{}}
}

func (b *memBlobs) Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = storage.Object{Key: key, Size: size, LastModified: time.Now()}
	b.types[key] = contentType
	return nil
}

func (b *memBlobs) List(ctx context.Context, prefix string, limit int) ([]storage.Object, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []storage.Object
	for k, o := range b.objects {
		if strings.HasPrefix(k, prefix) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (b *memBlobs) Delete(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, key)
	return nil
}

func (b *memBlobs) FileURL(key string) string {
	return "https://cdn.example.com/" + key
}

func (b *memBlobs) has(key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.objects[key]
	return ok
}

// --- environment ---

const testPassword = "correct-horse"

// testEnv holds all dependencies for handler tests.
type testEnv struct {
	pages       *memPages
	submissions *memSubmissions
	mailer      *fakeMailer
	blobs       *memBlobs
	sessions    *session.Manager
	pageCache   *cache.PageCache
	admin       *Admin
	auth        *Auth
	public      *Public
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		pages:       newMemPages(),
		submissions: &memSubmissions{configured: true},
		mailer:      &fakeMailer{configured: true},
		blobs:       newMemBlobs(),
		pageCache:   cache.NewPageCache(nil, 0),
	}
	env.sessions = session.NewManager(config.AdminConfig{
		Password:   testPassword,
		SessionKey: "test-session-key",
	}, false, nil)

	renderer, err := render.New("Corp Site", false, content.Options{FallbackFields: true})
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}

	env.admin = NewAdmin(env.pages, env.submissions, media.NewService(env.blobs),
		pingFunc(func(context.Context) error { return nil }), env.pageCache)
	env.auth = NewAuth(env.sessions)
	env.public = NewPublic(env.pages, env.submissions, env.mailer, renderer, env.pageCache)
	return env
}

// withChiURLParam returns a request carrying chi URL parameters.
func withChiURLParam(r *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// jsonRequest builds a request with a JSON body.
func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// serve runs h and returns the recorder.
func serve(h http.HandlerFunc, r *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h(rr, r)
	return rr
}

// decodeBody unmarshals a JSON response body.
func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode body %q: %v", rr.Body.String(), err)
	}
	return v
}

// errorMessage returns the "error" field of a JSON response.
func errorMessage(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	return decodeBody[map[string]any](t, rr)["error"].(string)
}

var errBoom = errors.New("boom")

// compactJSON normalises a JSON document for comparison.
func compactJSON(t *testing.T, raw []byte) string {
	t.Helper()
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		t.Fatalf("compact %q: %v", raw, err)
	}
	return buf.String()
}
