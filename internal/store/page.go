// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"corpsite/internal/database"
	"corpsite/internal/models"
)

// ErrSlugExists is returned when a rename targets a slug held by another page.
var ErrSlugExists = errors.New("slug already exists")

// uniqueViolation is the PostgreSQL SQLSTATE for unique constraint failures.
const uniqueViolation = "23505"

// PageStore handles CMS page persistence in the cms_pages table.
type PageStore struct {
	db *database.Lazy
}

// NewPageStore creates a PageStore on top of a lazily opened database.
func NewPageStore(db *database.Lazy) *PageStore {
	return &PageStore{db: db}
}

// List returns metadata for every page, most recently updated first.
func (s *PageStore) List(ctx context.Context) ([]models.PageMeta, error) {
	db, err := s.db.DB(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT slug, title, type, menu_placement, updated_at
		FROM cms_pages
		ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	defer rows.Close()

	items := []models.PageMeta{}
	for rows.Next() {
		var (
			m         models.PageMeta
			placement sql.NullString
		)
		if err := rows.Scan(&m.Slug, &m.Title, &m.Type, &placement, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan page: %w", err)
		}
		m.MenuPlacement = placementFromNull(placement)
		items = append(items, m)
	}
	return items, rows.Err()
}

// FindBySlug retrieves a page including its content. Returns nil if not found.
func (s *PageStore) FindBySlug(ctx context.Context, slug string) (*models.Page, error) {
	db, err := s.db.DB(ctx)
	if err != nil {
		return nil, err
	}

	var (
		p         models.Page
		placement sql.NullString
		content   []byte
	)
	err = db.QueryRowContext(ctx, `
		SELECT slug, title, type, menu_placement, content, updated_at
		FROM cms_pages WHERE slug = $1
	`, slug).Scan(&p.Slug, &p.Title, &p.Type, &placement, &content, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find page by slug: %w", err)
	}

	p.MenuPlacement = placementFromNull(placement)
	p.Content = contentOrEmpty(content)
	return &p, nil
}

// Save upserts a page by slug. An existing row has its title, type,
// placement and content overwritten. UpdatedAt on p is refreshed from the
// database clock.
func (s *PageStore) Save(ctx context.Context, p *models.Page) error {
	db, err := s.db.DB(ctx)
	if err != nil {
		return err
	}

	return upsertPage(ctx, db, p)
}

// Rename moves the page stored under oldSlug to p.Slug and writes p's
// fields, all inside one transaction. Returns ErrSlugExists if p.Slug is
// already taken by a different page.
func (s *PageStore) Rename(ctx context.Context, oldSlug string, p *models.Page) error {
	if oldSlug == p.Slug {
		return s.Save(ctx, p)
	}

	db, err := s.db.DB(ctx)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin rename: %w", err)
	}
	defer tx.Rollback()

	var taken bool
	if err := tx.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM cms_pages WHERE slug = $1)", p.Slug,
	).Scan(&taken); err != nil {
		return fmt.Errorf("check slug: %w", err)
	}
	if taken {
		return ErrSlugExists
	}

	if err := upsertPage(ctx, tx, p); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM cms_pages WHERE slug = $1", oldSlug); err != nil {
		return fmt.Errorf("delete old slug: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit rename: %w", err)
	}
	return nil
}

// Delete removes a page. Deleting a missing slug is not an error.
func (s *PageStore) Delete(ctx context.Context, slug string) error {
	db, err := s.db.DB(ctx)
	if err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, "DELETE FROM cms_pages WHERE slug = $1", slug); err != nil {
		return fmt.Errorf("delete page: %w", err)
	}
	return nil
}

// queryRower is satisfied by both *sql.DB and *sql.Tx.
type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func upsertPage(ctx context.Context, q queryRower, p *models.Page) error {
	content := p.Content
	if len(content) == 0 || string(content) == "null" {
		content = models.EmptyContent
	}

	var placement any
	if p.MenuPlacement != nil {
		placement = string(*p.MenuPlacement)
	}

	err := q.QueryRowContext(ctx, `
		INSERT INTO cms_pages (slug, title, type, menu_placement, content, updated_at)
		VALUES ($1, $2, $3, $4, $5::jsonb, NOW())
		ON CONFLICT (slug) DO UPDATE SET
			title = EXCLUDED.title,
			type = EXCLUDED.type,
			menu_placement = EXCLUDED.menu_placement,
			content = EXCLUDED.content,
			updated_at = EXCLUDED.updated_at
		RETURNING updated_at
	`, p.Slug, p.Title, string(p.Type), placement, string(content)).Scan(&p.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrSlugExists
		}
		return fmt.Errorf("save page: %w", err)
	}
	p.Content = content
	return nil
}

func placementFromNull(ns sql.NullString) *models.MenuPlacement {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	return models.PlacementPtr(models.MenuPlacement(ns.String))
}

// contentOrEmpty returns stored JSON, defaulting to an empty object.
func contentOrEmpty(b []byte) json.RawMessage {
	if len(b) == 0 || string(b) == "null" {
		return models.EmptyContent
	}
	out := make(json.RawMessage, len(b))
	copy(out, b)
	return out
}
