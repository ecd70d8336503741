package database

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// Seed populates an empty cms_pages table with a starter home page so a
// fresh development instance renders something at "/".
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM cms_pages").Scan(&count); err != nil {
		return fmt.Errorf("seed check pages: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	_, err := db.Exec(`
		INSERT INTO cms_pages (slug, title, type, menu_placement, content, updated_at)
		VALUES ($1, $2, $3, $4, $5::jsonb, NOW())
		ON CONFLICT (slug) DO NOTHING
	`, "home", "Home", "home", "main",
		`{"hero":{"title":"Welcome","description":"Edit this page from the admin panel."}}`)
	if err != nil {
		return fmt.Errorf("seed insert home page: %w", err)
	}

	slog.Info("database seeded with starter home page")
	return nil
}
