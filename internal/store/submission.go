// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"corpsite/internal/database"
	"corpsite/internal/models"
)

const (
	// DefaultSubmissionLimit is used when a listing does not ask for a size.
	DefaultSubmissionLimit = 50
	// MaxSubmissionLimit caps a single listing page.
	MaxSubmissionLimit = 200
)

// SubmissionStore handles contact form submissions in contact_submissions.
type SubmissionStore struct {
	db  *database.Lazy
	now func() time.Time
}

// NewSubmissionStore creates a SubmissionStore on top of a lazily opened database.
func NewSubmissionStore(db *database.Lazy) *SubmissionStore {
	return &SubmissionStore{db: db, now: time.Now}
}

// Configured reports whether submissions can be persisted at all.
func (s *SubmissionStore) Configured() bool {
	return s.db.Configured()
}

// Save records a submission. Persistence is best effort: any failure is
// logged and nil is returned so the caller's primary flow is unaffected.
func (s *SubmissionStore) Save(ctx context.Context, in models.ContactInput) *models.ContactSubmission {
	db, err := s.db.X(ctx)
	if err != nil {
		slog.Warn("contact submission not saved", "error", err)
		return nil
	}

	sub := models.ContactSubmission{
		ID:      uuid.New(),
		Name:    in.Name,
		Email:   in.Email,
		Phone:   optional(in.Phone),
		Subject: optional(in.Subject),
		Message: in.Message,
	}

	err = db.GetContext(ctx, &sub.CreatedAt, `
		INSERT INTO contact_submissions (id, name, email, phone, subject, message)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, sub.ID, sub.Name, sub.Email, sub.Phone, sub.Subject, sub.Message)
	if err != nil {
		slog.Error("contact submission insert failed", "error", err)
		return nil
	}
	return &sub
}

// List returns one page of submissions, newest first, and the number of
// rows matching the filter regardless of pagination.
func (s *SubmissionStore) List(ctx context.Context, f models.SubmissionFilter) (*models.SubmissionPage, error) {
	db, err := s.db.X(ctx)
	if err != nil {
		return nil, err
	}

	limit, offset := ClampPage(f.Limit, f.Offset)
	where, args := submissionWhere(f)

	page := &models.SubmissionPage{Items: []models.ContactSubmission{}}
	if err := db.GetContext(ctx, &page.Total,
		"SELECT COUNT(*) FROM contact_submissions"+where, args...); err != nil {
		return nil, fmt.Errorf("count submissions: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, name, email, phone, subject, message, created_at
		FROM contact_submissions%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)+1, len(args)+2)
	if err := db.SelectContext(ctx, &page.Items, query, append(args, limit, offset)...); err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return page, nil
}

// Stats returns one point per UTC calendar day in [from, to] that has at
// least one submission, oldest day first. Unparseable bounds yield an
// empty result rather than an error.
func (s *SubmissionStore) Stats(ctx context.Context, from, to string) ([]models.StatPoint, error) {
	fromT, okFrom := ParseTime(from)
	toT, okTo := ParseTime(to)
	if !okFrom || !okTo {
		return []models.StatPoint{}, nil
	}

	db, err := s.db.X(ctx)
	if err != nil {
		return nil, err
	}

	points := []models.StatPoint{}
	err = db.SelectContext(ctx, &points, `
		SELECT TO_CHAR(DATE(created_at AT TIME ZONE 'UTC'), 'YYYY-MM-DD') AS date,
		       COUNT(*) AS count
		FROM contact_submissions
		WHERE created_at >= $1 AND created_at <= $2
		GROUP BY DATE(created_at AT TIME ZONE 'UTC')
		ORDER BY DATE(created_at AT TIME ZONE 'UTC') ASC
	`, fromT, toT)
	if err != nil {
		return nil, fmt.Errorf("submission stats: %w", err)
	}
	return points, nil
}

// Counts returns the total number of submissions and how many arrived in
// the last seven days and since the first of the current month (UTC).
func (s *SubmissionStore) Counts(ctx context.Context) (*models.SubmissionCounts, error) {
	db, err := s.db.X(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	weekStart := now.AddDate(0, 0, -7)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	var c models.SubmissionCounts
	err = db.GetContext(ctx, &c, `
		SELECT COUNT(*) AS total,
		       COUNT(*) FILTER (WHERE created_at >= $1) AS this_week,
		       COUNT(*) FILTER (WHERE created_at >= $2) AS this_month
		FROM contact_submissions
	`, weekStart, monthStart)
	if err != nil {
		return nil, fmt.Errorf("submission counts: %w", err)
	}
	return &c, nil
}

// ClampPage normalises pagination: limit to [1, MaxSubmissionLimit] with 0
// meaning the default, and offset to >= 0.
func ClampPage(limit, offset int) (int, int) {
	if limit == 0 {
		limit = DefaultSubmissionLimit
	}
	limit = max(1, min(limit, MaxSubmissionLimit))
	return limit, max(offset, 0)
}

// ParseTime accepts the date formats the admin UI sends: a full RFC 3339
// timestamp, a datetime-local value or a plain date (UTC midnight).
func ParseTime(v string) (time.Time, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// submissionWhere builds the created_at filter for a listing.
func submissionWhere(f models.SubmissionFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.From != nil {
		args = append(args, *f.From)
		conds = append(conds, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if f.To != nil {
		args = append(args, *f.To)
		conds = append(conds, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

// Export returns up to limit submissions in the filter range, newest first.
// Used by the CSV download which is not paginated.
func (s *SubmissionStore) Export(ctx context.Context, from, to *time.Time, limit int) ([]models.ContactSubmission, error) {
	db, err := s.db.X(ctx)
	if err != nil {
		return nil, err
	}

	where, args := submissionWhere(models.SubmissionFilter{From: from, To: to})
	query := fmt.Sprintf(`
		SELECT id, name, email, phone, subject, message, created_at
		FROM contact_submissions%s
		ORDER BY created_at DESC
		LIMIT $%d
	`, where, len(args)+1)

	items := []models.ContactSubmission{}
	if err := sqlx.SelectContext(ctx, db, &items, query, append(args, limit)...); err != nil {
		return nil, fmt.Errorf("export submissions: %w", err)
	}
	return items, nil
}
