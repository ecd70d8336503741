package handlers

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
	"unicode/utf8"

	"corpsite/internal/models"
	"corpsite/internal/slug"
)

const maxTitleLen = 300

// Contact form limits.
const (
	maxNameLen    = 200
	maxEmailLen   = 320
	maxPhoneLen   = 50
	maxSubjectLen = 300
	maxMessageLen = 10_000
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Validation messages shared with the admin UI.
const (
	msgPageRequired     = "slug, title, and type are required"
	msgInvalidSlug      = "Invalid slug"
	msgInvalidType      = "Invalid page type"
	msgInvalidPlacement = "Invalid menu placement"
	msgTitleTooLong     = "Title is too long (max 300 characters)"
	msgInvalidContent   = "Content must be a JSON object"
	msgContactInvalid   = "Name, email, and message are required. Email must be valid."
)

// pageInput is the admin create/update payload. Fields are raw so an
// update can tell "absent" from "explicitly null".
type pageInput struct {
	Slug          *string         `json:"slug"`
	Title         *string         `json:"title"`
	Type          *string         `json:"type"`
	Content       json.RawMessage `json:"content"`
	MenuPlacement json.RawMessage `json:"menuPlacement"`
}

// validatePage checks the fields of a page about to be saved and returns
// the first problem found.
func validatePage(p *models.Page) string {
	if !slug.Valid(p.Slug) {
		return msgInvalidSlug
	}
	if utf8.RuneCountInString(p.Title) > maxTitleLen {
		return msgTitleTooLong
	}
	if !p.Type.Valid() {
		return msgInvalidType
	}
	if p.MenuPlacement != nil && !p.MenuPlacement.Valid() {
		return msgInvalidPlacement
	}
	if !isObject(p.Content) {
		return msgInvalidContent
	}
	return ""
}

// parsePlacement decodes a menuPlacement value. JSON null and "" both
// mean footer-only.
func parsePlacement(raw json.RawMessage) (*models.MenuPlacement, bool) {
	var s *string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, false
	}
	if s == nil || *s == "" {
		return nil, true
	}
	return models.PlacementPtr(models.MenuPlacement(*s)), true
}

// present reports whether a raw field was sent at all.
func present(raw json.RawMessage) bool {
	return len(raw) > 0
}

// isObject reports whether raw is a JSON object.
func isObject(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{' && json.Valid(raw)
}

// contentOrEmpty treats absent and null content as {}.
func contentOrEmpty(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 || string(bytes.TrimSpace(raw)) == "null" {
		return models.EmptyContent
	}
	return raw
}

// validateContact trims the contact form fields and checks them. Fields
// that are not strings are treated as empty.
func validateContact(body any) (models.ContactInput, bool) {
	m, ok := body.(map[string]any)
	if !ok {
		return models.ContactInput{}, false
	}
	field := func(k string) string {
		s, _ := m[k].(string)
		return strings.TrimSpace(s)
	}

	in := models.ContactInput{
		Name:    field("name"),
		Email:   field("email"),
		Phone:   field("phone"),
		Subject: field("subject"),
		Message: field("message"),
	}
	if in.Name == "" || in.Email == "" || in.Message == "" {
		return in, false
	}
	if !emailPattern.MatchString(in.Email) {
		return in, false
	}
	for _, f := range []struct {
		v   string
		max int
	}{
		{in.Name, maxNameLen},
		{in.Email, maxEmailLen},
		{in.Phone, maxPhoneLen},
		{in.Subject, maxSubjectLen},
		{in.Message, maxMessageLen},
	} {
		if utf8.RuneCountInString(f.v) > f.max {
			return in, false
		}
	}
	return in, true
}
