// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package content

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"unicode"

	"corpsite/internal/models"
)

// View is the typed form of a page's content. It is either a
// *ServiceConfig or a *GenericContent.
type View interface {
	view()
}

func (*ServiceConfig) view()  {}
func (*GenericContent) view() {}

// Options tune how content is decoded into a View.
type Options struct {
	// FallbackFields turns unknown top-level string fields of generic
	// content into auto-titled sections.
	FallbackFields bool
}

// reservedKeys are the generic content keys with dedicated rendering.
var reservedKeys = map[string]bool{
	"hero": true, "body": true, "sections": true, "rows": true,
	"Heading": true, "heading": true, "Subheading": true, "subheading": true,
}

// Hero is the banner of a generic page.
type Hero struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
}

// Section is a titled text block of a generic page.
type Section struct {
	Title string `json:"title,omitempty"`
	Text  string `json:"text,omitempty"`
}

// Row is a grid row of a generic page. Spans holds the parsed column
// widths; Cells is already trimmed to len(Spans).
type Row struct {
	Layout string
	Spans  []int
	Cells  []RowCell
}

// Field is a fallback section built from an unknown top-level string key.
type Field struct {
	Key   string
	Title string
	Value string
}

// GenericContent is the loosely-typed content of non-service pages.
type GenericContent struct {
	Hero       *Hero
	Heading    string // hero title, else Heading, else heading
	Subheading string // hero description, else subheading, else Subheading
	Body       string
	Sections   []Section
	Rows       []Row
	Fields     []Field
}

// Empty reports whether there is nothing to render besides the page title.
func (g *GenericContent) Empty() bool {
	return g.Heading == "" && g.Subheading == "" && g.Body == "" &&
		len(g.Sections) == 0 && len(g.Rows) == 0 && len(g.Fields) == 0 &&
		(g.Hero == nil || g.Hero.Image == "")
}

// Decode selects and builds the typed view for a page. Service pages whose
// content has a hero object get a ServiceConfig; every other page gets
// GenericContent.
func Decode(p *models.Page, opts Options) (View, error) {
	raw, err := Parse(p.Content)
	if err != nil {
		return nil, err
	}

	if p.Type == models.PageTypeService {
		if _, ok := raw["hero"].(map[string]any); ok {
			return decodeService(p, raw), nil
		}
	}

	return decodeGeneric(p.Content, raw, opts), nil
}

func decodeGeneric(rawJSON json.RawMessage, raw map[string]any, opts Options) *GenericContent {
	g := &GenericContent{}

	if h, ok := raw["hero"].(map[string]any); ok {
		g.Hero = &Hero{Title: str(h["title"]), Description: str(h["description"]), Image: str(h["image"])}
	}

	g.Heading = firstNonEmpty(heroField(g.Hero, true), firstString(raw, "Heading", "heading"))
	g.Subheading = firstNonEmpty(heroField(g.Hero, false), firstString(raw, "subheading", "Subheading"))
	g.Body = str(raw["body"])

	if sections, ok := raw["sections"].([]any); ok {
		for _, item := range sections {
			if s, ok := item.(map[string]any); ok {
				g.Sections = append(g.Sections, Section{Title: str(s["title"]), Text: str(s["text"])})
			}
		}
	}

	if rows, ok := raw["rows"].([]any); ok {
		for _, item := range rows {
			r, ok := item.(map[string]any)
			if !ok {
				continue
			}
			cells, ok := r["cells"].([]any)
			if !ok || len(cells) == 0 {
				continue
			}
			layout := str(r["layout"])
			spans := ParseLayout(layout)
			row := Row{Layout: layout, Spans: spans}
			for i, cell := range cells {
				if i >= len(spans) {
					break
				}
				cm, _ := cell.(map[string]any)
				row.Cells = append(row.Cells, RowCell{Title: str(cm["title"]), Text: str(cm["text"]), Image: str(cm["image"])})
			}
			g.Rows = append(g.Rows, row)
		}
	}

	if opts.FallbackFields {
		seen := map[string]bool{}
		for _, key := range topLevelKeys(rawJSON) {
			if reservedKeys[key] || seen[key] {
				continue
			}
			seen[key] = true
			if v, ok := raw[key].(string); ok {
				g.Fields = append(g.Fields, Field{Key: key, Title: Humanize(key), Value: v})
			}
		}
	}

	return g
}

// ParseLayout turns a layout string such as "8-4" into column spans. A
// layout without positive integers, or whose spans do not sum to exactly
// 12, becomes a single full-width column.
func ParseLayout(layout string) []int {
	var spans []int
	sum := 0
	for _, part := range layoutSep.Split(strings.TrimSpace(layout), -1) {
		n, err := strconv.Atoi(part)
		if err != nil || n <= 0 {
			continue
		}
		spans = append(spans, n)
		sum += n
	}
	if len(spans) == 0 || sum != 12 {
		return []int{12}
	}
	return spans
}

// Humanize turns a camelCase key into a title: a space is inserted before
// every capital and each word starts upper-case ("whyChooseUs" becomes
// "Why Choose Us").
func Humanize(key string) string {
	var b strings.Builder
	for _, r := range key {
		if unicode.IsUpper(r) {
			b.WriteRune(' ')
		}
		b.WriteRune(r)
	}

	words := strings.Fields(b.String())
	for i, w := range words {
		rs := []rune(w)
		rs[0] = unicode.ToUpper(rs[0])
		words[i] = string(rs)
	}
	return strings.Join(words, " ")
}

// topLevelKeys returns the object's keys in document order.
func topLevelKeys(raw json.RawMessage) []string {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return nil
	}

	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return keys
		}
		key, ok := tok.(string)
		if !ok {
			return keys
		}
		keys = append(keys, key)

		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return keys
		}
	}
	return keys
}

func heroField(h *Hero, title bool) string {
	if h == nil {
		return ""
	}
	if title {
		return h.Title
	}
	return h.Description
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
