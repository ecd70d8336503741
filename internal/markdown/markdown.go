// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package markdown converts the free-text fields of page content (body,
// section and cell text) into sanitized HTML. Line breaks typed in the
// editor are preserved as <br>. Raw HTML is never trusted: goldmark omits
// it and bluemonday filters the output.
package markdown

import (
	"bytes"
	"html/template"
	"regexp"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// md is the configured goldmark instance, reused across calls.
var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,         // tables, strikethrough, autolinks, task lists
		extension.Typographer, // smart quotes and dashes
		highlighting.NewHighlighting( // fenced code blocks, styled by site.css
			highlighting.WithStyle("github"),
			highlighting.WithFormatOptions(chromahtml.WithClasses(true)),
		),
	),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
	goldmark.WithRendererOptions(
		html.WithHardWraps(),
	),
)

var chromaClass = regexp.MustCompile(`^[a-z0-9]+( [a-z0-9]+)*$`)

// policy is safe to share between goroutines once built.
var policy = newPolicy()

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.RequireNoReferrerOnFullyQualifiedLinks(true)
	// Highlighted code is emitted as chroma CSS classes.
	p.AllowAttrs("class").Matching(chromaClass).OnElements("pre", "code", "span")
	return p
}

// ToHTML converts Markdown source into HTML without sanitizing it.
func ToHTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Sanitize filters HTML through the user-generated-content policy.
func Sanitize(s string) string {
	return policy.Sanitize(s)
}

// Render converts Markdown to sanitized HTML ready for a template. Blank
// input renders as nothing. A conversion failure falls back to the
// escaped source.
func Render(source string) template.HTML {
	if strings.TrimSpace(source) == "" {
		return ""
	}
	out, err := ToHTML(source)
	if err != nil {
		return template.HTML("<p>" + template.HTMLEscapeString(source) + "</p>")
	}
	return template.HTML(Sanitize(out))
}
