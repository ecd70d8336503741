// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render provides HTML template rendering for public CMS pages.
// Each page's content is decoded into a typed view and dispatched to the
// service template or the generic content template.
package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strconv"
	"time"

	"corpsite/internal/content"
	"corpsite/internal/markdown"
	"corpsite/internal/models"
)

//go:embed templates/public/*.html
var publicFS embed.FS

// Template names.
const (
	tmplGeneric  = "generic"
	tmplService  = "service"
	tmplNotFound = "notfound"
)

// PageData holds all data passed to public templates.
type PageData struct {
	SiteName string
	Title    string
	Slug     string
	Year     int
	Nav      models.Navigation
	Service  *content.ServiceConfig  // set for the service template
	Generic  *content.GenericContent // set for the generic template
}

// gradients cycle over service cards without an explicit color.
var gradients = []string{
	"from-rose-500 to-pink-600",
	"from-sky-500 to-sky-700",
	"from-sky-400 to-sky-500",
	"from-amber-500 to-orange-600",
	"from-emerald-500 to-teal-600",
	"from-sky-700 to-sky-500",
	"from-sky-500 to-sky-400",
	"from-fuchsia-500 to-pink-600",
}

// Renderer handles template parsing and execution for public pages.
type Renderer struct {
	templates map[string]*template.Template
	funcMap   template.FuncMap
	siteName  string
	opts      content.Options
	now       func() time.Time
}

// New creates a Renderer by parsing all public templates from the embedded
// filesystem. Each page template is paired with the base layout. When
// devMode is true the layout loads Tailwind from its CDN.
func New(siteName string, devMode bool, opts content.Options) (*Renderer, error) {
	r := &Renderer{
		templates: make(map[string]*template.Template),
		siteName:  siteName,
		opts:      opts,
		now:       time.Now,
		funcMap: template.FuncMap{
			"markdown":  markdown.Render,
			"spanClass": SpanClass,
			"gridCols":  GridColsClass,
			"gradient": func(idx int, color string) string {
				if color != "" {
					return color
				}
				return gradients[idx%len(gradients)]
			},
			"activeClass": func(current, target string) string {
				if current == target {
					return "text-white font-semibold"
				}
				return "text-zinc-300 hover:text-white"
			},
			"isDev": func() bool {
				return devMode
			},
		},
	}

	for _, name := range []string{tmplGeneric, tmplService, tmplNotFound} {
		tmpl, err := template.New("base.html").Funcs(r.funcMap).ParseFS(
			publicFS, "templates/public/base.html", "templates/public/"+name+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.templates[name] = tmpl
	}

	return r, nil
}

// Page renders a CMS page. Service pages with a hero get the structured
// service template; everything else gets the generic content view, which
// shows a placeholder when the page has no content.
func (rn *Renderer) Page(w io.Writer, p *models.Page, nav models.Navigation) error {
	view, err := content.Decode(p, rn.opts)
	if err != nil {
		return fmt.Errorf("decode page %s: %w", p.Slug, err)
	}

	data := rn.base(p.Title, p.Slug, nav)
	name := tmplGeneric
	switch v := view.(type) {
	case *content.ServiceConfig:
		data.Service = v
		name = tmplService
	case *content.GenericContent:
		data.Generic = v
	}

	return rn.execute(w, name, data)
}

// NotFound renders the 404 page.
func (rn *Renderer) NotFound(w io.Writer, nav models.Navigation) error {
	return rn.execute(w, tmplNotFound, rn.base("Page not found", "", nav))
}

func (rn *Renderer) base(title, slug string, nav models.Navigation) *PageData {
	return &PageData{
		SiteName: rn.siteName,
		Title:    title,
		Slug:     slug,
		Year:     rn.now().Year(),
		Nav:      nav,
	}
}

func (rn *Renderer) execute(w io.Writer, name string, data *PageData) error {
	tmpl, ok := rn.templates[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}
	if err := tmpl.ExecuteTemplate(w, "base.html", data); err != nil {
		return fmt.Errorf("execute template %s: %w", name, err)
	}
	return nil
}

// SpanClass returns the grid classes for a row cell spanning n of 12
// columns. Cells stack full-width on small screens; a span outside 1 to 11
// is full width everywhere.
func SpanClass(n int) string {
	if n < 1 || n >= 12 {
		return "col-span-12"
	}
	return "col-span-12 sm:col-span-" + strconv.Itoa(n)
}

// GridColsClass returns the large-screen column class for a service section.
func GridColsClass(cols int) string {
	switch cols {
	case 2:
		return "lg:grid-cols-2"
	case 4:
		return "lg:grid-cols-4"
	}
	return "lg:grid-cols-3"
}
