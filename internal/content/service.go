// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package content

import (
	"strconv"

	"corpsite/internal/models"
)

// ServiceConfig is the fixed schema of "service" pages.
type ServiceConfig struct {
	Hero      ServiceHero      `json:"hero"`
	Intro     *Intro           `json:"intro,omitempty"`
	Sections  []ServiceSection `json:"sections"`
	Accordion *Accordion       `json:"accordion,omitempty"`
	Benefits  *Benefits        `json:"benefits,omitempty"`
	CTA       *CTA             `json:"cta,omitempty"`
}

// ServiceHero is the banner of a service page.
type ServiceHero struct {
	Label       string `json:"label"`
	Title       string `json:"title"`
	Highlight   string `json:"highlight"`
	Description string `json:"description"`
	Image       string `json:"image"`
	CTAText     string `json:"ctaText,omitempty"`
	CTALink     string `json:"ctaLink,omitempty"`
}

// Intro holds the optional lead paragraphs under the hero.
type Intro struct {
	Paragraphs []string `json:"paragraphs"`
}

// ServiceSection is a grid of service cards.
type ServiceSection struct {
	Label       string        `json:"label"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Highlight   string        `json:"highlight,omitempty"`
	Subtitle    string        `json:"Subtitle,omitempty"`
	Services    []ServiceItem `json:"services"`
	Columns     int           `json:"columns,omitempty"` // 2, 3 or 4
	Background  string        `json:"background,omitempty"`
}

// GridColumns returns the column count, defaulting to 3 for missing or
// unsupported values.
func (s ServiceSection) GridColumns() int {
	switch s.Columns {
	case 2, 3, 4:
		return s.Columns
	}
	return 3
}

// ServiceItem is one card in a service section.
type ServiceItem struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Color       string `json:"color,omitempty"`
}

// Accordion is a collapsible list beside an image.
type Accordion struct {
	Title      string          `json:"title"`
	Highlight  string          `json:"highlight,omitempty"`
	Image      string          `json:"image"`
	Items      []AccordionItem `json:"items"`
	Background string          `json:"background,omitempty"`
}

// AccordionItem is one entry of an Accordion.
type AccordionItem struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Benefits is a grid of benefit cards.
type Benefits struct {
	Title       string    `json:"title"`
	Highlight   string    `json:"highlight"`
	Description string    `json:"description"`
	Items       []Benefit `json:"items"`
}

// Benefit is one card in Benefits.
type Benefit struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// CTA is the closing call to action.
type CTA struct {
	Label           string  `json:"label,omitempty"`
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	PrimaryButton   Button  `json:"primaryButton"`
	SecondaryButton *Button `json:"secondaryButton,omitempty"`
	Image           string  `json:"image,omitempty"`
}

// Button is a labelled link.
type Button struct {
	Text string `json:"text"`
	Link string `json:"link"`
}

// decodeService builds a service config from the content object field by
// field. A mistyped field is dropped (or defaulted) on its own and the rest
// of the page keeps its layout. The hero title falls back to the top-level
// Heading and then the page title; the hero description falls back to the
// top-level subheading.
func decodeService(p *models.Page, raw map[string]any) *ServiceConfig {
	h := object(raw["hero"])
	cfg := &ServiceConfig{
		Hero: ServiceHero{
			Label:       str(h["label"]),
			Title:       str(h["title"]),
			Highlight:   str(h["highlight"]),
			Description: str(h["description"]),
			Image:       str(h["image"]),
			CTAText:     str(h["ctaText"]),
			CTALink:     str(h["ctaLink"]),
		},
		Sections: []ServiceSection{},
	}
	if cfg.Hero.Title == "" {
		cfg.Hero.Title = firstNonEmpty(str(raw["Heading"]), p.Title)
	}
	if cfg.Hero.Description == "" {
		cfg.Hero.Description = str(raw["subheading"])
	}

	if in, ok := raw["intro"].(map[string]any); ok {
		if paras := stringList(in["paragraphs"]); len(paras) > 0 {
			cfg.Intro = &Intro{Paragraphs: paras}
		}
	}

	for _, sec := range objects(raw["sections"]) {
		section := ServiceSection{
			Label:       str(sec["label"]),
			Title:       str(sec["title"]),
			Description: str(sec["description"]),
			Highlight:   str(sec["highlight"]),
			Subtitle:    str(sec["Subtitle"]),
			Columns:     number(sec["columns"]),
			Background:  str(sec["background"]),
			Services:    []ServiceItem{},
		}
		for _, item := range objects(sec["services"]) {
			section.Services = append(section.Services, ServiceItem{
				Title:       str(item["title"]),
				Description: str(item["description"]),
				Icon:        str(item["icon"]),
				Color:       str(item["color"]),
			})
		}
		cfg.Sections = append(cfg.Sections, section)
	}

	if acc, ok := raw["accordion"].(map[string]any); ok {
		a := &Accordion{
			Title:      str(acc["title"]),
			Highlight:  str(acc["highlight"]),
			Image:      str(acc["image"]),
			Background: str(acc["background"]),
		}
		for _, item := range objects(acc["items"]) {
			a.Items = append(a.Items, AccordionItem{Title: str(item["title"]), Description: str(item["description"])})
		}
		cfg.Accordion = a
	}

	if ben, ok := raw["benefits"].(map[string]any); ok {
		b := &Benefits{
			Title:       str(ben["title"]),
			Highlight:   str(ben["highlight"]),
			Description: str(ben["description"]),
		}
		for _, item := range objects(ben["items"]) {
			b.Items = append(b.Items, Benefit{Title: str(item["title"]), Description: str(item["description"]), Icon: str(item["icon"])})
		}
		cfg.Benefits = b
	}

	if c, ok := raw["cta"].(map[string]any); ok {
		cta := &CTA{
			Label:         str(c["label"]),
			Title:         str(c["title"]),
			Description:   str(c["description"]),
			Image:         str(c["image"]),
			PrimaryButton: button(object(c["primaryButton"])),
		}
		if sb, ok := c["secondaryButton"].(map[string]any); ok {
			b := button(sb)
			cta.SecondaryButton = &b
		}
		cfg.CTA = cta
	}

	return cfg
}

func button(m map[string]any) Button {
	return Button{Text: str(m["text"]), Link: str(m["link"])}
}

// object returns v if it is a JSON object, otherwise nil.
func object(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

// objects returns the object elements of a JSON array, skipping the rest.
func objects(v any) []map[string]any {
	list, _ := v.([]any)
	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

// stringList returns the string elements of a JSON array. A lone string is
// taken as a one-element list.
func stringList(v any) []string {
	switch t := v.(type) {
	case string:
		if t != "" {
			return []string{t}
		}
	case []any:
		var out []string
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// number reads a JSON number or a numeric string as an int, 0 otherwise.
func number(v any) int {
	switch t := v.(type) {
	case float64:
		return int(t)
	case string:
		n, err := strconv.Atoi(t)
		if err == nil {
			return n
		}
	}
	return 0
}
