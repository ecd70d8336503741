// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"encoding/json"
	"time"
)

// PageType selects the rendering template for a CMS page.
type PageType string

const (
	PageTypeHome    PageType = "home"
	PageTypeAbout   PageType = "about"
	PageTypeContact PageType = "contact"
	PageTypeTeam    PageType = "team"
	PageTypeService PageType = "service"
	PageTypeCustom  PageType = "custom"
)

// PageTypes lists every accepted page type in display order.
var PageTypes = []PageType{
	PageTypeHome, PageTypeAbout, PageTypeContact,
	PageTypeTeam, PageTypeService, PageTypeCustom,
}

// Valid reports whether t is one of the known page types.
func (t PageType) Valid() bool {
	for _, pt := range PageTypes {
		if t == pt {
			return true
		}
	}
	return false
}

// MenuPlacement controls where a page link appears in site navigation.
// A nil placement on a page means footer-only.
type MenuPlacement string

const (
	MenuMain     MenuPlacement = "main"
	MenuServices MenuPlacement = "services"
	MenuGlobal   MenuPlacement = "global"
	MenuFooter   MenuPlacement = "footer"
)

// Valid reports whether m is one of the known placements.
func (m MenuPlacement) Valid() bool {
	switch m {
	case MenuMain, MenuServices, MenuGlobal, MenuFooter:
		return true
	}
	return false
}

// PageMeta is the listing view of a page, without its content body.
type PageMeta struct {
	Slug          string         `json:"slug"`
	Title         string         `json:"title"`
	Type          PageType       `json:"type"`
	MenuPlacement *MenuPlacement `json:"menuPlacement,omitempty"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// InFooter reports whether the page link belongs in the footer. Pages
// without a header placement are listed there.
func (m *PageMeta) InFooter() bool {
	if m.MenuPlacement == nil {
		return true
	}
	switch *m.MenuPlacement {
	case MenuMain, MenuServices, MenuGlobal:
		return false
	}
	return true
}

// Page is a CMS-managed site page. Content is an open JSON object whose
// shape depends on Type; see package content for the typed views.
type Page struct {
	PageMeta
	Content json.RawMessage `json:"content"`
}

// EmptyContent is the stored form of a page with no content.
var EmptyContent = json.RawMessage(`{}`)

// PlacementPtr is a convenience for building optional placements.
func PlacementPtr(m MenuPlacement) *MenuPlacement {
	return &m
}
