package models

import (
	"sort"
	"strings"
)

// NavLink is one entry of the site navigation.
type NavLink struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
	Href  string `json:"href"`
}

// Navigation groups page links by menu placement.
type Navigation struct {
	Main     []NavLink `json:"main"`
	Services []NavLink `json:"services"`
	Global   []NavLink `json:"global"`
	Footer   []NavLink `json:"footer"`
}

// HomeSlug is the slug served at the site root.
const HomeSlug = "home"

// BuildNavigation groups pages into menus, each sorted by title. Pages
// without a header placement go to the footer; the home page is reachable
// from the logo and is left out of the footer.
func BuildNavigation(pages []PageMeta) Navigation {
	nav := Navigation{
		Main:     []NavLink{},
		Services: []NavLink{},
		Global:   []NavLink{},
		Footer:   []NavLink{},
	}

	for i := range pages {
		p := &pages[i]
		link := NavLink{Slug: p.Slug, Title: p.Title, Href: PagePath(p.Slug)}
		switch {
		case p.InFooter():
			if p.Slug != HomeSlug {
				nav.Footer = append(nav.Footer, link)
			}
		case *p.MenuPlacement == MenuMain:
			nav.Main = append(nav.Main, link)
		case *p.MenuPlacement == MenuServices:
			nav.Services = append(nav.Services, link)
		case *p.MenuPlacement == MenuGlobal:
			nav.Global = append(nav.Global, link)
		}
	}

	for _, links := range [][]NavLink{nav.Main, nav.Services, nav.Global, nav.Footer} {
		sort.SliceStable(links, func(i, j int) bool {
			return strings.ToLower(links[i].Title) < strings.ToLower(links[j].Title)
		})
	}
	return nav
}

// PagePath returns the public URL path of a page.
func PagePath(slug string) string {
	if slug == HomeSlug {
		return "/"
	}
	return "/" + slug
}
