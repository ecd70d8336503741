// Package web provides the embedded static assets (CSS) for the rendered
// site. In development, templates load Tailwind from the CDN; in
// production the compiled stylesheet embedded here is served at /static/.
package web

import (
	"embed"
	"io/fs"
)

// StaticFS embeds the web/static/ directory tree. In Docker builds, this
// includes the compiled TailwindCSS output.
//
//go:embed all:static
var StaticFS embed.FS

// Static returns the static/ subtree, rooted so that file names match the
// paths served under /static/.
func Static() fs.FS {
	sub, err := fs.Sub(StaticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
