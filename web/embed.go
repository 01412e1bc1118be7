// Package web embeds the page templates and the static assets served under
// /static.
package web

import "embed"

//go:embed templates/*.html
var TemplatesFS embed.FS

//go:embed all:static
var StaticFS embed.FS
