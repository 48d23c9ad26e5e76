// Package web embeds the dashboard templates and static assets.
package web

import (
	"embed"
	"io/fs"
)

// TemplatesFS holds templates/*.html.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS holds static/* (css, js).
//
//go:embed static/*
var StaticFS embed.FS

// Static returns the static assets rooted at their directory.
func Static() (fs.FS, error) {
	return fs.Sub(StaticFS, "static")
}
