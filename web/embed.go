// Package web holds the dashboard templates and browser assets.
package web

import "embed"

// TemplatesFS holds the page shell and one template per tab partial.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS holds app.js and app.css.
//
//go:embed static/*
var StaticFS embed.FS
