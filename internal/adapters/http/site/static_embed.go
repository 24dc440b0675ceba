package site

import "embed"

//go:embed static/*.html
var staticFS embed.FS
