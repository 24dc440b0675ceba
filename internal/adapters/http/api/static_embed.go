package api

import "embed"

//go:embed static/*
var apiStaticFS embed.FS
