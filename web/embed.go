// Package web holds the server-rendered templates and static assets that are
// compiled into the binary for release builds.
package web

import "embed"

// EmbeddedFS contains the templates/ and static/ directories.
//
//go:embed templates static
var EmbeddedFS embed.FS
