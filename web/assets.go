// Package web holds the embedded single-page UI.
package web

import "embed"

//go:embed dist
var Assets embed.FS
