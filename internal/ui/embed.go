// Package ui embeds the single-page frontend served at the web root.
package ui

import "embed"

//go:embed dist
var DistFS embed.FS
