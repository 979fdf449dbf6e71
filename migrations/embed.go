// Package migrations embeds the versioned SQL schema.
package migrations

import "embed"

// FS holds every goose migration file, applied in version order.
//
//go:embed *.sql
var FS embed.FS
