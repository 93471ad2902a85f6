// Package migrations embeds the goose migrations of the local SQLite mirror.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
