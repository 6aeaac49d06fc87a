// Package migrations embeds the Postgres schema migrations applied by cmd/migrate.
//
// Files are named NNN_description.sql and applied in lexical order.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
