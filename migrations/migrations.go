// Package migrations embeds the SQL schema shared by the PostgreSQL and
// SQLite backends.
package migrations

import "embed"

// FS holds the migration files at its root.
//
//go:embed *.sql
var FS embed.FS
