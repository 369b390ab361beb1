// Package migrations embeds the goose SQL migrations of the server schema.
// The statements stay within the subset shared by SQLite and PostgreSQL.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
