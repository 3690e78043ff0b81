// Package migrations embeds the schema migrations for the todos collection.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
