// Package migrations embeds the SQL migration files so goose can apply them
// from the binary during server bootstrap and in tests.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
