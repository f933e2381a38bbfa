// Package migrations embeds the schema of the remote database.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
