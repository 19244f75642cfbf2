package migrations

import "embed"

// FS contém as migrations SQLite do armazenamento local.
//
//go:embed *.sql
var FS embed.FS
