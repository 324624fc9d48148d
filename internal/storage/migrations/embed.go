// Package migrations embeds the SQL schema migration files so the binary
// can apply them at startup regardless of working directory (SPEC_FULL.md
// §10.4).
package migrations

import "embed"

// FS is the embedded migrations filesystem. storage.RunMigrations applies
// every *.sql file here in lexical order, so file names are prefixed with a
// zero-padded sequence number.
//
//go:embed *.sql
var FS embed.FS
