// Package migrations embeds SQL migration files for the store.
//
// Each driver has its own directory. SQLite keeps amounts in TEXT columns
// because NUMERIC affinity would convert decimal strings to REAL.
package migrations

import "embed"

// FS contains all SQL migration files embedded at compile time.
//
//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS
