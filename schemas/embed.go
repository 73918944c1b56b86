// Package schemas provides the embedded SQL migrations for the source
// registry database.
package schemas

import "embed"

// Migrations contains all SQL migration files, applied in lexical order.
//
//go:embed migrations/*.sql
var Migrations embed.FS
