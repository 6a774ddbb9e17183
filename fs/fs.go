// Package appfs embeds static assets shipped with the binaries, currently
// just the database migrations.
package appfs

import (
	"embed"
)

//go:embed migrations/*.sql
var FS embed.FS
