// Package migrations embeds the schema migration files shipped with the
// binary. Each file is named NNNN_description.sql with an up section and,
// where the change is reversible, a down section.
package migrations

import (
	"embed"
	"io/fs"
)

//go:embed *.sql
var files embed.FS

// Files returns the embedded migration files.
func Files() fs.FS {
	return files
}
