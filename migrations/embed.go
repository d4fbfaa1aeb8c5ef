// Package migrations embeds the SQL schema so binaries and tests can apply
// it without locating the directory on disk.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
