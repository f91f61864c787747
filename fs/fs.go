// Package appfs embeds the files the binaries need at runtime: SQL migrations, email
// templates and the common passwords list.
package appfs

import "embed"

//go:embed migrations/*.sql all:templates common-passwords.txt.gz
var FS embed.FS
