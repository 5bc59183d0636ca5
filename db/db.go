// Package db carries the SQL migrations, compiled into the binary so a
// deployment needs no migration files on disk.
package db

import (
	"embed"
	"io/fs"
)

//go:embed migrations/*.up.sql
var embedded embed.FS

// Migrations returns the migration files rooted at the directory holding them.
func Migrations() fs.FS {
	sub, err := fs.Sub(embedded, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}
