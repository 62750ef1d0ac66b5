//go:build sqlite_cgo

package store

import (
	_ "github.com/mattn/go-sqlite3" // CGO SQLite driver
)

// sqliteDriverName selects the registered database/sql driver.
const sqliteDriverName = "sqlite3"
