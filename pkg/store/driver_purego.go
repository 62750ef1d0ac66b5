//go:build !sqlite_cgo

package store

import (
	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// sqliteDriverName selects the registered database/sql driver.
// The default build uses the CGO-free modernc driver; build with
// -tags sqlite_cgo to link against mattn/go-sqlite3 instead.
const sqliteDriverName = "sqlite"
