//go:build cgo_sqlite

package sqliteexternal

import (
	_ "github.com/mattn/go-sqlite3" // registers "sqlite3"
)

// Driver details reported by core/sqlite.Current in cgo_sqlite builds.
const (
	DriverName    = "sqlite3"
	DriverType    = "cgo"
	DriverPackage = "github.com/mattn/go-sqlite3"
)
