//go:build !cgo_sqlite

package sqlite

import _ "modernc.org/sqlite"

var driver = Driver{Name: "sqlite", Kind: "purego", Package: "modernc.org/sqlite"}
