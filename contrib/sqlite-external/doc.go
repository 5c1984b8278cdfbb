// Package sqliteexternal registers the CGO SQLite driver (mattn/go-sqlite3).
//
// It is linked in by core/sqlite when building with the cgo_sqlite tag:
//
//	CGO_ENABLED=1 go build -tags cgo_sqlite ./cmd/juniper-search
//
// Without the tag juniper-search uses the pure Go modernc.org/sqlite driver,
// which needs no C toolchain and cross-compiles. The CGO driver is faster
// when importing or loading large SQLite corpora.
package sqliteexternal
