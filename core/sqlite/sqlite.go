// Package sqlite opens SQLite corpora through the driver chosen at build
// time: modernc.org/sqlite by default, or mattn/go-sqlite3 (via
// contrib/sqlite-external) with -tags cgo_sqlite and CGO_ENABLED=1.
package sqlite

import (
	"database/sql"
	"net/url"
	"strings"
)

// Driver describes the registered database/sql driver.
type Driver struct {
	Name    string `json:"name"`    // database/sql driver name
	Kind    string `json:"kind"`    // "purego" or "cgo"
	Package string `json:"package"` // import path
}

// Current returns the driver this binary was built with.
func Current() Driver { return driver }

func (d Driver) String() string { return d.Package + " (" + d.Kind + ")" }

// Open opens dsn with the build's driver. Use it instead of sql.Open so the
// driver name always matches.
func Open(dsn string) (*sql.DB, error) {
	return sql.Open(driver.Name, dsn)
}

// OpenReadOnly opens the database file at path with mode=ro. Both drivers
// accept the file: URI form.
func OpenReadOnly(path string) (*sql.DB, error) {
	return Open(readOnlyDSN(path))
}

func readOnlyDSN(path string) string {
	if !strings.HasPrefix(path, "file:") {
		path = "file:" + path
	}
	base, query, _ := strings.Cut(path, "?")
	params, err := url.ParseQuery(query)
	if err != nil || query == "" {
		return base + "?mode=ro"
	}
	params.Set("mode", "ro")
	return base + "?" + params.Encode()
}
