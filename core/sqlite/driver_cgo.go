//go:build cgo_sqlite

package sqlite

import sqliteexternal "github.com/FocuswithJustin/JuniperSearch/contrib/sqlite-external"

var driver = Driver{
	Name:    sqliteexternal.DriverName,
	Kind:    sqliteexternal.DriverType,
	Package: sqliteexternal.DriverPackage,
}
