//go:build !cgo_sqlite

package loader

import (
	"database/sql"

	_ "modernc.org/sqlite"
)

// OpenSQLite opens the SQLite database at dsn with the pure Go driver.
// Build with the cgo_sqlite tag to use the cgo driver instead.
func OpenSQLite(dsn string) (*sql.DB, error) {
	return sql.Open("sqlite", dsn)
}
