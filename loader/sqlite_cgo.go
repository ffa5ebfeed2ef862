//go:build cgo_sqlite

package loader

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

// OpenSQLite opens the SQLite database at dsn with the cgo driver.
func OpenSQLite(dsn string) (*sql.DB, error) {
	return sql.Open("sqlite3", dsn)
}
