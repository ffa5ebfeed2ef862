package loader

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ardnew/tempita/lang"
)

const (
	schemaSQL = `CREATE TABLE IF NOT EXISTS templates (
	name   TEXT PRIMARY KEY,
	source TEXT NOT NULL
)`
	selectSQL = `SELECT source FROM templates WHERE name = ?`
	upsertSQL = `INSERT INTO templates (name, source) VALUES (?, ?)
ON CONFLICT (name) DO UPDATE SET source = excluded.source`
	deleteSQL = `DELETE FROM templates WHERE name = ?`
	namesSQL  = `SELECT name FROM templates ORDER BY name`
)

// SQL loads templates from the templates table of a database:
//
//	CREATE TABLE templates (
//		name   TEXT PRIMARY KEY,
//		source TEXT NOT NULL
//	)
//
// The statements use "?" placeholders and SQLite upsert syntax.
type SQL struct {
	db   *sql.DB
	opts []lang.Option
}

// NewSQL returns an [SQL] loader reading from db. The caller owns db.
func NewSQL(db *sql.DB, opts ...lang.Option) *SQL {
	return &SQL{db: db, opts: opts}
}

// Migrate creates the templates table if it does not exist.
func (s *SQL) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create templates table: %w", err)
	}

	return nil
}

// Put stores source under name, replacing any existing template.
func (s *SQL) Put(ctx context.Context, name, source string) error {
	if _, err := s.db.ExecContext(ctx, upsertSQL, name, source); err != nil {
		return fmt.Errorf("store template %s: %w", name, err)
	}

	return nil
}

// Get returns the source stored under name.
func (s *SQL) Get(ctx context.Context, name string) (string, error) {
	var source string

	err := s.db.QueryRowContext(ctx, selectSQL, name).Scan(&source)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	case err != nil:
		return "", fmt.Errorf("read template %s: %w", name, err)
	}

	return source, nil
}

// Delete removes the template stored under name. Deleting a missing
// template is not an error.
func (s *SQL) Delete(ctx context.Context, name string) error {
	if _, err := s.db.ExecContext(ctx, deleteSQL, name); err != nil {
		return fmt.Errorf("delete template %s: %w", name, err)
	}

	return nil
}

// Names returns the names of all stored templates in order.
func (s *SQL) Names(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, namesSQL)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var names []string

	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("list templates: %w", err)
		}

		names = append(names, n)
	}

	return names, rows.Err()
}

// Load implements [lang.Loader].
func (s *SQL) Load(
	ctx context.Context,
	target any,
	_ *lang.Template,
) (*lang.Template, error) {
	n, err := name(target)
	if err != nil {
		return nil, err
	}

	source, err := s.Get(ctx, n)
	if err != nil {
		return nil, err
	}

	return compile(source, n, s, s.opts)
}

// Template returns the named template.
func (s *SQL) Template(ctx context.Context, name string) (*lang.Template, error) {
	return s.Load(ctx, name, nil)
}
