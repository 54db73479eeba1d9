// Package store reads and updates text columns of SQL tables, so stored fields
// can be normalized in place.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // postgres driver
	_ "modernc.org/sqlite"             // sqlite driver
)

// Dialect tells how query parameters are written.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

var ErrInvalidIdentifier = errors.New("invalid identifier")

// table and column names are put into queries as is, so they are restricted to
// plain (optionally schema qualified) identifiers
var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// Table points to a text column of a table.
type Table struct {
	Name   string
	Key    string
	Column string
}

func (t Table) Validate() error {
	for _, name := range []string{t.Name, t.Key, t.Column} {
		if !identifier.MatchString(name) {
			return fmt.Errorf("%w: %q", ErrInvalidIdentifier, name)
		}
	}

	return nil
}

// Record is a row of the table, NULL values are skipped when reading.
type Record struct {
	Key  any
	Text string
}

type Store struct {
	db      *sql.DB
	dialect Dialect
}

// New wraps an open database.
func New(db *sql.DB, dialect Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

// Open connects to a database. DSNs starting with postgres:// or postgresql://
// use the pgx driver, anything else is a sqlite file (an optional sqlite: prefix
// is removed).
func Open(ctx context.Context, dsn string) (*Store, error) {
	driver, dialect, source := parseDSN(dsn)
	if source == "" {
		return nil, errors.New("database DSN is required")
	}

	db, err := sql.Open(driver, source)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dialect, err)
	}

	// sqlite allows a single writer
	if dialect == SQLite {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", dialect, err)
	}

	return New(db, dialect), nil
}

func parseDSN(dsn string) (driver string, dialect Dialect, source string) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return "pgx", Postgres, dsn
	}

	source = strings.TrimPrefix(dsn, "sqlite://")
	source = strings.TrimPrefix(source, "sqlite:")

	return "sqlite", SQLite, source
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}

	return nil
}

func (s *Store) placeholder(n int) string {
	if s.dialect == Postgres {
		return fmt.Sprintf("$%d", n)
	}

	return "?"
}

// Records reads all non-NULL values of the column.
func (s *Store) Records(ctx context.Context, t Table) ([]Record, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT %s, %s FROM %s WHERE %s IS NOT NULL ORDER BY %s", t.Key, t.Column, t.Name, t.Column, t.Key)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", t.Name, err)
	}
	defer func() { _ = rows.Close() }()

	var records []Record
	for rows.Next() {
		var key any
		var text sql.NullString

		if err := rows.Scan(&key, &text); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", t.Name, err)
		}

		if !text.Valid {
			continue
		}

		records = append(records, Record{Key: key, Text: text.String})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", t.Name, err)
	}

	return records, nil
}

// Update replaces the column value of a single row.
func (s *Store) Update(ctx context.Context, t Table, key any, text string) error {
	if err := t.Validate(); err != nil {
		return err
	}

	query := fmt.Sprintf("UPDATE %s SET %s = %s WHERE %s = %s", t.Name, t.Column, s.placeholder(1), t.Key, s.placeholder(2))

	res, err := s.db.ExecContext(ctx, query, text, key)
	if err != nil {
		return fmt.Errorf("failed to update %s %v: %w", t.Name, key, err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("failed to update %s %v: row not found", t.Name, key)
	}

	return nil
}
