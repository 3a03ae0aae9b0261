// Package store persists finalized tables into a SQLite database file, one
// table per worksheet. Each run fully replaces the tables it writes, so
// re-converting a workbook is idempotent.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"tallycli/internal/dataprocessing"
)

// Store is a SQLite-backed table writer.
type Store struct {
	db   *sql.DB
	path string
}

// OutputPath derives the database path from an input spreadsheet path by
// swapping the extension for ".db".
func OutputPath(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".db"
}

// Open opens (creating if needed) the SQLite database at path. SQLite wants
// a single writer, so the pool is pinned to one connection.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	return &Store{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Replace drops and recreates the named table and bulk-inserts the rows in
// one transaction. Column affinity follows the cell values: a column whose
// non-null cells are all float64 becomes REAL, everything else TEXT.
func (s *Store) Replace(ctx context.Context, name string, tbl dataprocessing.Table) error {
	if len(tbl.Columns) == 0 {
		// SQLite cannot create a table without columns.
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteIdent(name))); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", name, err)
	}
	if _, err := tx.ExecContext(ctx, createTableSQL(name, tbl)); err != nil {
		return fmt.Errorf("failed to create table %s: %w", name, err)
	}

	stmt, err := tx.PrepareContext(ctx, insertSQL(name, tbl.Columns))
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range tbl.Rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit table %s: %w", name, err)
	}
	return nil
}

func createTableSQL(name string, tbl dataprocessing.Table) string {
	defs := make([]string, len(tbl.Columns))
	for i, col := range tbl.Columns {
		defs[i] = fmt.Sprintf("%s %s", quoteIdent(col), columnAffinity(tbl.Rows, i))
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(name), strings.Join(defs, ", "))
}

func insertSQL(name string, columns dataprocessing.Schema) string {
	quoted := make([]string, len(columns))
	marks := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = quoteIdent(col)
		marks[i] = "?"
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(name), strings.Join(quoted, ", "), strings.Join(marks, ", "))
}

// columnAffinity picks REAL only when every non-null cell of the column is a
// float64. A column of nulls stays TEXT.
func columnAffinity(rows [][]any, col int) string {
	sawFloat := false
	for _, row := range rows {
		switch row[col].(type) {
		case nil:
		case float64:
			sawFloat = true
		default:
			return "TEXT"
		}
	}
	if sawFloat {
		return "REAL"
	}
	return "TEXT"
}

// quoteIdent quotes a table or column identifier. Worksheet names and
// synthesized headers carry spaces, brackets and the odd quote.
func quoteIdent(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}
