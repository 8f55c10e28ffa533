// Package duckdb loads observation columns from CSV datasets through an
// embedded DuckDB connection.
package duckdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	_ "github.com/marcboeker/go-duckdb"

	"bayesarima/pkg/timeseries"
)

var (
	ErrColumnNotFound = errors.New("column not found in dataset")
	ErrNoRows         = errors.New("dataset has no rows")
)

type Reader struct {
	db *sql.DB
}

func NewReader() *Reader {
	return &Reader{}
}

// Connect opens an in-memory DuckDB instance. Datasets are read per query
// through read_csv_auto, so there is no persistent database file.
func (r *Reader) Connect() error {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return fmt.Errorf("sql.Open: %w", err)
	}
	r.db = db
	return nil
}

func (r *Reader) Close() {
	if r.db != nil {
		_ = r.db.Close()
	}
}

// LoadColumn reads the named numeric column of the CSV file at path and
// returns it as a series, one value per input row, in file order.
func (r *Reader) LoadColumn(ctx context.Context, path, column string) (*timeseries.Series, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("dataset %s: %w", path, err)
	}

	query := fmt.Sprintf(`SELECT %s FROM read_csv_auto('%s')`, quoteIdent(column), escapePath(path))

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		if strings.Contains(err.Error(), "not found in FROM clause") ||
			strings.Contains(err.Error(), "Referenced column") {
			return nil, fmt.Errorf("%w: %q in %s", ErrColumnNotFound, column, path)
		}
		return nil, fmt.Errorf("error querying dataset: %w", err)
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	var values []float64
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error scanning rows: %w", err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoRows, path)
	}

	return timeseries.New(values), nil
}

func quoteIdent(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func escapePath(path string) string {
	return strings.ReplaceAll(path, `'`, `''`)
}
