// Package results holds the fit-output plumbing: the parameter table type,
// output directory handling, and the Bayesian model runner.
package results

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
)

var (
	ErrLabelNotFound = errors.New("row label not found")
	ErrShapeMismatch = errors.New("table shape mismatch")
)

// Table is a parameter-keyed table: ordered row labels by ordered column
// names. Built once per fit, written once, not mutated afterwards.
type Table struct {
	rowLabels []string
	columns   []string
	cells     [][]float64
}

func NewTable(rowLabels, columns []string) *Table {
	cells := make([][]float64, len(rowLabels))
	for i := range cells {
		cells[i] = make([]float64, len(columns))
	}
	return &Table{
		rowLabels: append([]string(nil), rowLabels...),
		columns:   append([]string(nil), columns...),
		cells:     cells,
	}
}

func (t *Table) Rows() int             { return len(t.rowLabels) }
func (t *Table) Cols() int             { return len(t.columns) }
func (t *Table) RowLabel(i int) string { return t.rowLabels[i] }
func (t *Table) Column(j int) string   { return t.columns[j] }

func (t *Table) RowLabels() []string {
	return append([]string(nil), t.rowLabels...)
}

func (t *Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

func (t *Table) Set(i, j int, v float64) {
	t.cells[i][j] = v
}

func (t *Table) At(i, j int) float64 {
	return t.cells[i][j]
}

// ColumnIndex returns the index of the named column, or ErrLabelNotFound.
func (t *Table) ColumnIndex(name string) (int, error) {
	for j, c := range t.columns {
		if c == name {
			return j, nil
		}
	}
	return 0, fmt.Errorf("%w: column %q", ErrLabelNotFound, name)
}

// Lookup returns the cell in the named row and column.
func (t *Table) Lookup(rowLabel, column string) (float64, error) {
	j, err := t.ColumnIndex(column)
	if err != nil {
		return 0, err
	}
	for i, r := range t.rowLabels {
		if r == rowLabel {
			return t.cells[i][j], nil
		}
	}
	return 0, fmt.Errorf("%w: row %q", ErrLabelNotFound, rowLabel)
}

// WriteCSV serializes the table with row labels as the first column under the
// given label header.
func (t *Table) WriteCSV(path, labelHeader string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	w := csv.NewWriter(f)

	header := append([]string{labelHeader}, t.columns...)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	record := make([]string, len(t.columns)+1)
	for i, label := range t.rowLabels {
		record[0] = label
		for j := range t.columns {
			record[j+1] = strconv.FormatFloat(t.cells[i][j], 'g', -1, 64)
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("writing row %s: %w", label, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing %s: %w", path, err)
	}
	return f.Close()
}
