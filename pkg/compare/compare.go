// Package compare aligns classical and Bayesian parameter estimates, renders
// the comparison chart, and writes the comparison report.
package compare

import (
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"

	"bayesarima/pkg/results"
)

var (
	ErrMissingTable     = errors.New("classical parameter table not found")
	ErrMalformedTable   = errors.New("malformed classical parameter table")
	ErrUnexpectedLayout = errors.New("unexpected classical parameter layout")
)

// ClassicalFit is the parameter table of a classical estimator run, in
// whatever row order it was stored.
type ClassicalFit struct {
	Names  []string
	Values []float64
}

// LoadClassicalParams reads a delimited parameter table with param_names and
// params columns, one row per parameter in the estimator's native order.
func LoadClassicalParams(path string) (*ClassicalFit, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingTable, path)
		}
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%w: %s has no data rows", ErrMalformedTable, path)
	}

	nameIdx, valueIdx := -1, -1
	for i, h := range records[0] {
		switch h {
		case "param_names":
			nameIdx = i
		case "params":
			valueIdx = i
		}
	}
	if nameIdx < 0 || valueIdx < 0 {
		return nil, fmt.Errorf("%w: %s lacks param_names/params columns", ErrMalformedTable, path)
	}

	fit := &ClassicalFit{}
	for rowNum, record := range records[1:] {
		if nameIdx >= len(record) || valueIdx >= len(record) {
			return nil, fmt.Errorf("%w: short row %d in %s", ErrMalformedTable, rowNum+2, path)
		}
		v, err := strconv.ParseFloat(record[valueIdx], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d of %s: %v", ErrMalformedTable, rowNum+2, path, err)
		}
		fit.Names = append(fit.Names, record[nameIdx])
		fit.Values = append(fit.Values, v)
	}
	return fit, nil
}

// ReorderRows permutes a classical table from its native layout
// [intercept, coefficients..., variance] into the Bayesian summary layout
// [intercept, variance, coefficients...]: the first row stays first, the last
// row moves to second, and all remaining rows shift down one, keeping their
// relative order.
func ReorderRows(fit *ClassicalFit) *ClassicalFit {
	n := len(fit.Names)
	out := &ClassicalFit{
		Names:  make([]string, 0, n),
		Values: make([]float64, 0, n),
	}
	if n < 2 {
		out.Names = append(out.Names, fit.Names...)
		out.Values = append(out.Values, fit.Values...)
		return out
	}

	out.Names = append(out.Names, fit.Names[0], fit.Names[n-1])
	out.Values = append(out.Values, fit.Values[0], fit.Values[n-1])
	out.Names = append(out.Names, fit.Names[1:n-1]...)
	out.Values = append(out.Values, fit.Values[1:n-1]...)
	return out
}

// VarianceToScale converts the variance row (second row after reordering)
// into a standard deviation, matching the scale convention of the Bayesian
// summaries. The row label is validated first: the two estimators' orderings
// are only implicitly coupled, so a layout change must fail loudly here
// rather than silently misalign the comparison.
func (f *ClassicalFit) VarianceToScale() error {
	if len(f.Names) < 2 {
		return fmt.Errorf("%w: need at least 2 rows, have %d", ErrUnexpectedLayout, len(f.Names))
	}
	if f.Names[1] != "sigma2" {
		return fmt.Errorf("%w: expected sigma2 in second row, found %q", ErrUnexpectedLayout, f.Names[1])
	}
	if f.Values[1] < 0 {
		return fmt.Errorf("%w: negative variance %v", ErrUnexpectedLayout, f.Values[1])
	}
	f.Values[1] = math.Sqrt(f.Values[1])
	return nil
}

// BayesianColumn is one Bayesian fit's contribution to the comparison:
// a display label and its summary table.
type BayesianColumn struct {
	Label string
	Table *results.Table
}

// BuildTable assembles the comparison table: one column for the classical
// estimates plus one per Bayesian fit, aligned by row position. Row labels
// follow the first Bayesian summary's order, truncated to the classical
// parameter count.
func BuildTable(classical *ClassicalFit, classicalLabel string, bayesian []BayesianColumn) (*results.Table, error) {
	if len(bayesian) == 0 {
		return nil, errors.New("no bayesian fits to compare")
	}

	n := len(classical.Values)
	for _, col := range bayesian {
		if col.Table.Rows() < n {
			return nil, fmt.Errorf("%w: %s summary has %d rows, classical table has %d",
				ErrUnexpectedLayout, col.Label, col.Table.Rows(), n)
		}
	}

	labels := bayesian[0].Table.RowLabels()[:n]
	columns := make([]string, 0, len(bayesian)+1)
	columns = append(columns, classicalLabel)
	for _, col := range bayesian {
		columns = append(columns, col.Label)
	}

	table := results.NewTable(labels, columns)
	for i := 0; i < n; i++ {
		table.Set(i, 0, classical.Values[i])
		for j, col := range bayesian {
			meanIdx, err := col.Table.ColumnIndex("mean")
			if err != nil {
				return nil, err
			}
			table.Set(i, j+1, col.Table.At(i, meanIdx))
		}
	}
	return table, nil
}
