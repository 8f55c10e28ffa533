package compare

import (
	"fmt"
	"math"
	"os"

	"bayesarima/pkg/results"
)

// WriteMarkdownReport writes the comparison report: a heading, the embedded
// chart at fixed width, and the caller's one-sentence conclusion.
func WriteMarkdownReport(path, title, imageName, conclusion string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	_, err = fmt.Fprintf(f, "## %s\n\n![comparison](%s){width=%d}\n\n%s\n",
		title, imageName, chartWidthPx, conclusion)
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// Conclusion compares each Bayesian column of the table against the first
// column (the classical estimates) by mean absolute difference and returns a
// one-sentence verdict naming the closer fit.
func Conclusion(table *results.Table) (string, error) {
	if table.Cols() < 3 {
		return "", fmt.Errorf("%w: need classical plus at least 2 bayesian columns, have %d",
			ErrUnexpectedLayout, table.Cols())
	}

	best, bestDist := 1, math.Inf(1)
	for j := 1; j < table.Cols(); j++ {
		var dist float64
		for i := 0; i < table.Rows(); i++ {
			dist += math.Abs(table.At(i, j) - table.At(i, 0))
		}
		dist /= float64(table.Rows())
		if dist < bestDist {
			best, bestDist = j, dist
		}
	}

	return fmt.Sprintf(
		"The %s fit tracks the classical %s estimates most closely, with a mean absolute difference of %.4f across the compared parameters.",
		table.Column(best), table.Column(0), bestDist), nil
}
