package results

import (
	"fmt"
	"os"
)

// EnsureDir guarantees that path exists as a directory, creating parents as
// needed. Calling it on an existing directory is a no-op.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("creating output directory %s: %w", path, err)
	}
	return nil
}
