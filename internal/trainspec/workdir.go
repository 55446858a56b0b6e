package trainspec

import (
	"fmt"
	"path/filepath"
)

// ResolveWorkDir returns the directory the trainer must run in: the
// directory containing the training script. The legacy launch scripts
// lived one level below it and did a `cd ..` before invoking the trainer;
// resolving from the script itself lands in the same place. The result is
// absolute, so it is stable regardless of the directory the launcher was
// invoked from, and relative trainer paths such as output_dir keep their
// original meaning.
func ResolveWorkDir(scriptPath string) (string, error) {
	abs, err := filepath.Abs(scriptPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve script path %q: %w", scriptPath, err)
	}
	return filepath.Dir(abs), nil
}
