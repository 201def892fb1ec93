package templates

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
)

// WritePage atomically writes content to relativePath under rootDir and
// returns the full path.
//
// The function ensures:
//   - The output path is relative to rootDir (no path traversal)
//   - Parent directories are created if needed
//   - An existing file is replaced only once the new content is fully written
//   - Pages are world readable (0o644)
func WritePage(rootDir, relativePath, content string) (string, error) {
	if rootDir == "" {
		return "", errors.New("output directory is required")
	}
	if relativePath == "" {
		return "", errors.New("output path is required")
	}

	cleanRel := filepath.Clean(relativePath)
	if filepath.IsAbs(cleanRel) || cleanRel == ".." || strings.HasPrefix(cleanRel, ".."+string(filepath.Separator)) {
		return "", errors.New("output path must be relative to output directory")
	}

	fullPath := filepath.Join(rootDir, cleanRel)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o750); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	if err := atomic.WriteFile(fullPath, strings.NewReader(content)); err != nil {
		return "", fmt.Errorf("write output file: %w", err)
	}
	if err := os.Chmod(fullPath, 0o644); err != nil { //nolint:gosec // public HTML output, non-sensitive
		return "", fmt.Errorf("set output file mode: %w", err)
	}
	return fullPath, nil
}
