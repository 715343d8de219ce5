package utils

import (
	"os"
	"path/filepath"
	"strings"
)

func DirectoryExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// IsWithin reports whether path is base or lies below it. Both are cleaned
// before comparison; neither needs to exist.
func IsWithin(base, path string) bool {
	rel, err := filepath.Rel(filepath.Clean(base), filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
