package utils

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// ReadIncludePatterns reads an --include-file: one glob per line, relative to
// the scanned root. Blank lines and # comments (whole-line, or after
// whitespace) are skipped. Backslashes become slashes, a leading "./" is
// dropped and repeats are removed. A malformed glob fails with its line
// number.
func ReadIncludePatterns(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var patterns []string
	seen := map[string]bool{}
	s := bufio.NewScanner(f)
	for n := 1; s.Scan(); n++ {
		line := s.Text()
		if n == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		if i := strings.Index(line, " #"); i >= 0 {
			line = line[:i]
		}
		if i := strings.Index(line, "\t#"); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		line = strings.TrimPrefix(strings.ReplaceAll(line, `\`, "/"), "./")
		if _, err := filepath.Match(line, ""); err != nil {
			return nil, errors.Wrapf(err, "line %d: %q", n, line)
		}
		if seen[line] {
			continue
		}
		seen[line] = true
		patterns = append(patterns, line)
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return patterns, nil
}
