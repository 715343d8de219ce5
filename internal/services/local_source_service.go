package services

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	filepathx "github.com/yargevad/filepathx"

	"github.com/wonder-codes/echo-repo/internal/apperr"
	"github.com/wonder-codes/echo-repo/internal/utils"
)

const localSourceFileLimit = 100

// CollectLocalSources assembles inline code from files under root, in the
// same "--- File: <path> ---" format the repository fetchers produce.
// Patterns are relative to root and may use ** to match any depth. With no
// patterns, the top-level files with a recognized extension are used.
// Matches outside root and directories are skipped; paths are sorted.
func CollectLocalSources(root string, patterns, extensions []string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", errors.Wrap(err, "resolve source root")
	}
	if !utils.DirectoryExists(absRoot) {
		return "", apperr.New(apperr.ErrInvalidInput, "source root is not a directory: "+root)
	}
	if len(extensions) == 0 {
		extensions = DefaultSourceExtensions
	}

	if len(patterns) == 0 {
		for _, ext := range extensions {
			patterns = append(patterns, "*"+ext)
		}
	}

	seen := map[string]bool{}
	var files []string
	for _, pattern := range patterns {
		absPattern := pattern
		if !filepath.IsAbs(pattern) {
			absPattern = filepath.Join(absRoot, pattern)
		}
		matches, err := filepathx.Glob(absPattern)
		if err != nil {
			return "", apperr.Wrap(apperr.ErrInvalidInput, errors.Wrapf(err, "invalid pattern %q", pattern))
		}
		for _, m := range matches {
			if seen[m] || !utils.IsWithin(absRoot, m) {
				continue
			}
			st, err := os.Stat(m)
			if err != nil || st.IsDir() {
				continue
			}
			seen[m] = true
			files = append(files, m)
		}
	}
	if len(files) > localSourceFileLimit {
		return "", apperr.New(apperr.ErrInvalidInput, "too many matching files; narrow the include patterns")
	}
	sort.Strings(files)

	var b strings.Builder
	for _, f := range files {
		content, err := os.ReadFile(f)
		if err != nil {
			return "", errors.Wrapf(err, "read %s", f)
		}
		rel, err := filepath.Rel(absRoot, f)
		if err != nil {
			rel = f
		}
		writeSourceFile(&b, filepath.ToSlash(rel), string(content))
	}
	if b.Len() == 0 {
		return "", apperr.New(apperr.ErrInvalidInput, "no files matched under "+root)
	}
	return b.String(), nil
}
