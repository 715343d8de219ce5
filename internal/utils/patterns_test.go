package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePatterns(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "include.txt")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestReadIncludePatterns(t *testing.T) {
	path := writePatterns(t, "\ufeff# sources\r\n*.go\n\n  cmd/**/*.go  # commands\n#skip\n.\\internal\\*.go\t# windows\n*.go\n./docs/*.md\n")

	patterns, err := ReadIncludePatterns(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"*.go", "cmd/**/*.go", "internal/*.go", "docs/*.md"}, patterns)
}

func TestReadIncludePatterns_BOMBeforeFirstPattern(t *testing.T) {
	patterns, err := ReadIncludePatterns(writePatterns(t, "\ufeff**/*.py\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"**/*.py"}, patterns)
}

func TestReadIncludePatterns_BadGlobReportsLine(t *testing.T) {
	_, err := ReadIncludePatterns(writePatterns(t, "*.go\nsrc/[abc.go\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, filepath.ErrBadPattern)
	assert.Contains(t, err.Error(), "line 2")
}

func TestReadIncludePatterns_Missing(t *testing.T) {
	_, err := ReadIncludePatterns(filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
