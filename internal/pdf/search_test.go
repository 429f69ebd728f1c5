package pdf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"b.pdf":            "%PDF-1.4",
		"a.PDF":            "%PDF-1.4",
		"notes.txt":        "text",
		"empty.pdf":        "",
		"sub/c.pdf":        "%PDF-1.4",
		".hidden/d.pdf":    "%PDF-1.4",
		"sub/deeper/e.pdf": "%PDF-1.4",
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	return dir
}

func TestFindPDFsInDirectoryLimited(t *testing.T) {
	dir := makeTree(t)
	s := NewSearch(1024)

	files, err := s.FindPDFsInDirectoryLimited(dir, 0)
	require.NoError(t, err)
	var names []string
	for _, f := range files {
		names = append(names, f.Name)
		assert.Equal(t, int64(8), f.Size)
	}
	assert.ElementsMatch(t, []string{"a.PDF", "b.pdf", "c.pdf", "e.pdf"}, names)

	limited, err := s.FindPDFsInDirectoryLimited(dir, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	_, err = s.FindPDFsInDirectoryLimited("", 0)
	assert.Error(t, err)
	_, err = s.FindPDFsInDirectoryLimited(filepath.Join(dir, "missing"), 0)
	assert.Error(t, err)
}

func TestExpandPaths(t *testing.T) {
	dir := makeTree(t)
	s := NewSearch(1024)
	single := filepath.Join(dir, "b.pdf")
	missing := filepath.Join(dir, "missing.pdf")

	paths, err := s.ExpandPaths([]string{single, filepath.Join(dir, "sub"), missing})
	require.NoError(t, err)
	assert.Equal(t, []string{
		single,
		filepath.Join(dir, "sub", "c.pdf"),
		filepath.Join(dir, "sub", "deeper", "e.pdf"),
		missing,
	}, paths)
}
