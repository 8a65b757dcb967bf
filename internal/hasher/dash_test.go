package hasher

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func TestWalkAndDiffIdentical(t *testing.T) {
	a, b := t.TempDir(), t.TempDir()
	writeTree(t, a, map[string]string{"foo/bar.txt": "hello", "baz.txt": "world"})
	writeTree(t, b, map[string]string{"foo/bar.txt": "hello", "baz.txt": "world"})

	opt, err := NewOptions(true, false, false, nil)
	require.NoError(t, err)
	sa, err := Walk(a, opt)
	require.NoError(t, err)
	sb, err := Walk(b, opt)
	require.NoError(t, err)

	diff := Diff(sa, sb)
	assert.False(t, diff.IsInteresting())
}

func TestWalkAndDiffContentMismatch(t *testing.T) {
	a, b := t.TempDir(), t.TempDir()
	writeTree(t, a, map[string]string{"foo.txt": "hello"})
	writeTree(t, b, map[string]string{"foo.txt": "goodbye"})

	opt, err := NewOptions(true, false, false, nil)
	require.NoError(t, err)
	sa, _ := Walk(a, opt)
	sb, _ := Walk(b, opt)

	diff := Diff(sa, sb)
	require.True(t, diff.IsInteresting())
	assert.Contains(t, diff.Entries[0].Attr, "content")
}

func TestWalkAndDiffMissingFile(t *testing.T) {
	a, b := t.TempDir(), t.TempDir()
	writeTree(t, a, map[string]string{"only-here.txt": "x"})

	opt, err := NewOptions(false, false, false, nil)
	require.NoError(t, err)
	sa, _ := Walk(a, opt)
	sb, _ := Walk(b, opt)

	diff := Diff(sa, sb)
	require.Len(t, diff.Entries, 1)
	assert.Equal(t, SideFirstOnly, diff.Entries[0].Side)
}

func TestWalkExcludesPattern(t *testing.T) {
	a, b := t.TempDir(), t.TempDir()
	writeTree(t, a, map[string]string{"keep.txt": "x", "skip.log": "y"})
	writeTree(t, b, map[string]string{"keep.txt": "x"})

	opt, err := NewOptions(false, false, false, []string{`\.log$`})
	require.NoError(t, err)
	sa, _ := Walk(a, opt)
	sb, _ := Walk(b, opt)

	assert.False(t, Diff(sa, sb).IsInteresting())
}
