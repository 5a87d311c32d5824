package fsutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		path := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("{}"), 0o600))
	}
}

func rel(t *testing.T, root string, files []string) []string {
	t.Helper()
	out := make([]string, 0, len(files))
	for _, f := range files {
		r, err := filepath.Rel(root, f)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(r))
	}
	return out
}

func TestFindDefinitionFiles(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root,
		"pages/customer.yaml",
		"pages/index.yaml",
		"leaves/fields.hcl",
		"leaves/draft/wip.hcl",
		"README.md",
		"z.JSON",
	)
	exts := []string{".hcl", ".yaml", ".json"}

	t.Run("all supported files, sorted, index skipped", func(t *testing.T) {
		files, warnings, err := FindDefinitionFiles(root, FindOptions{Extensions: exts})
		require.NoError(t, err)
		assert.Empty(t, warnings)
		assert.Equal(t, []string{"leaves/draft/wip.hcl", "leaves/fields.hcl", "pages/customer.yaml", "z.JSON"}, rel(t, root, files))
	})

	t.Run("exclude prunes directories", func(t *testing.T) {
		files, _, err := FindDefinitionFiles(root, FindOptions{Extensions: exts, Exclude: []string{"**/draft"}})
		require.NoError(t, err)
		assert.Equal(t, []string{"leaves/fields.hcl", "pages/customer.yaml", "z.JSON"}, rel(t, root, files))
	})

	t.Run("include narrows files", func(t *testing.T) {
		files, _, err := FindDefinitionFiles(root, FindOptions{Extensions: exts, Include: []string{"pages/**"}})
		require.NoError(t, err)
		assert.Equal(t, []string{"pages/customer.yaml"}, rel(t, root, files))
	})

	t.Run("bad pattern", func(t *testing.T) {
		_, _, err := FindDefinitionFiles(root, FindOptions{Extensions: exts, Include: []string{"[a-"}})
		assert.ErrorContains(t, err, "invalid glob pattern")
	})

	t.Run("missing root", func(t *testing.T) {
		_, _, err := FindDefinitionFiles(filepath.Join(root, "nope"), FindOptions{Extensions: exts})
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestFindDefinitionFiles_UnreadableDirectory(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("directory permissions are not enforced here")
	}
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, "ok/a.json", "locked/b.json")
	locked := filepath.Join(root, "locked")
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	files, warnings, err := FindDefinitionFiles(root, FindOptions{Extensions: []string{".json"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"ok/a.json"}, rel(t, root, files))
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "locked")
}
