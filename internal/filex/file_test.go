package filex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnsureParentDir_CreatesNestedDirectories(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "state", "cache", "todolite.db")

	require.NoError(t, EnsureParentDir(path))

	fi, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	require.True(t, fi.IsDir())
}

func TestEnsureParentDir_BareFilenameIsNoop(t *testing.T) {
	require.NoError(t, EnsureParentDir("todolite.db"))
}

func TestEnsureParentDir_ExistingDirectoryIsFine(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "todolite.db")

	require.NoError(t, EnsureParentDir(path))
	require.NoError(t, EnsureParentDir(path))
}
