package pathlib_test

import (
	"path/filepath"
	"testing"

	"github.com/shovelware/shovel/hamlet"
	"github.com/shovelware/shovel/pathlib"
)

func TestReclaimRemovesEmptyAncestorChain(t *testing.T) {
	must_be, wont_be := hamlet.Specifications(t)

	root := t.TempDir()
	deep := filepath.Join(root, "a", "b", "c")
	_, err := pathlib.EnsureDirectory(deep)
	must_be.Nil(err)
	seed := filepath.Join(deep, "gone.txt")

	pathlib.ReclaimEmptyDirs([]string{seed}, root)

	wont_be.True(pathlib.Exists(filepath.Join(root, "a")))
	must_be.True(pathlib.IsDir(root))
}

func TestReclaimStopsAtNonEmptyAncestor(t *testing.T) {
	must_be, wont_be := hamlet.Specifications(t)

	root := t.TempDir()
	keeper := filepath.Join(root, "a", "keep.txt")
	must_be.Nil(pathlib.WriteFile(keeper, []byte("stay"), 0o644))
	deep := filepath.Join(root, "a", "b", "c")
	_, err := pathlib.EnsureDirectory(deep)
	must_be.Nil(err)

	pathlib.ReclaimEmptyDirs([]string{filepath.Join(deep, "gone.txt")}, root)

	wont_be.True(pathlib.Exists(filepath.Join(root, "a", "b")))
	must_be.True(pathlib.IsFile(keeper))
	must_be.True(pathlib.IsDir(filepath.Join(root, "a")))
}

func TestReclaimNeverRemovesStopDirectory(t *testing.T) {
	must_be, _ := hamlet.Specifications(t)

	root := t.TempDir()
	seed := filepath.Join(root, "solo.txt")

	pathlib.ReclaimEmptyDirs([]string{seed}, root)

	must_be.True(pathlib.IsDir(root))
}

func TestReclaimToleratesSharedAncestors(t *testing.T) {
	must_be, wont_be := hamlet.Specifications(t)

	root := t.TempDir()
	_, err := pathlib.EnsureDirectory(filepath.Join(root, "x", "one"))
	must_be.Nil(err)
	_, err = pathlib.EnsureDirectory(filepath.Join(root, "x", "two"))
	must_be.Nil(err)

	seeds := []string{
		filepath.Join(root, "x", "one", "a.txt"),
		filepath.Join(root, "x", "two", "b.txt"),
	}
	pathlib.ReclaimEmptyDirs(seeds, root)

	wont_be.True(pathlib.Exists(filepath.Join(root, "x")))
	must_be.True(pathlib.IsDir(root))
}
