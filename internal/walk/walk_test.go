package walk

import (
	"errors"
	"io/fs"
	"path"
	"slices"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapTree walks a testing/fstest.MapFS with string paths.
func mapTree(fsys fstest.MapFS) Tree[string] {
	return Tree[string]{
		ReadDir: func(dir string) ([]fs.DirEntry, error) {
			return fsys.ReadDir(dir)
		},
		Child: func(dir, name string) (string, error) {
			if strings.Contains(name, "/") {
				return "", fs.ErrInvalid
			}
			return path.Join(dir, name), nil
		},
		String: func(p string) string { return p },
	}
}

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"b.txt":        {Data: []byte("b")},
		"a/one.txt":    {Data: []byte("1")},
		"a/two.txt":    {Data: []byte("2")},
		"a/sub/x.txt":  {Data: []byte("x")},
		"c/skipme.txt": {Data: []byte("s")},
	}
}

func rootEntry(t *testing.T, fsys fstest.MapFS) fs.DirEntry {
	t.Helper()
	info, err := fs.Stat(fsys, ".")
	require.NoError(t, err)
	return fs.FileInfoToDirEntry(info)
}

func TestWalk_Order(t *testing.T) {
	fsys := testFS()
	var visited []string
	err := mapTree(fsys).Walk(".", rootEntry(t, fsys), func(p string, d fs.DirEntry, err error) error {
		require.NoError(t, err)
		visited = append(visited, p)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		".", "a", "a/one.txt", "a/sub", "a/sub/x.txt", "a/two.txt",
		"b.txt", "c", "c/skipme.txt",
	}, visited)
}

func TestWalk_SkipDir(t *testing.T) {
	fsys := testFS()
	var visited []string
	err := mapTree(fsys).Walk(".", rootEntry(t, fsys), func(p string, d fs.DirEntry, err error) error {
		visited = append(visited, p)
		if p == "a" {
			return fs.SkipDir
		}
		return nil
	})
	require.NoError(t, err)
	assert.NotContains(t, visited, "a/one.txt")
	assert.Contains(t, visited, "b.txt")
}

func TestWalk_SkipDirFromFile(t *testing.T) {
	fsys := testFS()
	var visited []string
	err := mapTree(fsys).Walk(".", rootEntry(t, fsys), func(p string, d fs.DirEntry, err error) error {
		visited = append(visited, p)
		if p == "a/one.txt" {
			return fs.SkipDir
		}
		return nil
	})
	require.NoError(t, err)
	assert.NotContains(t, visited, "a/sub")
	assert.Contains(t, visited, "b.txt")
}

func TestWalk_SkipAll(t *testing.T) {
	fsys := testFS()
	var visited []string
	err := mapTree(fsys).Walk(".", rootEntry(t, fsys), func(p string, d fs.DirEntry, err error) error {
		visited = append(visited, p)
		if p == "a/sub" {
			return fs.SkipAll
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "a/sub", visited[len(visited)-1])
}

func TestWalk_ReadDirError(t *testing.T) {
	boom := errors.New("boom")
	fsys := testFS()
	tree := mapTree(fsys)
	readDir := tree.ReadDir
	tree.ReadDir = func(dir string) ([]fs.DirEntry, error) {
		if dir == "a" {
			return nil, boom
		}
		return readDir(dir)
	}

	var reported []string
	err := tree.Walk(".", rootEntry(t, fsys), func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			reported = append(reported, p)
			return nil
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, reported)

	err = tree.Walk(".", rootEntry(t, fsys), func(p string, d fs.DirEntry, err error) error {
		return err
	})
	require.ErrorIs(t, err, boom)
}

func TestWalk_FileRoot(t *testing.T) {
	fsys := testFS()
	info, err := fs.Stat(fsys, "b.txt")
	require.NoError(t, err)

	var visited []string
	err = mapTree(fsys).Walk("b.txt", fs.FileInfoToDirEntry(info), func(p string, d fs.DirEntry, err error) error {
		visited = append(visited, p)
		return nil
	})
	require.NoError(t, err)
	assert.True(t, slices.Equal([]string{"b.txt"}, visited))
}
