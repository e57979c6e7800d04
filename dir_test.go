package storefs

import (
	"context"
	"fmt"
	"io/fs"
	"testing"

	"github.com/jmgilman/go/fs/storefs/errors"
	"github.com/jmgilman/go/fs/storefs/store"
	"github.com/jmgilman/go/fs/storefs/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListDir(t *testing.T) {
	fsys, _ := newTestFS(t)

	mustWrite(t, fsys, "store://./test1.txt", "1")
	mustWrite(t, fsys, "store://./test2.txt", "2")
	require.NoError(t, fsys.Mkdir("store://./test_dir"))
	mustWrite(t, fsys, "store://./test_dir/nested.txt", "3")

	names, err := fsys.ListDir("store://./")
	require.NoError(t, err)
	assert.Equal(t, []string{"test1.txt", "test2.txt", "test_dir"}, names)

	names, err = fsys.ListDir("store://./test_dir")
	require.NoError(t, err)
	assert.Equal(t, []string{"nested.txt"}, names)
}

func TestListDir_ImplicitDirectories(t *testing.T) {
	fsys, mem := newTestFS(t)
	ctx := context.Background()

	// Keys written by other tools, without markers.
	require.NoError(t, mem.Put(ctx, "data/2024/jan.csv", []byte("x")))
	require.NoError(t, mem.Put(ctx, "data/2024/feb.csv", []byte("x")))
	require.NoError(t, mem.Put(ctx, "data/readme", []byte("x")))

	names, err := fsys.ListDir("store://./data")
	require.NoError(t, err)
	assert.Equal(t, []string{"2024", "readme"}, names)

	isDir, err := fsys.IsDir("store://./data/2024")
	require.NoError(t, err)
	assert.True(t, isDir)
}

func TestListDir_FileShadowsDirectory(t *testing.T) {
	fsys, mem := newTestFS(t)
	ctx := context.Background()

	require.NoError(t, mem.Put(ctx, "both", []byte("file")))
	require.NoError(t, mem.Put(ctx, "both/child", []byte("x")))

	isDir, err := fsys.IsDir("store://./both")
	require.NoError(t, err)
	assert.False(t, isDir)

	entries, err := fsys.ReadDir("store://./")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "both", entries[0].Name())
	assert.False(t, entries[0].IsDir())

	_, err = fsys.ListDir("store://./both")
	assertCode(t, err, errors.CodeNotADirectory)
}

func TestListDir_Errors(t *testing.T) {
	fsys, _ := newTestFS(t)
	mustWrite(t, fsys, "store://./file", "x")

	_, err := fsys.ListDir("store://./missing")
	assertCode(t, err, errors.CodeNotFound)
	assert.ErrorIs(t, err, fs.ErrNotExist)

	_, err = fsys.ListDir("store://./file")
	assertCode(t, err, errors.CodeNotADirectory)
}

func TestListDir_EmptyRoot(t *testing.T) {
	fsys, _ := newTestFS(t)

	names, err := fsys.ListDir("store://./")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestReadDir(t *testing.T) {
	fsys, _ := newTestFS(t)

	require.NoError(t, fsys.Mkdir("store://./dir"))
	mustWrite(t, fsys, "store://./b.txt", "hello")
	mustWrite(t, fsys, "store://./a.txt", "hi")

	entries, err := fsys.ReadDir("store://./")
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "a.txt", entries[0].Name())
	assert.Equal(t, "b.txt", entries[1].Name())
	assert.Equal(t, "dir", entries[2].Name())

	info, err := entries[1].Info()
	require.NoError(t, err)
	assert.Equal(t, int64(5), info.Size())
	assert.False(t, info.IsDir())

	assert.True(t, entries[2].IsDir())
	assert.Equal(t, fs.ModeDir, entries[2].Type())
}

func TestExistsAndIsDir(t *testing.T) {
	fsys, _ := newTestFS(t)
	mustWrite(t, fsys, "store://./file", "x")
	require.NoError(t, fsys.Mkdir("store://./dir"))

	tests := []struct {
		path   string
		exists bool
		isDir  bool
	}{
		{"store://./", true, true},
		{"store://./file", true, false},
		{"store://./dir", true, true},
		{"store://./dir/", true, true},
		{"store://./missing", false, false},
		{"store://./file/child", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			exists, err := fsys.Exists(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.exists, exists)

			isDir, err := fsys.IsDir(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.isDir, isDir)
		})
	}
}

func TestMkdir(t *testing.T) {
	fsys, mem := newTestFS(t)

	require.NoError(t, fsys.Mkdir("store://./dir"))
	info, err := mem.Stat(context.Background(), "dir/")
	require.NoError(t, err)
	assert.True(t, info.IsMarker)

	// Existing directories are accepted.
	require.NoError(t, fsys.Mkdir("store://./dir"))

	err = fsys.Mkdir("store://./missing/child")
	assertCode(t, err, errors.CodeParentMissing)

	mustWrite(t, fsys, "store://./file", "x")
	err = fsys.Mkdir("store://./file")
	assertCode(t, err, errors.CodeAlreadyExists)
	assert.ErrorIs(t, err, fs.ErrExist)

	err = fsys.Mkdir("store://./file/child")
	assertCode(t, err, errors.CodeNotADirectory)
}

func TestMakeDirs(t *testing.T) {
	fsys, mem := newTestFS(t)

	require.NoError(t, fsys.MakeDirs("store://./a/b/c"))
	for _, key := range []string{"a/", "a/b/", "a/b/c/"} {
		_, err := mem.Stat(context.Background(), key)
		assert.NoError(t, err, "marker %s", key)
	}

	// Idempotent.
	require.NoError(t, fsys.MakeDirs("store://./a/b/c"))
	require.NoError(t, fsys.MakeDirs("store://./a/b"))
	assert.Equal(t, 3, mem.Len())

	mustWrite(t, fsys, "store://./a/f", "x")
	err := fsys.MakeDirs("store://./a/f/g/h")
	assertCode(t, err, errors.CodeNotADirectory)

	err = fsys.MakeDirs("store://./a/f")
	assertCode(t, err, errors.CodeAlreadyExists)

	require.NoError(t, fsys.MakeDirs("store://./"))
}

func TestRemove(t *testing.T) {
	fsys, mem := newTestFS(t)

	require.NoError(t, fsys.MakeDirs("store://./dir/sub"))
	mustWrite(t, fsys, "store://./dir/file", "x")

	err := fsys.Remove("store://./dir")
	assertCode(t, err, errors.CodeNotEmpty)

	require.NoError(t, fsys.Remove("store://./dir/file"))
	require.NoError(t, fsys.Remove("store://./dir/sub"))
	require.NoError(t, fsys.Remove("store://./dir"))
	assert.Equal(t, 0, mem.Len())

	exists, err := fsys.Exists("store://./dir")
	require.NoError(t, err)
	assert.False(t, exists)

	err = fsys.Remove("store://./dir")
	assertCode(t, err, errors.CodeNotFound)

	err = fsys.Remove("store://./")
	assertCode(t, err, errors.CodeInvalidPath)
}

func TestRemove_ImplicitDirectory(t *testing.T) {
	fsys, mem := newTestFS(t)
	require.NoError(t, mem.Put(context.Background(), "implicit/child", nil))

	err := fsys.Remove("store://./implicit")
	assertCode(t, err, errors.CodeNotEmpty)
}

func TestRmTree(t *testing.T) {
	fsys, mem := newTestFS(t)

	require.NoError(t, fsys.MakeDirs("store://./tree/a/b"))
	mustWrite(t, fsys, "store://./tree/a/b/1.txt", "1")
	mustWrite(t, fsys, "store://./tree/a/2.txt", "2")
	mustWrite(t, fsys, "store://./tree/3.txt", "3")
	mustWrite(t, fsys, "store://./tree_sibling", "keep")

	require.NoError(t, fsys.RmTree("store://./tree"))

	exists, err := fsys.Exists("store://./tree")
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = fsys.Exists("store://./tree_sibling")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, 1, mem.Len())

	err = fsys.RmTree("store://./tree")
	assertCode(t, err, errors.CodeNotFound)
}

func TestRmTree_File(t *testing.T) {
	fsys, mem := newTestFS(t)
	mustWrite(t, fsys, "store://./f", "x")
	require.NoError(t, mem.Put(context.Background(), "f/shadowed", nil))

	require.NoError(t, fsys.RmTree("store://./f"))
	assert.Equal(t, 0, mem.Len())
}

func TestRmTree_Root(t *testing.T) {
	fsys, mem := newTestFS(t)
	require.NoError(t, fsys.MakeDirs("store://./a/b"))
	mustWrite(t, fsys, "store://./c", "x")

	require.NoError(t, fsys.RmTree("store://./"))
	assert.Equal(t, 0, mem.Len())

	isDir, err := fsys.IsDir("store://./")
	require.NoError(t, err)
	assert.True(t, isDir)
}

func TestRmTree_RetryAfterTransientFailure(t *testing.T) {
	fsys, faulty := newFaultyFS(t)

	require.NoError(t, fsys.MakeDirs("store://./t/sub"))
	for _, name := range []string{"t/1", "t/2", "t/sub/3"} {
		mustWrite(t, fsys, "store://./"+name, name)
	}

	faulty.Fail(storetest.OpDelete, errUnavailable, "t/2", "t/sub/3")
	err := fsys.RmTree("store://./t")
	assertCode(t, err, errors.CodeStoreUnavailable)
	assert.True(t, errors.IsRetryable(err))
	assert.ErrorIs(t, err, store.ErrUnavailable)

	exists, err := fsys.Exists("store://./t")
	require.NoError(t, err)
	assert.True(t, exists, "failed deletions leave part of the tree")

	faulty.Heal()
	require.NoError(t, fsys.RmTree("store://./t"))

	exists, err = fsys.Exists("store://./t")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRmTree_MixedFaultsAreFatal(t *testing.T) {
	fsys, faulty := newFaultyFS(t)

	require.NoError(t, fsys.Mkdir("store://./t"))
	for _, name := range []string{"t/1", "t/2", "t/3"} {
		mustWrite(t, fsys, "store://./"+name, name)
	}

	faulty.Fail(storetest.OpDelete, errUnavailable, "t/2")
	faulty.Fail(storetest.OpDelete, fmt.Errorf("%w: malformed reply", store.ErrProtocol), "t/1")

	for range 3 {
		err := fsys.RmTree("store://./t")
		assertCode(t, err, errors.CodeStoreProtocol)
		assert.False(t, errors.IsRetryable(err))
		assert.ErrorIs(t, err, store.ErrProtocol)
		assert.ErrorIs(t, err, store.ErrUnavailable)
	}
}

func TestRmTree_Concurrency(t *testing.T) {
	fsys, faulty := newFaultyFS(t)
	fsys.deleteConcurrency = 1

	require.NoError(t, fsys.Mkdir("store://./many"))
	for i := range 25 {
		mustWrite(t, fsys, "store://./many/"+string(rune('a'+i)), "x")
	}

	faulty.ResetCalls()
	require.NoError(t, fsys.RmTree("store://./many"))
	assert.Equal(t, 26, faulty.Calls(storetest.OpDelete))
}
