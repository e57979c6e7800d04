package storefs

import (
	"context"
	"io/fs"

	"github.com/jmgilman/go/fs/storefs/internal/walk"
	"github.com/jmgilman/go/fs/storefs/storepath"
)

// Walk walks the tree rooted at the path in lexical order, calling fn for
// every file and directory, root included. Paths are passed to fn in their
// canonical form. fn may return fs.SkipDir or fs.SkipAll.
//
// If the root cannot be resolved or does not exist, fn is called once with
// the error and a nil entry.
func (f *FS) Walk(raw string, fn fs.WalkDirFunc) error {
	const op = "walk"
	t, err := f.resolve(op, raw)
	if err != nil {
		return skipped(fn(raw, nil, err))
	}
	ctx := context.Background()

	info, err := f.stat(ctx, op, t)
	if err != nil {
		return skipped(fn(t.String(), nil, err))
	}

	tree := walk.Tree[storepath.Path]{
		ReadDir: func(dir storepath.Path) ([]fs.DirEntry, error) {
			return f.readDir(ctx, op, f.bind(dir))
		},
		Child: func(dir storepath.Path, name string) (storepath.Path, error) {
			return dir.Join(name)
		},
		String: storepath.Path.String,
	}
	return tree.Walk(t.path, fs.FileInfoToDirEntry(info), fn)
}

func skipped(err error) error {
	if err == fs.SkipDir || err == fs.SkipAll {
		return nil
	}
	return err
}
