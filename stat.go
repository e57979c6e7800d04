package storefs

import (
	"context"
	"io/fs"

	"github.com/jmgilman/go/fs/storefs/errors"
	"github.com/jmgilman/go/fs/storefs/store"
)

// Stat describes the file or directory at the path. Directories report
// fs.ModeDir and size 0.
func (f *FS) Stat(raw string) (fs.FileInfo, error) {
	t, err := f.resolve("stat", raw)
	if err != nil {
		return nil, err
	}
	return f.stat(context.Background(), "stat", t)
}

func (f *FS) stat(ctx context.Context, op string, t target) (*FileInfo, error) {
	if t.path.IsRoot() {
		return newFileInfo("/", true, 0, zeroTime), nil
	}

	info, err := t.client.Stat(ctx, t.key())
	switch {
	case err == nil:
		return newFileInfo(t.path.Base(), false, info.Size, info.ModTime), nil
	case !errors.Is(err, store.ErrNotExist):
		return nil, f.fail(op, t, err)
	}

	st, err := stateOf(ctx, t)
	if err != nil {
		return nil, f.fail(op, t, err)
	}
	switch st {
	case stateFile:
		// Created between the two lookups.
		info, err := t.client.Stat(ctx, t.key())
		if err != nil {
			return nil, f.fail(op, t, err)
		}
		return newFileInfo(t.path.Base(), false, info.Size, info.ModTime), nil
	case stateDirectory:
		modTime := zeroTime
		if marker, err := t.client.Stat(ctx, store.MarkerKey(t.key())); err == nil {
			modTime = marker.ModTime
		}
		return newFileInfo(t.path.Base(), true, 0, modTime), nil
	}
	return nil, f.reject(op, t, errors.CodeNotFound)
}

// Size returns the size of the file at the path in bytes.
func (f *FS) Size(raw string) (int64, error) {
	const op = "size"
	t, err := f.resolve(op, raw)
	if err != nil {
		return 0, err
	}
	info, err := f.stat(context.Background(), op, t)
	if err != nil {
		return 0, err
	}
	if info.IsDir() {
		return 0, f.reject(op, t, errors.CodeIsADirectory)
	}
	return info.Size(), nil
}
