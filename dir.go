package storefs

import (
	"context"
	"io/fs"
	"slices"
	"strings"

	cerrors "cloudeng.io/errors"
	"github.com/jmgilman/go/fs/storefs/errors"
	"github.com/jmgilman/go/fs/storefs/store"
	"github.com/jmgilman/go/fs/storefs/storepath"
	"golang.org/x/sync/errgroup"
)

// Exists reports whether the path is a file or a directory.
func (f *FS) Exists(raw string) (bool, error) {
	t, err := f.resolve("exists", raw)
	if err != nil {
		return false, err
	}
	st, err := stateOf(context.Background(), t)
	if err != nil {
		return false, f.fail("exists", t, err)
	}
	return st != stateAbsent, nil
}

// IsDir reports whether the path is a directory. Absent paths report false
// without an error; store faults are still returned.
func (f *FS) IsDir(raw string) (bool, error) {
	t, err := f.resolve("isdir", raw)
	if err != nil {
		return false, err
	}
	st, err := stateOf(context.Background(), t)
	if err != nil {
		return false, f.fail("isdir", t, err)
	}
	return st == stateDirectory, nil
}

// Mkdir creates a single directory. The parent must already be a directory.
// Creating an existing directory succeeds.
func (f *FS) Mkdir(raw string) error {
	const op = "mkdir"
	t, err := f.resolve(op, raw)
	if err != nil {
		return err
	}
	ctx := context.Background()

	st, err := stateOf(ctx, t)
	if err != nil {
		return f.fail(op, t, err)
	}
	switch st {
	case stateFile:
		return f.reject(op, t, errors.CodeAlreadyExists)
	case stateDirectory:
		return nil
	}

	_, parentState, err := parentOf(ctx, t)
	if err != nil {
		return f.fail(op, t, err)
	}
	switch parentState {
	case stateAbsent:
		return f.reject(op, t, errors.CodeParentMissing)
	case stateFile:
		return f.reject(op, t, errors.CodeNotADirectory)
	}

	return f.putMarker(ctx, op, t)
}

// MakeDirs creates the directory and every missing ancestor, top-down.
// It fails only when the path itself or one of its ancestors is a file.
func (f *FS) MakeDirs(raw string) error {
	const op = "makedirs"
	t, err := f.resolve(op, raw)
	if err != nil {
		return err
	}
	ctx := context.Background()

	st, err := stateOf(ctx, t)
	if err != nil {
		return f.fail(op, t, err)
	}
	switch st {
	case stateFile:
		return f.reject(op, t, errors.CodeAlreadyExists)
	case stateDirectory:
		return nil
	}

	for _, ancestor := range t.path.Ancestors() {
		at := f.bind(ancestor)
		ast, err := stateOf(ctx, at)
		if err != nil {
			return f.fail(op, at, err)
		}
		switch ast {
		case stateFile:
			return f.reject(op, at, errors.CodeNotADirectory)
		case stateAbsent:
			if err := f.putMarker(ctx, op, at); err != nil {
				return err
			}
		}
	}

	return f.putMarker(ctx, op, t)
}

func (f *FS) putMarker(ctx context.Context, op string, t target) error {
	f.debug(op, t, "marker", store.MarkerKey(t.key()))
	if err := t.client.Put(ctx, store.MarkerKey(t.key()), nil); err != nil {
		return f.fail(op, t, err)
	}
	return nil
}

// child is an immediate child collected from a prefix scan.
type child struct {
	name   string
	path   storepath.Path
	isFile bool
}

// children scans the keys below a directory and collapses them to its
// immediate children, sorted by name. A name backed by both an exact key and
// deeper keys is a file.
func (f *FS) children(ctx context.Context, op string, t target) ([]child, error) {
	st, err := stateOf(ctx, t)
	if err != nil {
		return nil, f.fail(op, t, err)
	}
	switch st {
	case stateAbsent:
		return nil, f.reject(op, t, errors.CodeNotFound)
	case stateFile:
		return nil, f.reject(op, t, errors.CodeNotADirectory)
	}

	prefix := ""
	if !t.path.IsRoot() {
		prefix = store.MarkerKey(t.key())
	}

	files := make(map[string]bool)
	for key, err := range t.client.ListPrefix(ctx, prefix) {
		if err != nil {
			return nil, f.fail(op, t, err)
		}
		rest := strings.TrimPrefix(key, prefix)
		if rest == "" {
			continue // the directory's own marker
		}
		name, _, nested := strings.Cut(rest, store.MarkerSuffix)
		files[name] = files[name] || !nested
	}

	out := make([]child, 0, len(files))
	for name, isFile := range files {
		p, err := t.path.Join(name)
		if err != nil {
			// Keys written outside the adapter may not form valid names.
			continue
		}
		out = append(out, child{name: name, path: p, isFile: isFile})
	}
	slices.SortFunc(out, func(a, b child) int { return strings.Compare(a.name, b.name) })
	return out, nil
}

// ListDir returns the names of the immediate children of a directory in
// byte order.
func (f *FS) ListDir(raw string) ([]string, error) {
	t, err := f.resolve("listdir", raw)
	if err != nil {
		return nil, err
	}
	kids, err := f.children(context.Background(), "listdir", t)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(kids))
	for i, c := range kids {
		names[i] = c.name
	}
	return names, nil
}

// ReadDir returns the immediate children of a directory with their kind and,
// for files, their size. Entries are sorted by name.
func (f *FS) ReadDir(raw string) ([]fs.DirEntry, error) {
	const op = "readdir"
	t, err := f.resolve(op, raw)
	if err != nil {
		return nil, err
	}
	return f.readDir(context.Background(), op, t)
}

func (f *FS) readDir(ctx context.Context, op string, t target) ([]fs.DirEntry, error) {
	kids, err := f.children(ctx, op, t)
	if err != nil {
		return nil, err
	}

	entries := make([]fs.DirEntry, 0, len(kids))
	for _, c := range kids {
		if !c.isFile {
			entries = append(entries, newDirEntry(c.name, true, 0, zeroTime))
			continue
		}
		ct := f.bind(c.path)
		info, err := ct.client.Stat(ctx, ct.key())
		if err != nil {
			// Removed since the scan; the listing is not a snapshot.
			if errors.Is(err, store.ErrNotExist) {
				continue
			}
			return nil, f.fail(op, ct, err)
		}
		entries = append(entries, newDirEntry(c.name, false, info.Size, info.ModTime))
	}
	return entries, nil
}

// Remove deletes a file or an empty directory.
func (f *FS) Remove(raw string) error {
	const op = "remove"
	t, err := f.resolve(op, raw)
	if err != nil {
		return err
	}
	if t.path.IsRoot() {
		return f.reject(op, t, errors.CodeInvalidPath)
	}
	ctx := context.Background()

	st, err := stateOf(ctx, t)
	if err != nil {
		return f.fail(op, t, err)
	}

	switch st {
	case stateAbsent:
		return f.reject(op, t, errors.CodeNotFound)
	case stateFile:
		f.debug(op, t)
		if err := t.client.Delete(ctx, t.key()); err != nil {
			return f.fail(op, t, err)
		}
		return nil
	}

	marker := store.MarkerKey(t.key())
	nonEmpty, err := hasChildren(ctx, t.client, marker, marker)
	if err != nil {
		return f.fail(op, t, err)
	}
	if nonEmpty == stateDirectory {
		return f.reject(op, t, errors.CodeNotEmpty)
	}

	f.debug(op, t, "marker", marker)
	if err := t.client.Delete(ctx, marker); err != nil {
		return f.fail(op, t, err)
	}
	return nil
}

// RmTree deletes a path and everything below it. Removing the root deletes
// its contents.
//
// Deletions are issued independently with bounded concurrency and are not
// atomic: after a failure part of the tree may remain. Every deletion that
// failed is reported, and calling RmTree again finishes the job.
func (f *FS) RmTree(raw string) error {
	const op = "rmtree"
	t, err := f.resolve(op, raw)
	if err != nil {
		return err
	}
	ctx := context.Background()

	st, err := stateOf(ctx, t)
	if err != nil {
		return f.fail(op, t, err)
	}
	if st == stateAbsent {
		return f.reject(op, t, errors.CodeNotFound)
	}

	prefix := ""
	if !t.path.IsRoot() {
		prefix = store.MarkerKey(t.key())
	}

	var errList cerrors.M
	var g errgroup.Group
	g.SetLimit(f.deleteConcurrency)

	deleted := 0
	for key, err := range t.client.ListPrefix(ctx, prefix) {
		if err != nil {
			errList.Append(err)
			break
		}
		deleted++
		g.Go(func() error {
			errList.Append(t.client.Delete(ctx, key))
			return nil
		})
	}
	_ = g.Wait()

	if st == stateFile {
		deleted++
		errList.Append(t.client.Delete(ctx, t.key()))
	}

	f.debug(op, t, "keys", deleted)
	if err := errList.Err(); err != nil {
		return f.fail(op, t, err)
	}
	return nil
}
