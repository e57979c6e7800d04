package storefs

import (
	"context"

	"github.com/jmgilman/go/fs/storefs/errors"
)

// prepareWrite checks that a file may be written at t: t must not be a
// directory and its parent must be an existing directory. It returns the
// current state of t.
func (f *FS) prepareWrite(ctx context.Context, op string, t target) (state, error) {
	if t.path.IsRoot() {
		return stateAbsent, f.reject(op, t, errors.CodeIsADirectory)
	}

	st, err := stateOf(ctx, t)
	if err != nil {
		return stateAbsent, f.fail(op, t, err)
	}
	if st == stateDirectory {
		return st, f.reject(op, t, errors.CodeIsADirectory)
	}

	parent, parentState, err := parentOf(ctx, t)
	if err != nil {
		return st, f.fail(op, parent, err)
	}
	switch parentState {
	case stateAbsent:
		return st, f.reject(op, t, errors.CodeParentMissing)
	case stateFile:
		return st, f.reject(op, t, errors.CodeNotADirectory)
	}
	return st, nil
}

// resolvePair resolves a source and destination that must live on the same
// server.
func (f *FS) resolvePair(op, rawSrc, rawDest string) (target, target, error) {
	src, err := f.resolve(op, rawSrc)
	if err != nil {
		return target{}, target{}, err
	}
	dest, err := f.resolve(op, rawDest)
	if err != nil {
		return target{}, target{}, err
	}
	if src.path.Authority() != dest.path.Authority() {
		// Each server is a separate store; there is no server-side copy.
		return target{}, target{}, f.reject(op, dest, errors.CodeUnsupported)
	}
	return src, dest, nil
}

// copyFile checks both ends and copies the content of src to dest.
func (f *FS) copyFile(ctx context.Context, op string, src, dest target) error {
	st, err := stateOf(ctx, src)
	if err != nil {
		return f.fail(op, src, err)
	}
	switch st {
	case stateAbsent:
		return f.reject(op, src, errors.CodeNotFound)
	case stateDirectory:
		return f.reject(op, src, errors.CodeSourceIsDirectory)
	}

	if _, err := f.prepareWrite(ctx, op, dest); err != nil {
		return err
	}

	data, err := src.client.Get(ctx, src.key())
	if err != nil {
		return f.fail(op, src, err)
	}

	f.debug(op, dest, "from", src.String(), "size", len(data))
	if err := dest.client.Put(ctx, dest.key(), data); err != nil {
		return f.fail(op, dest, err)
	}
	return nil
}

// Copy copies the file at src to dest, replacing dest if it is a file.
// Directories cannot be copied. The copy is a get followed by a put and is
// not atomic with respect to concurrent writers of dest.
func (f *FS) Copy(rawSrc, rawDest string) error {
	src, dest, err := f.resolvePair("copy", rawSrc, rawDest)
	if err != nil {
		return err
	}
	return f.copyFile(context.Background(), "copy", src, dest)
}

// Rename moves the file at src to dest by copying it and deleting the
// source. It is not atomic: a failure after the copy leaves both files.
// Directories cannot be renamed.
func (f *FS) Rename(rawSrc, rawDest string) error {
	const op = "rename"
	src, dest, err := f.resolvePair(op, rawSrc, rawDest)
	if err != nil {
		return err
	}
	ctx := context.Background()

	if err := f.copyFile(ctx, op, src, dest); err != nil {
		return err
	}
	if src.path.Equal(dest.path) {
		return nil
	}

	f.debug(op, src, "to", dest.String())
	if err := src.client.Delete(ctx, src.key()); err != nil {
		return f.fail(op, src, err)
	}
	return nil
}
