package storefs

import (
	"context"
	stderrors "errors"

	"github.com/jmgilman/go/fs/storefs/store"
)

// state is the emulated kind of a path.
type state int

const (
	stateAbsent state = iota
	stateFile
	stateDirectory
)

func (s state) String() string {
	switch s {
	case stateFile:
		return "file"
	case stateDirectory:
		return "directory"
	default:
		return "absent"
	}
}

// stateOf classifies t. The exact key is checked first so a file shadowing a
// directory prefix is reported as a file; directories are then found by
// marker and finally by a prefix scan that stops at the first key.
func stateOf(ctx context.Context, t target) (state, error) {
	if t.path.IsRoot() {
		return stateDirectory, nil
	}
	key := t.key()

	info, err := t.client.Stat(ctx, key)
	switch {
	case err == nil && !info.IsMarker:
		return stateFile, nil
	case err != nil && !stderrors.Is(err, store.ErrNotExist):
		return stateAbsent, err
	}

	_, err = t.client.Stat(ctx, store.MarkerKey(key))
	switch {
	case err == nil:
		return stateDirectory, nil
	case !stderrors.Is(err, store.ErrNotExist):
		return stateAbsent, err
	}

	return hasChildren(ctx, t.client, store.MarkerKey(key), "")
}

// hasChildren reports stateDirectory when any key other than skip starts
// with prefix.
func hasChildren(ctx context.Context, client store.Client, prefix, skip string) (state, error) {
	for key, err := range client.ListPrefix(ctx, prefix) {
		if err != nil {
			return stateAbsent, err
		}
		if key != skip {
			return stateDirectory, nil
		}
	}
	return stateAbsent, nil
}

// parentOf returns the parent of t and its state. The parent of a root-level
// entry is the root.
func parentOf(ctx context.Context, t target) (target, state, error) {
	parent, ok := t.path.Parent()
	if !ok {
		return target{}, stateAbsent, nil
	}
	pt := target{path: parent, client: t.client}
	st, err := stateOf(ctx, pt)
	return pt, st, err
}
