// Package walk provides depth-first directory tree walking over any path
// type, with fs.WalkDir semantics for fs.SkipDir and fs.SkipAll.
package walk

import (
	"errors"
	"io/fs"
)

// Tree describes how to move around a hierarchy of paths of type P.
type Tree[P any] struct {
	// ReadDir returns the entries of dir sorted by name.
	ReadDir func(dir P) ([]fs.DirEntry, error)

	// Child returns the path of the entry named name inside dir.
	Child func(dir P, name string) (P, error)

	// String renders a path for the walk function.
	String func(p P) string
}

// Walk calls walkFn for root, described by d, and everything below it in
// lexical order. Errors from ReadDir are reported to walkFn for the
// directory that failed; walkFn decides whether the walk continues.
func (t Tree[P]) Walk(root P, d fs.DirEntry, walkFn fs.WalkDirFunc) error {
	err := t.walkDir(root, d, walkFn)
	if errors.Is(err, fs.SkipDir) || errors.Is(err, fs.SkipAll) {
		return nil
	}
	return err
}

func (t Tree[P]) walkDir(dir P, d fs.DirEntry, walkFn fs.WalkDirFunc) error {
	name := t.String(dir)
	if err := walkFn(name, d, nil); err != nil || !d.IsDir() {
		if errors.Is(err, fs.SkipDir) && d.IsDir() {
			err = nil // skip this directory, continue with siblings
		}
		return err
	}

	entries, err := t.ReadDir(dir)
	if err != nil {
		// Second call reports the read failure for the directory.
		if err := walkFn(name, d, err); err != nil {
			if errors.Is(err, fs.SkipDir) {
				err = nil
			}
			return err
		}
	}

	for _, entry := range entries {
		if err := t.ProcessEntry(dir, entry, walkFn); err != nil {
			if errors.Is(err, fs.SkipDir) {
				break // SkipDir from a file skips the rest of its directory
			}
			return err
		}
	}
	return nil
}

// ProcessEntry walks a single entry of parent: directories recursively,
// files with one call to walkFn.
func (t Tree[P]) ProcessEntry(parent P, entry fs.DirEntry, walkFn fs.WalkDirFunc) error {
	p, err := t.Child(parent, entry.Name())
	if err != nil {
		return walkFn(t.String(parent), entry, err)
	}
	if entry.IsDir() {
		return t.walkDir(p, entry, walkFn)
	}
	return walkFn(t.String(p), entry, nil)
}
