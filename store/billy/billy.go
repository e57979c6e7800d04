// Package billy provides a store.Client that keeps objects as files in one
// directory of a go-billy filesystem.
//
// Keys are mapped to file names with a reversible flat encoding, so nested
// keys never create directories on the underlying filesystem. Use NewMemory
// for an in-process store and NewLocal for one persisted on disk.
package billy

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"os"
	"path"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/jmgilman/go/fs/storefs/store"
	"github.com/jmgilman/go/fs/storefs/store/internal/flatname"
)

// tempPrefix names in-flight puts. Such files lack the encoding suffix, so
// listings never report them.
const tempPrefix = ".put-"

const filePerm = 0o644

// Store is a store.Client over a billy.Filesystem.
type Store struct {
	bfs billy.Filesystem
	dir string
}

// New creates a store keeping objects in dir of bfs. The directory is
// created if needed.
func New(bfs billy.Filesystem, dir string) (*Store, error) {
	if dir == "" {
		dir = "."
	}
	if err := bfs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create object directory %q: %w", dir, err)
	}
	return &Store{bfs: bfs, dir: dir}, nil
}

// NewMemory creates an empty store on a go-billy in-memory filesystem.
func NewMemory() *Store {
	return &Store{bfs: memfs.New(), dir: "/"}
}

// NewLocal creates a store persisting objects in the local directory dir.
func NewLocal(dir string) (*Store, error) {
	return New(osfs.New(dir), ".")
}

// Unwrap returns the underlying billy.Filesystem.
func (s *Store) Unwrap() billy.Filesystem {
	return s.bfs
}

func (s *Store) filename(key string) string {
	return path.Join(s.dir, flatname.Encode(key))
}

// translate maps filesystem errors onto store faults.
func translate(op, key string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%s %q: %w", op, key, store.ErrNotExist)
	case errors.Is(err, fs.ErrPermission), errors.Is(err, fs.ErrInvalid):
		return fmt.Errorf("%w: %s %q: %v", store.ErrProtocol, op, key, err)
	default:
		return fmt.Errorf("%w: %s %q: %v", store.ErrUnavailable, op, key, err)
	}
}

func checkKey(op, key string) error {
	if key == "" {
		return fmt.Errorf("%w: %s: empty key", store.ErrProtocol, op)
	}
	return nil
}

// Put writes data to the object file for key, replacing any previous content.
// The previous object stays intact unless the whole write succeeds.
func (s *Store) Put(_ context.Context, key string, data []byte) error {
	if err := checkKey("put", key); err != nil {
		return err
	}
	if err := s.replace(s.filename(key), data); err != nil {
		return translate("put", key, err)
	}
	return nil
}

// replace writes data to a temporary file in the object directory and renames
// it onto name.
func (s *Store) replace(name string, data []byte) (err error) {
	tmp := path.Join(s.dir, tempPrefix+rand.Text())
	f, err := s.bfs.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = s.bfs.Remove(tmp)
		}
	}()

	n, err := f.Write(data)
	if err == nil && n < len(data) {
		err = io.ErrShortWrite
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}
	return s.bfs.Rename(tmp, name)
}

// Get reads the object file for key.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	if err := checkKey("get", key); err != nil {
		return nil, err
	}
	data, err := util.ReadFile(s.bfs, s.filename(key))
	if err != nil {
		return nil, translate("get", key, err)
	}
	return data, nil
}

// Stat returns metadata for key.
func (s *Store) Stat(_ context.Context, key string) (store.ObjectInfo, error) {
	if err := checkKey("stat", key); err != nil {
		return store.ObjectInfo{}, err
	}
	info, err := s.bfs.Stat(s.filename(key))
	if err != nil {
		return store.ObjectInfo{}, translate("stat", key, err)
	}
	return store.NewObjectInfo(key, info.Size(), info.ModTime()), nil
}

// Delete removes the object file for key. Absent keys are ignored.
func (s *Store) Delete(_ context.Context, key string) error {
	if err := checkKey("delete", key); err != nil {
		return err
	}
	if err := s.bfs.Remove(s.filename(key)); err != nil && !os.IsNotExist(err) {
		return translate("delete", key, err)
	}
	return nil
}

// ListPrefix reads the object directory when first ranged and yields every
// decoded key starting with prefix. Files not produced by the encoding are
// skipped.
func (s *Store) ListPrefix(_ context.Context, prefix string) iter.Seq2[string, error] {
	return store.Once(func(yield func(string, error) bool) {
		infos, err := s.bfs.ReadDir(s.dir)
		if err != nil {
			yield("", translate("list", prefix, err))
			return
		}
		for _, info := range infos {
			if info.IsDir() {
				continue
			}
			key, err := flatname.Decode(info.Name())
			if err != nil || !strings.HasPrefix(key, prefix) {
				continue
			}
			if !yield(key, nil) {
				return
			}
		}
	})
}

// Compile-time interface check.
var _ store.Client = (*Store)(nil)
