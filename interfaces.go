package storefs

import (
	"io/fs"

	"github.com/jmgilman/go/fs/storefs/storepath"
)

// FileSystem is the complete set of operations provided by FS, composed of
// four groups: ReadFS, WriteFS, ManageFS and WalkFS.
//
// Every path argument is a scheme-qualified path as understood by Parse,
// such as "store://./a/b" or "store://archive/a/b".
type FileSystem interface {
	ReadFS
	WriteFS
	ManageFS
	WalkFS

	// Parse normalizes a raw path.
	Parse(raw string) (storepath.Path, error)

	// TranslateName returns the store key the path maps to.
	TranslateName(raw string) (string, error)

	// Close releases every store connection.
	Close() error
}

// ReadFS defines read-only operations.
type ReadFS interface {
	// Open opens the named file for reading. The content is fetched once.
	Open(name string) (*Reader, error)

	// Stat returns file metadata. Directories report fs.ModeDir.
	Stat(name string) (fs.FileInfo, error)

	// Size returns the size of a file in bytes.
	Size(name string) (int64, error)

	// ReadDir returns the entries of a directory sorted by name.
	ReadDir(name string) ([]fs.DirEntry, error)

	// ListDir returns the names of the entries of a directory sorted by name.
	ListDir(name string) ([]string, error)

	// ReadFile returns the content of the named file.
	ReadFile(name string) ([]byte, error)

	// Exists reports whether the path is a file or a directory.
	// A false result with a non-nil error means existence could not be
	// determined.
	Exists(name string) (bool, error)

	// IsDir reports whether the path is a directory.
	IsDir(name string) (bool, error)

	// WithReader opens the named file and closes it after fn returns.
	WithReader(name string, fn func(*Reader) error) error
}

// WriteFS defines write operations. Writes never create missing parent
// directories.
type WriteFS interface {
	// Create opens a buffered stream that replaces the file on close.
	Create(name string) (*Writer, error)

	// Append opens a buffered stream seeded with the current content.
	Append(name string) (*Writer, error)

	// WriteFile replaces the named file with data.
	WriteFile(name string, data []byte) error

	// WithWriter creates the named file, commits it when fn succeeds and
	// discards it otherwise.
	WithWriter(name string, fn func(*Writer) error) error

	// Mkdir creates a directory whose parent exists.
	Mkdir(name string) error

	// MakeDirs creates a directory and every missing ancestor.
	MakeDirs(name string) error
}

// ManageFS defines operations that restructure the tree.
type ManageFS interface {
	// Remove removes a file or an empty directory.
	Remove(name string) error

	// RmTree removes a path and everything below it.
	RmTree(name string) error

	// Copy copies a file, replacing the destination file if present.
	Copy(src, dest string) error

	// Rename moves a file, replacing the destination file if present.
	Rename(src, dest string) error
}

// WalkFS defines tree traversal.
type WalkFS interface {
	// Walk calls fn for the root and everything below it in lexical order.
	Walk(root string, fn fs.WalkDirFunc) error
}

// Compile-time interface check.
var _ FileSystem = (*FS)(nil)
