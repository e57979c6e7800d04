package storefs

import (
	"io/fs"
	"time"
)

const (
	fileMode fs.FileMode = 0o644
	dirMode              = fs.ModeDir | 0o755
)

var zeroTime time.Time

// FileInfo implements fs.FileInfo for stored files and emulated
// directories.
type FileInfo struct {
	FileName    string
	FileSize    int64
	FileModTime time.Time
	FileMode    fs.FileMode
}

// Name returns the base name of the path.
func (fi *FileInfo) Name() string { return fi.FileName }

// Size returns the length in bytes for files and 0 for directories.
func (fi *FileInfo) Size() int64 { return fi.FileSize }

// Mode returns the file mode bits.
func (fi *FileInfo) Mode() fs.FileMode { return fi.FileMode }

// ModTime returns the modification time reported by the store, if any.
func (fi *FileInfo) ModTime() time.Time { return fi.FileModTime }

// IsDir returns true if this describes a directory.
func (fi *FileInfo) IsDir() bool { return fi.FileMode.IsDir() }

// Sys always returns nil.
func (fi *FileInfo) Sys() any { return nil }

func newFileInfo(name string, isDir bool, size int64, modTime time.Time) *FileInfo {
	mode := fileMode
	if isDir {
		mode = dirMode
		size = 0
	}
	return &FileInfo{
		FileName:    name,
		FileSize:    size,
		FileModTime: modTime,
		FileMode:    mode,
	}
}

// dirEntry implements fs.DirEntry for listing results.
type dirEntry struct {
	info *FileInfo
}

func newDirEntry(name string, isDir bool, size int64, modTime time.Time) fs.DirEntry {
	return &dirEntry{info: newFileInfo(name, isDir, size, modTime)}
}

func (e *dirEntry) Name() string               { return e.info.Name() }
func (e *dirEntry) IsDir() bool                { return e.info.IsDir() }
func (e *dirEntry) Type() fs.FileMode          { return e.info.Mode().Type() }
func (e *dirEntry) Info() (fs.FileInfo, error) { return e.info, nil }
func (e *dirEntry) String() string             { return fs.FormatDirEntry(e) }

// Compile-time interface checks.
var (
	_ fs.FileInfo = (*FileInfo)(nil)
	_ fs.DirEntry = (*dirEntry)(nil)
)
