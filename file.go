package storefs

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"sync"

	"github.com/jmgilman/go/fs/storefs/errors"
	"github.com/jmgilman/go/fs/storefs/internal/errs"
	"github.com/jmgilman/go/fs/storefs/store"
)

// Reader is a read stream over a file's content as of Open.
// The content is fetched with a single get; reads never touch the store.
type Reader struct {
	name   string
	info   *FileInfo
	reader *bytes.Reader
	closed bool
}

// Open opens the file at the path for reading.
func (f *FS) Open(raw string) (*Reader, error) {
	const op = "open"
	t, err := f.resolve(op, raw)
	if err != nil {
		return nil, err
	}
	if t.path.IsRoot() {
		return nil, f.reject(op, t, errors.CodeIsADirectory)
	}
	ctx := context.Background()

	data, err := t.client.Get(ctx, t.key())
	if err != nil {
		if !errors.Is(err, store.ErrNotExist) {
			return nil, f.fail(op, t, err)
		}
		// Tell a directory apart from a missing path.
		st, serr := stateOf(ctx, t)
		if serr != nil {
			return nil, f.fail(op, t, serr)
		}
		if st == stateDirectory {
			return nil, f.reject(op, t, errors.CodeIsADirectory)
		}
		return nil, f.fail(op, t, err)
	}

	// The content is already in hand, so a failed stat only costs the
	// modification time.
	modTime := zeroTime
	if info, err := t.client.Stat(ctx, t.key()); err == nil {
		modTime = info.ModTime
	}

	return &Reader{
		name:   t.String(),
		info:   newFileInfo(t.path.Base(), false, int64(len(data)), modTime),
		reader: bytes.NewReader(data),
	}, nil
}

func (r *Reader) closedErr(op string) error {
	return errs.New(op, r.name, errors.CodeClosed)
}

// Read implements io.Reader.
func (r *Reader) Read(p []byte) (int, error) {
	if r.closed {
		return 0, r.closedErr("read")
	}
	return r.reader.Read(p)
}

// ReadAt implements io.ReaderAt.
func (r *Reader) ReadAt(p []byte, off int64) (int, error) {
	if r.closed {
		return 0, r.closedErr("read")
	}
	return r.reader.ReadAt(p, off)
}

// Seek implements io.Seeker.
func (r *Reader) Seek(offset int64, whence int) (int64, error) {
	if r.closed {
		return 0, r.closedErr("seek")
	}
	return r.reader.Seek(offset, whence)
}

// WriteTo implements io.WriterTo.
func (r *Reader) WriteTo(w io.Writer) (int64, error) {
	if r.closed {
		return 0, r.closedErr("read")
	}
	return r.reader.WriteTo(w)
}

// Size returns the size of the content.
func (r *Reader) Size() int64 { return r.info.Size() }

// Stat describes the file as of Open. ModTime is zero when the store does
// not report one.
func (r *Reader) Stat() (fs.FileInfo, error) { return r.info, nil }

// Name returns the canonical path of the file.
func (r *Reader) Name() string { return r.name }

// Close releases the content. Closing twice is a no-op.
func (r *Reader) Close() error {
	r.closed = true
	r.reader = bytes.NewReader(nil)
	return nil
}

// Writer is a buffered write stream. Nothing reaches the store until Sync or
// Close, which store the whole buffer with one put.
// Writer is safe for concurrent use.
type Writer struct {
	fs  *FS
	t   target
	op  string
	mu  sync.Mutex
	buf bytes.Buffer

	closed   bool
	closeErr error
}

// Create opens a write stream that replaces the file at the path on close.
// The parent must be an existing directory and the path must not be a
// directory.
func (f *FS) Create(raw string) (*Writer, error) {
	const op = "create"
	t, err := f.resolve(op, raw)
	if err != nil {
		return nil, err
	}
	if _, err := f.prepareWrite(context.Background(), op, t); err != nil {
		return nil, err
	}
	return &Writer{fs: f, t: t, op: op}, nil
}

// Append opens a write stream seeded with the current content of the file,
// if any. The combined content replaces the file on close.
func (f *FS) Append(raw string) (*Writer, error) {
	const op = "append"
	t, err := f.resolve(op, raw)
	if err != nil {
		return nil, err
	}
	ctx := context.Background()

	st, err := f.prepareWrite(ctx, op, t)
	if err != nil {
		return nil, err
	}

	w := &Writer{fs: f, t: t, op: op}
	if st == stateFile {
		data, err := t.client.Get(ctx, t.key())
		switch {
		case err == nil:
			w.buf.Write(data)
		case !errors.Is(err, store.ErrNotExist):
			return nil, f.fail(op, t, err)
		}
	}
	return w, nil
}

func (w *Writer) closedErr(op string) error {
	return w.fs.reject(op, w.t, errors.CodeClosed)
}

// Write appends p to the buffer.
func (w *Writer) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return 0, w.closedErr("write")
	}
	return w.buf.Write(p)
}

// WriteString appends s to the buffer.
func (w *Writer) WriteString(s string) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return 0, w.closedErr("write")
	}
	return w.buf.WriteString(s)
}

// Sync stores the current buffer. Later writes are kept and stored again by
// the next Sync or Close.
func (w *Writer) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return w.closedErr("sync")
	}
	return w.put("sync")
}

// Flush is an alias for Sync.
func (w *Writer) Flush() error {
	return w.Sync()
}

// Close stores the buffer and releases it. Only the first call puts;
// later calls return the first result.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return w.closeErr
	}
	w.closed = true
	w.closeErr = w.put("close")
	w.buf = bytes.Buffer{}
	return w.closeErr
}

// Abort discards the buffer without storing it. Content stored by an
// earlier Sync is left in place. Aborting a closed writer does nothing.
func (w *Writer) Abort() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	w.buf = bytes.Buffer{}
	w.fs.debug("abort", w.t)
	return nil
}

// Len returns the number of buffered bytes.
func (w *Writer) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.Len()
}

// Name returns the canonical path of the file.
func (w *Writer) Name() string { return w.t.String() }

func (w *Writer) put(op string) error {
	w.fs.debug(op, w.t, "size", w.buf.Len())
	if err := w.t.client.Put(context.Background(), w.t.key(), w.buf.Bytes()); err != nil {
		return w.fs.fail(op, w.t, err)
	}
	return nil
}

// WithReader opens the file, passes it to fn and closes it on every exit
// path.
func (f *FS) WithReader(raw string, fn func(*Reader) error) error {
	r, err := f.Open(raw)
	if err != nil {
		return err
	}
	defer func() { _ = r.Close() }()
	return fn(r)
}

// WithWriter creates the file and passes the stream to fn. When fn returns
// nil the stream is closed and the close error returned. When fn fails or
// panics the stream is aborted, leaving the stored file untouched.
func (f *FS) WithWriter(raw string, fn func(*Writer) error) (err error) {
	w, err := f.Create(raw)
	if err != nil {
		return err
	}

	committed := false
	defer func() {
		if !committed {
			_ = w.Abort()
		}
	}()

	if err := fn(w); err != nil {
		return err
	}
	committed = true
	return w.Close()
}

// ReadFile returns the content of the file at the path.
func (f *FS) ReadFile(raw string) ([]byte, error) {
	var data []byte
	err := f.WithReader(raw, func(r *Reader) error {
		var err error
		data, err = io.ReadAll(r)
		return err
	})
	return data, err
}

// WriteFile replaces the file at the path with data.
func (f *FS) WriteFile(raw string, data []byte) error {
	return f.WithWriter(raw, func(w *Writer) error {
		_, err := w.Write(data)
		return err
	})
}
