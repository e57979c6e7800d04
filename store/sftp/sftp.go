// Package sftp provides a store.Client that keeps objects as files in one
// remote directory reached over SFTP.
package sftp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"net"
	"os"
	"path"
	"strings"

	"github.com/jmgilman/go/fs/storefs/store"
	"github.com/jmgilman/go/fs/storefs/store/internal/flatname"
	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

// Store is a store.Client over an SFTP connection.
type Store struct {
	client *sftp.Client
	conn   *ssh.Client // nil when the client was supplied by the caller
	dir    string
}

// Dial connects to the server described by cfg and creates the object
// directory if needed.
func Dial(cfg Config) (*Store, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	sshCfg, err := cfg.clientConfig()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	conn, err := ssh.Dial("tcp", cfg.Addr, sshCfg)
	if err != nil {
		return nil, translate("dial", cfg.Addr, err)
	}
	client, err := sftp.NewClient(conn)
	if err != nil {
		_ = conn.Close()
		return nil, translate("dial", cfg.Addr, err)
	}

	s, err := New(client, cfg.Dir)
	if err != nil {
		_ = client.Close()
		_ = conn.Close()
		return nil, err
	}
	s.conn = conn
	return s, nil
}

// New wraps an existing SFTP client. Objects live in dir, which is created if
// needed. Close closes client.
func New(client *sftp.Client, dir string) (*Store, error) {
	if err := client.MkdirAll(dir); err != nil {
		return nil, translate("mkdir", dir, err)
	}
	return &Store{client: client, dir: dir}, nil
}

// Close closes the SFTP session and, when the store dialed it, the SSH
// connection.
func (s *Store) Close() error {
	err := s.client.Close()
	if s.conn != nil {
		err = errors.Join(err, s.conn.Close())
	}
	return err
}

func (s *Store) filename(key string) string {
	return path.Join(s.dir, flatname.Encode(key))
}

// translate maps SFTP and transport errors onto store faults.
func translate(op, key string, err error) error {
	var netErr net.Error
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%s %q: %w", op, key, store.ErrNotExist)
	case errors.Is(err, sftp.ErrSSHFxConnectionLost),
		errors.Is(err, sftp.ErrSSHFxNoConnection),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, net.ErrClosed),
		errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr):
		return fmt.Errorf("%w: %s %q: %v", store.ErrUnavailable, op, key, err)
	default:
		return fmt.Errorf("%w: %s %q: %v", store.ErrProtocol, op, key, err)
	}
}

func checkKey(op, key string) error {
	if key == "" {
		return fmt.Errorf("%w: %s: empty key", store.ErrProtocol, op)
	}
	return nil
}

// tempPrefix names in-flight puts. Such files lack the encoding suffix, so
// listings never report them.
const tempPrefix = ".put-"

// Put uploads data to a temporary file and renames it onto the object file
// for key. The previous object stays intact unless the upload succeeds.
func (s *Store) Put(_ context.Context, key string, data []byte) error {
	if err := checkKey("put", key); err != nil {
		return err
	}
	if err := s.replace(s.filename(key), data); err != nil {
		return translate("put", key, err)
	}
	return nil
}

func (s *Store) replace(name string, data []byte) (err error) {
	tmp := path.Join(s.dir, tempPrefix+rand.Text())
	f, err := s.client.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = s.client.Remove(tmp)
		}
	}()

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return s.rename(tmp, name)
}

// rename moves tmp onto name, replacing it. Servers without the
// posix-rename extension only rename onto absent targets, so the old
// object is removed first there.
func (s *Store) rename(tmp, name string) error {
	err := s.client.PosixRename(tmp, name)
	var status *sftp.StatusError
	if !errors.As(err, &status) || status.FxCode() != sftp.ErrSSHFxOpUnsupported {
		return err
	}
	if err := s.client.Remove(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return s.client.Rename(tmp, name)
}

// Get reads the object file for key.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	if err := checkKey("get", key); err != nil {
		return nil, err
	}
	f, err := s.client.Open(s.filename(key))
	if err != nil {
		return nil, translate("get", key, err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
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
	info, err := s.client.Stat(s.filename(key))
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
	if err := s.client.Remove(s.filename(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return translate("delete", key, err)
	}
	return nil
}

// ListPrefix reads the remote object directory when first ranged.
func (s *Store) ListPrefix(_ context.Context, prefix string) iter.Seq2[string, error] {
	return store.Once(func(yield func(string, error) bool) {
		infos, err := s.client.ReadDir(s.dir)
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

// Compile-time interface checks.
var (
	_ store.Client = (*Store)(nil)
	_ store.Closer = (*Store)(nil)
)
