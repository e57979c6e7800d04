package storefs

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/jmgilman/go/fs/storefs/errors"
	"github.com/jmgilman/go/fs/storefs/store"
	"github.com/jmgilman/go/fs/storefs/store/memory"
	"github.com/jmgilman/go/fs/storefs/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	errUnavailable = fmt.Errorf("%w: connection reset by peer", store.ErrUnavailable)
	errGarbled     = stderrors.New("unexpected response body")
)

// newTestFS returns an adapter over an empty in-memory store.
func newTestFS(t *testing.T) (*FS, *memory.Store) {
	t.Helper()
	mem := memory.New()
	fsys, err := New(Config{Client: mem})
	require.NoError(t, err)
	return fsys, mem
}

// newFaultyFS returns an adapter whose store can be made to fail.
func newFaultyFS(t *testing.T) (*FS, *storetest.Faulty) {
	t.Helper()
	faulty := storetest.NewFaulty(memory.New())
	fsys, err := New(Config{Client: faulty})
	require.NoError(t, err)
	return fsys, faulty
}

func mustWrite(t *testing.T, fsys *FS, path, content string) {
	t.Helper()
	require.NoError(t, fsys.WriteFile(path, []byte(content)))
}

func assertCode(t *testing.T, err error, code errors.ErrorCode) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, code, errors.GetCode(err), "error: %v", err)
}

func TestNew(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		fsys, err := New(Config{Client: memory.New()})
		require.NoError(t, err)
		assert.Equal(t, DefaultScheme, fsys.Scheme())
		assert.Equal(t, DefaultDeleteConcurrency, fsys.deleteConcurrency)
		assert.NotNil(t, fsys.logger)
	})

	t.Run("custom scheme", func(t *testing.T) {
		fsys, err := New(Config{Scheme: "chfs://", Client: memory.New()})
		require.NoError(t, err)
		assert.Equal(t, "chfs", fsys.Scheme())

		require.NoError(t, fsys.WriteFile("chfs://./x", []byte("y")))
		_, err = fsys.ReadFile("store://./x")
		assertCode(t, err, errors.CodeInvalidPath)
	})

	t.Run("invalid config", func(t *testing.T) {
		tests := []struct {
			name string
			cfg  Config
		}{
			{"missing client", Config{}},
			{"bad scheme", Config{Client: memory.New(), Scheme: "a/b"}},
			{"reserved server", Config{Client: memory.New(), Servers: map[string]store.Client{".": memory.New()}}},
			{"empty server name", Config{Client: memory.New(), Servers: map[string]store.Client{"": memory.New()}}},
			{"separator in server", Config{Client: memory.New(), Servers: map[string]store.Client{"a/b": memory.New()}}},
			{"nil server client", Config{Client: memory.New(), Servers: map[string]store.Client{"archive": nil}}},
			{"negative concurrency", Config{Client: memory.New(), MaxDeleteConcurrency: -1}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := New(tt.cfg)
				assertCode(t, err, errors.CodeInvalidConfig)
				assert.ErrorIs(t, err, errors.ErrInvalidConfig)
			})
		}
	})
}

func TestParseAndTranslateName(t *testing.T) {
	fsys, _ := newTestFS(t)

	tests := []struct {
		raw       string
		key       string
		canonical string
	}{
		{"store://./test_write_read", "test_write_read", "store:///test_write_read"},
		{"store://testfile", "testfile", "store:///testfile"},
		{"store:///a/b/../c", "a/c", "store:///a/c"},
		{"store://./a\\b", "a/b", "store:///a/b"},
		{"store://./", "", "store:///"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			key, err := fsys.TranslateName(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.key, key)

			p, err := fsys.Parse(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.canonical, p.String())
		})
	}

	_, err := fsys.TranslateName("relative/path")
	assertCode(t, err, errors.CodeInvalidPath)

	_, err = fsys.Parse("store://./../escape")
	assertCode(t, err, errors.CodeInvalidPath)

	assert.True(t, fsys.Root().IsRoot())
}

func TestRootLevelFileWithoutAuthority(t *testing.T) {
	fsys, mem := newTestFS(t)

	mustWrite(t, fsys, "store://testfile", "content")

	data, err := mem.Get(context.Background(), "testfile")
	require.NoError(t, err)
	assert.Equal(t, "content", string(data))

	names, err := fsys.ListDir("store://./")
	require.NoError(t, err)
	assert.Equal(t, []string{"testfile"}, names)
}

func TestMultipleServers(t *testing.T) {
	primary := memory.New()
	archive := memory.New()
	fsys, err := New(Config{
		Client:  primary,
		Servers: map[string]store.Client{"archive": archive},
	})
	require.NoError(t, err)

	mustWrite(t, fsys, "store://archive/old.txt", "archived")
	mustWrite(t, fsys, "store://./new.txt", "fresh")

	assert.Equal(t, 1, primary.Len())
	assert.Equal(t, 1, archive.Len())

	exists, err := fsys.Exists("store://archive/new.txt")
	require.NoError(t, err)
	assert.False(t, exists)

	err = fsys.Copy("store://archive/old.txt", "store://./old.txt")
	assertCode(t, err, errors.CodeUnsupported)
	assert.ErrorIs(t, err, stderrors.ErrUnsupported)

	err = fsys.Rename("store://./new.txt", "store://archive/new.txt")
	assertCode(t, err, errors.CodeUnsupported)

	exists, err = fsys.Exists("store://./new.txt")
	require.NoError(t, err)
	assert.True(t, exists, "failed rename must leave the source")
}

type closingStore struct {
	*memory.Store
	closed int
	err    error
}

func (c *closingStore) Close() error {
	c.closed++
	return c.err
}

func TestClose(t *testing.T) {
	primary := &closingStore{Store: memory.New()}
	archive := &closingStore{Store: memory.New(), err: errUnavailable}
	fsys, err := New(Config{
		Client:  primary,
		Servers: map[string]store.Client{"archive": archive, "plain": memory.New()},
	})
	require.NoError(t, err)

	err = fsys.Close()
	require.ErrorIs(t, err, store.ErrUnavailable)
	assert.Equal(t, 1, primary.closed)
	assert.Equal(t, 1, archive.closed)
}

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	faulty := storetest.NewFaulty(memory.New())
	fsys, err := New(Config{Client: faulty, Logger: logger})
	require.NoError(t, err)

	require.NoError(t, fsys.Mkdir("store://./logs"))
	assert.Contains(t, buf.String(), "level=DEBUG msg=mkdir")
	assert.Contains(t, buf.String(), "path=store:///logs")

	buf.Reset()
	faulty.Fail(storetest.OpPut, errUnavailable)
	_ = fsys.WriteFile("store://./logs/x", []byte("x"))
	assert.Contains(t, buf.String(), "level=WARN msg=\"store fault\"")
	assert.Contains(t, buf.String(), "op=close")
}
