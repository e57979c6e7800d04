package storefs

import (
	"log/slog"
	"maps"
	"slices"
	"strings"

	cerrors "cloudeng.io/errors"
	"github.com/jmgilman/go/fs/storefs/errors"
	"github.com/jmgilman/go/fs/storefs/internal/errs"
	"github.com/jmgilman/go/fs/storefs/store"
	"github.com/jmgilman/go/fs/storefs/storepath"
)

// FS is a hierarchical filesystem over one or more flat object stores.
// It holds no mutable state besides its clients and is safe for concurrent
// use.
type FS struct {
	parser            *storepath.Parser
	clients           map[string]store.Client // "" is the default server
	logger            *slog.Logger
	deleteConcurrency int
}

// New creates an adapter from cfg.
func New(cfg Config) (*FS, error) {
	if err := cfg.validate(); err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidConfig, "invalid config")
	}

	scheme := strings.TrimSuffix(cfg.Scheme, "://")
	if scheme == "" {
		scheme = DefaultScheme
	}

	clients := make(map[string]store.Client, len(cfg.Servers)+1)
	maps.Copy(clients, cfg.Servers)
	clients[""] = cfg.Client

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	concurrency := cfg.MaxDeleteConcurrency
	if concurrency == 0 {
		concurrency = DefaultDeleteConcurrency
	}

	authorities := slices.Sorted(maps.Keys(cfg.Servers))

	return &FS{
		parser:            storepath.NewParser(scheme, authorities...),
		clients:           clients,
		logger:            logger.With("scheme", scheme),
		deleteConcurrency: concurrency,
	}, nil
}

// Scheme returns the path scheme handled by the adapter.
func (f *FS) Scheme() string {
	return f.parser.Scheme()
}

// Parse normalizes raw into a Path.
func (f *FS) Parse(raw string) (storepath.Path, error) {
	p, err := f.parser.Parse(raw)
	if err != nil {
		return storepath.Path{}, errs.Translate("parse", raw, err)
	}
	return p, nil
}

// Root returns the root path of the default server.
func (f *FS) Root() storepath.Path {
	return storepath.Root(f.Scheme(), "")
}

// TranslateName returns the store key a path maps to. The root maps to "".
func (f *FS) TranslateName(raw string) (string, error) {
	p, err := f.Parse(raw)
	if err != nil {
		return "", err
	}
	return p.Key(), nil
}

// Close closes every client that holds connections.
func (f *FS) Close() error {
	var errList cerrors.M
	for _, name := range slices.Sorted(maps.Keys(f.clients)) {
		if closer, ok := f.clients[name].(store.Closer); ok {
			errList.Append(closer.Close())
		}
	}
	return errList.Err()
}

// target is a parsed path bound to the client serving it.
type target struct {
	path   storepath.Path
	client store.Client
}

func (t target) key() string    { return t.path.Key() }
func (t target) String() string { return t.path.String() }

// resolve parses raw and picks the client for its authority.
func (f *FS) resolve(op, raw string) (target, error) {
	p, err := f.parser.Parse(raw)
	if err != nil {
		return target{}, errs.Translate(op, raw, err)
	}
	return f.bind(p), nil
}

func (f *FS) bind(p storepath.Path) target {
	// Parse only accepts configured authorities, so the lookup cannot miss.
	return target{path: p, client: f.clients[p.Authority()]}
}

// fail translates err and logs store faults.
func (f *FS) fail(op string, t target, err error) error {
	err = errs.Translate(op, t.String(), err)
	switch errors.GetCode(err) {
	case errors.CodeStoreUnavailable, errors.CodeStoreProtocol:
		f.logger.Warn("store fault", "op", op, "path", t.String(), "error", err)
	}
	return err
}

// reject returns an adapter error with code for op on t.
func (f *FS) reject(op string, t target, code errors.ErrorCode) error {
	return errs.New(op, t.String(), code)
}

func (f *FS) debug(op string, t target, attrs ...any) {
	f.logger.Debug(op, append([]any{"path", t.String(), "key", t.key()}, attrs...)...)
}
