// Package store defines the backing-store client contract consumed by the
// storefs adapter.
//
// A store is a flat namespace of keys holding byte sequences. Clients are
// narrow, RPC-shaped facades: they never interpret directory semantics. The
// only hierarchy-related rule they know is the marker convention (a key
// ending in MarkerSuffix), and only to report it in ObjectInfo.IsMarker.
//
// Every operation may fail with ErrUnavailable (transient, safe to retry) or
// ErrProtocol (malformed request or permanent failure). Absent keys are
// reported with ErrNotExist. Implementations map their native faults onto
// these sentinels with one fixed table each. Retrying is left to the caller
// and to whatever the backend's transport is configured to do.
package store

import (
	"context"
	"errors"
	"iter"
	"path"
	"strings"
	"time"
)

// MarkerSuffix is appended to a key to form the key of its directory marker.
const MarkerSuffix = "/"

var (
	// ErrNotExist is returned when a key does not exist.
	ErrNotExist = errors.New("store: key does not exist")

	// ErrUnavailable is returned for transient failures (network, throttling,
	// server errors). Callers may retry with backoff.
	ErrUnavailable = errors.New("store: unavailable")

	// ErrProtocol is returned for malformed requests and other failures that
	// will not succeed on retry.
	ErrProtocol = errors.New("store: protocol error")
)

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	// Key is the full object key.
	Key string

	// Size is the content length in bytes.
	Size int64

	// ModTime is the last modification time reported by the store, if any.
	ModTime time.Time

	// IsMarker reports whether Key is a directory marker key.
	IsMarker bool
}

// Client is the capability set the adapter consumes.
type Client interface {
	// Put stores data under key, replacing any existing object. The object is
	// visible to other callers only once Put returns successfully.
	Put(ctx context.Context, key string, data []byte) error

	// Get returns the full content stored under key.
	Get(ctx context.Context, key string) ([]byte, error)

	// Stat returns metadata for key, or ErrNotExist.
	Stat(ctx context.Context, key string) (ObjectInfo, error)

	// Delete removes key. Deleting an absent key succeeds.
	Delete(ctx context.Context, key string) error

	// ListPrefix returns every key starting with prefix, in no particular
	// order. The sequence is lazy, finite and can be ranged over once;
	// stopping early releases any underlying resources.
	ListPrefix(ctx context.Context, prefix string) iter.Seq2[string, error]
}

// Closer is implemented by clients that hold connections.
type Closer interface {
	Close() error
}

// MarkerKey returns the directory marker key for key.
func MarkerKey(key string) string {
	return key + MarkerSuffix
}

// IsMarkerKey reports whether key is a directory marker key.
func IsMarkerKey(key string) bool {
	return strings.HasSuffix(key, MarkerSuffix)
}

// NewObjectInfo builds an ObjectInfo, deriving IsMarker from the key.
func NewObjectInfo(key string, size int64, modTime time.Time) ObjectInfo {
	return ObjectInfo{
		Key:      key,
		Size:     size,
		ModTime:  modTime,
		IsMarker: IsMarkerKey(key),
	}
}

// NormalizePrefix cleans a namespace prefix for backends that nest every key
// under it: backslashes become slashes, "." and ".." are resolved and
// surrounding slashes are removed. "" and "." yield "".
func NormalizePrefix(prefix string) string {
	prefix = strings.ReplaceAll(prefix, "\\", "/")
	prefix = strings.Trim(path.Clean("/"+prefix), "/")
	return prefix
}

// JoinPrefix returns key nested under prefix. An empty prefix returns key.
func JoinPrefix(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "/" + key
}
