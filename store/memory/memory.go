// Package memory provides an in-process store.Client backed by a map.
// It is safe for concurrent use and intended for tests and embedding.
package memory

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/jmgilman/go/fs/storefs/store"
)

type object struct {
	data    []byte
	modTime time.Time
}

// Store is a map-backed store.Client.
type Store struct {
	mu      sync.RWMutex
	objects map[string]object
	now     func() time.Time
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		objects: make(map[string]object),
		now:     time.Now,
	}
}

func checkKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: empty key", store.ErrProtocol)
	}
	return nil
}

// Put stores a copy of data under key.
func (s *Store) Put(_ context.Context, key string, data []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.objects[key] = object{data: slices.Clone(data), modTime: s.now()}
	return nil
}

// Get returns a copy of the data stored under key.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("get %q: %w", key, store.ErrNotExist)
	}
	// Copy so callers cannot mutate stored content.
	data := make([]byte, len(obj.data))
	copy(data, obj.data)
	return data, nil
}

// Stat returns metadata for key.
func (s *Store) Stat(_ context.Context, key string) (store.ObjectInfo, error) {
	if err := checkKey(key); err != nil {
		return store.ObjectInfo{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.objects[key]
	if !ok {
		return store.ObjectInfo{}, fmt.Errorf("stat %q: %w", key, store.ErrNotExist)
	}
	return store.NewObjectInfo(key, int64(len(obj.data)), obj.modTime), nil
}

// Delete removes key. Absent keys are ignored.
func (s *Store) Delete(_ context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.objects, key)
	return nil
}

// ListPrefix returns the keys starting with prefix. The keys are collected
// when the sequence is first ranged; mutations made while ranging are not
// observed.
func (s *Store) ListPrefix(_ context.Context, prefix string) iter.Seq2[string, error] {
	return store.Once(func(yield func(string, error) bool) {
		for _, key := range s.keys(prefix) {
			if !yield(key, nil) {
				return
			}
		}
	})
}

func (s *Store) keys(prefix string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var keys []string
	for key := range s.objects {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys
}

// Len returns the number of stored objects.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

// Compile-time interface check.
var _ store.Client = (*Store)(nil)
