package storetest

import (
	"context"
	"iter"
	"sync"

	"github.com/jmgilman/go/fs/storefs/store"
)

// Op names a store.Client operation for fault injection.
type Op string

// Operations that can be failed.
const (
	OpPut    Op = "put"
	OpGet    Op = "get"
	OpStat   Op = "stat"
	OpDelete Op = "delete"
	OpList   Op = "list"
)

// Faulty wraps a store.Client and fails selected operations.
// It also counts calls per operation. Faulty is safe for concurrent use.
type Faulty struct {
	store.Client

	mu     sync.Mutex
	faults map[Op][]fault
	calls  map[Op]int
}

type fault struct {
	err  error
	keys map[string]bool // nil means every key
}

// NewFaulty wraps c.
func NewFaulty(c store.Client) *Faulty {
	return &Faulty{
		Client: c,
		faults: make(map[Op][]fault),
		calls:  make(map[Op]int),
	}
}

// Fail makes op return err. When keys are given only those keys fail.
// Faults accumulate; the most recent one matching a key wins.
func (f *Faulty) Fail(op Op, err error, keys ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	flt := fault{err: err}
	if len(keys) > 0 {
		flt.keys = make(map[string]bool, len(keys))
		for _, k := range keys {
			flt.keys[k] = true
		}
	}
	f.faults[op] = append(f.faults[op], flt)
}

// Heal removes every injected fault.
func (f *Faulty) Heal() {
	f.mu.Lock()
	defer f.mu.Unlock()
	clear(f.faults)
}

// Calls returns how many times op was invoked.
func (f *Faulty) Calls(op Op) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

// ResetCalls zeroes every call counter.
func (f *Faulty) ResetCalls() {
	f.mu.Lock()
	defer f.mu.Unlock()
	clear(f.calls)
}

func (f *Faulty) check(op Op, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls[op]++
	faults := f.faults[op]
	for i := len(faults) - 1; i >= 0; i-- {
		if faults[i].keys == nil || faults[i].keys[key] {
			return faults[i].err
		}
	}
	return nil
}

// Put implements store.Client.
func (f *Faulty) Put(ctx context.Context, key string, data []byte) error {
	if err := f.check(OpPut, key); err != nil {
		return err
	}
	return f.Client.Put(ctx, key, data)
}

// Get implements store.Client.
func (f *Faulty) Get(ctx context.Context, key string) ([]byte, error) {
	if err := f.check(OpGet, key); err != nil {
		return nil, err
	}
	return f.Client.Get(ctx, key)
}

// Stat implements store.Client.
func (f *Faulty) Stat(ctx context.Context, key string) (store.ObjectInfo, error) {
	if err := f.check(OpStat, key); err != nil {
		return store.ObjectInfo{}, err
	}
	return f.Client.Stat(ctx, key)
}

// Delete implements store.Client.
func (f *Faulty) Delete(ctx context.Context, key string) error {
	if err := f.check(OpDelete, key); err != nil {
		return err
	}
	return f.Client.Delete(ctx, key)
}

// ListPrefix implements store.Client.
func (f *Faulty) ListPrefix(ctx context.Context, prefix string) iter.Seq2[string, error] {
	if err := f.check(OpList, prefix); err != nil {
		return store.Fail(err)
	}
	return f.Client.ListPrefix(ctx, prefix)
}

// Compile-time interface check.
var _ store.Client = (*Faulty)(nil)
