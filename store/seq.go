package store

import (
	"fmt"
	"iter"
	"sync/atomic"
)

// Once wraps seq so that it can be ranged over a single time. Later ranges
// yield one ErrProtocol error.
func Once(seq iter.Seq2[string, error]) iter.Seq2[string, error] {
	var used atomic.Bool
	return func(yield func(string, error) bool) {
		if used.Swap(true) {
			yield("", fmt.Errorf("%w: listing already consumed", ErrProtocol))
			return
		}
		seq(yield)
	}
}

// Keys returns a sequence over a fixed slice of keys.
func Keys(keys []string) iter.Seq2[string, error] {
	return Once(func(yield func(string, error) bool) {
		for _, key := range keys {
			if !yield(key, nil) {
				return
			}
		}
	})
}

// Fail returns a sequence yielding only err.
func Fail(err error) iter.Seq2[string, error] {
	return Once(func(yield func(string, error) bool) {
		yield("", err)
	})
}

// Collect drains seq into a slice, stopping at the first error.
func Collect(seq iter.Seq2[string, error]) ([]string, error) {
	var keys []string
	for key, err := range seq {
		if err != nil {
			return keys, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}
