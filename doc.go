// Package storefs exposes a flat key/value object store through a
// hierarchical filesystem addressed by scheme-qualified paths such as
// "store://./data/file.txt".
//
// # Directories
//
// The backing store has no directories. A path is a directory when a
// zero-length marker object exists under its key plus "/" or when any key
// starts with its key plus "/". A path is a file when an object exists under
// its exact key; if both hold, the file wins. The root is always a
// directory. Markers are written by Mkdir and MakeDirs and removed by Remove
// and RmTree; writing a file never creates them, so the parent of a file
// must exist before the file is created.
//
// # Streams
//
// Write streams buffer every byte locally and store the whole object with a
// single put when closed (or when Sync is called). Nothing written is
// visible before that. Read streams fetch the whole object once on open.
//
// # Consistency
//
// Operations that need several store calls (MakeDirs, ListDir, RmTree, Copy,
// Rename) are not transactional. Concurrent mutations between the steps may
// be observed, and a failed multi-step operation leaves its partial progress
// in place. Every step is idempotent, so repeating the operation converges.
//
// # Errors
//
// Every error returned by FS is an errors.PlatformError carrying a code from
// the errors package together with the failing operation and path. Store
// faults are mapped by one fixed table; only STORE_UNAVAILABLE is retryable,
// and FS never retries on its own.
//
// Basic usage:
//
//	fsys, err := storefs.New(storefs.Config{Client: memory.New()})
//	if err != nil {
//	    return err
//	}
//	if err := fsys.WriteFile("store://./hello.txt", []byte("Hello,\nworld!")); err != nil {
//	    return err
//	}
//	data, err := fsys.ReadFile("store://./hello.txt")
package storefs
