package errors

// Sentinels for use with errors.Is. Matching is by code, so any error
// produced by the adapter with the same code satisfies errors.Is against
// the corresponding sentinel.
var (
	ErrInvalidPath       = New(CodeInvalidPath, "invalid path")
	ErrNotFound          = New(CodeNotFound, "not found")
	ErrAlreadyExists     = New(CodeAlreadyExists, "already exists")
	ErrParentMissing     = New(CodeParentMissing, "parent directory missing")
	ErrNotEmpty          = New(CodeNotEmpty, "directory not empty")
	ErrNotADirectory     = New(CodeNotADirectory, "not a directory")
	ErrIsADirectory      = New(CodeIsADirectory, "is a directory")
	ErrSourceIsDirectory = New(CodeSourceIsDirectory, "source is a directory")
	ErrStoreUnavailable  = New(CodeStoreUnavailable, "store unavailable")
	ErrStoreProtocol     = New(CodeStoreProtocol, "store protocol error")
	ErrInvalidConfig     = New(CodeInvalidConfig, "invalid configuration")
	ErrUnsupported       = New(CodeUnsupported, "operation not supported")
	ErrClosed            = New(CodeClosed, "stream closed")
)
