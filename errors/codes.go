package errors

// ErrorCode represents a specific error condition.
// Error codes are string-based for debuggability and natural JSON serialization.
type ErrorCode string

const (
	// Path errors.

	// CodeInvalidPath indicates a malformed path or a path with a missing or unknown scheme.
	CodeInvalidPath ErrorCode = "INVALID_PATH"

	// Resource errors.

	// CodeNotFound indicates the target path does not exist.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeAlreadyExists indicates a create conflicts with an existing entry.
	CodeAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// CodeParentMissing indicates a non-recursive create below a missing directory.
	CodeParentMissing ErrorCode = "PARENT_MISSING"

	// CodeNotEmpty indicates a directory still has children.
	CodeNotEmpty ErrorCode = "DIRECTORY_NOT_EMPTY"

	// Kind mismatch errors.

	// CodeNotADirectory indicates a directory operation was applied to a file.
	CodeNotADirectory ErrorCode = "NOT_A_DIRECTORY"

	// CodeIsADirectory indicates a file operation was applied to a directory.
	CodeIsADirectory ErrorCode = "IS_A_DIRECTORY"

	// CodeSourceIsDirectory indicates a copy source is a directory.
	CodeSourceIsDirectory ErrorCode = "SOURCE_IS_DIRECTORY"

	// Store errors.

	// CodeStoreUnavailable indicates a transient backing store failure.
	// Callers may retry with backoff; the adapter never retries on its own.
	CodeStoreUnavailable ErrorCode = "STORE_UNAVAILABLE"

	// CodeStoreProtocol indicates the backing store rejected a request as malformed
	// or failed in a way that will not succeed on retry.
	CodeStoreProtocol ErrorCode = "STORE_PROTOCOL"

	// Validation errors.

	// CodeInvalidConfig indicates a configuration error prevents the operation.
	CodeInvalidConfig ErrorCode = "INVALID_CONFIGURATION"

	// Stream errors.

	// CodeUnsupported indicates the operation is not supported by the adapter.
	CodeUnsupported ErrorCode = "UNSUPPORTED"

	// CodeClosed indicates an operation on a closed stream.
	CodeClosed ErrorCode = "CLOSED"

	// System errors.

	// CodeInternal indicates an internal error occurred.
	CodeInternal ErrorCode = "INTERNAL_ERROR"

	// Generic errors.

	// CodeUnknown indicates an unknown or unclassified error occurred.
	CodeUnknown ErrorCode = "UNKNOWN"
)
