package errors

// PlatformError extends the standard error interface with structured information.
//
// Every error the adapter returns to its callers is a PlatformError: the code
// names the condition from the adapter taxonomy, the classification tells the
// caller whether retrying can help, and the context carries the operation and
// path that failed.
type PlatformError interface {
	error

	// Code returns the error code identifying the type of error.
	Code() ErrorCode

	// Classification returns whether the error is retryable or permanent.
	Classification() ErrorClassification

	// Message returns the human-readable error message.
	Message() string

	// Context returns attached metadata as a read-only map.
	// Returns nil if no context has been attached.
	Context() map[string]interface{}

	// Unwrap returns the wrapped error for errors.Is and errors.As compatibility.
	// Returns nil if this error does not wrap another error.
	Unwrap() error
}
