// Package errors provides the error taxonomy shared by every storefs package.
//
// All adapter failures are PlatformErrors carrying a code from a fixed set,
// a retry classification, a message, optional context and an optional cause.
// The package stays compatible with the standard library (errors.Is,
// errors.As, errors.Unwrap) and with io/fs: an error with CodeNotFound
// satisfies errors.Is(err, fs.ErrNotExist).
//
// # Error Codes
//
//   - Path: CodeInvalidPath
//   - Namespace state: CodeNotFound, CodeAlreadyExists, CodeParentMissing, CodeNotEmpty
//   - Kind mismatch: CodeNotADirectory, CodeIsADirectory, CodeSourceIsDirectory
//   - Backing store: CodeStoreUnavailable (retryable), CodeStoreProtocol
//   - Other: CodeInvalidConfig, CodeUnsupported, CodeClosed, CodeInternal, CodeUnknown
//
// # Matching
//
// Each code has an exported sentinel. Matching against a sentinel compares
// codes only:
//
//	if errors.Is(err, errors.ErrParentMissing) {
//	    err = fsys.MakeDirs(parent)
//	}
//
// # Retries
//
// The adapter performs no retries. IsRetryable reports whether a caller may
// retry, which is true only for transient store failures:
//
//	if errors.IsRetryable(err) {
//	    time.Sleep(backoff)
//	}
//
// # JSON
//
// ToJSON renders any error as an ErrorResponse for machine-readable output.
package errors
