// Package errs maps backing store faults onto the adapter error taxonomy and
// attaches the operation and path that failed.
package errs

import (
	stderrors "errors"
	"fmt"

	"github.com/jmgilman/go/fs/storefs/errors"
	"github.com/jmgilman/go/fs/storefs/store"
)

// Context keys attached to every adapter error.
const (
	KeyOp   = "op"
	KeyPath = "path"
)

var messages = map[errors.ErrorCode]string{
	errors.CodeInvalidPath:       "invalid path",
	errors.CodeNotFound:          "no such file or directory",
	errors.CodeAlreadyExists:     "file exists",
	errors.CodeParentMissing:     "parent directory does not exist",
	errors.CodeNotEmpty:          "directory not empty",
	errors.CodeNotADirectory:     "not a directory",
	errors.CodeIsADirectory:      "is a directory",
	errors.CodeSourceIsDirectory: "source is a directory",
	errors.CodeStoreUnavailable:  "store unavailable",
	errors.CodeStoreProtocol:     "store protocol error",
	errors.CodeUnsupported:       "operation not supported",
	errors.CodeClosed:            "file already closed",
}

func message(op, path string, code errors.ErrorCode) string {
	text, ok := messages[code]
	if !ok {
		text = string(code)
	}
	return fmt.Sprintf("%s %s: %s", op, path, text)
}

func pathContext(op, path string) map[string]interface{} {
	return map[string]interface{}{KeyOp: op, KeyPath: path}
}

// New returns an adapter error with code for op on path.
func New(op, path string, code errors.ErrorCode) error {
	return errors.WithContextMap(errors.New(code, message(op, path, code)), pathContext(op, path))
}

// Translate converts err raised while performing op on path.
//
// Errors that already carry an adapter code keep it; op and path are only
// added when absent so the innermost failing operation is reported. Store
// faults map with one fixed table regardless of op:
//
//	store.ErrNotExist    -> NOT_FOUND
//	store.ErrUnavailable -> STORE_UNAVAILABLE
//	anything else        -> STORE_PROTOCOL
func Translate(op, path string, err error) error {
	if err == nil {
		return nil
	}

	var platformErr errors.PlatformError
	if stderrors.As(err, &platformErr) {
		ctx := platformErr.Context()
		if _, ok := ctx[KeyOp]; ok {
			return err
		}
		return errors.WithContextMap(err, pathContext(op, path))
	}

	code := Code(err)
	return errors.WrapWithContext(err, code, message(op, path, code), pathContext(op, path))
}

// Code returns the adapter code for a store fault. When err joins several
// faults, any fault that is neither unavailable nor not-found makes the whole
// error STORE_PROTOCOL, so a joined error is retryable only if every member
// is.
func Code(err error) errors.ErrorCode {
	var multi interface{ Unwrap() []error }
	if stderrors.As(err, &multi) {
		return joinedCode(multi.Unwrap())
	}
	switch {
	case stderrors.Is(err, store.ErrNotExist):
		return errors.CodeNotFound
	case stderrors.Is(err, store.ErrUnavailable):
		return errors.CodeStoreUnavailable
	default:
		return errors.CodeStoreProtocol
	}
}

func joinedCode(errs []error) errors.ErrorCode {
	code := errors.CodeNotFound
	for _, err := range errs {
		if err == nil {
			continue
		}
		switch Code(err) {
		case errors.CodeStoreProtocol:
			return errors.CodeStoreProtocol
		case errors.CodeStoreUnavailable:
			code = errors.CodeStoreUnavailable
		}
	}
	return code
}

// Op returns the operation recorded on err, if any.
func Op(err error) string {
	var platformErr errors.PlatformError
	if !stderrors.As(err, &platformErr) {
		return ""
	}
	op, _ := platformErr.Context()[KeyOp].(string)
	return op
}
