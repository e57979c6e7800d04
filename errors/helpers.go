package errors

import (
	stderrors "errors"
)

// Is reports whether any error in err's chain matches target. Adapter
// errors match the package sentinels by code and the io/fs sentinels by
// meaning, so both of these hold for a missing path:
//
//	errors.Is(err, errors.ErrNotFound)
//	errors.Is(err, fs.ErrNotExist)
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

// platform returns the outermost PlatformError in err's chain.
func platform(err error) (PlatformError, bool) {
	var platformErr PlatformError
	if err == nil || !stderrors.As(err, &platformErr) {
		return nil, false
	}
	return platformErr, true
}

// GetCode returns the code of the outermost PlatformError in err's chain,
// or CodeUnknown when there is none.
func GetCode(err error) ErrorCode {
	if platformErr, ok := platform(err); ok {
		return platformErr.Code()
	}
	return CodeUnknown
}

// GetClassification returns the classification of err, or
// ClassificationPermanent for nil and foreign errors.
func GetClassification(err error) ErrorClassification {
	if platformErr, ok := platform(err); ok {
		return platformErr.Classification()
	}
	return ClassificationPermanent
}

// IsRetryable reports whether repeating the failed operation may succeed.
// Only STORE_UNAVAILABLE is retryable. The adapter never retries on its
// own; callers own the retry policy:
//
//	for attempt := 0; attempt < 3; attempt++ {
//	    if err = fsys.RmTree(path); !errors.IsRetryable(err) {
//	        break
//	    }
//	    time.Sleep(backoff)
//	}
func IsRetryable(err error) bool {
	return GetClassification(err).IsRetryable()
}
