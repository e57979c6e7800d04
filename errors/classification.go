package errors

// ErrorClassification indicates whether an error should trigger a retry.
type ErrorClassification string

const (
	// ClassificationRetryable indicates temporary failures that may succeed on retry.
	ClassificationRetryable ErrorClassification = "RETRYABLE"

	// ClassificationPermanent indicates failures that will not succeed on retry.
	ClassificationPermanent ErrorClassification = "PERMANENT"
)

// IsRetryable returns true if the classification indicates retry should be attempted.
func (c ErrorClassification) IsRetryable() bool {
	return c == ClassificationRetryable
}

// defaultClassifications maps error codes to their default classification.
// Only a transient store failure is worth retrying; everything else describes
// the state of the namespace or a malformed request.
var defaultClassifications = map[ErrorCode]ErrorClassification{
	CodeStoreUnavailable: ClassificationRetryable,

	CodeInvalidPath:       ClassificationPermanent,
	CodeNotFound:          ClassificationPermanent,
	CodeAlreadyExists:     ClassificationPermanent,
	CodeParentMissing:     ClassificationPermanent,
	CodeNotEmpty:          ClassificationPermanent,
	CodeNotADirectory:     ClassificationPermanent,
	CodeIsADirectory:      ClassificationPermanent,
	CodeSourceIsDirectory: ClassificationPermanent,
	CodeStoreProtocol:     ClassificationPermanent,
	CodeInvalidConfig:     ClassificationPermanent,
	CodeUnsupported:       ClassificationPermanent,
	CodeClosed:            ClassificationPermanent,
	CodeInternal:          ClassificationPermanent,
	CodeUnknown:           ClassificationPermanent,
}

// getDefaultClassification returns the default classification for an error code.
// Returns ClassificationPermanent if the code is not in the map (safe default).
func getDefaultClassification(code ErrorCode) ErrorClassification {
	if class, ok := defaultClassifications[code]; ok {
		return class
	}
	return ClassificationPermanent
}
