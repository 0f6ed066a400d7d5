package errors

// ErrorCode is a machine-readable error classification.
type ErrorCode string

const (
	// ErrCodeInvalidInput covers malformed requests: missing or duplicated
	// audio source, unsupported container, unreadable audio.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField marks a required field that was not provided.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
	// ErrCodePayloadTooLarge marks an upload exceeding the size ceiling.
	ErrCodePayloadTooLarge ErrorCode = "PAYLOAD_TOO_LARGE"
	// ErrCodeRecognition marks a per-span recognition failure. Recoverable:
	// the pipeline degrades the span to an empty-text segment.
	ErrCodeRecognition ErrorCode = "RECOGNITION_FAILED"
	// ErrCodePostprocess marks a text post-processing failure. Recoverable:
	// the result omits processed_text.
	ErrCodePostprocess ErrorCode = "POSTPROCESS_FAILED"
	// ErrCodeTimeout marks a whole-request deadline expiry. The request
	// fails atomically, never with a truncated result.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeServiceUnavailable marks a model backend that is not loaded
	// or not reachable.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	// ErrCodeUnauthorized marks a rejected credential.
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	// ErrCodeInternal marks an unexpected failure.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// retryableCodes are transient by nature; clients may retry the request.
var retryableCodes = map[ErrorCode]bool{
	ErrCodeTimeout:            true,
	ErrCodeServiceUnavailable: true,
}

// IsRetryableCode reports whether an error code is considered retryable.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
