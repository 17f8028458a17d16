package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Availability errors (retryable)
const (
	// ErrCodeServiceUnavailable indicates a backend is temporarily unavailable.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	// ErrCodeConnectionFailed indicates a failed connection to a backend.
	ErrCodeConnectionFailed ErrorCode = "CONNECTION_FAILED"
	// ErrCodeTimeout indicates the request timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeRateLimited indicates the client is rate limited.
	ErrCodeRateLimited ErrorCode = "RATE_LIMITED"
)

// Request errors
const (
	// ErrCodeInvalidInput indicates a request parameter is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField indicates a required field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
	// ErrCodeUnauthorized indicates the request carries no valid credentials.
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
)

// Audio input errors
const (
	// ErrCodeAudioFile indicates the uploaded audio is empty, corrupt or unreadable.
	ErrCodeAudioFile ErrorCode = "AUDIO_FILE_INVALID"
	// ErrCodeAudioFormat indicates the container or extension is not supported.
	ErrCodeAudioFormat ErrorCode = "AUDIO_FORMAT_UNSUPPORTED"
	// ErrCodeAudioSize indicates the upload exceeds the configured ceiling.
	ErrCodeAudioSize ErrorCode = "AUDIO_TOO_LARGE"
)

// Pipeline stage errors
const (
	// ErrCodeDiarization indicates the speaker diarization stage failed.
	ErrCodeDiarization ErrorCode = "DIARIZATION_FAILED"
	// ErrCodeTranscription indicates the speech recognition stage failed.
	ErrCodeTranscription ErrorCode = "TRANSCRIPTION_FAILED"
	// ErrCodeSummarization indicates the summary stage failed.
	ErrCodeSummarization ErrorCode = "SUMMARIZATION_FAILED"
)

// Startup errors
const (
	// ErrCodeModelLoad indicates a required backend could not be made ready.
	ErrCodeModelLoad ErrorCode = "MODEL_LOAD_FAILED"
	// ErrCodeConfiguration indicates missing credentials or invalid settings.
	ErrCodeConfiguration ErrorCode = "CONFIGURATION_INVALID"
)

// Internal errors
const (
	// ErrCodeInternal indicates an unclassified internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
	// ErrCodeExternalService indicates an error reported by a backend.
	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeServiceUnavailable: true,
	ErrCodeConnectionFailed:   true,
	ErrCodeTimeout:            true,
	ErrCodeRateLimited:        true,
	ErrCodeExternalService:    true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
