package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
)

// AudioFile reports an upload that is empty, corrupt or cannot be decoded.
func AudioFile(message string) *AppError {
	return New(ErrCodeAudioFile, message, http.StatusBadRequest)
}

// AudioFormat reports an extension or container outside the supported set.
func AudioFormat(ext string, supported []string) *AppError {
	return New(ErrCodeAudioFormat,
		fmt.Sprintf("Unsupported format: %s. Supported formats: %s", ext, strings.Join(supported, ", ")),
		http.StatusBadRequest).
		WithDetail("format", ext)
}

// AudioSize reports an upload larger than the configured maximum.
func AudioSize(sizeMB, maxMB float64) *AppError {
	return New(ErrCodeAudioSize,
		fmt.Sprintf("File size (%.1fMB) exceeds maximum (%.0fMB)", sizeMB, maxMB),
		http.StatusRequestEntityTooLarge).
		WithDetail("size_mb", sizeMB).
		WithDetail("max_size_mb", maxMB)
}

// Diarization wraps a speaker diarization failure.
func Diarization(cause error) *AppError {
	return stageError(ErrCodeDiarization, "Diarization failed", cause)
}

// Transcription wraps a speech recognition failure.
func Transcription(cause error) *AppError {
	return stageError(ErrCodeTranscription, "Transcription failed", cause)
}

// Summarization wraps a summary generation failure.
func Summarization(cause error) *AppError {
	return stageError(ErrCodeSummarization, "Failed to generate summary", cause)
}

// ModelLoad reports a required backend that could not be made ready at startup.
func ModelLoad(backend string, cause error) *AppError {
	return New(ErrCodeModelLoad,
		fmt.Sprintf("Failed to load %s model", backend),
		http.StatusServiceUnavailable).
		WithCause(cause).
		WithDetail("backend", backend)
}

// Configuration reports every problem found while validating settings.
func Configuration(problems ...string) *AppError {
	return New(ErrCodeConfiguration,
		"Configuration errors: "+strings.Join(problems, "; "),
		http.StatusInternalServerError).
		WithDetail("problems", problems)
}

func stageError(code ErrorCode, prefix string, cause error) *AppError {
	msg := prefix
	if cause != nil {
		msg = prefix + ": " + causeMessage(cause)
	}
	return New(code, msg, http.StatusInternalServerError).WithCause(cause)
}

// causeMessage prefers the short message of a wrapped AppError so stage
// messages do not repeat error codes.
func causeMessage(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

// IsInputError reports whether err is a caller-fixable audio input problem
// other than the size limit.
func IsInputError(err error) bool {
	appErr, ok := AsAppError(err)
	if !ok {
		return false
	}
	switch appErr.Code {
	case ErrCodeAudioFile, ErrCodeAudioFormat, ErrCodeInvalidInput, ErrCodeMissingField:
		return true
	}
	return false
}

// IsStageError reports whether err came from one of the model-backed stages.
func IsStageError(err error) bool {
	return HasCode(err, ErrCodeDiarization) ||
		HasCode(err, ErrCodeTranscription) ||
		HasCode(err, ErrCodeSummarization)
}

// HasCode reports whether err is an AppError with the given code.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}
