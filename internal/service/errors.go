package service

import (
	"errors"
	"fmt"
)

// ── Extraction errors ─────────────────────────────────

var (
	ErrEmptyDocument      = errors.New("no extractable text in document")
	ErrPasswordProtected  = errors.New("document is password protected")
	ErrParserUnavailable  = errors.New("pdf parser unavailable")
	ErrParseFailed        = errors.New("failed to parse document")
	ErrReadFailed         = errors.New("failed to read file")
	ErrFileTooLarge       = errors.New("file exceeds upload limit")
	ErrPlaceholderContent = errors.New("resume text is a placeholder for an unsupported file")
)

// UserMessage converts an extraction error into the message shown to the candidate.
// Every extraction failure can be worked around by pasting the text manually.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrPasswordProtected):
		return "PDF is password protected. Please remove the password or copy-paste text."
	case errors.Is(err, ErrEmptyDocument):
		return "No text found in PDF. It might be an image scan."
	case errors.Is(err, ErrParserUnavailable):
		return "PDF Parser could not be initialized. Please copy-paste your resume text."
	case errors.Is(err, ErrParseFailed):
		return "Failed to parse PDF. Please copy-paste the text content."
	case errors.Is(err, ErrFileTooLarge):
		return "File too large. Please upload a smaller file or copy-paste the text content."
	case errors.Is(err, ErrPlaceholderContent):
		return "This file type could not be read automatically. Please copy-paste the text content."
	default:
		return "Error reading file."
	}
}

// ── Feedback errors ───────────────────────────────────

const feedbackFailedMessage = "Failed to generate feedback report. The session might have been too short or unclear."

// RequestFailedError reports a failed feedback request.
// Error() never includes the provider or parse error; use Unwrap for logging.
type RequestFailedError struct {
	Stage string
	Cause error
}

func (e *RequestFailedError) Error() string {
	return feedbackFailedMessage
}

func (e *RequestFailedError) Unwrap() error {
	return e.Cause
}

// LogString describes the failure with its cause, for server-side logs only
func (e *RequestFailedError) LogString() string {
	return fmt.Sprintf("feedback request failed at %s: %v", e.Stage, e.Cause)
}

func requestFailed(stage string, cause error) error {
	return &RequestFailedError{Stage: stage, Cause: cause}
}
