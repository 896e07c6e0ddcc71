package domain

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrNoFileUploaded     = errors.New("no file uploaded")
	ErrNoSelectedFile     = errors.New("no selected file")
	ErrExtractionNotFound = errors.New("extraction not found")
	ErrInvalidExtraction  = errors.New("invalid extraction id")
	ErrLayoutUnsupported  = errors.New("operation not supported by storage layout")
)

// FailureReason classifies why a document could not be extracted
type FailureReason string

const (
	ReasonCorrupt     FailureReason = "corrupt"
	ReasonEncrypted   FailureReason = "encrypted"
	ReasonUnsupported FailureReason = "unsupported"
	ReasonNoPages     FailureReason = "no_pages"
	ReasonTimeout     FailureReason = "timeout"
)

// ExtractionError is returned by a TextExtractor when the document cannot be read.
type ExtractionError struct {
	Reason FailureReason
	Page   int
	Cause  error
}

func (e *ExtractionError) Error() string {
	msg := "extraction failed: " + string(e.Reason)
	if e.Page > 0 {
		msg += fmt.Sprintf(" (page %d)", e.Page)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// NewExtractionError wraps cause with a failure reason
func NewExtractionError(reason FailureReason, cause error) *ExtractionError {
	return &ExtractionError{Reason: reason, Cause: cause}
}

// ReasonOf returns the failure reason carried by err, if any.
func ReasonOf(err error) (FailureReason, bool) {
	var ee *ExtractionError
	if errors.As(err, &ee) {
		return ee.Reason, true
	}
	return "", false
}
