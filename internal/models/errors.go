package models

import (
	"errors"
	"fmt"

	"github.com/transcodehub/transcodebot/pkg/utils"
)

var (
	// ErrBusy rejects inbound events while a session has a job in flight.
	ErrBusy = errors.New("a job is already in flight for this session")
	// ErrOverloaded rejects submissions once the global queue is full.
	ErrOverloaded = errors.New("job queue is full")
	// ErrInvalidOperation marks an operation kind the state machine
	// should have excluded.
	ErrInvalidOperation = errors.New("invalid operation kind")
	// ErrInternalFault marks an invariant violation.
	ErrInternalFault = errors.New("internal consistency fault")
	// ErrTranscodeFailed is the user-facing transcode failure; detail
	// stays in operator logs.
	ErrTranscodeFailed = errors.New("transcoding failed")
	// ErrTimedOut is reported when a job exceeded its deadline.
	ErrTimedOut = errors.New("transcoding timed out")
)

type ValidationKind string

const (
	ValidationUnsupportedFormat ValidationKind = "unsupported_format"
	ValidationSizeExceeded      ValidationKind = "size_exceeded"
	ValidationInvalidParameter  ValidationKind = "invalid_parameter"
)

// ValidationError is a user-correctable input error. It never changes
// session state.
type ValidationError struct {
	Kind   ValidationKind
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed (%s): %s", e.Kind, e.Detail)
}

func NewUnsupportedFormat(ext string) *ValidationError {
	if ext == "" {
		ext = "unknown"
	}
	return &ValidationError{
		Kind:   ValidationUnsupportedFormat,
		Detail: fmt.Sprintf("unsupported file format %q", ext),
	}
}

func NewSizeExceeded(size, limit int64) *ValidationError {
	return &ValidationError{
		Kind:   ValidationSizeExceeded,
		Detail: fmt.Sprintf("file size %s exceeds the %s limit", utils.FormatSize(size), utils.FormatSize(limit)),
	}
}

func NewInvalidParameter(detail string) *ValidationError {
	return &ValidationError{Kind: ValidationInvalidParameter, Detail: detail}
}

// AsValidation unwraps err into a ValidationError if it is one.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
