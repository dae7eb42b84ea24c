package ffmpeg

import (
	"errors"
	"fmt"
)

// ErrEmptyOutput marks a zero exit that still produced no usable file.
var ErrEmptyOutput = errors.New("transcoder produced a missing or empty output file")

// ExecError is a non-zero transcoder exit with the captured stderr
// tail, kept for operator-side diagnostics.
type ExecError struct {
	Step    string
	ExitErr error
	Stderr  string
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("transcoder step %s failed: %v: %s", e.Step, e.ExitErr, e.Stderr)
}

func (e *ExecError) Unwrap() error {
	return e.ExitErr
}
