package job

import (
	"errors"
	"fmt"
)

// Kind classifies a job failure.
type Kind int

const (
	InternalError Kind = iota
	NoInputProvided
	DecodeFailed
	ExtractionFailed
	GenerationFailed
	SynthesisFailed
)

func (k Kind) String() string {
	switch k {
	case NoInputProvided:
		return "NoInputProvided"
	case DecodeFailed:
		return "DecodeFailed"
	case ExtractionFailed:
		return "ExtractionFailed"
	case GenerationFailed:
		return "GenerationFailed"
	case SynthesisFailed:
		return "SynthesisFailed"
	default:
		return "InternalError"
	}
}

// Error is a classified job failure.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

// Errorf creates an Error without a cause.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies cause under kind. A nil cause yields nil.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	if cause == nil {
		return nil
	}
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// KindOf reports the Kind of err. Errors that were never classified
// are InternalError.
func KindOf(err error) Kind {
	var jobErr *Error
	if errors.As(err, &jobErr) {
		return jobErr.Kind
	}
	return InternalError
}
