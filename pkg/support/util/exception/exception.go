// Package exception provides the closed set of error kinds raised by the
// stockpost pipeline. Fatal kinds abort the whole run; recoverable kinds are
// logged by the raising stage and processing continues. Callers classify an
// error with KindOf rather than matching on message text.
package exception

import (
	"errors"
	"fmt"
	"runtime"
)

// Kind identifies one of the pipeline's error categories.
type Kind int

const (
	// KindUnknown is the zero value, returned by KindOf for foreign errors.
	KindUnknown Kind = iota
	// KindExcessFailureRate means an upgrade's simulation failure rate exceeded
	// the configured acceptable threshold. Fatal: the run's results cannot be
	// trusted.
	KindExcessFailureRate
	// KindSchemaIntegrity means an expected join key or column was absent,
	// or an upgrade table was empty after filtering. Fatal.
	KindSchemaIntegrity
	// KindAlignment means the surviving building-id sets of an upgrade and the
	// baseline diverged before savings computation. Fatal.
	KindAlignment
	// KindSegmentCoverage means at least one record matched none of the
	// segment rules. Fatal.
	KindSegmentCoverage
	// KindUndefinedScaleFactor means a building type's scaling weight could not
	// be computed (zero or missing simulated floor area). Recoverable: the
	// type is dropped from weighting with a warning.
	KindUndefinedScaleFactor
)

// String returns the kind's stable name, used in log lines and exit messages.
func (k Kind) String() string {
	switch k {
	case KindExcessFailureRate:
		return "ExcessFailureRate"
	case KindSchemaIntegrity:
		return "SchemaIntegrityError"
	case KindAlignment:
		return "AlignmentError"
	case KindSegmentCoverage:
		return "SegmentCoverageError"
	case KindUndefinedScaleFactor:
		return "UndefinedScaleFactor"
	default:
		return "Unknown"
	}
}

// Fatal reports whether errors of this kind abort the pipeline.
// A partially consolidated or partially weighted dataset is considered worse
// than no output, so every integrity kind is fatal.
func (k Kind) Fatal() bool {
	switch k {
	case KindExcessFailureRate, KindSchemaIntegrity, KindAlignment, KindSegmentCoverage:
		return true
	default:
		return false
	}
}

// PipelineError is the error type raised by pipeline stages.
// It carries the stage where the error occurred, a message, the wrapped
// original error, and the error kind used for exit routing.
type PipelineError struct {
	// Kind is the error category.
	Kind Kind
	// Stage indicates the stage where the error occurred (e.g. "registry",
	// "consolidate", "savings").
	Stage string
	// Message is a concise description of the error.
	Message string
	// OriginalErr is the wrapped original error, if any.
	OriginalErr error
	// StackTrace is the stack trace at the time of the error (for debugging).
	StackTrace string
}

// NewPipelineError creates a new PipelineError instance.
func NewPipelineError(kind Kind, stage, message string, originalErr error) *PipelineError {
	buf := make([]byte, 2048)
	n := runtime.Stack(buf, false)

	return &PipelineError{
		Kind:        kind,
		Stage:       stage,
		Message:     message,
		OriginalErr: originalErr,
		StackTrace:  string(buf[:n]),
	}
}

// Errorf creates a PipelineError with a formatted message.
func Errorf(kind Kind, stage, format string, v ...interface{}) *PipelineError {
	return NewPipelineError(kind, stage, fmt.Sprintf(format, v...), nil)
}

// Error implements the error interface.
func (e *PipelineError) Error() string {
	if e.OriginalErr != nil {
		return fmt.Sprintf("[%s] %s: %s: %v", e.Kind, e.Stage, e.Message, e.OriginalErr)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Kind, e.Stage, e.Message)
}

// Unwrap returns the wrapped original error, enabling errors.Is / errors.As.
func (e *PipelineError) Unwrap() error {
	return e.OriginalErr
}

// KindOf returns the Kind of err if it is (or wraps) a PipelineError,
// and KindUnknown otherwise.
func KindOf(err error) Kind {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindUnknown
}

// IsFatal reports whether err is a pipeline error whose kind aborts the run.
func IsFatal(err error) bool {
	return KindOf(err).Fatal()
}
