package pipeline

import (
	"errors"
	"fmt"

	"vidshrink/internal/encoder"
	"vidshrink/internal/metrics"
	"vidshrink/internal/util/deps"
)

// EncodeError reports an encoder run that exited non-zero or left no usable
// output. Stderr is kept verbatim for the user.
type EncodeError struct {
	ExitCode int
	Stderr   string
	Reason   string
}

func (e *EncodeError) Error() string {
	return "encoder failed: " + e.Reason
}

// IOError reports a temp-file operation that failed before or after encoding.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// Outcome classifies err into a metrics outcome label.
func Outcome(err error) string {
	var (
		ve *encoder.ValidationError
		ue *deps.UnavailableError
		ee *EncodeError
	)
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.As(err, &ve):
		return metrics.OutcomeValidationError
	case errors.As(err, &ue):
		return metrics.OutcomeEncoderUnavailable
	case errors.As(err, &ee):
		return metrics.OutcomeEncodeFailure
	default:
		return metrics.OutcomeIOError
	}
}
