package analytics

import (
	"errors"
	"fmt"
)

// InsufficientDataError signals that too few valid data points survived a
// stage of the pipeline (preprocessing, feature training set, correlation
// alignment).
type InsufficientDataError struct {
	Stage  string
	Needed int
	Got    int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data for %s: need at least %d points, got %d", e.Stage, e.Needed, e.Got)
}

// NewInsufficientDataError creates an InsufficientDataError for a pipeline stage.
func NewInsufficientDataError(stage string, needed, got int) error {
	return &InsufficientDataError{Stage: stage, Needed: needed, Got: got}
}

// MissingColumnError signals that a required input field is absent.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("required column %q is missing from input", e.Column)
}

// UpstreamUnavailableError signals that the data-fetch collaborator returned
// nothing for a symbol.
type UpstreamUnavailableError struct {
	Symbol string
	Reason string
}

func (e *UpstreamUnavailableError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("no data available for %s: %s", e.Symbol, e.Reason)
	}
	return fmt.Sprintf("no data available for %s", e.Symbol)
}

// DegenerateInputError signals input that is structurally valid but
// numerically unusable, such as a non-positive current price or a
// zero-variance series.
type DegenerateInputError struct {
	Message string
}

func (e *DegenerateInputError) Error() string {
	return e.Message
}

// NewDegenerateInputErrorf creates a DegenerateInputError with a formatted message.
func NewDegenerateInputErrorf(format string, args ...interface{}) error {
	return &DegenerateInputError{Message: fmt.Sprintf(format, args...)}
}

// IsClientError reports whether err describes a problem with the request or
// its underlying data rather than an internal fault. Handlers map these to
// 4xx responses.
func IsClientError(err error) bool {
	var insufficient *InsufficientDataError
	var missing *MissingColumnError
	var degenerate *DegenerateInputError
	return errors.As(err, &insufficient) || errors.As(err, &missing) || errors.As(err, &degenerate)
}
