package common

import (
	"errors"

	"github.com/aws/smithy-go"
)

// APIError is an AWS service error reduced to its code and message.
// The SDK's own error text carries operation, status and request ID noise
// that is unhelpful in a one-line finding.
type APIError struct {
	Code    string
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return e.Code + ": " + e.Message
}

func (e *APIError) Unwrap() error { return e.Err }

// Simplify returns an *APIError when err wraps a smithy API error, and err
// unchanged otherwise.
func Simplify(err error) error {
	var ae smithy.APIError
	if !errors.As(err, &ae) {
		return err
	}
	return &APIError{Code: ae.ErrorCode(), Message: ae.ErrorMessage(), Err: err}
}
