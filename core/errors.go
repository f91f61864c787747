package core

import (
	"github.com/pkg/errors"

	"github.com/trezcool/schoolrecords/core/query"
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		if len(err.Fields) > 0 {
			return err.Fields[0].Field + ": " + err.Fields[0].Error
		}
		return ""
	}
	return err.Err.Error()
}

func (err ValidationError) Unwrap() error { return err.Err }

// NewQueryError reports a rejected list parameter (*query.Error) as a ValidationError on
// that parameter. Other errors are returned untouched.
func NewQueryError(err error) error {
	var qErr *query.Error
	if errors.As(err, &qErr) {
		return NewValidationError(err, FieldError{Field: qErr.Param, Error: qErr.Msg})
	}
	return err
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
