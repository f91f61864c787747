package query

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrInvalidQuery is the root cause of every rejected list parameter.
var ErrInvalidQuery = errors.New("invalid query")

// Error tells which query-string parameter was rejected and why.
type Error struct {
	Param string
	Msg   string
}

func newError(param, format string, args ...interface{}) *Error {
	return &Error{Param: param, Msg: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Is(target error) bool { return target == ErrInvalidQuery }
