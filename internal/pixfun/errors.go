package pixfun

import (
	"errors"
	"strconv"
)

// Sentinel errors returned (wrapped in *Error) by the registry and the
// evaluation driver.  Match them with errors.Is.
var (
	// ErrUnknownFunction is returned when a name is not in the registry.
	ErrUnknownFunction = errors.New("pixfun: unknown function")
	// ErrArity is returned when the number of inputs is outside the
	// descriptor's bounds.
	ErrArity = errors.New("pixfun: wrong number of inputs")
	// ErrInvalidArgument is returned for missing, unknown, non-finite or
	// out-of-domain function arguments.
	ErrInvalidArgument = errors.New("pixfun: invalid argument")
	// ErrShapeMismatch is returned when input or destination buffers do not
	// share one geometry.
	ErrShapeMismatch = errors.New("pixfun: buffer shape mismatch")
	// ErrUnsupportedConversion is returned when the output type cannot hold
	// the function's natural result, e.g. a complex result in a real band.
	ErrUnsupportedConversion = errors.New("pixfun: unsupported output conversion")
	// ErrDuplicateFunction is returned when a name is registered twice.
	ErrDuplicateFunction = errors.New("pixfun: duplicate function")
	// ErrBadDescriptor is returned when a descriptor is incomplete.
	ErrBadDescriptor = errors.New("pixfun: malformed descriptor")
	// ErrReadOnly is returned when registering into a sealed registry.
	ErrReadOnly = errors.New("pixfun: registry is read-only")
)

// Error describes a failed registry or evaluation step.
type Error struct {
	Func   string // function name, empty if not known yet
	Op     string // resolve, register, arity, args, shape, convert
	Err    error  // one of the sentinel errors above
	Detail string
}

func (e *Error) Error() string {
	s := e.Err.Error()
	if e.Func != "" {
		s += " " + strconv.Quote(e.Func)
	}
	if e.Detail != "" {
		s += ": " + e.Detail
	}
	return s
}

func (e *Error) Unwrap() error { return e.Err }

func newError(fn, op string, err error, detail string) *Error {
	return &Error{Func: fn, Op: op, Err: err, Detail: detail}
}
