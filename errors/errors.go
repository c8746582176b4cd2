package errors

import (
	"fmt"
	"reflect"

	"github.com/pkg/errors"
)

// Root errors shared by all extensions. Extensions register their own
// codes from 1000 up.
var (
	// ErrUnauthorized means a required signer is missing.
	ErrUnauthorized = Register(2, "unauthorized")
	// ErrNotFound means the referenced group, request or wallet is absent.
	ErrNotFound = Register(3, "not found")
	// ErrMsg means a message failed validation or cannot be routed.
	ErrMsg = Register(4, "invalid message")
	// ErrModel means a record failed validation before being persisted.
	ErrModel = Register(5, "invalid model")
	// ErrDuplicate means the key is taken.
	ErrDuplicate = Register(6, "duplicate")
	// ErrHuman marks a code path that a correct program never reaches.
	ErrHuman = Register(7, "coding error")
	// ErrImmutable means a write to a value that is set once.
	ErrImmutable = Register(8, "cannot be modified")
	ErrEmpty     = Register(9, "value is empty")
	ErrState     = Register(10, "invalid state")
	ErrType      = Register(11, "invalid type")
	ErrAmount    = Register(13, "invalid amount")
	ErrInput     = Register(14, "invalid input")
	ErrExpired   = Register(15, "expired")
	// ErrOverflow means a balance or counter would exceed uint64.
	ErrOverflow = Register(16, "an operation cannot be completed due to value overflow")
	// ErrDatabase means the underlying store failed.
	ErrDatabase = Register(17, "database")
	// ErrPanic is set by Recover. Redact hides it from clients.
	ErrPanic = Register(111222, "panic")
)

// Register declares a root error with a unique code. It panics when the
// code is taken, so call it from package level variables only.
func Register(code uint32, description string) *Error {
	if e, ok := registry[code]; ok {
		panic(fmt.Sprintf("error code %d already registered as %q", code, e.desc))
	}
	e := &Error{code: code, desc: description}
	registry[code] = e
	return e
}

// errInternal is reported for anything that does not wrap a root error.
var errInternal = &Error{code: 1, desc: "internal"}

var registry = map[uint32]*Error{1: errInternal}

// Error is a root error. Every error returned by a handler wraps one, which
// gives clients a stable code to match on.
type Error struct {
	code uint32
	desc string
}

func (e Error) Error() string {
	return e.desc
}

// Code returns the numeric code of this root error.
func (e Error) Code() uint32 {
	return e.code
}

// Newf wraps e with a formatted description.
func (e *Error) Newf(format string, args ...interface{}) error {
	return Wrapf(e, format, args...)
}

// Is returns true if err is e or wraps e. A nil root error matches only
// nil errors, including typed nil pointers.
func (e *Error) Is(err error) bool {
	if e == nil {
		if err == nil {
			return true
		}
		v := reflect.ValueOf(err)
		return v.Kind() == reflect.Ptr && v.IsNil()
	}
	for err != nil {
		if err == e {
			return true
		}
		c, ok := err.(causer)
		if !ok {
			return false
		}
		err = c.Cause()
	}
	return false
}

// Wrap adds a description to err. A nil err stays nil. The innermost wrap
// records a stack trace.
func Wrap(err error, description string) error {
	if err == nil {
		return nil
	}
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}
	return &wrapped{parent: err, msg: description}
}

// Wrapf is Wrap with a formatted description.
func Wrapf(err error, format string, args ...interface{}) error {
	return Wrap(err, fmt.Sprintf(format, args...))
}

type wrapped struct {
	msg    string
	parent error
}

func (w *wrapped) Error() string {
	return w.msg + ": " + w.parent.Error()
}

func (w *wrapped) Cause() error  { return w.parent }
func (w *wrapped) Unwrap() error { return w.parent }

// Format prints the stack trace for %+v.
func (w *wrapped) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') {
		fmt.Fprintf(s, "%s: %+v", w.msg, w.parent)
		return
	}
	fmt.Fprint(s, w.Error())
}

// Recover turns a panic into an ErrPanic assigned to err. Use it with defer.
func Recover(err *error) {
	if r := recover(); r != nil {
		*err = Wrapf(ErrPanic, "%v", r)
	}
}

// Code returns the code of the root error wrapped by err, 0 for nil and 1
// for errors that wrap no root error.
func Code(err error) uint32 {
	if err == nil {
		return 0
	}
	for {
		if e, ok := err.(*Error); ok {
			return e.code
		}
		c, ok := err.(causer)
		if !ok {
			return errInternal.code
		}
		err = c.Cause()
	}
}

// Redact replaces panics with the internal error so that no runtime
// details reach a client.
func Redact(err error) error {
	if ErrPanic.Is(err) {
		return errInternal
	}
	return err
}

type causer interface {
	Cause() error
}

// stackTrace returns the first stack trace found in the chain of err.
func stackTrace(err error) errors.StackTrace {
	for err != nil {
		if st, ok := err.(interface{ StackTrace() errors.StackTrace }); ok {
			return st.StackTrace()
		}
		c, ok := err.(causer)
		if !ok {
			return nil
		}
		err = c.Cause()
	}
	return nil
}
