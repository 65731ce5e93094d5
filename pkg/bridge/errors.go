package bridge

import (
	"github.com/pkg/errors"
)

const (
	Undefined = ErrorKind(iota)
	InvalidArgument
	InvalidData
	Unknown
)

// ErrorKind classifies the failures of the bridge.
//   - InvalidArgument: malformed hex or argument text.
//   - InvalidData: well-formed values that don't satisfy their types.
//   - Unknown: unrecognized format selector.
type ErrorKind uint

func (k ErrorKind) String() string {
	switch k {
	case InvalidArgument:
		return "InvalidArgument"
	case InvalidData:
		return "InvalidData"
	case Unknown:
		return "Unknown"
	default:
		return "Undefined"
	}
}

type bridgeError struct {
	kind          ErrorKind
	originalError error
}

func (e bridgeError) Error() string {
	return e.originalError.Error()
}

func (e bridgeError) Unwrap() error {
	return e.originalError
}

func (e bridgeError) Cause() error {
	return e.originalError
}

func (k ErrorKind) New(msg string) error {
	return bridgeError{kind: k, originalError: errors.New(msg)}
}

func (k ErrorKind) Errorf(msg string, args ...interface{}) error {
	return bridgeError{kind: k, originalError: errors.Errorf(msg, args...)}
}

func (k ErrorKind) Wrap(err error, msg string) error {
	return bridgeError{kind: k, originalError: errors.Wrap(err, msg)}
}

func (k ErrorKind) Wrapf(err error, msg string, args ...interface{}) error {
	return bridgeError{kind: k, originalError: errors.Wrapf(err, msg, args...)}
}

// Tag attaches the kind to err without changing its message.
func (k ErrorKind) Tag(err error) error {
	return bridgeError{kind: k, originalError: err}
}

// GetErrorKind returns the kind of the first bridge error in the chain of err.
func GetErrorKind(err error) ErrorKind {
	var be bridgeError
	if errors.As(err, &be) {
		return be.kind
	}
	return Undefined
}
