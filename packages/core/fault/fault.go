package fault

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is a coarse-grained categorization for errors.
type Kind string

const (
	// Validation marks input the caller supplied that can never succeed:
	// bad request names, unknown methods, malformed JSON bodies, negative
	// timeouts.
	Validation Kind = "validation"
	// Configuration marks references to things that do not exist, such as
	// an unknown environment or saved request name.
	Configuration Kind = "configuration"
	// Network marks transport failures: timeouts, DNS errors, refused
	// connections. HTTP error statuses are not failures and never carry
	// this kind.
	Network Kind = "network"
	// Storage marks persistence failures: unreadable, unwritable, or
	// corrupt backing files.
	Storage Kind = "storage"
)

// Error wraps a failure with operation context and a kind so callers can
// classify it without string matching.
type Error struct {
	Op        string
	Kind      Kind
	Msg       string
	Available []string // alternatives to a missing reference, when known
	Err       error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}

	base := e.Msg
	if e.Op != "" {
		base = e.Op + ": " + base
	}
	if len(e.Available) > 0 {
		base += fmt.Sprintf(" (available: %s)", strings.Join(e.Available, ", "))
	}
	if e.Err != nil {
		base += fmt.Sprintf(": %v", e.Err)
	}
	return base
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Validationf reports invalid caller input.
func Validationf(op, format string, args ...any) *Error {
	return &Error{Op: op, Kind: Validation, Msg: fmt.Sprintf(format, args...)}
}

// Configurationf reports a reference to something that does not exist.
// available lists the names that do exist; it may be empty.
func Configurationf(op string, available []string, format string, args ...any) *Error {
	return &Error{Op: op, Kind: Configuration, Msg: fmt.Sprintf(format, args...), Available: available}
}

// Networkf reports a transport failure, wrapping its cause.
func Networkf(op string, err error, format string, args ...any) *Error {
	return &Error{Op: op, Kind: Network, Msg: fmt.Sprintf(format, args...), Err: err}
}

// Storagef reports a persistence failure, wrapping its cause.
func Storagef(op string, err error, format string, args ...any) *Error {
	return &Error{Op: op, Kind: Storage, Msg: fmt.Sprintf(format, args...), Err: err}
}

// IsKind reports whether err is (or wraps) an Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind == kind
	}
	return false
}

// KindOf returns the kind of err, or the empty string when err carries none.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}

// AvailableOf returns the alternatives attached to err, when any.
func AvailableOf(err error) []string {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Available
	}
	return nil
}
