// Package lodiserr defines the behavioral error kinds shared by every
// layer of lodis: the collection engines, the dispatcher, and the frame
// codec all report failures as one of these sentinels, wrapped with
// fmt.Errorf("%w") the way the teacher wraps repository errors.
package lodiserr

import "errors"

var (
	// ErrStore is returned when the underlying store.Store reports a
	// failure (I/O, corruption, etc.) that lodis itself cannot interpret.
	ErrStore = errors.New("store error")

	// ErrShapeMismatch means a decode found a stored value of unexpected
	// length for its role: an invariant was violated upstream.
	ErrShapeMismatch = errors.New("stored value has unexpected shape")

	// ErrOutOfRange means List.SetByAbsIndex targeted a slot outside the
	// live window.
	ErrOutOfRange = errors.New("index out of range")

	// ErrNotNumeric means an increase targeted a value that is not a
	// parseable signed decimal integer.
	ErrNotNumeric = errors.New("value is not numeric")

	// ErrParseFrame means request framing was invalid (truncated length
	// prefix, length running past the body, etc.).
	ErrParseFrame = errors.New("malformed parameter frame")

	// ErrParamMismatch means a command received the wrong number of
	// parameters.
	ErrParamMismatch = errors.New("parameter count mismatch")

	// ErrParamType means a command parameter could not be interpreted as
	// the type the command requires.
	ErrParamType = errors.New("parameter type mismatch")
)
