package dispatch

import "errors"

var (
	// ErrConfiguration indicates a registration-time failure: malformed
	// filter or formatter, bad dedup window, unknown reference. The
	// registry is left unchanged.
	ErrConfiguration = errors.New("configuration error")

	// ErrUnhandled is returned by Dispatch in strict mode when no binding
	// in the resolved pipeline matched the record.
	ErrUnhandled = errors.New("record matched no binding")

	// ErrClosed indicates an operation on a closed Dispatcher.
	ErrClosed = errors.New("dispatcher closed")
)
