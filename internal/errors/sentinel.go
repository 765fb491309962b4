package errors

import "errors"

// Sentinel errors for known conditions.
var (
	// ErrValidation indicates a configuration or schema validation failure.
	ErrValidation = errors.New("validation error")

	// ErrConnectivity indicates the dev server or artifact store could not be reached.
	ErrConnectivity = errors.New("connectivity error")

	// ErrNotFound indicates a file, bundle or artifact was not found.
	ErrNotFound = errors.New("not found")

	// ErrTransform indicates a source file failed to transform.
	ErrTransform = errors.New("transform error")

	// ErrProtocol indicates the dev server answered with a malformed payload.
	ErrProtocol = errors.New("protocol error")
)
