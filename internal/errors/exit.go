package errors

import "errors"

// Exit codes returned by the metro binary.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError = 1

	// ExitValidationError indicates configuration or input validation failed.
	ExitValidationError = 2

	// ExitConnectivityError indicates the dev server or artifact store was unreachable.
	ExitConnectivityError = 3

	// ExitNotFound indicates a file, bundle or artifact was not found.
	ExitNotFound = 5

	// ExitTransformError indicates at least one source file failed to transform.
	ExitTransformError = 7
)

// ExitError carries an exit code through cobra's RunE chain.
type ExitError struct {
	Code int
	Err  error
	// Printed reports that the error was already shown to the user.
	Printed bool
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	if e.Err == nil {
		return ExitCodeName(e.Code)
	}
	return e.Err.Error()
}

// Unwrap returns the wrapped error.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCodeFromError determines the exit code for an error.
func ExitCodeFromError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrProtocol):
		return ExitValidationError
	case errors.Is(err, ErrConnectivity):
		return ExitConnectivityError
	case errors.Is(err, ErrNotFound):
		return ExitNotFound
	case errors.Is(err, ErrTransform):
		return ExitTransformError
	default:
		return ExitGeneralError
	}
}

// ExitCodeName returns the name of the exit code.
func ExitCodeName(code int) string {
	switch code {
	case ExitSuccess:
		return "Success"
	case ExitGeneralError:
		return "General Error"
	case ExitValidationError:
		return "Validation Error"
	case ExitConnectivityError:
		return "Connectivity Error"
	case ExitNotFound:
		return "Not Found"
	case ExitTransformError:
		return "Transform Error"
	default:
		return "Unknown"
	}
}
