// Package cmdtypes provides shared types for the cmd package and its sub-packages.
// It is separate from internal/cmd to avoid import cycles between internal/cmd
// and its sub-packages (internal/cmd/transform, internal/cmd/export, ...).
package cmdtypes

import (
	"github.com/expo/metro-core/internal/config"
	oerrors "github.com/expo/metro-core/internal/errors"
)

// GlobalConfig holds CLI-wide configuration resolved during PersistentPreRunE.
// It is populated once at startup and passed explicitly into every sub-command
// constructor.
type GlobalConfig struct {
	// Config is metro.yaml merged with METRO_* env and defaults.
	Config *config.Config
	// ConfigPath is the resolved config file path, which may not exist.
	ConfigPath string
	// ProjectRoot is the absolute project root.
	ProjectRoot string
	Verbose     bool
}

// Exit codes, aliased from internal/errors.
const (
	ExitSuccess           = oerrors.ExitSuccess
	ExitGeneralError      = oerrors.ExitGeneralError
	ExitValidationError   = oerrors.ExitValidationError
	ExitConnectivityError = oerrors.ExitConnectivityError
	ExitNotFound          = oerrors.ExitNotFound
	ExitTransformError    = oerrors.ExitTransformError
)

// ExitError is a type alias to internal/errors.ExitError.
type ExitError = oerrors.ExitError

// ExitErrorFor wraps err with the exit code derived from its sentinels.
// A nil err stays nil.
func ExitErrorFor(err error) error {
	if err == nil {
		return nil
	}
	return &ExitError{Code: oerrors.ExitCodeFromError(err), Err: err}
}
