package pipeline

import (
	"fmt"

	oerrors "github.com/expo/metro-core/internal/errors"
)

// FileError is a per-file failure that did not stop the run.
type FileError struct {
	// Path is the file path relative to the run root.
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// File returns the path of the failed file.
func (e *FileError) File() string { return e.Path }

// OptionsError reports unusable run options.
type OptionsError struct {
	Field   string
	Message string
}

func (e *OptionsError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *OptionsError) Unwrap() error { return oerrors.ErrValidation }
