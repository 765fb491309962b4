package config

import (
	"fmt"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cueyaml "cuelang.org/go/encoding/yaml"

	oerrors "github.com/expo/metro-core/internal/errors"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Unwrap returns ErrValidation.
func (e *ValidationError) Unwrap() error { return oerrors.ErrValidation }

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}

	var sb strings.Builder
	sb.WriteString("config validation failed:\n")
	for _, err := range e {
		sb.WriteString("  " + err.Error() + "\n")
	}
	return sb.String()
}

// Unwrap returns ErrValidation.
func (e ValidationErrors) Unwrap() error { return oerrors.ErrValidation }

// Validator validates configuration against the embedded CUE schema.
type Validator struct {
	ctx    *cue.Context
	schema cue.Value
}

// NewValidator creates a new configuration validator.
func NewValidator() (*Validator, error) {
	ctx := cuecontext.New()

	root := ctx.CompileBytes(configSchemaCUE, cue.Filename("config.cue"))
	if root.Err() != nil {
		return nil, fmt.Errorf("compiling schema: %w", root.Err())
	}
	schema := root.LookupPath(cue.ParsePath("#Config"))
	if !schema.Exists() {
		return nil, fmt.Errorf("schema has no #Config definition")
	}

	return &Validator{ctx: ctx, schema: schema}, nil
}

// Validate validates a loaded configuration.
func (v *Validator) Validate(cfg *Config) error {
	val := v.ctx.Encode(cfg)
	if val.Err() != nil {
		return fmt.Errorf("encoding config: %w", val.Err())
	}
	return v.check(val)
}

// ValidateBytes validates raw metro.yaml content. filename is used in
// error positions.
func (v *Validator) ValidateBytes(filename string, data []byte) error {
	file, err := cueyaml.Extract(filename, data)
	if err != nil {
		return ValidationErrors{{Message: "invalid YAML: " + err.Error()}}
	}
	val := v.ctx.BuildFile(file)
	if val.Err() != nil {
		return collect(val.Err())
	}
	return v.check(val)
}

// ValidateFile validates the config file at path.
func (v *Validator) ValidateFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return oerrors.NewNotFoundError("config file not found", path, "run 'metro config init' to create one")
		}
		return fmt.Errorf("reading config file: %w", err)
	}
	return v.ValidateBytes(path, data)
}

func (v *Validator) check(val cue.Value) error {
	unified := v.schema.Unify(val)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return collect(err)
	}
	return nil
}

// collect turns CUE errors into field errors. Unification reports the same
// conflict once per disjunct and conjunct, so duplicates are dropped.
func collect(err error) error {
	var errs ValidationErrors
	seen := map[ValidationError]bool{}
	for _, e := range cueerrors.Errors(err) {
		format, args := e.Msg()
		ve := ValidationError{
			Field:   fieldPath(e.Path()),
			Message: fmt.Sprintf(format, args...),
		}
		if seen[ve] {
			continue
		}
		seen[ve] = true
		errs = append(errs, ve)
	}
	if len(errs) == 0 {
		return ValidationErrors{{Message: err.Error()}}
	}
	return errs
}

// fieldPath joins a CUE error path without the schema definition selectors
// it starts with: ["#Config", "transform", "platform"] is transform.platform.
func fieldPath(path []string) string {
	for len(path) > 0 && strings.HasPrefix(path[0], "#") {
		path = path[1:]
	}
	return strings.Join(path, ".")
}
