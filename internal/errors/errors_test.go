//nolint:revive // Package name matches the package it tests
package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelErrors(t *testing.T) {
	// Verify sentinel errors are distinct
	assert.NotEqual(t, ErrValidation, ErrConnectivity)
	assert.NotEqual(t, ErrValidation, ErrNotFound)
	assert.NotEqual(t, ErrTransform, ErrProtocol)
}

func TestDetailErrorError(t *testing.T) {
	detail := &DetailError{
		Type:     "validation failed",
		Message:  "invalid value",
		Location: "metro.yaml:12",
		Field:    "transform.concurrency",
		Context:  map[string]string{"Platform": "ios"},
		Hint:     "Use a positive integer",
	}

	output := detail.Error()

	assert.Contains(t, output, "Error: validation failed")
	assert.Contains(t, output, "Location: metro.yaml:12")
	assert.Contains(t, output, "Field: transform.concurrency")
	assert.Contains(t, output, "Platform: ios")
	assert.Contains(t, output, "invalid value")
	assert.Contains(t, output, "Hint: Use a positive integer")
}

func TestDetailErrorUnwrap(t *testing.T) {
	detail := &DetailError{
		Type:    "test",
		Message: "test message",
		Cause:   ErrValidation,
	}

	assert.True(t, errors.Is(detail, ErrValidation))
	assert.Equal(t, ErrValidation, detail.Unwrap())
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError(
		"invalid value",
		"metro.yaml:12",
		"transform.concurrency",
		"Use a positive integer",
	)

	require.NotNil(t, err)
	assert.True(t, errors.Is(err, ErrValidation))

	var detail *DetailError
	require.True(t, errors.As(err, &detail))
	assert.Equal(t, "validation failed", detail.Type)
	assert.Equal(t, "invalid value", detail.Message)
	assert.Equal(t, "metro.yaml:12", detail.Location)
	assert.Equal(t, "transform.concurrency", detail.Field)
	assert.Equal(t, "Use a positive integer", detail.Hint)
}

func TestWrap(t *testing.T) {
	wrapped := Wrap(ErrValidation, "schema check failed")

	assert.True(t, errors.Is(wrapped, ErrValidation))
	assert.Contains(t, wrapped.Error(), "schema check failed")
}

func TestNewTransformError(t *testing.T) {
	cause := errors.New("unexpected token")
	err := NewTransformError("src/App.tsx failed to transform", "src/App.tsx:3:4", "", cause)

	assert.True(t, errors.Is(err, ErrTransform))
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "Location: src/App.tsx:3:4")

	bare := NewTransformError("failed", "", "", nil)
	assert.True(t, errors.Is(bare, ErrTransform))
}

func TestNewConnectivityError(t *testing.T) {
	err := NewConnectivityError("request failed", map[string]string{"url": "http://x"}, "", context.DeadlineExceeded)

	assert.True(t, errors.Is(err, ErrConnectivity))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Contains(t, err.Error(), "url: http://x")
	assert.Equal(t, ExitConnectivityError, ExitCodeFromError(err))

	bare := NewConnectivityError("refused", nil, "", nil)
	assert.True(t, errors.Is(bare, ErrConnectivity))
}

func TestExitCodeFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"exit error", &ExitError{Code: ExitNotFound, Err: errors.New("x")}, ExitNotFound},
		{"wrapped exit error", fmt.Errorf("outer: %w", &ExitError{Code: ExitValidationError}), ExitValidationError},
		{"validation", Wrap(ErrValidation, "bad config"), ExitValidationError},
		{"protocol", Wrap(ErrProtocol, "bad payload"), ExitValidationError},
		{"connectivity", Wrap(ErrConnectivity, "dial"), ExitConnectivityError},
		{"not found", Wrap(ErrNotFound, "missing"), ExitNotFound},
		{"transform", Wrap(ErrTransform, "syntax"), ExitTransformError},
		{"other", errors.New("boom"), ExitGeneralError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCodeFromError(tt.err))
		})
	}
}

func TestExitCodeConstants(t *testing.T) {
	assert.Equal(t, 0, ExitSuccess)
	assert.Equal(t, 1, ExitGeneralError)
	assert.Equal(t, 2, ExitValidationError)
	assert.Equal(t, 3, ExitConnectivityError)
	assert.Equal(t, 5, ExitNotFound)
	assert.Equal(t, 7, ExitTransformError)
	assert.Equal(t, "Transform Error", ExitCodeName(ExitTransformError))
}
