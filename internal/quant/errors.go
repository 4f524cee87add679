package quant

import (
	"errors"
	"fmt"

	"github.com/born-ml/aqt/internal/tensor"
)

// Common errors.
var (
	ErrPrecisionTooLarge    = errors.New("too many bits, float32 has less precision")
	ErrPrecisionNotPositive = errors.New("precision must be positive")
	ErrStaticUnsupported    = errors.New("static quantization is not supported")
	ErrUnsupportedDType     = errors.New("unsupported dtype")
	ErrAxisOutOfRange       = tensor.ErrAxisOutOfRange
)

// ConfigError reports an invalid quantizer configuration.
type ConfigError struct {
	Field string // Configuration field (e.g., "precision")
	Value any    // Rejected value
	Err   error  // Underlying sentinel error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("quant: invalid %s %v: %v", e.Field, e.Value, e.Err)
}

// Unwrap returns the underlying sentinel so errors.Is works.
func (e *ConfigError) Unwrap() error {
	return e.Err
}
