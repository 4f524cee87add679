package quant

import "fmt"

// MaxPrecision is the largest supported bit precision: the number of
// explicit mantissa bits of a float32.
const MaxPrecision = 23

// Mode selects how the quantization scale is obtained.
type Mode int

// Quantization modes.
const (
	// ModeDynamic computes the scale from each input tensor.
	ModeDynamic Mode = iota
	// ModeStatic calibrates the scale from accumulated statistics.
	// Reserved; configurations requesting it are rejected.
	ModeStatic
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeDynamic:
		return "dynamic"
	case ModeStatic:
		return "static"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Config is the immutable configuration of a TensorQuantizer.
//
// The zero Config is valid and disables quantization.
type Config struct {
	precision         int
	enabled           bool
	stopScaleGradient bool
	mode              Mode
}

// Bits returns a pointer to n, for use as the optional precision argument.
func Bits(n int) *int {
	return &n
}

// NewConfig validates and builds a dynamic-mode Config.
//
// A nil precision disables quantization. Otherwise precision must lie in
// [1, MaxPrecision]; violations return a *ConfigError.
//
// stopScaleGradient treats the scale as a constant during backpropagation.
// This is numerically convenient but not mathematically exact.
func NewConfig(precision *int, stopScaleGradient bool) (Config, error) {
	return NewConfigWithMode(precision, stopScaleGradient, ModeDynamic)
}

// NewConfigWithMode is NewConfig with an explicit Mode.
// Only ModeDynamic is implemented; ModeStatic returns ErrStaticUnsupported.
func NewConfigWithMode(precision *int, stopScaleGradient bool, mode Mode) (Config, error) {
	if mode != ModeDynamic {
		return Config{}, &ConfigError{Field: "mode", Value: mode, Err: ErrStaticUnsupported}
	}

	cfg := Config{stopScaleGradient: stopScaleGradient, mode: mode}
	if precision == nil {
		return cfg, nil
	}

	p := *precision
	switch {
	case p > MaxPrecision:
		return Config{}, &ConfigError{Field: "precision", Value: p, Err: ErrPrecisionTooLarge}
	case p < 1:
		return Config{}, &ConfigError{Field: "precision", Value: p, Err: ErrPrecisionNotPositive}
	}

	cfg.precision = p
	cfg.enabled = true
	return cfg, nil
}

// Precision returns the bit precision and whether quantization is enabled.
func (c Config) Precision() (int, bool) {
	return c.precision, c.enabled
}

// Enabled reports whether a precision is configured.
func (c Config) Enabled() bool {
	return c.enabled
}

// StopScaleGradient reports whether the scale is detached from the gradient graph.
func (c Config) StopScaleGradient() bool {
	return c.stopScaleGradient
}

// Mode returns the quantization mode.
func (c Config) Mode() Mode {
	return c.mode
}

// String returns a compact description for logs.
func (c Config) String() string {
	if !c.enabled {
		return "disabled"
	}
	return fmt.Sprintf("int%d(%s, stop_scale_gradient=%t)", c.precision, c.mode, c.stopScaleGradient)
}
