// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package quant provides the AQT simulated tensor quantizer.
//
// A TensorQuantizer maps floating-point tensors onto a symmetric signed
// integer grid of a configurable bit width and back (fake quantization).
// Gradients flow through the rounding step unchanged (straight-through
// estimator) when the quantizer runs on an autodiff backend.
//
// Example:
//
//	backend := cpu.New()
//	cfg, err := quant.NewConfig(quant.Bits(8), false)
//	if err != nil {
//	    return err
//	}
//	q := quant.New("weights", cfg, backend)
//	fq, err := q.FakeQuant(w, []int{0}, tensor.Float32)
package quant

import (
	"github.com/born-ml/aqt/internal/quant"
	"github.com/born-ml/aqt/internal/tensor"
)

// MaxPrecision is the largest supported bit width (float32 mantissa bits).
const MaxPrecision = quant.MaxPrecision

// Config is a validated quantization configuration.
type Config = quant.Config

// Mode selects how quantization statistics are collected.
type Mode = quant.Mode

// Quantization modes.
const (
	ModeDynamic = quant.ModeDynamic
	ModeStatic  = quant.ModeStatic
)

// Params is the serializable form of a quantization configuration.
type Params = quant.Params

// WeightParams configures weight quantization.
type WeightParams = quant.WeightParams

// ActParams configures activation quantization.
type ActParams = quant.ActParams

// TensorQuantizer quantizes tensors on backend B.
type TensorQuantizer[B tensor.Backend] = quant.TensorQuantizer[B]

// StatisticsUpdater is implemented by quantizers that accumulate statistics.
type StatisticsUpdater = quant.StatisticsUpdater

// ConfigError reports an invalid configuration field.
type ConfigError = quant.ConfigError

// Errors returned by this package.
var (
	ErrPrecisionTooLarge    = quant.ErrPrecisionTooLarge
	ErrPrecisionNotPositive = quant.ErrPrecisionNotPositive
	ErrStaticUnsupported    = quant.ErrStaticUnsupported
	ErrUnsupportedDType     = quant.ErrUnsupportedDType
	ErrAxisOutOfRange       = quant.ErrAxisOutOfRange
)

// Bits returns a pointer to n, for use as a Config precision.
func Bits(n int) *int {
	return quant.Bits(n)
}

// NewConfig validates a dynamic-mode configuration.
// A nil precision disables quantization.
func NewConfig(precision *int, stopScaleGradient bool) (Config, error) {
	return quant.NewConfig(precision, stopScaleGradient)
}

// NewConfigWithMode validates a configuration with an explicit mode.
func NewConfigWithMode(precision *int, stopScaleGradient bool, mode Mode) (Config, error) {
	return quant.NewConfigWithMode(precision, stopScaleGradient, mode)
}

// New creates a quantizer bound to backend.
func New[B tensor.Backend](name string, cfg Config, backend B) *TensorQuantizer[B] {
	return quant.New(name, cfg, backend)
}

// FromParams validates p and creates a quantizer. A nil p yields a disabled quantizer.
func FromParams[B tensor.Backend](name string, p *Params, backend B) (*TensorQuantizer[B], error) {
	return quant.FromParams(name, p, backend)
}

// ClipBound returns the largest magnitude of the signed grid, (2^p - 1) / 2.
func ClipBound(precision int) float64 {
	return quant.ClipBound(precision)
}

// SafeClipBound returns ClipBound shrunk by a small epsilon so rounding never
// leaves the grid.
func SafeClipBound(precision int) float64 {
	return quant.SafeClipBound(precision)
}

// PassThrough applies fn in the forward pass and the identity in the backward
// pass (straight-through estimator).
func PassThrough(b tensor.Backend, x *tensor.RawTensor, fn func(*tensor.RawTensor) *tensor.RawTensor) *tensor.RawTensor {
	return quant.PassThrough(b, x, fn)
}
