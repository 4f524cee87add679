// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides automatic differentiation capabilities.
//
// This package implements reverse-mode automatic differentiation (backpropagation)
// using a gradient tape. It wraps any backend to add autodiff capabilities.
//
// Example:
//
//	import (
//	    "github.com/born-ml/aqt/autodiff"
//	    "github.com/born-ml/aqt/backend/cpu"
//	    "github.com/born-ml/aqt/quant"
//	)
//
//	func main() {
//	    backend := autodiff.New(cpu.New())
//	    q := quant.New("act", cfg, backend)
//
//	    backend.Tape().StartRecording()
//	    y, _ := q.FakeQuant(x, []int{-1}, tensor.Float32)
//	    grads := autodiff.BackwardRaw(y, backend)
//	    dx := grads[x] // straight-through gradient
//	}
package autodiff

import (
	"github.com/born-ml/aqt/internal/autodiff"
	"github.com/born-ml/aqt/internal/tensor"
)

// Backend is the autodiff-enabled backend.
type Backend[B tensor.Backend] = autodiff.AutodiffBackend[B]

// New creates a new autodiff backend wrapping the given backend.
//
// Example:
//
//	base := cpu.New()
//	backend := autodiff.New(base)
func New[B tensor.Backend](backend B) *Backend[B] {
	return autodiff.New(backend)
}

// GradientTape records operations for automatic differentiation.
type GradientTape = autodiff.GradientTape

// NewGradientTape creates a new gradient tape.
func NewGradientTape() *GradientTape {
	return autodiff.NewGradientTape()
}

// BackwardCapable interface for backends that support backpropagation.
type BackwardCapable = autodiff.BackwardCapable

// Backward computes gradients via backpropagation.
func Backward[T tensor.DType, B BackwardCapable](t *tensor.Tensor[T, B], backend B) map[*tensor.RawTensor]*tensor.RawTensor {
	return autodiff.Backward(t, backend)
}

// BackwardRaw computes gradients of a raw output tensor, seeded with ones.
// Works for every float dtype, including float16 and bfloat16.
func BackwardRaw(output *tensor.RawTensor, backend BackwardCapable) map[*tensor.RawTensor]*tensor.RawTensor {
	return autodiff.BackwardRaw(output, backend)
}
