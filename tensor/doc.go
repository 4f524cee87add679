// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public tensor types of the AQT runtime.
//
// # Overview
//
// Tensors are byte-backed buffers with a shape and a runtime data type.
// This package provides:
//   - Generic type-safe tensors (Tensor[T, B])
//   - Low-level RawTensor for dtypes without a Go scalar (float16, bfloat16)
//   - The Backend interface that compute backends implement
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/aqt/backend/cpu"
//	    "github.com/born-ml/aqt/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    x, _ := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, backend)
//	    scale := backend.MaxDims(backend.Abs(x.Raw()), []int{-1}, true)
//	}
//
// # Supported Data Types
//
//   - float32, float64, float16, bfloat16 (floating-point)
//   - int32, int64 (signed integers)
//   - uint8 (unsigned integers)
//   - bool (boolean masks)
//
// Half-precision tensors are computed in float32 and rounded on store.
package tensor
