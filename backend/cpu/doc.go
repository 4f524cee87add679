// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides a pure Go CPU backend for tensor operations.
//
// # Overview
//
// This package implements a CPU backend with:
//   - Pure Go implementation (no CGO)
//   - Float32, Float64, Float16 and BFloat16 support
//   - NumPy-compatible broadcasting
//   - Chunked parallel element-wise loops for large tensors
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/aqt/backend/cpu"
//	    "github.com/born-ml/aqt/quant"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    cfg, _ := quant.NewConfig(quant.Bits(8), false)
//	    q := quant.New("weights", cfg, backend)
//	}
//
// # Thread Safety
//
// The CPU backend is safe for concurrent use. Each tensor operation
// is isolated and does not share mutable state.
package cpu
