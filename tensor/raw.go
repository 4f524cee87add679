// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/aqt/internal/tensor"
)

// RawTensor is the low-level tensor representation.
//
// RawTensor provides:
//   - Shape and type information via Shape(), DType(), Device()
//   - Zero-copy typed access via AsFloat32(), AsInt64(), etc.
//   - Converting access via Float32s()/Float64s() for any dtype
//   - Stop-gradient views via Detach()
//
// Example:
//
//	raw, _ := tensor.NewRaw(tensor.Shape{2, 3}, tensor.BFloat16, tensor.CPU)
//	raw.SetFloat32s([]float32{1, 2, 3, 4, 5, 6})
//	values := raw.Float32s()
type RawTensor = tensor.RawTensor

// NewRaw creates a new zero-filled raw tensor with the given shape, dtype, and device.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype, device)
}

// FromBytes creates a raw tensor holding a copy of little-endian element bytes.
func FromBytes(data []byte, shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	return tensor.FromBytes(data, shape, dtype, device)
}

// FullRaw creates a raw tensor of any dtype filled with value.
func FullRaw(shape Shape, dtype DataType, value float64, device Device) (*RawTensor, error) {
	return tensor.FullRaw(shape, dtype, value, device)
}
