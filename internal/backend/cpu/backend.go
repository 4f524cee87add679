// Package cpu implements the CPU backend.
//
// Float32 and Float64 tensors are processed natively. Float16 and BFloat16
// tensors are widened to float32, computed, and rounded back on store, so
// every operation rounds once to the output dtype.
package cpu

import (
	"fmt"

	"github.com/born-ml/aqt/internal/parallel"
	"github.com/born-ml/aqt/internal/tensor"
)

// CPUBackend implements tensor operations on CPU.
// It holds no mutable state and is safe for concurrent use.
type CPUBackend struct {
	device tensor.Device
	par    parallel.Config
}

// New creates a new CPU backend with the default parallel configuration.
func New() *CPUBackend {
	return NewWithConfig(parallel.DefaultConfig())
}

// NewWithConfig creates a CPU backend with an explicit parallel configuration.
func NewWithConfig(cfg parallel.Config) *CPUBackend {
	return &CPUBackend{
		device: tensor.CPU,
		par:    cfg,
	}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (cpu *CPUBackend) Device() tensor.Device {
	return cpu.device
}

// Reshape returns a copy of x with a new shape holding the same number of elements.
func (cpu *CPUBackend) Reshape(x *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor {
	if shape.NumElements() != x.NumElements() {
		panic(fmt.Sprintf("reshape: cannot reshape %v (%d elements) to %v (%d elements)",
			x.Shape(), x.NumElements(), shape, shape.NumElements()))
	}
	result, err := tensor.FromBytes(x.Data(), shape, x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("reshape: %v", err))
	}
	return result
}

// newResult allocates an output tensor, panicking on invalid shapes.
func (cpu *CPUBackend) newResult(op string, shape tensor.Shape, dtype tensor.DataType) *tensor.RawTensor {
	result, err := tensor.NewRaw(shape, dtype, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("%s: failed to create result tensor: %v", op, err))
	}
	return result
}

// mustFloat panics unless x holds floating-point data.
func mustFloat(op string, x *tensor.RawTensor) {
	if !x.DType().IsFloat() {
		panic(fmt.Sprintf("%s: unsupported dtype %s (float types only)", op, x.DType()))
	}
}
