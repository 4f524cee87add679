// Package autodiff implements automatic differentiation using the decorator pattern.
//
// AutodiffBackend wraps any Backend implementation and adds gradient
// tracking capabilities through a GradientTape.
//
// Architecture:
//   - Decorator pattern: AutodiffBackend[B] wraps any Backend implementation
//   - GradientTape: Records operations during forward pass
//   - Operation interface: Each op implements its backward pass
//   - Reverse-mode AD: Computes gradients using the chain rule
//
// Tensors are identified by pointer. RawTensor.Detach produces a new identity
// the tape has never seen, which is how stop-gradient is expressed.
//
// Usage:
//
//	backend := autodiff.New(cpu.New())
//	backend.Tape().StartRecording()
//	x, _ := tensor.FromSlice([]float32{2.0}, tensor.Shape{1}, backend)
//	y := backend.Mul(x.Raw(), x.Raw()) // y = x²
//	grads := autodiff.BackwardRaw(y, backend)
//	fmt.Println(grads[x.Raw()]) // dy/dx = 2x = 4.0
//
// An AutodiffBackend owns a mutable tape and is not safe for concurrent use.
package autodiff

import (
	"github.com/born-ml/aqt/internal/autodiff/ops"
	"github.com/born-ml/aqt/internal/tensor"
)

// AutodiffBackend wraps a Backend and adds automatic differentiation.
// It implements the tensor.Backend interface and records operations in a GradientTape.
//
// Type parameter B must satisfy the tensor.Backend interface.
type AutodiffBackend[B tensor.Backend] struct {
	inner B             // Wrapped backend
	tape  *GradientTape // Records operations for backpropagation
}

// New creates a new AutodiffBackend wrapping the given backend.
func New[B tensor.Backend](backend B) *AutodiffBackend[B] {
	return &AutodiffBackend[B]{
		inner: backend,
		tape:  NewGradientTape(),
	}
}

// Tape returns the gradient tape for manual control.
// Useful for:
//   - Starting/stopping recording
//   - Clearing tape between iterations
//   - Inspecting recorded operations
func (b *AutodiffBackend[B]) Tape() *GradientTape {
	return b.tape
}

// Inner returns the wrapped backend for direct access.
func (b *AutodiffBackend[B]) Inner() B {
	return b.inner
}

// Name returns the backend name.
func (b *AutodiffBackend[B]) Name() string {
	return "Autodiff(" + b.inner.Name() + ")"
}

// Device returns the compute device.
func (b *AutodiffBackend[B]) Device() tensor.Device {
	return b.inner.Device()
}

// record appends op to the tape when recording.
func (b *AutodiffBackend[B]) record(op ops.Operation) {
	if b.tape.IsRecording() {
		b.tape.Record(op)
	}
}

// Add performs element-wise addition and records the operation.
func (b *AutodiffBackend[B]) Add(a, c *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Add(a, c)
	b.record(ops.NewAddOp(a, c, result))
	return result
}

// Sub performs element-wise subtraction and records the operation.
func (b *AutodiffBackend[B]) Sub(a, c *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Sub(a, c)
	b.record(ops.NewSubOp(a, c, result))
	return result
}

// Mul performs element-wise multiplication and records the operation.
func (b *AutodiffBackend[B]) Mul(a, c *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Mul(a, c)
	b.record(ops.NewMulOp(a, c, result))
	return result
}

// Div performs element-wise division and records the operation.
func (b *AutodiffBackend[B]) Div(a, c *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Div(a, c)
	b.record(ops.NewDivOp(a, c, result))
	return result
}

// AddScalar adds a scalar and records the operation.
func (b *AutodiffBackend[B]) AddScalar(x *tensor.RawTensor, scalar float64) *tensor.RawTensor {
	result := b.inner.AddScalar(x, scalar)
	b.record(ops.NewScalarOp(ops.ScalarAdd, x, scalar, result))
	return result
}

// MulScalar multiplies by a scalar and records the operation.
func (b *AutodiffBackend[B]) MulScalar(x *tensor.RawTensor, scalar float64) *tensor.RawTensor {
	result := b.inner.MulScalar(x, scalar)
	b.record(ops.NewScalarOp(ops.ScalarMul, x, scalar, result))
	return result
}

// DivScalar divides by a scalar and records the operation.
func (b *AutodiffBackend[B]) DivScalar(x *tensor.RawTensor, scalar float64) *tensor.RawTensor {
	result := b.inner.DivScalar(x, scalar)
	b.record(ops.NewScalarOp(ops.ScalarDiv, x, scalar, result))
	return result
}

// Abs computes |x| and records the operation.
func (b *AutodiffBackend[B]) Abs(x *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Abs(x)
	b.record(ops.NewAbsOp(x, result))
	return result
}

// Sign computes sign(x) and records the operation.
func (b *AutodiffBackend[B]) Sign(x *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Sign(x)
	b.record(ops.NewSignOp(x, result))
	return result
}

// Floor computes floor(x) and records the operation.
func (b *AutodiffBackend[B]) Floor(x *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Floor(x)
	b.record(ops.NewFloorOp(x, result))
	return result
}

// Clip limits x to [lo, hi] and records the operation.
func (b *AutodiffBackend[B]) Clip(x *tensor.RawTensor, lo, hi float64) *tensor.RawTensor {
	result := b.inner.Clip(x, lo, hi)
	b.record(ops.NewClipOp(x, result))
	return result
}

// Equal compares a and c element-wise.
// The result is boolean and not differentiable, so nothing is recorded.
func (b *AutodiffBackend[B]) Equal(a, c *tensor.RawTensor) *tensor.RawTensor {
	return b.inner.Equal(a, c)
}

// Where selects between x and y and records the operation.
func (b *AutodiffBackend[B]) Where(condition, x, y *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Where(condition, x, y)
	b.record(ops.NewWhereOp(condition, x, y, result))
	return result
}

// MaxDims reduces with max over dims and records the operation.
func (b *AutodiffBackend[B]) MaxDims(x *tensor.RawTensor, dims []int, keepDim bool) *tensor.RawTensor {
	result := b.inner.MaxDims(x, dims, keepDim)
	b.record(ops.NewMaxDimsOp(x, result, dims, keepDim))
	return result
}

// SumDims reduces with sum over dims and records the operation.
func (b *AutodiffBackend[B]) SumDims(x *tensor.RawTensor, dims []int, keepDim bool) *tensor.RawTensor {
	result := b.inner.SumDims(x, dims, keepDim)
	b.record(ops.NewSumDimsOp(x, result, dims, keepDim))
	return result
}

// Reshape changes the shape of x and records the operation.
func (b *AutodiffBackend[B]) Reshape(x *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor {
	result := b.inner.Reshape(x, shape)
	b.record(ops.NewReshapeOp(x, result))
	return result
}

// Cast converts x to dtype and records the operation.
func (b *AutodiffBackend[B]) Cast(x *tensor.RawTensor, dtype tensor.DataType) *tensor.RawTensor {
	result := b.inner.Cast(x, dtype)
	b.record(ops.NewCastOp(x, result))
	return result
}
