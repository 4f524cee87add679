package ops

import (
	"fmt"

	"github.com/born-ml/aqt/internal/tensor"
)

// ScalarKind selects the scalar operation recorded by a ScalarOp.
type ScalarKind int

// Scalar operations.
const (
	ScalarAdd ScalarKind = iota // x + s
	ScalarMul                   // x * s
	ScalarDiv                   // x / s
)

// ScalarOp represents an element-wise operation between a tensor and a
// constant scalar.
//
// Backward pass:
//   - x + s: grad_x = outputGrad
//   - x * s: grad_x = outputGrad * s
//   - x / s: grad_x = outputGrad / s
type ScalarOp struct {
	kind   ScalarKind
	scalar float64
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// NewScalarOp creates a new ScalarOp.
func NewScalarOp(kind ScalarKind, x *tensor.RawTensor, scalar float64, output *tensor.RawTensor) *ScalarOp {
	return &ScalarOp{
		kind:   kind,
		scalar: scalar,
		input:  x,
		output: output,
	}
}

// Backward computes the input gradient.
func (op *ScalarOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	switch op.kind {
	case ScalarAdd:
		return []*tensor.RawTensor{outputGrad}
	case ScalarMul:
		return []*tensor.RawTensor{backend.MulScalar(outputGrad, op.scalar)}
	case ScalarDiv:
		return []*tensor.RawTensor{backend.DivScalar(outputGrad, op.scalar)}
	default:
		panic(fmt.Sprintf("scalar op: unknown kind %d", op.kind))
	}
}

// Inputs returns the input tensor [x].
func (op *ScalarOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.input}
}

// Output returns the output tensor.
func (op *ScalarOp) Output() *tensor.RawTensor {
	return op.output
}
