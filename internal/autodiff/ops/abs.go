package ops

import "github.com/born-ml/aqt/internal/tensor"

// AbsOp represents output = |x|.
//
// Backward: grad_x = outputGrad * sign(x). At x = 0 the subgradient 0 is used.
type AbsOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// NewAbsOp creates a new AbsOp.
func NewAbsOp(x, output *tensor.RawTensor) *AbsOp {
	return &AbsOp{input: x, output: output}
}

// Backward computes the input gradient.
func (op *AbsOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Mul(outputGrad, backend.Sign(op.input))}
}

// Inputs returns the input tensor [x].
func (op *AbsOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.input}
}

// Output returns the output tensor |x|.
func (op *AbsOp) Output() *tensor.RawTensor {
	return op.output
}
