package ops

import "github.com/born-ml/aqt/internal/tensor"

// CastOp records a dtype conversion.
//
// Backward: grad_x = cast(outputGrad, x.dtype). Casting between float types
// is treated as the identity for differentiation; casts to non-float types
// carry no gradient.
type CastOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// NewCastOp creates a new CastOp.
func NewCastOp(x, output *tensor.RawTensor) *CastOp {
	return &CastOp{input: x, output: output}
}

// Backward computes the input gradient.
func (op *CastOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	if !op.input.DType().IsFloat() || !op.output.DType().IsFloat() {
		return []*tensor.RawTensor{nil}
	}
	if outputGrad.DType() == op.input.DType() {
		return []*tensor.RawTensor{outputGrad}
	}
	return []*tensor.RawTensor{backend.Cast(outputGrad, op.input.DType())}
}

// Inputs returns the input tensor [x].
func (op *CastOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.input}
}

// Output returns the converted tensor.
func (op *CastOp) Output() *tensor.RawTensor {
	return op.output
}
