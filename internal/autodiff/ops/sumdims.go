package ops

import "github.com/born-ml/aqt/internal/tensor"

// SumDimsOp represents a sum reduction over a set of axes.
//
// Backward: grad_x = broadcast(grad_y, x.shape). Each input element
// contributes 1.0 to its group's sum, so the gradient is simply broadcast back.
type SumDimsOp struct {
	input   *tensor.RawTensor
	output  *tensor.RawTensor
	dims    []int
	keepDim bool
}

// NewSumDimsOp creates a new SumDimsOp.
func NewSumDimsOp(x, output *tensor.RawTensor, dims []int, keepDim bool) *SumDimsOp {
	return &SumDimsOp{
		input:   x,
		output:  output,
		dims:    append([]int(nil), dims...),
		keepDim: keepDim,
	}
}

// Backward computes the input gradient.
func (op *SumDimsOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	x := op.input
	grad := outputGrad
	if !op.keepDim {
		grad = backend.Reshape(grad, keepDimShape(x.Shape(), op.dims))
	}
	return []*tensor.RawTensor{broadcastTo(grad, x.Shape(), backend)}
}

// Inputs returns the input tensor [x].
func (op *SumDimsOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.input}
}

// Output returns the reduced tensor.
func (op *SumDimsOp) Output() *tensor.RawTensor {
	return op.output
}
