package ops

import "github.com/born-ml/aqt/internal/tensor"

// MaxDimsOp represents a max reduction over a set of axes.
//
// Forward:
//
//	y = max(x, dims, keepDim)
//
// Backward:
//
//	grad_x = broadcast(grad_y) * mask / count
//
// where mask marks the elements equal to their group's maximum and count is
// the number of such elements per group: tied maxima share the gradient
// evenly.
type MaxDimsOp struct {
	input   *tensor.RawTensor
	output  *tensor.RawTensor
	dims    []int
	keepDim bool
}

// NewMaxDimsOp creates a new MaxDimsOp.
func NewMaxDimsOp(x, output *tensor.RawTensor, dims []int, keepDim bool) *MaxDimsOp {
	return &MaxDimsOp{
		input:   x,
		output:  output,
		dims:    append([]int(nil), dims...),
		keepDim: keepDim,
	}
}

// Backward computes the input gradient.
func (op *MaxDimsOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	x := op.input
	keepShape := keepDimShape(x.Shape(), op.dims)

	maxVals := op.output
	grad := outputGrad
	if !op.keepDim {
		maxVals = backend.Reshape(maxVals, keepShape)
		grad = backend.Reshape(grad, keepShape)
	}

	mask := backend.Cast(backend.Equal(x, maxVals), x.DType())
	count := backend.SumDims(mask, op.dims, true)
	share := backend.Div(backend.Cast(grad, x.DType()), count)

	return []*tensor.RawTensor{backend.Mul(mask, share)}
}

// Inputs returns the input tensor [x].
func (op *MaxDimsOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.input}
}

// Output returns the reduced tensor.
func (op *MaxDimsOp) Output() *tensor.RawTensor {
	return op.output
}
