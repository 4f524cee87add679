package ops

import "github.com/born-ml/aqt/internal/tensor"

// ClipOp represents output = clip(x, lo, hi).
//
// Backward: grad_x = outputGrad where lo <= x <= hi, and 0 where x was clipped.
// The bounds are closed: x == lo or x == hi receives the full gradient. A
// clip composed as min(max(x, lo), hi) with tie-splitting max/min would pass
// only half of it at those two points.
type ClipOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// NewClipOp creates a new ClipOp.
func NewClipOp(x, output *tensor.RawTensor) *ClipOp {
	return &ClipOp{input: x, output: output}
}

// Backward computes the input gradient.
func (op *ClipOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	// Elements left unchanged by the clip are exactly the in-range ones.
	inRange := backend.Equal(op.output, op.input)
	zeros := scalarOf(outputGrad.DType(), 0, backend)
	return []*tensor.RawTensor{backend.Where(inRange, outputGrad, zeros)}
}

// Inputs returns the input tensor [x].
func (op *ClipOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.input}
}

// Output returns the clipped tensor.
func (op *ClipOp) Output() *tensor.RawTensor {
	return op.output
}
