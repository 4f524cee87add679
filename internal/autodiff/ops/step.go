package ops

import "github.com/born-ml/aqt/internal/tensor"

// StepOp records a piecewise-constant operation (floor, sign).
// Its derivative is zero almost everywhere, so grad_x = 0.
//
// Recording it keeps the gradient map explicit: the input receives a zero
// gradient rather than none at all.
type StepOp struct {
	name   string
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// NewFloorOp creates a StepOp for floor(x).
func NewFloorOp(x, output *tensor.RawTensor) *StepOp {
	return &StepOp{name: "floor", input: x, output: output}
}

// NewSignOp creates a StepOp for sign(x).
func NewSignOp(x, output *tensor.RawTensor) *StepOp {
	return &StepOp{name: "sign", input: x, output: output}
}

// Name returns the recorded operation name.
func (op *StepOp) Name() string {
	return op.name
}

// Backward returns a zero gradient shaped like the input.
func (op *StepOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{zerosLike(op.input.Shape(), outputGrad.DType(), backend)}
}

// Inputs returns the input tensor [x].
func (op *StepOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.input}
}

// Output returns the output tensor.
func (op *StepOp) Output() *tensor.RawTensor {
	return op.output
}
