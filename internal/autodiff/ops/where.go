package ops

import "github.com/born-ml/aqt/internal/tensor"

// WhereOp represents output = where(condition, x, y).
//
// Backward pass:
//   - condition: no gradient
//   - grad_x = outputGrad where condition, else 0
//   - grad_y = outputGrad where !condition, else 0
type WhereOp struct {
	inputs []*tensor.RawTensor // [condition, x, y]
	output *tensor.RawTensor
}

// NewWhereOp creates a new WhereOp.
func NewWhereOp(condition, x, y, output *tensor.RawTensor) *WhereOp {
	return &WhereOp{
		inputs: []*tensor.RawTensor{condition, x, y},
		output: output,
	}
}

// Backward computes input gradients for selection.
func (op *WhereOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	cond, x, y := op.inputs[0], op.inputs[1], op.inputs[2]
	zeros := scalarOf(outputGrad.DType(), 0, backend)

	gradX := backend.Where(cond, outputGrad, zeros)
	gradY := backend.Where(cond, zeros, outputGrad)

	return []*tensor.RawTensor{
		nil,
		reduceBroadcast(gradX, x.Shape(), backend),
		reduceBroadcast(gradY, y.Shape(), backend),
	}
}

// Inputs returns the input tensors [condition, x, y].
func (op *WhereOp) Inputs() []*tensor.RawTensor {
	return op.inputs
}

// Output returns the selected tensor.
func (op *WhereOp) Output() *tensor.RawTensor {
	return op.output
}
