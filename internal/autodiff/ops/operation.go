// Package ops defines operation interfaces and implementations for automatic differentiation.
//
// Each operation implements the Operation interface, which provides:
//   - Forward pass: computed by the backend
//   - Backward pass: computes gradients for inputs given output gradient
//
// Supported operations:
//   - AddOp, SubOp, MulOp, DivOp: element-wise arithmetic with broadcasting
//   - ScalarOp: x+s, x*s, x/s
//   - AbsOp: d|x|/dx = sign(x)
//   - FloorOp, SignOp: piecewise constant, zero gradient
//   - ClipOp: gradient passes where lo <= x <= hi, zero elsewhere
//   - WhereOp: gradient routed to the selected branch
//   - MaxDimsOp: gradient split evenly between tied maxima
//   - SumDimsOp: gradient broadcast back over reduced axes
//   - CastOp, ReshapeOp: gradient converted back to the input dtype/shape
package ops

import "github.com/born-ml/aqt/internal/tensor"

// Operation represents a differentiable operation in the computation graph.
// Each operation records its inputs and output during the forward pass,
// and computes input gradients during the backward pass.
type Operation interface {
	// Backward computes gradients for inputs given the output gradient.
	// Returns a slice of gradients corresponding to each input tensor.
	// A nil entry means no gradient flows to that input.
	//
	// Example for AddOp:
	//   inputs: [a, b]
	//   outputGrad: dL/d(a+b)
	//   returns: [dL/d(a+b), dL/d(a+b)] (gradient flows equally to both inputs)
	Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor

	// Inputs returns the input tensors for this operation.
	Inputs() []*tensor.RawTensor

	// Output returns the output tensor produced by this operation.
	Output() *tensor.RawTensor
}
