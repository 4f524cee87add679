package cpu

import (
	"fmt"
	"math"

	"github.com/born-ml/aqt/internal/tensor"
)

// MaxDims computes the maximum over the given axes.
//
// Parameters:
//   - dims: axes to reduce (negative indexing allowed; empty = all axes)
//   - keepDim: if true, keep reduced axes with size 1; if false, remove them
//
// NaN propagates. Panics if an axis is out of range.
//
// Example:
//
//	x: [2, 3, 4]
//	backend.MaxDims(x, []int{-1}, true)    // shape: [2, 3, 1]
//	backend.MaxDims(x, []int{0, 2}, false) // shape: [3]
func (cpu *CPUBackend) MaxDims(x *tensor.RawTensor, dims []int, keepDim bool) *tensor.RawTensor {
	return cpu.reduce("maxdims", x, dims, keepDim, math.Inf(-1), func(acc, v float64) float64 {
		return max(acc, v)
	})
}

// SumDims sums over the given axes, accumulating in float64.
// Same axis and keepDim conventions as MaxDims.
func (cpu *CPUBackend) SumDims(x *tensor.RawTensor, dims []int, keepDim bool) *tensor.RawTensor {
	return cpu.reduce("sumdims", x, dims, keepDim, 0, func(acc, v float64) float64 {
		return acc + v
	})
}

func (cpu *CPUBackend) reduce(
	op string,
	x *tensor.RawTensor,
	dims []int,
	keepDim bool,
	init float64,
	combine func(acc, v float64) float64,
) *tensor.RawTensor {
	mustFloat(op, x)

	shape := x.Shape()
	axes, err := shape.NormalizeAxes(dims)
	if err != nil {
		panic(fmt.Sprintf("%s: %v", op, err))
	}

	keepShape := shape.Reduced(axes, true)
	outShape := keepShape
	if !keepDim {
		outShape = shape.Reduced(axes, false)
	}
	result := cpu.newResult(op, outShape, x.DType())

	// Output stride per input axis; reduced axes contribute nothing.
	reduced := make([]bool, len(shape))
	for _, a := range axes {
		reduced[a] = true
	}
	keepStrides := keepShape.ComputeStrides()
	outStride := make([]int, len(shape))
	for d := range shape {
		if !reduced[d] {
			outStride[d] = keepStrides[d]
		}
	}

	acc := make([]float64, result.NumElements())
	for i := range acc {
		acc[i] = init
	}

	src := x.Float64s()
	coords := make([]int, len(shape))
	outIdx := 0
	for _, v := range src {
		acc[outIdx] = combine(acc[outIdx], v)

		// Advance the row-major coordinate counter.
		for d := len(shape) - 1; d >= 0; d-- {
			coords[d]++
			outIdx += outStride[d]
			if coords[d] < shape[d] {
				break
			}
			outIdx -= coords[d] * outStride[d]
			coords[d] = 0
		}
	}

	result.SetFloat64s(acc)
	return result
}
