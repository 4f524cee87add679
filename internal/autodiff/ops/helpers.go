package ops

import (
	"fmt"

	"github.com/born-ml/aqt/internal/tensor"
)

// reduceBroadcast reduces a gradient tensor to match the target shape.
// This is necessary when broadcasting was used in the forward pass.
//
// Example:
//
//	Forward: a[3,1] + b[3,4] -> c[3,4]  (a was broadcast along dim 1)
//	Backward: grad_c[3,4] -> grad_a[3,1] (sum along dim 1)
//
// A gradient smaller than the target (e.g. a scalar loss gradient) is
// broadcast up instead.
func reduceBroadcast(grad *tensor.RawTensor, targetShape tensor.Shape, backend tensor.Backend) *tensor.RawTensor {
	gradShape := grad.Shape()
	if gradShape.Equal(targetShape) {
		return grad
	}

	if grad.NumElements() < targetShape.NumElements() {
		return broadcastTo(grad, targetShape, backend)
	}

	// NumPy broadcasting aligns shapes from the right: sum away the
	// leading axes the target does not have.
	result := grad
	if extra := len(gradShape) - len(targetShape); extra > 0 {
		leading := make([]int, extra)
		for i := range leading {
			leading[i] = i
		}
		result = backend.SumDims(result, leading, false)
	}

	// Now sum along dimensions where target is 1.
	var ones []int
	for i, dim := range targetShape {
		if dim == 1 && result.Shape()[i] > 1 {
			ones = append(ones, i)
		}
	}
	if len(ones) > 0 {
		result = backend.SumDims(result, ones, true)
	}

	if !result.Shape().Equal(targetShape) {
		result = backend.Reshape(result, targetShape)
	}
	return result
}

// broadcastTo expands grad to shape by adding it to zeros of that shape.
func broadcastTo(grad *tensor.RawTensor, shape tensor.Shape, backend tensor.Backend) *tensor.RawTensor {
	return backend.Add(zerosLike(shape, grad.DType(), backend), grad)
}

// zerosLike allocates a zero tensor on the backend's device.
func zerosLike(shape tensor.Shape, dtype tensor.DataType, backend tensor.Backend) *tensor.RawTensor {
	zeros, err := tensor.NewRaw(shape, dtype, backend.Device())
	if err != nil {
		panic(fmt.Sprintf("autodiff: failed to create zeros: %v", err))
	}
	return zeros
}

// scalarOf allocates a 0-D tensor holding v on the backend's device.
func scalarOf(dtype tensor.DataType, v float64, backend tensor.Backend) *tensor.RawTensor {
	s, err := tensor.ScalarRaw(dtype, v, backend.Device())
	if err != nil {
		panic(fmt.Sprintf("autodiff: failed to create scalar: %v", err))
	}
	return s
}

// keepDimShape returns the shape of a reduction over axes with keepDim=true.
func keepDimShape(shape tensor.Shape, axes []int) tensor.Shape {
	normalized, err := shape.NormalizeAxes(axes)
	if err != nil {
		panic(fmt.Sprintf("autodiff: %v", err))
	}
	return shape.Reduced(normalized, true)
}
