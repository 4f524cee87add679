package cpu

import (
	"fmt"

	"github.com/born-ml/aqt/internal/tensor"
)

// Equal compares a and b element-wise with broadcasting and returns a Bool tensor.
// Both operands must share a dtype.
func (cpu *CPUBackend) Equal(a, b *tensor.RawTensor) *tensor.RawTensor {
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("equal: dtype mismatch %s vs %s", a.DType(), b.DType()))
	}

	outShape, _, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("equal: %v", err))
	}
	result := cpu.newResult("equal", outShape, tensor.Bool)

	aData, bData := a.Float64s(), b.Float64s()
	ai := newBroadcastIndexer(a.Shape(), outShape)
	bi := newBroadcastIndexer(b.Shape(), outShape)

	dst := result.AsBool()
	for i := range dst {
		dst[i] = aData[ai.index(i)] == bData[bi.index(i)]
	}

	return result
}

// Where selects elements from x where condition is true and from y elsewhere.
// All three operands broadcast to a common shape; x and y must share a dtype.
//
// Example:
//
//	isZero := backend.Equal(scale, zeros)
//	safe := backend.Where(isZero, ones, scale)
func (cpu *CPUBackend) Where(condition, x, y *tensor.RawTensor) *tensor.RawTensor {
	if condition.DType() != tensor.Bool {
		panic(fmt.Sprintf("where: condition must be bool, got %s", condition.DType()))
	}
	if x.DType() != y.DType() {
		panic(fmt.Sprintf("where: dtype mismatch %s vs %s", x.DType(), y.DType()))
	}

	outShape, _, err := tensor.BroadcastShapes(x.Shape(), y.Shape())
	if err != nil {
		panic(fmt.Sprintf("where: %v", err))
	}
	outShape, _, err = tensor.BroadcastShapes(condition.Shape(), outShape)
	if err != nil {
		panic(fmt.Sprintf("where: %v", err))
	}
	result := cpu.newResult("where", outShape, x.DType())

	cond := condition.AsBool()
	xData, yData := x.Float64s(), y.Float64s()
	ci := newBroadcastIndexer(condition.Shape(), outShape)
	xi := newBroadcastIndexer(x.Shape(), outShape)
	yi := newBroadcastIndexer(y.Shape(), outShape)

	out := make([]float64, result.NumElements())
	for i := range out {
		if cond[ci.index(i)] {
			out[i] = xData[xi.index(i)]
		} else {
			out[i] = yData[yi.index(i)]
		}
	}
	result.SetFloat64s(out)

	return result
}
