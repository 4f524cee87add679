package cpu

import (
	"github.com/born-ml/aqt/internal/tensor"
)

// Cast converts the tensor to a different data type.
//
// Float narrowing rounds to nearest. Conversions into Float16/BFloat16 go
// through float32. Casting to the same dtype returns a copy, never x itself,
// so callers always receive a tensor they own.
func (cpu *CPUBackend) Cast(x *tensor.RawTensor, dtype tensor.DataType) *tensor.RawTensor {
	if x.DType() == dtype {
		return x.Clone()
	}

	result := cpu.newResult("cast", x.Shape(), dtype)

	switch {
	case x.DType() == tensor.Float32 || isHalf(x.DType()):
		// float32 and half sources convert without widening to float64,
		// avoiding a double rounding into half targets.
		result.SetFloat32s(x.Float32s())
	default:
		result.SetFloat64s(x.Float64s())
	}

	return result
}

func isHalf(dt tensor.DataType) bool {
	return dt == tensor.Float16 || dt == tensor.BFloat16
}
