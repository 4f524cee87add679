// Package tensor provides the core tensor types used by the AQT quantization runtime.
package tensor

import "math"

// DType is a constraint for tensor element types that have a native Go representation.
// Half-precision tensors (Float16, BFloat16) have no Go scalar type and are
// accessed through RawTensor.
type DType interface {
	~float32 | ~float64 | ~int32 | ~int64 | ~uint8 | ~bool
}

// DataType represents runtime type information for tensors.
type DataType int

// Supported data types for tensors.
const (
	Float32 DataType = iota
	Float64
	Int32
	Int64
	Uint8
	Bool
	Float16
	BFloat16
)

// Size returns the byte size of the data type.
func (dt DataType) Size() int {
	switch dt {
	case Float32, Int32:
		return 4
	case Float64, Int64:
		return 8
	case Float16, BFloat16:
		return 2
	case Uint8, Bool:
		return 1
	default:
		panic("unknown data type")
	}
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Float16:
		return "float16"
	case BFloat16:
		return "bfloat16"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Uint8:
		return "uint8"
	case Bool:
		return "bool"
	default:
		return "unknown"
	}
}

// IsFloat reports whether the data type is a floating-point type.
func (dt DataType) IsFloat() bool {
	switch dt {
	case Float32, Float64, Float16, BFloat16:
		return true
	default:
		return false
	}
}

// Eps returns the machine epsilon of a floating-point type: the difference
// between 1.0 and the next representable value.
// Panics for non-float types.
func (dt DataType) Eps() float64 {
	switch dt {
	case Float32:
		return math.Ldexp(1, -23)
	case Float64:
		return math.Ldexp(1, -52)
	case Float16:
		return math.Ldexp(1, -10)
	case BFloat16:
		return math.Ldexp(1, -7)
	default:
		panic("eps: " + dt.String() + " is not a floating-point type")
	}
}

// ParseDataType resolves a dtype name. Both the long names returned by String
// and the SafeTensors-style short names (f32, bf16, ...) are accepted.
func ParseDataType(s string) (DataType, bool) {
	switch s {
	case "float32", "f32", "F32":
		return Float32, true
	case "float64", "f64", "F64":
		return Float64, true
	case "float16", "f16", "F16", "half":
		return Float16, true
	case "bfloat16", "bf16", "BF16":
		return BFloat16, true
	case "int32", "i32", "I32":
		return Int32, true
	case "int64", "i64", "I64":
		return Int64, true
	case "uint8", "u8", "U8":
		return Uint8, true
	case "bool", "BOOL":
		return Bool, true
	default:
		return 0, false
	}
}

// inferDataType infers DataType from a generic type T.
func inferDataType[T DType](dummy T) DataType {
	switch any(dummy).(type) {
	case float32:
		return Float32
	case float64:
		return Float64
	case int32:
		return Int32
	case int64:
		return Int64
	case uint8:
		return Uint8
	case bool:
		return Bool
	default:
		panic("unsupported type")
	}
}
