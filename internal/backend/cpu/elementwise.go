package cpu

import (
	"fmt"
	"math"

	"github.com/born-ml/aqt/internal/parallel"
	"github.com/born-ml/aqt/internal/tensor"
)

// float is the set of native element types the kernels are instantiated for.
type float interface {
	~float32 | ~float64
}

// binaryKernel pairs the float32 and float64 instantiations of one operation.
type binaryKernel struct {
	name string
	f32  func(a, b float32) float32
	f64  func(a, b float64) float64
}

// unaryKernel pairs the float32 and float64 instantiations of one operation.
type unaryKernel struct {
	name string
	f32  func(v float32) float32
	f64  func(v float64) float64
}

func add[T float](a, b T) T { return a + b }
func sub[T float](a, b T) T { return a - b }
func mul[T float](a, b T) T { return a * b }
func div[T float](a, b T) T { return a / b }

func abs[T float](v T) T {
	if v < 0 {
		return -v
	}
	if v == 0 {
		return 0 // clears the sign of -0
	}
	return v
}

func sign[T float](v T) T {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return v // zero or NaN
	}
}

func floor[T float](v T) T {
	return T(math.Floor(float64(v)))
}

var (
	addKernel   = binaryKernel{"add", add[float32], add[float64]}
	subKernel   = binaryKernel{"sub", sub[float32], sub[float64]}
	mulKernel   = binaryKernel{"mul", mul[float32], mul[float64]}
	divKernel   = binaryKernel{"div", div[float32], div[float64]}
	absKernel   = unaryKernel{"abs", abs[float32], abs[float64]}
	signKernel  = unaryKernel{"sign", sign[float32], sign[float64]}
	floorKernel = unaryKernel{"floor", floor[float32], floor[float64]}
)

// Add performs element-wise addition with NumPy-style broadcasting.
func (cpu *CPUBackend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary(addKernel, a, b)
}

// Sub performs element-wise subtraction with NumPy-style broadcasting.
func (cpu *CPUBackend) Sub(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary(subKernel, a, b)
}

// Mul performs element-wise multiplication with NumPy-style broadcasting.
func (cpu *CPUBackend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary(mulKernel, a, b)
}

// Div performs element-wise division with NumPy-style broadcasting.
// Division by zero follows IEEE 754 (±Inf or NaN).
func (cpu *CPUBackend) Div(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary(divKernel, a, b)
}

// AddScalar adds a scalar value to each element of the tensor.
// The scalar is first converted to the tensor's element type.
func (cpu *CPUBackend) AddScalar(x *tensor.RawTensor, scalar float64) *tensor.RawTensor {
	s32 := float32(scalar)
	return cpu.unary(unaryKernel{
		name: "addScalar",
		f32:  func(v float32) float32 { return v + s32 },
		f64:  func(v float64) float64 { return v + scalar },
	}, x)
}

// MulScalar multiplies each element of the tensor by a scalar value.
func (cpu *CPUBackend) MulScalar(x *tensor.RawTensor, scalar float64) *tensor.RawTensor {
	s32 := float32(scalar)
	return cpu.unary(unaryKernel{
		name: "mulScalar",
		f32:  func(v float32) float32 { return v * s32 },
		f64:  func(v float64) float64 { return v * scalar },
	}, x)
}

// DivScalar divides each element of the tensor by a scalar value.
func (cpu *CPUBackend) DivScalar(x *tensor.RawTensor, scalar float64) *tensor.RawTensor {
	s32 := float32(scalar)
	return cpu.unary(unaryKernel{
		name: "divScalar",
		f32:  func(v float32) float32 { return v / s32 },
		f64:  func(v float64) float64 { return v / scalar },
	}, x)
}

// Abs computes the element-wise absolute value.
func (cpu *CPUBackend) Abs(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary(absKernel, x)
}

// Sign computes the element-wise sign: -1, 0 or 1.
func (cpu *CPUBackend) Sign(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary(signKernel, x)
}

// Floor rounds each element toward negative infinity.
func (cpu *CPUBackend) Floor(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary(floorKernel, x)
}

// Clip limits each element to [lo, hi]. The bounds are converted to the
// tensor's element type before comparison.
func (cpu *CPUBackend) Clip(x *tensor.RawTensor, lo, hi float64) *tensor.RawTensor {
	if lo > hi {
		panic(fmt.Sprintf("clip: lower bound %v exceeds upper bound %v", lo, hi))
	}
	lo32, hi32 := float32(lo), float32(hi)
	return cpu.unary(unaryKernel{
		name: "clip",
		f32:  func(v float32) float32 { return min(max(v, lo32), hi32) },
		f64:  func(v float64) float64 { return min(max(v, lo), hi) },
	}, x)
}

// binary applies k to a and b with broadcasting.
func (cpu *CPUBackend) binary(k binaryKernel, a, b *tensor.RawTensor) *tensor.RawTensor {
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("%s: dtype mismatch %s vs %s", k.name, a.DType(), b.DType()))
	}
	mustFloat(k.name, a)

	outShape, _, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", k.name, err))
	}
	result := cpu.newResult(k.name, outShape, a.DType())

	switch a.DType() {
	case tensor.Float32:
		binaryLoop(result.AsFloat32(), a.AsFloat32(), b.AsFloat32(), a.Shape(), b.Shape(), outShape, k.f32, cpu.par)
	case tensor.Float64:
		binaryLoop(result.AsFloat64(), a.AsFloat64(), b.AsFloat64(), a.Shape(), b.Shape(), outShape, k.f64, cpu.par)
	default:
		out := make([]float32, result.NumElements())
		binaryLoop(out, a.Float32s(), b.Float32s(), a.Shape(), b.Shape(), outShape, k.f32, cpu.par)
		result.SetFloat32s(out)
	}

	return result
}

// unary applies k to every element of x.
func (cpu *CPUBackend) unary(k unaryKernel, x *tensor.RawTensor) *tensor.RawTensor {
	mustFloat(k.name, x)
	result := cpu.newResult(k.name, x.Shape(), x.DType())

	switch x.DType() {
	case tensor.Float32:
		unaryLoop(result.AsFloat32(), x.AsFloat32(), k.f32, cpu.par)
	case tensor.Float64:
		unaryLoop(result.AsFloat64(), x.AsFloat64(), k.f64, cpu.par)
	default:
		out := x.Float32s()
		unaryLoop(out, out, k.f32, cpu.par)
		result.SetFloat32s(out)
	}

	return result
}

func binaryLoop[T float](dst, a, b []T, aShape, bShape, outShape tensor.Shape, fn func(T, T) T, cfg parallel.Config) {
	ai := newBroadcastIndexer(aShape, outShape)
	bi := newBroadcastIndexer(bShape, outShape)

	parallel.For(len(dst), func(start, end int) {
		for i := start; i < end; i++ {
			dst[i] = fn(a[ai.index(i)], b[bi.index(i)])
		}
	}, cfg)
}

func unaryLoop[T float](dst, src []T, fn func(T) T, cfg parallel.Config) {
	parallel.For(len(dst), func(start, end int) {
		for i := start; i < end; i++ {
			dst[i] = fn(src[i])
		}
	}, cfg)
}
