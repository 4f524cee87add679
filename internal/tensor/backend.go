package tensor

// Backend defines the interface that all compute backends must implement.
// Backends handle the actual computation for tensor operations.
//
// Every operation returns a newly allocated tensor and leaves its inputs
// untouched. Misuse (incompatible shapes, unsupported dtypes, bad axes)
// panics with a descriptive message.
//
// Implementations:
//   - cpu: Pure Go, parallel element-wise loops
//
// Decorator backends for additional functionality:
//   - autodiff: Automatic differentiation (wraps any backend)
type Backend interface {
	// Element-wise binary operations with NumPy-style broadcasting.
	// Both operands must share a dtype.
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor
	Div(a, b *RawTensor) *RawTensor

	// Scalar operations (element-wise with scalar).
	AddScalar(x *RawTensor, scalar float64) *RawTensor
	MulScalar(x *RawTensor, scalar float64) *RawTensor
	DivScalar(x *RawTensor, scalar float64) *RawTensor

	// Element-wise math.
	Abs(x *RawTensor) *RawTensor
	Sign(x *RawTensor) *RawTensor  // -1, 0 or 1
	Floor(x *RawTensor) *RawTensor // round toward -inf
	Clip(x *RawTensor, lo, hi float64) *RawTensor

	// Comparison and selection. Equal returns a Bool tensor.
	Equal(a, b *RawTensor) *RawTensor
	Where(condition, x, y *RawTensor) *RawTensor

	// Reductions over a set of axes (negative axes allowed).
	MaxDims(x *RawTensor, dims []int, keepDim bool) *RawTensor
	SumDims(x *RawTensor, dims []int, keepDim bool) *RawTensor

	// Shape and type.
	Reshape(x *RawTensor, shape Shape) *RawTensor
	Cast(x *RawTensor, dtype DataType) *RawTensor

	// Metadata
	Name() string
	Device() Device
}
