package quant

import (
	"fmt"

	"github.com/born-ml/aqt/internal/tensor"
)

// TensorQuantizer quantizes tensors to a fixed bit precision on backend B.
//
// It holds only immutable configuration. Over a stateless backend (cpu) its
// methods are safe for concurrent use.
type TensorQuantizer[B tensor.Backend] struct {
	name    string
	cfg     Config
	backend B
}

// New creates a TensorQuantizer. cfg must come from NewConfig (or be the
// zero Config, which disables quantization).
func New[B tensor.Backend](name string, cfg Config, backend B) *TensorQuantizer[B] {
	return &TensorQuantizer[B]{
		name:    name,
		cfg:     cfg,
		backend: backend,
	}
}

// Name returns the quantizer name.
func (q *TensorQuantizer[B]) Name() string {
	return q.name
}

// Config returns the quantizer configuration.
func (q *TensorQuantizer[B]) Config() Config {
	return q.cfg
}

// Enabled reports whether a precision is configured.
func (q *TensorQuantizer[B]) Enabled() bool {
	return q.cfg.enabled
}

// Backend returns the compute backend.
func (q *TensorQuantizer[B]) Backend() B {
	return q.backend
}

// QuantScale computes the quantization scale of x.
//
// contractDims are the axes sharing one scale value (negative indices count
// from the end). The result has x's shape with each contract axis reduced to
// 1, so it broadcasts against x, and is cast to dtype. Empty contractDims
// reduce nothing and give one scale per element; list every axis for a
// per-tensor scale.
//
// When quantization is disabled the result is ones of shape (1,)*x.ndim.
//
// Otherwise scale = max|x| / ClipBound(p). With StopScaleGradient the scale
// is detached from the gradient graph and exact zeros are replaced by 1;
// without it the machine epsilon of dtype is added instead, keeping
// gradients finite for near-zero inputs.
//
// Returns an error wrapping ErrAxisOutOfRange for a bad axis and, when
// quantization is enabled, ErrUnsupportedDType if x or dtype is not
// floating-point.
func (q *TensorQuantizer[B]) QuantScale(x *tensor.RawTensor, contractDims []int, dtype tensor.DataType) (*tensor.RawTensor, error) {
	axes, err := contractAxes(x.Shape(), contractDims)
	if err != nil {
		return nil, fmt.Errorf("quant %s: contract dims %v: %w", q.name, contractDims, err)
	}

	if !q.cfg.enabled {
		ones := make(tensor.Shape, len(x.Shape()))
		for i := range ones {
			ones[i] = 1
		}
		return tensor.FullRaw(ones, dtype, 1, q.backend.Device())
	}
	if !dtype.IsFloat() {
		return nil, fmt.Errorf("quant %s: scale dtype %s: %w", q.name, dtype, ErrUnsupportedDType)
	}
	if !x.DType().IsFloat() {
		return nil, fmt.Errorf("quant %s: input dtype %s: %w", q.name, x.DType(), ErrUnsupportedDType)
	}

	b := q.backend
	xBound := b.Abs(x)
	if len(axes) > 0 {
		xBound = b.MaxDims(xBound, axes, true)
	}
	scale := b.DivScalar(xBound, ClipBound(q.cfg.precision))

	if q.cfg.stopScaleGradient {
		scale = scale.Detach()
		zero, err := tensor.ScalarRaw(scale.DType(), 0, b.Device())
		if err != nil {
			return nil, err
		}
		one, err := tensor.ScalarRaw(scale.DType(), 1, b.Device())
		if err != nil {
			return nil, err
		}
		scale = b.Where(b.Equal(scale, zero), one, scale)
	} else {
		scale = b.AddScalar(scale, dtype.Eps())
	}

	return b.Cast(scale, dtype), nil
}

// ToQuant rounds x onto the integer grid and casts the result to dtype.
//
// x is expected to be already divided by its scale. It is clipped to
// ±SafeClipBound(p) and rounded half up, floor(x + 0.5), through
// PassThrough: the forward value is an integer, the gradient is 1.
//
// When quantization is disabled the result is x cast to dtype.
//
// Returns an error wrapping ErrUnsupportedDType when quantization is enabled
// and x is not floating-point.
func (q *TensorQuantizer[B]) ToQuant(x *tensor.RawTensor, dtype tensor.DataType) (*tensor.RawTensor, error) {
	b := q.backend
	if !q.cfg.enabled {
		return b.Cast(x, dtype), nil
	}
	if !x.DType().IsFloat() {
		return nil, fmt.Errorf("quant %s: input dtype %s: %w", q.name, x.DType(), ErrUnsupportedDType)
	}

	bound := SafeClipBound(q.cfg.precision)
	clipped := b.Clip(x, -bound, bound)
	rounded := PassThrough(b, b.AddScalar(clipped, 0.5), b.Floor)

	return b.Cast(rounded, dtype), nil
}

// FakeQuant quantizes and dequantizes x in one step:
//
//	scale := QuantScale(x, contractDims, x.dtype)
//	out   := ToQuant(x / scale, x.dtype) * scale
//
// and casts out to dtype. The result differs from x by at most half a
// quantization step (scale / 2) per element, except where x was clipped.
func (q *TensorQuantizer[B]) FakeQuant(x *tensor.RawTensor, contractDims []int, dtype tensor.DataType) (*tensor.RawTensor, error) {
	scale, err := q.QuantScale(x, contractDims, x.DType())
	if err != nil {
		return nil, err
	}

	b := q.backend
	quantized, err := q.ToQuant(b.Div(x, scale), x.DType())
	if err != nil {
		return nil, err
	}

	return b.Cast(b.Mul(quantized, scale), dtype), nil
}

// contractAxes normalizes contractDims against shape. Unlike
// Shape.NormalizeAxes, an empty list stays empty.
func contractAxes(shape tensor.Shape, contractDims []int) ([]int, error) {
	if len(contractDims) == 0 {
		return nil, nil
	}
	return shape.NormalizeAxes(contractDims)
}

// Update is the statistics hook of static quantization. Dynamic quantizers
// compute the scale from every input, so Update does nothing and never fails.
func (q *TensorQuantizer[B]) Update(_ *tensor.RawTensor) error {
	return nil
}
