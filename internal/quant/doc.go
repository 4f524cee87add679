// Package quant implements simulated (fake) tensor quantization for
// quantization-aware training.
//
// A TensorQuantizer maps a floating-point tensor onto a symmetric integer grid
// of a configured bit precision and returns a floating-point tensor carrying
// the numerical effect of low-bit storage:
//
//	scale := x_bound / ClipBound(p)        // x_bound = max|x| over contract dims
//	q     := round(clip(x / scale, ±SafeClipBound(p)))
//	x'    := q * scale
//
// Rounding is round-half-up, floor(v + 0.5), expressed as a straight-through
// estimator: the forward value is rounded, the gradient with respect to the
// input is exactly 1 (see PassThrough).
//
// Quantizers are built from an immutable Config. A Config without precision
// disables quantization; every operation then degrades to identity or cast.
//
// Basic usage:
//
//	cfg, err := quant.NewConfig(quant.Bits(8), false)
//	if err != nil {
//	    return err
//	}
//	q := quant.New("weights", cfg, cpu.New())
//	scale, err := q.QuantScale(x, []int{-1}, tensor.Float32)
//	...
//	xq, err := q.ToQuant(backend.Div(x, scale), tensor.Float32)
//
// Operations over a plain CPU backend are pure and safe for concurrent use.
// Wrapping the backend with autodiff records the computation on a gradient
// tape, which is not safe for concurrent use.
package quant
