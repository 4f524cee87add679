package autodiff_test

import (
	"math"
	"testing"

	"github.com/born-ml/aqt/internal/autodiff"
	"github.com/born-ml/aqt/internal/backend/cpu"
	"github.com/born-ml/aqt/internal/tensor"
	"github.com/stretchr/testify/require"
)

// numericalGradient estimates d sum(f(x)) / dx with central differences.
func numericalGradient(f func(x *tensor.RawTensor) *tensor.RawTensor, x []float64, shape tensor.Shape, epsilon float64) []float64 {
	eval := func(values []float64) float64 {
		raw, _ := tensor.NewRaw(shape, tensor.Float64, tensor.CPU)
		raw.SetFloat64s(values)
		sum := 0.0
		for _, v := range f(raw).Float64s() {
			sum += v
		}
		return sum
	}

	grad := make([]float64, len(x))
	for i := range x {
		plus := append([]float64(nil), x...)
		minus := append([]float64(nil), x...)
		plus[i] += epsilon
		minus[i] -= epsilon
		grad[i] = (eval(plus) - eval(minus)) / (2 * epsilon)
	}
	return grad
}

// checkGradient compares the autodiff gradient of sum(f(x)) against central differences.
func checkGradient(t *testing.T, x []float64, shape tensor.Shape, f func(b tensor.Backend, x *tensor.RawTensor) *tensor.RawTensor) {
	t.Helper()

	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()

	raw, err := tensor.NewRaw(shape, tensor.Float64, tensor.CPU)
	require.NoError(t, err)
	raw.SetFloat64s(x)

	grads := autodiff.BackwardRaw(f(backend, raw), backend)
	require.Contains(t, grads, raw)
	got := grads[raw].Float64s()

	plain := cpu.New()
	want := numericalGradient(func(r *tensor.RawTensor) *tensor.RawTensor { return f(plain, r) }, x, shape, 1e-6)

	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-4 {
			t.Errorf("grad[%d] = %v, numerical %v", i, got[i], want[i])
		}
	}
}

func TestGradientCheck_DivByRowMax(t *testing.T) {
	// Per-row normalization: x / max|x| over the last axis.
	x := []float64{1.5, -4, 2, 0.5, 3, -1}
	checkGradient(t, x, tensor.Shape{2, 3}, func(b tensor.Backend, x *tensor.RawTensor) *tensor.RawTensor {
		scale := b.MaxDims(b.Abs(x), []int{-1}, true)
		return b.Mul(b.Div(x, scale), x)
	})
}

func TestGradientCheck_Clip(t *testing.T) {
	x := []float64{-3, -0.5, 0.25, 1.7, 4}
	checkGradient(t, x, tensor.Shape{5}, func(b tensor.Backend, x *tensor.RawTensor) *tensor.RawTensor {
		return b.Mul(b.Clip(x, -1, 2), x)
	})
}

func TestGradientCheck_SumDims(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5, 6}
	checkGradient(t, x, tensor.Shape{2, 3}, func(b tensor.Backend, x *tensor.RawTensor) *tensor.RawTensor {
		rows := b.SumDims(x, []int{1}, false)
		return b.Mul(rows, rows)
	})
}

func TestGradientCheck_Where(t *testing.T) {
	x := []float64{0.5, -2, 3, -0.25}
	checkGradient(t, x, tensor.Shape{4}, func(b tensor.Backend, x *tensor.RawTensor) *tensor.RawTensor {
		zero, _ := tensor.NewRaw(tensor.Shape{}, tensor.Float64, tensor.CPU)
		positive := b.Equal(b.Sign(x), b.AddScalar(zero, 1))
		return b.Where(positive, b.Mul(x, x), b.MulScalar(x, 3))
	})
}

func TestGradientCheck_ReshapeBroadcast(t *testing.T) {
	x := []float64{1, -2, 3, 0.5}
	checkGradient(t, x, tensor.Shape{4}, func(b tensor.Backend, x *tensor.RawTensor) *tensor.RawTensor {
		col := b.Reshape(x, tensor.Shape{4, 1})
		return b.Mul(col, x) // outer product [4,4]
	})
}
