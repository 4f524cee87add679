package cpu

import (
	"math"
	"testing"

	"github.com/born-ml/aqt/internal/parallel"
	"github.com/born-ml/aqt/internal/tensor"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper to create a float32 raw tensor.
func f32(t *testing.T, data []float32, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.NewRaw(shape, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	copy(raw.AsFloat32(), data)
	return raw
}

// Helper to create a raw tensor of any dtype from float64 values.
func rawOf(t *testing.T, dtype tensor.DataType, data []float64, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.NewRaw(shape, dtype, tensor.CPU)
	require.NoError(t, err)
	raw.SetFloat64s(data)
	return raw
}

func TestCPUBackend_New(t *testing.T) {
	backend := New()
	require.NotNil(t, backend)
	assert.Equal(t, "CPU", backend.Name())
	assert.Equal(t, tensor.CPU, backend.Device())
}

func TestCPUBackend_Binary(t *testing.T) {
	backend := New()

	a := f32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	b := f32(t, []float32{10, 11, 12, 13, 14, 15}, tensor.Shape{2, 3})

	tests := []struct {
		name string
		op   func(a, b *tensor.RawTensor) *tensor.RawTensor
		want []float32
	}{
		{"Add", backend.Add, []float32{11, 13, 15, 17, 19, 21}},
		{"Sub", backend.Sub, []float32{-9, -9, -9, -9, -9, -9}},
		{"Mul", backend.Mul, []float32{10, 22, 36, 52, 70, 90}},
		{"Div", backend.Div, []float32{0.1, 2.0 / 11, 0.25, 4.0 / 13, 5.0 / 14, 0.4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.op(a, b)
			assert.Equal(t, tensor.Shape{2, 3}, result.Shape())
			assert.InDeltaSlice(t, tt.want, result.AsFloat32(), 1e-6)
		})
	}
}

func TestCPUBackend_Broadcast(t *testing.T) {
	backend := New()

	t.Run("KeepDimScale", func(t *testing.T) {
		// [2,3] / [2,1]: one divisor per row.
		x := f32(t, []float32{2, 4, 6, 9, 12, 15}, tensor.Shape{2, 3})
		s := f32(t, []float32{2, 3}, tensor.Shape{2, 1})

		result := backend.Div(x, s)
		assert.Equal(t, tensor.Shape{2, 3}, result.Shape())
		assert.Equal(t, []float32{1, 2, 3, 3, 4, 5}, result.AsFloat32())
	})

	t.Run("LeadingDims", func(t *testing.T) {
		x := f32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
		row := f32(t, []float32{10, 20, 30}, tensor.Shape{3})

		result := backend.Add(x, row)
		assert.Equal(t, []float32{11, 22, 33, 14, 25, 36}, result.AsFloat32())
	})

	t.Run("Scalar", func(t *testing.T) {
		x := f32(t, []float32{1, 2, 3}, tensor.Shape{3})
		s := f32(t, []float32{2}, tensor.Shape{})

		result := backend.Mul(x, s)
		assert.Equal(t, []float32{2, 4, 6}, result.AsFloat32())
	})

	t.Run("Incompatible", func(t *testing.T) {
		x := f32(t, []float32{1, 2, 3}, tensor.Shape{3})
		y := f32(t, []float32{1, 2}, tensor.Shape{2})
		assert.Panics(t, func() { backend.Add(x, y) })
	})

	t.Run("DTypeMismatch", func(t *testing.T) {
		x := f32(t, []float32{1}, tensor.Shape{1})
		y := rawOf(t, tensor.Float64, []float64{1}, tensor.Shape{1})
		assert.Panics(t, func() { backend.Add(x, y) })
	})
}

func TestCPUBackend_InputsUntouched(t *testing.T) {
	backend := New()

	a := f32(t, []float32{1, 2, 3}, tensor.Shape{3})
	b := f32(t, []float32{4, 5, 6}, tensor.Shape{3})

	result := backend.Add(a, b)
	assert.NotSame(t, a, result)
	assert.Equal(t, []float32{1, 2, 3}, a.AsFloat32())
	assert.Equal(t, []float32{4, 5, 6}, b.AsFloat32())

	backend.Floor(a)
	backend.Clip(a, 0, 1)
	assert.Equal(t, []float32{1, 2, 3}, a.AsFloat32())
}

func TestCPUBackend_Unary(t *testing.T) {
	backend := New()
	x := f32(t, []float32{-2.5, -0.5, 0, 0.5, 1.49, 2.5}, tensor.Shape{6})

	tests := []struct {
		name string
		got  *tensor.RawTensor
		want []float32
	}{
		{"Abs", backend.Abs(x), []float32{2.5, 0.5, 0, 0.5, 1.49, 2.5}},
		{"Sign", backend.Sign(x), []float32{-1, -1, 0, 1, 1, 1}},
		{"Floor", backend.Floor(x), []float32{-3, -1, 0, 0, 1, 2}},
		{"Clip", backend.Clip(x, -1, 1), []float32{-1, -0.5, 0, 0.5, 1, 1}},
		{"AddScalar", backend.AddScalar(x, 0.5), []float32{-2, 0, 0.5, 1, 1.99, 3}},
		{"MulScalar", backend.MulScalar(x, 2), []float32{-5, -1, 0, 1, 2.98, 5}},
		{"DivScalar", backend.DivScalar(x, 2), []float32{-1.25, -0.25, 0, 0.25, 0.745, 1.25}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDeltaSlice(t, tt.want, tt.got.AsFloat32(), 1e-6)
		})
	}
}

func TestCPUBackend_ClipInvalidBounds(t *testing.T) {
	backend := New()
	x := f32(t, []float32{1}, tensor.Shape{1})
	assert.Panics(t, func() { backend.Clip(x, 1, -1) })
}

func TestCPUBackend_Parallel(t *testing.T) {
	// Force chunking so every element goes through a worker.
	backend := NewWithConfig(parallel.Config{Enabled: true, NumWorkers: 4, MinChunkSize: 8})

	n := 1000
	data := make([]float64, n)
	for i := range data {
		data[i] = float64(i) - 500.25
	}
	x := rawOf(t, tensor.Float64, data, tensor.Shape{n})

	floored := backend.Floor(x).AsFloat64()
	for i, v := range data {
		if floored[i] != math.Floor(v) {
			t.Fatalf("floor[%d] = %v, want %v", i, floored[i], math.Floor(v))
		}
	}
}

func TestCPUBackend_EqualWhere(t *testing.T) {
	backend := New()

	scale := f32(t, []float32{0, 2, 0, 4}, tensor.Shape{2, 2})
	zero := f32(t, []float32{0}, tensor.Shape{1})
	one := f32(t, []float32{1}, tensor.Shape{1})

	isZero := backend.Equal(scale, zero)
	require.Equal(t, tensor.Bool, isZero.DType())
	assert.Equal(t, []bool{true, false, true, false}, isZero.AsBool())

	safe := backend.Where(isZero, one, scale)
	assert.Equal(t, tensor.Shape{2, 2}, safe.Shape())
	assert.Equal(t, []float32{1, 2, 1, 4}, safe.AsFloat32())

	assert.Panics(t, func() { backend.Where(scale, one, scale) }, "non-bool condition")
}

func TestCPUBackend_MaxDims(t *testing.T) {
	backend := New()

	// [[1, -7, 3],
	//  [4,  5, -6]]
	x := f32(t, []float32{1, -7, 3, 4, 5, -6}, tensor.Shape{2, 3})

	tests := []struct {
		name    string
		dims    []int
		keepDim bool
		shape   tensor.Shape
		want    []float32
	}{
		{"LastKeep", []int{-1}, true, tensor.Shape{2, 1}, []float32{3, 5}},
		{"FirstKeep", []int{0}, true, tensor.Shape{1, 3}, []float32{4, 5, 3}},
		{"AllKeep", []int{0, 1}, true, tensor.Shape{1, 1}, []float32{5}},
		{"AllEmptyDims", nil, false, tensor.Shape{}, []float32{5}},
		{"FirstDrop", []int{0}, false, tensor.Shape{3}, []float32{4, 5, 3}},
		{"Duplicates", []int{1, -1}, true, tensor.Shape{2, 1}, []float32{3, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := backend.MaxDims(x, tt.dims, tt.keepDim)
			if diff := cmp.Diff(tt.shape, result.Shape()); diff != "" {
				t.Errorf("shape mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, tt.want, result.AsFloat32())
		})
	}
}

func TestCPUBackend_MaxDims3D(t *testing.T) {
	backend := New()

	data := make([]float32, 24)
	for i := range data {
		data[i] = float32(i)
	}
	x := f32(t, data, tensor.Shape{2, 3, 4})

	result := backend.MaxDims(x, []int{0, 2}, true)
	assert.Equal(t, tensor.Shape{1, 3, 1}, result.Shape())
	assert.Equal(t, []float32{15, 19, 23}, result.AsFloat32())
}

func TestCPUBackend_MaxDimsOutOfRange(t *testing.T) {
	backend := New()
	x := f32(t, []float32{1, 2}, tensor.Shape{2})
	assert.Panics(t, func() { backend.MaxDims(x, []int{1}, true) })
	assert.Panics(t, func() { backend.MaxDims(x, []int{-2}, true) })
}

func TestCPUBackend_SumDims(t *testing.T) {
	backend := New()
	x := f32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})

	assert.Equal(t, []float32{6, 15}, backend.SumDims(x, []int{1}, true).AsFloat32())
	assert.Equal(t, []float32{5, 7, 9}, backend.SumDims(x, []int{0}, false).AsFloat32())
	assert.Equal(t, []float32{21}, backend.SumDims(x, nil, false).AsFloat32())
}

func TestCPUBackend_Cast(t *testing.T) {
	backend := New()

	x := f32(t, []float32{1.5, -2, 256, 0.25}, tensor.Shape{4})

	for _, dtype := range []tensor.DataType{tensor.Float64, tensor.Float16, tensor.BFloat16} {
		t.Run(dtype.String(), func(t *testing.T) {
			cast := backend.Cast(x, dtype)
			assert.Equal(t, dtype, cast.DType())
			assert.Equal(t, []float32{1.5, -2, 256, 0.25}, cast.Float32s())

			back := backend.Cast(cast, tensor.Float32)
			assert.Equal(t, x.AsFloat32(), back.AsFloat32())
		})
	}

	t.Run("SameDTypeCopies", func(t *testing.T) {
		cast := backend.Cast(x, tensor.Float32)
		assert.NotSame(t, x, cast)
		cast.AsFloat32()[0] = 99
		assert.Equal(t, float32(1.5), x.AsFloat32()[0])
	})

	t.Run("HalfRounds", func(t *testing.T) {
		// 1 + 2^-12 is below float16 resolution at 1.0.
		y := f32(t, []float32{1 + 1.0/4096}, tensor.Shape{1})
		assert.Equal(t, []float32{1}, backend.Cast(y, tensor.Float16).Float32s())
	})
}

func TestCPUBackend_HalfArithmetic(t *testing.T) {
	backend := New()

	for _, dtype := range []tensor.DataType{tensor.Float16, tensor.BFloat16} {
		t.Run(dtype.String(), func(t *testing.T) {
			a := rawOf(t, dtype, []float64{1, 2.5, -3}, tensor.Shape{3})
			b := rawOf(t, dtype, []float64{0.5, 0.5, 1}, tensor.Shape{3})

			sum := backend.Add(a, b)
			assert.Equal(t, dtype, sum.DType())
			assert.Equal(t, []float32{1.5, 3, -2}, sum.Float32s())

			floored := backend.Floor(sum)
			assert.Equal(t, []float32{1, 3, -2}, floored.Float32s())

			m := backend.MaxDims(backend.Abs(a), nil, true)
			assert.Equal(t, []float32{3}, m.Float32s())
		})
	}
}

func TestCPUBackend_Reshape(t *testing.T) {
	backend := New()
	x := f32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})

	y := backend.Reshape(x, tensor.Shape{3, 2})
	assert.Equal(t, tensor.Shape{3, 2}, y.Shape())
	assert.Equal(t, x.AsFloat32(), y.AsFloat32())

	assert.Panics(t, func() { backend.Reshape(x, tensor.Shape{4}) })
}

func TestCPUBackend_RejectsIntegers(t *testing.T) {
	backend := New()
	x := rawOf(t, tensor.Int32, []float64{1, 2}, tensor.Shape{2})
	assert.Panics(t, func() { backend.Abs(x) })
	assert.Panics(t, func() { backend.MaxDims(x, nil, true) })
}
