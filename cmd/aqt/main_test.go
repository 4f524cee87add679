package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/born-ml/aqt/internal/backend/cpu"
	"github.com/born-ml/aqt/internal/quant"
	"github.com/born-ml/aqt/internal/serialization"
	"github.com/born-ml/aqt/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the aqt command with args and returns its stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &errOut
	err := app.Run(context.Background(), append([]string{"aqt"}, args...))
	return out.String(), err
}

func writeCheckpoint(t *testing.T, dir string) string {
	t.Helper()

	weight, err := tensor.NewRaw(tensor.Shape{2, 3}, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	copy(weight.AsFloat32(), []float32{3, -200, 0, 0.5, -0.25, 1})

	bias, err := tensor.NewRaw(tensor.Shape{3}, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	copy(bias.AsFloat32(), []float32{0.1, 0.2, 0.3})

	step, err := tensor.NewRaw(tensor.Shape{1}, tensor.Int64, tensor.CPU)
	require.NoError(t, err)
	step.AsInt64()[0] = 1000

	entries := []serialization.Tensor{
		serialization.FromRaw("layer.weight", weight),
		serialization.FromRaw("layer.bias", bias),
		serialization.FromRaw("step", step),
		{Name: "empty", DType: tensor.Float32, Shape: []int{0}},
	}

	path := filepath.Join(dir, "in.safetensors")
	require.NoError(t, serialization.WriteFile(path, entries, map[string]string{"format": "pt"}))
	return path
}

func expectedFakeQuant(t *testing.T, values []float32, shape tensor.Shape, precision int, dims []int) []float32 {
	t.Helper()
	backend := cpu.New()
	cfg, err := quant.NewConfig(quant.Bits(precision), false)
	require.NoError(t, err)

	x, err := tensor.NewRaw(shape, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	copy(x.AsFloat32(), values)

	fq, err := quant.New("expected", cfg, backend).FakeQuant(x, dims, tensor.Float32)
	require.NoError(t, err)
	return fq.AsFloat32()
}

func TestQuantizeCheckpoint(t *testing.T) {
	dir := t.TempDir()
	in := writeCheckpoint(t, dir)
	out := filepath.Join(dir, "out.safetensors")

	stdout, err := run(t, "quantize", "--in", in, "--out", out,
		"--precision", "8", "--contract-dims=-1", "--include", "weight$", "--jobs", "2")
	require.NoError(t, err)
	assert.Contains(t, stdout, "layer.weight")
	assert.Contains(t, stdout, "quantized")

	r, err := serialization.Open(out)
	require.NoError(t, err)
	defer r.Close()

	weight, err := r.RawTensor("layer.weight")
	require.NoError(t, err)
	want := expectedFakeQuant(t, []float32{3, -200, 0, 0.5, -0.25, 1}, tensor.Shape{2, 3}, 8, []int{-1})
	assert.Equal(t, want, weight.AsFloat32())

	bias, err := r.RawTensor("layer.bias")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, bias.AsFloat32(), "excluded tensors are copied unchanged")

	step, err := r.RawTensor("step")
	require.NoError(t, err)
	assert.Equal(t, []int64{1000}, step.AsInt64())

	empty, err := r.Tensor("empty")
	require.NoError(t, err)
	assert.Equal(t, []int{0}, empty.Shape)

	meta := r.Metadata()
	assert.Equal(t, "pt", meta["format"])
	assert.Equal(t, "8", meta[metaPrecision])
	assert.Equal(t, "-1", meta[metaContractDims])
	assert.Equal(t, "false", meta[metaStopScaleGradient])
	assert.Len(t, meta[metaSourceSHA256], 64)
}

func TestQuantizeOutputDType(t *testing.T) {
	dir := t.TempDir()
	in := writeCheckpoint(t, dir)
	out := filepath.Join(dir, "bf16.safetensors")

	_, err := run(t, "quantize", "-q", "--in", in, "--out", out, "--precision", "4", "--dtype", "bf16")
	require.NoError(t, err)

	r, err := serialization.Open(out)
	require.NoError(t, err)
	defer r.Close()

	for _, name := range []string{"layer.weight", "layer.bias"} {
		info, err := r.TensorInfo(name)
		require.NoError(t, err)
		assert.Equal(t, tensor.BFloat16, info.DType, name)
	}
	info, err := r.TensorInfo("step")
	require.NoError(t, err)
	assert.Equal(t, tensor.Int64, info.DType)
	assert.Equal(t, "all", r.Metadata()[metaContractDims])
}

func TestQuantizeDefaultPerTensor(t *testing.T) {
	dir := t.TempDir()
	in := writeCheckpoint(t, dir)
	out := filepath.Join(dir, "out.safetensors")

	_, err := run(t, "quantize", "-q", "--in", in, "--out", out, "--precision", "4", "--contract-dims", "all")
	require.NoError(t, err)

	r, err := serialization.Open(out)
	require.NoError(t, err)
	defer r.Close()

	weight, err := r.RawTensor("layer.weight")
	require.NoError(t, err)
	want := expectedFakeQuant(t, []float32{3, -200, 0, 0.5, -0.25, 1}, tensor.Shape{2, 3}, 4, []int{0, 1})
	assert.Equal(t, want, weight.AsFloat32())
	// A single scale of 200/7.5 sends everything but the extreme element to 0.
	for _, i := range []int{0, 2, 3, 4, 5} {
		assert.Zero(t, weight.AsFloat32()[i], "element %d", i)
	}
}

func TestQuantizeConfigFile(t *testing.T) {
	dir := t.TempDir()
	in := writeCheckpoint(t, dir)
	out := filepath.Join(dir, "out.safetensors")

	cfgPath := filepath.Join(dir, "aqt.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(strings.Join([]string{
		"precision: 4",
		"stop_scale_gradient: true",
		"contract_dims: [-1]",
		`include: "weight$"`,
		"jobs: 1",
	}, "\n")), 0o600))

	// The explicit flag wins over the file's precision.
	_, err := run(t, "quantize", "-q", "--config", cfgPath, "--in", in, "--out", out, "--precision", "8")
	require.NoError(t, err)

	r, err := serialization.Open(out)
	require.NoError(t, err)
	defer r.Close()

	meta := r.Metadata()
	assert.Equal(t, "8", meta[metaPrecision])
	assert.Equal(t, "-1", meta[metaContractDims])
	assert.Equal(t, "true", meta[metaStopScaleGradient])

	bias, err := r.RawTensor("layer.bias")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, bias.AsFloat32())
}

func TestQuantizeErrors(t *testing.T) {
	dir := t.TempDir()
	in := writeCheckpoint(t, dir)
	out := filepath.Join(dir, "out.safetensors")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing precision", []string{"--in", in, "--out", out}, "precision must be set"},
		{"precision too large", []string{"--in", in, "--out", out, "--precision", "24"}, "too many bits"},
		{"bad axis", []string{"--in", in, "--out", out, "--precision", "8", "--contract-dims=3"}, "axis out of range"},
		{"bad dtype", []string{"--in", in, "--out", out, "--precision", "8", "--dtype", "int32"}, "invalid --dtype"},
		{"bad include", []string{"--in", in, "--out", out, "--precision", "8", "--include", "("}, "invalid --include"},
		{"missing input", []string{"--in", filepath.Join(dir, "nope"), "--out", out, "--precision", "8"}, "failed to open file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, append([]string{"quantize", "-q"}, tt.args...)...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	_, err := os.Stat(out)
	assert.True(t, os.IsNotExist(err), "failed runs must not leave an output file")
}

func TestBounds(t *testing.T) {
	stdout, err := run(t, "bounds", "--min", "7", "--max", "8")
	require.NoError(t, err)
	assert.Contains(t, stdout, "63.5")
	assert.Contains(t, stdout, "127.5")
	assert.NotContains(t, stdout, "255.5")

	_, err = run(t, "bounds", "--max", "24")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too many bits")

	_, err = run(t, "bounds", "--min", "5", "--max", "4")
	assert.Error(t, err)
}

func TestBoundsRows(t *testing.T) {
	rows, err := boundsRows(8, 8)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"8", "127.5", "127.499755859375", "0.000244140625"}, rows[0])
}

func TestVersion(t *testing.T) {
	stdout, err := run(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "aqt "))
}

func TestParseDims(t *testing.T) {
	tests := []struct {
		in   string
		want []int
	}{
		{"", nil},
		{"all", nil},
		{"-1", []int{-1}},
		{"0, 2", []int{0, 2}},
	}
	for _, tt := range tests {
		got, err := parseDims(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := parseDims("x")
	assert.Error(t, err)

	assert.Equal(t, "all", formatDims(nil))
	assert.Equal(t, "0,-1", formatDims([]int{0, -1}))
}

func TestTensorDims(t *testing.T) {
	assert.Equal(t, []int{0, 1, 2}, tensorDims(nil, 3))
	assert.Equal(t, []int{0}, tensorDims([]int{}, 1))
	assert.Equal(t, []int{-1}, tensorDims([]int{-1}, 3))
	assert.Empty(t, tensorDims(nil, 0))
}

func TestLogging(t *testing.T) {
	level, err := parseLevel("debug")
	require.NoError(t, err)

	var buf bytes.Buffer
	logger, err := newLogger(&buf, level, "json")
	require.NoError(t, err)
	logger.Debug("hello", "k", 1)
	assert.Contains(t, buf.String(), `"msg":"hello"`)

	_, err = newLogger(&buf, level, "xml")
	assert.Error(t, err)
	_, err = parseLevel("loud")
	assert.Error(t, err)

	_, err = run(t, "--log-format", "xml", "version")
	assert.Error(t, err)
}
