package autodiff

import (
	"fmt"

	"github.com/born-ml/aqt/internal/tensor"
)

// BackwardCapable is an interface for backends that support backward pass.
// AutodiffBackend implements this interface.
type BackwardCapable interface {
	tensor.Backend
	// GetTape returns the gradient tape for backward computation.
	GetTape() *GradientTape
}

// GetTape returns the gradient tape (implements BackwardCapable interface).
func (b *AutodiffBackend[B]) GetTape() *GradientTape {
	return b.tape
}

// Backward computes gradients for a tensor using the AutodiffBackend's tape.
//
// The output gradient is seeded with ones, so for a non-scalar output the
// result is the gradient of sum(t).
//
// Example:
//
//	backend := autodiff.New(cpu.New())
//	backend.Tape().StartRecording()
//	x := tensor.Ones[float32](Shape{2}, backend)
//	y := tensor.New[float32](backend.Mul(x.Raw(), x.Raw()), backend) // y = x²
//	gradients := autodiff.Backward(y, backend)
//	grad := gradients[x.Raw()] // Get gradient for x
func Backward[T tensor.DType, B BackwardCapable](t *tensor.Tensor[T, B], backend B) map[*tensor.RawTensor]*tensor.RawTensor {
	return BackwardRaw(t.Raw(), backend)
}

// BackwardRaw is Backward for a RawTensor of any floating-point dtype,
// including Float16 and BFloat16.
//
// Panics if nothing was recorded or the output is not floating-point.
func BackwardRaw(output *tensor.RawTensor, backend BackwardCapable) map[*tensor.RawTensor]*tensor.RawTensor {
	tape := backend.GetTape()

	if tape.NumOps() == 0 {
		panic("backward: no operations recorded (did you forget to call Tape().StartRecording()?)")
	}
	if !output.DType().IsFloat() {
		panic(fmt.Sprintf("backward: unsupported dtype %s (float types only)", output.DType()))
	}

	outputGrad, err := tensor.FullRaw(output.Shape(), output.DType(), 1, backend.Device())
	if err != nil {
		panic(fmt.Sprintf("backward: failed to create output gradient: %v", err))
	}

	return tape.Backward(output, outputGrad, backend)
}
