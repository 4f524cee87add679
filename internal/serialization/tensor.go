package serialization

import (
	"fmt"

	"github.com/born-ml/aqt/internal/tensor"
)

// Tensor is one named tensor to be written: element bytes plus layout.
// Shape may contain zero dimensions, which RawTensor cannot represent, so
// tensors read from a file can be written back unchanged.
type Tensor struct {
	Name  string
	DType tensor.DataType
	Shape []int
	Data  []byte
}

// FromRaw wraps a RawTensor for writing. The data is not copied.
func FromRaw(name string, raw *tensor.RawTensor) Tensor {
	return Tensor{
		Name:  name,
		DType: raw.DType(),
		Shape: raw.Shape().Clone(),
		Data:  raw.Data(),
	}
}

// Raw converts the entry into a RawTensor (copying the data).
func (t Tensor) Raw(device tensor.Device) (*tensor.RawTensor, error) {
	raw, err := tensor.FromBytes(t.Data, tensor.Shape(t.Shape), t.DType, device)
	if err != nil {
		return nil, fmt.Errorf("tensor %q: %w", t.Name, err)
	}
	return raw, nil
}
