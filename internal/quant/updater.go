package quant

import "github.com/born-ml/aqt/internal/tensor"

// StatisticsUpdater is implemented by quantizers that observe tensors between
// steps, such as a static quantizer that accumulates range statistics and
// later freezes its scale.
//
// TensorQuantizer implements it as a no-op: dynamic quantization keeps no
// state across calls.
type StatisticsUpdater interface {
	Update(x *tensor.RawTensor) error
}

var _ StatisticsUpdater = (*TensorQuantizer[tensor.Backend])(nil)
