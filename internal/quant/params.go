package quant

import "github.com/born-ml/aqt/internal/tensor"

// Params are the user-facing quantization settings of one tensor.
// The YAML tags match the aqt command's configuration file.
type Params struct {
	Precision         *int `yaml:"precision,omitempty"`
	StopScaleGradient bool `yaml:"stop_scale_gradient,omitempty"`
}

// WeightParams configures the quantization of layer weights.
type WeightParams = Params

// ActParams configures the quantization of layer activations.
type ActParams = Params

// Config validates p and converts it to a Config.
func (p *Params) Config() (Config, error) {
	if p == nil {
		return Config{}, nil
	}
	return NewConfig(p.Precision, p.StopScaleGradient)
}

// FromParams creates a named quantizer from optional params.
// Nil params yield a disabled quantizer.
func FromParams[B tensor.Backend](name string, p *Params, backend B) (*TensorQuantizer[B], error) {
	cfg, err := p.Config()
	if err != nil {
		return nil, err
	}
	return New(name, cfg, backend), nil
}
