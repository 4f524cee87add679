package serialization

import (
	"fmt"
	"sort"

	"github.com/born-ml/aqt/internal/tensor"
	json "github.com/goccy/go-json"
)

// Format constants.
const (
	HeaderSizeBytes = 8              // Little-endian uint64 header length prefix
	HeaderAlignment = 8              // JSON header is space-padded to this multiple
	MetadataKey     = "__metadata__" // Reserved header key for string metadata
)

// SafeTensors dtype names.
const (
	DTypeF64  = "F64"
	DTypeF32  = "F32"
	DTypeF16  = "F16"
	DTypeBF16 = "BF16"
	DTypeI64  = "I64"
	DTypeI32  = "I32"
	DTypeU8   = "U8"
	DTypeBool = "BOOL"
)

// headerEntry is one tensor record of the JSON header.
type headerEntry struct {
	DType       string   `json:"dtype"`
	Shape       []int64  `json:"shape"`
	DataOffsets [2]int64 `json:"data_offsets"`
}

// TensorMeta describes a tensor stored in a SafeTensors file.
type TensorMeta struct {
	Name   string          // Tensor name (e.g., "layer.0.weight")
	DType  tensor.DataType // Element type
	Shape  []int           // Tensor shape (may contain zero dims)
	Offset int64           // Offset in the data section
	Size   int64           // Size in bytes
}

// NumElements returns the number of elements described by Shape. It is
// exact for any shape that passed ValidateTensorSize.
func (m TensorMeta) NumElements() int64 {
	n := int64(1)
	for _, d := range m.Shape {
		n *= int64(d)
	}
	return n
}

// Header is the parsed SafeTensors header.
// Tensors are ordered by data offset.
type Header struct {
	Tensors  []TensorMeta
	Metadata map[string]string
}

// dtypeToSafeTensors converts tensor.DataType to SafeTensors dtype string.
func dtypeToSafeTensors(dt tensor.DataType) (string, error) {
	switch dt {
	case tensor.Float64:
		return DTypeF64, nil
	case tensor.Float32:
		return DTypeF32, nil
	case tensor.Float16:
		return DTypeF16, nil
	case tensor.BFloat16:
		return DTypeBF16, nil
	case tensor.Int64:
		return DTypeI64, nil
	case tensor.Int32:
		return DTypeI32, nil
	case tensor.Uint8:
		return DTypeU8, nil
	case tensor.Bool:
		return DTypeBool, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedDType, dt)
	}
}

// safeTensorsToDtype converts a SafeTensors dtype string to tensor.DataType.
func safeTensorsToDtype(s string) (tensor.DataType, error) {
	switch s {
	case DTypeF64:
		return tensor.Float64, nil
	case DTypeF32:
		return tensor.Float32, nil
	case DTypeF16:
		return tensor.Float16, nil
	case DTypeBF16:
		return tensor.BFloat16, nil
	case DTypeI64:
		return tensor.Int64, nil
	case DTypeI32:
		return tensor.Int32, nil
	case DTypeU8:
		return tensor.Uint8, nil
	case DTypeBool:
		return tensor.Bool, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedDType, s)
	}
}

// parseHeader decodes the JSON header.
func parseHeader(data []byte) (*Header, error) {
	var rawMap map[string]json.RawMessage
	if err := json.Unmarshal(data, &rawMap); err != nil {
		return nil, fmt.Errorf("failed to parse header JSON: %w", err)
	}

	h := &Header{Tensors: make([]TensorMeta, 0, len(rawMap))}
	for name, value := range rawMap {
		if name == MetadataKey {
			if err := json.Unmarshal(value, &h.Metadata); err != nil {
				return nil, fmt.Errorf("failed to parse metadata: %w", err)
			}
			continue
		}

		var entry headerEntry
		if err := json.Unmarshal(value, &entry); err != nil {
			return nil, fmt.Errorf("failed to parse tensor %q: %w", name, err)
		}
		meta, err := entry.meta(name)
		if err != nil {
			return nil, err
		}
		h.Tensors = append(h.Tensors, meta)
	}

	sort.Slice(h.Tensors, func(i, j int) bool {
		if h.Tensors[i].Offset != h.Tensors[j].Offset {
			return h.Tensors[i].Offset < h.Tensors[j].Offset
		}
		return h.Tensors[i].Name < h.Tensors[j].Name
	})
	return h, nil
}

func (e headerEntry) meta(name string) (TensorMeta, error) {
	dtype, err := safeTensorsToDtype(e.DType)
	if err != nil {
		return TensorMeta{}, fmt.Errorf("tensor %q: %w", name, err)
	}

	shape := make([]int, len(e.Shape))
	for i, d := range e.Shape {
		if d < 0 {
			return TensorMeta{}, &ValidationError{
				Type:    "invalid_shape",
				Tensor:  name,
				Details: fmt.Sprintf("negative dimension %d in %v", d, e.Shape),
				Err:     ErrSizeMismatch,
			}
		}
		shape[i] = int(d)
	}

	return TensorMeta{
		Name:   name,
		DType:  dtype,
		Shape:  shape,
		Offset: e.DataOffsets[0],
		Size:   e.DataOffsets[1] - e.DataOffsets[0],
	}, nil
}

// encodeHeader builds the space-padded JSON header for tensors laid out in order.
func encodeHeader(tensors []Tensor, metadata map[string]string) ([]byte, error) {
	header := make(map[string]any, len(tensors)+1)
	if len(metadata) > 0 {
		header[MetadataKey] = metadata
	}

	var offset int64
	for _, t := range tensors {
		dtype, err := dtypeToSafeTensors(t.DType)
		if err != nil {
			return nil, fmt.Errorf("tensor %q: %w", t.Name, err)
		}
		shape := make([]int64, len(t.Shape))
		for i, d := range t.Shape {
			shape[i] = int64(d)
		}
		size := int64(len(t.Data))
		header[t.Name] = headerEntry{
			DType:       dtype,
			Shape:       shape,
			DataOffsets: [2]int64{offset, offset + size},
		}
		offset += size
	}

	data, err := json.Marshal(header)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal header: %w", err)
	}

	for len(data)%HeaderAlignment != 0 {
		data = append(data, ' ')
	}
	return data, nil
}
