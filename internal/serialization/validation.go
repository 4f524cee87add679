package serialization

import (
	"fmt"
	"math"
	"slices"
	"sort"
	"strings"
)

// Validation limits for security and resource protection.
const (
	MaxHeaderSize    = 100 * 1024 * 1024 // 100MB - maximum header size
	MaxTensorCount   = 100_000           // Maximum number of tensors in a file
	MaxTensorNameLen = 4096              // Maximum tensor name length
)

// ValidationLevel controls the strictness of validation.
type ValidationLevel int

const (
	// ValidationStrict performs all validation checks (default, recommended for production).
	ValidationStrict ValidationLevel = iota
	// ValidationNormal checks names, sizes and bounds but allows overlapping tensors.
	ValidationNormal
)

// ValidateTensorOffsets checks for negative, out-of-bounds and overlapping
// tensor regions. Malformed files could otherwise expose bytes of one tensor
// through another or read past the mapping.
func ValidateTensorOffsets(tensors []TensorMeta, dataSize int64, allowOverlap bool) error {
	if len(tensors) > MaxTensorCount {
		return &ValidationError{
			Type:    "too_many_tensors",
			Details: fmt.Sprintf("got %d, max %d", len(tensors), MaxTensorCount),
			Err:     ErrTooManyTensors,
		}
	}

	// Sort tensors by offset for efficient overlap detection.
	sorted := make([]TensorMeta, len(tensors))
	copy(sorted, tensors)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Offset != sorted[j].Offset {
			return sorted[i].Offset < sorted[j].Offset
		}
		return sorted[i].Name < sorted[j].Name
	})

	for _, t := range sorted {
		// Check for negative values (potential integer overflow attacks).
		if t.Offset < 0 || t.Size < 0 {
			return &ValidationError{
				Type:    "negative_offset",
				Tensor:  t.Name,
				Details: fmt.Sprintf("offset=%d, size=%d (negative values not allowed)", t.Offset, t.Size),
				Err:     ErrNegativeOffset,
			}
		}

		if t.Offset > dataSize || t.Size > dataSize-t.Offset {
			return &ValidationError{
				Type:    "out_of_bounds",
				Tensor:  t.Name,
				Details: fmt.Sprintf("offset %d + size %d > data_size %d", t.Offset, t.Size, dataSize),
				Err:     ErrOutOfBounds,
			}
		}
	}

	if allowOverlap {
		return nil
	}

	// Zero-size tensors occupy no bytes and cannot overlap anything.
	var prev *TensorMeta
	for i := range sorted {
		t := &sorted[i]
		if t.Size == 0 {
			continue
		}
		if prev != nil && prev.Offset+prev.Size > t.Offset {
			return &ValidationError{
				Type:    "offset_overlap",
				Tensor:  prev.Name,
				Tensor2: t.Name,
				Details: fmt.Sprintf("regions [%d-%d] and [%d-%d] overlap",
					prev.Offset, prev.Offset+prev.Size, t.Offset, t.Offset+t.Size),
				Err: ErrOffsetOverlap,
			}
		}
		prev = t
	}

	return nil
}

// ValidateTensorSize checks that a tensor's byte size matches its shape and
// dtype. Shapes whose byte size does not fit in int64 are rejected.
func ValidateTensorSize(t TensorMeta) error {
	want, ok := byteSize(t.Shape, int64(t.DType.Size()))
	if !ok {
		return &ValidationError{
			Type:    "size_overflow",
			Tensor:  t.Name,
			Details: fmt.Sprintf("shape %v of %s overflows int64 bytes", t.Shape, t.DType),
			Err:     ErrSizeMismatch,
		}
	}
	if t.Size != want {
		return &ValidationError{
			Type:    "size_mismatch",
			Tensor:  t.Name,
			Details: fmt.Sprintf("shape %v of %s needs %d bytes, header declares %d", t.Shape, t.DType, want, t.Size),
			Err:     ErrSizeMismatch,
		}
	}
	return nil
}

// byteSize returns the product of shape and elemSize, or false if it
// overflows int64. Any zero dimension gives 0.
func byteSize(shape []int, elemSize int64) (int64, bool) {
	if slices.Contains(shape, 0) {
		return 0, true
	}
	n := elemSize
	for _, d := range shape {
		if d < 0 || n > math.MaxInt64/int64(d) {
			return 0, false
		}
		n *= int64(d)
	}
	return n, true
}

// ValidateTensorName rejects empty, oversized or reserved names and names
// containing null bytes.
func ValidateTensorName(name string) error {
	if name == "" || name == MetadataKey {
		return &ValidationError{
			Type:    "invalid_name",
			Tensor:  name,
			Details: "empty or reserved name",
			Err:     ErrInvalidTensorName,
		}
	}

	if len(name) > MaxTensorNameLen {
		return &ValidationError{
			Type:    "name_too_long",
			Tensor:  name[:64] + "...",
			Details: fmt.Sprintf("length %d > max %d", len(name), MaxTensorNameLen),
			Err:     ErrTensorNameTooLong,
		}
	}

	// Prevent null bytes (can bypass length checks in some contexts).
	if strings.Contains(name, "\x00") {
		return &ValidationError{
			Type:    "invalid_name",
			Tensor:  name,
			Details: "contains null byte",
			Err:     ErrInvalidTensorName,
		}
	}

	return nil
}

// ValidateHeader performs comprehensive header validation.
func ValidateHeader(h *Header, dataSize int64, level ValidationLevel) error {
	// Validate tensor count (DoS prevention).
	if len(h.Tensors) > MaxTensorCount {
		return &ValidationError{
			Type:    "too_many_tensors",
			Details: fmt.Sprintf("got %d, max %d", len(h.Tensors), MaxTensorCount),
			Err:     ErrTooManyTensors,
		}
	}

	for _, t := range h.Tensors {
		if err := ValidateTensorName(t.Name); err != nil {
			return err
		}
		if err := ValidateTensorSize(t); err != nil {
			return err
		}
	}

	return ValidateTensorOffsets(h.Tensors, dataSize, level != ValidationStrict)
}
