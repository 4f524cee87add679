package serialization

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// Write encodes tensors as a SafeTensors stream.
//
// Tensors are laid out in name order, which keeps output deterministic.
// Names must be unique and pass ValidateTensorName. Each tensor's data length
// must match its shape and dtype.
func Write(w io.Writer, tensors []Tensor, metadata map[string]string) error {
	sorted := make([]Tensor, len(tensors))
	copy(sorted, tensors)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})

	if len(sorted) > MaxTensorCount {
		return &ValidationError{
			Type:    "too_many_tensors",
			Details: fmt.Sprintf("got %d, max %d", len(sorted), MaxTensorCount),
			Err:     ErrTooManyTensors,
		}
	}
	for i, t := range sorted {
		if err := ValidateTensorName(t.Name); err != nil {
			return err
		}
		if i > 0 && sorted[i-1].Name == t.Name {
			return &ValidationError{
				Type:    "duplicate_name",
				Tensor:  t.Name,
				Details: "name appears more than once",
				Err:     ErrInvalidTensorName,
			}
		}
		if _, err := dtypeToSafeTensors(t.DType); err != nil {
			return fmt.Errorf("tensor %q: %w", t.Name, err)
		}
		meta := TensorMeta{Name: t.Name, DType: t.DType, Shape: t.Shape, Size: int64(len(t.Data))}
		if err := ValidateTensorSize(meta); err != nil {
			return err
		}
	}

	header, err := encodeHeader(sorted, metadata)
	if err != nil {
		return err
	}

	var prefix [HeaderSizeBytes]byte
	binary.LittleEndian.PutUint64(prefix[:], uint64(len(header)))
	if _, err := w.Write(prefix[:]); err != nil {
		return fmt.Errorf("failed to write header size: %w", err)
	}
	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, t := range sorted {
		if _, err := w.Write(t.Data); err != nil {
			return fmt.Errorf("failed to write tensor %q: %w", t.Name, err)
		}
	}

	return nil
}

// WriteFile writes tensors to path. The file is written to a temporary file
// in the same directory and renamed into place, so readers never observe a
// partial checkpoint.
func WriteFile(path string, tensors []Tensor, metadata map[string]string) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	bw := bufio.NewWriterSize(tmp, 1<<20)
	if err = Write(bw, tensors, metadata); err != nil {
		return err
	}
	if err = bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to rename: %w", err)
	}
	return nil
}
