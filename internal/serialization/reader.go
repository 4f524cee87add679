package serialization

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/born-ml/aqt/internal/tensor"
)

// Reader provides memory-mapped access to a SafeTensors file.
// Only the header is parsed on Open; tensor bytes are served from the mapping.
//
// Slices returned by Bytes alias the mapping and become invalid after Close.
type Reader struct {
	file       *os.File
	data       []byte // mmap'd region (read-only)
	size       int64
	header     Header
	index      map[string]int
	dataOffset int64
	dataSize   int64
	closed     bool
}

// Open memory-maps a SafeTensors file and validates its header.
//
// Important: Always call Close() when done to unmap the file (use defer).
func Open(path string) (*Reader, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for checkpoint loading
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	stat, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if stat.Size() < HeaderSizeBytes {
		_ = file.Close()
		return nil, fmt.Errorf("%w: %d bytes (minimum %d required)", ErrTruncated, stat.Size(), HeaderSizeBytes)
	}

	data, err := mmapFile(file, stat.Size())
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("mmap failed: %w", err)
	}

	r := &Reader{
		file: file,
		data: data,
		size: stat.Size(),
	}

	if err := r.parseHeader(); err != nil {
		_ = r.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return r, nil
}

func (r *Reader) parseHeader() error {
	headerSize := binary.LittleEndian.Uint64(r.data[:HeaderSizeBytes])
	if headerSize > MaxHeaderSize {
		return fmt.Errorf("%w: %d bytes", ErrHeaderTooLarge, headerSize)
	}

	headerEnd := HeaderSizeBytes + int64(headerSize) //nolint:gosec // G115: bounded by MaxHeaderSize
	if headerEnd > r.size {
		return fmt.Errorf("%w: header ends at %d, file size %d", ErrTruncated, headerEnd, r.size)
	}

	h, err := parseHeader(r.data[HeaderSizeBytes:headerEnd])
	if err != nil {
		return err
	}

	r.dataOffset = headerEnd
	r.dataSize = r.size - headerEnd
	if err := ValidateHeader(h, r.dataSize, ValidationStrict); err != nil {
		return fmt.Errorf("header validation failed: %w", err)
	}

	r.header = *h
	r.index = make(map[string]int, len(h.Tensors))
	for i, t := range h.Tensors {
		r.index[t.Name] = i
	}
	return nil
}

// Close unmaps and closes the file.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true

	var err error
	if r.data != nil {
		err = munmapFile(r.data)
		r.data = nil
	}

	if closeErr := r.file.Close(); closeErr != nil && err == nil {
		err = closeErr
	}

	return err
}

// Header returns the parsed header.
func (r *Reader) Header() Header {
	return r.header
}

// Tensors returns tensor metadata ordered by data offset.
func (r *Reader) Tensors() []TensorMeta {
	return r.header.Tensors
}

// Metadata returns the "__metadata__" pairs, or nil if the file has none.
func (r *Reader) Metadata() map[string]string {
	return r.header.Metadata
}

// Names returns tensor names in file order.
func (r *Reader) Names() []string {
	names := make([]string, len(r.header.Tensors))
	for i, t := range r.header.Tensors {
		names[i] = t.Name
	}
	return names
}

// TensorInfo returns metadata about a specific tensor.
func (r *Reader) TensorInfo(name string) (TensorMeta, error) {
	i, ok := r.index[name]
	if !ok {
		return TensorMeta{}, fmt.Errorf("%w: %q", ErrTensorNotFound, name)
	}
	return r.header.Tensors[i], nil
}

// Bytes returns a zero-copy view of a tensor's data.
func (r *Reader) Bytes(name string) ([]byte, error) {
	if r.closed {
		return nil, ErrClosed
	}
	meta, err := r.TensorInfo(name)
	if err != nil {
		return nil, err
	}
	start := r.dataOffset + meta.Offset
	return r.data[start : start+meta.Size : start+meta.Size], nil
}

// Tensor returns a tensor entry whose data aliases the mapping.
func (r *Reader) Tensor(name string) (Tensor, error) {
	data, err := r.Bytes(name)
	if err != nil {
		return Tensor{}, err
	}
	meta := r.header.Tensors[r.index[name]]
	return Tensor{
		Name:  meta.Name,
		DType: meta.DType,
		Shape: append([]int(nil), meta.Shape...),
		Data:  data,
	}, nil
}

// RawTensor copies a tensor out of the mapping into a RawTensor.
// Fails for zero-size tensors, which RawTensor cannot represent.
func (r *Reader) RawTensor(name string) (*tensor.RawTensor, error) {
	t, err := r.Tensor(name)
	if err != nil {
		return nil, err
	}
	return t.Raw(tensor.CPU)
}

// DataChecksum returns the SHA-256 of the data section.
func (r *Reader) DataChecksum() ([32]byte, error) {
	if r.closed {
		return [32]byte{}, ErrClosed
	}
	return ComputeChecksum(r.data[r.dataOffset:]), nil
}
