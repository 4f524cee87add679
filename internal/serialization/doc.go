// Package serialization reads and writes SafeTensors checkpoint files.
//
// SafeTensors layout:
//
//	[8 bytes: header size N (uint64 LE)]
//	[N bytes: JSON header, space-padded to a multiple of 8]
//	[tensor data: raw little-endian bytes]
//
// The JSON header maps tensor names to {dtype, shape, data_offsets} and may
// carry a "__metadata__" object of string pairs. Offsets are relative to the
// start of the data section.
//
// Reading memory-maps the file: only the header is parsed up front and tensor
// bytes are served from the OS page cache. Every offset is validated (negative
// values, out-of-bounds ranges, overlaps, size/shape mismatch) before any
// tensor is exposed.
//
// Example usage:
//
//	r, err := serialization.Open("model.safetensors")
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//	for _, meta := range r.Tensors() {
//	    raw, err := r.RawTensor(meta.Name)
//	    ...
//	}
//
//	err = serialization.WriteFile("out.safetensors", entries, map[string]string{"format": "pt"})
package serialization
