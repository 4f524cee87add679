package cpu

import (
	"github.com/born-ml/aqt/internal/tensor"
)

// computeBroadcastStridesForShape computes strides for broadcasting a shape to outShape.
// Returns strides where dimensions of size 1 have stride 0 (for broadcasting).
func computeBroadcastStridesForShape(inShape, outShape tensor.Shape) []int {
	outDim := len(outShape)
	strides := make([]int, outDim)

	// Pad input shape with 1s on the left
	inDim := len(inShape)
	offset := outDim - inDim

	origStrides := inShape.ComputeStrides()

	for i := 0; i < outDim; i++ {
		inIdx := i - offset
		switch {
		case inIdx < 0 || inIdx >= inDim:
			strides[i] = 0
		case inShape[inIdx] == 1:
			strides[i] = 0
		default:
			strides[i] = origStrides[inIdx]
		}
	}

	return strides
}

// computeFlatIndex computes the flat index in the source array for a given output index.
// outStrides: strides of the output shape.
// inStrides: broadcast-adjusted strides of the input shape.
func computeFlatIndex(outIdx int, outStrides, inStrides []int) int {
	flatIdx := 0
	for i := range outStrides {
		coord := outIdx / outStrides[i]
		outIdx %= outStrides[i]
		flatIdx += coord * inStrides[i]
	}
	return flatIdx
}

// broadcastIndexer maps output positions to input positions for one operand.
// A nil indexer means the operand already has the output shape.
type broadcastIndexer struct {
	outStrides []int
	inStrides  []int
}

func newBroadcastIndexer(inShape, outShape tensor.Shape) *broadcastIndexer {
	if inShape.Equal(outShape) {
		return nil
	}
	return &broadcastIndexer{
		outStrides: outShape.ComputeStrides(),
		inStrides:  computeBroadcastStridesForShape(inShape, outShape),
	}
}

func (bi *broadcastIndexer) index(outIdx int) int {
	if bi == nil {
		return outIdx
	}
	return computeFlatIndex(outIdx, bi.outStrides, bi.inStrides)
}
