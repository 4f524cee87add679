package quant

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClipBound(t *testing.T) {
	assert.Equal(t, 0.5, ClipBound(1))
	assert.Equal(t, 7.5, ClipBound(4))
	assert.Equal(t, 127.5, ClipBound(8))
	assert.Equal(t, 32767.5, ClipBound(16))
	assert.Equal(t, (math.Ldexp(1, 23)-1)/2, ClipBound(23))
}

func TestClipBound_Monotonic(t *testing.T) {
	for p := 1; p < MaxPrecision; p++ {
		assert.Less(t, ClipBound(p), ClipBound(p+1), "precision %d", p)
	}
}

func TestSafeClipBound(t *testing.T) {
	assert.Equal(t, 127.5-math.Ldexp(1, -12), SafeClipBound(8))

	for p := 1; p <= MaxPrecision; p++ {
		safe, clip := SafeClipBound(p), ClipBound(p)
		assert.Less(t, safe, clip, "precision %d", p)
		// Values at the safe bound still round inward.
		assert.LessOrEqual(t, math.Floor(safe+0.5), clip-0.5, "precision %d", p)
	}
}
