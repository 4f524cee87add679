package quant

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Rejection(t *testing.T) {
	_, err := NewConfig(Bits(24), false)
	require.Error(t, err)

	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "precision", cfgErr.Field)
	assert.Equal(t, 24, cfgErr.Value)
	assert.ErrorIs(t, err, ErrPrecisionTooLarge)

	cfg, err := NewConfig(Bits(23), true)
	require.NoError(t, err)
	p, ok := cfg.Precision()
	assert.True(t, ok)
	assert.Equal(t, 23, p)
	assert.True(t, cfg.StopScaleGradient())
}

func TestNewConfig(t *testing.T) {
	tests := []struct {
		name      string
		precision *int
		wantErr   error
		enabled   bool
	}{
		{"Disabled", nil, nil, false},
		{"OneBit", Bits(1), nil, true},
		{"Int4", Bits(4), nil, true},
		{"Int8", Bits(8), nil, true},
		{"Max", Bits(MaxPrecision), nil, true},
		{"TooLarge", Bits(MaxPrecision + 1), ErrPrecisionTooLarge, false},
		{"Zero", Bits(0), ErrPrecisionNotPositive, false},
		{"Negative", Bits(-3), ErrPrecisionNotPositive, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := NewConfig(tt.precision, false)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.enabled, cfg.Enabled())
			assert.Equal(t, ModeDynamic, cfg.Mode())
		})
	}
}

func TestNewConfig_CopiesPrecision(t *testing.T) {
	bits := 8
	cfg, err := NewConfig(&bits, false)
	require.NoError(t, err)

	bits = 30
	p, _ := cfg.Precision()
	assert.Equal(t, 8, p)
}

func TestNewConfigWithMode_Static(t *testing.T) {
	_, err := NewConfigWithMode(Bits(8), false, ModeStatic)
	require.ErrorIs(t, err, ErrStaticUnsupported)

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "mode", cfgErr.Field)
	assert.Contains(t, err.Error(), "static")
}

func TestConfig_ZeroValue(t *testing.T) {
	var cfg Config
	assert.False(t, cfg.Enabled())
	assert.False(t, cfg.StopScaleGradient())
	assert.Equal(t, "disabled", cfg.String())
}

func TestConfig_String(t *testing.T) {
	cfg, err := NewConfig(Bits(4), true)
	require.NoError(t, err)
	assert.Equal(t, "int4(dynamic, stop_scale_gradient=true)", cfg.String())
	assert.Equal(t, "Mode(7)", Mode(7).String())
}

func TestParams(t *testing.T) {
	var nilParams *Params
	cfg, err := nilParams.Config()
	require.NoError(t, err)
	assert.False(t, cfg.Enabled())

	wp := &WeightParams{Precision: Bits(8), StopScaleGradient: true}
	cfg, err = wp.Config()
	require.NoError(t, err)
	assert.True(t, cfg.Enabled())
	assert.True(t, cfg.StopScaleGradient())

	ap := &ActParams{Precision: Bits(32)}
	_, err = ap.Config()
	assert.ErrorIs(t, err, ErrPrecisionTooLarge)
}
