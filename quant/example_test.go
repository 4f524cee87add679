// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package quant_test

import (
	"fmt"

	"github.com/born-ml/aqt/backend/cpu"
	"github.com/born-ml/aqt/quant"
	"github.com/born-ml/aqt/tensor"
)

func ExampleTensorQuantizer_ToQuant() {
	backend := cpu.New()
	cfg, err := quant.NewConfig(quant.Bits(8), false)
	if err != nil {
		panic(err)
	}
	q := quant.New("weights", cfg, backend)

	x, err := tensor.FromSlice([]float32{3, -200, 0}, tensor.Shape{3}, backend)
	if err != nil {
		panic(err)
	}

	scale, err := q.QuantScale(x.Raw(), []int{0}, tensor.Float32)
	if err != nil {
		panic(err)
	}
	ints, err := q.ToQuant(backend.Div(x.Raw(), scale), tensor.Float32)
	if err != nil {
		panic(err)
	}
	fmt.Println(scale.Shape(), ints.AsFloat32())
	// Output: [1] [2 -127 0]
}

func ExampleClipBound() {
	fmt.Println(quant.ClipBound(8), quant.ClipBound(4))
	// Output: 127.5 7.5
}

func ExampleNewConfig() {
	_, err := quant.NewConfig(quant.Bits(24), false)
	fmt.Println(err)
	// Output: quant: invalid precision 24: too many bits, float32 has less precision
}
