// Copyright 2024 The pdfcore authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package function

import (
	"errors"
	"math"
)

// Type2 is a PDF type 2 (exponential interpolation) function (ISO
// 32000-1 7.10.3): y_j = C0_j + x^N * (C1_j - C0_j), for a single
// input x clipped to [XMin, XMax].
type Type2 struct {
	XMin, XMax float64
	Range      []float64 // optional; empty means unclipped
	C0, C1     []float64 // default {0} and {1} respectively, per spec
	N          float64
}

var _ Function = (*Type2)(nil)

func (f *Type2) repair() {
	if f.C0 == nil {
		f.C0 = []float64{0}
	}
	if f.C1 == nil {
		f.C1 = []float64{1}
	}
}

func (f *Type2) validate() error {
	if !isRange(f.XMin, f.XMax) {
		return errors.New("function: type 2 has invalid domain")
	}
	if len(f.C0) != len(f.C1) {
		return errors.New("function: type 2 C0/C1 length mismatch")
	}
	if len(f.C0) == 0 {
		return errors.New("function: type 2 needs at least one output")
	}
	if f.N != math.Trunc(f.N) && f.XMin < 0 {
		return errors.New("function: type 2 non-integer N requires a non-negative domain")
	}
	return nil
}

// Shape implements Function.
func (f *Type2) Shape() (int, int) {
	return 1, len(f.C0)
}

// Apply implements Function.
func (f *Type2) Apply(result []float64, inputs ...float64) {
	f.repair()

	x := 0.0
	if len(inputs) > 0 {
		x = inputs[0]
	}
	x = clip(x, f.XMin, f.XMax)

	xn := math.Pow(x, f.N)
	for i := range f.C0 {
		if i >= len(result) {
			break
		}
		result[i] = f.C0[i] + xn*(f.C1[i]-f.C0[i])
	}
	clipToRange(result, f.Range)
}
