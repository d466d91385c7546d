// Copyright 2024 The pdfcore authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package function

import (
	"errors"
	"fmt"
)

// Type3 is a PDF type 3 (stitching) function (ISO 32000-1 7.10.4): a
// 1-input function that partitions [XMin, XMax] into len(Functions)
// consecutive subdomains via Bounds, and re-encodes the input into
// each subfunction's own domain via Encode before dispatching to it.
type Type3 struct {
	XMin, XMax float64
	Range      []float64
	Functions  []Function
	Bounds     []float64 // len(Functions)-1 interior partition points, increasing
	Encode     []float64 // 2 values per subfunction
}

var _ Function = (*Type3)(nil)

func (f *Type3) validate() error {
	if !isRange(f.XMin, f.XMax) {
		return errors.New("function: type 3 has invalid domain")
	}
	if len(f.Functions) == 0 {
		return errors.New("function: type 3 needs at least one subfunction")
	}
	if len(f.Bounds) != len(f.Functions)-1 {
		return fmt.Errorf("function: type 3 needs %d bounds, got %d", len(f.Functions)-1, len(f.Bounds))
	}
	if len(f.Encode) != 2*len(f.Functions) {
		return fmt.Errorf("function: type 3 needs %d encode values, got %d", 2*len(f.Functions), len(f.Encode))
	}
	prev := f.XMin
	for _, b := range f.Bounds {
		if b < prev || b > f.XMax {
			return errors.New("function: type 3 bounds must be non-decreasing and within the domain")
		}
		prev = b
	}
	return nil
}

// Shape implements Function.
func (f *Type3) Shape() (int, int) {
	n := 0
	if len(f.Functions) > 0 {
		_, n = f.Functions[0].Shape()
	}
	return 1, n
}

// findSubdomain returns the index of the subfunction that owns x (already
// clipped to [XMin, XMax]) together with that subfunction's subdomain
// [lo, hi]. When the first bound coincides with XMin, the first
// subdomain degenerates to the single point x == XMin, matching the
// convention most PDF consumers use for that edge case.
func (f *Type3) findSubdomain(x float64) (k int, lo, hi float64) {
	k = len(f.Functions) - 1
	lo = f.XMin
	for i, b := range f.Bounds {
		if x < b || (i == 0 && b == f.XMin && x == f.XMin) {
			k = i
			break
		}
		lo = b
	}
	hi = f.XMax
	if k < len(f.Bounds) {
		hi = f.Bounds[k]
	}
	return k, lo, hi
}

// Apply implements Function.
func (f *Type3) Apply(result []float64, inputs ...float64) {
	if len(f.Functions) == 0 {
		return
	}

	x := 0.0
	if len(inputs) > 0 {
		x = inputs[0]
	}
	x = clip(x, f.XMin, f.XMax)

	k, lo, hi := f.findSubdomain(x)

	e0, e1 := 0.0, 1.0
	if 2*k+1 < len(f.Encode) {
		e0, e1 = f.Encode[2*k], f.Encode[2*k+1]
	}
	xEnc := interpolate(x, lo, hi, e0, e1)

	f.Functions[k].Apply(result, xEnc)
	clipToRange(result, f.Range)
}
