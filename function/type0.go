// Copyright 2024 The pdfcore authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package function

import "errors"

// Type0 is a PDF type 0 (sampled) function (ISO 32000-1 7.10.2): an
// m-dimensional table of n-tuples, sampled on a regular grid of shape
// Size, looked up via multilinear interpolation (or, for a single input,
// optionally a Catmull-Rom cubic spline matching the behaviour common
// PDF consumers such as Ghostscript apply when /Order is 3).
type Type0 struct {
	Domain        []float64 // 2*m
	Range         []float64 // 2*n
	Size          []int     // m entries, each >= 1
	BitsPerSample int       // 1, 2, 4, 8, 12, 16, 24 or 32
	Encode        []float64 // 2*m; default [0, Size[i]-1] per input
	Decode        []float64 // 2*n; default Range
	Samples       []byte    // bit-packed, MSB first
	UseCubic      bool      // /Order 3 (only honoured for m == 1)
}

var _ Function = (*Type0)(nil)

func (f *Type0) repair() {
	m := len(f.Domain) / 2
	n := len(f.Range) / 2
	if f.Encode == nil {
		f.Encode = make([]float64, 0, 2*m)
		for i := 0; i < m; i++ {
			hi := 0.0
			if i < len(f.Size) {
				hi = float64(f.Size[i] - 1)
			}
			f.Encode = append(f.Encode, 0, hi)
		}
	}
	if f.Decode == nil {
		f.Decode = append([]float64(nil), f.Range...)
		_ = n
	}
}

func (f *Type0) validate() error {
	m := len(f.Domain) / 2
	if len(f.Domain)%2 != 0 {
		return errors.New("function: type 0 domain must have an even length")
	}
	if len(f.Size) != m {
		return errors.New("function: type 0 Size must have one entry per input")
	}
	for _, s := range f.Size {
		if s < 1 {
			return errors.New("function: type 0 Size entries must be positive")
		}
	}
	switch f.BitsPerSample {
	case 1, 2, 4, 8, 12, 16, 24, 32:
	default:
		return errors.New("function: type 0 has unsupported BitsPerSample")
	}
	return nil
}

// Shape implements Function.
func (f *Type0) Shape() (int, int) {
	return len(f.Domain) / 2, len(f.Range) / 2
}

// maxSampleValue returns 2^BitsPerSample - 1 as a float64 (up to 2^32-1,
// which is exactly representable).
func (f *Type0) maxSampleValue() float64 {
	return float64((uint64(1) << uint(f.BitsPerSample)) - 1)
}

// extractSampleAtIndex reads the i-th BitsPerSample-wide unsigned sample
// (flat index across positions and outputs) from the bit-packed Samples
// buffer, most-significant-bit first.
func (f *Type0) extractSampleAtIndex(i int) float64 {
	bitOffset := i * f.BitsPerSample
	byteOffset := bitOffset / 8
	bitInByte := bitOffset % 8
	bitsNeeded := f.BitsPerSample

	var val uint64
	for bitsNeeded > 0 {
		if byteOffset >= len(f.Samples) {
			val <<= uint(bitsNeeded)
			break
		}
		b := f.Samples[byteOffset]
		availBits := 8 - bitInByte
		take := availBits
		if take > bitsNeeded {
			take = bitsNeeded
		}
		shift := availBits - take
		mask := byte((1 << uint(take)) - 1)
		chunk := (b >> uint(shift)) & mask
		val = (val << uint(take)) | uint64(chunk)
		bitsNeeded -= take
		bitInByte += take
		if bitInByte >= 8 {
			bitInByte = 0
			byteOffset++
		}
	}
	return float64(val)
}

// Apply implements Function.
func (f *Type0) Apply(result []float64, inputs ...float64) {
	f.repair()
	m := len(f.Size)
	n := len(f.Range) / 2
	if n == 0 {
		n = len(f.Decode) / 2
	}

	in := make([]float64, m)
	copy(in, inputs)
	clipToDomain(in, f.Domain)

	e := make([]float64, m)
	for i := 0; i < m; i++ {
		lo, hi := 0.0, float64(f.Size[i]-1)
		if 2*i+1 < len(f.Encode) {
			lo, hi = f.Encode[2*i], f.Encode[2*i+1]
		}
		dMin, dMax := 0.0, 1.0
		if 2*i+1 < len(f.Domain) {
			dMin, dMax = f.Domain[2*i], f.Domain[2*i+1]
		}
		v := interpolate(in[i], dMin, dMax, lo, hi)
		e[i] = clip(v, 0, float64(f.Size[i]-1))
	}

	var raw []float64 // n raw (undecoded) sample values
	if m == 0 {
		raw = make([]float64, n)
		for j := 0; j < n; j++ {
			raw[j] = f.extractSampleAtIndex(j)
		}
	} else if m == 1 && f.UseCubic {
		raw = f.catmullRom1D(e[0], n)
	} else {
		raw = f.multilinear(e, n)
	}

	for j := 0; j < n && j < len(result); j++ {
		lo, hi := 0.0, f.maxSampleValue()
		dLo, dHi := 0.0, 1.0
		if 2*j+1 < len(f.Decode) {
			dLo, dHi = f.Decode[2*j], f.Decode[2*j+1]
		}
		result[j] = interpolate(raw[j], lo, hi, dLo, dHi)
	}
	clipToRange(result[:min(n, len(result))], f.Range)
}

// flatPosition converts integer per-dimension sample coordinates into the
// flat position index (first dimension varies fastest, ISO 32000-1
// 7.10.2 "Type 0 (Sampled) Functions").
func (f *Type0) flatPosition(idx []int) int {
	m := len(idx)
	if m == 0 {
		return 0
	}
	pos := idx[m-1]
	for k := m - 2; k >= 0; k-- {
		pos = pos*f.Size[k] + idx[k]
	}
	return pos
}

// multilinear interpolates the n outputs at fractional grid coordinates e
// by combining the 2^m surrounding lattice corners.
func (f *Type0) multilinear(e []float64, n int) []float64 {
	m := len(e)
	i0 := make([]int, m)
	frac := make([]float64, m)
	for i, v := range e {
		lo := int(v)
		if lo >= f.Size[i]-1 {
			lo = f.Size[i] - 2
			if lo < 0 {
				lo = 0
			}
		}
		i0[i] = lo
		if f.Size[i] > 1 {
			frac[i] = v - float64(lo)
		}
	}

	out := make([]float64, n)
	corners := 1 << uint(m)
	idx := make([]int, m)
	for c := 0; c < corners; c++ {
		weight := 1.0
		for i := 0; i < m; i++ {
			bit := (c >> uint(i)) & 1
			if bit == 1 {
				idx[i] = i0[i] + 1
				if idx[i] >= f.Size[i] {
					idx[i] = f.Size[i] - 1
				}
				weight *= frac[i]
			} else {
				idx[i] = i0[i]
				weight *= 1 - frac[i]
			}
		}
		if weight == 0 {
			continue
		}
		pos := f.flatPosition(idx)
		for j := 0; j < n; j++ {
			out[j] += weight * f.extractSampleAtIndex(pos*n+j)
		}
	}
	return out
}

// catmullRom1D interpolates each of the n outputs along a single input
// dimension using a uniform Catmull-Rom spline. Segments at the ends of
// the sample range are evaluated with the missing neighbour replaced by
// the nearest edge sample (a zero-gradient boundary condition), matching
// widely deployed PDF consumers' handling of /Order 3 functions at the
// domain boundary.
func (f *Type0) catmullRom1D(e float64, n int) []float64 {
	size := f.Size[0]
	out := make([]float64, n)
	if size == 1 {
		for j := 0; j < n; j++ {
			out[j] = f.extractSampleAtIndex(j)
		}
		return out
	}

	seg := int(e)
	if seg >= size-1 {
		seg = size - 2
	}
	t := e - float64(seg)

	sample := func(idx, j int) float64 {
		if idx < 0 {
			idx = 0
		}
		if idx >= size {
			idx = size - 1
		}
		return f.extractSampleAtIndex(idx*n + j)
	}

	for j := 0; j < n; j++ {
		p0 := sample(seg-1, j)
		p1 := sample(seg, j)
		p2 := sample(seg+1, j)
		p3 := sample(seg+2, j)
		t2 := t * t
		t3 := t2 * t
		out[j] = 0.5 * (2*p1 +
			(-p0+p2)*t +
			(2*p0-5*p1+4*p2-p3)*t2 +
			(-p0+3*p1-3*p2+p3)*t3)
	}
	return out
}
