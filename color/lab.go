// Copyright 2024 The pdfcore authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package color

import (
	pdf "pdfcore.dev/engine"
)

// labSpace is the CIE 1976 L*a*b* colour space (ISO 32000-1 8.6.5.4):
// a perceptually uniform space defined relative to a white point, with
// L* in [0, 100] and a*/b* clamped to the declared Range.
type labSpace struct {
	whitePoint [3]float64
	rangeAB    [4]float64 // aMin, aMax, bMin, bMax
}

func parseLab(r pdf.Getter, arr pdf.Array) (Space, error) {
	sp := &labSpace{
		whitePoint: WhitePointD50,
		rangeAB:    [4]float64{-100, 100, -100, 100},
	}
	if len(arr) >= 2 {
		if dict, err := pdf.GetDict(r, arr[1]); err == nil && dict != nil {
			if wp, err := pdf.GetFloatArray(r, dict["WhitePoint"]); err == nil && len(wp) == 3 {
				copy(sp.whitePoint[:], wp)
			}
			if rg, err := pdf.GetFloatArray(r, dict["Range"]); err == nil && len(rg) == 4 {
				copy(sp.rangeAB[:], rg)
			}
		}
	}
	return sp, nil
}

func (s *labSpace) Family() Family { return FamilyLab }
func (s *labSpace) Channels() int  { return 3 }
func (s *labSpace) Default() Color { return &labColor{space: s} }

// New builds the colour an sc/scn operator's three L*, a*, b* operands
// select.
func (s *labSpace) New(comps []float64) Color {
	c := &labColor{space: s}
	if len(comps) >= 3 {
		c.L, c.A, c.B = comps[0], comps[1], comps[2]
	}
	return c
}

type labColor struct {
	space   *labSpace
	L, A, B float64
}

func (c *labColor) Space() Space          { return c.space }
func (c *labColor) Components() []float64 { return []float64{c.L, c.A, c.B} }

func (c *labColor) ToXYZ() (X, Y, Z float64) {
	rng := c.space.rangeAB
	a := clampRange(c.A, rng[0], rng[1])
	b := clampRange(c.B, rng[2], rng[3])
	l := clampRange(c.L, 0, 100)

	fy := (l + 16) / 116
	fx := fy + a/500
	fz := fy - b/200

	wp := c.space.whitePoint
	return wp[0] * labInvF(fx), wp[1] * labInvF(fy), wp[2] * labInvF(fz)
}

func (c *labColor) RGBA() (r, g, b, a uint32) {
	X, Y, Z := c.ToXYZ()
	X, Y, Z = bradfordAdapt(X, Y, Z, c.space.whitePoint, WhitePointD65)
	rf, gf, bf := xyzToSRGB(X, Y, Z)
	return toUint32(rf), toUint32(gf), toUint32(bf), 0xffff
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
