// Copyright 2024 The pdfcore authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package color

import "math"

// WhitePointD50 is the CIE 1931 XYZ coordinates of the D50 illuminant,
// the PDF document interchange colour space (ISO 32000-1 8.9.5.2).
var WhitePointD50 = [3]float64{0.9642, 1.0, 0.8249}

// WhitePointD65 is the CIE 1931 XYZ coordinates of the D65 illuminant,
// the reference white of sRGB and most calibrated monitor profiles.
var WhitePointD65 = [3]float64{0.9505, 1.0, 1.0890}

// bradfordAdapt chromatically adapts an XYZ colour from one reference
// white to another using the Bradford cone-response transform, the
// method ICC profiles and PDF CIE-based colour spaces are specified to
// use when converting between illuminants.
func bradfordAdapt(X, Y, Z float64, from, to [3]float64) (float64, float64, float64) {
	// Bradford cone response matrix and its inverse.
	m := [3][3]float64{
		{0.8951, 0.2664, -0.1614},
		{-0.7502, 1.7135, 0.0367},
		{0.0389, -0.0685, 1.0296},
	}
	mInv := [3][3]float64{
		{0.9869929, -0.1470543, 0.1599627},
		{0.4323053, 0.5183603, 0.0492912},
		{-0.0085287, 0.0400428, 0.9684867},
	}

	apply := func(mat [3][3]float64, x, y, z float64) (float64, float64, float64) {
		return mat[0][0]*x + mat[0][1]*y + mat[0][2]*z,
			mat[1][0]*x + mat[1][1]*y + mat[1][2]*z,
			mat[2][0]*x + mat[2][1]*y + mat[2][2]*z
	}

	rhoS, gammaS, betaS := apply(m, from[0], from[1], from[2])
	rhoD, gammaD, betaD := apply(m, to[0], to[1], to[2])
	rho, gamma, beta := apply(m, X, Y, Z)

	if rhoS != 0 {
		rho *= rhoD / rhoS
	}
	if gammaS != 0 {
		gamma *= gammaD / gammaS
	}
	if betaS != 0 {
		beta *= betaD / betaS
	}

	return apply(mInv, rho, gamma, beta)
}

// xyzToSRGB converts a D65-relative CIE XYZ colour to linear-then-gamma
// encoded sRGB, clipped to [0, 1].
func xyzToSRGB(X, Y, Z float64) (r, g, b float64) {
	rl := 3.2406*X - 1.5372*Y - 0.4986*Z
	gl := -0.9689*X + 1.8758*Y + 0.0415*Z
	bl := 0.0557*X - 0.2040*Y + 1.0570*Z
	return clip01(srgbEncode(rl)), clip01(srgbEncode(gl)), clip01(srgbEncode(bl))
}

// srgbToXYZ converts gamma-encoded sRGB (each component in [0, 1]) to
// D65-relative CIE XYZ, the inverse of xyzToSRGB.
func srgbToXYZ(r, g, b float64) (X, Y, Z float64) {
	rl, gl, bl := srgbDecode(r), srgbDecode(g), srgbDecode(b)
	X = 0.4124*rl + 0.3576*gl + 0.1805*bl
	Y = 0.2126*rl + 0.7152*gl + 0.0722*bl
	Z = 0.0193*rl + 0.1192*gl + 0.9505*bl
	return
}

func srgbEncode(c float64) float64 {
	if c <= 0.0031308 {
		return 12.92 * c
	}
	return 1.055*math.Pow(c, 1/2.4) - 0.055
}

func srgbDecode(c float64) float64 {
	if c <= 0.04045 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

func labInvF(t float64) float64 {
	const delta = 6.0 / 29.0
	if t > delta {
		return t * t * t
	}
	return 3 * delta * delta * (t - 4.0/29.0)
}
