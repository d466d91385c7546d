// Copyright 2024 The pdfcore authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package color implements the PDF colour spaces of ISO 32000-1 section
// 8.6: the three device spaces, the CIE-based spaces (CalGray, CalRGB,
// Lab, ICCBased), Indexed, Separation, DeviceN, and Pattern. Every space
// is a tagged variant of the Space interface and every colour value
// within it a variant of Color. Device colours map directly onto sRGB;
// Lab colours are converted to RGBA through CIE 1931 XYZ. CalGray and
// CalRGB are handled as DeviceGray and DeviceRGB, and ICCBased as the
// device space matching its /N component count.
package color

import "fmt"

// Color is a point in some colour space, together with enough
// information to render it: an approximate sRGB/alpha projection for
// compositing, and (where the underlying space supports it) an exact
// CIE XYZ value for colour-managed output.
type Color interface {
	// Space returns the colour space this value belongs to.
	Space() Space

	// Components returns the raw component values as they would appear
	// as operands to the sc/scn content stream operators.
	Components() []float64

	// RGBA returns an alpha-premultiplied sRGB approximation, following
	// the convention of image/color.Color: each value is in [0, 0xffff].
	RGBA() (r, g, b, a uint32)

	// ToXYZ returns the CIE 1931 XYZ coordinates of this colour. Device
	// colours are treated as sRGB and give D65-relative values; Lab
	// colours are relative to their space's white point. Pattern colours
	// return zero.
	ToXYZ() (X, Y, Z float64)
}

// Space is a PDF colour space: a family tag plus whatever parameters
// that family requires, together with a constructor for colour values
// within it.
type Space interface {
	// Family returns the name identifying this colour space family,
	// e.g. "DeviceRGB", "ICCBased", "Separation".
	Family() Family

	// Channels returns the number of colour components a value in this
	// space is described by.
	Channels() int

	// Default returns the initial colour PDF content streams start in
	// when this space is selected via the cs/CS operator (ISO 32000-1
	// table 74: all components zero, except an all-ones K for CMYK and
	// all tints 1 for Separation and DeviceN).
	Default() Color
}

// Family identifies a PDF colour space family by its PDF name.
type Family string

const (
	FamilyDeviceGray Family = "DeviceGray"
	FamilyDeviceRGB  Family = "DeviceRGB"
	FamilyDeviceCMYK Family = "DeviceCMYK"
	FamilyCalGray    Family = "CalGray"
	FamilyCalRGB     Family = "CalRGB"
	FamilyLab        Family = "Lab"
	FamilyICCBased   Family = "ICCBased"
	FamilyIndexed    Family = "Indexed"
	FamilySeparation Family = "Separation"
	FamilyDeviceN    Family = "DeviceN"
	FamilyPattern    Family = "Pattern"
)

// SpacesEqual reports whether two colour spaces describe the same
// family with the same parameters, by comparing their %#v formatting.
// Pointer-valued parameters nested inside a space, such as the tint
// transform of a Separation or DeviceN space, format as addresses, so
// two separately read spaces of that kind compare unequal.
func SpacesEqual(a, b Space) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Family() != b.Family() {
		return false
	}
	return fmt.Sprintf("%#v", a) == fmt.Sprintf("%#v", b)
}

func clip01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func toUint32(x float64) uint32 {
	x = clip01(x)
	return uint32(x*65535 + 0.5)
}

// FromComponents builds a Color in one of the three device spaces by
// guessing the family from the number of components, the way PDF
// annotation /C and /IC arrays (which carry no explicit colour space)
// are interpreted: 0 means no colour, 1 is DeviceGray, 3 is DeviceRGB,
// 4 is DeviceCMYK.
func FromComponents(values []float64) (Color, error) {
	switch len(values) {
	case 0:
		return nil, nil
	case 1:
		return DeviceGray(values[0]), nil
	case 3:
		return DeviceRGB{values[0], values[1], values[2]}, nil
	case 4:
		return DeviceCMYK{values[0], values[1], values[2], values[3]}, nil
	default:
		return nil, fmt.Errorf("color: cannot infer colour space for %d components", len(values))
	}
}
