// Copyright 2024 The pdfcore authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package color

import (
	"testing"

	pdf "pdfcore.dev/engine"
)

func TestDeviceColorsRGBA(t *testing.T) {
	r, g, b, a := DeviceRGB{1, 0, 0}.RGBA()
	if r != 0xffff || g != 0 || b != 0 || a != 0xffff {
		t.Errorf("RGBA() = %x %x %x %x, want ffff 0 0 ffff", r, g, b, a)
	}
	r, g, b, a = DeviceGray(0.5).RGBA()
	if r != g || g != b || a != 0xffff {
		t.Errorf("gray RGBA not balanced: %x %x %x %x", r, g, b, a)
	}
}

func TestDeviceCMYKBlack(t *testing.T) {
	r, g, b, _ := DeviceCMYK{0, 0, 0, 1}.RGBA()
	if r != 0 || g != 0 || b != 0 {
		t.Errorf("CMYK black = %x %x %x, want 0 0 0", r, g, b)
	}
}

func TestFromComponents(t *testing.T) {
	c, err := FromComponents([]float64{0.2, 0.3, 0.4})
	if err != nil {
		t.Fatalf("FromComponents: %v", err)
	}
	if _, ok := c.(DeviceRGB); !ok {
		t.Errorf("expected DeviceRGB, got %T", c)
	}
}

func TestLabWhiteAndBlack(t *testing.T) {
	arr := pdf.Array{pdf.Name("Lab"), pdf.Dict{
		"WhitePoint": pdf.Array{pdf.Real(0.9642), pdf.Real(1.0), pdf.Real(0.8249)},
	}}
	sp, err := ParseSpace(nil, arr, nil)
	if err != nil {
		t.Fatalf("ParseSpace: %v", err)
	}
	if sp.Family() != FamilyLab || sp.Channels() != 3 {
		t.Fatalf("Family/Channels = %v/%d, want Lab/3", sp.Family(), sp.Channels())
	}

	white := sp.(interface{ New([]float64) Color }).New([]float64{100, 0, 0})
	r, g, b, _ := white.RGBA()
	if r < 0xfa00 || g < 0xfa00 || b < 0xfa00 {
		t.Errorf("L*=100 = %x %x %x, want near white", r, g, b)
	}

	black := sp.Default() // L*=0
	r, g, b, _ = black.RGBA()
	if r > 0x0800 || g > 0x0800 || b > 0x0800 {
		t.Errorf("L*=0 = %x %x %x, want near black", r, g, b)
	}
}

func TestParseNamedSpace(t *testing.T) {
	sp, err := ParseSpace(nil, pdf.Name("DeviceRGB"), nil)
	if err != nil {
		t.Fatalf("ParseSpace: %v", err)
	}
	if sp.Family() != FamilyDeviceRGB {
		t.Errorf("Family() = %v, want DeviceRGB", sp.Family())
	}
}
