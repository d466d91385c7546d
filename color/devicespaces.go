// Copyright 2024 The pdfcore authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package color

// deviceGraySpace, deviceRGBSpace and deviceCMYKSpace are the three
// device colour spaces (ISO 32000-1 8.6.4): no calibration, their
// components map directly onto the output device's primaries.
type deviceGraySpace struct{}
type deviceRGBSpace struct{}
type deviceCMYKSpace struct{}

func (deviceGraySpace) Family() Family { return FamilyDeviceGray }
func (deviceGraySpace) Channels() int  { return 1 }
func (deviceGraySpace) Default() Color { return DeviceGray(0) }

func (deviceRGBSpace) Family() Family { return FamilyDeviceRGB }
func (deviceRGBSpace) Channels() int  { return 3 }
func (deviceRGBSpace) Default() Color { return DeviceRGB{0, 0, 0} }

func (deviceCMYKSpace) Family() Family { return FamilyDeviceCMYK }
func (deviceCMYKSpace) Channels() int  { return 4 }
func (deviceCMYKSpace) Default() Color { return DeviceCMYK{0, 0, 0, 1} }

// DeviceGraySpace, DeviceRGBSpace and DeviceCMYKSpace are the shared
// instances of the three device colour spaces.
var (
	DeviceGraySpace Space = deviceGraySpace{}
	DeviceRGBSpace  Space = deviceRGBSpace{}
	DeviceCMYKSpace Space = deviceCMYKSpace{}
)

// DeviceGray is a colour value in the DeviceGray space: 0 is black, 1
// is white.
type DeviceGray float64

func (c DeviceGray) Space() Space          { return DeviceGraySpace }
func (c DeviceGray) Components() []float64 { return []float64{float64(c)} }

func (c DeviceGray) RGBA() (r, g, b, a uint32) {
	v := toUint32(float64(c))
	return v, v, v, 0xffff
}

func (c DeviceGray) ToXYZ() (X, Y, Z float64) {
	return srgbToXYZ(float64(c), float64(c), float64(c))
}

// DeviceRGB is a colour value in the DeviceRGB space.
type DeviceRGB struct{ R, G, B float64 }

func (c DeviceRGB) Space() Space          { return DeviceRGBSpace }
func (c DeviceRGB) Components() []float64 { return []float64{c.R, c.G, c.B} }

func (c DeviceRGB) RGBA() (r, g, b, a uint32) {
	return toUint32(c.R), toUint32(c.G), toUint32(c.B), 0xffff
}

func (c DeviceRGB) ToXYZ() (X, Y, Z float64) {
	return srgbToXYZ(c.R, c.G, c.B)
}

// DeviceCMYK is a colour value in the DeviceCMYK space.
type DeviceCMYK struct{ C, M, Y, K float64 }

func (c DeviceCMYK) Space() Space          { return DeviceCMYKSpace }
func (c DeviceCMYK) Components() []float64 { return []float64{c.C, c.M, c.Y, c.K} }

// naiveCMYKToRGB is the simple subtractive conversion ISO 32000-1
// 8.6.5.3 gives as the default UCR/black-generation-free transform.
func naiveCMYKToRGB(c, m, y, k float64) (r, g, b float64) {
	r = 1 - clip01(c+k)
	g = 1 - clip01(m+k)
	b = 1 - clip01(y+k)
	return
}

func (c DeviceCMYK) RGBA() (r, g, b, a uint32) {
	rr, gg, bb := naiveCMYKToRGB(c.C, c.M, c.Y, c.K)
	return toUint32(rr), toUint32(gg), toUint32(bb), 0xffff
}

func (c DeviceCMYK) ToXYZ() (X, Y, Z float64) {
	r, g, b := naiveCMYKToRGB(c.C, c.M, c.Y, c.K)
	return srgbToXYZ(r, g, b)
}

// Gray constructs a DeviceGray colour; RGB constructs a DeviceRGB
// colour. These mirror the `g`/`rg` content-stream operators, which
// select DeviceGray/DeviceRGB implicitly without a preceding `cs`.
func Gray(v float64) Color          { return DeviceGray(v) }
func RGB(r, g, b float64) Color     { return DeviceRGB{r, g, b} }
func CMYK(c, m, y, k float64) Color { return DeviceCMYK{c, m, y, k} }
