// Copyright 2024 The pdfcore authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package color

import (
	"fmt"

	pdf "pdfcore.dev/engine"
	"pdfcore.dev/engine/function"
)

// ParseSpace resolves a /ColorSpace resource entry (ISO 32000-1 8.6.3)
// to a Space: either the name of a device space or a family recognised
// without parameters, or an array [family params...] for the
// parameterised families (CalGray, CalRGB, Lab, ICCBased, Indexed,
// Separation, DeviceN, Pattern).
func ParseSpace(r pdf.Getter, obj pdf.Object, resources pdf.Dict) (Space, error) {
	obj, err := pdf.Resolve(r, obj)
	if err != nil {
		return nil, err
	}
	switch v := obj.(type) {
	case pdf.Name:
		return namedSpace(r, v, resources)
	case pdf.Array:
		if len(v) == 0 {
			return nil, fmt.Errorf("color: empty colour space array")
		}
		family, err := pdf.GetName(r, v[0])
		if err != nil {
			return nil, err
		}
		return parseFamily(r, family, v, resources)
	default:
		return nil, fmt.Errorf("color: unsupported colour space object %T", obj)
	}
}

func namedSpace(r pdf.Getter, name pdf.Name, resources pdf.Dict) (Space, error) {
	switch name {
	case "DeviceGray", "G", "CalGray":
		return DeviceGraySpace, nil
	case "DeviceRGB", "RGB":
		return DeviceRGBSpace, nil
	case "DeviceCMYK", "CMYK":
		return DeviceCMYKSpace, nil
	case "Pattern":
		return PatternSpace, nil
	}
	if resources != nil {
		if csDict, err := pdf.GetDict(r, resources["ColorSpace"]); err == nil && csDict != nil {
			if entry, ok := csDict[name]; ok {
				return ParseSpace(r, entry, resources)
			}
		}
	}
	return nil, fmt.Errorf("color: unknown colour space %q", name)
}

func parseFamily(r pdf.Getter, family pdf.Name, arr pdf.Array, resources pdf.Dict) (Space, error) {
	switch family {
	case "CalGray":
		return DeviceGraySpace, nil
	case "CalRGB":
		return DeviceRGBSpace, nil
	case "Lab":
		return parseLab(r, arr)
	case "ICCBased":
		return parseICCBased(r, arr)
	case "Indexed":
		return parseIndexed(r, arr, resources)
	case "Separation":
		return parseSeparation(r, arr, resources, 1)
	case "DeviceN":
		return parseSeparation(r, arr, resources, -1)
	case "Pattern":
		return PatternSpace, nil
	default:
		return nil, fmt.Errorf("color: unsupported colour space family %q", family)
	}
}

func parseICCBased(r pdf.Getter, arr pdf.Array) (Space, error) {
	if len(arr) < 2 {
		return nil, fmt.Errorf("color: malformed ICCBased colour space")
	}
	s, err := pdf.GetStream(r, arr[1])
	if err != nil || s == nil {
		return DeviceRGBSpace, nil
	}
	n, _ := pdf.GetInt(r, s.Dict["N"])
	switch n {
	case 1:
		return DeviceGraySpace, nil
	case 4:
		return DeviceCMYKSpace, nil
	default:
		return DeviceRGBSpace, nil
	}
}

// indexedSpace is the Indexed colour space (ISO 32000-1 8.6.6.3): a
// palette of colours in a base space, addressed by a single integer
// component.
type indexedSpace struct {
	base    Space
	hival   int
	palette []byte // hival+1 entries of base.Channels() bytes each
}

func parseIndexed(r pdf.Getter, arr pdf.Array, resources pdf.Dict) (Space, error) {
	if len(arr) < 4 {
		return nil, fmt.Errorf("color: malformed Indexed colour space")
	}
	base, err := ParseSpace(r, arr[1], resources)
	if err != nil {
		return nil, err
	}
	hival, err := pdf.GetInt(r, arr[2])
	if err != nil {
		return nil, err
	}
	var table []byte
	switch v := mustResolve(r, arr[3]).(type) {
	case pdf.String:
		table = []byte(v)
	case *pdf.Stream:
		data, err := v.R.Bytes()
		if err == nil {
			table = data
		}
	}
	return &indexedSpace{base: base, hival: int(hival), palette: table}, nil
}

func mustResolve(r pdf.Getter, obj pdf.Object) pdf.Object {
	o, err := pdf.Resolve(r, obj)
	if err != nil {
		return nil
	}
	return o
}

func (s *indexedSpace) Family() Family { return FamilyIndexed }
func (s *indexedSpace) Channels() int  { return 1 }
func (s *indexedSpace) Default() Color { return &indexedColor{space: s, index: 0} }

// New builds the palette entry a `sc`/`scn` operator's single index
// operand selects.
func (s *indexedSpace) New(tints []float64) Color {
	idx := 0
	if len(tints) > 0 {
		idx = int(tints[0])
	}
	return &indexedColor{space: s, index: idx}
}

type indexedColor struct {
	space *indexedSpace
	index int
}

func (c *indexedColor) Space() Space          { return c.space }
func (c *indexedColor) Components() []float64 { return []float64{float64(c.index)} }

func (c *indexedColor) baseColor() Color {
	n := c.space.base.Channels()
	off := c.index * n
	if off < 0 || off+n > len(c.space.palette) {
		return c.space.base.Default()
	}
	comps := make([]float64, n)
	for i := 0; i < n; i++ {
		comps[i] = float64(c.space.palette[off+i]) / 255
	}
	return componentsToColor(c.space.base, comps)
}

func (c *indexedColor) RGBA() (r, g, b, a uint32) { return c.baseColor().RGBA() }
func (c *indexedColor) ToXYZ() (X, Y, Z float64)  { return c.baseColor().ToXYZ() }

// componentsToColor builds a Color in one of the three device spaces
// from raw component values, used to interpret a resolved Indexed
// palette entry or a Separation/DeviceN tint-transform output.
func componentsToColor(sp Space, comps []float64) Color {
	switch sp.Family() {
	case FamilyDeviceGray:
		return DeviceGray(comps[0])
	case FamilyDeviceCMYK:
		return DeviceCMYK{comps[0], comps[1], comps[2], comps[3]}
	default:
		if len(comps) >= 3 {
			return DeviceRGB{comps[0], comps[1], comps[2]}
		}
		return DeviceGray(0)
	}
}

// separationSpace is the Separation/DeviceN colour space family (ISO
// 32000-1 8.6.6.4/8.6.6.5): one or more tint components run through a
// transform function into an alternate space.
type separationSpace struct {
	nComps    int
	alternate Space
	transform function.Function
}

func parseSeparation(r pdf.Getter, arr pdf.Array, resources pdf.Dict, nComps int) (Space, error) {
	if len(arr) < 4 {
		return nil, fmt.Errorf("color: malformed Separation/DeviceN colour space")
	}
	if nComps < 0 {
		names, err := pdf.GetArray(r, arr[1])
		if err != nil {
			return nil, err
		}
		nComps = len(names)
	}
	alt, err := ParseSpace(r, arr[2], resources)
	if err != nil {
		return nil, err
	}
	fn, err := function.Read(r, arr[3])
	if err != nil {
		return nil, err
	}
	return &separationSpace{nComps: nComps, alternate: alt, transform: fn}, nil
}

func (s *separationSpace) Family() Family {
	if s.nComps == 1 {
		return FamilySeparation
	}
	return FamilyDeviceN
}
func (s *separationSpace) Channels() int { return s.nComps }
func (s *separationSpace) Default() Color {
	tints := make([]float64, s.nComps)
	for i := range tints {
		tints[i] = 1
	}
	return s.New(tints)
}

// New evaluates the tint transform and wraps the result as a colour in
// the alternate space.
func (s *separationSpace) New(tints []float64) Color {
	_, n := s.transform.Shape()
	out := make([]float64, n)
	s.transform.Apply(out, tints...)
	return &separationColor{space: s, tints: append([]float64(nil), tints...), alt: componentsToColor(s.alternate, out)}
}

type separationColor struct {
	space *separationSpace
	tints []float64
	alt   Color
}

func (c *separationColor) Space() Space          { return c.space }
func (c *separationColor) Components() []float64 { return c.tints }
func (c *separationColor) RGBA() (r, g, b, a uint32) { return c.alt.RGBA() }
func (c *separationColor) ToXYZ() (X, Y, Z float64)  { return c.alt.ToXYZ() }

// patternSpace is the Pattern colour space (ISO 32000-1 8.7.3): colour
// operands name a pattern resource rather than carry component values
// directly. Rendering patterns is handled by the reader/raster layer,
// not by this package.
type patternSpace struct{}

func (patternSpace) Family() Family { return FamilyPattern }
func (patternSpace) Channels() int  { return 0 }
func (patternSpace) Default() Color { return patternColor{} }

// PatternSpace is the shared Pattern colour space instance.
var PatternSpace Space = patternSpace{}

type patternColor struct{ name pdf.Name }

func (c patternColor) Space() Space            { return PatternSpace }
func (c patternColor) Components() []float64   { return nil }
func (c patternColor) RGBA() (r, g, b, a uint32) { return 0, 0, 0, 0 }
func (c patternColor) ToXYZ() (X, Y, Z float64)  { return 0, 0, 0 }

// PatternName returns the /Pattern resource name a `scn`/`SCN`
// operator selected, if this colour came from one.
func (c patternColor) PatternName() pdf.Name { return c.name }

// NewPatternColor builds a Pattern-space colour value naming a pattern
// resource.
func NewPatternColor(name pdf.Name) Color { return patternColor{name: name} }
