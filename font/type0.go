// Copyright 2024 The pdfcore authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package font

import (
	pdf "pdfcore.dev/engine"
	"pdfcore.dev/engine/font/cff"
	"pdfcore.dev/engine/font/cid"
	"pdfcore.dev/engine/font/cmap"
	"pdfcore.dev/engine/font/truetype"
	"pdfcore.dev/engine/geom"
)

// type0Font implements Font for Type 0 (composite) fonts: a CMap
// decodes multi-byte content-stream codes into CIDs, which are then
// mapped through CIDToGIDMap to glyph indices in the descendant font's
// embedded program (ISO 32000-1 9.7).
type type0Font struct {
	cm      *cmap.CMap
	gidMap  *cid.GIDMap
	widths  *cid.Widths
	cache   *cache
	outline func(gid int) (*geom.Path, error)
	scale   float64
}

func (f *type0Font) CodeLength(s pdf.String) int {
	_, n, ok := f.cm.Decode(s)
	if !ok || n == 0 {
		return 1
	}
	return n
}

func (f *type0Font) IsType3() bool { return false }

func (f *type0Font) Glyph(code uint32) (*Glyph, bool) {
	return f.cache.get(code, func() (*Glyph, bool) {
		cidVal := f.cm.CID(code)
		gid := f.gidMap.GID(cidVal)
		advance := f.widths.Width(cidVal)
		path, err := f.outline(gid)
		if err != nil {
			return &Glyph{Advance: advance}, true
		}
		return &Glyph{Path: path.Transform(geom.Scale(f.scale, f.scale)), Advance: advance}, true
	})
}

func loadType0(r pdf.Getter, dict pdf.Dict) (Font, error) {
	cm, err := loadEncodingCMap(r, dict["Encoding"])
	if err != nil {
		return nil, err
	}

	descFonts, err := pdf.GetArray(r, dict["DescendantFonts"])
	if err != nil || len(descFonts) != 1 {
		return nil, &InvalidFontError{SubSystem: "cid", Reason: "missing or malformed DescendantFonts"}
	}
	descFont, err := pdf.GetDict(r, descFonts[0])
	if err != nil {
		return nil, err
	}

	dw := 1000.0
	if v, err := pdf.GetNumber(r, descFont["DW"]); err == nil {
		dw = float64(v)
	}
	widths := cid.NewWidths(dw)
	if wArr, err := pdf.GetArray(r, descFont["W"]); err == nil {
		parseWArray(r, wArr, widths)
	}

	gidMap := cid.Identity()
	if obj, ok := descFont["CIDToGIDMap"]; ok {
		if name, err := pdf.GetName(r, obj); err == nil && name != "Identity" {
			// unrecognised named map: fall back to Identity
		} else if s, err := pdf.GetStream(r, obj); err == nil && s != nil {
			data, err := decodedStreamBytes(r, s)
			if err == nil {
				gidMap = cid.ParseGIDMap(data)
			}
		}
	}

	descriptor, _ := pdf.GetDict(r, descFont["FontDescriptor"])
	outlineFn, scale, err := buildCIDOutlineFunc(r, descriptor)
	if err != nil {
		return nil, err
	}

	return &type0Font{
		cm:      cm,
		gidMap:  gidMap,
		widths:  widths,
		cache:   newCache(),
		outline: outlineFn,
		scale:   scale,
	}, nil
}

// loadEncodingCMap resolves a Type 0 font's /Encoding entry: either
// the name of a predefined CMap (only Identity-H/V are supported) or a
// stream holding an embedded CMap program.
func loadEncodingCMap(r pdf.Getter, enc pdf.Object) (*cmap.CMap, error) {
	enc, err := pdf.Resolve(r, enc)
	if err != nil {
		return nil, err
	}
	switch e := enc.(type) {
	case pdf.Name:
		return cmap.Identity(), nil
	case *pdf.Stream:
		data, err := decodedStreamBytes(r, e)
		if err != nil {
			return nil, err
		}
		return cmap.Parse(data)
	default:
		return cmap.Identity(), nil
	}
}

// parseWArray walks the raw /W array (ISO 32000-1 Table 115), which
// mixes two entry shapes: "c [w1 w2 ... wn]" and "cFirst cLast w".
func parseWArray(r pdf.Getter, arr pdf.Array, widths *cid.Widths) {
	i := 0
	for i < len(arr) {
		first, err := pdf.GetInt(r, arr[i])
		if err != nil {
			return
		}
		i++
		if i >= len(arr) {
			return
		}
		if list, err := pdf.GetArray(r, arr[i]); err == nil {
			for j, wObj := range list {
				if w, err := pdf.GetNumber(r, wObj); err == nil {
					widths.Set(uint32(int(first)+j), float64(w))
				}
			}
			i++
			continue
		}
		last, err := pdf.GetInt(r, arr[i])
		if err != nil {
			return
		}
		i++
		if i >= len(arr) {
			return
		}
		w, err := pdf.GetNumber(r, arr[i])
		if err != nil {
			return
		}
		i++
		widths.SetRange(uint32(first), uint32(last), float64(w))
	}
}

// buildCIDOutlineFunc resolves the descendant font's embedded program,
// either CFF (CIDFontType0, FontFile3) or TrueType glyf (CIDFontType2,
// FontFile2), and returns a GID-indexed outline lookup plus the scale
// factor to bring its outlines to the 1000-unit glyph space.
func buildCIDOutlineFunc(r pdf.Getter, descriptor pdf.Dict) (func(gid int) (*geom.Path, error), float64, error) {
	if descriptor == nil {
		return func(int) (*geom.Path, error) { return nil, errNoOutline }, 1, nil
	}

	if ff3, err := pdf.GetStream(r, descriptor["FontFile3"]); err == nil && ff3 != nil {
		data, err := decodedStreamBytes(r, ff3)
		if err != nil {
			return nil, 1, err
		}
		cffFont, err := cff.Parse(data)
		if err != nil {
			return nil, 1, &InvalidFontError{SubSystem: "cff", Reason: err.Error()}
		}
		return func(gid int) (*geom.Path, error) {
			// In a CID-keyed program the charset maps glyphs to CIDs;
			// CIDToGIDMap does not apply (ISO 32000-1 9.7.4.2).
			if cffFont.IsCID {
				if g := cffFont.GID(int32(gid)); g >= 0 {
					gid = g
				}
			}
			path, _, err := cffFont.Outline(gid)
			return path, err
		}, 1, nil
	}

	if ff2, err := pdf.GetStream(r, descriptor["FontFile2"]); err == nil && ff2 != nil {
		data, err := decodedStreamBytes(r, ff2)
		if err != nil {
			return nil, 1, err
		}
		ttFont, err := truetype.Parse(data)
		if err != nil {
			return nil, 1, &InvalidFontError{SubSystem: "truetype", Reason: err.Error()}
		}
		scale := 1000.0
		if ttFont.UnitsPerEm != 0 {
			scale = 1000.0 / float64(ttFont.UnitsPerEm)
		}
		return func(gid int) (*geom.Path, error) {
			return ttFont.Outline(gid)
		}, scale, nil
	}

	return func(int) (*geom.Path, error) { return nil, errNoOutline }, 1, nil
}

var errNoOutline = &InvalidFontError{SubSystem: "cid", Reason: "no embedded font program"}
