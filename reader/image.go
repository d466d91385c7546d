// Copyright 2024 The pdfcore authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package reader

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	"io"

	pdf "pdfcore.dev/engine"
	"pdfcore.dev/engine/color"
	"pdfcore.dev/engine/content"
	"pdfcore.dev/engine/scene"
)

// inlineImageKeys maps the abbreviated dictionary keys ISO 32000-1
// 8.9.7 table 93 allows inside a content stream's BI/ID/EI construct
// to their full /XObject-dictionary names, so decodeImage can treat
// both uniformly.
var inlineImageKeys = map[pdf.Name]pdf.Name{
	"BPC": "BitsPerComponent",
	"CS":  "ColorSpace",
	"D":   "Decode",
	"DP":  "DecodeParms",
	"F":   "Filter",
	"H":   "Height",
	"IM":  "ImageMask",
	"I":   "Interpolate",
	"L":   "Length",
	"W":   "Width",
}

// inlineColorSpaceNames maps the abbreviated colour space names
// permitted inside an inline image dictionary to their full names.
var inlineColorSpaceNames = map[pdf.Name]pdf.Name{
	"G":    "DeviceGray",
	"RGB":  "DeviceRGB",
	"CMYK": "DeviceCMYK",
	"I":    "Indexed",
}

func normalizeInlineDict(dict pdf.Dict) pdf.Dict {
	out := make(pdf.Dict, len(dict))
	for k, v := range dict {
		if full, ok := inlineImageKeys[k]; ok {
			k = full
		}
		out[k] = v
	}
	if cs, ok := out["ColorSpace"].(pdf.Name); ok {
		if full, ok := inlineColorSpaceNames[cs]; ok {
			out["ColorSpace"] = full
		}
	}
	return out
}

// paintInlineImage decodes and paints a BI/ID/EI inline image at the
// current CTM, resolving its colour space against the page's
// /Resources (an inline image's /CS may name a resource-dictionary
// entry, not just a device space).
func (rd *Reader) paintInlineImage(img *content.InlineImage) {
	dict := normalizeInlineDict(img.Dict)
	stream := &pdf.Stream{Dict: dict, R: pdf.NewStreamBytes(img.Data)}
	sceneImg, err := rd.decodeImage(stream)
	if err != nil {
		rd.warn(err)
		return
	}
	if sceneImg != nil {
		rd.Scene.AddImage(sceneImg, rd.State.CTM, rd.State.FillAlpha, rd.State.Clips)
	}
}

func (rd *Reader) doImage(s *pdf.Stream) {
	img, err := rd.decodeImage(s)
	if err != nil {
		rd.warn(err)
		return
	}
	if img != nil {
		rd.Scene.AddImage(img, rd.State.CTM, rd.State.FillAlpha, rd.State.Clips)
	}
}

// decodeImage decodes an image XObject (or a normalized inline image)
// into scene's interleaved-RGBA representation (spec.md 4.6 "Image
// XObjects"). An ImageMask is painted as a stencil in the current
// fill colour; unsupported filters (JBIG2Decode, JPXDecode) yield a
// nil image and a wrapped pdf.ErrUnsupportedFilter rather than an
// error that would abort the page.
func (rd *Reader) decodeImage(s *pdf.Stream) (*scene.Image, error) {
	width, err := pdf.GetInt(rd.R, s.Dict["Width"])
	if err != nil {
		return nil, err
	}
	height, err := pdf.GetInt(rd.R, s.Dict["Height"])
	if err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 {
		return nil, errors.New("reader: image has non-positive dimensions")
	}
	w, h := int(width), int(height)

	isMask, _ := pdf.GetBoolean(rd.R, s.Dict["ImageMask"])

	if isDCT(rd.R, s.Dict) {
		return rd.decodeDCTImage(s, w, h)
	}

	raw, err := s.R.Bytes()
	if err != nil {
		return nil, err
	}
	decoded, err := pdf.DecodeStream(rd.R, s, bytes.NewReader(raw))
	if err != nil {
		if errors.Is(err, pdf.ErrUnsupportedFilter) {
			return nil, err
		}
		return nil, err
	}
	samples, err := io.ReadAll(decoded)
	if err != nil {
		return nil, err
	}

	if bool(isMask) {
		return rd.decodeImageMask(s, samples, w, h)
	}
	return rd.decodeRasterImage(s, samples, w, h)
}

func isDCT(r pdf.Getter, dict pdf.Dict) bool {
	filters, err := pdf.GetFilters(r, dict)
	if err != nil || len(filters) == 0 {
		return false
	}
	last := filters[len(filters)-1].Name
	return last == "DCTDecode" || last == "DCT"
}

// decodeDCTImage decodes a DCTDecode (JPEG) image via the standard
// library decoder directly on the filter-decoded payload: the filter
// pipeline's DCTDecode stage is an identity pass-through by design, so
// the bytes DecodeStream returns for a JPEG-filtered stream are the
// raw JFIF/Exif data image/jpeg.Decode expects.
func (rd *Reader) decodeDCTImage(s *pdf.Stream, w, h int) (*scene.Image, error) {
	raw, err := s.R.Bytes()
	if err != nil {
		return nil, err
	}
	decoded, err := pdf.DecodeStream(rd.R, s, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	img, err := jpeg.Decode(decoded)
	if err != nil {
		return nil, err
	}
	return imageToScene(img, w, h), nil
}

func imageToScene(img image.Image, w, h int) *scene.Image {
	out := &scene.Image{Width: w, Height: h, Pix: make([]byte, w*h*4)}
	bounds := img.Bounds()
	for y := 0; y < h; y++ {
		sy := bounds.Min.Y + y*bounds.Dy()/max1(h)
		for x := 0; x < w; x++ {
			sx := bounds.Min.X + x*bounds.Dx()/max1(w)
			r, g, b, a := img.At(sx, sy).RGBA()
			i := (y*w + x) * 4
			out.Pix[i+0] = byte(r >> 8)
			out.Pix[i+1] = byte(g >> 8)
			out.Pix[i+2] = byte(b >> 8)
			out.Pix[i+3] = byte(a >> 8)
		}
	}
	return out
}

func max1(v int) int {
	if v <= 0 {
		return 1
	}
	return v
}

// decodeImageMask renders a stencil mask (ISO 32000-1 8.9.6.2): one bit
// per sample, painted in the current non-stroking colour wherever the
// sample (after the /Decode array) is 0.
func (rd *Reader) decodeImageMask(s *pdf.Stream, samples []byte, w, h int) (*scene.Image, error) {
	decode, _ := pdf.GetFloatArray(rd.R, s.Dict["Decode"])
	invert := len(decode) == 2 && decode[0] == 1
	fillColor := rd.State.FillColor

	out := &scene.Image{Width: w, Height: h, Pix: make([]byte, w*h*4)}
	stride := (w + 7) / 8
	r, g, b, _ := fillColor.RGBA()
	for y := 0; y < h; y++ {
		rowOff := y * stride
		for x := 0; x < w; x++ {
			if rowOff+x/8 >= len(samples) {
				continue
			}
			bit := (samples[rowOff+x/8] >> (7 - uint(x%8))) & 1
			paint := bit == 0
			if invert {
				paint = !paint
			}
			i := (y*w + x) * 4
			if paint {
				out.Pix[i+0] = byte(r >> 8)
				out.Pix[i+1] = byte(g >> 8)
				out.Pix[i+2] = byte(b >> 8)
				out.Pix[i+3] = 0xff
			}
		}
	}
	return out, nil
}

// decodeRasterImage unpacks a colour image's samples according to its
// /BitsPerComponent and /ColorSpace, applying /Decode where present,
// and composites an optional /SMask as the alpha channel (ISO 32000-1
// 8.9.5, 11.6.5.3).
func (rd *Reader) decodeRasterImage(s *pdf.Stream, samples []byte, w, h int) (*scene.Image, error) {
	bpc, err := pdf.GetInt(rd.R, s.Dict["BitsPerComponent"])
	if err != nil || bpc == 0 {
		bpc = 8
	}

	sp, err := color.ParseSpace(rd.R, s.Dict["ColorSpace"], rd.Resources)
	if err != nil {
		return nil, err
	}
	n := sp.Channels()

	decode, _ := pdf.GetFloatArray(rd.R, s.Dict["Decode"])

	unpacker := newBitUnpacker(samples, w, h, n, int(bpc))

	out := &scene.Image{Width: w, Height: h, Pix: make([]byte, w*h*4)}
	var alpha []byte
	if smaskImg := rd.loadSMask(s.Dict, w, h); smaskImg != nil {
		alpha = smaskImg
	}

	maxVal := float64((uint64(1) << uint(bpc)) - 1)
	comps := make([]float64, n)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			unpacker.at(x, y, comps)
			for i := range comps {
				v := comps[i] / maxVal
				if len(decode) >= 2*(i+1) {
					lo, hi := decode[2*i], decode[2*i+1]
					v = lo + v*(hi-lo)
				} else if sp.Family() == color.FamilyIndexed {
					v = comps[i] // indexed values are palette indices, not normalized fractions
				}
				comps[i] = v
			}
			c := newColorInSpace(sp, comps)
			r, g, b, a := c.RGBA()
			i := (y*w + x) * 4
			out.Pix[i+0] = byte(r >> 8)
			out.Pix[i+1] = byte(g >> 8)
			out.Pix[i+2] = byte(b >> 8)
			if alpha != nil {
				out.Pix[i+3] = alpha[y*w+x]
			} else {
				out.Pix[i+3] = byte(a >> 8)
			}
		}
	}
	return out, nil
}

// loadSMask decodes a /SMask soft-mask image (always DeviceGray) and
// resamples it to the base image's dimensions with nearest-neighbour
// sampling, returning one alpha byte per base pixel.
func (rd *Reader) loadSMask(dict pdf.Dict, w, h int) []byte {
	smaskObj, ok := dict["SMask"]
	if !ok {
		return nil
	}
	smask, err := pdf.GetStream(rd.R, smaskObj)
	if err != nil || smask == nil {
		return nil
	}
	sw, err := pdf.GetInt(rd.R, smask.Dict["Width"])
	if err != nil {
		return nil
	}
	sh, err := pdf.GetInt(rd.R, smask.Dict["Height"])
	if err != nil {
		return nil
	}
	bpc, _ := pdf.GetInt(rd.R, smask.Dict["BitsPerComponent"])
	if bpc == 0 {
		bpc = 8
	}
	raw, err := smask.R.Bytes()
	if err != nil {
		return nil
	}
	decoded, err := pdf.DecodeStream(rd.R, smask, bytes.NewReader(raw))
	if err != nil {
		return nil
	}
	samples, err := io.ReadAll(decoded)
	if err != nil {
		return nil
	}

	unpacker := newBitUnpacker(samples, int(sw), int(sh), 1, int(bpc))
	maxVal := float64((uint64(1) << uint(bpc)) - 1)
	out := make([]byte, w*h)
	comps := make([]float64, 1)
	for y := 0; y < h; y++ {
		sy := y * int(sh) / max1(h)
		for x := 0; x < w; x++ {
			sx := x * int(sw) / max1(w)
			unpacker.at(sx, sy, comps)
			out[y*w+x] = byte(comps[0] / maxVal * 255)
		}
	}
	return out
}

// bitUnpacker extracts n component samples of bpc bits each, row-major,
// from a packed, byte-aligned-per-row sample buffer (ISO 32000-1
// 8.9.5.2).
type bitUnpacker struct {
	data   []byte
	stride int // bytes per row
	n, bpc int
}

func newBitUnpacker(data []byte, w, h, n, bpc int) *bitUnpacker {
	bitsPerRow := w * n * bpc
	stride := (bitsPerRow + 7) / 8
	return &bitUnpacker{data: data, stride: stride, n: n, bpc: bpc}
}

func (u *bitUnpacker) at(x, y int, out []float64) {
	rowStart := y * u.stride
	bitOffset := x * u.n * u.bpc
	for i := 0; i < u.n && i < len(out); i++ {
		out[i] = float64(u.readBits(rowStart, bitOffset+i*u.bpc))
	}
}

func (u *bitUnpacker) readBits(rowStart, bitOffset int) uint32 {
	var v uint32
	for i := 0; i < u.bpc; i++ {
		byteIdx := rowStart + (bitOffset+i)/8
		if byteIdx < 0 || byteIdx >= len(u.data) {
			continue
		}
		bit := (u.data[byteIdx] >> (7 - uint((bitOffset+i)%8))) & 1
		v = v<<1 | uint32(bit)
	}
	return v
}

