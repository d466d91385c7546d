// Copyright 2020 Jochen Voss <voss@seehuhn.de>
//
// Some code here, e.g. the pngPredictorReader, is taken from
// https://pkg.go.dev/rsc.io/pdf .  Use of this source code is governed by a
// BSD-style license, which is reproduced here:
//
//     Copyright (c) 2009 The Go Authors. All rights reserved.
//
//     Redistribution and use in source and binary forms, with or without
//     modification, are permitted provided that the following conditions are
//     met:
//
//        * Redistributions of source code must retain the above copyright
//     notice, this list of conditions and the following disclaimer.
//        * Redistributions in binary form must reproduce the above
//     copyright notice, this list of conditions and the following disclaimer
//     in the documentation and/or other materials provided with the
//     distribution.
//        * Neither the name of Google Inc. nor the names of its
//     contributors may be used to endorse or promote products derived from
//     this software without specific prior written permission.
//
//     THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS
//     "AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT
//     LIMITED TO, THE IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR
//     A PARTICULAR PURPOSE ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT
//     OWNER OR CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
//     SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT
//     LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR SERVICES; LOSS OF USE,
//     DATA, OR PROFITS; OR BUSINESS INTERRUPTION) HOWEVER CAUSED AND ON ANY
//     THEORY OF LIABILITY, WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT
//     (INCLUDING NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
//     OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH DAMAGE.

package pdf

import (
	"bufio"
	"bytes"
	"compress/zlib"
	"errors"
	"fmt"
	"io"

	"github.com/hhrutter/lzw"
	"golang.org/x/image/ccitt"

	"pdfcore.dev/engine/ascii85"
)

// ErrUnsupportedFilter is returned by a stream filter this engine cannot
// decode. Image XObjects using such a filter are dropped from the scene
// rather than treated as a fatal error (spec.md section 4.3).
var ErrUnsupportedFilter = errors.New("unsupported stream filter")

// FilterInfo describes one entry of a stream's /Filter chain, together
// with its matching /DecodeParms dictionary.
type FilterInfo struct {
	Name  Name
	Parms Dict
}

// GetFilters reads a stream dictionary's /Filter and /DecodeParms entries
// and normalizes them into a slice of FilterInfo, in application order.
func GetFilters(r Getter, dict Dict) ([]*FilterInfo, error) {
	filterObj, err := Resolve(r, dict["Filter"])
	if err != nil {
		return nil, err
	}
	parmsObj, err := Resolve(r, dict["DecodeParms"])
	if err != nil {
		return nil, err
	}

	var filters []*FilterInfo
	switch f := filterObj.(type) {
	case nil:
		// pass
	case Name:
		pDict, _ := parmsObj.(Dict)
		filters = append(filters, &FilterInfo{Name: f, Parms: pDict})
	case Array:
		pa, _ := parmsObj.(Array)
		for i, fi := range f {
			name, ok := fi.(Name)
			if !ok {
				return nil, typeMismatch("name", fi)
			}
			var pDict Dict
			if i < len(pa) {
				if pd, ok := pa[i].(Dict); ok {
					pDict = pd
				}
			}
			filters = append(filters, &FilterInfo{Name: name, Parms: pDict})
		}
	default:
		return nil, errors.New("invalid /Filter field")
	}
	return filters, nil
}

// DecodeStream returns a reader for the fully decoded (unfiltered)
// payload of a stream, applying every filter in its /Filter chain in
// order. The crypt filter, if the document is encrypted, must already
// have been applied to raw before this is called (the *Reader in
// xref.go does this).
func DecodeStream(r Getter, s *Stream, raw io.Reader) (io.Reader, error) {
	filters, err := GetFilters(r, s.Dict)
	if err != nil {
		return nil, err
	}
	cur := raw
	for _, fi := range filters {
		f, err := fi.getFilter()
		if err != nil {
			return nil, err
		}
		cur, err = f.Decode(cur)
		if err != nil {
			return nil, err
		}
	}
	return cur, nil
}

func (fi *FilterInfo) getFilter() (filter, error) {
	switch fi.Name {
	case "FlateDecode", "Fl":
		return ffFromDict(fi.Parms), nil
	case "ASCIIHexDecode", "AHx":
		return asciiHexFilter{}, nil
	case "ASCII85Decode", "A85":
		return ascii85Filter{}, nil
	case "LZWDecode", "LZW":
		return lzwFromDict(fi.Parms), nil
	case "RunLengthDecode", "RL":
		return runLengthFilter{}, nil
	case "CCITTFaxDecode", "CCF":
		return ccittFromDict(fi.Parms), nil
	case "DCTDecode", "DCT":
		return dctFilter{}, nil
	case "JBIG2Decode", "JPXDecode":
		return unsupportedFilter{fi.Name}, nil
	case "Crypt":
		// handled out-of-band by the document reader
		return identityFilter{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFilter, fi.Name)
	}
}

// filter is the decode half of one entry in a stream's /Filter chain.
// This engine never writes PDF files, so no Encode method is needed.
type filter interface {
	Decode(r io.Reader) (io.Reader, error)
}

type identityFilter struct{}

func (identityFilter) Decode(r io.Reader) (io.Reader, error) { return r, nil }

type unsupportedFilter struct{ name Name }

func (u unsupportedFilter) Decode(io.Reader) (io.Reader, error) {
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFilter, u.name)
}

// --- FlateDecode, with PNG and TIFF predictors -----------------------

type flateFilter struct {
	Predictor        int
	Colors           int
	BitsPerComponent int
	Columns          int
}

func ffFromDict(parms Dict) *flateFilter {
	res := &flateFilter{
		Predictor:        1,
		Colors:           1,
		BitsPerComponent: 8,
		Columns:          1,
	}
	if parms == nil {
		return res
	}
	if val, ok := parms["Predictor"].(Integer); ok && val >= 1 && val <= 15 {
		res.Predictor = int(val)
	}
	if val, ok := parms["Colors"].(Integer); ok && val >= 1 {
		res.Colors = int(val)
	}
	if val, ok := parms["BitsPerComponent"].(Integer); ok &&
		(val == 1 || val == 2 || val == 4 || val == 8 || val == 16) {
		res.BitsPerComponent = int(val)
	}
	if val, ok := parms["Columns"].(Integer); ok && val >= 1 {
		res.Columns = int(val)
	}
	return res
}

func (ff *flateFilter) Decode(r io.Reader) (io.Reader, error) {
	zr, err := zlib.NewReader(r)
	if err != nil {
		return nil, err
	}
	return applyPredictor(zr, ff.Predictor, ff.Colors, ff.BitsPerComponent, ff.Columns)
}

func applyPredictor(r io.Reader, predictor, colors, bpc, columns int) (io.Reader, error) {
	switch predictor {
	case 1:
		return r, nil
	case 2:
		return &tiffPredictorReader{r: bufio.NewReader(r), colors: colors, bpc: bpc, columns: columns}, nil
	default:
		if predictor < 10 {
			return nil, fmt.Errorf("unsupported predictor %d", predictor)
		}
		bytesPerPixel := (colors*bpc + 7) / 8
		rowBytes := (colors*bpc*columns + 7) / 8
		return &pngPredictorReader{
			r:    bufio.NewReader(r),
			bpp:  bytesPerPixel,
			prev: make([]byte, rowBytes),
			cur:  make([]byte, rowBytes),
		}, nil
	}
}

// pngPredictorReader undoes the PNG Up/Sub/Average/Paeth byte filters
// that the PDF /Predictor entry (values 10-15) applies per scanline,
// each row tagged with its own filter-type byte.
type pngPredictorReader struct {
	r    *bufio.Reader
	bpp  int
	prev []byte
	cur  []byte
	pend []byte
}

func (r *pngPredictorReader) Read(b []byte) (int, error) {
	n := 0
	for len(b) > 0 {
		if len(r.pend) > 0 {
			m := copy(b, r.pend)
			n += m
			b = b[m:]
			r.pend = r.pend[m:]
			continue
		}
		tag, err := r.r.ReadByte()
		if err != nil {
			if n > 0 && err == io.EOF {
				return n, nil
			}
			return n, err
		}
		if _, err := io.ReadFull(r.r, r.cur); err != nil {
			return n, err
		}
		if err := unfilterPNGRow(tag, r.cur, r.prev, r.bpp); err != nil {
			return n, err
		}
		copy(r.prev, r.cur)
		r.pend = r.cur
	}
	return n, nil
}

func unfilterPNGRow(tag byte, cur, prev []byte, bpp int) error {
	paeth := func(a, b, c byte) byte {
		p := int(a) + int(b) - int(c)
		pa, pb, pc := abs(p-int(a)), abs(p-int(b)), abs(p-int(c))
		switch {
		case pa <= pb && pa <= pc:
			return a
		case pb <= pc:
			return b
		default:
			return c
		}
	}
	for i := range cur {
		var a, b, c byte
		if i >= bpp {
			a = cur[i-bpp]
			c = prev[i-bpp]
		}
		b = prev[i]
		switch tag {
		case 0: // None
		case 1: // Sub
			cur[i] += a
		case 2: // Up
			cur[i] += b
		case 3: // Average
			cur[i] += byte((int(a) + int(b)) / 2)
		case 4: // Paeth
			cur[i] += paeth(a, b, c)
		default:
			return fmt.Errorf("invalid PNG predictor tag %d", tag)
		}
	}
	return nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// tiffPredictorReader undoes the horizontal differencing of
// /Predictor 2 for 8-bit samples. Rows with any other sample width
// are passed through unchanged, still differenced.
type tiffPredictorReader struct {
	r       *bufio.Reader
	colors  int
	bpc     int
	columns int
	row     []byte
	pend    []byte
}

func (r *tiffPredictorReader) Read(b []byte) (int, error) {
	n := 0
	for len(b) > 0 {
		if len(r.pend) > 0 {
			m := copy(b, r.pend)
			n += m
			b = b[m:]
			r.pend = r.pend[m:]
			continue
		}
		rowBytes := (r.colors*r.bpc*r.columns + 7) / 8
		row := make([]byte, rowBytes)
		if _, err := io.ReadFull(r.r, row); err != nil {
			if n > 0 && err == io.EOF {
				return n, nil
			}
			return n, err
		}
		if r.bpc == 8 {
			for i := r.colors; i < len(row); i++ {
				row[i] += row[i-r.colors]
			}
		}
		// Rows with sample widths other than 8 bits (sub-byte or
		// 16-bit) are passed on without undoing the differencing.
		r.pend = row
	}
	return n, nil
}

// --- ASCIIHexDecode ----------------------------------------------------

type asciiHexFilter struct{}

func (asciiHexFilter) Decode(r io.Reader) (io.Reader, error) {
	return &asciiHexReader{r: bufio.NewReader(r)}, nil
}

type asciiHexReader struct {
	r    *bufio.Reader
	done bool
}

func hexVal(b byte) (byte, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	default:
		return 0, false
	}
}

func (r *asciiHexReader) Read(out []byte) (int, error) {
	if r.done {
		return 0, io.EOF
	}
	n := 0
	var hi byte
	haveHi := false
	for n < len(out) {
		b, err := r.r.ReadByte()
		if err != nil {
			r.done = true
			if haveHi {
				out[n] = hi << 4
				n++
			}
			if n > 0 {
				return n, nil
			}
			return 0, io.EOF
		}
		if b == '>' {
			r.done = true
			if haveHi {
				out[n] = hi << 4
				n++
			}
			return n, nil
		}
		v, ok := hexVal(b)
		if !ok {
			continue // whitespace, or tolerate stray bytes
		}
		if !haveHi {
			hi = v
			haveHi = true
			continue
		}
		out[n] = hi<<4 | v
		n++
		haveHi = false
	}
	return n, nil
}

// --- ASCII85Decode -------------------------------------------------------

type ascii85Filter struct{}

func (ascii85Filter) Decode(r io.Reader) (io.Reader, error) {
	return ascii85.Decode(r), nil
}

// --- LZWDecode ----------------------------------------------------------

type lzwFilterParms struct {
	EarlyChange      bool
	Predictor        int
	Colors           int
	BitsPerComponent int
	Columns          int
}

func lzwFromDict(parms Dict) *lzwFilterParms {
	res := &lzwFilterParms{
		EarlyChange:      true,
		Predictor:        1,
		Colors:           1,
		BitsPerComponent: 8,
		Columns:          1,
	}
	if parms == nil {
		return res
	}
	if val, ok := parms["EarlyChange"].(Integer); ok {
		res.EarlyChange = val != 0
	}
	if val, ok := parms["Predictor"].(Integer); ok {
		res.Predictor = int(val)
	}
	if val, ok := parms["Colors"].(Integer); ok {
		res.Colors = int(val)
	}
	if val, ok := parms["BitsPerComponent"].(Integer); ok {
		res.BitsPerComponent = int(val)
	}
	if val, ok := parms["Columns"].(Integer); ok {
		res.Columns = int(val)
	}
	return res
}

func (p *lzwFilterParms) Decode(r io.Reader) (io.Reader, error) {
	lr := lzw.NewReader(r, p.EarlyChange)
	return applyPredictor(lr, p.Predictor, p.Colors, p.BitsPerComponent, p.Columns)
}

// --- RunLengthDecode ------------------------------------------------------

type runLengthFilter struct{}

func (runLengthFilter) Decode(r io.Reader) (io.Reader, error) {
	return &runLengthReader{r: bufio.NewReader(r)}, nil
}

type runLengthReader struct {
	r    *bufio.Reader
	pend []byte
	done bool
}

func (r *runLengthReader) Read(out []byte) (int, error) {
	n := 0
	for n < len(out) {
		if len(r.pend) > 0 {
			m := copy(out[n:], r.pend)
			n += m
			r.pend = r.pend[m:]
			continue
		}
		if r.done {
			break
		}
		length, err := r.r.ReadByte()
		if err != nil {
			r.done = true
			break
		}
		switch {
		case length == 128:
			r.done = true
		case length < 128:
			buf := make([]byte, int(length)+1)
			if _, err := io.ReadFull(r.r, buf); err != nil {
				return n, err
			}
			r.pend = buf
		default:
			b, err := r.r.ReadByte()
			if err != nil {
				return n, err
			}
			buf := bytes.Repeat([]byte{b}, 257-int(length))
			r.pend = buf
		}
	}
	if n == 0 && r.done {
		return 0, io.EOF
	}
	return n, nil
}

// --- CCITTFaxDecode -------------------------------------------------------

type ccittFilterParms struct {
	K                      int
	Columns                int
	Rows                   int
	BlackIs1               bool
	EncodedByteAlign       bool
	DamagedRowsBeforeError int
}

func ccittFromDict(parms Dict) *ccittFilterParms {
	res := &ccittFilterParms{Columns: 1728}
	if parms == nil {
		return res
	}
	if val, ok := parms["K"].(Integer); ok {
		res.K = int(val)
	}
	if val, ok := parms["Columns"].(Integer); ok {
		res.Columns = int(val)
	}
	if val, ok := parms["Rows"].(Integer); ok {
		res.Rows = int(val)
	}
	if val, ok := parms["BlackIs1"].(Boolean); ok {
		res.BlackIs1 = bool(val)
	}
	if val, ok := parms["EncodedByteAlign"].(Boolean); ok {
		res.EncodedByteAlign = bool(val)
	}
	return res
}

func (p *ccittFilterParms) Decode(r io.Reader) (io.Reader, error) {
	sub := ccitt.Group4
	if p.K >= 0 {
		sub = ccitt.Group3
	}
	opts := &ccitt.Options{
		Invert: !p.BlackIs1,
		Align:  p.EncodedByteAlign,
	}
	return ccitt.NewReader(r, ccitt.MSB, sub, p.Columns, p.Rows, opts), nil
}

// --- DCTDecode --------------------------------------------------------

// dctFilter leaves JPEG-compressed (DCTDecode) image data untouched: the
// image subsystem calls image/jpeg.Decode directly on the stream bytes,
// since JPEG decoding produces pixels, not a byte-for-byte filter
// output, and colour-space handling (YCbCr vs. CMYK Adobe-inverted)
// needs the surrounding image XObject's /ColorSpace entry.
type dctFilter struct{}

func (dctFilter) Decode(r io.Reader) (io.Reader, error) {
	return r, nil
}
