// Copyright 2024 The pdfcore authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package pdf

import (
	"bytes"
	"unicode/utf16"
)

// TextString is a decoded PDF text string: either PDFDocEncoded or
// UTF-16BE, distinguished by a leading byte-order mark (spec.md
// section 4.1). GetTextString always returns plain UTF-8.
type TextString string

var (
	utf16Marker = []byte{0xFE, 0xFF}
	utf8Marker  = []byte{0xEF, 0xBB, 0xBF}
)

// GetTextString resolves obj to a String and decodes it to UTF-8,
// handling the UTF-16BE and UTF-8 byte-order marks PDF text strings may
// carry; a string without either marker is assumed to be PDFDocEncoded
// and is decoded byte-for-byte as Latin-1/ASCII, which covers every
// character this engine's pdfDocEncode can itself produce.
func GetTextString(r Getter, obj Object) (TextString, error) {
	s, err := GetString(r, obj)
	if err != nil || s == nil {
		return "", err
	}
	return decodeTextString([]byte(s)), nil
}

func decodeTextString(b []byte) TextString {
	switch {
	case len(b) >= 3 && bytes.Equal(b[:3], utf8Marker):
		return TextString(b[3:])
	case len(b) >= 2 && bytes.Equal(b[:2], utf16Marker):
		b = b[2:]
		units := make([]uint16, len(b)/2)
		for i := range units {
			units[i] = uint16(b[2*i])<<8 | uint16(b[2*i+1])
		}
		return TextString(utf16.Decode(units))
	default:
		runes := make([]rune, len(b))
		for i, c := range b {
			runes[i] = rune(c)
		}
		return TextString(runes)
	}
}
