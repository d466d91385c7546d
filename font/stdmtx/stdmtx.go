// Copyright 2024 The pdfcore authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package stdmtx provides substitute advance-width metrics for the 14
// standard PDF fonts (ISO 32000-1 9.6.2.2), used when a simple font
// names one of them without embedding a font program. Only the Latin
// glyph set reachable through StandardEncoding is covered; everything
// else falls back to a per-font default width.
package stdmtx

import "strings"

// family buckets the base-14 names into the four classes that matter
// for width lookup: fixed-pitch (Courier), Helvetica (also Arial),
// Times, and everything else (including Symbol and ZapfDingbats),
// which is looked up in the Helvetica table with the same 500 default.
type family int

const (
	familyCourier family = iota
	familyHelvetica
	familyTimes
	familyOther
)

func classify(baseFont string) family {
	name := strings.TrimPrefix(baseFont, subsetTagPrefix(baseFont))
	switch {
	case strings.Contains(name, "Courier"):
		return familyCourier
	case strings.Contains(name, "Helvetica"), strings.Contains(name, "Arial"):
		return familyHelvetica
	case strings.Contains(name, "Times"):
		return familyTimes
	default:
		return familyOther
	}
}

// subsetTagPrefix returns the six-letter "ABCDEF+" subset tag prefix a
// BaseFont name may carry (ISO 32000-1 9.6.4), or "" if none is present.
func subsetTagPrefix(baseFont string) string {
	if len(baseFont) > 7 && baseFont[6] == '+' {
		for i := 0; i < 6; i++ {
			if baseFont[i] < 'A' || baseFont[i] > 'Z' {
				return ""
			}
		}
		return baseFont[:7]
	}
	return ""
}

// DefaultWidth returns the width to use for a character with no
// specific metric entry.
func DefaultWidth(baseFont string) float64 {
	switch classify(baseFont) {
	case familyCourier:
		return 600
	default:
		return 500
	}
}

// WidthOf returns the advance width, in 1000-unit glyph space, of the
// named glyph in one of the base-14 fonts. Unknown glyphs fall back to
// DefaultWidth.
func WidthOf(baseFont, glyphName string) float64 {
	if classify(baseFont) == familyCourier {
		return 600 // Courier is fixed-pitch: every glyph is 600 units wide
	}
	widths := helveticaWidths
	if classify(baseFont) == familyTimes {
		widths = timesWidths
	}
	if w, ok := widths[glyphName]; ok {
		return w
	}
	return DefaultWidth(baseFont)
}

// The tables below cover ASCII letters, digits and common punctuation
// — the glyphs StandardEncoding actually maps codes 32-126 to — taken
// from the published AFM metrics for Helvetica and Times-Roman.
// Bold/oblique variants differ only slightly and are approximated by
// the same table.
var helveticaWidths = map[string]float64{
	"space": 278, "exclam": 278, "quotedbl": 355, "numbersign": 556,
	"dollar": 556, "percent": 889, "ampersand": 667, "quoteright": 222,
	"parenleft": 333, "parenright": 333, "asterisk": 389, "plus": 584,
	"comma": 278, "hyphen": 333, "period": 278, "slash": 278,
	"zero": 556, "one": 556, "two": 556, "three": 556, "four": 556,
	"five": 556, "six": 556, "seven": 556, "eight": 556, "nine": 556,
	"colon": 278, "semicolon": 278, "less": 584, "equal": 584,
	"greater": 584, "question": 556, "at": 1015,
	"A": 667, "B": 667, "C": 722, "D": 722, "E": 667, "F": 611, "G": 778,
	"H": 722, "I": 278, "J": 500, "K": 667, "L": 556, "M": 833, "N": 722,
	"O": 778, "P": 667, "Q": 778, "R": 722, "S": 667, "T": 611, "U": 722,
	"V": 667, "W": 944, "X": 667, "Y": 667, "Z": 611,
	"bracketleft": 278, "backslash": 278, "bracketright": 278,
	"asciicircum": 469, "underscore": 556, "quoteleft": 222,
	"a": 556, "b": 556, "c": 500, "d": 556, "e": 556, "f": 278, "g": 556,
	"h": 556, "i": 222, "j": 222, "k": 500, "l": 222, "m": 833, "n": 556,
	"o": 556, "p": 556, "q": 556, "r": 333, "s": 500, "t": 278, "u": 556,
	"v": 500, "w": 722, "x": 500, "y": 500, "z": 500,
	"braceleft": 334, "bar": 260, "braceright": 334, "asciitilde": 584,
}

var timesWidths = map[string]float64{
	"space": 250, "exclam": 333, "quotedbl": 408, "numbersign": 500,
	"dollar": 500, "percent": 833, "ampersand": 778, "quoteright": 333,
	"parenleft": 333, "parenright": 333, "asterisk": 500, "plus": 564,
	"comma": 250, "hyphen": 333, "period": 250, "slash": 278,
	"zero": 500, "one": 500, "two": 500, "three": 500, "four": 500,
	"five": 500, "six": 500, "seven": 500, "eight": 500, "nine": 500,
	"colon": 278, "semicolon": 278, "less": 564, "equal": 564,
	"greater": 564, "question": 444, "at": 921,
	"A": 722, "B": 667, "C": 667, "D": 722, "E": 611, "F": 556, "G": 722,
	"H": 722, "I": 333, "J": 389, "K": 722, "L": 611, "M": 889, "N": 722,
	"O": 722, "P": 556, "Q": 722, "R": 667, "S": 556, "T": 611, "U": 722,
	"V": 722, "W": 944, "X": 722, "Y": 722, "Z": 611,
	"bracketleft": 333, "backslash": 278, "bracketright": 333,
	"asciicircum": 469, "underscore": 500, "quoteleft": 333,
	"a": 444, "b": 500, "c": 444, "d": 500, "e": 444, "f": 333, "g": 500,
	"h": 500, "i": 278, "j": 278, "k": 500, "l": 278, "m": 778, "n": 500,
	"o": 500, "p": 500, "q": 500, "r": 333, "s": 389, "t": 278, "u": 500,
	"v": 500, "w": 722, "x": 500, "y": 500, "z": 444,
	"braceleft": 480, "bar": 200, "braceright": 480, "asciitilde": 541,
}
