// seehuhn.de/go/pdf - a library for reading and writing PDF files
// Copyright (C) 2023  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package pdfenc

import "testing"

// TestMacRoman spot-checks a handful of well known code points rather than
// depending on a glyph-name-to-Unicode oracle.
func TestMacRoman(t *testing.T) {
	cases := map[byte]string{
		'A': "A",
		'z': "z",
		'0': "zero",
		' ': "space",
	}
	for code, want := range cases {
		if got := macRomanEncoding[code]; got != want {
			t.Errorf("macRomanEncoding[%d] = %q, want %q", code, got, want)
		}
	}
}

func TestMacRomanAltReplacesCurrencyWithEuro(t *testing.T) {
	if macRomanAltEncoding[0xDB] != "Euro" {
		t.Errorf("macRomanAltEncoding[0xDB] = %q, want Euro", macRomanAltEncoding[0xDB])
	}
	for i := range macRomanEncoding {
		if i == 0xDB {
			continue
		}
		if macRomanAltEncoding[i] != macRomanEncoding[i] {
			t.Errorf("macRomanAltEncoding[%d] = %q, want %q (unchanged from MacRoman)", i, macRomanAltEncoding[i], macRomanEncoding[i])
		}
	}
}
