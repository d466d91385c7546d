// Copyright 2024 The pdfcore authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package charcode

import (
	"fmt"
	"testing"
)

type decodeCase struct {
	name        string
	input       []byte
	wantCode    uint32
	wantConsume int
	wantValid   bool
}

type decodeRanges struct {
	name   string
	ranges CodeSpaceRange
	cases  []decodeCase
}

var decodeTestCases = []decodeRanges{
	{
		name:   "simple range",
		ranges: Simple,
		cases: []decodeCase{
			{
				name:        "valid input",
				input:       []byte{0x20},
				wantCode:    0x20,
				wantConsume: 1,
				wantValid:   true,
			},
			{
				name:  "empty input",
				input: []byte{},
			},
		},
	},

	{
		name: "one-byte sub-range",
		ranges: CodeSpaceRange{
			{Low: []byte{0x20}, High: []byte{0x7F}},
		},
		cases: []decodeCase{
			{
				name:        "lowest valid input",
				input:       []byte{0x20},
				wantCode:    0x20,
				wantConsume: 1,
				wantValid:   true,
			},
			{
				name:        "valid input",
				input:       []byte{0x40},
				wantCode:    0x40,
				wantConsume: 1,
				wantValid:   true,
			},
			{
				name:        "highest valid input",
				input:       []byte{0x7F},
				wantCode:    0x7F,
				wantConsume: 1,
				wantValid:   true,
			},
			{
				name:        "low invalid input",
				input:       []byte{0x1F, 0x01, 0x02},
				wantConsume: 1,
			},
			{
				name:        "high invalid input",
				input:       []byte{0x80, 0x01, 0x02},
				wantConsume: 1,
			},
			{
				name:  "empty input",
				input: []byte{},
			},
		},
	},

	{
		name:   "two-byte codes",
		ranges: UCS2,
		cases: []decodeCase{
			{
				name:        "valid input",
				input:       []byte{0x20, 0x30},
				wantCode:    0x3020,
				wantConsume: 2,
				wantValid:   true,
			},
			{
				name:        "truncated input",
				input:       []byte{0x20},
				wantConsume: 1,
			},
			{
				name:  "empty input",
				input: []byte{},
			},
		},
	},

	{
		name: "mixed one- and two-byte codes",
		ranges: CodeSpaceRange{
			{Low: []byte{0x00}, High: []byte{0x80}},
			{Low: []byte{0x81, 0x40}, High: []byte{0x9F, 0xFC}},
		},
		cases: []decodeCase{
			{
				name:        "one-byte code",
				input:       []byte{0x41},
				wantCode:    0x41,
				wantConsume: 1,
				wantValid:   true,
			},
			{
				name:        "two-byte code",
				input:       []byte{0x81, 0x40},
				wantCode:    0x4081,
				wantConsume: 2,
				wantValid:   true,
			},
			{
				name:        "invalid second byte",
				input:       []byte{0x81, 0x3F},
				wantConsume: 2,
			},
			{
				name:        "invalid first byte",
				input:       []byte{0xA0, 0x40},
				wantConsume: 1,
			},
		},
	},

	{
		name: "uniform two-byte codes skip full codes",
		ranges: CodeSpaceRange{
			{Low: []byte{0x10, 0x00}, High: []byte{0x1F, 0xFF}},
		},
		cases: []decodeCase{
			{
				name:        "valid input",
				input:       []byte{0x10, 0x01},
				wantCode:    0x0110,
				wantConsume: 2,
				wantValid:   true,
			},
			{
				// A first byte outside every range consumes a whole
				// code's worth of bytes, so the decoder re-synchronises
				// at the next code boundary.
				name:        "invalid first byte consumes code length",
				input:       []byte{0x40, 0x41, 0x42},
				wantConsume: 2,
			},
		},
	},
}

func TestDecode(t *testing.T) {
	for i, r := range decodeTestCases {
		d := NewDecoder(r.ranges)
		for _, c := range r.cases {
			t.Run(fmt.Sprintf("%02d-%s-%s", i+1, r.name, c.name), func(t *testing.T) {
				code, consumed, valid := d.Decode(c.input)
				if valid != c.wantValid {
					t.Errorf("valid = %v, want %v", valid, c.wantValid)
				}
				if consumed != c.wantConsume {
					t.Errorf("consumed = %d, want %d", consumed, c.wantConsume)
				}
				if valid && code != c.wantCode {
					t.Errorf("code = 0x%x, want 0x%x", code, c.wantCode)
				}
			})
		}
	}
}

// TestDecodeEmptyCodeSpace checks that a decoder over an empty code
// space still consumes input a byte at a time rather than stalling.
func TestDecodeEmptyCodeSpace(t *testing.T) {
	d := NewDecoder(nil)
	code, consumed, valid := d.Decode([]byte{0x00, 0x01})
	if valid || consumed != 1 || code != 0 {
		t.Errorf("Decode = (%d, %d, %v), want (0, 1, false)", code, consumed, valid)
	}
}

// TestDecodeProgress checks that the decoder always makes progress on
// non-empty input, so callers can loop over a string without guarding
// against a stuck cursor.
func TestDecodeProgress(t *testing.T) {
	for _, r := range decodeTestCases {
		d := NewDecoder(r.ranges)
		for b := 0; b < 256; b++ {
			input := []byte{byte(b), 0x00, 0x00, 0x00}
			for len(input) > 0 {
				_, consumed, _ := d.Decode(input)
				if consumed <= 0 {
					t.Fatalf("%s: no progress on input %x", r.name, input)
				}
				if consumed > len(input) {
					consumed = len(input)
				}
				input = input[consumed:]
			}
		}
	}
}

// TestNodeSharing checks that identical sub-trees are built only once:
// three disjoint two-byte ranges with the same second-byte span must
// share a single second-level node.
func TestNodeSharing(t *testing.T) {
	csr := CodeSpaceRange{
		{Low: []byte{1, 10}, High: []byte{1, 20}},
		{Low: []byte{3, 10}, High: []byte{3, 20}},
		{Low: []byte{5, 10}, High: []byte{5, 20}},
	}
	d := NewDecoder(csr)

	var cc []uint16
	for _, n := range d.tree {
		cc = append(cc, n.child)
		if n.high == 0xFF {
			break
		}
	}

	// The root level alternates between invalid one-extra-byte gaps and
	// the shared second-byte sub-tree.
	if len(cc) != 7 {
		t.Fatalf("expected 7 root nodes, got %d", len(cc))
	}
	for i := 0; i < 7; i += 2 {
		if cc[i] != invalidConsume1 {
			t.Fatalf("root node %d: expected invalidConsume1, got %d", i, cc[i])
		}
	}
	for i := 3; i < 7; i += 2 {
		if cc[i] != cc[1] {
			t.Fatalf("root node %d: expected shared sub-tree %d, got %d", i, cc[1], cc[i])
		}
	}
}

func FuzzDecode(f *testing.F) {
	for sel, tc := range decodeTestCases {
		for _, c := range tc.cases {
			f.Add(uint(sel), c.input)
		}
	}

	f.Fuzz(func(t *testing.T, sel uint, input []byte) {
		sel = sel % uint(len(decodeTestCases))
		csr := decodeTestCases[sel].ranges
		d := NewDecoder(csr)

		for len(input) > 0 {
			_, consumed, valid := d.Decode(input)
			if consumed <= 0 {
				t.Fatalf("no progress on input %x", input)
			}
			if valid {
				// every valid decode must correspond to a byte
				// sequence the code space actually contains
				if n := csr.matchLen(input); n != consumed {
					t.Fatalf("valid decode consumed %d bytes, code space matches %d (input %x)",
						consumed, n, input)
				}
			}
			if consumed > len(input) {
				consumed = len(input)
			}
			input = input[consumed:]
		}
	})
}

// BenchmarkDecodeSingleByte benchmarks the Decode method for
// single-byte codes.
func BenchmarkDecodeSingleByte(b *testing.B) {
	d := NewDecoder(Simple)
	input := []byte{0x42}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = d.Decode(input)
	}
}

// BenchmarkDecodeTwoByte benchmarks the Decode method for two-byte
// codes.
func BenchmarkDecodeTwoByte(b *testing.B) {
	d := NewDecoder(UCS2)
	input := []byte{0x12, 0x34}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = d.Decode(input)
	}
}
