// Copyright 2024 The pdfcore authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package function

import (
	"math"
	"testing"

	pdf "pdfcore.dev/engine"
)

// testCases holds representative Function values for each /FunctionType,
// used both to exercise Apply directly and to build matching PDF
// dictionaries/streams for Read.
var testCases = map[int][]struct {
	name     string
	function Function
}{
	0: {
		{
			name: "basic Type0 8-bit",
			function: &Type0{
				Domain:        []float64{0, 1},
				Range:         []float64{0, 1},
				Size:          []int{4},
				BitsPerSample: 8,
				Encode:        []float64{0, 3},
				Decode:        []float64{0, 1},
				Samples:       []byte{0, 85, 170, 255},
			},
		},
	},
	2: {
		{
			name: "basic Type2",
			function: &Type2{
				XMin: 0, XMax: 1,
				C0: []float64{0.0},
				C1: []float64{1.0},
				N:  1.0,
			},
		},
		{
			name: "Type2 with range",
			function: &Type2{
				XMin: 0, XMax: 1,
				Range: []float64{0, 1, 0, 1, 0, 1},
				C0:    []float64{1, 0, 0},
				C1:    []float64{0, 1, 0},
				N:     2.0,
			},
		},
	},
	3: {
		{
			name: "basic Type3",
			function: &Type3{
				XMin: 0, XMax: 3,
				Functions: []Function{
					&Type2{XMin: 0, XMax: 1, C0: []float64{0}, C1: []float64{1}, N: 1},
					&Type2{XMin: 0, XMax: 1, C0: []float64{1}, C1: []float64{0}, N: 1},
					&Type2{XMin: 0, XMax: 1, C0: []float64{0}, C1: []float64{1}, N: 2},
				},
				Bounds: []float64{1.0, 2.0},
				Encode: []float64{0, 1, 0, 1, 0, 1},
			},
		},
	},
	4: {
		{
			name: "basic Type4 add",
			function: &Type4{
				Domain:  []float64{0, 1, 0, 1},
				Range:   []float64{0, 2},
				Program: "add",
			},
		},
		{
			name: "Type4 stack operations",
			function: &Type4{
				Domain:  []float64{0, 1, 0, 1},
				Range:   []float64{0, 1, 0, 1},
				Program: "exch dup",
			},
		},
	},
}

// buildDict renders a Function's shape as the PDF dictionary entries
// common to every function type. Type-specific entries are added by the
// caller.
func buildDict(ft int, domain, rng []float64) pdf.Dict {
	d := pdf.Dict{"FunctionType": pdf.Integer(ft)}
	if domain != nil {
		d["Domain"] = floatArray(domain)
	}
	if rng != nil {
		d["Range"] = floatArray(rng)
	}
	return d
}

func floatArray(vals []float64) pdf.Array {
	a := make(pdf.Array, len(vals))
	for i, v := range vals {
		a[i] = pdf.Real(v)
	}
	return a
}

func intArray(vals []int) pdf.Array {
	a := make(pdf.Array, len(vals))
	for i, v := range vals {
		a[i] = pdf.Integer(v)
	}
	return a
}

func objFor(t *testing.T, fn Function) pdf.Object {
	t.Helper()
	switch v := fn.(type) {
	case *Type2:
		d := buildDict(2, []float64{v.XMin, v.XMax}, v.Range)
		d["C0"] = floatArray(v.C0)
		d["C1"] = floatArray(v.C1)
		d["N"] = pdf.Real(v.N)
		return d
	case *Type3:
		d := buildDict(3, []float64{v.XMin, v.XMax}, v.Range)
		fns := make(pdf.Array, len(v.Functions))
		for i, sub := range v.Functions {
			fns[i] = objFor(t, sub)
		}
		d["Functions"] = fns
		d["Bounds"] = floatArray(v.Bounds)
		d["Encode"] = floatArray(v.Encode)
		return d
	case *Type4:
		d := buildDict(4, v.Domain, v.Range)
		return &pdf.Stream{Dict: d, R: pdf.NewStreamBytes([]byte(v.Program))}
	case *Type0:
		d := buildDict(0, v.Domain, v.Range)
		d["Size"] = intArray(v.Size)
		d["BitsPerSample"] = pdf.Integer(v.BitsPerSample)
		d["Encode"] = floatArray(v.Encode)
		d["Decode"] = floatArray(v.Decode)
		return &pdf.Stream{Dict: d, R: pdf.NewStreamBytes(v.Samples)}
	default:
		t.Fatalf("objFor: unsupported function type %T", fn)
		return nil
	}
}

type nullGetter struct{}

func (nullGetter) Get(pdf.Reference) (pdf.Object, error) { return nil, nil }

func TestRead(t *testing.T) {
	for ft, cases := range testCases {
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				obj := objFor(t, tc.function)
				got, err := Read(nullGetter{}, obj)
				if err != nil {
					t.Fatalf("Read: %v", err)
				}
				wantM, wantN := tc.function.Shape()
				gotM, gotN := got.Shape()
				if gotM != wantM || gotN != wantN {
					t.Errorf("ft=%d Shape: got (%d,%d), want (%d,%d)", ft, gotM, gotN, wantM, wantN)
				}
				in := make([]float64, wantM)
				for i := range in {
					in[i] = 0.5
				}
				want := make([]float64, wantN)
				tc.function.Apply(want, in...)
				gotOut := make([]float64, wantN)
				got.Apply(gotOut, in...)
				for i := range want {
					if math.Abs(want[i]-gotOut[i]) > 1e-9 {
						t.Errorf("ft=%d output[%d]: got %v, want %v", ft, i, gotOut[i], want[i])
					}
				}
			})
		}
	}
}

func TestFunctionEvaluation(t *testing.T) {
	tests := []struct {
		name      string
		function  Function
		inputs    []float64
		expected  []float64
		tolerance float64
	}{
		{
			name:      "Type2 linear",
			function:  &Type2{XMin: 0, XMax: 1, C0: []float64{0.0}, C1: []float64{1.0}, N: 1.0},
			inputs:    []float64{0.5},
			expected:  []float64{0.5},
			tolerance: 1e-10,
		},
		{
			name:      "Type2 quadratic",
			function:  &Type2{XMin: 0, XMax: 1, C0: []float64{0.0}, C1: []float64{1.0}, N: 2.0},
			inputs:    []float64{0.5},
			expected:  []float64{0.25},
			tolerance: 1e-10,
		},
		{
			name:      "Type2 multi-output",
			function:  &Type2{XMin: 0, XMax: 1, C0: []float64{1.0, 0.0, 0.0}, C1: []float64{0.0, 1.0, 0.0}, N: 1.0},
			inputs:    []float64{0.5},
			expected:  []float64{0.5, 0.5, 0.0},
			tolerance: 1e-10,
		},
		{
			name:      "Type4 add",
			function:  &Type4{Domain: []float64{0, 1, 0, 1}, Range: []float64{0, 2}, Program: "add"},
			inputs:    []float64{0.3, 0.7},
			expected:  []float64{1.0},
			tolerance: 1e-10,
		},
		{
			name:      "Type4 multiply",
			function:  &Type4{Domain: []float64{0, 1, 0, 1}, Range: []float64{0, 1}, Program: "mul"},
			inputs:    []float64{0.5, 0.8},
			expected:  []float64{0.4},
			tolerance: 1e-10,
		},
		{
			name:      "Type4 simple greater than",
			function:  &Type4{Domain: []float64{0, 1}, Range: []float64{0, 1}, Program: "0.5 gt"},
			inputs:    []float64{0.7},
			expected:  []float64{1.0},
			tolerance: 1e-10,
		},
		{
			name:      "Type4 simple less than",
			function:  &Type4{Domain: []float64{0, 1}, Range: []float64{0, 1}, Program: "0.5 gt"},
			inputs:    []float64{0.3},
			expected:  []float64{0.0},
			tolerance: 1e-10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := make([]float64, len(tt.expected))
			tt.function.Apply(result, tt.inputs...)
			for i, expected := range tt.expected {
				if math.Abs(result[i]-expected) > tt.tolerance {
					t.Errorf("output[%d]: expected %f, got %f (diff: %e)",
						i, expected, result[i], math.Abs(result[i]-expected))
				}
			}
		})
	}
}

func TestFunctionValidation(t *testing.T) {
	tests := []struct {
		name     string
		function interface{ validate() error }
		wantErr  bool
	}{
		{
			name: "valid Type0",
			function: &Type0{
				Domain: []float64{0, 1}, Range: []float64{0, 1}, Size: []int{2},
				BitsPerSample: 8, Encode: []float64{0, 1}, Decode: []float64{0, 1},
				Samples: []byte{0, 255},
			},
			wantErr: false,
		},
		{
			name: "Type0 invalid bits per sample",
			function: &Type0{
				Domain: []float64{0, 1}, Range: []float64{0, 1}, Size: []int{2},
				BitsPerSample: 7,
			},
			wantErr: true,
		},
		{
			name: "Type0 size mismatch",
			function: &Type0{
				Domain: []float64{0, 1, 0, 1},
				Range:  []float64{0, 1},
				Size:   []int{2},
			},
			wantErr: true,
		},
		{
			name:     "valid Type2",
			function: &Type2{XMin: 0, XMax: 1, C0: []float64{0.0}, C1: []float64{1.0}, N: 1.0},
			wantErr:  false,
		},
		{
			name:     "Type2 C0 vs C1 length mismatch",
			function: &Type2{XMin: 0, XMax: 1, C0: []float64{0.0, 0.0}, C1: []float64{1.0}, N: 1.0},
			wantErr:  true,
		},
		{
			name:     "Type2 negative domain with non-integer N",
			function: &Type2{XMin: -1, XMax: 1, C0: []float64{0.0}, C1: []float64{1.0}, N: 0.5},
			wantErr:  true,
		},
		{
			name: "valid Type3",
			function: &Type3{
				XMin: 0, XMax: 1,
				Functions: []Function{
					&Type2{XMin: 0, XMax: 1, C0: []float64{0}, C1: []float64{1}, N: 1},
				},
				Bounds: []float64{},
				Encode: []float64{0, 1},
			},
			wantErr: false,
		},
		{
			name: "Type3 bounds count mismatch",
			function: &Type3{
				XMin: 0, XMax: 1,
				Functions: []Function{
					&Type2{XMin: 0, XMax: 1, C0: []float64{0}, C1: []float64{1}, N: 1},
					&Type2{XMin: 0, XMax: 1, C0: []float64{0}, C1: []float64{1}, N: 1},
				},
				Bounds: []float64{},
				Encode: []float64{0, 1, 0, 1},
			},
			wantErr: true,
		},
		{
			name:     "valid Type4",
			function: &Type4{Domain: []float64{0, 1}, Range: []float64{0, 1}, Program: "dup mul"},
			wantErr:  false,
		},
		{
			name:     "Type4 empty program",
			function: &Type4{Domain: []float64{0, 1}, Range: []float64{0, 1}, Program: ""},
			wantErr:  true,
		},
		{
			name:     "Type4 unbalanced braces",
			function: &Type4{Domain: []float64{0, 1}, Range: []float64{0, 1}, Program: "{ dup mul"},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.function.validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDomainRangeClipping(t *testing.T) {
	tests := []struct {
		name     string
		function Function
		inputs   []float64
		expected []float64
	}{
		{
			name:     "Type2 input clipping",
			function: &Type2{XMin: 0, XMax: 1, Range: []float64{0, 1}, C0: []float64{0.0}, C1: []float64{1.0}, N: 1.0},
			inputs:   []float64{-0.5},
			expected: []float64{0.0},
		},
		{
			name:     "Type2 input clipping upper",
			function: &Type2{XMin: 0, XMax: 1, Range: []float64{0, 1}, C0: []float64{0.0}, C1: []float64{1.0}, N: 1.0},
			inputs:   []float64{1.5},
			expected: []float64{1.0},
		},
		{
			name:     "Type2 output clipping",
			function: &Type2{XMin: 0, XMax: 1, Range: []float64{0.2, 0.8}, C0: []float64{0.0}, C1: []float64{1.0}, N: 1.0},
			inputs:   []float64{0.0},
			expected: []float64{0.2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := make([]float64, len(tt.expected))
			tt.function.Apply(result, tt.inputs...)
			for i, expected := range tt.expected {
				if math.Abs(result[i]-expected) > 1e-10 {
					t.Errorf("output[%d]: expected %f, got %f", i, expected, result[i])
				}
			}
		})
	}
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func FuzzApply(f *testing.F) {
	f.Add(2, 0.5)
	f.Add(4, 0.3)
	f.Add(2, 0.0)
	f.Add(2, 1.0)

	f.Fuzz(func(t *testing.T, functionType int, input1 float64) {
		var fn Function
		switch functionType {
		case 2:
			fn = &Type2{XMin: 0, XMax: 1, C0: []float64{0}, C1: []float64{1}, N: 1.0}
		case 4:
			fn = &Type4{Domain: []float64{0, 1}, Range: []float64{0, 1}, Program: "0.5"}
		default:
			t.Skip("unsupported function type for fuzzing")
		}

		m, n := fn.Shape()
		if m != 1 {
			t.Skip("function doesn't have single input")
		}

		outputs := make([]float64, n)
		fn.Apply(outputs, input1)

		for i, output := range outputs {
			if !isFinite(output) {
				t.Errorf("output[%d] is not finite: %v", i, output)
			}
		}
	})
}
