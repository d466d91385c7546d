// Copyright 2024 The pdfcore authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package content

import (
	"bytes"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"

	pdf "pdfcore.dev/engine"
)

func TestComment(t *testing.T) {
	cases := []struct {
		in  string
		out any
		err error
	}{
		{"% This is a comment\n1", pdf.Integer(1), nil},
		{"%\n", nil, io.EOF},
		{"%", nil, io.EOF},
	}
	for i, c := range cases {
		s := newScanner(bytes.NewReader([]byte(c.in)))
		obj, err := s.Next()
		if err != c.err {
			t.Errorf("%d: expected error %v, got %v", i, c.err, err)
			continue
		}
		if d := cmp.Diff(c.out, obj); d != "" {
			t.Errorf("%d: diff: %s", i, d)
		}
	}
}

func TestScannerString(t *testing.T) {
	cases := []struct {
		in  string
		out string
	}{
		{"(This is a string)", "This is a string"},
		{"()", ""},
		{"(a (and b))", "a (and b)"},
		{"(a\nb)", "a\nb"},
		{"(a\\nb)", "a\nb"},
		{"(a\rb)", "a\rb"},
		{"(a\\rb)", "a\rb"},
		{"(a\\\rb)", "ab"},
		{"(a\\\nb)", "ab"},
		{"(a\\\r\nb)", "ab"},
		{"(a\\\n\rb)", "a\rb"},
		{`(\0053)`, "\0053"},
		{"<414243>", "ABC"},
		{"< 4 1 4 2 4 3 >", "ABC"},
		{"<53495>", "SIP"},
	}
	for i, c := range cases {
		s := newScanner(bytes.NewReader([]byte(c.in)))
		obj, err := s.Next()
		if err != nil {
			t.Errorf("%d: %v", i, err)
			continue
		}
		got, ok := obj.(pdf.String)
		if !ok {
			t.Errorf("%d: expected String, got %T", i, obj)
			continue
		}
		if string(got) != c.out {
			t.Errorf("%d: expected %q, got %q", i, c.out, got)
		}
	}
}

func TestScannerName(t *testing.T) {
	cases := []struct {
		in  string
		out pdf.Name
	}{
		{"/abc", "abc"},
		{"/Name1", "Name1"},
		{"/A;Name_With-Various***Characters?", "A;Name_With-Various***Characters?"},
		{"/1.2", "1.2"},
		{"/$$", "$$"},
		{"/@pattern", "@pattern"},
		{"/.notdef", ".notdef"},
		{"/lime#20green", "lime green"},
		{"/paired#28#29parentheses", "paired()parentheses"},
		{"/A#42", "AB"},
	}
	for i, c := range cases {
		s := newScanner(bytes.NewReader([]byte(c.in)))
		obj, err := s.Next()
		if err != nil {
			t.Errorf("%d: %v", i, err)
			continue
		}
		got, ok := obj.(pdf.Name)
		if !ok {
			t.Errorf("%d: expected Name, got %T", i, obj)
			continue
		}
		if got != c.out {
			t.Errorf("%d: expected %q, got %q", i, c.out, got)
		}
	}
}

func TestScanner(t *testing.T) {
	for _, c := range scannerTestCases {
		s := newScanner(bytes.NewReader([]byte(c.in)))
		obj, err := s.Next()
		if err != nil && c.ok {
			t.Errorf("%q: unexpected error: %s", c.in, err)
			continue
		}
		if !c.ok && err == nil {
			t.Errorf("%q: expected error, got %#v", c.in, obj)
			continue
		}
		if d := cmp.Diff(c.val, obj); d != "" {
			t.Errorf("%q: diff: %s", c.in, d)
		}
	}
}

var scannerTestCases = []struct {
	in  string
	val any
	ok  bool
}{
	{"", nil, false},
	{"null", nil, true},

	{"true", pdf.Boolean(true), true},
	{"false", pdf.Boolean(false), true},

	{"0", pdf.Integer(0), true},
	{"+0", pdf.Integer(0), true},
	{"-0", pdf.Integer(0), true},
	{"12", pdf.Integer(12), true},
	{"-4567", pdf.Integer(-4567), true},

	{".5", pdf.Real(.5), true},
	{"-.5", pdf.Real(-.5), true},
	{"0.5", pdf.Real(.5), true},

	{"/a", pdf.Name("a"), true},
	{"/A#42", pdf.Name("AB"), true},
	{"/F#23#20minor", pdf.Name("F# minor"), true},
	{"/", pdf.Name(""), true},

	{`()`, pdf.String(nil), true},
	{"(test string)", pdf.String("test string"), true},
	{`(he(ll)o)`, pdf.String("he(ll)o"), true},
	{`(he\)ll\(o)`, pdf.String("he)ll(o"), true},

	{"<>", pdf.String(nil), true},
	{"<68656c6c6f>", pdf.String("hello"), true},
	{"<68 65 6C 6C 6F>", pdf.String("hello"), true},

	{"[1 2 3]", pdf.Array{pdf.Integer(1), pdf.Integer(2), pdf.Integer(3)}, true},
	{"[1 2 << /three 3 >>]", pdf.Array{
		pdf.Integer(1),
		pdf.Integer(2),
		pdf.Dict{"three": pdf.Integer(3)},
	}, true},

	{"<< /key 12 /key2 /23 /key3 [1 2 3] /key4 << /a 1 >> >>", pdf.Dict{
		"key":  pdf.Integer(12),
		"key2": pdf.Name("23"),
		"key3": pdf.Array{pdf.Integer(1), pdf.Integer(2), pdf.Integer(3)},
		"key4": pdf.Dict{"a": pdf.Integer(1)},
	}, true},

	{"q", Operator("q"), true},
	{"T*", Operator("T*"), true},
	{"BX", Operator("BX"), true},
}

func TestScannerCompositeError(t *testing.T) {
	cases := []string{">>", "]", "<< /a >>"}
	for _, in := range cases {
		s := newScanner(bytes.NewReader([]byte(in)))
		if _, err := s.Next(); err == nil {
			t.Errorf("%q: expected an error", in)
		}
	}
}
