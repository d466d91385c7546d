// Copyright 2024 The pdfcore authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package content

import (
	"fmt"
	"io"

	pdf "pdfcore.dev/engine"
)

// Decoder groups a content stream's raw token sequence into a stream
// of Op values: an operator together with the operands that preceded
// it (ISO 32000-1 7.8.2). It also tracks nesting of BX/EX
// compatibility sections (7.8.2) so a caller can tell whether an
// operator it doesn't recognize is one it is allowed to ignore.
type Decoder struct {
	s    *scanner
	args []pdf.Object

	// CompatDepth is the current nesting depth of BX/EX compatibility
	// sections. It is non-zero while an unrecognised operator found
	// between a BX and its matching EX should be skipped rather than
	// treated as an error.
	CompatDepth int

	// MarkedContentDepth is the current nesting depth of BMC/BDC/EMC
	// marked-content sections.
	MarkedContentDepth int
}

// NewDecoder returns a Decoder reading operations from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{s: newScanner(r)}
}

// Next returns the next operation in the stream. It returns io.EOF
// once the stream is exhausted.
func (d *Decoder) Next() (*Op, error) {
	for {
		tok, err := d.s.Next()
		if err != nil {
			return nil, err
		}

		op, isOp := tok.(Operator)
		if !isOp {
			obj, ok := tok.(pdf.Object)
			if !ok && tok != nil {
				return nil, fmt.Errorf("content: unexpected token %#v", tok)
			}
			d.args = append(d.args, obj)
			continue
		}

		switch op {
		case OpBeginCompatibility:
			d.CompatDepth++
		case OpEndCompatibility:
			if d.CompatDepth > 0 {
				d.CompatDepth--
			}
		case OpBeginMarkedContent, OpBeginMarkedContentWithProps:
			d.MarkedContentDepth++
		case OpEndMarkedContent:
			if d.MarkedContentDepth > 0 {
				d.MarkedContentDepth--
			}
		}

		result := &Op{Name: op, Args: d.args}
		d.args = nil
		return result, nil
	}
}

// InlineImage is the parsed payload of a `BI ... ID ... EI` inline
// image (ISO 32000-1 8.9.7): an abbreviated image dictionary (keys use
// the short forms like /W, /CS, /F the spec permits inside content
// streams) and its still-filtered raw sample data.
type InlineImage struct {
	Dict pdf.Dict
	Data []byte
}

// ReadInlineImage reads one inline image, and must be called
// immediately after Next has returned the "BI" operator: it consumes
// the dictionary key/value pairs up to "ID" itself, then the raw
// sample data up to the matching "EI".
func (d *Decoder) ReadInlineImage() (*InlineImage, error) {
	dict := pdf.Dict{}
	for {
		tok, err := d.s.Next()
		if err != nil {
			return nil, err
		}
		if op, ok := tok.(Operator); ok && op == "ID" {
			break
		}
		key, ok := tok.(pdf.Name)
		if !ok {
			return nil, fmt.Errorf("content: inline image dictionary key is %T, not a name", tok)
		}
		valTok, err := d.s.Next()
		if err != nil {
			return nil, err
		}
		val, ok := valTok.(pdf.Object)
		if !ok && valTok != nil {
			return nil, fmt.Errorf("content: unexpected inline image value %#v", valTok)
		}
		dict[key] = val
	}

	data, err := d.s.readInlineImageData()
	if err != nil {
		return nil, err
	}
	return &InlineImage{Dict: dict, Data: data}, nil
}

// All consumes the whole stream, returning every operation in order.
// It stops at the first error other than io.EOF and returns that error
// together with the operations read before it, whether or not the
// error occurred inside a compatibility section.
func All(r io.Reader) ([]Op, error) {
	d := NewDecoder(r)
	var ops []Op
	for {
		op, err := d.Next()
		if err == io.EOF {
			return ops, nil
		} else if err != nil {
			return ops, err
		}
		ops = append(ops, *op)
	}
}
