// Copyright 2024 The pdfcore authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package content

import (
	"bytes"
	"fmt"
	"io"

	pdf "pdfcore.dev/engine"
)

// Streams returns a single reader over a page's fully decoded content
// stream. A page's /Contents entry is either a single stream or an
// array of streams that are logically concatenated (ISO 32000-1
// 7.8.2); per that section's note that adjacent streams must not be
// run together without intervening white space (an operator at the
// end of one part and an operand at the start of the next would
// otherwise merge into a single token), a newline is inserted between
// parts.
func Streams(r pdf.Getter, contentsObj pdf.Object) (io.Reader, error) {
	resolved, err := pdf.Resolve(r, contentsObj)
	if err != nil {
		return nil, err
	}

	var parts []*pdf.Stream
	switch v := resolved.(type) {
	case nil:
		return bytes.NewReader(nil), nil
	case *pdf.Stream:
		parts = []*pdf.Stream{v}
	case pdf.Array:
		for _, item := range v {
			s, err := pdf.GetStream(r, item)
			if err != nil {
				return nil, err
			}
			if s != nil {
				parts = append(parts, s)
			}
		}
	default:
		return nil, fmt.Errorf("content: unexpected type %T for page contents", resolved)
	}

	var buf bytes.Buffer
	for i, s := range parts {
		if i > 0 {
			buf.WriteByte('\n')
		}
		raw, err := s.R.Bytes()
		if err != nil {
			return nil, err
		}
		decoded, err := pdf.DecodeStream(r, s, bytes.NewReader(raw))
		if err != nil {
			return nil, err
		}
		if _, err := io.Copy(&buf, decoded); err != nil {
			return nil, err
		}
	}
	return &buf, nil
}

// Page decodes every operation in a page's content stream, in order.
// It is a thin convenience wrapper over Streams and Decoder for
// callers that just want the whole sequence; callers that want to
// stream operations as they're produced (e.g. to stop early) should
// call Streams and Decoder directly.
func Page(r pdf.Getter, pageDict pdf.Dict) ([]Op, error) {
	stream, err := Streams(r, pageDict["Contents"])
	if err != nil {
		return nil, err
	}
	return All(stream)
}
