// Copyright 2024 The pdfcore authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package content tokenizes and decodes PDF content streams: the
// operator/operand sequences that make up a page's /Contents stream
// (and, equally, a form XObject's or a type 3 glyph's procedure).
//
// Unlike the core pdf package's object model, a content stream's
// token sequence also contains bare operator keywords ("q", "Tj",
// "BDC", ...) interleaved with the ordinary objects used as their
// operands. Those keywords have no place in pdf.Object, a sum type
// closed to package pdf, so a raw token from the tokenizer is
// represented as a plain `any` holding either a pdf.Object or an
// Operator; Decoder is the layer that groups these into Op values.
package content

import (
	pdf "pdfcore.dev/engine"
)

// Operator is a content stream operator keyword, such as "q", "cm" or
// "Tj".
type Operator string

// Op is one operation extracted from a content stream: an operator
// together with the operands that preceded it.
type Op struct {
	Name Operator
	Args []pdf.Object
}

// Marked-content and compatibility-section operators (ISO 32000-1
// 14.6, 7.8.2). Decoder tracks nesting of BX/EX so that unrecognised
// operators inside a compatibility section can be reported without
// aborting the whole stream.
const (
	OpBeginMarkedContent          Operator = "BMC"
	OpBeginMarkedContentWithProps Operator = "BDC"
	OpEndMarkedContent            Operator = "EMC"
	OpBeginCompatibility          Operator = "BX"
	OpEndCompatibility            Operator = "EX"
)

// Pseudo-operators produced internally by the tokenizer to delimit
// dictionaries and arrays. Decoder never surfaces these to callers.
const (
	opDictOpen  Operator = "<<"
	opDictClose Operator = ">>"
	opArrOpen   Operator = "["
	opArrClose  Operator = "]"
)
