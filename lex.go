// Copyright 2024 The pdfcore authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package pdf

import (
	"fmt"
	"strconv"
)

// scanner tokenizes the binary PDF object syntax described in spec.md
// section 4.1: numbers, names, literal and hex strings, arrays, dicts,
// streams, and indirect references/object headers.
//
// The scanner works over an in-memory byte slice rather than a stream:
// every object the resolver reads is first located via the
// cross-reference table and sliced out of the file, so arbitrary
// backtracking (needed to disambiguate "N G R" from two plain integers)
// is just moving an index, never an unread buffer.
type scanner struct {
	buf []byte
	pos int64 // position within buf
	base int64 // file offset that buf[0] corresponds to, for error reporting
}

func newScanner(buf []byte, base int64) *scanner {
	return &scanner{buf: buf, base: base}
}

func isWhite(b byte) bool {
	switch b {
	case 0x00, 0x09, 0x0A, 0x0C, 0x0D, 0x20:
		return true
	}
	return false
}

func isDelim(b byte) bool {
	switch b {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func (s *scanner) eof() bool { return int(s.pos) >= len(s.buf) }

func (s *scanner) offset() int64 { return s.base + s.pos }

func (s *scanner) readByte() (byte, bool) {
	if s.eof() {
		return 0, false
	}
	b := s.buf[s.pos]
	s.pos++
	return b, true
}

func (s *scanner) unreadByte() { s.pos-- }

func (s *scanner) peekByte() (byte, bool) {
	if s.eof() {
		return 0, false
	}
	return s.buf[s.pos], true
}

// skipWhite consumes whitespace and comments (spec.md 4.1).
func (s *scanner) skipWhite() {
	for {
		b, ok := s.readByte()
		if !ok {
			return
		}
		if b == '%' {
			for {
				c, ok := s.readByte()
				if !ok || c == '\r' || c == '\n' {
					break
				}
			}
			continue
		}
		if !isWhite(b) {
			s.unreadByte()
			return
		}
	}
}

// ReadObject reads one direct object. Indirect references are returned
// as Reference values, never followed.
func (s *scanner) ReadObject() (Object, error) {
	s.skipWhite()
	b, ok := s.readByte()
	if !ok {
		return nil, &LexError{Expected: "object", Offset: s.offset()}
	}

	switch {
	case b == '/':
		return s.readName(), nil
	case b == '(':
		return s.readLiteralString()
	case b == '<':
		if b2, ok := s.peekByte(); ok && b2 == '<' {
			s.readByte()
			return s.readDictOrStream()
		}
		return s.readHexString()
	case b == '[':
		return s.readArray()
	case b == '+' || b == '-' || b == '.' || (b >= '0' && b <= '9'):
		s.unreadByte()
		return s.readNumberOrRef()
	default:
		s.unreadByte()
		return s.readKeyword()
	}
}

func (s *scanner) readName() Name {
	var buf []byte
	for {
		b, ok := s.readByte()
		if !ok || isWhite(b) || isDelim(b) {
			if ok {
				s.unreadByte()
			}
			break
		}
		if b == '#' {
			save := s.pos
			h1, ok1 := s.readByte()
			h2, ok2 := s.readByte()
			if ok1 && ok2 {
				v1, k1 := hexVal(h1)
				v2, k2 := hexVal(h2)
				if k1 && k2 {
					buf = append(buf, v1<<4|v2)
					continue
				}
			}
			s.pos = save
			buf = append(buf, b)
			continue
		}
		buf = append(buf, b)
	}
	return Name(buf)
}

func (s *scanner) readLiteralString() (String, error) {
	var buf []byte
	depth := 1
	for {
		b, ok := s.readByte()
		if !ok {
			return nil, &LexError{Expected: "')'", Offset: s.offset()}
		}
		switch b {
		case '(':
			depth++
			buf = append(buf, b)
		case ')':
			depth--
			if depth == 0 {
				return String(buf), nil
			}
			buf = append(buf, b)
		case '\\':
			e, ok := s.readByte()
			if !ok {
				return nil, &LexError{Expected: "escape", Offset: s.offset()}
			}
			switch e {
			case 'n':
				buf = append(buf, '\n')
			case 'r':
				buf = append(buf, '\r')
			case 't':
				buf = append(buf, '\t')
			case 'b':
				buf = append(buf, '\b')
			case 'f':
				buf = append(buf, '\f')
			case '(', ')', '\\':
				buf = append(buf, e)
			case '\r':
				if p, ok := s.peekByte(); ok && p == '\n' {
					s.readByte()
				}
			case '\n':
				// line continuation
			default:
				if e >= '0' && e <= '7' {
					val := int(e - '0')
					for i := 0; i < 2; i++ {
						p, ok := s.peekByte()
						if !ok || p < '0' || p > '7' {
							break
						}
						s.readByte()
						val = val*8 + int(p-'0')
					}
					buf = append(buf, byte(val))
				} else {
					buf = append(buf, e)
				}
			}
		default:
			buf = append(buf, b)
		}
	}
}

func (s *scanner) readHexString() (String, error) {
	var nibbles []byte
	for {
		b, ok := s.readByte()
		if !ok {
			return nil, &LexError{Expected: "'>'", Offset: s.offset()}
		}
		if b == '>' {
			break
		}
		if isWhite(b) {
			continue
		}
		v, ok := hexVal(b)
		if !ok {
			return nil, &LexError{Expected: "hex digit", Found: b, Offset: s.offset()}
		}
		nibbles = append(nibbles, v)
	}
	if len(nibbles)%2 != 0 {
		nibbles = append(nibbles, 0)
	}
	out := make([]byte, len(nibbles)/2)
	for i := range out {
		out[i] = nibbles[2*i]<<4 | nibbles[2*i+1]
	}
	return String(out), nil
}

func (s *scanner) readArray() (Array, error) {
	var arr Array
	for {
		s.skipWhite()
		b, ok := s.peekByte()
		if !ok {
			return nil, &LexError{Expected: "']'", Offset: s.offset()}
		}
		if b == ']' {
			s.readByte()
			return arr, nil
		}
		obj, err := s.ReadObject()
		if err != nil {
			return nil, err
		}
		arr = append(arr, obj)
	}
}

func (s *scanner) readDictOrStream() (Object, error) {
	dict := Dict{}
	for {
		s.skipWhite()
		b, ok := s.readByte()
		if !ok {
			return nil, &LexError{Expected: "'>>'", Offset: s.offset()}
		}
		if b == '>' {
			b2, ok := s.readByte()
			if !ok || b2 != '>' {
				return nil, &LexError{Expected: "'>>'", Found: b2, Offset: s.offset()}
			}
			break
		}
		if b != '/' {
			return nil, &LexError{Expected: "dict key", Found: b, Offset: s.offset()}
		}
		key := s.readName()
		val, err := s.ReadObject()
		if err != nil {
			return nil, err
		}
		dict[key] = val
	}

	// Check for a following "stream" keyword (spec.md 4.1).
	save := s.pos
	s.skipWhite()
	if !s.consumeLiteral("stream") {
		s.pos = save
		return dict, nil
	}

	b, ok := s.readByte()
	if !ok {
		return nil, &LexError{Expected: "EOL after stream", Offset: s.offset()}
	}
	if b == '\r' {
		b, ok = s.readByte()
		if !ok || b != '\n' {
			return nil, &LexError{Expected: "\\n after \\r", Offset: s.offset()}
		}
	} else if b != '\n' {
		return nil, &LexError{Expected: "EOL after stream", Found: b, Offset: s.offset()}
	}

	return &pendingStream{Dict: dict, DataStart: s.offset()}, nil
}

// pendingStream marks the point in the token stream at which raw stream
// data begins; xref.go slices out exactly Length bytes starting here
// once Length (possibly itself an indirect reference) is resolved.
type pendingStream struct {
	Dict      Dict
	DataStart int64
}

func (*pendingStream) isObject() {}

func (s *scanner) consumeLiteral(lit string) bool {
	if s.pos+int64(len(lit)) > int64(len(s.buf)) {
		return false
	}
	if string(s.buf[s.pos:s.pos+int64(len(lit))]) != lit {
		return false
	}
	s.pos += int64(len(lit))
	return true
}

// readNumberOrRef reads a number, or (by lookahead) an indirect
// reference "N G R". Anything else after "N G", including an object
// header's "obj", makes it back up and return the first integer alone;
// headers are read by ReadIndirectObject.
func (s *scanner) readNumberOrRef() (Object, error) {
	numTok, isInt := s.readNumberToken()
	if numTok == "" {
		return nil, &LexError{Expected: "number", Offset: s.offset()}
	}
	if !isInt {
		f, err := strconv.ParseFloat(numTok, 64)
		if err != nil {
			return nil, &LexError{Expected: "number", Offset: s.offset()}
		}
		return Real(f), nil
	}

	firstInt, err := strconv.ParseInt(numTok, 10, 64)
	if err != nil {
		f, _ := strconv.ParseFloat(numTok, 64)
		return Real(f), nil
	}

	// Lookahead for "G R".
	save := s.pos
	s.skipWhite()
	b, ok := s.peekByte()
	if !ok || b < '0' || b > '9' {
		s.pos = save
		return Integer(firstInt), nil
	}
	genTok, genIsInt := s.readNumberToken()
	if !genIsInt {
		s.pos = save
		return Integer(firstInt), nil
	}
	gen, err := strconv.ParseInt(genTok, 10, 64)
	if err != nil {
		s.pos = save
		return Integer(firstInt), nil
	}
	s.skipWhite()
	b, ok = s.peekByte()
	if !ok {
		s.pos = save
		return Integer(firstInt), nil
	}
	if b == 'R' {
		s.readByte()
		if p, ok := s.peekByte(); ok && !isWhite(p) && !isDelim(p) {
			s.pos = save
			return Integer(firstInt), nil
		}
		return NewReference(uint32(firstInt), uint16(gen)), nil
	}

	s.pos = save
	return Integer(firstInt), nil
}

func (s *scanner) readNumberToken() (string, bool) {
	var buf []byte
	isInt := true
	b, ok := s.readByte()
	if !ok {
		return "", true
	}
	if b == '+' || b == '-' {
		buf = append(buf, b)
		b, ok = s.readByte()
		if !ok {
			return string(buf), isInt
		}
	}
	for {
		if b >= '0' && b <= '9' {
			buf = append(buf, b)
		} else if b == '.' {
			isInt = false
			buf = append(buf, b)
		} else {
			s.unreadByte()
			break
		}
		b, ok = s.readByte()
		if !ok {
			break
		}
	}
	if len(buf) == 0 || (len(buf) == 1 && (buf[0] == '+' || buf[0] == '-')) {
		return "", isInt
	}
	return string(buf), isInt
}

func (s *scanner) readKeyword() (Object, error) {
	var buf []byte
	for {
		b, ok := s.readByte()
		if !ok || isWhite(b) || isDelim(b) {
			if ok {
				s.unreadByte()
			}
			break
		}
		buf = append(buf, b)
	}
	switch string(buf) {
	case "true":
		return Boolean(true), nil
	case "false":
		return Boolean(false), nil
	case "null":
		return nil, nil
	case "":
		return nil, &LexError{Expected: "object", Offset: s.offset()}
	default:
		return nil, fmt.Errorf("unexpected keyword %q at byte %d", buf, s.offset())
	}
}

// ReadIndirectObject reads an "N G obj ... endobj" header, positioned
// at the start of the object (as located by the cross-reference
// table), and returns its contents.
func (s *scanner) ReadIndirectObject() (Reference, Object, error) {
	s.skipWhite()
	numTok, isInt := s.readNumberToken()
	if !isInt {
		return Reference{}, nil, &LexError{Expected: "object number", Offset: s.offset()}
	}
	num, err := strconv.ParseInt(numTok, 10, 64)
	if err != nil {
		return Reference{}, nil, &LexError{Expected: "object number", Offset: s.offset()}
	}
	s.skipWhite()
	genTok, isInt := s.readNumberToken()
	if !isInt {
		return Reference{}, nil, &LexError{Expected: "generation number", Offset: s.offset()}
	}
	gen, err := strconv.ParseInt(genTok, 10, 64)
	if err != nil {
		return Reference{}, nil, &LexError{Expected: "generation number", Offset: s.offset()}
	}
	s.skipWhite()
	if !s.consumeLiteral("obj") {
		return Reference{}, nil, &LexError{Expected: "'obj'", Offset: s.offset()}
	}
	obj, err := s.ReadObject()
	if err != nil {
		return Reference{}, nil, err
	}
	return NewReference(uint32(num), uint16(gen)), obj, nil
}
