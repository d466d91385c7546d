// Copyright 2024 The pdfcore authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package postscript

import (
	"fmt"
	"strconv"
)

type nodeKind uint8

const (
	nodeNumber nodeKind = iota
	nodeExecName
	nodeLiteralName
	nodeString
	nodeProc
)

// node is one parsed element of a PostScript program body, prior to
// execution. Names are split at parse time into "executable" (looked up
// and invoked immediately) and "literal" (pushed as a Name object,
// written `/foo` in source).
type node struct {
	kind  nodeKind
	isInt bool
	num   float64
	name  Name
	str   String
	proc  *Procedure
}

type tokKind uint8

const (
	tokNumber tokKind = iota
	tokIdent
	tokLiteralName
	tokString
	tokOpen
	tokClose
)

type token struct {
	kind tokKind
	s    string
	n    float64
	str  []byte
}

func tokenize(src string) ([]token, error) {
	var toks []token
	i, n := 0, len(src)
	isSpace := func(c byte) bool {
		return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == 0
	}
	for i < n {
		c := src[i]
		switch {
		case isSpace(c):
			i++
		case c == '%':
			for i < n && src[i] != '\n' {
				i++
			}
		case c == '{':
			toks = append(toks, token{kind: tokOpen})
			i++
		case c == '}':
			toks = append(toks, token{kind: tokClose})
			i++
		case c == '/':
			j := i + 1
			for j < n && !isSpace(src[j]) && src[j] != '{' && src[j] != '}' && src[j] != '/' {
				j++
			}
			toks = append(toks, token{kind: tokLiteralName, s: src[i+1 : j]})
			i = j
		case c == '(':
			depth := 1
			j := i + 1
			start := j
			for j < n && depth > 0 {
				switch src[j] {
				case '(':
					depth++
				case ')':
					depth--
				case '\\':
					j++
				}
				j++
			}
			end := j - 1
			if depth != 0 {
				return nil, fmt.Errorf("postscript: unterminated string literal")
			}
			toks = append(toks, token{kind: tokString, str: []byte(src[start:end])})
			i = j
		default:
			j := i
			for j < n && !isSpace(src[j]) && src[j] != '{' && src[j] != '}' && src[j] != '/' {
				j++
			}
			word := src[i:j]
			if v, err := strconv.ParseFloat(word, 64); err == nil {
				toks = append(toks, token{kind: tokNumber, n: v, s: word})
			} else {
				toks = append(toks, token{kind: tokIdent, s: word})
			}
			i = j
		}
	}
	return toks, nil
}

// parseBody parses toks[pos:] into a flat node list, stopping at a
// matching '}' or end of input. It does not consume the closing brace.
func parseBody(toks []token, pos int) ([]node, int, error) {
	var out []node
	for pos < len(toks) {
		tok := toks[pos]
		switch tok.kind {
		case tokClose:
			return out, pos, nil
		case tokOpen:
			body, newPos, err := parseBody(toks, pos+1)
			if err != nil {
				return nil, 0, err
			}
			if newPos >= len(toks) || toks[newPos].kind != tokClose {
				return nil, 0, fmt.Errorf("postscript: unmatched {")
			}
			out = append(out, node{kind: nodeProc, proc: &Procedure{body: body}})
			pos = newPos + 1
		case tokLiteralName:
			out = append(out, node{kind: nodeLiteralName, name: Name(tok.s)})
			pos++
		case tokString:
			out = append(out, node{kind: nodeString, str: String(tok.str)})
			pos++
		case tokNumber:
			_, isInt := isIntegerLiteral(tok.s)
			out = append(out, node{kind: nodeNumber, num: tok.n, isInt: isInt})
			pos++
		default: // tokIdent
			out = append(out, node{kind: nodeExecName, name: Name(tok.s)})
			pos++
		}
	}
	return out, pos, nil
}

func isIntegerLiteral(s string) (int64, bool) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseProgram(src string) ([]node, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	nodes, pos, err := parseBody(toks, 0)
	if err != nil {
		return nil, err
	}
	if pos != len(toks) {
		return nil, fmt.Errorf("postscript: unmatched }")
	}
	return nodes, nil
}
