// Copyright 2024 The pdfcore authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package cff

import "fmt"

// dictOp identifies a CFF DICT operator (TN #5176 section 4): a single
// byte 0-21, or 12 followed by a second byte for the escape range.
type dictOp uint16

const (
	opCharset       dictOp = 15
	opCharStrings   dictOp = 17
	opPrivate       dictOp = 18
	opSubrs         dictOp = 19
	opDefaultWidthX dictOp = 20
	opNominalWidthX dictOp = 21
	opROS           dictOp = 0x0c1e
	opFDArray       dictOp = 0x0c24
	opFDSelect      dictOp = 0x0c25
	opFontMatrix    dictOp = 0x0c07
)

// parseDict decodes a CFF DICT into a map from operator to its operand
// list, the representation used throughout this package since no DICT
// operator this package reads takes more than a handful of operands.
func parseDict(data []byte) (map[dictOp][]float64, error) {
	out := make(map[dictOp][]float64)
	var operands []float64

	for len(data) > 0 {
		b0 := data[0]
		switch {
		case b0 <= 21:
			op := dictOp(b0)
			data = data[1:]
			if b0 == 12 {
				if len(data) == 0 {
					return nil, fmt.Errorf("cff: truncated dict operator")
				}
				op = 0x0c00 | dictOp(data[0])
				data = data[1:]
			}
			out[op] = operands
			operands = nil

		case b0 == 28:
			if len(data) < 3 {
				return nil, fmt.Errorf("cff: truncated dict operand")
			}
			v := int16(data[1])<<8 | int16(data[2])
			operands = append(operands, float64(v))
			data = data[3:]

		case b0 == 29:
			if len(data) < 5 {
				return nil, fmt.Errorf("cff: truncated dict operand")
			}
			v := int32(data[1])<<24 | int32(data[2])<<16 | int32(data[3])<<8 | int32(data[4])
			operands = append(operands, float64(v))
			data = data[5:]

		case b0 == 30:
			v, n, err := parseDictReal(data[1:])
			if err != nil {
				return nil, err
			}
			operands = append(operands, v)
			data = data[1+n:]

		case b0 >= 32 && b0 <= 246:
			operands = append(operands, float64(int(b0)-139))
			data = data[1:]

		case b0 >= 247 && b0 <= 250:
			if len(data) < 2 {
				return nil, fmt.Errorf("cff: truncated dict operand")
			}
			operands = append(operands, float64((int(b0)-247)*256+int(data[1])+108))
			data = data[2:]

		case b0 >= 251 && b0 <= 254:
			if len(data) < 2 {
				return nil, fmt.Errorf("cff: truncated dict operand")
			}
			operands = append(operands, float64(-(int(b0)-251)*256-int(data[1])-108))
			data = data[2:]

		default:
			return nil, fmt.Errorf("cff: invalid dict byte %d", b0)
		}
	}
	return out, nil
}

// parseDictReal decodes a real-number operand (nibble-packed BCD, TN
// #5176 table 5) starting right after its 30 lead byte.
func parseDictReal(data []byte) (float64, int, error) {
	var s []byte
	n := 0
loop:
	for _, b := range data {
		n++
		for _, nib := range [2]byte{b >> 4, b & 0xf} {
			switch {
			case nib <= 9:
				s = append(s, '0'+nib)
			case nib == 0xa:
				s = append(s, '.')
			case nib == 0xb:
				s = append(s, 'E')
			case nib == 0xc:
				s = append(s, 'E', '-')
			case nib == 0xe:
				s = append(s, '-')
			case nib == 0xf:
				break loop
			}
		}
	}
	var v float64
	_, err := fmt.Sscanf(string(s), "%g", &v)
	if err != nil {
		return 0, n, fmt.Errorf("cff: invalid real number %q", s)
	}
	return v, n, nil
}
