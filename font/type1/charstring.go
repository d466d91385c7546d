// Copyright 2024 The pdfcore authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
//
// The interpreter below follows the Adobe Type 1 Font Format, section
// 6.2 ("Type 1 Charstring Command Summary") and section 8.3 ("Flex and
// Hint Replacement" via the OtherSubrs protocol).

package type1

import (
	"fmt"

	"pdfcore.dev/engine/geom"
)

func decodeType1(f *Font, code []byte) (*geom.Path, float64, error) {
	path := &geom.Path{}
	var stack []float64
	var psStack []float64 // the PostScript interpreter operand stack used by callothersubr/pop
	clear := func() { stack = stack[:0] }

	var posX, posY, width float64
	haveCurrent := false
	inFlex := false
	var flexPts []geom.Point

	moveTo := func(x, y float64) {
		posX, posY = x, y
		if inFlex {
			flexPts = append(flexPts, geom.Point{X: x, Y: y})
			return
		}
		if haveCurrent {
			path.ClosePath()
		}
		path.MoveTo(x, y)
		haveCurrent = true
	}
	lineTo := func(x, y float64) {
		if !haveCurrent {
			path.MoveTo(posX, posY)
			haveCurrent = true
		}
		posX, posY = x, y
		path.LineTo(x, y)
	}
	curveTo := func(x1, y1, x2, y2, x3, y3 float64) {
		if !haveCurrent {
			path.MoveTo(posX, posY)
			haveCurrent = true
		}
		posX, posY = x3, y3
		path.CubicCurveTo(x1, y1, x2, y2, x3, y3)
	}

	depth := 0
	var run func(code []byte) error
	run = func(code []byte) error {
		depth++
		if depth > 32 {
			return fmt.Errorf("type1: subroutine nesting too deep")
		}
		defer func() { depth-- }()

		for len(code) > 0 {
			b0 := code[0]
			switch {
			case b0 >= 32 && b0 <= 246:
				stack = append(stack, float64(int32(b0)-139))
				code = code[1:]
				continue
			case b0 >= 247 && b0 <= 250:
				if len(code) < 2 {
					return fmt.Errorf("type1: truncated charstring")
				}
				stack = append(stack, float64((int32(b0)-247)*256+int32(code[1])+108))
				code = code[2:]
				continue
			case b0 >= 251 && b0 <= 254:
				if len(code) < 2 {
					return fmt.Errorf("type1: truncated charstring")
				}
				stack = append(stack, float64(-(int32(b0)-251)*256-int32(code[1])-108))
				code = code[2:]
				continue
			case b0 == 255:
				if len(code) < 5 {
					return fmt.Errorf("type1: truncated charstring")
				}
				v := int32(code[1])<<24 | int32(code[2])<<16 | int32(code[3])<<8 | int32(code[4])
				stack = append(stack, float64(v))
				code = code[5:]
				continue
			}

			op := uint16(b0)
			if b0 == 12 {
				if len(code) < 2 {
					return fmt.Errorf("type1: truncated charstring")
				}
				op = 0x0c00 | uint16(code[1])
				code = code[2:]
			} else {
				code = code[1:]
			}

			switch op {
			case 1, 3: // hstem, vstem
				clear()
			case 4: // vmoveto
				if len(stack) >= 1 {
					moveTo(posX, posY+stack[0])
				}
				clear()
			case 5: // rlineto
				if len(stack) >= 2 {
					lineTo(posX+stack[0], posY+stack[1])
				}
				clear()
			case 6: // hlineto
				if len(stack) >= 1 {
					lineTo(posX+stack[0], posY)
				}
				clear()
			case 7: // vlineto
				if len(stack) >= 1 {
					lineTo(posX, posY+stack[0])
				}
				clear()
			case 8: // rrcurveto
				if len(stack) >= 6 {
					x1, y1 := posX+stack[0], posY+stack[1]
					x2, y2 := x1+stack[2], y1+stack[3]
					x3, y3 := x2+stack[4], y2+stack[5]
					curveTo(x1, y1, x2, y2, x3, y3)
				}
				clear()
			case 9: // closepath
				if haveCurrent {
					path.ClosePath()
				}
				clear()
			case 10: // callsubr
				if len(stack) < 1 {
					return fmt.Errorf("type1: callsubr: stack underflow")
				}
				idx := int(stack[len(stack)-1])
				stack = stack[:len(stack)-1]
				if idx < 0 || idx >= len(f.Subrs) || f.Subrs[idx] == nil {
					return fmt.Errorf("type1: invalid subr index %d", idx)
				}
				if err := run(f.Subrs[idx]); err != nil {
					return err
				}
			case 11: // return
				return nil
			case 13: // hsbw: sbx wx hsbw
				if len(stack) >= 2 {
					width = stack[1]
					posX, posY = stack[0], 0
				}
				clear()
			case 14: // endchar
				if haveCurrent {
					path.ClosePath()
				}
				return errEndChar
			case 21: // rmoveto
				if len(stack) >= 2 {
					moveTo(posX+stack[0], posY+stack[1])
				}
				clear()
			case 22: // hmoveto
				if len(stack) >= 1 {
					moveTo(posX+stack[0], posY)
				}
				clear()
			case 30: // vhcurveto
				if len(stack) >= 4 {
					x1, y1 := posX, posY+stack[0]
					x2, y2 := x1+stack[1], y1+stack[2]
					x3, y3 := x2+stack[3], y2
					curveTo(x1, y1, x2, y2, x3, y3)
				}
				clear()
			case 31: // hvcurveto
				if len(stack) >= 4 {
					x1, y1 := posX+stack[0], posY
					x2, y2 := x1+stack[1], y1+stack[2]
					x3, y3 := x2, y2+stack[3]
					curveTo(x1, y1, x2, y2, x3, y3)
				}
				clear()

			case 0x0c00: // dotsection
				clear()
			case 0x0c01, 0x0c02: // vstem3, hstem3
				clear()
			case 0x0c06: // seac: asb adx ady bchar achar seac
				clear()
			case 0x0c07: // sbw: sbx sby wx wy sbw
				if len(stack) >= 4 {
					width = stack[2]
					posX, posY = stack[0], stack[1]
				}
				clear()
			case 0x0c0c: // div
				if len(stack) >= 2 {
					k := len(stack) - 2
					stack[k] /= stack[k+1]
					stack = stack[:k+1]
				}
			case 0x0c10: // callothersubr
				if len(stack) < 2 {
					return fmt.Errorf("type1: callothersubr: stack underflow")
				}
				othersubr := int(stack[len(stack)-1])
				nArgs := int(stack[len(stack)-2])
				stack = stack[:len(stack)-2]
				if nArgs < 0 || nArgs > len(stack) {
					return fmt.Errorf("type1: callothersubr: invalid arg count")
				}
				args := append([]float64(nil), stack[len(stack)-nArgs:]...)
				stack = stack[:len(stack)-nArgs]

				switch othersubr {
				case 1: // start flex
					inFlex = true
					flexPts = flexPts[:0]
				case 0: // end flex: seven collected points define two curves
					inFlex = false
					if len(flexPts) >= 7 {
						p := flexPts
						curveTo(p[1].X, p[1].Y, p[2].X, p[2].Y, p[3].X, p[3].Y)
						curveTo(p[4].X, p[4].Y, p[5].X, p[5].Y, p[6].X, p[6].Y)
					}
					psStack = append(psStack, posY, posX)
				case 3: // hint replacement: pushes the subr number back
					psStack = append(psStack, 3)
				default:
					// unrecognised OtherSubrs entries pass their args through unchanged
					for i := len(args) - 1; i >= 0; i-- {
						psStack = append(psStack, args[i])
					}
				}
			case 0x0c11: // pop
				if len(psStack) == 0 {
					stack = append(stack, 0)
				} else {
					v := psStack[len(psStack)-1]
					psStack = psStack[:len(psStack)-1]
					stack = append(stack, v)
				}
			case 0x0c21: // setcurrentpoint
				if len(stack) >= 2 {
					posX, posY = stack[0], stack[1]
				}
				clear()

			default:
				return fmt.Errorf("type1: unsupported opcode %d", op)
			}
		}
		return nil
	}

	if err := run(code); err != nil && err != errEndChar {
		return nil, 0, err
	}
	return path, width, nil
}

var errEndChar = fmt.Errorf("type1: endchar")
