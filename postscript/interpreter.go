// Copyright 2024 The pdfcore authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package postscript

import (
	"fmt"
	"math"
)

// Interpreter is a PostScript execution context: an operand stack, a
// dictionary stack (searched top to bottom for name lookups), and the
// built-in system dictionary installed by NewInterpreter.
type Interpreter struct {
	Stack      []Object
	DictStack  []Dict
	SystemDict Dict
}

const maxOperandStack = 10000

// NewInterpreter returns an Interpreter with the standard operator set
// installed in SystemDict, pushed as the bottommost dictionary.
func NewInterpreter() *Interpreter {
	sys := standardSystemDict()
	return &Interpreter{
		SystemDict: sys,
		DictStack:  []Dict{sys},
	}
}

// ExecuteString parses and runs a PostScript program against the current
// operand stack.
func (intp *Interpreter) ExecuteString(src string) error {
	nodes, err := parseProgram(src)
	if err != nil {
		return err
	}
	return intp.exec(nodes)
}

func (intp *Interpreter) push(obj Object) error {
	if len(intp.Stack) >= maxOperandStack {
		return fmt.Errorf("postscript: operand stack overflow")
	}
	intp.Stack = append(intp.Stack, obj)
	return nil
}

func (intp *Interpreter) pop() (Object, error) {
	if len(intp.Stack) == 0 {
		return nil, fmt.Errorf("postscript: operand stack underflow")
	}
	obj := intp.Stack[len(intp.Stack)-1]
	intp.Stack = intp.Stack[:len(intp.Stack)-1]
	return obj, nil
}

// lookup searches the dictionary stack from top (most local) to bottom
// (systemdict) for name.
func (intp *Interpreter) lookup(name Name) (Object, bool) {
	for i := len(intp.DictStack) - 1; i >= 0; i-- {
		if obj, ok := intp.DictStack[i][name]; ok {
			return obj, true
		}
	}
	return nil, false
}

func (intp *Interpreter) exec(nodes []node) error {
	for _, n := range nodes {
		switch n.kind {
		case nodeNumber:
			if n.isInt {
				if err := intp.push(Integer(int64(n.num))); err != nil {
					return err
				}
			} else if err := intp.push(Real(n.num)); err != nil {
				return err
			}
		case nodeString:
			if err := intp.push(n.str); err != nil {
				return err
			}
		case nodeLiteralName:
			if err := intp.push(n.name); err != nil {
				return err
			}
		case nodeProc:
			if err := intp.push(*n.proc); err != nil {
				return err
			}
		case nodeExecName:
			obj, ok := intp.lookup(n.name)
			if !ok {
				return fmt.Errorf("postscript: undefined name %q", string(n.name))
			}
			if err := intp.invoke(obj); err != nil {
				return err
			}
		}
	}
	return nil
}

// invoke executes obj as if its name had just been referenced: operators
// run immediately, procedures run their body, anything else is pushed as
// a literal value.
func (intp *Interpreter) invoke(obj Object) error {
	switch v := obj.(type) {
	case Operator:
		return v(intp)
	case Procedure:
		return intp.exec(v.body)
	default:
		return intp.push(obj)
	}
}

// execProc runs a procedure previously popped off the operand stack.
func (intp *Interpreter) execProc(obj Object) error {
	proc, ok := obj.(Procedure)
	if !ok {
		return fmt.Errorf("postscript: expected a procedure, got %T", obj)
	}
	return intp.exec(proc.body)
}

func (intp *Interpreter) popNum() (float64, error) {
	obj, err := intp.pop()
	if err != nil {
		return 0, err
	}
	return toFloat(obj)
}

func (intp *Interpreter) popInt() (int64, error) {
	obj, err := intp.pop()
	if err != nil {
		return 0, err
	}
	return toInt(obj)
}

func (intp *Interpreter) popBool() (bool, error) {
	obj, err := intp.pop()
	if err != nil {
		return false, err
	}
	return toBool(obj)
}

// unaryReal registers a real-valued unary math operator.
func unaryReal(f func(float64) float64) Operator {
	return func(intp *Interpreter) error {
		x, err := intp.popNum()
		if err != nil {
			return err
		}
		return intp.push(Real(f(x)))
	}
}

func binaryReal(f func(a, b float64) float64) Operator {
	return func(intp *Interpreter) error {
		b, err := intp.popNum()
		if err != nil {
			return err
		}
		a, err := intp.popNum()
		if err != nil {
			return err
		}
		return intp.push(Real(f(a, b)))
	}
}

func binaryCompare(f func(a, b float64) bool) Operator {
	return func(intp *Interpreter) error {
		b, err := intp.popNum()
		if err != nil {
			return err
		}
		a, err := intp.popNum()
		if err != nil {
			return err
		}
		return intp.push(Boolean(f(a, b)))
	}
}

func degToRad(d float64) float64 { return d * math.Pi / 180 }
func radToDeg(r float64) float64 { return r * 180 / math.Pi }

// standardSystemDict builds the operator table. Only the subset needed
// for Type 4 PDF functions and Type 1 CharString/eexec support is
// implemented; anything else raises "undefined" at lookup time.
func standardSystemDict() Dict {
	d := Dict{}

	d["true"] = Boolean(true)
	d["false"] = Boolean(false)

	d["abs"] = unaryReal(math.Abs)
	d["neg"] = unaryReal(func(x float64) float64 { return -x })
	d["ceiling"] = unaryReal(math.Ceil)
	d["floor"] = unaryReal(math.Floor)
	d["round"] = unaryReal(math.Round)
	d["truncate"] = unaryReal(math.Trunc)
	d["sqrt"] = unaryReal(math.Sqrt)
	d["sin"] = unaryReal(func(x float64) float64 { return math.Sin(degToRad(x)) })
	d["cos"] = unaryReal(func(x float64) float64 { return math.Cos(degToRad(x)) })
	d["ln"] = unaryReal(math.Log)
	d["log"] = unaryReal(math.Log10)

	d["cvi"] = Operator(func(intp *Interpreter) error {
		x, err := intp.popNum()
		if err != nil {
			return err
		}
		return intp.push(Integer(int64(math.Trunc(x))))
	})
	d["cvr"] = Operator(func(intp *Interpreter) error {
		x, err := intp.popNum()
		if err != nil {
			return err
		}
		return intp.push(Real(x))
	})

	d["add"] = binaryReal(func(a, b float64) float64 { return a + b })
	d["sub"] = binaryReal(func(a, b float64) float64 { return a - b })
	d["mul"] = binaryReal(func(a, b float64) float64 { return a * b })
	d["div"] = binaryReal(func(a, b float64) float64 { return a / b })
	d["exp"] = binaryReal(math.Pow)
	d["atan"] = Operator(func(intp *Interpreter) error {
		den, err := intp.popNum()
		if err != nil {
			return err
		}
		num, err := intp.popNum()
		if err != nil {
			return err
		}
		deg := radToDeg(math.Atan2(num, den))
		if deg < 0 {
			deg += 360
		}
		return intp.push(Real(deg))
	})
	d["idiv"] = Operator(func(intp *Interpreter) error {
		b, err := intp.popInt()
		if err != nil {
			return err
		}
		a, err := intp.popInt()
		if err != nil {
			return err
		}
		if b == 0 {
			return intp.push(Integer(0))
		}
		return intp.push(Integer(a / b))
	})
	d["mod"] = Operator(func(intp *Interpreter) error {
		b, err := intp.popInt()
		if err != nil {
			return err
		}
		a, err := intp.popInt()
		if err != nil {
			return err
		}
		if b == 0 {
			return intp.push(Integer(0))
		}
		return intp.push(Integer(a % b))
	})
	d["bitshift"] = Operator(func(intp *Interpreter) error {
		shift, err := intp.popInt()
		if err != nil {
			return err
		}
		v, err := intp.popInt()
		if err != nil {
			return err
		}
		if shift >= 0 {
			return intp.push(Integer(v << uint(shift)))
		}
		return intp.push(Integer(v >> uint(-shift)))
	})

	d["eq"] = binaryCompare(func(a, b float64) bool { return a == b })
	d["ne"] = binaryCompare(func(a, b float64) bool { return a != b })
	d["gt"] = binaryCompare(func(a, b float64) bool { return a > b })
	d["ge"] = binaryCompare(func(a, b float64) bool { return a >= b })
	d["lt"] = binaryCompare(func(a, b float64) bool { return a < b })
	d["le"] = binaryCompare(func(a, b float64) bool { return a <= b })

	d["not"] = Operator(func(intp *Interpreter) error {
		obj, err := intp.pop()
		if err != nil {
			return err
		}
		if b, ok := obj.(Boolean); ok {
			return intp.push(Boolean(!b))
		}
		v, err := toInt(obj)
		if err != nil {
			return err
		}
		return intp.push(Integer(^v))
	})
	boolOrBitwise := func(name string, bf func(a, b bool) bool, nf func(a, b int64) int64) Operator {
		return func(intp *Interpreter) error {
			bObj, err := intp.pop()
			if err != nil {
				return err
			}
			aObj, err := intp.pop()
			if err != nil {
				return err
			}
			ab, aIsBool := aObj.(Boolean)
			bb, bIsBool := bObj.(Boolean)
			if aIsBool && bIsBool {
				return intp.push(Boolean(bf(bool(ab), bool(bb))))
			}
			av, err := toInt(aObj)
			if err != nil {
				return err
			}
			bv, err := toInt(bObj)
			if err != nil {
				return err
			}
			return intp.push(Integer(nf(av, bv)))
		}
	}
	d["and"] = boolOrBitwise("and", func(a, b bool) bool { return a && b }, func(a, b int64) int64 { return a & b })
	d["or"] = boolOrBitwise("or", func(a, b bool) bool { return a || b }, func(a, b int64) int64 { return a | b })
	d["xor"] = boolOrBitwise("xor", func(a, b bool) bool { return a != b }, func(a, b int64) int64 { return a ^ b })

	d["if"] = Operator(func(intp *Interpreter) error {
		proc, err := intp.pop()
		if err != nil {
			return err
		}
		cond, err := intp.popBool()
		if err != nil {
			return err
		}
		if cond {
			return intp.execProc(proc)
		}
		return nil
	})
	d["ifelse"] = Operator(func(intp *Interpreter) error {
		elseProc, err := intp.pop()
		if err != nil {
			return err
		}
		ifProc, err := intp.pop()
		if err != nil {
			return err
		}
		cond, err := intp.popBool()
		if err != nil {
			return err
		}
		if cond {
			return intp.execProc(ifProc)
		}
		return intp.execProc(elseProc)
	})

	d["pop"] = Operator(func(intp *Interpreter) error {
		_, err := intp.pop()
		return err
	})
	d["exch"] = Operator(func(intp *Interpreter) error {
		b, err := intp.pop()
		if err != nil {
			return err
		}
		a, err := intp.pop()
		if err != nil {
			return err
		}
		if err := intp.push(b); err != nil {
			return err
		}
		return intp.push(a)
	})
	d["dup"] = Operator(func(intp *Interpreter) error {
		if len(intp.Stack) == 0 {
			return fmt.Errorf("postscript: operand stack underflow")
		}
		return intp.push(intp.Stack[len(intp.Stack)-1])
	})
	d["copy"] = Operator(func(intp *Interpreter) error {
		n, err := intp.popInt()
		if err != nil {
			return err
		}
		if n < 0 || int(n) > len(intp.Stack) {
			return fmt.Errorf("postscript: operand stack underflow")
		}
		intp.Stack = append(intp.Stack, intp.Stack[len(intp.Stack)-int(n):]...)
		return nil
	})
	d["index"] = Operator(func(intp *Interpreter) error {
		n, err := intp.popInt()
		if err != nil {
			return err
		}
		if n < 0 || int(n) >= len(intp.Stack) {
			return fmt.Errorf("postscript: operand stack underflow")
		}
		return intp.push(intp.Stack[len(intp.Stack)-1-int(n)])
	})
	d["roll"] = Operator(func(intp *Interpreter) error {
		j, err := intp.popInt()
		if err != nil {
			return err
		}
		n, err := intp.popInt()
		if err != nil {
			return err
		}
		if n < 0 || int(n) > len(intp.Stack) {
			return fmt.Errorf("postscript: operand stack underflow")
		}
		if n == 0 {
			return nil
		}
		seg := intp.Stack[len(intp.Stack)-int(n):]
		shift := ((int(j) % int(n)) + int(n)) % int(n)
		rolled := make([]Object, n)
		for i := 0; i < int(n); i++ {
			rolled[(i+shift)%int(n)] = seg[i]
		}
		copy(seg, rolled)
		return nil
	})

	return d
}
