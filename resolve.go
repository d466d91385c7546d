// Copyright 2024 The pdfcore authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package pdf

import (
	"fmt"
)

// Getter is the minimal interface needed to resolve indirect references.
// *Reader implements Getter, and so does anything else that can look up
// an object by its Reference (for example the decoder for a compressed
// object stream, which needs to resolve the Length of its own container).
type Getter interface {
	Get(ref Reference) (Object, error)
}

// maxRefDepth bounds the number of indirections Resolve will follow
// before giving up, so that a file with a reference cycle cannot send the
// resolver into an infinite loop.
const maxRefDepth = 16

// Resolve follows a chain of indirect References until it reaches a
// direct object, and returns that direct object. A Reference that does
// not resolve to anything in the cross-reference table yields Go nil,
// not an error (spec.md section 4.2): a dangling reference is a
// permitted, if unusual, PDF construct.
func Resolve(r Getter, obj Object) (Object, error) {
	depth := 0
	for {
		ref, ok := obj.(Reference)
		if !ok {
			return obj, nil
		}
		depth++
		if depth > maxRefDepth {
			return nil, &MalformedFileError{Err: fmt.Errorf("too many levels of indirection for %s", ref)}
		}
		next, err := r.Get(ref)
		if err != nil {
			return nil, err
		}
		if next == nil {
			return nil, nil
		}
		obj = next
	}
}

func typeMismatch(wanted string, got Object) error {
	return &MalformedFileError{Err: fmt.Errorf("expected %s, got %T", wanted, got)}
}

// GetArray resolves obj and type-asserts the result to Array. A null
// object resolves to a nil Array and no error.
func GetArray(r Getter, obj Object) (Array, error) {
	obj, err := Resolve(r, obj)
	if err != nil || obj == nil {
		return nil, err
	}
	a, ok := obj.(Array)
	if !ok {
		return nil, typeMismatch("array", obj)
	}
	return a, nil
}

// GetBoolean resolves obj and type-asserts the result to Boolean.
func GetBoolean(r Getter, obj Object) (Boolean, error) {
	obj, err := Resolve(r, obj)
	if err != nil || obj == nil {
		return false, err
	}
	b, ok := obj.(Boolean)
	if !ok {
		return false, typeMismatch("boolean", obj)
	}
	return b, nil
}

// GetDict resolves obj and type-asserts the result to Dict. A Stream's
// dictionary is also accepted, matching the PDF convention that a stream
// can be used anywhere its dictionary is expected.
func GetDict(r Getter, obj Object) (Dict, error) {
	obj, err := Resolve(r, obj)
	if err != nil || obj == nil {
		return nil, err
	}
	switch x := obj.(type) {
	case Dict:
		return x, nil
	case *Stream:
		return x.Dict, nil
	default:
		return nil, typeMismatch("dict", obj)
	}
}

// GetDictTyped resolves obj to a Dict and checks that its /Type entry (if
// present) equals wantType. Some producers omit /Type even where the
// spec requires it, so a missing entry is not an error.
func GetDictTyped(r Getter, obj Object, wantType Name) (Dict, error) {
	d, err := GetDict(r, obj)
	if err != nil || d == nil {
		return d, err
	}
	if err := CheckDictType(r, d, wantType); err != nil {
		return nil, err
	}
	return d, nil
}

// CheckDictType reports an error if d has a /Type entry that is present
// and does not equal wantType.
func CheckDictType(r Getter, d Dict, wantType Name) error {
	tp, err := GetName(r, d["Type"])
	if err != nil {
		return err
	}
	if tp != "" && tp != wantType {
		return &MalformedFileError{Err: fmt.Errorf("expected /Type %s, got %s", wantType, tp)}
	}
	return nil
}

// GetInt resolves obj and type-asserts the result to Integer.
func GetInt(r Getter, obj Object) (Integer, error) {
	obj, err := Resolve(r, obj)
	if err != nil || obj == nil {
		return 0, err
	}
	i, ok := obj.(Integer)
	if !ok {
		return 0, typeMismatch("integer", obj)
	}
	return i, nil
}

// GetInteger is an alias for GetInt.
func GetInteger(r Getter, obj Object) (Integer, error) { return GetInt(r, obj) }

// GetName resolves obj and type-asserts the result to Name.
func GetName(r Getter, obj Object) (Name, error) {
	obj, err := Resolve(r, obj)
	if err != nil || obj == nil {
		return "", err
	}
	n, ok := obj.(Name)
	if !ok {
		return "", typeMismatch("name", obj)
	}
	return n, nil
}

// GetReal resolves obj and type-asserts the result to Real.
func GetReal(r Getter, obj Object) (Real, error) {
	obj, err := Resolve(r, obj)
	if err != nil || obj == nil {
		return 0, err
	}
	x, ok := obj.(Real)
	if !ok {
		return 0, typeMismatch("real", obj)
	}
	return x, nil
}

// GetNumber resolves obj and folds Integer or Real into Number.
func GetNumber(r Getter, obj Object) (Number, error) {
	obj, err := Resolve(r, obj)
	if err != nil || obj == nil {
		return 0, err
	}
	switch x := obj.(type) {
	case Integer:
		return Number(x), nil
	case Real:
		return Number(x), nil
	default:
		return 0, typeMismatch("number", obj)
	}
}

// GetFloatArray resolves obj to an Array and every element of it to a
// Number, returning the plain []float64. This is the common shape for
// geometry entries such as /MediaBox, /Matrix and /BBox.
func GetFloatArray(r Getter, obj Object) ([]float64, error) {
	a, err := GetArray(r, obj)
	if err != nil || a == nil {
		return nil, err
	}
	out := make([]float64, len(a))
	for i, elem := range a {
		n, err := GetNumber(r, elem)
		if err != nil {
			return nil, err
		}
		out[i] = float64(n)
	}
	return out, nil
}

// GetString resolves obj and type-asserts the result to String.
func GetString(r Getter, obj Object) (String, error) {
	obj, err := Resolve(r, obj)
	if err != nil || obj == nil {
		return nil, err
	}
	s, ok := obj.(String)
	if !ok {
		return nil, typeMismatch("string", obj)
	}
	return s, nil
}

// GetStream resolves obj and type-asserts the result to *Stream.
func GetStream(r Getter, obj Object) (*Stream, error) {
	obj, err := Resolve(r, obj)
	if err != nil || obj == nil {
		return nil, err
	}
	s, ok := obj.(*Stream)
	if !ok {
		return nil, typeMismatch("stream", obj)
	}
	return s, nil
}
