// Copyright 2024 The pdfcore authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package function

import (
	"bytes"
	"fmt"
	"io"

	pdf "pdfcore.dev/engine"
)

// Read resolves obj to a function dictionary or stream and constructs
// the corresponding Function, dispatching on /FunctionType.
func Read(r pdf.Getter, obj pdf.Object) (Function, error) {
	resolved, err := pdf.Resolve(r, obj)
	if err != nil {
		return nil, err
	}
	if resolved == nil {
		return nil, fmt.Errorf("function: missing function dictionary")
	}

	var dict pdf.Dict
	var stream *pdf.Stream
	switch v := resolved.(type) {
	case pdf.Dict:
		dict = v
	case *pdf.Stream:
		stream = v
		dict = v.Dict
	default:
		return nil, fmt.Errorf("function: expected dictionary or stream, got %T", resolved)
	}

	ft, err := pdf.GetInt(r, dict["FunctionType"])
	if err != nil {
		return nil, err
	}

	domain, err := pdf.GetFloatArray(r, dict["Domain"])
	if err != nil {
		return nil, err
	}
	rng, err := pdf.GetFloatArray(r, dict["Range"])
	if err != nil {
		return nil, err
	}

	switch ft {
	case 0:
		if stream == nil {
			return nil, fmt.Errorf("function: type 0 requires a stream")
		}
		return readType0(r, dict, stream, domain, rng)
	case 2:
		return readType2(r, dict, domain, rng)
	case 3:
		return readType3(r, dict, domain, rng)
	case 4:
		if stream == nil {
			return nil, fmt.Errorf("function: type 4 requires a stream")
		}
		data, err := readStreamBytes(r, stream)
		if err != nil {
			return nil, err
		}
		return &Type4{Domain: domain, Range: rng, Program: string(data)}, nil
	default:
		return nil, fmt.Errorf("function: unsupported /FunctionType %d", ft)
	}
}

func readStreamBytes(r pdf.Getter, s *pdf.Stream) ([]byte, error) {
	raw, err := s.R.Bytes()
	if err != nil {
		return nil, err
	}
	dec, err := pdf.DecodeStream(r, s, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	return io.ReadAll(dec)
}

func readType0(r pdf.Getter, dict pdf.Dict, stream *pdf.Stream, domain, rng []float64) (Function, error) {
	sizeArr, err := pdf.GetArray(r, dict["Size"])
	if err != nil {
		return nil, err
	}
	size := make([]int, len(sizeArr))
	for i, elem := range sizeArr {
		n, err := pdf.GetInt(r, elem)
		if err != nil {
			return nil, err
		}
		size[i] = int(n)
	}

	bps, err := pdf.GetInt(r, dict["BitsPerSample"])
	if err != nil {
		return nil, err
	}
	encode, err := pdf.GetFloatArray(r, dict["Encode"])
	if err != nil {
		return nil, err
	}
	decode, err := pdf.GetFloatArray(r, dict["Decode"])
	if err != nil {
		return nil, err
	}
	order, err := pdf.GetInt(r, dict["Order"])
	if err != nil {
		return nil, err
	}

	data, err := readStreamBytes(r, stream)
	if err != nil {
		return nil, err
	}

	return &Type0{
		Domain:        domain,
		Range:         rng,
		Size:          size,
		BitsPerSample: int(bps),
		Encode:        encode,
		Decode:        decode,
		Samples:       data,
		UseCubic:      order == 3,
	}, nil
}

func readType2(r pdf.Getter, dict pdf.Dict, domain, rng []float64) (Function, error) {
	c0, err := pdf.GetFloatArray(r, dict["C0"])
	if err != nil {
		return nil, err
	}
	c1, err := pdf.GetFloatArray(r, dict["C1"])
	if err != nil {
		return nil, err
	}
	n, err := pdf.GetNumber(r, dict["N"])
	if err != nil {
		return nil, err
	}
	if len(domain) < 2 {
		return nil, fmt.Errorf("function: type 2 requires /Domain")
	}
	return &Type2{
		XMin:  domain[0],
		XMax:  domain[1],
		Range: rng,
		C0:    c0,
		C1:    c1,
		N:     float64(n),
	}, nil
}

func readType3(r pdf.Getter, dict pdf.Dict, domain, rng []float64) (Function, error) {
	fnArr, err := pdf.GetArray(r, dict["Functions"])
	if err != nil {
		return nil, err
	}
	fns := make([]Function, len(fnArr))
	for i, elem := range fnArr {
		fn, err := Read(r, elem)
		if err != nil {
			return nil, err
		}
		fns[i] = fn
	}
	bounds, err := pdf.GetFloatArray(r, dict["Bounds"])
	if err != nil {
		return nil, err
	}
	encode, err := pdf.GetFloatArray(r, dict["Encode"])
	if err != nil {
		return nil, err
	}
	if len(domain) < 2 {
		return nil, fmt.Errorf("function: type 3 requires /Domain")
	}
	return &Type3{
		XMin:      domain[0],
		XMax:      domain[1],
		Range:     rng,
		Functions: fns,
		Bounds:    bounds,
		Encode:    encode,
	}, nil
}
