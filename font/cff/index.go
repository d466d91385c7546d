// Copyright 2024 The pdfcore authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package cff

import (
	"encoding/binary"
	"fmt"
)

// cffIndex is a decoded CFF INDEX structure (TN #5176 section 5): an
// array of variable-length byte strings.
type cffIndex [][]byte

// readIndex reads one INDEX structure starting at pos and returns it
// together with the offset of the byte immediately following it.
func readIndex(data []byte, pos int) (cffIndex, int, error) {
	if pos < 0 || pos+2 > len(data) {
		return nil, 0, fmt.Errorf("offset out of range")
	}
	count := int(binary.BigEndian.Uint16(data[pos:]))
	pos += 2
	if count == 0 {
		return nil, pos, nil
	}
	if pos >= len(data) {
		return nil, 0, fmt.Errorf("truncated index")
	}
	offSize := int(data[pos])
	pos++
	if offSize < 1 || offSize > 4 {
		return nil, 0, fmt.Errorf("invalid offset size %d", offSize)
	}

	offsets := make([]int, count+1)
	for i := range offsets {
		start := pos + i*offSize
		if start+offSize > len(data) {
			return nil, 0, fmt.Errorf("truncated index offsets")
		}
		var v uint32
		for k := 0; k < offSize; k++ {
			v = v<<8 | uint32(data[start+k])
		}
		offsets[i] = int(v)
	}
	pos += (count + 1) * offSize

	dataStart := pos - 1 // offsets are 1-based, relative to the byte before the data block
	out := make(cffIndex, count)
	for i := 0; i < count; i++ {
		lo, hi := dataStart+offsets[i], dataStart+offsets[i+1]
		if lo < 0 || hi > len(data) || lo > hi {
			return nil, 0, fmt.Errorf("invalid index entry %d", i)
		}
		out[i] = data[lo:hi]
	}
	return out, dataStart + offsets[count], nil
}
