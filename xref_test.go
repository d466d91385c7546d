// Copyright 2024 The pdfcore authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package pdf

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// fileBuilder assembles a small PDF file in memory, tracking the byte
// offset of every indirect object so the test can write a correct
// cross-reference table for it.
type fileBuilder struct {
	buf     bytes.Buffer
	offsets map[uint32]int64
}

func newFileBuilder() *fileBuilder {
	b := &fileBuilder{offsets: make(map[uint32]int64)}
	b.buf.WriteString("%PDF-1.7\n")
	return b
}

func (b *fileBuilder) add(num uint32, body string) {
	b.offsets[num] = int64(b.buf.Len())
	fmt.Fprintf(&b.buf, "%d 0 obj\n%s\nendobj\n", num, body)
}

func (b *fileBuilder) addRaw(num uint32, raw string) {
	b.offsets[num] = int64(b.buf.Len())
	b.buf.WriteString(raw)
}

// classicXref writes an "xref" table covering objects 0..maxNum plus
// the trailer and startxref, and returns the finished file.
func (b *fileBuilder) classicXref(maxNum uint32, trailer string) []byte {
	xrefOff := b.buf.Len()
	fmt.Fprintf(&b.buf, "xref\n0 %d\n", maxNum+1)
	b.buf.WriteString("0000000000 65535 f \n")
	for num := uint32(1); num <= maxNum; num++ {
		fmt.Fprintf(&b.buf, "%010d 00000 n \n", b.offsets[num])
	}
	fmt.Fprintf(&b.buf, "trailer\n%s\nstartxref\n%d\n%%%%EOF\n", trailer, xrefOff)
	return b.buf.Bytes()
}

func openFile(t *testing.T, data []byte) *Reader {
	t.Helper()
	r, err := Open(bytes.NewReader(data), int64(len(data)), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return r
}

func TestClassicXrefTable(t *testing.T) {
	b := newFileBuilder()
	b.add(1, "<< /Type /Catalog /Pages 2 0 R >>")
	b.add(2, "<< /Type /Pages /Kids [] /Count 0 >>")
	data := b.classicXref(2, "<< /Size 3 /Root 1 0 R >>")

	r := openFile(t, data)

	catalog, err := GetDict(r, NewReference(1, 0))
	if err != nil {
		t.Fatalf("Get catalog: %v", err)
	}
	if catalog["Type"] != Name("Catalog") {
		t.Errorf("catalog Type = %v", catalog["Type"])
	}
	if root, ok := r.Trailer["Root"].(Reference); !ok || root != NewReference(1, 0) {
		t.Errorf("trailer Root = %v", r.Trailer["Root"])
	}
}

// A reference with no xref entry resolves to nil, never an error
// (spec.md section 4.2 "Policy").
func TestMissingObjectResolvesToNull(t *testing.T) {
	b := newFileBuilder()
	b.add(1, "<< /Type /Catalog >>")
	data := b.classicXref(1, "<< /Size 2 /Root 1 0 R >>")

	r := openFile(t, data)
	obj, err := r.Get(NewReference(99, 0))
	if err != nil {
		t.Fatalf("Get(99 0 R): %v", err)
	}
	if obj != nil {
		t.Errorf("Get(99 0 R) = %v, want nil", obj)
	}
}

// A chain of references resolves to the final direct object; a
// reference cycle terminates with an error rather than looping.
func TestReferenceChainAndCycle(t *testing.T) {
	b := newFileBuilder()
	b.add(1, "<< /Type /Catalog >>")
	b.add(2, "3 0 R")
	b.add(3, "42")
	b.add(4, "5 0 R")
	b.add(5, "4 0 R")
	data := b.classicXref(5, "<< /Size 6 /Root 1 0 R >>")

	r := openFile(t, data)

	obj, err := Resolve(r, NewReference(2, 0))
	if err != nil {
		t.Fatalf("Resolve chain: %v", err)
	}
	if obj != Integer(42) {
		t.Errorf("Resolve chain = %v, want 42", obj)
	}

	if _, err := Resolve(r, NewReference(4, 0)); err == nil {
		t.Error("Resolve of a reference cycle succeeded, want error")
	}
}

// A stream's /Length may itself be an indirect reference (spec.md 4.1,
// "which may itself be an indirect reference requiring resolution").
func TestIndirectStreamLength(t *testing.T) {
	b := newFileBuilder()
	b.add(1, "<< /Type /Catalog >>")
	b.addRaw(2, "2 0 obj\n<< /Length 3 0 R >>\nstream\nhello world\nendstream\nendobj\n")
	b.add(3, "11")
	data := b.classicXref(3, "<< /Size 4 /Root 1 0 R >>")

	r := openFile(t, data)
	stm, err := GetStream(r, NewReference(2, 0))
	if err != nil {
		t.Fatalf("GetStream: %v", err)
	}
	raw, err := stm.R.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != "hello world" {
		t.Errorf("stream payload = %q, want %q", raw, "hello world")
	}
}

// buildXrefStreamFile assembles a file whose cross-reference section is
// a cross-reference stream with W=[1 3 1] (spec.md section 8,
// scenario 4).
func buildXrefStreamFile(t *testing.T, entries map[uint32][3]int64, maxNum uint32, xrefNum uint32, body func(b *fileBuilder)) []byte {
	t.Helper()
	b := newFileBuilder()
	body(b)

	xrefOff := int64(b.buf.Len())
	b.offsets[xrefNum] = xrefOff
	entries[xrefNum] = [3]int64{1, xrefOff, 0}

	var payload bytes.Buffer
	for num := uint32(0); num <= maxNum; num++ {
		e, ok := entries[num]
		if !ok {
			e = [3]int64{0, 0, 0} // free
		}
		payload.WriteByte(byte(e[0]))
		payload.WriteByte(byte(e[1] >> 16))
		payload.WriteByte(byte(e[1] >> 8))
		payload.WriteByte(byte(e[1]))
		payload.WriteByte(byte(e[2]))
	}

	fmt.Fprintf(&b.buf,
		"%d 0 obj\n<< /Type /XRef /W [1 3 1] /Size %d /Root 1 0 R /Length %d >>\nstream\n",
		xrefNum, maxNum+1, payload.Len())
	b.buf.Write(payload.Bytes())
	b.buf.WriteString("\nendstream\nendobj\n")
	fmt.Fprintf(&b.buf, "startxref\n%d\n%%%%EOF\n", xrefOff)
	return b.buf.Bytes()
}

func TestXrefStream(t *testing.T) {
	entries := map[uint32][3]int64{}
	data := buildXrefStreamFile(t, entries, 2, 2, func(b *fileBuilder) {
		b.add(1, "<< /Type /Catalog /Count 7 >>")
		entries[1] = [3]int64{1, b.offsets[1], 0}
	})

	r := openFile(t, data)
	catalog, err := GetDict(r, NewReference(1, 0))
	if err != nil {
		t.Fatalf("Get catalog: %v", err)
	}
	want := Dict{"Type": Name("Catalog"), "Count": Integer(7)}
	if d := cmp.Diff(want, catalog); d != "" {
		t.Errorf("catalog mismatch (-want +got):\n%s", d)
	}
}

// A catalog stored inside a compressed object stream resolves
// identically to one stored as a plain indirect object (spec.md
// section 8, scenario 6).
func TestCompressedObjectStream(t *testing.T) {
	entries := map[uint32][3]int64{}
	data := buildXrefStreamFile(t, entries, 3, 3, func(b *fileBuilder) {
		// Object 1 lives at index 0 of object stream 2. The stream
		// payload is "1 0 " (the N pairs header) followed by the
		// object itself at /First.
		payload := "1 0 << /Type /Catalog /Marker (in-stream) >>"
		b.addRaw(2, fmt.Sprintf(
			"2 0 obj\n<< /Type /ObjStm /N 1 /First 4 /Length %d >>\nstream\n%s\nendstream\nendobj\n",
			len(payload), payload))
		entries[1] = [3]int64{2, 2, 0} // type 2: in stream 2, index 0
		entries[2] = [3]int64{1, b.offsets[2], 0}
	})

	r := openFile(t, data)
	catalog, err := GetDict(r, NewReference(1, 0))
	if err != nil {
		t.Fatalf("Get compressed catalog: %v", err)
	}
	if catalog["Type"] != Name("Catalog") {
		t.Errorf("catalog Type = %v", catalog["Type"])
	}
	if string(catalog["Marker"].(String)) != "in-stream" {
		t.Errorf("catalog Marker = %v", catalog["Marker"])
	}
}

// A file whose startxref is missing entirely is still opened via the
// recovery scan for "N G obj" headers (spec.md section 6).
func TestRecoveryScan(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	buf.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")
	buf.WriteString("2 0 obj\n<< /Type /Pages /Kids [] /Count 0 >>\nendobj\n")
	buf.WriteString("trailer\n<< /Size 3 /Root 1 0 R >>\n")
	data := buf.Bytes()

	r := openFile(t, data)
	catalog, err := GetDict(r, NewReference(1, 0))
	if err != nil {
		t.Fatalf("Get catalog after recovery: %v", err)
	}
	if catalog["Type"] != Name("Catalog") {
		t.Errorf("catalog Type = %v", catalog["Type"])
	}
}

// Later sections shadow earlier ones for the same object number: the
// section nearest the trailer wins (spec.md section 4.2 "Merging").
func TestPrevChainShadowing(t *testing.T) {
	b := newFileBuilder()
	b.add(1, "<< /Type /Catalog /Version (old) >>")

	// old xref section covering the original object 1
	oldXref := b.buf.Len()
	fmt.Fprintf(&b.buf, "xref\n0 2\n0000000000 65535 f \n%010d 00000 n \n", b.offsets[1])
	fmt.Fprintf(&b.buf, "trailer\n<< /Size 2 /Root 1 0 R >>\n")

	// updated object 1 plus an update section pointing back via /Prev
	b.add(1, "<< /Type /Catalog /Version (new) >>")
	newXref := b.buf.Len()
	fmt.Fprintf(&b.buf, "xref\n1 1\n%010d 00000 n \n", b.offsets[1])
	fmt.Fprintf(&b.buf, "trailer\n<< /Size 2 /Root 1 0 R /Prev %d >>\n", oldXref)
	fmt.Fprintf(&b.buf, "startxref\n%d\n%%%%EOF\n", newXref)

	r := openFile(t, b.buf.Bytes())
	catalog, err := GetDict(r, NewReference(1, 0))
	if err != nil {
		t.Fatalf("Get catalog: %v", err)
	}
	if string(catalog["Version"].(String)) != "new" {
		t.Errorf("catalog Version = %v, want the updated object", catalog["Version"])
	}
}
