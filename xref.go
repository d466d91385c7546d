// Copyright 2024 The pdfcore authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
)

// xrefEntry locates one indirect object, either directly in the file or
// inside a compressed object stream (spec.md section 6, "Compressed
// object streams").
type xrefEntry struct {
	free bool

	// offset is the byte offset of the "N G obj" header, valid when
	// inStream is zero.
	offset int64
	gen    uint16

	// inStream, if nonzero, is the object number of the object stream
	// holding this object, and index is this object's position within
	// it.
	inStream uint32
	index    int
}

// ReaderOptions configures Open.
type ReaderOptions struct {
	// ReadPassword is called to ask for a password when the document is
	// encrypted. It receives the file's ID and the number of previous
	// failed attempts, and should return "" to give up.
	ReadPassword func(id []byte, try int) string
}

// Reader gives lazy, random-access reading of one PDF document: it
// merges every cross-reference section reachable from the trailer
// chain, and resolves indirect objects on demand (spec.md section 4.2).
type Reader struct {
	r    io.ReaderAt
	size int64

	Version Version
	ID      []String
	Trailer Dict

	xref map[uint32]*xrefEntry

	enc   *encryptInfo
	cache *lruCache
}

// Open locates and merges every cross-reference section reachable from
// the file's trailer chain (including hybrid /XRefStm sections and
// compressed object streams) and returns a *Reader ready to resolve
// indirect objects.
func Open(r io.ReaderAt, size int64, opt *ReaderOptions) (*Reader, error) {
	if opt == nil {
		opt = &ReaderOptions{}
	}

	header := make([]byte, 1024)
	n, _ := r.ReadAt(header, 0)
	header = header[:n]
	ver, headerEnd, err := parseHeader(header)
	if err != nil {
		return nil, err
	}

	pdf := &Reader{
		r:       r,
		size:    size,
		Version: ver,
		xref:    make(map[uint32]*xrefEntry),
		cache:   newCache(256),
	}

	startOffset, err := findStartXref(r, size)
	var trailer Dict
	if err == nil {
		trailer, err = pdf.readXRefChain(startOffset)
	}
	if err != nil {
		trailer, err = pdf.recoverByScanning(headerEnd)
		if err != nil {
			return nil, err
		}
	}
	pdf.Trailer = trailer

	if idArr, ok := trailer["ID"].(Array); ok {
		for _, e := range idArr {
			if s, ok := e.(String); ok {
				pdf.ID = append(pdf.ID, s)
			}
		}
	}

	if encObj, ok := trailer["Encrypt"]; ok && encObj != nil {
		var id0 []byte
		if len(pdf.ID) > 0 {
			id0 = []byte(pdf.ID[0])
		}
		enc, err := parseEncryptDict(pdf, encObj, id0, opt.ReadPassword)
		if err != nil {
			return nil, err
		}
		pdf.enc = enc
		// Ensure the key can be derived (possibly prompting for a
		// password) before any object is requested.
		if _, err := enc.sec.GetKey(false); err != nil {
			return nil, err
		}
	}

	return pdf, nil
}

func parseHeader(b []byte) (Version, int, error) {
	const magic = "%PDF-"
	idx := bytes.Index(b, []byte(magic))
	if idx < 0 {
		return 0, 0, &MalformedFileError{Err: errors.New("missing %PDF- header")}
	}
	rest := b[idx+len(magic):]
	end := 0
	for end < len(rest) && rest[end] != '\r' && rest[end] != '\n' {
		end++
	}
	ver, err := ParseVersion(string(rest[:end]))
	if err != nil {
		return 0, 0, err
	}
	return ver, idx + len(magic) + end, nil
}

var startxrefRE = regexp.MustCompile(`startxref\s+(\d+)\s+%%EOF`)

// findStartXref scans backward from the end of the file for the
// "startxref" keyword (spec.md section 6).
func findStartXref(r io.ReaderAt, size int64) (int64, error) {
	tailLen := int64(2048)
	if tailLen > size {
		tailLen = size
	}
	buf := make([]byte, tailLen)
	if _, err := r.ReadAt(buf, size-tailLen); err != nil && err != io.EOF {
		return 0, err
	}
	m := startxrefRE.FindSubmatch(buf)
	if m == nil {
		idx := bytes.LastIndex(buf, []byte("startxref"))
		if idx < 0 {
			return 0, errors.New("startxref not found")
		}
		rest := buf[idx+len("startxref"):]
		rest = bytes.TrimLeft(rest, "\r\n \t")
		end := 0
		for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
			end++
		}
		if end == 0 {
			return 0, errors.New("malformed startxref")
		}
		n, err := strconv.ParseInt(string(rest[:end]), 10, 64)
		return n, err
	}
	n, err := strconv.ParseInt(string(m[1]), 10, 64)
	return n, err
}

// readXRefChain follows the /Prev chain (and hybrid /XRefStm sections)
// starting at the given byte offset, merging entries so that the first
// time an object number is seen wins (spec.md section 6: "Precedence").
func (pdf *Reader) readXRefChain(offset int64) (Dict, error) {
	var trailer Dict
	seen := map[int64]bool{}
	for offset != 0 {
		if seen[offset] {
			break // cyclic /Prev chain; stop rather than loop forever
		}
		seen[offset] = true

		sectionTrailer, prev, xrefStm, err := pdf.readXRefSection(offset)
		if err != nil {
			return nil, err
		}
		if trailer == nil {
			trailer = sectionTrailer
		} else {
			for k, v := range sectionTrailer {
				if _, ok := trailer[k]; !ok {
					trailer[k] = v
				}
			}
		}
		if xrefStm != 0 {
			if _, _, _, err := pdf.readXRefSection(xrefStm); err != nil {
				return nil, err
			}
		}
		offset = prev
	}
	if trailer == nil {
		return nil, errors.New("no cross-reference section found")
	}
	return trailer, nil
}

// readXRefSection reads one cross-reference section, which is either a
// classic "xref" table followed by a trailer dictionary, or a
// cross-reference stream (spec.md section 6).
func (pdf *Reader) readXRefSection(offset int64) (trailer Dict, prev int64, xrefStm int64, err error) {
	chunk, err := pdf.readChunk(offset, 65536)
	if err != nil {
		return nil, 0, 0, err
	}
	s := newScanner(chunk, offset)
	s.skipWhite()
	if s.consumeLiteral("xref") {
		return pdf.readClassicXRefTable(s)
	}
	ref, obj, err := s.ReadIndirectObject()
	if err != nil {
		return nil, 0, 0, err
	}
	ps, ok := obj.(*pendingStream)
	if !ok {
		return nil, 0, 0, fmt.Errorf("xref section at %d is neither a table nor a stream", offset)
	}
	stmObj, err := pdf.materializeStream(ref, ps, offset)
	if err != nil {
		return nil, 0, 0, err
	}
	return pdf.readXRefStream(stmObj)
}

func (pdf *Reader) readClassicXRefTable(s *scanner) (Dict, int64, int64, error) {
	for {
		s.skipWhite()
		if s.consumeLiteral("trailer") {
			break
		}
		startTok, ok := s.readNumberToken()
		if !ok {
			return nil, 0, 0, errors.New("malformed xref subsection header")
		}
		start, err := strconv.ParseInt(startTok, 10, 64)
		if err != nil {
			return nil, 0, 0, err
		}
		s.skipWhite()
		countTok, ok := s.readNumberToken()
		if !ok {
			return nil, 0, 0, errors.New("malformed xref subsection header")
		}
		count, err := strconv.ParseInt(countTok, 10, 64)
		if err != nil {
			return nil, 0, 0, err
		}
		for i := int64(0); i < count; i++ {
			s.skipWhite()
			offTok, _ := s.readNumberToken()
			s.skipWhite()
			genTok, _ := s.readNumberToken()
			s.skipWhite()
			typByte, ok := s.readByte()
			if !ok {
				return nil, 0, 0, errors.New("truncated xref entry")
			}
			num := uint32(start + i)
			if _, known := pdf.xref[num]; known {
				continue
			}
			off, _ := strconv.ParseInt(offTok, 10, 64)
			gen, _ := strconv.ParseInt(genTok, 10, 64)
			pdf.xref[num] = &xrefEntry{
				free:   typByte == 'f',
				offset: off,
				gen:    uint16(gen),
			}
		}
	}

	obj, err := s.ReadObject()
	if err != nil {
		return nil, 0, 0, err
	}
	trailer, ok := obj.(Dict)
	if !ok {
		return nil, 0, 0, errors.New("malformed trailer")
	}

	var prev, xrefStm int64
	if p, ok := trailer["Prev"].(Integer); ok {
		prev = int64(p)
	}
	if p, ok := trailer["XRefStm"].(Integer); ok {
		xrefStm = int64(p)
	}
	return trailer, prev, xrefStm, nil
}

// readXRefStream decodes a cross-reference stream (spec.md section 6,
// "Cross-reference streams"): each entry is W[0]+W[1]+W[2] bytes, field
// 1 selects free/classic/compressed, fields 2-3 are type-dependent.
func (pdf *Reader) readXRefStream(stm *Stream) (Dict, int64, int64, error) {
	wArr, ok := stm.Dict["W"].(Array)
	if !ok || len(wArr) != 3 {
		return nil, 0, 0, errors.New("cross-reference stream missing /W")
	}
	w := make([]int, 3)
	for i, e := range wArr {
		n, ok := e.(Integer)
		if !ok {
			return nil, 0, 0, errors.New("malformed /W entry")
		}
		w[i] = int(n)
	}

	size, _ := stm.Dict["Size"].(Integer)
	var index []int64
	if idxArr, ok := stm.Dict["Index"].(Array); ok {
		for _, e := range idxArr {
			n, ok := e.(Integer)
			if !ok {
				return nil, 0, 0, errors.New("malformed /Index entry")
			}
			index = append(index, int64(n))
		}
	} else {
		index = []int64{0, int64(size)}
	}

	data, err := stm.R.Bytes()
	if err != nil {
		return nil, 0, 0, err
	}

	entryLen := w[0] + w[1] + w[2]
	pos := 0
	for sub := 0; sub+1 < len(index); sub += 2 {
		start, count := index[sub], index[sub+1]
		for i := int64(0); i < count; i++ {
			if pos+entryLen > len(data) {
				return nil, 0, 0, errors.New("truncated cross-reference stream")
			}
			entry := data[pos : pos+entryLen]
			pos += entryLen

			typ := int64(1)
			if w[0] > 0 {
				typ = beUint(entry[:w[0]])
			}
			f2 := beUint(entry[w[0] : w[0]+w[1]])
			f3 := beUint(entry[w[0]+w[1] : entryLen])

			num := uint32(start + i)
			if _, known := pdf.xref[num]; known {
				continue
			}
			switch typ {
			case 0:
				pdf.xref[num] = &xrefEntry{free: true}
			case 1:
				pdf.xref[num] = &xrefEntry{offset: f2, gen: uint16(f3)}
			case 2:
				pdf.xref[num] = &xrefEntry{inStream: uint32(f2), index: int(f3)}
			}
		}
	}

	var prev, xrefStm int64
	if p, ok := stm.Dict["Prev"].(Integer); ok {
		prev = int64(p)
	}
	return stm.Dict, prev, xrefStm, nil
}

func beUint(b []byte) int64 {
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return int64(v)
}

// recoverByScanning is used when the startxref chain is missing or
// broken: it scans the whole file for "N G obj" headers and for a
// trailer dictionary, rebuilding the xref table from scratch (spec.md
// section 6, "Recovery").
func (pdf *Reader) recoverByScanning(from int) (Dict, error) {
	chunkSize := int64(1 << 20)
	objRE := regexp.MustCompile(`(?m)^\s*(\d+)\s+(\d+)\s+obj\b`)
	var trailer Dict

	buf := make([]byte, 0, chunkSize)
	for offset := int64(from); offset < pdf.size; offset += chunkSize {
		n := chunkSize
		if offset+n > pdf.size {
			n = pdf.size - offset
		}
		buf = buf[:n]
		if _, err := pdf.r.ReadAt(buf, offset); err != nil && err != io.EOF {
			return nil, err
		}
		for _, m := range objRE.FindAllSubmatchIndex(buf, -1) {
			numStr := string(buf[m[2]:m[3]])
			genStr := string(buf[m[4]:m[5]])
			num, err1 := strconv.ParseInt(numStr, 10, 64)
			gen, err2 := strconv.ParseInt(genStr, 10, 64)
			if err1 != nil || err2 != nil {
				continue
			}
			pdf.xref[uint32(num)] = &xrefEntry{offset: offset + int64(m[0]), gen: uint16(gen)}
		}
		if idx := bytes.LastIndex(buf, []byte("trailer")); idx >= 0 {
			s := newScanner(buf[idx+len("trailer"):], offset+int64(idx)+int64(len("trailer")))
			if obj, err := s.ReadObject(); err == nil {
				if d, ok := obj.(Dict); ok {
					trailer = d
				}
			}
		}
	}

	if trailer == nil {
		// No trailer keyword found; fall back to looking for a Catalog
		// object directly, as some malformed generators omit it.
		for num, ent := range pdf.xref {
			if ent.free || ent.inStream != 0 {
				continue
			}
			obj, err := pdf.readAt(ent.offset, NewReference(num, ent.gen))
			if err != nil {
				continue
			}
			d, ok := obj.(Dict)
			if !ok {
				continue
			}
			if d["Type"] == Name("Catalog") {
				trailer = Dict{"Root": NewReference(num, ent.gen)}
				break
			}
		}
	}
	if trailer == nil {
		return nil, errors.New("could not recover a trailer by scanning")
	}
	return trailer, nil
}

func (pdf *Reader) readChunk(offset int64, maxLen int64) ([]byte, error) {
	if offset < 0 || offset >= pdf.size {
		return nil, fmt.Errorf("offset %d out of range", offset)
	}
	n := maxLen
	if offset+n > pdf.size {
		n = pdf.size - offset
	}
	buf := make([]byte, n)
	read, err := pdf.r.ReadAt(buf, offset)
	if err != nil && err != io.EOF {
		return nil, err
	}
	return buf[:read], nil
}

func (pdf *Reader) readAt(offset int64, want Reference) (Object, error) {
	chunk, err := pdf.readChunk(offset, 65536)
	if err != nil {
		return nil, err
	}
	s := newScanner(chunk, offset)
	ref, obj, err := s.ReadIndirectObject()
	if err != nil {
		return nil, err
	}
	if ref.Number != want.Number {
		return nil, fmt.Errorf("object at %d has number %d, expected %d", offset, ref.Number, want.Number)
	}
	if ps, ok := obj.(*pendingStream); ok {
		stm, err := pdf.materializeStream(ref, ps, offset)
		if err != nil {
			return nil, err
		}
		if pdf.enc != nil && !pdf.isEncryptDict(ref) {
			if err := pdf.decryptStringsInPlace(ref, stm.Dict); err != nil {
				return nil, err
			}
		}
		return stm, nil
	}
	if pdf.enc != nil && !pdf.isEncryptDict(ref) {
		obj = pdf.decryptStrings(ref, obj)
	}
	return obj, nil
}

// isEncryptDict reports whether ref is the trailer's own /Encrypt
// dictionary, whose O/U/OE/UE strings must never be run through the
// document's own decryption (ISO 32000-1 section 7.6.2).
func (pdf *Reader) isEncryptDict(ref Reference) bool {
	encRef, ok := pdf.Trailer["Encrypt"].(Reference)
	return ok && encRef == ref
}

// decryptStrings walks a freshly parsed direct object and decrypts
// every String leaf in place using ref's per-object key (Algorithm 1).
// Objects read out of a compressed object stream are never passed
// here: their strings were already decrypted once, as part of the
// object stream's own payload.
func (pdf *Reader) decryptStrings(ref Reference, obj Object) Object {
	switch x := obj.(type) {
	case String:
		dec, err := pdf.enc.DecryptBytes(ref, append([]byte(nil), x...))
		if err != nil {
			return x
		}
		return String(dec)
	case Array:
		for i, e := range x {
			x[i] = pdf.decryptStrings(ref, e)
		}
		return x
	case Dict:
		pdf.decryptStringsInPlace(ref, x)
		return x
	default:
		return obj
	}
}

func (pdf *Reader) decryptStringsInPlace(ref Reference, d Dict) error {
	for k, v := range d {
		d[k] = pdf.decryptStrings(ref, v)
	}
	return nil
}

// materializeStream resolves a stream's /Length, slices its raw bytes
// out of the file, and (if the document is encrypted and this is not
// the /Encrypt dictionary's own data) wraps them for on-demand
// decryption.
func (pdf *Reader) materializeStream(ref Reference, ps *pendingStream, objStart int64) (*Stream, error) {
	lengthObj := ps.Dict["Length"]
	var length int64
	switch l := lengthObj.(type) {
	case Integer:
		length = int64(l)
	case Reference:
		n, err := GetInt(pdf, l)
		if err != nil {
			return nil, err
		}
		length = int64(n)
	default:
		return nil, errors.New("stream missing /Length")
	}

	raw := make([]byte, length)
	if _, err := pdf.r.ReadAt(raw, ps.DataStart); err != nil && err != io.EOF {
		return nil, err
	}

	var src StreamSource = bytesSource(raw)
	if pdf.enc != nil && !pdf.isEncryptDict(ref) {
		encryptedRef := ref
		src = &lazyDecryptSource{enc: pdf.enc, ref: encryptedRef, raw: raw}
	}

	return &Stream{Dict: ps.Dict, R: src}, nil
}

// lazyDecryptSource decrypts a stream's raw bytes on first access using
// Algorithm 1 of ISO 32000-1, then caches the plaintext.
type lazyDecryptSource struct {
	enc *encryptInfo
	ref Reference
	raw []byte

	done bool
	dec  []byte
	err  error
}

func (s *lazyDecryptSource) Bytes() ([]byte, error) {
	if !s.done {
		r, err := s.enc.DecryptStream(s.ref, bytes.NewReader(s.raw))
		if err == nil {
			s.dec, s.err = io.ReadAll(r)
		} else {
			s.err = err
		}
		s.done = true
	}
	return s.dec, s.err
}

// Get implements Getter: it resolves one indirect reference, following
// compressed object streams as needed, and caches the result.
func (pdf *Reader) Get(ref Reference) (Object, error) {
	if obj, ok := pdf.cache.Get(ref); ok {
		return obj, nil
	}

	ent, ok := pdf.xref[ref.Number]
	if !ok || ent.free {
		return nil, nil
	}

	var obj Object
	var err error
	if ent.inStream != 0 {
		obj, err = pdf.getFromObjectStream(ent.inStream, ent.index)
	} else {
		obj, err = pdf.readAt(ent.offset, Reference{Number: ref.Number, Generation: ent.gen})
	}
	if err != nil {
		return nil, err
	}
	pdf.cache.Put(ref, obj)
	return obj, nil
}

// getFromObjectStream decodes a compressed object stream (spec.md
// section 6, "Compressed object streams") and returns the object at the
// given index within it. The whole stream is decoded and its objects
// cached together, since object streams are always read as a unit.
func (pdf *Reader) getFromObjectStream(streamNum uint32, index int) (Object, error) {
	stmRef := Reference{Number: streamNum}
	if ent, ok := pdf.xref[streamNum]; ok {
		stmRef.Generation = ent.gen
	}
	stmObj, err := pdf.Get(stmRef)
	if err != nil {
		return nil, err
	}
	stm, ok := stmObj.(*Stream)
	if !ok {
		return nil, fmt.Errorf("object stream %d is not a stream", streamNum)
	}

	n, err := GetInt(pdf, stm.Dict["N"])
	if err != nil {
		return nil, err
	}
	first, err := GetInt(pdf, stm.Dict["First"])
	if err != nil {
		return nil, err
	}

	raw, err := stm.R.Bytes()
	if err != nil {
		return nil, err
	}
	decoded, err := DecodeStream(pdf, stm, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(decoded)
	if err != nil {
		return nil, err
	}

	header := newScanner(data, 0)
	offsets := make([]int64, n)
	nums := make([]uint32, n)
	for i := int64(0); i < int64(n); i++ {
		header.skipWhite()
		numTok, _ := header.readNumberToken()
		num, _ := strconv.ParseInt(numTok, 10, 64)
		header.skipWhite()
		offTok, _ := header.readNumberToken()
		off, _ := strconv.ParseInt(offTok, 10, 64)
		nums[i] = uint32(num)
		offsets[i] = off
	}

	if index < 0 || int64(index) >= int64(n) {
		return nil, fmt.Errorf("object index %d out of range in stream %d", index, streamNum)
	}
	body := newScanner(data[int64(first)+offsets[index]:], 0)
	obj, err := body.ReadObject()
	if err != nil {
		return nil, err
	}

	// Opportunistically cache every object this stream held, since
	// decoding it again would repeat the Flate/LZW pass.
	for i := int64(0); i < int64(n); i++ {
		if i == int64(index) {
			continue
		}
		s2 := newScanner(data[int64(first)+offsets[i]:], 0)
		if o2, err := s2.ReadObject(); err == nil {
			pdf.cache.Put(Reference{Number: nums[i]}, o2)
		}
	}

	return obj, nil
}
