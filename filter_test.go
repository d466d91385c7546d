package pdf

import (
	"bytes"
	"compress/zlib"
	"encoding/ascii85"
	"encoding/hex"
	"io"
	"testing"
)

func TestFlateDecodeNoPredictor(t *testing.T) {
	want := "Hello, World! This is a test of FlateDecode.\n"
	buf := &bytes.Buffer{}
	zw := zlib.NewWriter(buf)
	if _, err := zw.Write([]byte(want)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	ff := ffFromDict(nil)
	r, err := ff.Decode(buf)
	if err != nil {
		t.Fatal(err)
	}
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFlateDecodePNGPredictor(t *testing.T) {
	const columns = 4
	rows := [][]byte{
		{10, 20, 30, 40},
		{11, 19, 33, 41},
		{12, 18, 36, 42},
	}

	// apply the Sub filter by hand, matching the PDF /Predictor 11 scheme.
	var filtered bytes.Buffer
	for _, row := range rows {
		filtered.WriteByte(1) // Sub
		out := make([]byte, len(row))
		for i, b := range row {
			var left byte
			if i > 0 {
				left = row[i-1]
			}
			out[i] = b - left
		}
		filtered.Write(out)
	}

	buf := &bytes.Buffer{}
	zw := zlib.NewWriter(buf)
	if _, err := zw.Write(filtered.Bytes()); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	ff := ffFromDict(Dict{
		"Predictor": Integer(11),
		"Colors":    Integer(1),
		"Columns":   Integer(columns),
	})
	r, err := ff.Decode(buf)
	if err != nil {
		t.Fatal(err)
	}
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	var want bytes.Buffer
	for _, row := range rows {
		want.Write(row)
	}
	if !bytes.Equal(got, want.Bytes()) {
		t.Errorf("got %v, want %v", got, want.Bytes())
	}
}

func TestUnfilterPNGRow(t *testing.T) {
	prev := []byte{10, 20, 30, 40}
	cur := make([]byte, 4)
	copy(cur, []byte{5, 5, 5, 5})
	if err := unfilterPNGRow(2, cur, prev, 1); err != nil { // Up
		t.Fatal(err)
	}
	want := []byte{15, 25, 35, 45}
	if !bytes.Equal(cur, want) {
		t.Errorf("Up: got %v, want %v", cur, want)
	}
}

func TestASCIIHexDecode(t *testing.T) {
	want := []byte("The quick brown fox.")
	enc := hex.EncodeToString(want) + ">"

	f := asciiHexFilter{}
	r, err := f.Decode(bytes.NewReader([]byte(enc)))
	if err != nil {
		t.Fatal(err)
	}
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestASCII85Decode(t *testing.T) {
	want := []byte("The quick brown fox jumps over the lazy dog.")
	var buf bytes.Buffer
	w := ascii85.NewEncoder(&buf)
	if _, err := w.Write(want); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	buf.WriteString("~>")

	f := ascii85Filter{}
	r, err := f.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRunLengthDecode(t *testing.T) {
	// 3 literal bytes "abc", then 4 repeats of 'x', then EOD.
	enc := []byte{2, 'a', 'b', 'c', 256 - 4 + 1, 'x', 128}
	f := runLengthFilter{}
	r, err := f.Decode(bytes.NewReader(enc))
	if err != nil {
		t.Fatal(err)
	}
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte("abcxxxx")
	if !bytes.Equal(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestGetFilters(t *testing.T) {
	dict := Dict{
		"Filter":      Array{Name("ASCII85Decode"), Name("FlateDecode")},
		"DecodeParms": Array{nil, Dict{"Predictor": Integer(12), "Columns": Integer(3)}},
	}
	filters, err := GetFilters(nil, dict)
	if err != nil {
		t.Fatal(err)
	}
	if len(filters) != 2 {
		t.Fatalf("got %d filters, want 2", len(filters))
	}
	if filters[0].Name != "ASCII85Decode" || filters[0].Parms != nil {
		t.Errorf("filter 0: got %+v", filters[0])
	}
	if filters[1].Name != "FlateDecode" || filters[1].Parms["Predictor"] != Integer(12) {
		t.Errorf("filter 1: got %+v", filters[1])
	}
}

func TestGetFiltersSingle(t *testing.T) {
	dict := Dict{
		"Filter":      Name("FlateDecode"),
		"DecodeParms": Dict{"Predictor": Integer(1)},
	}
	filters, err := GetFilters(nil, dict)
	if err != nil {
		t.Fatal(err)
	}
	if len(filters) != 1 || filters[0].Name != "FlateDecode" {
		t.Errorf("got %+v", filters)
	}
}

func TestUnsupportedFilter(t *testing.T) {
	fi := &FilterInfo{Name: "JBIG2Decode"}
	f, err := fi.getFilter()
	if err != nil {
		t.Fatal(err)
	}
	_, err = f.Decode(bytes.NewReader(nil))
	if err == nil {
		t.Fatal("expected error for unsupported filter")
	}
}
