// Copyright 2024 The pdfcore authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package reader

import (
	"bytes"
	"fmt"
	"math"
	"testing"

	pdf "pdfcore.dev/engine"
	"pdfcore.dev/engine/geom"
	"pdfcore.dev/engine/scene"
)

// buildSinglePageFile assembles a complete one-page PDF whose page
// content stream is the given operator sequence, with a classic xref
// table and a [0 0 612 792] media box.
func buildSinglePageFile(content string) []byte {
	var buf bytes.Buffer
	offsets := make(map[int]int)
	add := func(num int, body string) {
		offsets[num] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", num, body)
	}

	buf.WriteString("%PDF-1.7\n")
	add(1, "<< /Type /Catalog /Pages 2 0 R >>")
	add(2, "<< /Type /Pages /Kids [3 0 R] /Count 1 /MediaBox [0 0 612 792] >>")
	add(3, "<< /Type /Page /Parent 2 0 R /Contents 4 0 R >>")
	add(4, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))

	xrefOff := buf.Len()
	buf.WriteString("xref\n0 5\n0000000000 65535 f \n")
	for num := 1; num <= 4; num++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[num])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size 5 /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", xrefOff)
	return buf.Bytes()
}

func renderSinglePage(t *testing.T, content string) (*scene.Scene, PageGeometry) {
	t.Helper()
	data := buildSinglePageFile(content)
	r, err := pdf.Open(bytes.NewReader(data), int64(len(data)), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	sc, geo, err := RenderDocumentPage(r, r.Trailer, 0, nil)
	if err != nil {
		t.Fatalf("RenderDocumentPage: %v", err)
	}
	return sc, geo
}

func ptNear(a, b geom.Point) bool {
	return math.Abs(a.X-b.X) < 1e-9 && math.Abs(a.Y-b.Y) < 1e-9
}

// An empty content stream produces an empty scene sized by the media
// box.
func TestEndToEndEmptyDocument(t *testing.T) {
	sc, geo := renderSinglePage(t, "")
	if len(sc.Items) != 0 {
		t.Errorf("len(Items) = %d, want 0", len(sc.Items))
	}
	if geo.Width != 612 || geo.Height != 792 {
		t.Errorf("geometry = %dx%d, want 612x792", geo.Width, geo.Height)
	}
}

// "1 w 100 100 m 200 200 l S" produces exactly one stroked Renderable:
// a one-subpath line whose endpoints land at the Y-flipped device
// positions of (100,100) and (200,200).
func TestEndToEndSingleLine(t *testing.T) {
	sc, _ := renderSinglePage(t, "1 w 100 100 m 200 200 l S")
	if len(sc.Items) != 1 {
		t.Fatalf("len(Items) = %d, want 1", len(sc.Items))
	}
	item := sc.Items[0]
	if item.Kind != scene.KindStroke {
		t.Fatalf("Kind = %v, want KindStroke", item.Kind)
	}
	if item.Stroke.Width != 1 {
		t.Errorf("stroke width = %v, want 1", item.Stroke.Width)
	}
	r, g, b, a := item.Color.RGBA()
	if r != 0 || g != 0 || b != 0 || a != 0xffff {
		t.Errorf("stroke colour = %x %x %x %x, want opaque black", r, g, b, a)
	}

	if len(item.Path.Subpaths) != 1 {
		t.Fatalf("len(Subpaths) = %d, want 1", len(item.Path.Subpaths))
	}
	sp := item.Path.Subpaths[0]
	if !ptNear(sp.Start, geom.Point{X: 100, Y: 692}) {
		t.Errorf("start = %+v, want (100,692)", sp.Start)
	}
	if len(sp.Segments) != 1 || !ptNear(sp.Segments[0].To, geom.Point{X: 200, Y: 592}) {
		t.Errorf("segments = %+v, want one line to (200,592)", sp.Segments)
	}
}

// "q ... cm ... re f Q ... m ... l S" fills a translated square, then
// strokes a line with the pre-q CTM restored.
func TestEndToEndSaveRestore(t *testing.T) {
	sc, _ := renderSinglePage(t, "q 1 0 0 1 50 50 cm 0 0 100 100 re f Q 10 10 m 20 20 l S")
	if len(sc.Items) != 2 {
		t.Fatalf("len(Items) = %d, want 2", len(sc.Items))
	}

	fill := sc.Items[0]
	if fill.Kind != scene.KindFill {
		t.Fatalf("Items[0].Kind = %v, want KindFill", fill.Kind)
	}
	bounds := fill.Path.Bounds()
	// user-space square (50,50)-(150,150), flipped into device space
	if !ptNear(bounds.Min, geom.Point{X: 50, Y: 792 - 150}) ||
		!ptNear(bounds.Max, geom.Point{X: 150, Y: 792 - 50}) {
		t.Errorf("fill bounds = %+v, want (50,642)-(150,742)", bounds)
	}

	stroke := sc.Items[1]
	if stroke.Kind != scene.KindStroke {
		t.Fatalf("Items[1].Kind = %v, want KindStroke", stroke.Kind)
	}
	sp := stroke.Path.Subpaths[0]
	if !ptNear(sp.Start, geom.Point{X: 10, Y: 782}) || !ptNear(sp.Segments[0].To, geom.Point{X: 20, Y: 772}) {
		t.Errorf("stroke path = %+v to %+v, want (10,782)-(20,772)", sp.Start, sp.Segments[0].To)
	}
}

// Inherited attributes: the media box declared on the /Pages node
// applies to the leaf page.
func TestEndToEndInheritedMediaBox(t *testing.T) {
	_, geo := renderSinglePage(t, "")
	if geo.Width != 612 || geo.Height != 792 {
		t.Errorf("inherited MediaBox geometry = %dx%d, want 612x792", geo.Width, geo.Height)
	}
}
