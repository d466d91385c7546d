// Copyright 2024 The pdfcore authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package reader

import (
	"math"
	"strings"
	"testing"

	pdf "pdfcore.dev/engine"
	"pdfcore.dev/engine/color"
	"pdfcore.dev/engine/font"
	"pdfcore.dev/engine/geom"
	"pdfcore.dev/engine/scene"
)

type nullGetter struct{}

func (nullGetter) Get(pdf.Reference) (pdf.Object, error) { return nil, nil }

func newTestReader() *Reader {
	rd := New(nullGetter{}, nil)
	rd.State = newState(geom.Identity)
	return rd
}

func run(t *testing.T, rd *Reader, content string) {
	t.Helper()
	if err := rd.Run(strings.NewReader(content)); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

// q/Q must restore the entire graphics state, including colour and CTM,
// exactly as it was when pushed.
func TestQQRestoresState(t *testing.T) {
	rd := newTestReader()
	run(t, rd, "1 0 0 1 10 20 cm 1 0 0 rg q 2 0 0 2 0 0 cm 0 1 0 rg Q")

	want := geom.NewMatrix(1, 0, 0, 1, 10, 20)
	if rd.State.CTM != want {
		t.Errorf("CTM after Q: got %+v, want %+v", rd.State.CTM, want)
	}
	gotR, gotG, gotB, _ := rd.State.FillColor.RGBA()
	wantR, wantG, wantB, _ := color.RGB(1, 0, 0).RGBA()
	if gotR != wantR || gotG != wantG || gotB != wantB {
		t.Errorf("FillColor after Q: got (%d,%d,%d), want (%d,%d,%d)", gotR, gotG, gotB, wantR, wantG, wantB)
	}
}

// An unbalanced Q (more Q than q) must not panic or underflow the stack.
func TestUnbalancedQIsHarmless(t *testing.T) {
	rd := newTestReader()
	run(t, rd, "Q Q q 1 0 0 1 5 5 cm Q")
	if rd.State.CTM != geom.Identity {
		t.Errorf("CTM after unbalanced Q sequence: got %+v, want identity", rd.State.CTM)
	}
}

// BT resets Tm/Tlm to identity regardless of the CTM or any prior text
// matrix, and does not disturb the CTM itself.
func TestBTResetsTextMatrix(t *testing.T) {
	rd := newTestReader()
	run(t, rd, "2 0 0 2 100 200 cm BT 3 0 0 3 9 9 Tm 1 0 0 1 1 1 Td ET BT 1 0 0 1 0 0 Td")

	if rd.State.Text.Matrix != geom.Identity {
		t.Errorf("Tm after BT: got %+v, want identity", rd.State.Text.Matrix)
	}
	wantCTM := geom.NewMatrix(2, 0, 0, 2, 100, 200)
	if rd.State.CTM != wantCTM {
		t.Errorf("CTM disturbed by BT/Td: got %+v, want %+v", rd.State.CTM, wantCTM)
	}
}

// cm composes by pre-multiplying into the CTM: "apply the old CTM after
// the new matrix", matching the PDF operator semantics.
func TestCmComposesInOrder(t *testing.T) {
	rd := newTestReader()
	run(t, rd, "2 0 0 2 0 0 cm 1 0 0 1 10 0 cm")

	want := geom.NewMatrix(1, 0, 0, 1, 10, 0).Mul(geom.NewMatrix(2, 0, 0, 2, 0, 0))
	if rd.State.CTM != want {
		t.Errorf("CTM: got %+v, want %+v", rd.State.CTM, want)
	}
}

// f paints a fill using exactly the current non-stroking colour, and S a
// stroke using exactly the current stroking colour; neither touches the
// other's Renderable.
func TestFillAndStrokeUseCurrentColors(t *testing.T) {
	rd := newTestReader()
	run(t, rd, "1 0 0 rg 0 0 1 RG 0 0 100 100 re f 0 0 100 100 re S")

	if len(rd.Scene.Items) != 2 {
		t.Fatalf("len(Items): got %d, want 2", len(rd.Scene.Items))
	}
	fillItem := rd.Scene.Items[0]
	if fillItem.Kind != scene.KindFill {
		t.Fatalf("Items[0].Kind: got %v, want KindFill", fillItem.Kind)
	}
	r, g, b, _ := fillItem.Color.RGBA()
	wr, wg, wb, _ := color.RGB(1, 0, 0).RGBA()
	if r != wr || g != wg || b != wb {
		t.Errorf("fill colour: got (%d,%d,%d), want (%d,%d,%d)", r, g, b, wr, wg, wb)
	}

	strokeItem := rd.Scene.Items[1]
	if strokeItem.Kind != scene.KindStroke {
		t.Fatalf("Items[1].Kind: got %v, want KindStroke", strokeItem.Kind)
	}
	r, g, b, _ = strokeItem.Color.RGBA()
	wr, wg, wb, _ = color.RGB(0, 0, 1).RGBA()
	if r != wr || g != wg || b != wb {
		t.Errorf("stroke colour: got (%d,%d,%d), want (%d,%d,%d)", r, g, b, wr, wg, wb)
	}
}

// B fills and strokes a single path using the fill and stroke colours
// active at the time, emitting both Renderables in paint order.
func TestFillStrokeOperator(t *testing.T) {
	rd := newTestReader()
	run(t, rd, "1 0 0 rg 0 1 0 RG 0 0 10 10 re B")

	if len(rd.Scene.Items) != 2 {
		t.Fatalf("len(Items): got %d, want 2", len(rd.Scene.Items))
	}
	if rd.Scene.Items[0].Kind != scene.KindFillStroke {
		t.Errorf("Items[0].Kind: got %v, want KindFillStroke", rd.Scene.Items[0].Kind)
	}
	if rd.Scene.Items[1].Kind != scene.KindStroke {
		t.Errorf("Items[1].Kind: got %v, want KindStroke", rd.Scene.Items[1].Kind)
	}
}

// n ends a path without painting it, but still commits a pending clip.
func TestNOperatorCommitsClipWithoutPainting(t *testing.T) {
	rd := newTestReader()
	run(t, rd, "0 0 50 50 re W n")

	if len(rd.Scene.Items) != 0 {
		t.Fatalf("len(Items): got %d, want 0", len(rd.Scene.Items))
	}
	if len(rd.State.Clips) != 1 {
		t.Fatalf("len(Clips): got %d, want 1", len(rd.State.Clips))
	}
	if rd.State.Clips[0].Rule != scene.NonZero {
		t.Errorf("Clips[0].Rule: got %v, want NonZero", rd.State.Clips[0].Rule)
	}
}

// A clip pushed inside a q/Q scope does not leak into the surrounding
// state once popped.
func TestClipScopedByQQ(t *testing.T) {
	rd := newTestReader()
	run(t, rd, "q 0 0 10 10 re W n Q 0 0 20 20 re f")

	if len(rd.State.Clips) != 0 {
		t.Fatalf("len(Clips) after Q: got %d, want 0", len(rd.State.Clips))
	}
	if len(rd.Scene.Items[0].Clips) != 0 {
		t.Errorf("fill's Clips: got %d entries, want 0", len(rd.Scene.Items[0].Clips))
	}
}

// gs applies /ca and /CA from an ExtGState resource onto the fill/stroke
// alpha.
func TestExtGStateAlpha(t *testing.T) {
	rd := newTestReader()
	rd.Resources = pdf.Dict{
		"ExtGState": pdf.Dict{
			"GS1": pdf.Dict{"ca": pdf.Real(0.5), "CA": pdf.Real(0.25)},
		},
	}
	run(t, rd, "/GS1 gs")

	if rd.State.FillAlpha != 0.5 {
		t.Errorf("FillAlpha: got %v, want 0.5", rd.State.FillAlpha)
	}
	if rd.State.StrokeAlpha != 0.25 {
		t.Errorf("StrokeAlpha: got %v, want 0.25", rd.State.StrokeAlpha)
	}
}

// TJ's numeric adjustments translate the text matrix by -(adj/1000) *
// size * Tz, independent of any glyph shown (no font is loaded here).
func TestTJAdjustsTextMatrix(t *testing.T) {
	rd := newTestReader()
	run(t, rd, "BT /F1 12 Tf [100] TJ ET")

	want := geom.Translate(-(100.0/1000)*12, 0)
	if rd.State.Text.Matrix != want {
		t.Errorf("Tm after TJ adjustment: got %+v, want %+v", rd.State.Text.Matrix, want)
	}
}

// An unrecognised operator between BX and EX is ignored rather than
// reported; outside a compatibility section it is reported to OnWarning.
func TestCompatibilitySectionSuppressesWarnings(t *testing.T) {
	var warnings []error
	rd := New(nullGetter{}, &Options{OnWarning: func(err error) { warnings = append(warnings, err) }})
	rd.State = newState(geom.Identity)
	run(t, rd, "BX 1 2 3 nonsense EX")
	if len(warnings) != 0 {
		t.Errorf("warnings inside BX/EX: got %v, want none", warnings)
	}

	warnings = nil
	run(t, rd, "1 2 3 nonsense")
	if len(warnings) != 1 {
		t.Errorf("warnings outside BX/EX: got %d, want 1", len(warnings))
	}
}

// stubFont is a minimal Font with a fixed advance and an optional
// outline, for exercising the text-showing machinery without a real
// font program.
type stubFont struct {
	advance float64
	path    *geom.Path
}

func (f stubFont) Glyph(uint32) (*font.Glyph, bool) {
	return &font.Glyph{Path: f.path, Advance: f.advance}, true
}
func (stubFont) CodeLength(pdf.String) int { return 1 }
func (stubFont) IsType3() bool             { return false }

func stubGlyphOutline() *geom.Path {
	var p geom.Path
	p.Rectangle(0, 0, 500, 700) // glyph space, 1000 units/em
	return &p
}

// The text rendering mode selects which paint operations a shown glyph
// emits: fill, stroke, both, or none.
func TestTextRenderModes(t *testing.T) {
	cases := []struct {
		mode      int
		wantKinds []scene.Kind
	}{
		{0, []scene.Kind{scene.KindGlyph}},
		{1, []scene.Kind{scene.KindStroke}},
		{2, []scene.Kind{scene.KindFillStroke, scene.KindStroke}},
		{3, nil},
		{4, []scene.Kind{scene.KindGlyph}},
		{5, []scene.Kind{scene.KindStroke}},
		{6, []scene.Kind{scene.KindFillStroke, scene.KindStroke}},
		{7, nil},
	}
	for _, c := range cases {
		rd := newTestReader()
		rd.State.Text.Font = stubFont{advance: 500, path: stubGlyphOutline()}
		rd.State.Text.FontSize = 10
		rd.State.Text.RenderMode = c.mode
		rd.State.FillColor = color.RGB(1, 0, 0)
		rd.State.StrokeColor = color.RGB(0, 0, 1)
		rd.showText(pdf.String("A"))

		if len(rd.Scene.Items) != len(c.wantKinds) {
			t.Errorf("mode %d: got %d items, want %d", c.mode, len(rd.Scene.Items), len(c.wantKinds))
			continue
		}
		for i, want := range c.wantKinds {
			if rd.Scene.Items[i].Kind != want {
				t.Errorf("mode %d: Items[%d].Kind = %v, want %v", c.mode, i, rd.Scene.Items[i].Kind, want)
			}
		}
		if c.mode == 1 {
			r, g, b, _ := rd.Scene.Items[0].Color.RGBA()
			wr, wg, wb, _ := color.RGB(0, 0, 1).RGBA()
			if r != wr || g != wg || b != wb {
				t.Errorf("mode 1 stroke colour = (%d,%d,%d), want the stroking colour", r, g, b)
			}
		}
	}
}

// Glyphs shown in modes 4-7 accumulate into a text clip that ET
// intersects into the graphics state.
func TestTextClipCommittedAtET(t *testing.T) {
	rd := newTestReader()
	rd.State.Text.Font = stubFont{advance: 500, path: stubGlyphOutline()}
	rd.State.Text.FontSize = 10
	rd.State.Text.RenderMode = 7
	rd.showText(pdf.String("AB"))

	if len(rd.Scene.Items) != 0 {
		t.Fatalf("mode 7 painted %d items, want 0", len(rd.Scene.Items))
	}
	if len(rd.State.Clips) != 0 {
		t.Fatalf("clip committed before ET")
	}

	run(t, rd, "ET")
	if len(rd.State.Clips) != 1 {
		t.Fatalf("len(Clips) after ET = %d, want 1", len(rd.State.Clips))
	}
	clip := rd.State.Clips[0]
	if clip.Rule != scene.NonZero {
		t.Errorf("clip rule = %v, want NonZero", clip.Rule)
	}
	// two glyph rectangles accumulated into one union path
	if len(clip.Path.Subpaths) != 2 {
		t.Errorf("clip has %d subpaths, want 2", len(clip.Path.Subpaths))
	}
}

// Showing one glyph advances Tm along x by width*size (width in
// thousandths of an em), scaled by the horizontal scale.
func TestShowTextAdvance(t *testing.T) {
	rd := newTestReader()
	rd.State.Text.Font = stubFont{advance: 722}
	rd.State.Text.FontSize = 12
	rd.showText(pdf.String("A"))

	got := rd.State.Text.Matrix.E
	want := 12 * 0.722
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("Tm x-advance = %v, want %v", got, want)
	}
}

// Word spacing applies only to single-byte code 32.
func TestWordSpacingAppliesToSpace(t *testing.T) {
	rd := newTestReader()
	rd.State.Text.Font = stubFont{advance: 500}
	rd.State.Text.FontSize = 10
	rd.State.Text.WordSpacing = 2
	rd.showText(pdf.String(" "))

	got := rd.State.Text.Matrix.E
	want := 10*0.5 + 2
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("Tm x-advance = %v, want %v", got, want)
	}
}

// Page geometry: an unrotated page's CTM flips the PDF's bottom-left
// origin to the top-left device origin and leaves width/height alone.
func TestGeometryNoRotation(t *testing.T) {
	page := pdf.Dict{"MediaBox": pdf.Array{pdf.Integer(0), pdf.Integer(0), pdf.Integer(200), pdf.Integer(100)}}
	geo, err := Geometry(nullGetter{}, page)
	if err != nil {
		t.Fatalf("Geometry: %v", err)
	}
	if geo.Width != 200 || geo.Height != 100 {
		t.Fatalf("dimensions: got %dx%d, want 200x100", geo.Width, geo.Height)
	}
	p := geo.CTM.Apply(geom.Point{X: 0, Y: 0})
	if p.X != 0 || p.Y != 100 {
		t.Errorf("PDF origin maps to: got %+v, want (0,100)", p)
	}
}

// A /Rotate 90 page swaps width and height and rotates content
// accordingly.
func TestGeometryRotate90(t *testing.T) {
	page := pdf.Dict{
		"MediaBox": pdf.Array{pdf.Integer(0), pdf.Integer(0), pdf.Integer(200), pdf.Integer(100)},
		"Rotate":   pdf.Integer(90),
	}
	geo, err := Geometry(nullGetter{}, page)
	if err != nil {
		t.Fatalf("Geometry: %v", err)
	}
	if geo.Width != 100 || geo.Height != 200 {
		t.Fatalf("dimensions: got %dx%d, want 100x200", geo.Width, geo.Height)
	}
}

// An absent/degenerate MediaBox falls back to US Letter.
func TestGeometryDefaultsToLetter(t *testing.T) {
	geo, err := Geometry(nullGetter{}, pdf.Dict{})
	if err != nil {
		t.Fatalf("Geometry: %v", err)
	}
	if geo.Width != 612 || geo.Height != 792 {
		t.Fatalf("dimensions: got %dx%d, want 612x792", geo.Width, geo.Height)
	}
}
