// Copyright 2024 The pdfcore authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package reader is the content-stream interpreter: a graphics-state
// machine that executes a page's (or a Form XObject's, or a Type 3
// glyph's) content stream, driving the path builder and font
// subsystem and appending finished drawing commands to a scene.Scene
// (spec.md 4.4 "Content-stream interpreter").
package reader

import (
	"bytes"
	"fmt"
	"io"

	pdf "pdfcore.dev/engine"
	"pdfcore.dev/engine/color"
	"pdfcore.dev/engine/content"
	"pdfcore.dev/engine/font"
	"pdfcore.dev/engine/geom"
	"pdfcore.dev/engine/pagetree"
	"pdfcore.dev/engine/scene"
)

// maxNestingDepth bounds Form XObject and Type 3 glyph recursion so
// that a self-referencing resource dictionary cannot recurse forever
// (spec.md 5 "Cancellation and timeouts": "the interpreter limits
// subroutine nesting").
const maxNestingDepth = 16

// Options configures a Reader. The zero value is ready to use.
type Options struct {
	// OnWarning, if non-nil, is called for every recoverable error the
	// interpreter encounters (an unknown operator, a font that fails
	// to load, a stream that fails to filter-decode): spec.md 7 "Error
	// handling design" classifies these as conditions to log and
	// continue, never to abort on. The core itself never logs; this
	// is the single seam a host uses to surface them.
	OnWarning func(error)
}

// Reader executes content streams against a shared graphics state,
// accumulating Renderables into Scene. One Reader renders one page;
// Form XObjects and Type 3 glyphs re-enter run on the same Reader,
// sharing its font cache and Scene but not its State (the caller's
// State is saved/restored around the recursive call the same way q/Q
// does).
type Reader struct {
	R     pdf.Getter
	Scene *scene.Scene
	opt   Options

	State     state
	stack     []state
	Resources pdf.Dict

	fonts map[pdf.Reference]font.Font
	depth int

	// textClip accumulates glyph outlines shown in text rendering modes
	// 4-7 within the current BT/ET text object; ET intersects it into
	// State.Clips (spec.md 4.4 "Text showing", the add-to-clip variants).
	textClip *geom.Path
}

// New returns a Reader ready to interpret content streams against r,
// with an empty scene.
func New(r pdf.Getter, opt *Options) *Reader {
	if opt == nil {
		opt = &Options{}
	}
	return &Reader{
		R:     r,
		Scene: &scene.Scene{},
		opt:   *opt,
		fonts: make(map[pdf.Reference]font.Font),
	}
}

func (rd *Reader) warn(err error) {
	if err == nil {
		return
	}
	if rd.opt.OnWarning != nil {
		rd.opt.OnWarning(err)
	}
}

// PageGeometry is the device-space sizing and placement a rendered
// page needs: the pixel dimensions of the output buffer and the CTM
// that maps the page's default user space into it, already accounting
// for /Rotate (ISO 32000-1 7.7.3.3) and a non-zero-origin /MediaBox.
type PageGeometry struct {
	Width, Height int
	CTM           geom.Matrix
}

// Geometry computes a page's device-space geometry at one user-space
// unit per pixel (72 DPI); callers wanting a different resolution
// scale the returned CTM themselves (geom.Scale composed on the
// right).
func Geometry(r pdf.Getter, pageDict pdf.Dict) (PageGeometry, error) {
	box, err := pdf.GetFloatArray(r, pageDict["MediaBox"])
	if err != nil {
		return PageGeometry{}, err
	}
	if len(box) != 4 {
		box = []float64{0, 0, 612, 792} // US Letter default (spec.md 8 scenario 1)
	}
	llx, lly, urx, ury := box[0], box[1], box[2], box[3]
	if urx < llx {
		llx, urx = urx, llx
	}
	if ury < lly {
		lly, ury = ury, lly
	}
	w0, h0 := urx-llx, ury-lly

	rotate := 0
	if v, err := pdf.GetInt(r, pageDict["Rotate"]); err == nil {
		rotate = ((int(v) % 360) + 360) % 360
		rotate = (rotate / 90) * 90
	}

	// translate the media box's own origin to (0,0), then flip Y so
	// device space has its origin at the top-left with Y increasing
	// downward (PDF user space has Y increasing upward).
	toOrigin := geom.Translate(-llx, -lly)
	flip := geom.Matrix{A: 1, B: 0, C: 0, D: -1, E: 0, F: h0}

	var rot geom.Matrix
	width, height := int(w0+0.5), int(h0+0.5)
	switch rotate {
	case 90:
		rot = geom.Matrix{A: 0, B: 1, C: -1, D: 0, E: h0, F: 0}
		width, height = int(h0+0.5), int(w0+0.5)
	case 180:
		rot = geom.Matrix{A: -1, B: 0, C: 0, D: -1, E: w0, F: h0}
	case 270:
		rot = geom.Matrix{A: 0, B: -1, C: 1, D: 0, E: 0, F: w0}
		width, height = int(h0+0.5), int(w0+0.5)
	default:
		rot = geom.Identity
	}

	ctm := toOrigin.Mul(flip).Mul(rot)
	return PageGeometry{Width: width, Height: height, CTM: ctm}, nil
}

// RenderPage decodes and interprets a page's content stream, returning
// the finished scene and the device geometry it was built for. This
// is the top-level entry point for rendering one page (spec.md 4.4
// "Contract").
func RenderPage(r pdf.Getter, pageDict pdf.Dict, opt *Options) (*scene.Scene, PageGeometry, error) {
	geo, err := Geometry(r, pageDict)
	if err != nil {
		return nil, PageGeometry{}, err
	}

	resources, _ := pdf.GetDict(r, pageDict["Resources"])

	body, err := content.Streams(r, pageDict["Contents"])
	if err != nil {
		return nil, geo, err
	}

	rd := New(r, opt)
	rd.State = newState(geo.CTM)
	rd.Resources = resources
	if err := rd.Run(body); err != nil {
		rd.warn(err)
	}
	return rd.Scene, geo, nil
}

// RenderDocumentPage is a convenience wrapper that walks the page tree
// to find the n'th page (0-based) before rendering it.
func RenderDocumentPage(r pdf.Getter, trailer pdf.Dict, n int, opt *Options) (*scene.Scene, PageGeometry, error) {
	root, err := pagetree.RootRef(r, trailer)
	if err != nil {
		return nil, PageGeometry{}, err
	}
	_, dict, err := pagetree.GetPage(r, root, n)
	if err != nil {
		return nil, PageGeometry{}, err
	}
	return RenderPage(r, dict, opt)
}

// Run interprets every operation in body against the Reader's current
// State and Resources, appending to Scene. It is re-entered (with a
// saved/restored State) for Form XObjects and Type 3 glyph procedures.
func (rd *Reader) Run(body io.Reader) error {
	dec := content.NewDecoder(body)
	var path geom.Path
	var pendingClip *scene.FillRule // set by W/W*, consumed by the next painting op
	markedDepth := 0

	for {
		op, err := dec.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		if dec.CompatDepth > 0 && !isKnownOperator(op.Name) {
			continue
		}

		switch op.Name {
		// --- graphics state -------------------------------------------------
		case "q":
			rd.stack = append(rd.stack, rd.State.clone())
		case "Q":
			if n := len(rd.stack); n > 0 {
				rd.State = rd.stack[n-1]
				rd.stack = rd.stack[:n-1]
			}
		case "cm":
			if m, ok := matrixArg(op.Args); ok {
				rd.State.CTM = m.Mul(rd.State.CTM)
			}
		case "w":
			if v, ok := num(op.Args, 0); ok {
				rd.State.LineWidth = v
			}
		case "J":
			if v, ok := num(op.Args, 0); ok {
				rd.State.LineCap = scene.LineCap(v)
			}
		case "j":
			if v, ok := num(op.Args, 0); ok {
				rd.State.LineJoin = scene.LineJoin(v)
			}
		case "M":
			if v, ok := num(op.Args, 0); ok {
				rd.State.MiterLimit = v
			}
		case "d":
			if len(op.Args) == 2 {
				if arr, ok := op.Args[0].(pdf.Array); ok {
					dash := make([]float64, 0, len(arr))
					for _, e := range arr {
						if n, err := pdf.GetNumber(rd.R, e); err == nil {
							dash = append(dash, float64(n))
						}
					}
					rd.State.Dash = dash
				}
				if v, ok := num(op.Args, 1); ok {
					rd.State.DashPhase = v
				}
			}
		case "ri", "i":
			// rendering intent / flatness: recorded nowhere downstream
			// the rasterizer reads, so there is nothing to apply.
		case "gs":
			if name, ok := nameArg(op.Args, 0); ok {
				rd.applyExtGState(name)
			}

		// --- path construction -----------------------------------------------
		case "m":
			if x, y, ok := xy(op.Args, 0); ok {
				path.MoveTo(x, y)
			}
		case "l":
			if x, y, ok := xy(op.Args, 0); ok {
				path.LineTo(x, y)
			}
		case "c":
			if len(op.Args) >= 6 {
				vs, ok := nums(op.Args, 6)
				if ok {
					path.CubicCurveTo(vs[0], vs[1], vs[2], vs[3], vs[4], vs[5])
				}
			}
		case "v":
			if vs, ok := nums(op.Args, 4); ok {
				path.HorizontalVerticalCurveTo(vs[0], vs[1], vs[2], vs[3])
			}
		case "y":
			if vs, ok := nums(op.Args, 4); ok {
				path.VerticalHorizontalCurveTo(vs[0], vs[1], vs[2], vs[3])
			}
		case "re":
			if vs, ok := nums(op.Args, 4); ok {
				path.Rectangle(vs[0], vs[1], vs[2], vs[3])
			}
		case "h":
			path.ClosePath()

		// --- clipping ----------------------------------------------------
		case "W":
			r := scene.NonZero
			pendingClip = &r
		case "W*":
			r := scene.EvenOdd
			pendingClip = &r

		// --- path painting -------------------------------------------------
		case "S":
			rd.paintPath(&path, false, scene.NonZero, true, false, pendingClip)
			path, pendingClip = geom.Path{}, nil
		case "s":
			path.ClosePath()
			rd.paintPath(&path, false, scene.NonZero, true, false, pendingClip)
			path, pendingClip = geom.Path{}, nil
		case "f", "F":
			rd.paintPath(&path, true, scene.NonZero, false, false, pendingClip)
			path, pendingClip = geom.Path{}, nil
		case "f*":
			rd.paintPath(&path, true, scene.EvenOdd, false, false, pendingClip)
			path, pendingClip = geom.Path{}, nil
		case "B":
			rd.paintPath(&path, true, scene.NonZero, true, false, pendingClip)
			path, pendingClip = geom.Path{}, nil
		case "B*":
			rd.paintPath(&path, true, scene.EvenOdd, true, false, pendingClip)
			path, pendingClip = geom.Path{}, nil
		case "b":
			path.ClosePath()
			rd.paintPath(&path, true, scene.NonZero, true, false, pendingClip)
			path, pendingClip = geom.Path{}, nil
		case "b*":
			path.ClosePath()
			rd.paintPath(&path, true, scene.EvenOdd, true, false, pendingClip)
			path, pendingClip = geom.Path{}, nil
		case "n":
			rd.paintPath(&path, false, scene.NonZero, false, true, pendingClip)
			path, pendingClip = geom.Path{}, nil

		// --- colour --------------------------------------------------------
		case "g":
			if v, ok := num(op.Args, 0); ok {
				rd.State.FillSpace = color.DeviceGraySpace
				rd.State.FillColor = color.Gray(v)
			}
		case "G":
			if v, ok := num(op.Args, 0); ok {
				rd.State.StrokeSpace = color.DeviceGraySpace
				rd.State.StrokeColor = color.Gray(v)
			}
		case "rg":
			if vs, ok := nums(op.Args, 3); ok {
				rd.State.FillSpace = color.DeviceRGBSpace
				rd.State.FillColor = color.RGB(vs[0], vs[1], vs[2])
			}
		case "RG":
			if vs, ok := nums(op.Args, 3); ok {
				rd.State.StrokeSpace = color.DeviceRGBSpace
				rd.State.StrokeColor = color.RGB(vs[0], vs[1], vs[2])
			}
		case "k":
			if vs, ok := nums(op.Args, 4); ok {
				rd.State.FillSpace = color.DeviceCMYKSpace
				rd.State.FillColor = color.CMYK(vs[0], vs[1], vs[2], vs[3])
			}
		case "K":
			if vs, ok := nums(op.Args, 4); ok {
				rd.State.StrokeSpace = color.DeviceCMYKSpace
				rd.State.StrokeColor = color.CMYK(vs[0], vs[1], vs[2], vs[3])
			}
		case "cs":
			if name, ok := nameArg(op.Args, 0); ok {
				if sp, err := color.ParseSpace(rd.R, pdf.Name(name), rd.Resources); err == nil {
					rd.State.FillSpace = sp
					rd.State.FillColor = sp.Default()
				} else {
					rd.warn(err)
				}
			}
		case "CS":
			if name, ok := nameArg(op.Args, 0); ok {
				if sp, err := color.ParseSpace(rd.R, pdf.Name(name), rd.Resources); err == nil {
					rd.State.StrokeSpace = sp
					rd.State.StrokeColor = sp.Default()
				} else {
					rd.warn(err)
				}
			}
		case "sc", "scn":
			rd.setColor(op.Args, false)
		case "SC", "SCN":
			rd.setColor(op.Args, true)

		// --- text objects / state -------------------------------------------
		case "BT":
			rd.State.Text.Matrix = geom.Identity
			rd.State.Text.LineMatrix = geom.Identity
		case "ET":
			// The matrices need no reset (the next BT does that); what ET
			// does commit is the text clipping path accumulated by any
			// glyphs shown in rendering modes 4-7, which from here on
			// constrains painting until the enclosing Q pops it.
			if rd.textClip != nil {
				rd.State.Clips = appendClip(rd.State.Clips, scene.Clip{Path: rd.textClip, Rule: scene.NonZero})
				rd.textClip = nil
			}
		case "Tc":
			if v, ok := num(op.Args, 0); ok {
				rd.State.Text.CharSpacing = v
			}
		case "Tw":
			if v, ok := num(op.Args, 0); ok {
				rd.State.Text.WordSpacing = v
			}
		case "Tz":
			if v, ok := num(op.Args, 0); ok {
				rd.State.Text.HorizontalScale = v / 100
			}
		case "TL":
			if v, ok := num(op.Args, 0); ok {
				rd.State.Text.Leading = v
			}
		case "Tf":
			if len(op.Args) >= 2 {
				if name, ok := nameArg(op.Args, 0); ok {
					if sz, ok := num(op.Args, 1); ok {
						rd.State.Text.FontSize = sz
						if f, err := rd.loadFont(name); err == nil {
							rd.State.Text.Font = f
						} else {
							rd.warn(err)
						}
					}
				}
			}
		case "Tr":
			if v, ok := num(op.Args, 0); ok {
				rd.State.Text.RenderMode = int(v)
			}
		case "Ts":
			if v, ok := num(op.Args, 0); ok {
				rd.State.Text.Rise = v
			}
		case "Td":
			if x, y, ok := xy(op.Args, 0); ok {
				m := geom.Translate(x, y).Mul(rd.State.Text.LineMatrix)
				rd.State.Text.LineMatrix = m
				rd.State.Text.Matrix = m
			}
		case "TD":
			if x, y, ok := xy(op.Args, 0); ok {
				rd.State.Text.Leading = -y
				m := geom.Translate(x, y).Mul(rd.State.Text.LineMatrix)
				rd.State.Text.LineMatrix = m
				rd.State.Text.Matrix = m
			}
		case "Tm":
			if vs, ok := nums(op.Args, 6); ok {
				m := geom.NewMatrix(vs[0], vs[1], vs[2], vs[3], vs[4], vs[5])
				rd.State.Text.LineMatrix = m
				rd.State.Text.Matrix = m
			}
		case "T*":
			m := geom.Translate(0, -rd.State.Text.Leading).Mul(rd.State.Text.LineMatrix)
			rd.State.Text.LineMatrix = m
			rd.State.Text.Matrix = m

		// --- text showing ----------------------------------------------------
		case "Tj":
			if s, ok := strArg(op.Args, 0); ok {
				rd.showText(s)
			}
		case "'":
			m := geom.Translate(0, -rd.State.Text.Leading).Mul(rd.State.Text.LineMatrix)
			rd.State.Text.LineMatrix = m
			rd.State.Text.Matrix = m
			if s, ok := strArg(op.Args, 0); ok {
				rd.showText(s)
			}
		case `"`:
			if len(op.Args) >= 3 {
				if aw, ok := num(op.Args, 0); ok {
					rd.State.Text.WordSpacing = aw
				}
				if ac, ok := num(op.Args, 1); ok {
					rd.State.Text.CharSpacing = ac
				}
				m := geom.Translate(0, -rd.State.Text.Leading).Mul(rd.State.Text.LineMatrix)
				rd.State.Text.LineMatrix = m
				rd.State.Text.Matrix = m
				if s, ok := strArg(op.Args, 2); ok {
					rd.showText(s)
				}
			}
		case "TJ":
			if len(op.Args) >= 1 {
				if arr, ok := op.Args[0].(pdf.Array); ok {
					rd.showTextArray(arr)
				}
			}

		// --- XObjects, shading, marked content, inline images, type 3 -------
		case "Do":
			if name, ok := nameArg(op.Args, 0); ok {
				rd.doXObject(name)
			}
		case "sh":
			if name, ok := nameArg(op.Args, 0); ok {
				rd.doShading(name)
			}
		case "BMC", "BDC":
			markedDepth++
		case "EMC":
			if markedDepth > 0 {
				markedDepth--
			}
		case "BX", "EX":
			// compatibility-section delimiters: Decoder already tracks
			// CompatDepth so unrecognised operators between them are
			// skipped above, nothing left to do here.
		case "BI":
			img, err := dec.ReadInlineImage()
			if err != nil {
				return err
			}
			rd.paintInlineImage(img)
		case "d0", "d1":
			// Type 3 glyph metrics operators: the advance width is already
			// read from the font's /Widths array by the font package, so
			// there is nothing left for the interpreter to record.

		default:
			if dec.CompatDepth == 0 {
				rd.warn(fmt.Errorf("content: unknown operator %q", op.Name))
			}
		}
	}
}

func isKnownOperator(op content.Operator) bool {
	_, ok := knownOperators[op]
	return ok
}

var knownOperators = func() map[content.Operator]bool {
	names := []string{
		"q", "Q", "cm", "w", "J", "j", "M", "d", "ri", "i", "gs",
		"m", "l", "c", "v", "y", "re", "h",
		"W", "W*",
		"S", "s", "f", "F", "f*", "B", "B*", "b", "b*", "n",
		"g", "G", "rg", "RG", "k", "K", "cs", "CS", "sc", "scn", "SC", "SCN",
		"BT", "ET", "Tc", "Tw", "Tz", "TL", "Tf", "Tr", "Ts", "Td", "TD", "Tm", "T*",
		"Tj", "'", `"`, "TJ",
		"Do", "sh", "BMC", "BDC", "EMC", "BX", "EX", "BI", "ID", "EI", "d0", "d1",
	}
	m := make(map[content.Operator]bool, len(names))
	for _, n := range names {
		m[content.Operator(n)] = true
	}
	return m
}()

// paintPath commits the current path, built up since the last painting
// operator, to the scene: a fill (if fill is true, under rule), a
// stroke (if stroke is true), and finally intersects the pending clip
// (if any) into State.Clips (spec.md 4.4 "Path painting"/"Clipping").
func (rd *Reader) paintPath(path *geom.Path, fill bool, rule scene.FillRule, stroke bool, _ bool, pendingClip *scene.FillRule) {
	if !path.IsEmpty() {
		device := path.Transform(rd.State.CTM)
		clips := rd.State.Clips
		switch {
		case fill && stroke:
			rd.Scene.AddFillStroke(device, rule, rd.strokeParams(), rd.State.FillColor, rd.State.StrokeColor, rd.State.FillAlpha, rd.State.StrokeAlpha, clips)
		case fill:
			rd.Scene.AddFill(device, rule, rd.State.FillColor, rd.State.FillAlpha, clips)
		case stroke:
			rd.Scene.AddStroke(device, rd.strokeParams(), rd.State.StrokeColor, rd.State.StrokeAlpha, clips)
		}
	}

	if pendingClip != nil && !path.IsEmpty() {
		device := path.Transform(rd.State.CTM)
		next := make([]scene.Clip, len(rd.State.Clips)+1)
		copy(next, rd.State.Clips)
		next[len(next)-1] = scene.Clip{Path: device, Rule: *pendingClip}
		rd.State.Clips = next
	}
}

func (rd *Reader) strokeParams() scene.Stroke {
	s := rd.State
	return scene.Stroke{
		Width:      s.LineWidth,
		Cap:        s.LineCap,
		Join:       s.LineJoin,
		MiterLimit: s.MiterLimit,
		Dash:       s.Dash,
		DashPhase:  s.DashPhase,
	}
}

// setColor implements sc/scn (non-stroking) and SC/SCN (stroking): the
// operands are either plain component values in the current colour
// space, or (scn/SCN only) component values followed by a trailing
// pattern resource name.
func (rd *Reader) setColor(args []pdf.Object, stroking bool) {
	if len(args) == 0 {
		return
	}
	sp := rd.State.FillSpace
	if stroking {
		sp = rd.State.StrokeSpace
	}

	if name, ok := args[len(args)-1].(pdf.Name); ok {
		c := rd.resolvePatternColor(name)
		if stroking {
			rd.State.StrokeColor = c
		} else {
			rd.State.FillColor = c
		}
		return
	}

	comps := make([]float64, 0, len(args))
	for _, a := range args {
		if n, err := pdf.GetNumber(rd.R, a); err == nil {
			comps = append(comps, float64(n))
		}
	}
	if len(comps) == 0 || sp == nil {
		return
	}
	c := newColorInSpace(sp, comps)
	if stroking {
		rd.State.StrokeColor = c
	} else {
		rd.State.FillColor = c
	}
}

// newColorInSpace builds a colour value from raw component operands,
// using the Space's exported constructors where one exists (the
// separationSpace/indexedSpace family has its own New-style entry
// points reached only via the generic Default()+Components() pair, so
// the common device-space fast path is special-cased here and every
// other family falls back to componentsToColor's approximation via
// FromComponents).
func newColorInSpace(sp color.Space, comps []float64) color.Color {
	switch sp.Family() {
	case color.FamilyDeviceGray, color.FamilyCalGray:
		if len(comps) >= 1 {
			return color.Gray(comps[0])
		}
	case color.FamilyDeviceRGB, color.FamilyCalRGB:
		if len(comps) >= 3 {
			return color.RGB(comps[0], comps[1], comps[2])
		}
	case color.FamilyDeviceCMYK:
		if len(comps) >= 4 {
			return color.CMYK(comps[0], comps[1], comps[2], comps[3])
		}
	}
	if tc, ok := sp.(interface{ New([]float64) color.Color }); ok {
		return tc.New(comps)
	}
	if c, err := color.FromComponents(comps); err == nil && c != nil {
		return c
	}
	return sp.Default()
}

// applyExtGState applies the subset of an ExtGState parameter
// dictionary this engine models (spec.md 4.4 "gs names a parameter
// dictionary"): stroke/fill alpha and line width. Font and soft-mask
// entries are recognised by other PDF consumers but have no
// counterpart in this engine's graphics state.
func (rd *Reader) applyExtGState(name pdf.Name) {
	if rd.Resources == nil {
		return
	}
	gsDict, err := pdf.GetDict(rd.R, rd.Resources["ExtGState"])
	if err != nil || gsDict == nil {
		return
	}
	dict, err := pdf.GetDict(rd.R, gsDict[name])
	if err != nil || dict == nil {
		return
	}
	if v, err := pdf.GetNumber(rd.R, dict["ca"]); err == nil {
		rd.State.FillAlpha = float64(v)
	}
	if v, err := pdf.GetNumber(rd.R, dict["CA"]); err == nil {
		rd.State.StrokeAlpha = float64(v)
	}
	if v, err := pdf.GetNumber(rd.R, dict["LW"]); err == nil {
		rd.State.LineWidth = float64(v)
	}
}

// --- small operand helpers -------------------------------------------------

func num(args []pdf.Object, i int) (float64, bool) {
	if i < 0 || i >= len(args) {
		return 0, false
	}
	switch v := args[i].(type) {
	case pdf.Integer:
		return float64(v), true
	case pdf.Real:
		return float64(v), true
	default:
		return 0, false
	}
}

func nums(args []pdf.Object, n int) ([]float64, bool) {
	if len(args) < n {
		return nil, false
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		v, ok := num(args, i)
		if !ok {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

func xy(args []pdf.Object, i int) (float64, float64, bool) {
	x, ok1 := num(args, i)
	y, ok2 := num(args, i+1)
	return x, y, ok1 && ok2
}

func matrixArg(args []pdf.Object) (geom.Matrix, bool) {
	vs, ok := nums(args, 6)
	if !ok {
		return geom.Identity, false
	}
	return geom.NewMatrix(vs[0], vs[1], vs[2], vs[3], vs[4], vs[5]), true
}

func nameArg(args []pdf.Object, i int) (pdf.Name, bool) {
	if i < 0 || i >= len(args) {
		return "", false
	}
	n, ok := args[i].(pdf.Name)
	return n, ok
}

func strArg(args []pdf.Object, i int) (pdf.String, bool) {
	if i < 0 || i >= len(args) {
		return nil, false
	}
	s, ok := args[i].(pdf.String)
	return s, ok
}

// streamBytes fully decodes a stream's payload.
func streamBytes(r pdf.Getter, s *pdf.Stream) ([]byte, error) {
	raw, err := s.R.Bytes()
	if err != nil {
		return nil, err
	}
	dr, err := pdf.DecodeStream(r, s, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	return io.ReadAll(dr)
}
