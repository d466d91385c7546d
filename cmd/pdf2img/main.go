// Copyright 2024 The pdfcore authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Command pdf2img renders one page of a PDF file to a PNG image. It is
// a thin CLI wrapper around the reader/raster pipeline; all the actual
// parsing, interpretation and rasterization happens in the importable
// packages (see pdfcore.dev/engine, .../reader, .../raster).
package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"os"

	xdraw "golang.org/x/image/draw"

	pdf "pdfcore.dev/engine"
	"pdfcore.dev/engine/color"
	"pdfcore.dev/engine/raster"
	"pdfcore.dev/engine/reader"
)

func main() {
	dpi := flag.Float64("dpi", 72.0, "DPI for rendering")
	pageNum := flag.Int("page", 1, "Page number to render (1-based)")
	flag.Parse()

	if flag.NArg() < 2 {
		fmt.Printf("Usage: %s [options] input.pdf output.png\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	inputFile := flag.Arg(0)
	outputFile := flag.Arg(1)

	if err := run(inputFile, outputFile, *pageNum, *dpi); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Successfully rendered page %d of %s to %s\n", *pageNum, inputFile, outputFile)
}

func run(inputFile, outputFile string, pageNum int, dpi float64) error {
	f, err := os.Open(inputFile)
	if err != nil {
		return fmt.Errorf("opening input file: %w", err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return fmt.Errorf("statting input file: %w", err)
	}

	r, err := pdf.Open(f, fi.Size(), nil)
	if err != nil {
		return fmt.Errorf("creating PDF reader: %w", err)
	}

	opt := &reader.Options{
		OnWarning: func(err error) {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		},
	}
	sc, geo, err := reader.RenderDocumentPage(r, r.Trailer, pageNum-1, opt)
	if err != nil {
		return fmt.Errorf("rendering page %d: %w", pageNum, err)
	}

	canvas := raster.NewCanvas(geo.Width, geo.Height)
	canvas.Fill(color.Gray(1))
	raster.Render(canvas, sc)

	final := canvas.Img
	scale := dpi / 72.0
	if scale != 1 {
		w := int(float64(geo.Width)*scale + 0.5)
		h := int(float64(geo.Height)*scale + 0.5)
		if w < 1 {
			w = 1
		}
		if h < 1 {
			h = 1
		}
		scaled := image.NewRGBA(image.Rect(0, 0, w, h))
		xdraw.BiLinear.Scale(scaled, scaled.Bounds(), canvas.Img, canvas.Img.Bounds(), xdraw.Over, nil)
		final = scaled
	}

	out, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer out.Close()

	if err := png.Encode(out, final); err != nil {
		return fmt.Errorf("encoding PNG: %w", err)
	}
	return nil
}
