// Copyright 2024 The pdfcore authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package scene

import (
	"testing"

	"pdfcore.dev/engine/color"
	"pdfcore.dev/engine/geom"
)

func TestSceneAddAndOrder(t *testing.T) {
	var s Scene
	p := &geom.Path{}
	p.Rectangle(0, 0, 10, 10)

	clips := []Clip{{Path: p, Rule: EvenOdd}}
	s.AddFill(p, NonZero, color.RGB(1, 0, 0), 1, nil)
	s.AddStroke(p, Stroke{Width: 2}, color.Gray(0), 1, clips)

	if len(s.Items) != 2 {
		t.Fatalf("len(Items) = %d, want 2", len(s.Items))
	}
	if s.Items[0].Kind != KindFill || s.Items[1].Kind != KindStroke {
		t.Errorf("unexpected kinds: %v %v", s.Items[0].Kind, s.Items[1].Kind)
	}
	if len(s.Items[1].Clips) != 1 {
		t.Errorf("expected 1 clip entry, got %d", len(s.Items[1].Clips))
	}
}

func TestAddFillStrokeAtomic(t *testing.T) {
	var s Scene
	p := &geom.Path{}
	p.Rectangle(0, 0, 1, 1)
	s.AddFillStroke(p, NonZero, Stroke{Width: 1}, color.RGB(1, 0, 0), color.RGB(0, 0, 1), 1, 1, nil)
	if len(s.Items) != 2 {
		t.Fatalf("len(Items) = %d, want 2", len(s.Items))
	}
	if s.Items[0].Kind != KindFillStroke || s.Items[1].Kind != KindStroke {
		t.Errorf("unexpected kinds: %v %v", s.Items[0].Kind, s.Items[1].Kind)
	}
}
