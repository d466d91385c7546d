// Copyright 2024 The pdfcore authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package cid

import "testing"

func TestIdentityGIDMap(t *testing.T) {
	m := Identity()
	if m.GID(42) != 42 {
		t.Errorf("GID(42) = %d, want 42", m.GID(42))
	}
}

func TestParseGIDMap(t *testing.T) {
	m := ParseGIDMap([]byte{0x00, 0x05, 0x00, 0x0a})
	if m.GID(0) != 5 || m.GID(1) != 10 {
		t.Errorf("GID(0)=%d GID(1)=%d, want 5, 10", m.GID(0), m.GID(1))
	}
	if m.GID(99) != 0 {
		t.Errorf("out-of-range GID(99) = %d, want 0", m.GID(99))
	}
}

func TestWidths(t *testing.T) {
	w := NewWidths(0)
	if w.DW != 1000 {
		t.Errorf("DW = %v, want 1000 default", w.DW)
	}
	w.Set(5, 600)
	w.SetRange(10, 12, 700)
	if w.Width(5) != 600 {
		t.Errorf("Width(5) = %v, want 600", w.Width(5))
	}
	if w.Width(11) != 700 {
		t.Errorf("Width(11) = %v, want 700", w.Width(11))
	}
	if w.Width(999) != 1000 {
		t.Errorf("Width(999) = %v, want default 1000", w.Width(999))
	}
}
