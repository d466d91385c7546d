// Copyright 2024 The pdfcore authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package font

import "fmt"

// InvalidFontError reports a problem with an embedded or referenced
// font program that prevents glyphs from being decoded: a malformed
// CFF/TrueType/Type 1 program, a missing descendant font, or an
// unsupported combination of subtype and encoding.
type InvalidFontError struct {
	SubSystem string // e.g. "cff", "truetype", "type1", "cmap"
	Reason    string
}

func (e *InvalidFontError) Error() string {
	return fmt.Sprintf("font: invalid %s font: %s", e.SubSystem, e.Reason)
}
