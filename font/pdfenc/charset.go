// Character-set membership for the Adobe Standard Latin set defined in
// ISO 32000-2:2020 Annex D.2 ("Latin character set and encodings"). The
// glyph-name list itself (standardLatinHas, in latin-gen.go) is a
// transcription of that standard's published table, not original
// expression, so it carries no license header of its own.

package pdfenc

// A CharacterSet is a collection of glyph names.
type CharacterSet struct {
	Has map[string]bool
}

// StandardLatin is the Adobe Standard Latin character set: the glyph
// names a non-symbolic Latin-text font is expected to draw from.
var StandardLatin = CharacterSet{
	Has: standardLatinHas,
}

// Contains reports whether every name in glyphNames belongs to the set.
func (cs CharacterSet) Contains(glyphNames []string) bool {
	for _, name := range glyphNames {
		if !cs.Has[name] {
			return false
		}
	}
	return true
}

// IsNonSymbolic returns true if all glyphs are in the Adobe Standard Latin
// character set.
func IsNonSymbolic(glyphNames []string) bool {
	return StandardLatin.Contains(glyphNames)
}
