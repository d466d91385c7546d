// standardLatinHas: the Adobe Standard Latin glyph-name set, transcribed
// from ISO 32000-2:2020 Annex D.2. Reference data reproduced from the
// published standard, not original expression; carries no license header.

package pdfenc

var standardLatinHas = map[string]bool{
	"A":              true,
	"AE":             true,
	"Aacute":         true,
	"Acircumflex":    true,
	"Adieresis":      true,
	"Agrave":         true,
	"Aring":          true,
	"Atilde":         true,
	"B":              true,
	"C":              true,
	"Ccedilla":       true,
	"D":              true,
	"E":              true,
	"Eacute":         true,
	"Ecircumflex":    true,
	"Edieresis":      true,
	"Egrave":         true,
	"Eth":            true,
	"Euro":           true,
	"F":              true,
	"G":              true,
	"H":              true,
	"I":              true,
	"Iacute":         true,
	"Icircumflex":    true,
	"Idieresis":      true,
	"Igrave":         true,
	"J":              true,
	"K":              true,
	"L":              true,
	"Lslash":         true,
	"M":              true,
	"N":              true,
	"Ntilde":         true,
	"O":              true,
	"OE":             true,
	"Oacute":         true,
	"Ocircumflex":    true,
	"Odieresis":      true,
	"Ograve":         true,
	"Oslash":         true,
	"Otilde":         true,
	"P":              true,
	"Q":              true,
	"R":              true,
	"S":              true,
	"Scaron":         true,
	"T":              true,
	"Thorn":          true,
	"U":              true,
	"Uacute":         true,
	"Ucircumflex":    true,
	"Udieresis":      true,
	"Ugrave":         true,
	"V":              true,
	"W":              true,
	"X":              true,
	"Y":              true,
	"Yacute":         true,
	"Ydieresis":      true,
	"Z":              true,
	"Zcaron":         true,
	"a":              true,
	"aacute":         true,
	"acircumflex":    true,
	"acute":          true,
	"adieresis":      true,
	"ae":             true,
	"agrave":         true,
	"ampersand":      true,
	"aring":          true,
	"asciicircum":    true,
	"asciitilde":     true,
	"asterisk":       true,
	"at":             true,
	"atilde":         true,
	"b":              true,
	"backslash":      true,
	"bar":            true,
	"braceleft":      true,
	"braceright":     true,
	"bracketleft":    true,
	"bracketright":   true,
	"breve":          true,
	"brokenbar":      true,
	"bullet":         true,
	"c":              true,
	"caron":          true,
	"ccedilla":       true,
	"cedilla":        true,
	"cent":           true,
	"circumflex":     true,
	"colon":          true,
	"comma":          true,
	"copyright":      true,
	"currency":       true,
	"d":              true,
	"dagger":         true,
	"daggerdbl":      true,
	"degree":         true,
	"dieresis":       true,
	"divide":         true,
	"dollar":         true,
	"dotaccent":      true,
	"dotlessi":       true,
	"e":              true,
	"eacute":         true,
	"ecircumflex":    true,
	"edieresis":      true,
	"egrave":         true,
	"eight":          true,
	"ellipsis":       true,
	"emdash":         true,
	"endash":         true,
	"equal":          true,
	"eth":            true,
	"exclam":         true,
	"exclamdown":     true,
	"f":              true,
	"fi":             true,
	"five":           true,
	"fl":             true,
	"florin":         true,
	"four":           true,
	"fraction":       true,
	"g":              true,
	"germandbls":     true,
	"grave":          true,
	"greater":        true,
	"guillemotleft":  true,
	"guillemotright": true,
	"guilsinglleft":  true,
	"guilsinglright": true,
	"h":              true,
	"hungarumlaut":   true,
	"hyphen":         true,
	"i":              true,
	"iacute":         true,
	"icircumflex":    true,
	"idieresis":      true,
	"igrave":         true,
	"j":              true,
	"k":              true,
	"l":              true,
	"less":           true,
	"logicalnot":     true,
	"lslash":         true,
	"m":              true,
	"macron":         true,
	"minus":          true,
	"mu":             true,
	"multiply":       true,
	"n":              true,
	"nine":           true,
	"ntilde":         true,
	"numbersign":     true,
	"o":              true,
	"oacute":         true,
	"ocircumflex":    true,
	"odieresis":      true,
	"oe":             true,
	"ogonek":         true,
	"ograve":         true,
	"one":            true,
	"onehalf":        true,
	"onequarter":     true,
	"onesuperior":    true,
	"ordfeminine":    true,
	"ordmasculine":   true,
	"oslash":         true,
	"otilde":         true,
	"p":              true,
	"paragraph":      true,
	"parenleft":      true,
	"parenright":     true,
	"percent":        true,
	"period":         true,
	"periodcentered": true,
	"perthousand":    true,
	"plus":           true,
	"plusminus":      true,
	"q":              true,
	"question":       true,
	"questiondown":   true,
	"quotedbl":       true,
	"quotedblbase":   true,
	"quotedblleft":   true,
	"quotedblright":  true,
	"quoteleft":      true,
	"quoteright":     true,
	"quotesinglbase": true,
	"quotesingle":    true,
	"r":              true,
	"registered":     true,
	"ring":           true,
	"s":              true,
	"scaron":         true,
	"section":        true,
	"semicolon":      true,
	"seven":          true,
	"six":            true,
	"slash":          true,
	"space":          true,
	"sterling":       true,
	"t":              true,
	"thorn":          true,
	"three":          true,
	"threequarters":  true,
	"threesuperior":  true,
	"tilde":          true,
	"trademark":      true,
	"two":            true,
	"twosuperior":    true,
	"u":              true,
	"uacute":         true,
	"ucircumflex":    true,
	"udieresis":      true,
	"ugrave":         true,
	"underscore":     true,
	"v":              true,
	"w":              true,
	"x":              true,
	"y":              true,
	"yacute":         true,
	"ydieresis":      true,
	"yen":            true,
	"z":              true,
	"zcaron":         true,
	"zero":           true,
}
