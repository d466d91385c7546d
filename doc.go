// Package pdf implements the reading side of the PDF file format: a
// lexer for PDF syntax, lazy indirect-object resolution against a merged
// cross-reference table (including compressed object streams), the
// standard stream filters, and the standard security handler.
//
// A document is opened with Open, which locates and merges every
// cross-reference section reachable from the file's trailer chain:
//
//	doc, err := pdf.Open(r, size, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	root, err := pdf.GetDict(doc, doc.Trailer["Root"])
//
// Objects are resolved lazily: Get reads one object, plus only what that
// object itself depends on (an indirect stream /Length, or the object
// stream that holds it, whose other objects are cached too).  References that do not resolve
// to any object return Go nil rather than an error, matching the PDF
// permission to reference an absent object (spec.md section 4.2).
//
// The following concrete types implement the Object interface:
//
//	Array, Boolean, Dict, Integer, Name, Real, Reference, *Stream, String
//
// Subpackages implement the document model (catalog, page tree), the
// content-stream interpreter, the font subsystem, the PostScript
// mini-interpreter, geometry/path building, and the rasterizer.
package pdf
