// Copyright 2024 The pdfcore authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package pagetree walks the page tree rooted at a document's Catalog,
// flattening /Pages and /Page nodes into leaf page dictionaries with
// the inheritable attributes (spec.md section 5, "Page tree
// inheritance") already merged in from their ancestors.
package pagetree

import (
	"errors"
	"fmt"
	"iter"

	pdf "pdfcore.dev/engine"
)

// inheritable lists the /Pages attributes that, per ISO 32000-1 table
// 29, are inherited by descendant nodes when a leaf or intermediate
// node does not specify its own value.
var inheritable = []pdf.Name{"Resources", "MediaBox", "CropBox", "Rotate"}

// maxDepth bounds page tree recursion so that a Kids cycle (a malformed
// or adversarial file pointing a descendant back at an ancestor) cannot
// make Iterator.All loop forever.
const maxDepth = 256

// Iterator walks a document's page tree in document order, starting at
// the given root /Pages reference.
type Iterator struct {
	r    pdf.Getter
	root pdf.Reference
}

// NewIterator returns an Iterator over the page tree rooted at root
// (typically a document's Catalog.Pages entry; see RootRef).
func NewIterator(r pdf.Getter, root pdf.Reference) *Iterator {
	return &Iterator{r: r, root: root}
}

// RootRef locates a document's /Root /Pages reference from its
// trailer's Root entry.
func RootRef(r pdf.Getter, trailer pdf.Dict) (pdf.Reference, error) {
	rootObj, err := pdf.Resolve(r, trailer["Root"])
	if err != nil {
		return pdf.Reference{}, err
	}
	catalog, err := pdf.GetDictTyped(r, rootObj, "Catalog")
	if err != nil {
		return pdf.Reference{}, err
	}
	if catalog == nil {
		return pdf.Reference{}, errors.New("pagetree: missing Catalog")
	}

	pagesRef, ok := catalog["Pages"].(pdf.Reference)
	if !ok {
		return pdf.Reference{}, errors.New("pagetree: Catalog has no Pages reference")
	}
	return pagesRef, nil
}

// All iterates every leaf /Page dictionary in document order, with
// Resources/MediaBox/CropBox/Rotate already merged in from whichever
// ancestor /Pages node last specified them (ISO 32000-1 7.7.3.4).
func (it *Iterator) All() iter.Seq2[pdf.Reference, pdf.Dict] {
	return func(yield func(pdf.Reference, pdf.Dict) bool) {
		visited := make(map[pdf.Reference]bool)
		walk(it.r, it.root, pdf.Dict{}, visited, 0, yield)
	}
}

// walk returns false if the caller asked to stop (yield returned
// false); this propagates all the way back up the recursion.
func walk(r pdf.Getter, ref pdf.Reference, inherited pdf.Dict, visited map[pdf.Reference]bool, depth int, yield func(pdf.Reference, pdf.Dict) bool) bool {
	if depth > maxDepth || visited[ref] {
		return true
	}
	visited[ref] = true

	dict, err := pdf.GetDict(r, ref)
	if err != nil || dict == nil {
		return true
	}

	merged := make(pdf.Dict, len(dict)+len(inherited))
	for _, key := range inheritable {
		if v, ok := inherited[key]; ok {
			merged[key] = v
		}
	}
	for k, v := range dict {
		merged[k] = v
	}

	kidsObj, err := pdf.GetArray(r, dict["Kids"])
	if err != nil {
		return true
	}
	if kidsObj == nil {
		// leaf node: a /Page (or a node with no declared Type but no Kids).
		return yield(ref, merged)
	}

	nextInherited := make(pdf.Dict, len(inheritable))
	for _, key := range inheritable {
		if v, ok := merged[key]; ok {
			nextInherited[key] = v
		}
	}
	for _, kid := range kidsObj {
		kidRef, ok := kid.(pdf.Reference)
		if !ok {
			continue
		}
		if !walk(r, kidRef, nextInherited, visited, depth+1, yield) {
			return false
		}
	}
	return true
}

// FindPages flattens the page tree into a slice of page references, in
// document order. This is a convenience wrapper around Iterator for
// callers that only need the references, not the merged dictionaries
// (e.g. building a table of contents or a page-number index).
func FindPages(r pdf.Getter, root pdf.Reference) ([]pdf.Reference, error) {
	var refs []pdf.Reference
	for ref := range NewIterator(r, root).All() {
		refs = append(refs, ref)
	}
	return refs, nil
}

// GetPage resolves the n'th page (0-based) of the document, with
// inherited attributes merged in. It walks the full tree each call;
// callers iterating every page should use Iterator.All instead.
func GetPage(r pdf.Getter, root pdf.Reference, n int) (pdf.Reference, pdf.Dict, error) {
	i := 0
	for ref, dict := range NewIterator(r, root).All() {
		if i == n {
			return ref, dict, nil
		}
		i++
	}
	return pdf.Reference{}, nil, fmt.Errorf("pagetree: page %d not found (document has %d pages)", n, i)
}
